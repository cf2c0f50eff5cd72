package api

import (
	"net/http"

	"github.com/ryanmio/actblue-jail/internal/config"
	"github.com/ryanmio/actblue-jail/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, cfg *config.Config) {
	routes.Register(
		mux,
		domain.Submissions.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Pipeline.Handler().Routes(),
	)
}
