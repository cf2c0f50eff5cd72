// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/ryanmio/actblue-jail/internal/config"
	"github.com/ryanmio/actblue-jail/internal/infrastructure"
	"github.com/ryanmio/actblue-jail/pkg/middleware"
	"github.com/ryanmio/actblue-jail/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(infra.Metrics.Middleware)
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
