package api

import (
	"github.com/ryanmio/actblue-jail/internal/ai"
	"github.com/ryanmio/actblue-jail/internal/config"
	"github.com/ryanmio/actblue-jail/internal/infrastructure"
	"github.com/ryanmio/actblue-jail/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	AI              ai.Config
	Resilience      ai.ResilienceConfig
	Pagination      pagination.Config
	AllowlistDomain string
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:  infra.Lifecycle,
			Logger:     infra.Logger.With("module", "api"),
			Database:   infra.Database,
			Storage:    infra.Storage,
			Metrics:    infra.Metrics,
			Dispatcher: infra.Dispatcher,
		},
		AI:              cfg.AI,
		Resilience:      cfg.Resilience,
		Pagination:      cfg.API.Pagination,
		AllowlistDomain: cfg.API.AllowlistDomain,
	}
}
