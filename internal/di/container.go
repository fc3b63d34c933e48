// Package di provides dependency injection configuration for the Agrix server.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/agrix/agrix-server/internal/config"
	"github.com/agrix/agrix-server/internal/di/providers"
	"github.com/agrix/agrix-server/internal/logger"
	"github.com/agrix/agrix-server/internal/metrics"
	"github.com/agrix/agrix-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)

	// Persistence and search
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Managers
	do.Provide(injector, providers.ProvideFarmService)
	do.Provide(injector, providers.ProvideCropService)
	do.Provide(injector, providers.ProvideFertilizerService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services, fills the search index and starts
// the HTTP server.
func Bootstrap(ctx context.Context, injector *do.RootScope) error {
	// Configuration and storage fail on bad input; report those as errors.
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*metrics.Metrics](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*service.SearchService](injector)

	_ = do.MustInvoke[*service.FarmService](injector)
	_ = do.MustInvoke[*service.CropService](injector)
	_ = do.MustInvoke[*service.FertilizerService](injector)

	// Index before serving so the first search sees existing records.
	if err := providers.ReindexSearch(ctx, injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
