package providers

import (
	"github.com/samber/do/v2"

	"github.com/agrix/agrix-server/internal/logger"
	"github.com/agrix/agrix-server/internal/metrics"
	"github.com/agrix/agrix-server/internal/service"
)

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// indexer returns the search service as a service.Indexer, or a nil
// interface when search is disabled.
func indexer(i do.Injector) service.Indexer {
	searchService := do.MustInvoke[*service.SearchService](i)
	if searchService == nil {
		return nil
	}
	return searchService
}

// ProvideFarmService provides the farm manager.
func ProvideFarmService(i do.Injector) (*service.FarmService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFarmService(storeHandle.Store, indexer(i), m, log.Component("farms").Logger), nil
}

// ProvideCropService provides the crop manager.
func ProvideCropService(i do.Injector) (*service.CropService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCropService(storeHandle.Store, indexer(i), m, log.Component("crops").Logger), nil
}

// ProvideFertilizerService provides the fertilizer manager.
func ProvideFertilizerService(i do.Injector) (*service.FertilizerService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFertilizerService(storeHandle.Store, indexer(i), m, log.Component("fertilizers").Logger), nil
}
