package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/agrix/agrix-server/internal/config"
	"github.com/agrix/agrix-server/internal/logger"
	"github.com/agrix/agrix-server/internal/search"
	"github.com/agrix/agrix-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// SearchIndex is nil when search is disabled.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.SearchIndex == nil {
		return nil
	}
	return h.Close()
}

// ProvideSearchIndex provides the in-memory Bleve index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Search disabled by configuration")
		return &SearchIndexHandle{}, nil
	}

	index, err := search.NewSearchIndex(search.Options{
		Logger: log.Component("search").Logger,
	})
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the search service, or nil when search is
// disabled.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	if indexHandle.SearchIndex == nil {
		return nil, nil
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.SearchIndex, storeHandle.Store, log.Component("search").Logger), nil
}

// ReindexSearch fills the index from the store. The index lives in memory,
// so this runs on every start.
func ReindexSearch(ctx context.Context, i do.Injector) error {
	searchService := do.MustInvoke[*service.SearchService](i)
	if searchService == nil {
		return nil
	}

	log := do.MustInvoke[*logger.Logger](i)

	if err := searchService.Reindex(ctx); err != nil {
		return err
	}
	count, _ := searchService.DocumentCount()
	log.Info("Search index ready", "documents", count)
	return nil
}
