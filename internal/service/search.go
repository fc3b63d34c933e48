package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/search"
	"github.com/agrix/agrix-server/internal/store"
)

var _ Indexer = (*SearchService)(nil)

// SearchService bridges the search index with the data store, building
// documents from domain records and executing queries.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a query across farms, crops and fertilizers.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexFarm indexes a single farm.
func (s *SearchService) IndexFarm(_ context.Context, farm *domain.Farm) error {
	if err := s.index.IndexDocument(search.FarmToSearchDocument(farm)); err != nil {
		return fmt.Errorf("index farm: %w", err)
	}
	s.logger.Debug("indexed farm", "farm_id", farm.ID)
	return nil
}

// IndexCrop indexes a single crop.
func (s *SearchService) IndexCrop(_ context.Context, crop *domain.Crop) error {
	if err := s.index.IndexDocument(search.CropToSearchDocument(crop)); err != nil {
		return fmt.Errorf("index crop: %w", err)
	}
	s.logger.Debug("indexed crop", "crop_id", crop.ID)
	return nil
}

// IndexFertilizer indexes a single fertilizer.
func (s *SearchService) IndexFertilizer(_ context.Context, fertilizer *domain.Fertilizer) error {
	if err := s.index.IndexDocument(search.FertilizerToSearchDocument(fertilizer)); err != nil {
		return fmt.Errorf("index fertilizer: %w", err)
	}
	s.logger.Debug("indexed fertilizer", "fertilizer_id", fertilizer.ID)
	return nil
}

// Reindex rebuilds the index from everything in the store.
func (s *SearchService) Reindex(ctx context.Context) error {
	farms, err := s.store.ListFarms(ctx)
	if err != nil {
		return fmt.Errorf("list farms: %w", err)
	}
	crops, err := s.store.ListCrops(ctx)
	if err != nil {
		return fmt.Errorf("list crops: %w", err)
	}
	fertilizers, err := s.store.ListFertilizers(ctx)
	if err != nil {
		return fmt.Errorf("list fertilizers: %w", err)
	}

	docs := make([]*search.SearchDocument, 0, len(farms)+len(crops)+len(fertilizers))
	for _, f := range farms {
		docs = append(docs, search.FarmToSearchDocument(f))
	}
	for _, c := range crops {
		docs = append(docs, search.CropToSearchDocument(c))
	}
	for _, f := range fertilizers {
		docs = append(docs, search.FertilizerToSearchDocument(f))
	}

	if err := s.index.Rebuild(docs); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	s.logger.Info("search index rebuilt",
		"farms", len(farms),
		"crops", len(crops),
		"fertilizers", len(fertilizers),
	)
	return nil
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
