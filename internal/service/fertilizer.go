package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrix/agrix-server/internal/domain"
	domainerrors "github.com/agrix/agrix-server/internal/errors"
	"github.com/agrix/agrix-server/internal/store"
)

// CreateFertilizerRequest holds the caller-supplied fields of a new fertilizer.
type CreateFertilizerRequest struct {
	Name        string
	Brand       string
	Composition string
}

// FertilizerService creates and looks up fertilizers.
type FertilizerService struct {
	deps
}

// NewFertilizerService creates a new fertilizer service. index and recorder may be nil.
func NewFertilizerService(store store.Store, index Indexer, recorder Recorder, logger *slog.Logger) *FertilizerService {
	return &FertilizerService{deps: newDeps(store, index, recorder, logger)}
}

// CreateFertilizer persists a new fertilizer and returns it with its assigned id.
func (s *FertilizerService) CreateFertilizer(ctx context.Context, req CreateFertilizerRequest) (*domain.Fertilizer, error) {
	fertilizer := &domain.Fertilizer{
		Name:        req.Name,
		Brand:       req.Brand,
		Composition: req.Composition,
	}
	if err := s.store.SaveFertilizer(ctx, fertilizer); err != nil {
		return nil, fmt.Errorf("save fertilizer: %w", err)
	}

	s.recorder.EntityCreated(domainerrors.EntityFertilizer)
	s.indexed(s.index.IndexFertilizer(ctx, fertilizer), domainerrors.EntityFertilizer, fertilizer.ID)
	s.logger.Info("fertilizer created", "fertilizer_id", fertilizer.ID, "name", fertilizer.Name)

	return fertilizer, nil
}

// ListFertilizers returns every fertilizer in insertion order.
func (s *FertilizerService) ListFertilizers(ctx context.Context) ([]*domain.Fertilizer, error) {
	return s.store.ListFertilizers(ctx)
}

// GetFertilizer returns a fertilizer or ErrFertilizerNotFound.
func (s *FertilizerService) GetFertilizer(ctx context.Context, id int64) (*domain.Fertilizer, error) {
	return s.fertilizer(ctx, id)
}
