package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
)

// AssociationMessage is returned by every successful AssociateFertilizer call.
const AssociationMessage = "Fertilizante e plantação associados com sucesso!"

// CropService looks up crops and manages their fertilizer associations.
type CropService struct {
	deps
}

// NewCropService creates a new crop service. index and recorder may be nil.
func NewCropService(store store.Store, index Indexer, recorder Recorder, logger *slog.Logger) *CropService {
	return &CropService{deps: newDeps(store, index, recorder, logger)}
}

// ListCrops returns every crop in insertion order.
func (s *CropService) ListCrops(ctx context.Context) ([]*domain.Crop, error) {
	return s.store.ListCrops(ctx)
}

// GetCrop returns a crop or ErrCropNotFound.
func (s *CropService) GetCrop(ctx context.Context, id int64) (*domain.Crop, error) {
	return s.crop(ctx, id)
}

// FindByHarvestDate returns the crops harvested within [start, end].
// A range whose start is after its end matches nothing.
func (s *CropService) FindByHarvestDate(ctx context.Context, start, end domain.Date) ([]*domain.Crop, error) {
	if start.After(end) {
		return []*domain.Crop{}, nil
	}
	return s.store.ListCropsByHarvestDate(ctx, start, end)
}

// AssociateFertilizer links a fertilizer to a crop with an explicit
// read-modify-save. The crop is checked first, so a request naming two
// missing records reports ErrCropNotFound. Repeating a pair is a no-op that
// still succeeds.
func (s *CropService) AssociateFertilizer(ctx context.Context, cropID, fertilizerID int64) (string, error) {
	crop, err := s.crop(ctx, cropID)
	if err != nil {
		return "", err
	}
	fertilizer, err := s.fertilizer(ctx, fertilizerID)
	if err != nil {
		return "", err
	}

	added := crop.AddFertilizer(fertilizer.ID)
	if added {
		if err := s.store.SaveCrop(ctx, crop); err != nil {
			return "", fmt.Errorf("save crop %d: %w", crop.ID, err)
		}
	}

	s.recorder.FertilizerAssociated(added)
	s.logger.Info("fertilizer associated with crop",
		"crop_id", crop.ID,
		"fertilizer_id", fertilizer.ID,
		"added", added,
	)

	return AssociationMessage, nil
}

// ListFertilizers returns the fertilizers associated with a crop in the
// order they were associated. Fails with ErrCropNotFound.
func (s *CropService) ListFertilizers(ctx context.Context, cropID int64) ([]*domain.Fertilizer, error) {
	crop, err := s.crop(ctx, cropID)
	if err != nil {
		return nil, err
	}
	return s.store.GetFertilizersByIDs(ctx, crop.FertilizerIDs)
}
