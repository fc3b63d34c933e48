package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrix/agrix-server/internal/domain"
	domainerrors "github.com/agrix/agrix-server/internal/errors"
	"github.com/agrix/agrix-server/internal/store"
)

// CreateFarmRequest holds the caller-supplied fields of a new farm.
type CreateFarmRequest struct {
	Name string
	Size float64
}

// CreateCropRequest holds the caller-supplied fields of a new crop.
// The owning farm comes from the farm id, never from the request.
type CreateCropRequest struct {
	Name        string
	PlantedArea float64
	PlantedDate domain.Date
	HarvestDate domain.Date
}

// FarmService creates farms and the crops planted on them.
type FarmService struct {
	deps
}

// NewFarmService creates a new farm service. index and recorder may be nil.
func NewFarmService(store store.Store, index Indexer, recorder Recorder, logger *slog.Logger) *FarmService {
	return &FarmService{deps: newDeps(store, index, recorder, logger)}
}

// CreateFarm persists a new farm and returns it with its assigned id.
func (s *FarmService) CreateFarm(ctx context.Context, req CreateFarmRequest) (*domain.Farm, error) {
	farm := &domain.Farm{Name: req.Name, Size: req.Size}
	if err := s.store.SaveFarm(ctx, farm); err != nil {
		return nil, fmt.Errorf("save farm: %w", err)
	}

	s.recorder.EntityCreated(domainerrors.EntityFarm)
	s.indexed(s.index.IndexFarm(ctx, farm), domainerrors.EntityFarm, farm.ID)
	s.logger.Info("farm created", "farm_id", farm.ID, "name", farm.Name)

	return farm, nil
}

// ListFarms returns every farm in insertion order.
func (s *FarmService) ListFarms(ctx context.Context) ([]*domain.Farm, error) {
	return s.store.ListFarms(ctx)
}

// GetFarm returns a farm or ErrFarmNotFound.
func (s *FarmService) GetFarm(ctx context.Context, id int64) (*domain.Farm, error) {
	return s.farm(ctx, id)
}

// CreateFarmCrop persists a crop owned by the farm. Fails with
// ErrFarmNotFound when the farm does not exist.
func (s *FarmService) CreateFarmCrop(ctx context.Context, farmID int64, req CreateCropRequest) (*domain.Crop, error) {
	farm, err := s.farm(ctx, farmID)
	if err != nil {
		return nil, err
	}

	crop := &domain.Crop{
		Name:        req.Name,
		PlantedArea: req.PlantedArea,
		PlantedDate: req.PlantedDate,
		HarvestDate: req.HarvestDate,
		FarmID:      farm.ID,
	}
	if err := s.store.SaveCrop(ctx, crop); err != nil {
		return nil, fmt.Errorf("save crop: %w", err)
	}

	s.recorder.EntityCreated(domainerrors.EntityCrop)
	s.indexed(s.index.IndexCrop(ctx, crop), domainerrors.EntityCrop, crop.ID)
	s.logger.Info("crop created", "crop_id", crop.ID, "farm_id", farm.ID, "name", crop.Name)

	return crop, nil
}

// ListFarmCrops returns the crops owned by the farm. Fails with
// ErrFarmNotFound when the farm does not exist.
func (s *FarmService) ListFarmCrops(ctx context.Context, farmID int64) ([]*domain.Crop, error) {
	if _, err := s.farm(ctx, farmID); err != nil {
		return nil, err
	}
	return s.store.ListCropsByFarm(ctx, farmID)
}
