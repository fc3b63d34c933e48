// Package store defines the persistence interface for the Agrix server.
package store

import (
	"context"

	"github.com/agrix/agrix-server/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// IDs are assigned on first save (ID == 0) and are sequential per entity.
// Lookups by id return ErrNotFound when nothing matches.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Farms
	SaveFarm(ctx context.Context, farm *domain.Farm) error
	GetFarm(ctx context.Context, id int64) (*domain.Farm, error)
	ListFarms(ctx context.Context) ([]*domain.Farm, error)

	// Crops. SaveCrop persists the fertilizer association set along with
	// the crop's own fields, replacing whatever set was stored before.
	SaveCrop(ctx context.Context, crop *domain.Crop) error
	GetCrop(ctx context.Context, id int64) (*domain.Crop, error)
	ListCrops(ctx context.Context) ([]*domain.Crop, error)
	ListCropsByFarm(ctx context.Context, farmID int64) ([]*domain.Crop, error)
	ListCropsByHarvestDate(ctx context.Context, start, end domain.Date) ([]*domain.Crop, error)

	// Fertilizers
	SaveFertilizer(ctx context.Context, fertilizer *domain.Fertilizer) error
	GetFertilizer(ctx context.Context, id int64) (*domain.Fertilizer, error)
	ListFertilizers(ctx context.Context) ([]*domain.Fertilizer, error)
	GetFertilizersByIDs(ctx context.Context, ids []int64) ([]*domain.Fertilizer, error)
}
