// Package badgerdb implements store.Store on an embedded Badger key-value database.
//
// Records are JSON values under "<kind>:<zero-padded id>". Secondary
// indexes live under "<kind>:idx:<name>:<value>:<id>" with empty values, so
// a prefix scan answers both the farm lookup and the harvest-date range.
package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	farms       *entity[domain.Farm]
	crops       *entity[domain.Crop]
	fertilizers *entity[domain.Fertilizer]
}

// Options configures Open.
type Options struct {
	// InMemory keeps all data in memory; Path is ignored.
	InMemory bool
}

// Open creates a new Store at path.
func Open(path string, logger *slog.Logger, o Options) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = !o.InMemory // Sync to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.initEntities(); err != nil {
		db.Close()
		return nil, err
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path, "in_memory", o.InMemory)
	}
	return s, nil
}

func (s *Store) initEntities() error {
	var err error

	s.farms, err = newEntity(s.db, "farm:",
		func(f *domain.Farm) int64 { return f.ID },
		func(f *domain.Farm, id int64) { f.ID = id })
	if err != nil {
		return err
	}

	s.crops, err = newEntity(s.db, "crop:",
		func(c *domain.Crop) int64 { return c.ID },
		func(c *domain.Crop, id int64) { c.ID = id })
	if err != nil {
		return err
	}
	s.crops.
		withIndex("farm", func(c *domain.Crop) []string {
			return []string{padID(c.FarmID)}
		}).
		withIndex("harvest", func(c *domain.Crop) []string {
			if c.HarvestDate.IsZero() {
				return nil
			}
			return []string{c.HarvestDate.String()}
		})

	s.fertilizers, err = newEntity(s.db, "fertilizer:",
		func(f *domain.Fertilizer) int64 { return f.ID },
		func(f *domain.Fertilizer, id int64) { f.ID = id })
	return err
}

// Close releases the id sequences and closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	err := errors.Join(
		s.farms.release(),
		s.crops.release(),
		s.fertilizers.release(),
	)
	return errors.Join(err, s.db.Close())
}

// Ping reports whether the database is still open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

// SaveFarm inserts or replaces a farm.
func (s *Store) SaveFarm(ctx context.Context, f *domain.Farm) error {
	return s.farms.save(ctx, f)
}

// GetFarm retrieves a farm by its ID.
func (s *Store) GetFarm(ctx context.Context, id int64) (*domain.Farm, error) {
	return s.farms.get(ctx, id)
}

// ListFarms returns all farms in id order.
func (s *Store) ListFarms(ctx context.Context) ([]*domain.Farm, error) {
	return s.farms.collect(ctx)
}

// SaveCrop inserts or replaces a crop. The association set is part of the
// stored record, so it is replaced along with everything else.
func (s *Store) SaveCrop(ctx context.Context, c *domain.Crop) error {
	if _, err := s.farms.get(ctx, c.FarmID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrInvalidInput.WithMessage(fmt.Sprintf("farm %d does not exist", c.FarmID))
		}
		return err
	}
	return s.crops.save(ctx, c)
}

// GetCrop retrieves a crop by its ID.
func (s *Store) GetCrop(ctx context.Context, id int64) (*domain.Crop, error) {
	return s.crops.get(ctx, id)
}

// ListCrops returns all crops in id order.
func (s *Store) ListCrops(ctx context.Context) ([]*domain.Crop, error) {
	return s.crops.collect(ctx)
}

// ListCropsByFarm returns the crops owned by a farm via the farm index.
func (s *Store) ListCropsByFarm(ctx context.Context, farmID int64) ([]*domain.Crop, error) {
	return s.crops.listByIndex(ctx, "farm", padID(farmID))
}

// ListCropsByHarvestDate returns crops harvested within [start, end].
func (s *Store) ListCropsByHarvestDate(ctx context.Context, start, end domain.Date) ([]*domain.Crop, error) {
	return s.crops.listByIndexRange(ctx, "harvest", start.String(), end.String())
}

// SaveFertilizer inserts or replaces a fertilizer.
func (s *Store) SaveFertilizer(ctx context.Context, f *domain.Fertilizer) error {
	return s.fertilizers.save(ctx, f)
}

// GetFertilizer retrieves a fertilizer by its ID.
func (s *Store) GetFertilizer(ctx context.Context, id int64) (*domain.Fertilizer, error) {
	return s.fertilizers.get(ctx, id)
}

// ListFertilizers returns all fertilizers in id order.
func (s *Store) ListFertilizers(ctx context.Context) ([]*domain.Fertilizer, error) {
	return s.fertilizers.collect(ctx)
}

// GetFertilizersByIDs returns the fertilizers for ids in the given order.
func (s *Store) GetFertilizersByIDs(ctx context.Context, ids []int64) ([]*domain.Fertilizer, error) {
	return s.fertilizers.getMany(ctx, ids)
}
