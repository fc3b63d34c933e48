package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
)

const cropColumns = `id, name, planted_area, planted_date, harvest_date, farm_id`

func scanCrop(scanner interface{ Scan(dest ...any) error }) (*domain.Crop, error) {
	var (
		c                        domain.Crop
		plantedDate, harvestDate sql.NullTime
	)
	if err := scanner.Scan(&c.ID, &c.Name, &c.PlantedArea, &plantedDate, &harvestDate, &c.FarmID); err != nil {
		return nil, err
	}
	c.PlantedDate = fromNullTime(plantedDate)
	c.HarvestDate = fromNullTime(harvestDate)
	return &c, nil
}

// SaveCrop inserts or upserts a crop and replaces its fertilizer
// associations in one transaction.
func (s *Store) SaveCrop(ctx context.Context, c *domain.Crop) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := c.ID
	if id == 0 {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO crops (name, planted_area, planted_date, harvest_date, farm_id)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			c.Name, c.PlantedArea, nullDate(c.PlantedDate), nullDate(c.HarvestDate), c.FarmID,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert crop: %w", constraintError(err))
		}
	} else {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO crops (id, name, planted_area, planted_date, harvest_date, farm_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				planted_area = EXCLUDED.planted_area,
				planted_date = EXCLUDED.planted_date,
				harvest_date = EXCLUDED.harvest_date,
				farm_id = EXCLUDED.farm_id`,
			c.ID, c.Name, c.PlantedArea, nullDate(c.PlantedDate), nullDate(c.HarvestDate), c.FarmID)
		if err != nil {
			return fmt.Errorf("upsert crop %d: %w", c.ID, constraintError(err))
		}
		if err := syncSequence(ctx, tx, "crops"); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM crop_fertilizers WHERE crop_id = $1`, id); err != nil {
		return fmt.Errorf("delete crop_fertilizers: %w", err)
	}
	for i, fertilizerID := range c.FertilizerIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO crop_fertilizers (crop_id, fertilizer_id, position)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			id, fertilizerID, i)
		if err != nil {
			return fmt.Errorf("insert crop_fertilizer: %w", constraintError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit crop: %w", err)
	}
	c.ID = id
	return nil
}

// GetCrop retrieves a crop and its fertilizer associations.
func (s *Store) GetCrop(ctx context.Context, id int64) (*domain.Crop, error) {
	c, err := scanCrop(s.db.QueryRowContext(ctx,
		`SELECT `+cropColumns+` FROM crops WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFoundf("crop %d", id)
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachFertilizers(ctx, []*domain.Crop{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCrops returns all crops in id order.
func (s *Store) ListCrops(ctx context.Context) ([]*domain.Crop, error) {
	return s.queryCrops(ctx, `SELECT `+cropColumns+` FROM crops ORDER BY id`)
}

// ListCropsByFarm returns the crops owned by a farm.
func (s *Store) ListCropsByFarm(ctx context.Context, farmID int64) ([]*domain.Crop, error) {
	return s.queryCrops(ctx,
		`SELECT `+cropColumns+` FROM crops WHERE farm_id = $1 ORDER BY id`, farmID)
}

// ListCropsByHarvestDate returns crops harvested within [start, end].
func (s *Store) ListCropsByHarvestDate(ctx context.Context, start, end domain.Date) ([]*domain.Crop, error) {
	return s.queryCrops(ctx, `
		SELECT `+cropColumns+` FROM crops
		WHERE harvest_date BETWEEN $1 AND $2
		ORDER BY id`,
		start.Time(), end.Time())
}

func (s *Store) queryCrops(ctx context.Context, query string, args ...any) ([]*domain.Crop, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	crops := []*domain.Crop{}
	for rows.Next() {
		c, err := scanCrop(rows)
		if err != nil {
			return nil, err
		}
		crops = append(crops, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachFertilizers(ctx, crops); err != nil {
		return nil, err
	}
	return crops, nil
}

func (s *Store) attachFertilizers(ctx context.Context, crops []*domain.Crop) error {
	if len(crops) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Crop, len(crops))
	ids := make([]int64, len(crops))
	for i, c := range crops {
		byID[c.ID] = c
		ids[i] = c.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT crop_id, fertilizer_id FROM crop_fertilizers
		WHERE crop_id = ANY($1)
		ORDER BY crop_id, position`, ids)
	if err != nil {
		return fmt.Errorf("query crop_fertilizers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cropID, fertilizerID int64
		if err := rows.Scan(&cropID, &fertilizerID); err != nil {
			return err
		}
		if c, ok := byID[cropID]; ok {
			c.FertilizerIDs = append(c.FertilizerIDs, fertilizerID)
		}
	}
	return rows.Err()
}
