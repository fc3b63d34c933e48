package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
)

// cropColumns is the ordered list of columns selected in crop queries.
// Must match the scan order in scanCrop.
const cropColumns = `id, name, planted_area, planted_date, harvest_date, farm_id`

// scanCrop scans a crop row. FertilizerIDs is filled separately by
// attachFertilizers.
func scanCrop(scanner interface{ Scan(dest ...any) error }) (*domain.Crop, error) {
	var (
		c           domain.Crop
		plantedDate sql.NullString
		harvestDate sql.NullString
	)

	err := scanner.Scan(
		&c.ID,
		&c.Name,
		&c.PlantedArea,
		&plantedDate,
		&harvestDate,
		&c.FarmID,
	)
	if err != nil {
		return nil, err
	}

	if c.PlantedDate, err = parseNullDate(plantedDate); err != nil {
		return nil, fmt.Errorf("crop %d planted_date: %w", c.ID, err)
	}
	if c.HarvestDate, err = parseNullDate(harvestDate); err != nil {
		return nil, fmt.Errorf("crop %d harvest_date: %w", c.ID, err)
	}
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
		res, err := tx.ExecContext(ctx, `
			INSERT INTO crops (name, planted_area, planted_date, harvest_date, farm_id)
			VALUES (?, ?, ?, ?, ?)`,
			c.Name, c.PlantedArea, nullDate(c.PlantedDate), nullDate(c.HarvestDate), c.FarmID)
		if err != nil {
			return fmt.Errorf("insert crop: %w", constraintError(err))
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("crop id: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO crops (id, name, planted_area, planted_date, harvest_date, farm_id)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				planted_area = excluded.planted_area,
				planted_date = excluded.planted_date,
				harvest_date = excluded.harvest_date,
				farm_id = excluded.farm_id`,
			c.ID, c.Name, c.PlantedArea, nullDate(c.PlantedDate), nullDate(c.HarvestDate), c.FarmID)
		if err != nil {
			return fmt.Errorf("upsert crop %d: %w", c.ID, constraintError(err))
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM crop_fertilizers WHERE crop_id = ?`, id); err != nil {
		return fmt.Errorf("delete crop_fertilizers: %w", err)
	}
	for i, fertilizerID := range c.FertilizerIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO crop_fertilizers (crop_id, fertilizer_id, position)
			VALUES (?, ?, ?)`,
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
// Returns store.ErrNotFound if the crop does not exist.
func (s *Store) GetCrop(ctx context.Context, id int64) (*domain.Crop, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cropColumns+` FROM crops WHERE id = ?`, id)

	c, err := scanCrop(row)
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

// ListCrops returns all crops in insertion order.
func (s *Store) ListCrops(ctx context.Context) ([]*domain.Crop, error) {
	return s.queryCrops(ctx, `SELECT `+cropColumns+` FROM crops ORDER BY id ASC`)
}

// ListCropsByFarm returns the crops owned by a farm, using the farm_id index.
func (s *Store) ListCropsByFarm(ctx context.Context, farmID int64) ([]*domain.Crop, error) {
	return s.queryCrops(ctx,
		`SELECT `+cropColumns+` FROM crops WHERE farm_id = ? ORDER BY id ASC`, farmID)
}

// ListCropsByHarvestDate returns crops harvested within [start, end].
// Dates are stored as YYYY-MM-DD text, so lexical comparison is calendar order.
func (s *Store) ListCropsByHarvestDate(ctx context.Context, start, end domain.Date) ([]*domain.Crop, error) {
	return s.queryCrops(ctx, `
		SELECT `+cropColumns+` FROM crops
		WHERE harvest_date IS NOT NULL AND harvest_date BETWEEN ? AND ?
		ORDER BY id ASC`,
		start.String(), end.String())
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

// attachFertilizers loads the association set for every crop, one query per
// chunk of maxInParams crops.
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

	for chunk := range slices.Chunk(ids, maxInParams) {
		if err := s.attachFertilizerChunk(ctx, byID, chunk); err != nil {
			return err
		}
	}
	return nil
}

// attachFertilizerChunk fills FertilizerIDs for the crops in ids. A crop's
// rows all fall in one chunk, so position order holds per crop.
func (s *Store) attachFertilizerChunk(ctx context.Context, byID map[int64]*domain.Crop, ids []int64) error {
	placeholders, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx, `
		SELECT crop_id, fertilizer_id FROM crop_fertilizers
		WHERE crop_id IN (`+placeholders+`)
		ORDER BY crop_id, position`, args...)
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
