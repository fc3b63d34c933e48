package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
)

const farmColumns = `id, name, size`

func scanFarm(scanner interface{ Scan(dest ...any) error }) (*domain.Farm, error) {
	var f domain.Farm
	if err := scanner.Scan(&f.ID, &f.Name, &f.Size); err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveFarm inserts a farm when its ID is zero and upserts it otherwise.
func (s *Store) SaveFarm(ctx context.Context, f *domain.Farm) error {
	if f.ID == 0 {
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO farms (name, size) VALUES ($1, $2) RETURNING id`,
			f.Name, f.Size).Scan(&f.ID)
		if err != nil {
			return fmt.Errorf("insert farm: %w", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO farms (id, name, size) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, size = EXCLUDED.size`,
		f.ID, f.Name, f.Size)
	if err != nil {
		return fmt.Errorf("upsert farm %d: %w", f.ID, err)
	}
	return syncSequence(ctx, s.db, "farms")
}

// GetFarm retrieves a farm by its ID.
func (s *Store) GetFarm(ctx context.Context, id int64) (*domain.Farm, error) {
	f, err := scanFarm(s.db.QueryRowContext(ctx,
		`SELECT `+farmColumns+` FROM farms WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFoundf("farm %d", id)
	}
	return f, err
}

// ListFarms returns all farms in id order.
func (s *Store) ListFarms(ctx context.Context) ([]*domain.Farm, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+farmColumns+` FROM farms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	farms := []*domain.Farm{}
	for rows.Next() {
		f, err := scanFarm(rows)
		if err != nil {
			return nil, err
		}
		farms = append(farms, f)
	}
	return farms, rows.Err()
}
