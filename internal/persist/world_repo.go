package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrWorldNotFound is returned by WorldRepo.LoadHeader for an unknown id.
var ErrWorldNotFound = errors.New("world not found")

// WorldHeader is a row of the worlds table.
type WorldHeader struct {
	ID           int32
	Width        int32
	Height       int32
	LayoutDigest []byte
	LevelName    string
}

type WorldRepo struct {
	db *DB
}

func NewWorldRepo(db *DB) *WorldRepo {
	return &WorldRepo{db: db}
}

func (r *WorldRepo) LoadHeader(ctx context.Context, id int32) (WorldHeader, error) {
	var h WorldHeader
	err := r.db.Pool.QueryRow(ctx,
		`SELECT world_id, width, height, layout_digest, level_name
		 FROM worlds WHERE world_id = $1`, id,
	).Scan(&h.ID, &h.Width, &h.Height, &h.LayoutDigest, &h.LevelName)
	if errors.Is(err, pgx.ErrNoRows) {
		return WorldHeader{}, fmt.Errorf("world %d: %w", id, ErrWorldNotFound)
	}
	if err != nil {
		return WorldHeader{}, fmt.Errorf("load world %d: %w", id, err)
	}
	return h, nil
}

// SaveHeader inserts or updates the world row.
func (r *WorldRepo) SaveHeader(ctx context.Context, h WorldHeader) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO worlds (world_id, width, height, layout_digest, level_name)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (world_id) DO UPDATE SET
		   width = EXCLUDED.width, height = EXCLUDED.height,
		   layout_digest = EXCLUDED.layout_digest, level_name = EXCLUDED.level_name`,
		h.ID, h.Width, h.Height, h.LayoutDigest, h.LevelName,
	)
	if err != nil {
		return fmt.Errorf("save world %d: %w", h.ID, err)
	}
	return nil
}
