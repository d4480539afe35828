package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alivechess/server/internal/world"
)

// ErrPlacementNotFound is returned when a cell or sector row does not exist.
var ErrPlacementNotFound = errors.New("placement not found")

// PlacementRepo stores the cells and sectors entities are placed on.
type PlacementRepo struct {
	db *DB
}

func NewPlacementRepo(db *DB) *PlacementRepo {
	return &PlacementRepo{db: db}
}

func (r *PlacementRepo) SavePoint(ctx context.Context, worldID int32, c *world.Cell) error {
	img, _ := c.ImageID()
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO map_points (point_id, world_id, x, y, image_id, point_type, way_cost)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (point_id) DO UPDATE SET
		   x = EXCLUDED.x, y = EXCLUDED.y, image_id = EXCLUDED.image_id,
		   point_type = EXCLUDED.point_type, way_cost = EXCLUDED.way_cost`,
		c.ID(), worldID, c.X(), c.Y(), img, int16(c.Type()), c.WayCost(),
	)
	if err != nil {
		return fmt.Errorf("save point %d: %w", c.ID(), err)
	}
	return nil
}

func (r *PlacementRepo) SaveSector(ctx context.Context, worldID int32, s *world.Sector) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO map_sectors (sector_id, world_id, x, y, width, height, image_id, point_type, way_cost)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (sector_id) DO UPDATE SET
		   x = EXCLUDED.x, y = EXCLUDED.y, width = EXCLUDED.width, height = EXCLUDED.height,
		   image_id = EXCLUDED.image_id, point_type = EXCLUDED.point_type, way_cost = EXCLUDED.way_cost`,
		s.ID(), worldID, s.X(), s.Y(), s.Width(), s.Height(), s.ImageID(), int16(s.Type()), s.WayCost(),
	)
	if err != nil {
		return fmt.Errorf("save sector %d: %w", s.ID(), err)
	}
	return nil
}

// PointByID loads a single cell. The cell is not placed on any grid.
func (r *PlacementRepo) PointByID(ctx context.Context, id int32) (*world.Cell, error) {
	var (
		x, y    int32
		imageID int32
		typ     int16
		cost    float32
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT x, y, image_id, point_type, way_cost FROM map_points WHERE point_id = $1`, id,
	).Scan(&x, &y, &imageID, &typ, &cost)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("point %d: %w", id, ErrPlacementNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load point %d: %w", id, err)
	}
	return world.CreatePoint(world.PointSpec{
		ID:      id,
		X:       int(x),
		Y:       int(y),
		ImageID: imageID,
		Type:    world.PointType(typ),
		WayCost: cost,
	}), nil
}

// SectorByID loads a sector and rebuilds its member cells.
func (r *PlacementRepo) SectorByID(ctx context.Context, id int32) (*world.Sector, error) {
	var (
		x, y, w, h int32
		imageID    int32
		typ        int16
		cost       float32
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT x, y, width, height, image_id, point_type, way_cost
		 FROM map_sectors WHERE sector_id = $1`, id,
	).Scan(&x, &y, &w, &h, &imageID, &typ, &cost)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sector %d: %w", id, ErrPlacementNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load sector %d: %w", id, err)
	}
	return world.BuildSector(world.SectorSpec{
		ID:      id,
		X:       int(x),
		Y:       int(y),
		Width:   int(w),
		Height:  int(h),
		ImageID: imageID,
		Type:    world.PointType(typ),
		WayCost: cost,
	})
}
