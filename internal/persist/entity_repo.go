package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/alivechess/server/internal/world"
)

// EntityRepo reads the entities of a world. Views are not joined in: each
// entity carries only its stored view id and resolves the view lazily.
type EntityRepo struct {
	db  *DB
	log *zap.Logger
}

func NewEntityRepo(db *DB, log *zap.Logger) *EntityRepo {
	return &EntityRepo{db: db, log: log}
}

// LoadInto adds every stored entity of w's id to w and returns how many were
// added.
func (r *EntityRepo) LoadInto(ctx context.Context, w *world.World, loaders world.Loaders) (int, error) {
	steps := []struct {
		name string
		fn   func(context.Context, *world.World, []world.Option) (int, error)
	}{
		{"kings", r.loadKings},
		{"castles", r.loadCastles},
		{"mines", r.loadMines},
		{"resources", r.loadResources},
		{"single_objects", r.loadSingleObjects},
		{"multi_objects", r.loadMultiObjects},
		{"landscape_points", r.loadLandscapePoints},
		{"borders", r.loadBorders},
	}
	opts := []world.Option{world.WithLoaders(loaders)}
	total := 0
	for _, s := range steps {
		n, err := s.fn(ctx, w, opts)
		if err != nil {
			return total, fmt.Errorf("load %s: %w", s.name, err)
		}
		total += n
	}
	r.log.Info("world entities loaded", zap.Int32("world", w.ID()), zap.Int("count", total))
	return total, nil
}

// eachRow runs scan for every row of query and adds what it builds.
func eachRow(ctx context.Context, db *DB, query string, worldID int32, scan func(pgx.Rows) error) (int, error) {
	rows, err := db.Pool.Query(ctx, query, worldID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		if err := scan(rows); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

func stored(opts []world.Option, worldID, viewID int32) []world.Option {
	return append(append([]world.Option(nil), opts...), world.WithStoredIDs(worldID, viewID))
}

func (r *EntityRepo) loadKings(ctx context.Context, w *world.World, opts []world.Option) (int, error) {
	return eachRow(ctx, r.db, `SELECT king_id, point_id FROM kings WHERE world_id = $1 ORDER BY king_id`, w.ID(),
		func(rows pgx.Rows) error {
			var id, pointID int32
			if err := rows.Scan(&id, &pointID); err != nil {
				return err
			}
			return w.AddKing(world.NewKing(id, stored(opts, w.ID(), pointID)...))
		})
}

func (r *EntityRepo) loadCastles(ctx context.Context, w *world.World, opts []world.Option) (int, error) {
	return eachRow(ctx, r.db,
		`SELECT castle_id, sector_id, king_id, resource_vault_id, figure_vault_id, distance
		 FROM castles WHERE world_id = $1 ORDER BY castle_id`, w.ID(),
		func(rows pgx.Rows) error {
			var id, sectorID, kingID, resVault, figVault, distance int32
			if err := rows.Scan(&id, &sectorID, &kingID, &resVault, &figVault, &distance); err != nil {
				return err
			}
			c := world.NewCastle(id, stored(opts, w.ID(), sectorID)...)
			c.SetDistance(int(distance))
			if err := castleRefs(c, kingID, resVault, figVault); err != nil {
				return err
			}
			return w.AddCastle(c)
		})
}

// castleRefs stores the foreign keys of a castle row.
func castleRefs(c *world.Castle, kingID, resVault, figVault int32) error {
	if err := c.SetKingID(kingID); err != nil {
		return err
	}
	if err := c.SetResourceVaultID(resVault); err != nil {
		return err
	}
	return c.SetFigureVaultID(figVault)
}

func resourceRefs(res *world.Resource, kingID, vaultID int32) error {
	if err := res.SetKingID(kingID); err != nil {
		return err
	}
	return res.SetVaultID(vaultID)
}

func (r *EntityRepo) loadMines(ctx context.Context, w *world.World, opts []world.Option) (int, error) {
	return eachRow(ctx, r.db,
		`SELECT mine_id, sector_id, resource_type, output FROM mines WHERE world_id = $1 ORDER BY mine_id`, w.ID(),
		func(rows pgx.Rows) error {
			var id, sectorID, output int32
			var typ int16
			if err := rows.Scan(&id, &sectorID, &typ, &output); err != nil {
				return err
			}
			m := world.NewMine(id, stored(opts, w.ID(), sectorID)...)
			m.SetResourceType(world.ResourceType(typ))
			m.SetOutput(int(output))
			return w.AddMine(m)
		})
}

func (r *EntityRepo) loadResources(ctx context.Context, w *world.World, opts []world.Option) (int, error) {
	return eachRow(ctx, r.db,
		`SELECT resource_id, point_id, resource_type, resource_count, king_id, vault_id
		 FROM resources WHERE world_id = $1 ORDER BY resource_id`, w.ID(),
		func(rows pgx.Rows) error {
			var id, pointID, count, kingID, vaultID int32
			var typ int16
			if err := rows.Scan(&id, &pointID, &typ, &count, &kingID, &vaultID); err != nil {
				return err
			}
			res := world.NewResource(id, world.ResourceType(typ), int(count), stored(opts, w.ID(), pointID)...)
			if err := resourceRefs(res, kingID, vaultID); err != nil {
				return err
			}
			return w.AddResource(res)
		})
}

func (r *EntityRepo) loadSingleObjects(ctx context.Context, w *world.World, opts []world.Option) (int, error) {
	return eachRow(ctx, r.db,
		`SELECT object_id, point_id, object_type FROM single_objects WHERE world_id = $1 ORDER BY object_id`, w.ID(),
		func(rows pgx.Rows) error {
			var id, pointID int32
			var typ int16
			if err := rows.Scan(&id, &pointID, &typ); err != nil {
				return err
			}
			return w.AddSingleObject(world.NewSingleObject(id, world.ObjectType(typ), stored(opts, w.ID(), pointID)...))
		})
}

func (r *EntityRepo) loadMultiObjects(ctx context.Context, w *world.World, opts []world.Option) (int, error) {
	return eachRow(ctx, r.db,
		`SELECT object_id, sector_id, object_type FROM multi_objects WHERE world_id = $1 ORDER BY object_id`, w.ID(),
		func(rows pgx.Rows) error {
			var id, sectorID int32
			var typ int16
			if err := rows.Scan(&id, &sectorID, &typ); err != nil {
				return err
			}
			return w.AddMultiObject(world.NewMultiObject(id, world.ObjectType(typ), stored(opts, w.ID(), sectorID)...))
		})
}

func (r *EntityRepo) loadLandscapePoints(ctx context.Context, w *world.World, opts []world.Option) (int, error) {
	return eachRow(ctx, r.db,
		`SELECT landscape_id, point_id, landscape_type, image_id
		 FROM landscape_points WHERE world_id = $1 ORDER BY landscape_id`, w.ID(),
		func(rows pgx.Rows) error {
			var id, pointID, imageID int32
			var typ int16
			if err := rows.Scan(&id, &pointID, &typ, &imageID); err != nil {
				return err
			}
			p := world.NewLandscapePoint(id, world.LandscapeType(typ), imageID, stored(opts, w.ID(), pointID)...)
			return w.AddLandscapePoint(p)
		})
}

func (r *EntityRepo) loadBorders(ctx context.Context, w *world.World, opts []world.Option) (int, error) {
	return eachRow(ctx, r.db,
		`SELECT border_id, point_id, image_id FROM borders WHERE world_id = $1 ORDER BY border_id`, w.ID(),
		func(rows pgx.Rows) error {
			var id, pointID, imageID int32
			if err := rows.Scan(&id, &pointID, &imageID); err != nil {
				return err
			}
			return w.AddBorder(world.NewBorder(id, imageID, stored(opts, w.ID(), pointID)...))
		})
}
