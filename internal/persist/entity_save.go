package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/alivechess/server/internal/world"
)

const (
	upsertPoint = `INSERT INTO map_points (point_id, world_id, x, y, image_id, point_type, way_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (point_id) DO UPDATE SET
		  x = EXCLUDED.x, y = EXCLUDED.y, image_id = EXCLUDED.image_id,
		  point_type = EXCLUDED.point_type, way_cost = EXCLUDED.way_cost`
	upsertSector = `INSERT INTO map_sectors (sector_id, world_id, x, y, width, height, image_id, point_type, way_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (sector_id) DO UPDATE SET
		  x = EXCLUDED.x, y = EXCLUDED.y, width = EXCLUDED.width, height = EXCLUDED.height,
		  image_id = EXCLUDED.image_id, point_type = EXCLUDED.point_type, way_cost = EXCLUDED.way_cost`
	claimObserver = `INSERT INTO observer_ids (observer_id, world_id, kind) VALUES ($1, $2, $3)
		ON CONFLICT (observer_id) DO NOTHING`
)

// queueObserver claims the observer id of o ahead of its entity row. An id
// already held by another kind is left as is, and the entity row then fails
// its foreign key.
func queueObserver(b *pgx.Batch, worldID int32, o world.Observer) {
	b.Queue(claimObserver, o.ID(), worldID, int16(o.ObserverKind().Kind()))
}

type pointView interface {
	X() (int, error)
	Point() *world.Cell
	PointID() int32
}

type sectorView interface {
	X() (int, error)
	Sector() *world.Sector
	SectorID() int32
}

// queuePoint saves the entity's cell when it is resolved; an unresolved view
// keeps its stored row. The returned id is what the entity row references.
func queuePoint(b *pgx.Batch, worldID int32, e pointView) int32 {
	if _, err := e.X(); err != nil {
		return e.PointID()
	}
	c := e.Point()
	img, _ := c.ImageID()
	b.Queue(upsertPoint, c.ID(), worldID, c.X(), c.Y(), img, int16(c.Type()), c.WayCost())
	return c.ID()
}

func queueSector(b *pgx.Batch, worldID int32, e sectorView) int32 {
	if _, err := e.X(); err != nil {
		return e.SectorID()
	}
	s := e.Sector()
	b.Queue(upsertSector, s.ID(), worldID, s.X(), s.Y(), s.Width(), s.Height(), s.ImageID(), int16(s.Type()), s.WayCost())
	return s.ID()
}

// SaveWorld writes every entity of w, and every resolved view, in one
// transaction. The world row must exist. It returns the number of entities
// written.
func (r *EntityRepo) SaveWorld(ctx context.Context, w *world.World) (int, error) {
	id := w.ID()
	b := &pgx.Batch{}
	n := 0

	for k := range w.Kings() {
		queueObserver(b, id, k)
		p := queuePoint(b, id, k)
		b.Queue(`INSERT INTO kings (king_id, world_id, point_id) VALUES ($1, $2, $3)
			ON CONFLICT (king_id) DO UPDATE SET world_id = EXCLUDED.world_id, point_id = EXCLUDED.point_id`,
			k.ID(), id, p)
		n++
	}
	for c := range w.Castles() {
		queueObserver(b, id, c)
		s := queueSector(b, id, c)
		b.Queue(`INSERT INTO castles (castle_id, world_id, sector_id, king_id, resource_vault_id, figure_vault_id, distance)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (castle_id) DO UPDATE SET
			  world_id = EXCLUDED.world_id, sector_id = EXCLUDED.sector_id, king_id = EXCLUDED.king_id,
			  resource_vault_id = EXCLUDED.resource_vault_id, figure_vault_id = EXCLUDED.figure_vault_id,
			  distance = EXCLUDED.distance`,
			c.ID(), id, s, c.KingID(), c.ResourceVaultID(), c.FigureVaultID(), int32(c.Distance()))
		n++
	}
	for m := range w.Mines() {
		queueObserver(b, id, m)
		s := queueSector(b, id, m)
		b.Queue(`INSERT INTO mines (mine_id, world_id, sector_id, resource_type, output) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (mine_id) DO UPDATE SET
			  world_id = EXCLUDED.world_id, sector_id = EXCLUDED.sector_id,
			  resource_type = EXCLUDED.resource_type, output = EXCLUDED.output`,
			m.ID(), id, s, int16(m.ResourceType()), int32(m.Output()))
		n++
	}
	for res := range w.Resources() {
		p := queuePoint(b, id, res)
		b.Queue(`INSERT INTO resources (resource_id, world_id, point_id, resource_type, resource_count, king_id, vault_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (resource_id) DO UPDATE SET
			  world_id = EXCLUDED.world_id, point_id = EXCLUDED.point_id, resource_type = EXCLUDED.resource_type,
			  resource_count = EXCLUDED.resource_count, king_id = EXCLUDED.king_id, vault_id = EXCLUDED.vault_id`,
			res.ID(), id, p, int16(res.Type()), int32(res.Count()), res.KingID(), res.VaultID())
		n++
	}
	for o := range w.SingleObjects() {
		p := queuePoint(b, id, o)
		b.Queue(`INSERT INTO single_objects (object_id, world_id, point_id, object_type) VALUES ($1, $2, $3, $4)
			ON CONFLICT (object_id) DO UPDATE SET
			  world_id = EXCLUDED.world_id, point_id = EXCLUDED.point_id, object_type = EXCLUDED.object_type`,
			o.ID(), id, p, int16(o.Type()))
		n++
	}
	for o := range w.MultiObjects() {
		s := queueSector(b, id, o)
		b.Queue(`INSERT INTO multi_objects (object_id, world_id, sector_id, object_type) VALUES ($1, $2, $3, $4)
			ON CONFLICT (object_id) DO UPDATE SET
			  world_id = EXCLUDED.world_id, sector_id = EXCLUDED.sector_id, object_type = EXCLUDED.object_type`,
			o.ID(), id, s, int16(o.Type()))
		n++
	}
	for lp := range w.LandscapePoints() {
		p := queuePoint(b, id, lp)
		b.Queue(`INSERT INTO landscape_points (landscape_id, world_id, point_id, landscape_type, image_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (landscape_id) DO UPDATE SET
			  world_id = EXCLUDED.world_id, point_id = EXCLUDED.point_id,
			  landscape_type = EXCLUDED.landscape_type, image_id = EXCLUDED.image_id`,
			lp.ID(), id, p, int16(lp.Type()), lp.ImageID())
		n++
	}
	for br := range w.Borders() {
		p := queuePoint(b, id, br)
		b.Queue(`INSERT INTO borders (border_id, world_id, point_id, image_id) VALUES ($1, $2, $3, $4)
			ON CONFLICT (border_id) DO UPDATE SET
			  world_id = EXCLUDED.world_id, point_id = EXCLUDED.point_id, image_id = EXCLUDED.image_id`,
			br.ID(), id, p, br.ImageID())
		n++
	}

	if b.Len() == 0 {
		return 0, nil
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "persist.SaveWorld")
	defer span.End()
	span.SetAttributes(attribute.Int("world.id", int(id)), attribute.Int("entities", n), attribute.Int("statements", b.Len()))
	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, b).Close()
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return 0, fmt.Errorf("save world %d: %w", id, err)
	}
	r.log.Info("world entities saved", zap.Int32("world", id), zap.Int("count", n))
	return n, nil
}
