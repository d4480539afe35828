package persist

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alivechess/server/internal/world"
)

// Loader resolves entity views and castle vaults from PostgreSQL on first
// access. A failed load is logged and leaves the view unset.
type Loader struct {
	places  *PlacementRepo
	vaults  *VaultRepo
	timeout time.Duration
	log     *zap.Logger
}

func NewLoader(db *DB, timeout time.Duration, log *zap.Logger) *Loader {
	return &Loader{
		places:  NewPlacementRepo(db),
		vaults:  NewVaultRepo(db),
		timeout: timeout,
		log:     log,
	}
}

const tracerName = "github.com/alivechess/server/internal/persist"

// start opens a bounded context and a span for one deferred load.
func (l *Loader) start(name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		cancel()
	}
}

func (l *Loader) LoadPoint(e world.PointHolder, pointID int32) {
	ctx, end := l.start("persist.LoadPoint",
		attribute.String("entity.kind", e.Kind().String()), attribute.Int("point.id", int(pointID)))
	c, err := l.places.PointByID(ctx, pointID)
	end(err)
	if err != nil {
		l.log.Warn("load point failed",
			zap.Stringer("kind", e.Kind()), zap.Int32("id", e.ID()), zap.Int32("point", pointID), zap.Error(err))
		return
	}
	e.SetPoint(c)
}

func (l *Loader) LoadSector(e world.SectorHolder, sectorID int32) {
	ctx, end := l.start("persist.LoadSector",
		attribute.String("entity.kind", e.Kind().String()), attribute.Int("sector.id", int(sectorID)))
	s, err := l.places.SectorByID(ctx, sectorID)
	end(err)
	if err != nil {
		l.log.Warn("load sector failed",
			zap.Stringer("kind", e.Kind()), zap.Int32("id", e.ID()), zap.Int32("sector", sectorID), zap.Error(err))
		return
	}
	e.SetSector(s)
}

func (l *Loader) LoadResourceStore(c *world.Castle, vaultID int32) {
	ctx, end := l.start("persist.LoadResourceStore", attribute.Int("vault.id", int(vaultID)))
	s, err := l.vaults.ResourceStore(ctx, vaultID)
	end(err)
	if err != nil {
		l.log.Warn("load resource vault failed",
			zap.Int32("castle", c.ID()), zap.Int32("vault", vaultID), zap.Error(err))
		return
	}
	c.SetResourceStore(s)
}

func (l *Loader) LoadFigureStore(c *world.Castle, vaultID int32) {
	ctx, end := l.start("persist.LoadFigureStore", attribute.Int("vault.id", int(vaultID)))
	s, err := l.vaults.FigureStore(ctx, vaultID)
	end(err)
	if err != nil {
		l.log.Warn("load figure vault failed",
			zap.Int32("castle", c.ID()), zap.Int32("vault", vaultID), zap.Error(err))
		return
	}
	c.SetFigureStore(s)
}
