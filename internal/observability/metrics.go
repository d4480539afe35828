// Package observability exposes world runtime metrics to Prometheus.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alivechess/server/internal/event"
	"github.com/alivechess/server/internal/world"
)

// Deferred load view labels.
const (
	ViewPoint         = "point"
	ViewSector        = "sector"
	ViewResourceStore = "resource_store"
	ViewFigureStore   = "figure_store"
)

// Collector bundles the world metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Entities      *prometheus.GaugeVec
	DeferredLoads *prometheus.CounterVec
	CellsExposed  prometheus.Counter
}

// NewCollector registers the world metrics against reg, defaulting to the
// global registry when nil. Registering twice on one registry returns the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	entities, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "alivechess_world_entities",
		Help: "Entities currently attached to a world, labeled by kind.",
	}, []string{"kind"}), "alivechess_world_entities")
	if err != nil {
		return nil, err
	}
	loads, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alivechess_deferred_loads_total",
		Help: "Lazy view loads served by the backing store, labeled by view.",
	}, []string{"view"}), "alivechess_deferred_loads_total")
	if err != nil {
		return nil, err
	}
	exposed, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "alivechess_cells_exposed_total",
		Help: "Hidden cells put back on the grid by entity removal.",
	}), "alivechess_cells_exposed_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:      gatherer,
		Entities:      entities,
		DeferredLoads: loads,
		CellsExposed:  exposed,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return c, err
	}
	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Sync sets the entity gauges from the registries of w.
func (c *Collector) Sync(w *world.World) {
	if c == nil {
		return
	}
	for k, n := range w.Counts() {
		c.Entities.WithLabelValues(k.String()).Set(float64(n))
	}
}

// Observe keeps the gauges current from attach and detach events delivered
// by b. The returned function stops observing.
func (c *Collector) Observe(b *event.Bus) (stop func()) {
	unsubs := []func(){
		event.Subscribe(b, func(e world.EntityAttached) {
			c.Entities.WithLabelValues(e.Kind.String()).Inc()
		}),
		event.Subscribe(b, func(e world.EntityDetached) {
			c.Entities.WithLabelValues(e.Kind.String()).Dec()
		}),
		event.Subscribe(b, func(e world.CellsExposed) {
			c.CellsExposed.Add(float64(e.Count))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// WrapLoaders counts every deferred load passed through to l.
func (c *Collector) WrapLoaders(l world.Loaders) world.Loaders {
	if c == nil || l == nil {
		return l
	}
	return &countingLoaders{next: l, loads: c.DeferredLoads}
}

type countingLoaders struct {
	next  world.Loaders
	loads *prometheus.CounterVec
}

func (l *countingLoaders) LoadPoint(e world.PointHolder, pointID int32) {
	l.loads.WithLabelValues(ViewPoint).Inc()
	l.next.LoadPoint(e, pointID)
}

func (l *countingLoaders) LoadSector(e world.SectorHolder, sectorID int32) {
	l.loads.WithLabelValues(ViewSector).Inc()
	l.next.LoadSector(e, sectorID)
}

func (l *countingLoaders) LoadResourceStore(c *world.Castle, vaultID int32) {
	l.loads.WithLabelValues(ViewResourceStore).Inc()
	l.next.LoadResourceStore(c, vaultID)
}

func (l *countingLoaders) LoadFigureStore(c *world.Castle, vaultID int32) {
	l.loads.WithLabelValues(ViewFigureStore).Inc()
	l.next.LoadFigureStore(c, vaultID)
}
