package system

import (
	"time"

	coresys "github.com/alivechess/server/internal/core/system"
	"github.com/alivechess/server/internal/observability"
	"github.com/alivechess/server/internal/world"
)

// MetricsSystem resynchronizes the entity gauges with the registries every
// interval ticks, correcting any drift from events dropped while nobody was
// observing. Phase 1 (Metrics).
type MetricsSystem struct {
	collector *observability.Collector
	world     *world.World
	tickCount int
	interval  int
}

func NewMetricsSystem(c *observability.Collector, w *world.World, intervalTicks int) *MetricsSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &MetricsSystem{collector: c, world: w, interval: intervalTicks}
}

func (s *MetricsSystem) Phase() coresys.Phase { return coresys.PhaseMetrics }

func (s *MetricsSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.collector.Sync(s.world)
}
