package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/alivechess/server/internal/core/system"
	"github.com/alivechess/server/internal/world"
)

// Saver writes a world to a backing store and returns how many records it
// wrote. persist.EntityRepo satisfies it.
type Saver interface {
	SaveWorld(ctx context.Context, w *world.World) (int, error)
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, w *world.World) (int, error)

func (f SaverFunc) SaveWorld(ctx context.Context, w *world.World) (int, error) { return f(ctx, w) }

// PersistenceSystem periodically saves the world. Phase 2 (Persist).
type PersistenceSystem struct {
	world     *world.World
	saver     Saver
	log       *zap.Logger
	timeout   time.Duration
	tickCount int
	interval  int // save every N ticks
}

func NewPersistenceSystem(w *world.World, saver Saver, log *zap.Logger, intervalTicks int, timeout time.Duration) *PersistenceSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &PersistenceSystem{
		world:    w,
		saver:    saver,
		log:      log,
		timeout:  timeout,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	if err := s.SaveNow(); err != nil {
		s.log.Error("periodic save failed", zap.Error(err))
	}
}

// SaveNow saves immediately. Called for graceful shutdown.
func (s *PersistenceSystem) SaveNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.saver.SaveWorld(ctx, s.world)
	if err != nil {
		return err
	}
	s.log.Debug("world saved", zap.Int("records", n))
	return nil
}
