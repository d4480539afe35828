package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/alivechess/server/internal/core/system"
	"github.com/alivechess/server/internal/event"
)

// EventSystem delivers the events queued on the bus since the last tick.
// Phase 0 (Events).
type EventSystem struct {
	bus *event.Bus
	log *zap.Logger
}

func NewEventSystem(bus *event.Bus, log *zap.Logger) *EventSystem {
	return &EventSystem{bus: bus, log: log}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventSystem) Update(_ time.Duration) {
	if n := s.bus.Flush(); n > 0 {
		s.log.Debug("events delivered", zap.Int("count", n))
	}
}
