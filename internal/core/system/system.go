package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseEvents  Phase = iota // 0: deliver queued world events
	PhaseMetrics              // 1: refresh gauges
	PhasePersist              // 2: periodic save to the backing store
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
