package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase           { return r.phase }
func (r recorder) Update(_ time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"save", PhasePersist, &log})
	r.Register(recorder{"flush", PhaseEvents, &log})
	r.Register(recorder{"gauges", PhaseMetrics, &log})
	r.Register(recorder{"flush2", PhaseEvents, &log})

	r.Tick(time.Second)
	assert.Equal(t, []string{"flush", "flush2", "gauges", "save"}, log)
	assert.Equal(t, 4, r.Len())
}

func TestTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"save", PhasePersist, &log})
	r.Register(recorder{"flush", PhaseEvents, &log})

	r.TickPhase(PhasePersist, 0)
	assert.Equal(t, []string{"save"}, log)
}
