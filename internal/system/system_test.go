package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	coresys "github.com/alivechess/server/internal/core/system"
	"github.com/alivechess/server/internal/event"
	"github.com/alivechess/server/internal/observability"
	"github.com/alivechess/server/internal/world"
)

func TestEventSystemFlushes(t *testing.T) {
	bus := event.NewBus()
	var got []world.EntityAttached
	event.Subscribe(bus, func(e world.EntityAttached) { got = append(got, e) })

	w := world.New(1, world.WithBus(bus))
	require.NoError(t, w.AddKing(world.NewKing(5)))
	assert.Empty(t, got)

	NewEventSystem(bus, zap.NewNop()).Update(0)
	require.Len(t, got, 1)
	assert.Equal(t, int32(5), got[0].ID)
}

func TestMetricsSystemInterval(t *testing.T) {
	c, err := observability.NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	w := world.New(1)
	require.NoError(t, w.AddKing(world.NewKing(1)))

	s := NewMetricsSystem(c, w, 2)
	s.Update(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Entities.WithLabelValues("king")))
	s.Update(0)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Entities.WithLabelValues("king")))
}

func TestPersistenceSystem(t *testing.T) {
	w := world.New(1)
	calls := 0
	var fail error
	saver := SaverFunc(func(ctx context.Context, got *world.World) (int, error) {
		calls++
		assert.Same(t, w, got)
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return 0, fail
	})

	s := NewPersistenceSystem(w, saver, zap.NewNop(), 3, time.Second)
	s.Update(0)
	s.Update(0)
	assert.Equal(t, 0, calls)
	s.Update(0)
	assert.Equal(t, 1, calls)

	fail = errors.New("disk full")
	assert.ErrorIs(t, s.SaveNow(), fail)
	assert.Equal(t, 2, calls)
}

func TestRunnerWiring(t *testing.T) {
	bus := event.NewBus()
	w := world.New(1, world.WithBus(bus))
	c, err := observability.NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	defer c.Observe(bus)()

	r := coresys.NewRunner()
	r.Register(NewMetricsSystem(c, w, 1))
	r.Register(NewEventSystem(bus, zap.NewNop()))

	require.NoError(t, w.AddMine(world.NewMine(1)))
	r.Tick(100 * time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Entities.WithLabelValues("mine")))
	assert.Zero(t, bus.Pending())
}
