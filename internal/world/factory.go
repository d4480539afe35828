package world

import (
	"sync"

	"github.com/alivechess/server/internal/event"
)

// Factory constructs castles and notifies the subsystems registered with
// it. Hooks run synchronously on the constructing goroutine.
type Factory struct {
	bus  *event.Bus
	opts []Option

	mu    sync.Mutex
	next  int
	hooks map[int]func(*Castle)
	order []int
}

// NewFactory returns a factory that publishes CastleCreated on bus (which
// may be nil) and passes opts to every castle it builds.
func NewFactory(bus *event.Bus, opts ...Option) *Factory {
	return &Factory{
		bus:   bus,
		opts:  opts,
		hooks: make(map[int]func(*Castle)),
	}
}

// OnCastleCreated registers fn and returns a function that removes it.
func (f *Factory) OnCastleCreated(fn func(*Castle)) (unsubscribe func()) {
	f.mu.Lock()
	id := f.next
	f.next++
	f.hooks[id] = fn
	f.order = append(f.order, id)
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.hooks[id]; !ok {
			return
		}
		delete(f.hooks, id)
		f.order = removeItem(f.order, id)
	}
}

// NewCastle builds a castle, runs every hook in registration order and
// publishes CastleCreated.
func (f *Factory) NewCastle(id int32, opts ...Option) *Castle {
	all := make([]Option, 0, len(f.opts)+len(opts))
	all = append(all, f.opts...)
	all = append(all, opts...)
	c := NewCastle(id, all...)

	f.mu.Lock()
	hooks := make([]func(*Castle), 0, len(f.order))
	for _, h := range f.order {
		hooks = append(hooks, f.hooks[h])
	}
	f.mu.Unlock()

	for _, h := range hooks {
		h(c)
	}
	event.Emit(f.bus, CastleCreated{Castle: c})
	return c
}
