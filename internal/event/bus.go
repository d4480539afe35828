package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted before a Flush are
// delivered by that Flush; events emitted by handlers during a Flush wait for
// the next one. Emit is safe from any goroutine.
type Bus struct {
	mu       sync.Mutex // guards back and handlers
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]*handler

	flushMu sync.Mutex // serializes Flush
}

type handler struct {
	fn any
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]*handler),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer. A nil bus drops the event.
func Emit[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	t := typeKey[T]()
	b.mu.Lock()
	b.back[t] = append(b.back[t], event)
	b.mu.Unlock()
}

// Subscribe registers a typed handler for events of type T and returns a
// function that removes it.
func Subscribe[T any](b *Bus, fn func(T)) (unsubscribe func()) {
	t := typeKey[T]()
	h := &handler{fn: fn}
	b.mu.Lock()
	b.handlers[t] = append(b.handlers[t], h)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			hs := b.handlers[t]
			for i, x := range hs {
				if x == h {
					b.handlers[t] = append(hs[:i:i], hs[i+1:]...)
					break
				}
			}
		})
	}
}

// Pending returns the number of queued events not yet flushed.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}

// Flush rotates back→front and delivers every front event to its handlers.
// Handlers run on the calling goroutine with no bus lock held.
func (b *Bus) Flush() int {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
	handlers := make(map[reflect.Type][]*handler, len(b.front))
	for t := range b.front {
		handlers[t] = append([]*handler(nil), b.handlers[t]...)
	}
	b.mu.Unlock()

	n := 0
	for t, events := range b.front {
		for _, ev := range events {
			for _, h := range handlers[t] {
				callHandler(h.fn, ev)
			}
			n++
		}
		b.front[t] = events[:0]
	}
	return n
}

func callHandler(fn any, event any) {
	reflect.ValueOf(fn).Call([]reflect.Value{reflect.ValueOf(event)})
}
