package world

import (
	"iter"
	"sync"
)

// member is the constraint of registry elements: a pointer to one of the
// entity kinds.
type member interface {
	comparable
	Placed
}

// registry is the collection of one entity kind. Its lock guards only that
// kind; callers that also touch the observer index take it nested inside.
type registry[T member] struct {
	mu    sync.RWMutex
	items []T
}

// indexLocked returns the position of the entity with id, or -1.
// Caller holds mu.
func (r *registry[T]) indexLocked(id int32) int {
	for i, e := range r.items {
		if e.ID() == id {
			return i
		}
	}
	return -1
}

func (r *registry[T]) removeAtLocked(i int) {
	var zero T
	last := len(r.items) - 1
	copy(r.items[i:], r.items[i+1:])
	r.items[last] = zero
	r.items = r.items[:last]
}

// find returns the first entity matching fn.
func (r *registry[T]) find(fn func(T) bool) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.items {
		if fn(e) {
			return e, true
		}
	}
	var zero T
	return zero, false
}

func (r *registry[T]) byID(id int32) (T, bool) {
	return r.find(func(e T) bool { return e.ID() == id })
}

func (r *registry[T]) contains(id int32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexLocked(id) >= 0
}

func (r *registry[T]) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// snapshot copies the current contents under the read lock.
func (r *registry[T]) snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// all yields a snapshot taken when iteration starts; no lock is held while
// the caller's loop body runs.
func (r *registry[T]) all() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range r.snapshot() {
			if !yield(e) {
				return
			}
		}
	}
}
