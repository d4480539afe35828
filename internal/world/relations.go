package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/alivechess/server/internal/event"
)

// add registers e in r and attaches it to w. Observer kinds are inserted
// into the observer index while the kind lock is still held, so no reader
// sees an entity in one index but not the other.
func add[T member](w *World, r *registry[T], e T) error {
	var zero T
	if e == zero {
		return fmt.Errorf("add: %w", ErrNotInitialized)
	}
	id, kind := e.ID(), e.Kind()
	obs, isObserver := any(e).(Observer)

	err := func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		if e.World() != nil {
			return ErrAlreadyAttached
		}
		if r.indexLocked(id) >= 0 {
			return ErrDuplicateID
		}
		if isObserver {
			w.obsMu.Lock()
			defer w.obsMu.Unlock()
			if _, taken := w.observers[id]; taken {
				return ErrDuplicateObserver
			}
		}
		if !e.base().claim(w) {
			return ErrAlreadyAttached
		}
		r.items = append(r.items, e)
		if isObserver {
			w.observers[id] = obs
		}
		return nil
	}()
	if err != nil {
		w.log.Warn("add rejected", zap.Stringer("kind", kind), zap.Int32("id", id), zap.Error(err))
		return fmt.Errorf("add %s %d: %w", kind, id, err)
	}

	w.log.Debug("entity attached", zap.Stringer("kind", kind), zap.Int32("id", id))
	event.Emit(w.bus, EntityAttached{WorldID: w.id, Kind: kind, ID: id})
	return nil
}

// remove unregisters e, detaches it and re-exposes whatever its cells were
// covering. The spatial view is resolved first; an entity without one is
// left untouched.
func remove[T member](w *World, r *registry[T], e T) error {
	var zero T
	if e == zero {
		return fmt.Errorf("remove: %w", ErrNotInitialized)
	}
	id, kind := e.ID(), e.Kind()

	cells := e.footprint()
	if cells == nil {
		w.log.Warn("remove without spatial view", zap.Stringer("kind", kind), zap.Int32("id", id))
		return fmt.Errorf("remove %s %d: %w", kind, id, ErrNotInitialized)
	}

	err := func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		i := r.indexLocked(id)
		if i < 0 || r.items[i] != e {
			return ErrNotAttached
		}
		r.removeAtLocked(i)
		if obs, ok := any(e).(Observer); ok {
			w.obsMu.Lock()
			if w.observers[id] == obs {
				delete(w.observers, id)
			}
			w.obsMu.Unlock()
		}
		e.base().release(w)
		return nil
	}()
	if err != nil {
		return fmt.Errorf("remove %s %d: %w", kind, id, err)
	}

	exposed := w.reveal(cells)
	w.log.Debug("entity detached",
		zap.Stringer("kind", kind),
		zap.Int32("id", id),
		zap.Int("exposed", exposed),
	)
	event.Emit(w.bus, EntityDetached{WorldID: w.id, Kind: kind, ID: id})
	if exposed > 0 {
		event.Emit(w.bus, CellsExposed{WorldID: w.id, Count: exposed})
	}
	return nil
}

// reveal re-places the cell underneath each vacated cell.
func (w *World) reveal(cells []*Cell) int {
	g := w.grid.Load()
	if g == nil {
		return 0
	}
	n := 0
	for _, c := range cells {
		if g.reveal(c) {
			n++
		}
	}
	return n
}

func (w *World) AddKing(k *King) error    { return add(w, &w.kings, k) }
func (w *World) RemoveKing(k *King) error { return remove(w, &w.kings, k) }

func (w *World) AddCastle(c *Castle) error    { return add(w, &w.castles, c) }
func (w *World) RemoveCastle(c *Castle) error { return remove(w, &w.castles, c) }

func (w *World) AddMine(m *Mine) error    { return add(w, &w.mines, m) }
func (w *World) RemoveMine(m *Mine) error { return remove(w, &w.mines, m) }

func (w *World) AddResource(r *Resource) error    { return add(w, &w.resources, r) }
func (w *World) RemoveResource(r *Resource) error { return remove(w, &w.resources, r) }

func (w *World) AddSingleObject(o *SingleObject) error    { return add(w, &w.singles, o) }
func (w *World) RemoveSingleObject(o *SingleObject) error { return remove(w, &w.singles, o) }

func (w *World) AddMultiObject(o *MultiObject) error    { return add(w, &w.multis, o) }
func (w *World) RemoveMultiObject(o *MultiObject) error { return remove(w, &w.multis, o) }

func (w *World) AddLandscapePoint(p *LandscapePoint) error    { return add(w, &w.landscapes, p) }
func (w *World) RemoveLandscapePoint(p *LandscapePoint) error { return remove(w, &w.landscapes, p) }

func (w *World) AddBorder(b *Border) error    { return add(w, &w.borders, b) }
func (w *World) RemoveBorder(b *Border) error { return remove(w, &w.borders, b) }
