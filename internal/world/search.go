package world

import (
	"fmt"
	"iter"
)

func byID[T member](r *registry[T], id int32) T {
	e, _ := r.byID(id)
	return e
}

func byPointID[T member](r *registry[T], id int32) T {
	e, _ := r.find(func(e T) bool { return e.storedID() == id })
	return e
}

// Lookups by entity id. A miss returns nil.

func (w *World) SearchKingByID(id int32) *King         { return byID(&w.kings, id) }
func (w *World) SearchCastleByID(id int32) *Castle     { return byID(&w.castles, id) }
func (w *World) SearchMineByID(id int32) *Mine         { return byID(&w.mines, id) }
func (w *World) SearchResourceByID(id int32) *Resource { return byID(&w.resources, id) }
func (w *World) SearchSingleObjectByID(id int32) *SingleObject {
	return byID(&w.singles, id)
}
func (w *World) SearchMultiObjectByID(id int32) *MultiObject {
	return byID(&w.multis, id)
}
func (w *World) SearchLandscapePointByID(id int32) *LandscapePoint {
	return byID(&w.landscapes, id)
}
func (w *World) SearchBorderByID(id int32) *Border { return byID(&w.borders, id) }

// Lookups by the stored id of the entity's cell or sector. A miss returns
// nil.

func (w *World) SearchKingByPointID(id int32) *King         { return byPointID(&w.kings, id) }
func (w *World) SearchCastleByPointID(id int32) *Castle     { return byPointID(&w.castles, id) }
func (w *World) SearchMineByPointID(id int32) *Mine         { return byPointID(&w.mines, id) }
func (w *World) SearchResourceByPointID(id int32) *Resource { return byPointID(&w.resources, id) }
func (w *World) SearchSingleObjectByPointID(id int32) *SingleObject {
	return byPointID(&w.singles, id)
}
func (w *World) SearchMultiObjectByPointID(id int32) *MultiObject {
	return byPointID(&w.multis, id)
}
func (w *World) SearchLandscapePointByPointID(id int32) *LandscapePoint {
	return byPointID(&w.landscapes, id)
}
func (w *World) SearchBorderByPointID(id int32) *Border { return byPointID(&w.borders, id) }

// SearchObserverByID looks id up in the registry selected by kind. A miss
// returns (nil, nil); a nil kind is an error.
func (w *World) SearchObserverByID(id int32, kind ObserverKind) (Observer, error) {
	switch kind.(type) {
	case kingObserver:
		if k := w.SearchKingByID(id); k != nil {
			return k, nil
		}
	case castleObserver:
		if c := w.SearchCastleByID(id); c != nil {
			return c, nil
		}
	case mineObserver:
		if m := w.SearchMineByID(id); m != nil {
			return m, nil
		}
	default:
		return nil, fmt.Errorf("search observer %d: %w", id, ErrInvalidObserverKind)
	}
	return nil, nil
}

// Observer returns the observer registered under id, whatever its kind.
func (w *World) Observer(id int32) Observer {
	w.obsMu.RLock()
	defer w.obsMu.RUnlock()
	return w.observers[id]
}

// ObserverCount returns the size of the observer index.
func (w *World) ObserverCount() int {
	w.obsMu.RLock()
	defer w.obsMu.RUnlock()
	return len(w.observers)
}

func (w *World) ContainsKing(id int32) bool           { return w.kings.contains(id) }
func (w *World) ContainsCastle(id int32) bool         { return w.castles.contains(id) }
func (w *World) ContainsMine(id int32) bool           { return w.mines.contains(id) }
func (w *World) ContainsResource(id int32) bool       { return w.resources.contains(id) }
func (w *World) ContainsSingleObject(id int32) bool   { return w.singles.contains(id) }
func (w *World) ContainsMultiObject(id int32) bool    { return w.multis.contains(id) }
func (w *World) ContainsLandscapePoint(id int32) bool { return w.landscapes.contains(id) }
func (w *World) ContainsBorder(id int32) bool         { return w.borders.contains(id) }

// Contains dispatches on kind.
func (w *World) Contains(kind Kind, id int32) bool {
	switch kind {
	case KindKing:
		return w.ContainsKing(id)
	case KindCastle:
		return w.ContainsCastle(id)
	case KindMine:
		return w.ContainsMine(id)
	case KindResource:
		return w.ContainsResource(id)
	case KindSingleObject:
		return w.ContainsSingleObject(id)
	case KindMultiObject:
		return w.ContainsMultiObject(id)
	case KindLandscapePoint:
		return w.ContainsLandscapePoint(id)
	case KindBorder:
		return w.ContainsBorder(id)
	}
	return false
}

// SearchFreeCastle returns the first castle without a king, or nil.
func (w *World) SearchFreeCastle() *Castle {
	c, _ := w.castles.find((*Castle).IsFree)
	return c
}

// Enumerations iterate over a snapshot taken when the loop starts. No lock
// is held while the loop body runs, so it may add or remove entities.

func (w *World) Kings() iter.Seq[*King]                     { return w.kings.all() }
func (w *World) Castles() iter.Seq[*Castle]                 { return w.castles.all() }
func (w *World) Mines() iter.Seq[*Mine]                     { return w.mines.all() }
func (w *World) Resources() iter.Seq[*Resource]             { return w.resources.all() }
func (w *World) SingleObjects() iter.Seq[*SingleObject]     { return w.singles.all() }
func (w *World) MultiObjects() iter.Seq[*MultiObject]       { return w.multis.all() }
func (w *World) LandscapePoints() iter.Seq[*LandscapePoint] { return w.landscapes.all() }
func (w *World) Borders() iter.Seq[*Border]                 { return w.borders.all() }

// Len returns the size of one registry.
func (w *World) Len(kind Kind) int {
	switch kind {
	case KindKing:
		return w.kings.len()
	case KindCastle:
		return w.castles.len()
	case KindMine:
		return w.mines.len()
	case KindResource:
		return w.resources.len()
	case KindSingleObject:
		return w.singles.len()
	case KindMultiObject:
		return w.multis.len()
	case KindLandscapePoint:
		return w.landscapes.len()
	case KindBorder:
		return w.borders.len()
	}
	return 0
}

// Counts returns the size of every registry.
func (w *World) Counts() map[Kind]int {
	out := make(map[Kind]int, kindCount)
	for _, k := range Kinds() {
		out[k] = w.Len(k)
	}
	return out
}
