package world

import "sync"

// King is a mobile leader standing on a single cell.
type King struct {
	pointPlacement

	rel       sync.Mutex // guards castles and resources
	castles   []*Castle
	resources []*Resource
}

// NewKing constructs a king. Its cell is resolved through the point loader
// when one is given and the cell has not been assigned.
func NewKing(id int32, opts ...Option) *King {
	k := &King{}
	k.init(id, buildOptions(opts), k)
	return k
}

func (k *King) Kind() Kind                 { return KindKing }
func (k *King) ObserverKind() ObserverKind { return KingObserver }

// AddView assigns the king's cell and places it on the world grid.
func (k *King) AddView(c *Cell) error { return k.addView(c) }

// Castles returns a snapshot of the castles the king owns.
func (k *King) Castles() []*Castle {
	k.rel.Lock()
	defer k.rel.Unlock()
	out := make([]*Castle, len(k.castles))
	copy(out, k.castles)
	return out
}

// Resources returns a snapshot of the resources the king has collected.
func (k *King) Resources() []*Resource {
	k.rel.Lock()
	defer k.rel.Unlock()
	out := make([]*Resource, len(k.resources))
	copy(out, k.resources)
	return out
}

func (k *King) linkCastle(c *Castle) {
	k.rel.Lock()
	k.castles = appendUnique(k.castles, c)
	k.rel.Unlock()
}

func (k *King) unlinkCastle(c *Castle) {
	k.rel.Lock()
	k.castles = removeItem(k.castles, c)
	k.rel.Unlock()
}

func (k *King) linkResource(r *Resource) {
	k.rel.Lock()
	k.resources = appendUnique(k.resources, r)
	k.rel.Unlock()
}

func (k *King) unlinkResource(r *Resource) {
	k.rel.Lock()
	k.resources = removeItem(k.resources, r)
	k.rel.Unlock()
}

func appendUnique[T comparable](s []T, v T) []T {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

func removeItem[T comparable](s []T, v T) []T {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
