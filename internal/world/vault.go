package world

import "sync"

// ResourceType is the kind of a loose resource or a vault entry.
type ResourceType int16

const (
	ResourceNone ResourceType = iota
	ResourceGold
	ResourceWood
	ResourceStone
	ResourceIron
	ResourceCoal
)

var resourceTypeNames = [...]string{
	ResourceNone:  "none",
	ResourceGold:  "gold",
	ResourceWood:  "wood",
	ResourceStone: "stone",
	ResourceIron:  "iron",
	ResourceCoal:  "coal",
}

func (t ResourceType) String() string {
	if t < 0 || int(t) >= len(resourceTypeNames) {
		return "unknown"
	}
	return resourceTypeNames[t]
}

// ParseResourceType resolves a lower-case resource name.
func ParseResourceType(name string) (ResourceType, bool) {
	for i, n := range resourceTypeNames {
		if n == name {
			return ResourceType(i), true
		}
	}
	return ResourceNone, false
}

// ResourceStore is a castle's resource vault. Its resource list is kept in
// step with Resource.SetVault.
type ResourceStore struct {
	mu        sync.RWMutex
	id        int32
	resources []*Resource
}

func NewResourceStore(id int32) *ResourceStore {
	return &ResourceStore{id: id}
}

func (s *ResourceStore) ID() int32 { return s.id }

// Resources returns a snapshot of the stored resources.
func (s *ResourceStore) Resources() []*Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// Amount sums the count of every stored resource of type t.
func (s *ResourceStore) Amount(t ResourceType) int {
	n := 0
	for _, r := range s.Resources() {
		if r.Type() == t {
			n += r.Count()
		}
	}
	return n
}

func (s *ResourceStore) link(r *Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.resources {
		if x == r {
			return
		}
	}
	s.resources = append(s.resources, r)
}

func (s *ResourceStore) unlink(r *Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, x := range s.resources {
		if x == r {
			s.resources = append(s.resources[:i], s.resources[i+1:]...)
			return
		}
	}
}

// UnitType is a chess piece type held in a figure store.
type UnitType int16

const (
	UnitNone UnitType = iota
	UnitPawn
	UnitKnight
	UnitBishop
	UnitRook
	UnitQueen
)

var unitTypeNames = [...]string{
	UnitNone:   "none",
	UnitPawn:   "pawn",
	UnitKnight: "knight",
	UnitBishop: "bishop",
	UnitRook:   "rook",
	UnitQueen:  "queen",
}

func (t UnitType) String() string {
	if t < 0 || int(t) >= len(unitTypeNames) {
		return "unknown"
	}
	return unitTypeNames[t]
}

// Unit is one roster row: a piece type and how many of it.
type Unit struct {
	Type  UnitType
	Count int
}

// FigureStore is a castle's unit roster.
type FigureStore struct {
	mu    sync.RWMutex
	id    int32
	units []Unit
}

func NewFigureStore(id int32) *FigureStore {
	return &FigureStore{id: id}
}

func (s *FigureStore) ID() int32 { return s.id }

// AddUnit adds u to the roster, merging with an existing row of the same
// type. Non-positive counts are ignored.
func (s *FigureStore) AddUnit(u Unit) {
	if u.Count <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.units {
		if s.units[i].Type == u.Type {
			s.units[i].Count += u.Count
			return
		}
	}
	s.units = append(s.units, u)
}

// Units returns a snapshot of the roster.
func (s *FigureStore) Units() []Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Unit, len(s.units))
	copy(out, s.units)
	return out
}

// Count returns how many units of type t are held.
func (s *FigureStore) Count(t UnitType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.units {
		if u.Type == t {
			return u.Count
		}
	}
	return 0
}
