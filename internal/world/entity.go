package world

import (
	"fmt"
	"sync"
)

// Kind identifies one of the eight entity registries.
type Kind int

const (
	KindKing Kind = iota
	KindCastle
	KindMine
	KindResource
	KindSingleObject
	KindMultiObject
	KindLandscapePoint
	KindBorder

	kindCount
)

var kindNames = [kindCount]string{
	KindKing:           "king",
	KindCastle:         "castle",
	KindMine:           "mine",
	KindResource:       "resource",
	KindSingleObject:   "single_object",
	KindMultiObject:    "multi_object",
	KindLandscapePoint: "landscape_point",
	KindBorder:         "border",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds lists every registry kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Placed is implemented by every entity kind a World can hold.
type Placed interface {
	ID() int32
	Kind() Kind
	World() *World
	WorldID() int32
	X() (int, error)
	Y() (int, error)
	WayCost() (float32, error)

	base() *entity
	storedID() int32
	footprint() []*Cell
}

// entity carries the id and the world association shared by every kind.
// world is written only by World.attach / World.detach.
type entity struct {
	mu      sync.Mutex
	id      int32
	world   *World
	worldID int32
}

func (e *entity) base() *entity { return e }

func (e *entity) ID() int32 { return e.id }

// World returns the world the entity is attached to, or nil.
func (e *entity) World() *World {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world
}

// WorldID returns the denormalized world id (0 when unset).
func (e *entity) WorldID() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.worldID
}

// claim sets the back-reference unless another world holds the entity.
func (e *entity) claim(w *World) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.world != nil {
		return false
	}
	e.world = w
	e.worldID = w.id
	return true
}

// release clears the back-reference if it points at w.
func (e *entity) release(w *World) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.world == w {
		e.world = nil
		e.worldID = 0
	}
}

// SetWorldID writes the stored world id. It fails once the entity has been
// attached to a world.
func (e *entity) SetWorldID(id int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.worldID == id {
		return nil
	}
	if e.world != nil {
		return fmt.Errorf("entity %d world id: %w", e.id, ErrForeignKeyAssigned)
	}
	e.worldID = id
	return nil
}

// view is the spatial view type of an entity: *Cell or *Sector.
type view interface {
	comparable
	ID() int32
	X() int
	Y() int
	WayCost() float32
}

// placement holds a lazily loaded spatial view and its denormalized id.
type placement[V view] struct {
	entity
	cur    V
	viewID int32
	load   func(viewID int32)
}

func (p *placement[V]) snapshot() (V, int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur, p.viewID
}

// get returns the view, invoking the loader once if it is unset. The loader
// runs without the entity lock so it can call back into the setter.
func (p *placement[V]) get() V {
	var zero V
	v, id := p.snapshot()
	if v != zero || p.load == nil {
		return v
	}
	p.load(id)
	v, _ = p.snapshot()
	return v
}

// set stores v unless it is nil or already current.
func (p *placement[V]) set(v V) bool {
	var zero V
	if v == zero {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == v && p.viewID == v.ID() {
		return false
	}
	p.cur = v
	p.viewID = v.ID()
	return true
}

func (p *placement[V]) storedID() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewID
}

// setStoredID writes the denormalized view id. It is rejected once a view
// has been loaded or assigned.
func (p *placement[V]) setStoredID(id int32) error {
	var zero V
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.viewID == id {
		return nil
	}
	if p.cur != zero {
		return fmt.Errorf("entity %d view id: %w", p.id, ErrForeignKeyAssigned)
	}
	p.viewID = id
	return nil
}

// loaded returns the cached view without triggering the loader.
func (p *placement[V]) loaded() (V, error) {
	var zero V
	v, _ := p.snapshot()
	if v == zero {
		return zero, fmt.Errorf("entity %d: %w", p.id, ErrNotInitialized)
	}
	return v, nil
}

func (p *placement[V]) X() (int, error) {
	v, err := p.loaded()
	if err != nil {
		return 0, err
	}
	return v.X(), nil
}

func (p *placement[V]) Y() (int, error) {
	v, err := p.loaded()
	if err != nil {
		return 0, err
	}
	return v.Y(), nil
}

func (p *placement[V]) WayCost() (float32, error) {
	v, err := p.loaded()
	if err != nil {
		return 0, err
	}
	return v.WayCost(), nil
}

// pointPlacement is the base of every cell-backed kind.
type pointPlacement struct {
	placement[*Cell]
}

// Point returns the cell view, resolving it through the loader on first
// access.
func (p *pointPlacement) Point() *Cell { return p.get() }

// SetPoint assigns the cell view. Re-assigning the current cell is a no-op.
func (p *pointPlacement) SetPoint(c *Cell) { p.set(c) }

// PointID returns the denormalized cell id.
func (p *pointPlacement) PointID() int32 { return p.storedID() }

// SetPointID writes the denormalized cell id before the view is resolved.
func (p *pointPlacement) SetPointID(id int32) error { return p.setStoredID(id) }

func (p *pointPlacement) footprint() []*Cell {
	c := p.get()
	if c == nil {
		return nil
	}
	return []*Cell{c}
}

// addView sets the view and places the cell on the owning world's grid.
func (p *pointPlacement) addView(c *Cell) error {
	w := p.World()
	if w == nil {
		return fmt.Errorf("entity %d add view: %w", p.id, ErrNotAttached)
	}
	p.SetPoint(c)
	return w.PlaceCell(c)
}

// sectorPlacement is the base of every sector-backed kind.
type sectorPlacement struct {
	placement[*Sector]
}

// Sector returns the sector view, resolving it through the loader on first
// access.
func (p *sectorPlacement) Sector() *Sector { return p.get() }

// SetSector assigns the sector view. Re-assigning the current sector is a
// no-op.
func (p *sectorPlacement) SetSector(s *Sector) { p.set(s) }

// SectorID returns the denormalized sector id.
func (p *sectorPlacement) SectorID() int32 { return p.storedID() }

// SetSectorID writes the denormalized sector id before the view is resolved.
func (p *sectorPlacement) SetSectorID(id int32) error { return p.setStoredID(id) }

func (p *sectorPlacement) footprint() []*Cell {
	s := p.get()
	if s == nil {
		return nil
	}
	return s.Points()
}

// addView sets the view and places every member cell on the world grid.
func (p *sectorPlacement) addView(s *Sector) error {
	w := p.World()
	if w == nil {
		return fmt.Errorf("entity %d add view: %w", p.id, ErrNotAttached)
	}
	p.SetSector(s)
	return w.placeCells(s.Points())
}

func (p *pointPlacement) init(id int32, o options, self PointHolder) {
	p.id = id
	p.worldID = o.worldID
	p.viewID = o.viewID
	if o.points != nil {
		loader := o.points
		p.load = func(viewID int32) { loader.LoadPoint(self, viewID) }
	}
}

func (p *sectorPlacement) init(id int32, o options, self SectorHolder) {
	p.id = id
	p.worldID = o.worldID
	p.viewID = o.viewID
	if o.sectors != nil {
		loader := o.sectors
		p.load = func(viewID int32) { loader.LoadSector(self, viewID) }
	}
}
