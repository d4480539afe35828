package world

import (
	"fmt"
	"sync"
)

// DefaultCastleDistance is the visibility radius of a new castle.
const DefaultCastleDistance = 5

// association is one side of a lazily resolved to-one reference: the target,
// its stored id, and whether it has been loaded or assigned.
type association[T comparable] struct {
	v        T
	id       int32
	assigned bool
}

// setID writes the stored id unless the association is already resolved.
func (a *association[T]) setID(id int32) error {
	if a.id == id {
		return nil
	}
	if a.assigned {
		return ErrForeignKeyAssigned
	}
	a.id = id
	return nil
}

// Castle is a stronghold occupying a sector. A castle without a king is
// free.
type Castle struct {
	sectorPlacement

	vaults VaultLoader

	rel           sync.Mutex // guards the fields below
	king          association[*King]
	kingInside    bool
	distance      int
	resourceStore association[*ResourceStore]
	figureStore   association[*FigureStore]
}

// NewCastle constructs a castle. Prefer Factory.NewCastle, which also runs
// the construction hooks.
func NewCastle(id int32, opts ...Option) *Castle {
	o := buildOptions(opts)
	c := &Castle{vaults: o.vaults, distance: DefaultCastleDistance}
	c.init(id, o, c)
	return c
}

func (c *Castle) Kind() Kind                 { return KindCastle }
func (c *Castle) ObserverKind() ObserverKind { return CastleObserver }

// AddView assigns the castle's sector and places its cells on the world grid.
func (c *Castle) AddView(s *Sector) error { return c.addView(s) }

// King returns the owning king or nil.
func (c *Castle) King() *King {
	c.rel.Lock()
	defer c.rel.Unlock()
	return c.king.v
}

// SetKing transfers ownership. The previous king loses the castle and the
// new one gains it; nil frees the castle. The castle lock is held while the
// kings are updated, so locks are always taken castle first, then king.
func (c *Castle) SetKing(k *King) {
	c.rel.Lock()
	defer c.rel.Unlock()
	prev := c.king.v
	c.king.assigned = true
	if prev == k {
		return
	}
	c.king.v = k
	c.king.id = 0
	if k != nil {
		c.king.id = k.ID()
	}
	if prev != nil {
		prev.unlinkCastle(c)
	}
	if k != nil {
		k.linkCastle(c)
	}
}

// KingID returns the stored owner id, 0 when free.
func (c *Castle) KingID() int32 {
	c.rel.Lock()
	defer c.rel.Unlock()
	return c.king.id
}

func (c *Castle) SetKingID(id int32) error {
	c.rel.Lock()
	defer c.rel.Unlock()
	if err := c.king.setID(id); err != nil {
		return fmt.Errorf("castle %d king id: %w", c.id, err)
	}
	return nil
}

// IsFree reports whether no king is assigned.
func (c *Castle) IsFree() bool {
	return c.KingID() == 0
}

func (c *Castle) KingInside() bool {
	c.rel.Lock()
	defer c.rel.Unlock()
	return c.kingInside
}

func (c *Castle) SetKingInside(v bool) {
	c.rel.Lock()
	c.kingInside = v
	c.rel.Unlock()
}

// Distance is the castle's visibility radius in cells.
func (c *Castle) Distance() int {
	c.rel.Lock()
	defer c.rel.Unlock()
	return c.distance
}

func (c *Castle) SetDistance(d int) {
	c.rel.Lock()
	c.distance = d
	c.rel.Unlock()
}

// ResourceStore returns the castle's resource vault, resolving it through the
// vault loader on first access.
func (c *Castle) ResourceStore() *ResourceStore {
	c.rel.Lock()
	v, id := c.resourceStore.v, c.resourceStore.id
	c.rel.Unlock()
	if v != nil || c.vaults == nil {
		return v
	}
	c.vaults.LoadResourceStore(c, id)
	c.rel.Lock()
	defer c.rel.Unlock()
	return c.resourceStore.v
}

// SetResourceStore assigns the resource vault. Nil and the current store are
// ignored.
func (c *Castle) SetResourceStore(s *ResourceStore) {
	if s == nil {
		return
	}
	c.rel.Lock()
	defer c.rel.Unlock()
	if c.resourceStore.v == s {
		return
	}
	c.resourceStore = association[*ResourceStore]{v: s, id: s.ID(), assigned: true}
}

func (c *Castle) ResourceVaultID() int32 {
	c.rel.Lock()
	defer c.rel.Unlock()
	return c.resourceStore.id
}

func (c *Castle) SetResourceVaultID(id int32) error {
	c.rel.Lock()
	defer c.rel.Unlock()
	if err := c.resourceStore.setID(id); err != nil {
		return fmt.Errorf("castle %d resource vault id: %w", c.id, err)
	}
	return nil
}

// FigureStore returns the castle's unit roster, resolving it through the
// vault loader on first access.
func (c *Castle) FigureStore() *FigureStore {
	c.rel.Lock()
	v, id := c.figureStore.v, c.figureStore.id
	c.rel.Unlock()
	if v != nil || c.vaults == nil {
		return v
	}
	c.vaults.LoadFigureStore(c, id)
	c.rel.Lock()
	defer c.rel.Unlock()
	return c.figureStore.v
}

func (c *Castle) SetFigureStore(s *FigureStore) {
	if s == nil {
		return
	}
	c.rel.Lock()
	defer c.rel.Unlock()
	if c.figureStore.v == s {
		return
	}
	c.figureStore = association[*FigureStore]{v: s, id: s.ID(), assigned: true}
}

func (c *Castle) FigureVaultID() int32 {
	c.rel.Lock()
	defer c.rel.Unlock()
	return c.figureStore.id
}

func (c *Castle) SetFigureVaultID(id int32) error {
	c.rel.Lock()
	defer c.rel.Unlock()
	if err := c.figureStore.setID(id); err != nil {
		return fmt.Errorf("castle %d figure vault id: %w", c.id, err)
	}
	return nil
}
