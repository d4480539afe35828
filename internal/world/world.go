package world

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/alivechess/server/internal/event"
)

// Level is the ruleset assigned to a world. The world stores it without
// interpreting it.
type Level interface {
	Name() string
}

// worldBinder is implemented by levels that need a reference back to the
// world they are assigned to.
type worldBinder interface {
	BindWorld(w *World)
}

// World is the authoritative state of one game map: the grid, the eight
// entity registries and the observer index. Every registry has its own
// lock; there is no world-wide lock.
type World struct {
	id  int32
	log *zap.Logger
	bus *event.Bus

	grid atomic.Pointer[grid]

	kings      registry[*King]
	castles    registry[*Castle]
	mines      registry[*Mine]
	resources  registry[*Resource]
	singles    registry[*SingleObject]
	multis     registry[*MultiObject]
	landscapes registry[*LandscapePoint]
	borders    registry[*Border]

	obsMu     sync.RWMutex
	observers map[int32]Observer

	levelMu sync.RWMutex
	level   Level
}

// WorldOption configures a World.
type WorldOption func(*World)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) WorldOption {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithBus sets the bus that receives attach/detach notifications.
func WithBus(b *event.Bus) WorldOption {
	return func(w *World) { w.bus = b }
}

// New creates a world with no grid. Call Initialize before placing cells.
func New(id int32, opts ...WorldOption) *World {
	w := &World{
		id:        id,
		log:       zap.NewNop(),
		observers: make(map[int32]Observer),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.Int32("world", id))
	return w
}

func (w *World) ID() int32 { return w.id }

// Initialize allocates an empty width×height grid, replacing any previous
// one.
func (w *World) Initialize(width, height int) error {
	g, err := newGrid(width, height)
	if err != nil {
		return err
	}
	w.grid.Store(g)
	w.log.Debug("grid initialized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

func (w *World) loadGrid() (*grid, error) {
	g := w.grid.Load()
	if g == nil {
		return nil, fmt.Errorf("world %d grid: %w", w.id, ErrNotInitialized)
	}
	return g, nil
}

// Width is 0 before Initialize.
func (w *World) Width() int {
	if g := w.grid.Load(); g != nil {
		return g.width
	}
	return 0
}

// Height is 0 before Initialize.
func (w *World) Height() int {
	if g := w.grid.Load(); g != nil {
		return g.height
	}
	return 0
}

// Locate reports whether (x, y) lies inside the one-cell reserved border.
func (w *World) Locate(x, y int) bool {
	g := w.grid.Load()
	if g == nil {
		return false
	}
	return x >= 1 && x < g.width-1 && y >= 1 && y < g.height-1
}

// TestLocate is Locate as an error.
func (w *World) TestLocate(x, y int) error {
	if !w.Locate(x, y) {
		return fmt.Errorf("locate (%d,%d): %w", x, y, ErrOutOfRange)
	}
	return nil
}

// CellAt returns the grid content at (x, y); nil outside the grid array, on
// an empty slot or before Initialize.
func (w *World) CellAt(x, y int) *Cell {
	g := w.grid.Load()
	if g == nil {
		return nil
	}
	return g.at(x, y)
}

// GetWayCost returns the way cost of the cell at (x, y).
func (w *World) GetWayCost(x, y int) (float32, error) {
	g, err := w.loadGrid()
	if err != nil {
		return 0, err
	}
	if !g.inside(x, y) {
		return 0, fmt.Errorf("way cost (%d,%d): %w", x, y, ErrOutOfRange)
	}
	c := g.at(x, y)
	if c == nil {
		return 0, fmt.Errorf("way cost (%d,%d): %w", x, y, ErrNotInitialized)
	}
	return c.WayCost(), nil
}

// CheckPoint reports whether (x, y) is in the playable interior and its way
// cost does not exceed limit.
func (w *World) CheckPoint(x, y int, limit float32) bool {
	if !w.Locate(x, y) {
		return false
	}
	c := w.CellAt(x, y)
	return c != nil && c.WayCost() <= limit
}

// PlaceCell stores c at its coordinates, overwriting the slot.
func (w *World) PlaceCell(c *Cell) error {
	if c == nil {
		return fmt.Errorf("place cell: %w", ErrNotInitialized)
	}
	g, err := w.loadGrid()
	if err != nil {
		return err
	}
	_, err = g.place(c)
	return err
}

func (w *World) placeCells(cells []*Cell) error {
	g, err := w.loadGrid()
	if err != nil {
		return err
	}
	return g.placeAll(cells)
}

// InitializeSector synthesizes one cell per coordinate of s, carrying the
// sector's id, classification and cost, with the current grid content as
// the cell underneath. Each cell is appended to s and placed on the grid.
func (w *World) InitializeSector(s *Sector) error {
	g, err := w.loadGrid()
	if err != nil {
		return err
	}
	if !g.inside(s.X(), s.Y()) || !g.inside(s.X()+s.Width()-1, s.Y()+s.Height()-1) {
		return fmt.Errorf("sector %d at (%d,%d) %dx%d: %w",
			s.ID(), s.X(), s.Y(), s.Width(), s.Height(), ErrOutOfRange)
	}
	if !s.claimInit() {
		return fmt.Errorf("sector %d: %w", s.ID(), ErrSectorInitialized)
	}

	typ, cost := s.Type(), s.WayCost()
	for i := s.X(); i < s.X()+s.Width(); i++ {
		for j := s.Y(); j < s.Y()+s.Height(); j++ {
			c, err := g.cover(PointSpec{
				ID:      s.ID(),
				X:       i,
				Y:       j,
				Type:    typ,
				WayCost: cost,
				Sector:  s,
			})
			if err != nil {
				return err
			}
			if err := s.AddPoint(c); err != nil {
				return err
			}
		}
	}
	w.log.Debug("sector initialized",
		zap.Int32("sector", s.ID()),
		zap.Int("cells", s.Width()*s.Height()),
	)
	return nil
}

// CreatePointOver builds a cell covering the current content of its slot
// and places it.
func (w *World) CreatePointOver(spec PointSpec) (*Cell, error) {
	g, err := w.loadGrid()
	if err != nil {
		return nil, err
	}
	return g.cover(spec)
}

// Level returns the assigned ruleset, or nil.
func (w *World) Level() Level {
	w.levelMu.RLock()
	defer w.levelMu.RUnlock()
	return w.level
}

// SetLevel assigns the ruleset. A level that wants a reference to the world
// gets it through BindWorld.
func (w *World) SetLevel(l Level) {
	w.levelMu.Lock()
	if w.level == l {
		w.levelMu.Unlock()
		return
	}
	w.level = l
	w.levelMu.Unlock()

	if b, ok := l.(worldBinder); ok {
		b.BindWorld(w)
	}
	if l != nil {
		w.log.Info("level assigned", zap.String("level", l.Name()))
	}
}
