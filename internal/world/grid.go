package world

import (
	"fmt"
	"sync"
)

// grid is the dense width×height cell array. One lock covers every slot;
// cells guard their own fields.
type grid struct {
	mu     sync.RWMutex
	width  int
	height int
	cells  []*Cell // flat [x*height + y], same layout as the map tile tables
}

func newGrid(width, height int) (*grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid %dx%d: %w", width, height, ErrInvalidSize)
	}
	return &grid{
		width:  width,
		height: height,
		cells:  make([]*Cell, width*height),
	}, nil
}

func (g *grid) inside(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *grid) index(x, y int) int {
	return x*g.height + y
}

// at returns the cell at (x, y) or nil when out of the array or empty.
func (g *grid) at(x, y int) *Cell {
	if !g.inside(x, y) {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cells[g.index(x, y)]
}

// place stores c in its slot and returns the previous content.
func (g *grid) place(c *Cell) (*Cell, error) {
	if !g.inside(c.X(), c.Y()) {
		return nil, fmt.Errorf("place (%d,%d): %w", c.X(), c.Y(), ErrOutOfRange)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.index(c.X(), c.Y())
	prev := g.cells[i]
	g.cells[i] = c
	return prev, nil
}

// cover builds a cell over the current content of its slot and places it,
// all under one write lock so the captured occupant cannot go stale.
func (g *grid) cover(spec PointSpec) (*Cell, error) {
	if !g.inside(spec.X, spec.Y) {
		return nil, fmt.Errorf("cover (%d,%d): %w", spec.X, spec.Y, ErrOutOfRange)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.index(spec.X, spec.Y)
	spec.Under = g.cells[i]
	c := CreatePoint(spec)
	g.cells[i] = c
	return c, nil
}

// placeAll writes every cell with the write lock held once.
func (g *grid) placeAll(cells []*Cell) error {
	for _, c := range cells {
		if !g.inside(c.X(), c.Y()) {
			return fmt.Errorf("place (%d,%d): %w", c.X(), c.Y(), ErrOutOfRange)
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range cells {
		g.cells[g.index(c.X(), c.Y())] = c
	}
	return nil
}

// reveal puts the cell hidden under c back into c's slot, provided c is
// still the slot's content.
func (g *grid) reveal(c *Cell) bool {
	u := c.Under()
	if u == nil || !g.inside(c.X(), c.Y()) {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.index(c.X(), c.Y())
	if g.cells[i] != c {
		return false
	}
	g.cells[i] = u
	return true
}
