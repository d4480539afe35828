package world

import (
	"fmt"
	"sync"
)

// Sector is a rectangular group of cells sharing classification and way
// cost. Changing either is propagated to every member cell.
type Sector struct {
	mu sync.RWMutex

	id            int32
	x, y          int
	width, height int
	imageID       int32
	typ           PointType
	wayCost       float32
	points        []*Cell
	initialized   bool
}

// SectorSpec describes a sector for CreateSector.
type SectorSpec struct {
	ID            int32
	X, Y          int // left-top corner
	Width, Height int
	ImageID       int32
	Type          PointType
	WayCost       float32
}

// CreateSector builds an empty sector. Member cells are synthesized by
// World.InitializeSector.
func CreateSector(spec SectorSpec) (*Sector, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("sector %d %dx%d: %w", spec.ID, spec.Width, spec.Height, ErrInvalidSize)
	}
	if spec.WayCost < 0 {
		return nil, fmt.Errorf("sector %d: %w", spec.ID, ErrNegativeCost)
	}
	return &Sector{
		id:      spec.ID,
		x:       spec.X,
		y:       spec.Y,
		width:   spec.Width,
		height:  spec.Height,
		imageID: spec.ImageID,
		typ:     spec.Type,
		wayCost: spec.WayCost,
	}, nil
}

func (s *Sector) ID() int32      { return s.id }
func (s *Sector) X() int         { return s.x }
func (s *Sector) Y() int         { return s.y }
func (s *Sector) Width() int     { return s.width }
func (s *Sector) Height() int    { return s.height }
func (s *Sector) ImageID() int32 { return s.imageID }

// Contains reports whether (x, y) lies in [X, X+Width) × [Y, Y+Height).
func (s *Sector) Contains(x, y int) bool {
	return x >= s.x && x < s.x+s.width && y >= s.y && y < s.y+s.height
}

func (s *Sector) Type() PointType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typ
}

// SetType changes the classification of the sector and all member cells.
func (s *Sector) SetType(t PointType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typ = t
	for _, p := range s.points {
		p.SetType(t)
	}
}

func (s *Sector) WayCost() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wayCost
}

// SetWayCost changes the way cost of the sector and all member cells.
func (s *Sector) SetWayCost(k float32) error {
	if k < 0 {
		return ErrNegativeCost
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wayCost == k {
		return nil
	}
	s.wayCost = k
	for _, p := range s.points {
		// cost already validated
		_ = p.SetWayCost(k)
	}
	return nil
}

// AddPoint appends a member cell and records the sector on it.
func (s *Sector) AddPoint(c *Cell) error {
	if !s.Contains(c.X(), c.Y()) {
		return fmt.Errorf("cell (%d,%d) outside sector %d: %w", c.X(), c.Y(), s.id, ErrOutOfRange)
	}
	if !c.claimSector(s.id) {
		return fmt.Errorf("cell (%d,%d): %w", c.X(), c.Y(), ErrCellOwned)
	}
	s.mu.Lock()
	s.points = append(s.points, c)
	s.mu.Unlock()
	return nil
}

// RemovePoint drops a member cell and clears its sector id.
func (s *Sector) RemovePoint(c *Cell) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.points {
		if p == c {
			s.points = append(s.points[:i], s.points[i+1:]...)
			c.releaseSector(s.id)
			return true
		}
	}
	return false
}

// Points returns a snapshot of the member cells in insertion order.
func (s *Sector) Points() []*Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Cell, len(s.points))
	copy(out, s.points)
	return out
}

// Len returns the number of member cells.
func (s *Sector) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// claimInit marks the sector as populated. It fails when the sector was
// already claimed or holds member cells.
func (s *Sector) claimInit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized || len(s.points) > 0 {
		return false
	}
	s.initialized = true
	return true
}

// BuildSector creates a sector together with one member cell per
// coordinate, without placing anything on a grid. Backing stores use it to
// rebuild a sector view.
func BuildSector(spec SectorSpec) (*Sector, error) {
	s, err := CreateSector(spec)
	if err != nil {
		return nil, err
	}
	s.initialized = true
	s.points = make([]*Cell, 0, spec.Width*spec.Height)
	for i := spec.X; i < spec.X+spec.Width; i++ {
		for j := spec.Y; j < spec.Y+spec.Height; j++ {
			s.points = append(s.points, CreatePoint(PointSpec{
				ID:      spec.ID,
				X:       i,
				Y:       j,
				Type:    spec.Type,
				WayCost: spec.WayCost,
				Sector:  s,
			}))
		}
	}
	return s, nil
}
