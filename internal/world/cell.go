package world

import (
	"strings"
	"sync"
)

// PointType classifies a cell or sector.
type PointType int16

const (
	PointNone PointType = iota
	PointPlain
	PointTree
	PointWater
	PointRoad
	PointMountain
	PointCastle
	PointKing
	PointMine
	PointResource
	PointObject
	PointBorder
)

var pointTypeNames = [...]string{
	PointNone:     "none",
	PointPlain:    "plain",
	PointTree:     "tree",
	PointWater:    "water",
	PointRoad:     "road",
	PointMountain: "mountain",
	PointCastle:   "castle",
	PointKing:     "king",
	PointMine:     "mine",
	PointResource: "resource",
	PointObject:   "object",
	PointBorder:   "border",
}

func (t PointType) String() string {
	if t < 0 || int(t) >= len(pointTypeNames) {
		return "unknown"
	}
	return pointTypeNames[t]
}

// ParsePointType resolves a classification name. "grass" and "land" are
// accepted as plain.
func ParsePointType(name string) (PointType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "grass", "land":
		return PointPlain, true
	}
	for i, n := range pointTypeNames {
		if n == name {
			return PointType(i), true
		}
	}
	return PointNone, false
}

// Cell is a single grid slot.
type Cell struct {
	mu sync.RWMutex

	id       int32
	x, y     int
	typ      PointType
	wayCost  float32
	sectorID int32
	inSector bool
	under    *Cell // cell hidden by this one, re-exposed on removal
	detected bool
	imageID  int32 // 0 = no image
}

// PointSpec describes a cell for CreatePoint. Zero ID and ImageID mean
// "unassigned".
type PointSpec struct {
	ID      int32
	X, Y    int
	ImageID int32
	Type    PointType
	Under   *Cell
	WayCost float32
	Sector  *Sector
}

// CreatePoint builds a new cell. It has no side effects.
func CreatePoint(spec PointSpec) *Cell {
	c := &Cell{
		id:      spec.ID,
		x:       spec.X,
		y:       spec.Y,
		typ:     spec.Type,
		wayCost: spec.WayCost,
		under:   spec.Under,
		imageID: spec.ImageID,
	}
	if spec.Sector != nil {
		c.sectorID = spec.Sector.ID()
		c.inSector = true
		c.imageID = 0
	}
	return c
}

func (c *Cell) ID() int32 { return c.id }
func (c *Cell) X() int    { return c.x }
func (c *Cell) Y() int    { return c.y }

// Under returns the cell this one covers, or nil.
func (c *Cell) Under() *Cell { return c.under }

func (c *Cell) Type() PointType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.typ
}

func (c *Cell) SetType(t PointType) {
	c.mu.Lock()
	c.typ = t
	c.mu.Unlock()
}

func (c *Cell) WayCost() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wayCost
}

func (c *Cell) SetWayCost(k float32) error {
	if k < 0 {
		return ErrNegativeCost
	}
	c.mu.Lock()
	c.wayCost = k
	c.mu.Unlock()
	return nil
}

// SectorID returns the owning sector id and whether the cell has one.
func (c *Cell) SectorID() (int32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sectorID, c.inSector
}

func (c *Cell) Detected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.detected
}

func (c *Cell) SetDetected(v bool) {
	c.mu.Lock()
	c.detected = v
	c.mu.Unlock()
}

// ImageID returns the image reference and whether one is set.
func (c *Cell) ImageID() (int32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.imageID, c.imageID != 0
}

// claimSector assigns the cell to a sector unless another sector owns it.
func (c *Cell) claimSector(id int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inSector && c.sectorID != id {
		return false
	}
	c.sectorID = id
	c.inSector = true
	return true
}

func (c *Cell) releaseSector(id int32) {
	c.mu.Lock()
	if c.inSector && c.sectorID == id {
		c.sectorID = 0
		c.inSector = false
	}
	c.mu.Unlock()
}
