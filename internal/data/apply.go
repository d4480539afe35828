package data

import (
	"fmt"

	"github.com/alivechess/server/internal/world"
)

// Apply builds the layout into w: it initializes the grid, lays the
// terrain, initializes sectors and adds every entity. Castles are built
// through f so its construction hooks run.
func (l *Layout) Apply(w *world.World, f *world.Factory) error {
	if err := l.checkObservers(); err != nil {
		return err
	}
	sectors, err := l.applyGrid(w)
	if err != nil {
		return err
	}
	kings, err := l.addKings(w)
	if err != nil {
		return err
	}
	if err := l.addCastles(w, f, sectors, kings); err != nil {
		return err
	}
	if err := l.addMines(w, sectors); err != nil {
		return err
	}
	if err := l.addMultiObjects(w, sectors); err != nil {
		return err
	}
	if err := l.addResources(w); err != nil {
		return err
	}
	if err := l.addSingleObjects(w); err != nil {
		return err
	}
	if err := l.addLandscape(w); err != nil {
		return err
	}
	return l.addBorders(w)
}

// ApplyGrid initializes w and lays the terrain and sectors only. Entities
// are expected to come from a backing store.
func (l *Layout) ApplyGrid(w *world.World) error {
	_, err := l.applyGrid(w)
	return err
}

func (l *Layout) applyGrid(w *world.World) (map[int32]*world.Sector, error) {
	if err := w.Initialize(l.Width, l.Height); err != nil {
		return nil, err
	}
	if err := l.layTerrain(w); err != nil {
		return nil, err
	}
	return l.initSectors(w)
}

func (l *Layout) layTerrain(w *world.World) error {
	for x := 0; x < l.Width; x++ {
		for y := 0; y < l.Height; y++ {
			typ, cost, err := l.terrainAt(x, y)
			if err != nil {
				return fmt.Errorf("terrain (%d,%d): %w", x, y, err)
			}
			if err := w.PlaceCell(world.CreatePoint(world.PointSpec{X: x, Y: y, Type: typ, WayCost: cost})); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Layout) initSectors(w *world.World) (map[int32]*world.Sector, error) {
	out := make(map[int32]*world.Sector, len(l.Sectors))
	for _, d := range l.Sectors {
		if _, dup := out[d.ID]; dup {
			return nil, fmt.Errorf("sector %d: %w", d.ID, world.ErrDuplicateID)
		}
		typ, err := pointType(d.Type)
		if err != nil {
			return nil, fmt.Errorf("sector %d: %w", d.ID, err)
		}
		s, err := world.CreateSector(world.SectorSpec{
			ID:      d.ID,
			X:       d.X,
			Y:       d.Y,
			Width:   d.Width,
			Height:  d.Height,
			ImageID: d.Image,
			Type:    typ,
			WayCost: d.Cost,
		})
		if err != nil {
			return nil, err
		}
		if err := w.InitializeSector(s); err != nil {
			return nil, err
		}
		out[d.ID] = s
	}
	return out, nil
}

func sectorFor(sectors map[int32]*world.Sector, what string, id, sectorID int32) (*world.Sector, error) {
	s, ok := sectors[sectorID]
	if !ok {
		return nil, fmt.Errorf("%s %d: unknown sector %d", what, id, sectorID)
	}
	return s, nil
}

// coverPoint puts a new cell for an entity over the terrain at d's
// coordinates.
func coverPoint(w *world.World, d PointDef, typ world.PointType, interior bool) (*world.Cell, error) {
	if interior {
		if err := w.TestLocate(d.X, d.Y); err != nil {
			return nil, err
		}
	}
	var cost float32
	if d.Cost != nil {
		cost = *d.Cost
	} else if c := w.CellAt(d.X, d.Y); c != nil {
		cost = c.WayCost()
	}
	return w.CreatePointOver(world.PointSpec{
		ID:      d.PointID,
		X:       d.X,
		Y:       d.Y,
		ImageID: d.Image,
		Type:    typ,
		WayCost: cost,
	})
}

func (l *Layout) addKings(w *world.World) (map[int32]*world.King, error) {
	out := make(map[int32]*world.King, len(l.Kings))
	for _, d := range l.Kings {
		k := world.NewKing(d.ID)
		if err := w.AddKing(k); err != nil {
			return nil, err
		}
		c, err := coverPoint(w, d, world.PointKing, true)
		if err != nil {
			return nil, fmt.Errorf("king %d: %w", d.ID, err)
		}
		k.SetPoint(c)
		out[d.ID] = k
	}
	return out, nil
}

func (l *Layout) addCastles(w *world.World, f *world.Factory, sectors map[int32]*world.Sector, kings map[int32]*world.King) error {
	for _, d := range l.Castles {
		s, err := sectorFor(sectors, "castle", d.ID, d.Sector)
		if err != nil {
			return err
		}
		c := f.NewCastle(d.ID)
		if d.Distance > 0 {
			c.SetDistance(d.Distance)
		}
		c.SetSector(s)
		if d.King != 0 {
			k, ok := kings[d.King]
			if !ok {
				return fmt.Errorf("castle %d: unknown king %d", d.ID, d.King)
			}
			c.SetKing(k)
		}
		if err := w.AddCastle(c); err != nil {
			return err
		}
	}
	return nil
}

func (l *Layout) addMines(w *world.World, sectors map[int32]*world.Sector) error {
	for _, d := range l.Mines {
		s, err := sectorFor(sectors, "mine", d.ID, d.Sector)
		if err != nil {
			return err
		}
		rt, err := resourceType(d.Resource)
		if err != nil {
			return fmt.Errorf("mine %d: %w", d.ID, err)
		}
		m := world.NewMine(d.ID)
		m.SetResourceType(rt)
		m.SetOutput(d.Output)
		m.SetSector(s)
		if err := w.AddMine(m); err != nil {
			return err
		}
	}
	return nil
}

func (l *Layout) addMultiObjects(w *world.World, sectors map[int32]*world.Sector) error {
	for _, d := range l.MultiObjects {
		s, err := sectorFor(sectors, "multi object", d.ID, d.Sector)
		if err != nil {
			return err
		}
		ot, err := objectType(d.Type)
		if err != nil {
			return fmt.Errorf("multi object %d: %w", d.ID, err)
		}
		o := world.NewMultiObject(d.ID, ot)
		o.SetSector(s)
		if err := w.AddMultiObject(o); err != nil {
			return err
		}
	}
	return nil
}

func (l *Layout) addResources(w *world.World) error {
	for _, d := range l.Resources {
		rt, err := resourceType(d.Type)
		if err != nil {
			return fmt.Errorf("resource %d: %w", d.ID, err)
		}
		r := world.NewResource(d.ID, rt, d.Count)
		if err := w.AddResource(r); err != nil {
			return err
		}
		c, err := coverPoint(w, d, world.PointResource, true)
		if err != nil {
			return fmt.Errorf("resource %d: %w", d.ID, err)
		}
		r.SetPoint(c)
	}
	return nil
}

func (l *Layout) addSingleObjects(w *world.World) error {
	for _, d := range l.SingleObjects {
		ot, err := objectType(d.Type)
		if err != nil {
			return fmt.Errorf("single object %d: %w", d.ID, err)
		}
		o := world.NewSingleObject(d.ID, ot)
		if err := w.AddSingleObject(o); err != nil {
			return err
		}
		c, err := coverPoint(w, d, world.PointObject, true)
		if err != nil {
			return fmt.Errorf("single object %d: %w", d.ID, err)
		}
		o.SetPoint(c)
	}
	return nil
}

func (l *Layout) addLandscape(w *world.World) error {
	for _, d := range l.Landscape {
		lt, err := landscapeType(d.Type)
		if err != nil {
			return fmt.Errorf("landscape %d: %w", d.ID, err)
		}
		p := world.NewLandscapePoint(d.ID, lt, d.Image)
		if err := w.AddLandscapePoint(p); err != nil {
			return err
		}
		under := world.PointPlain
		if c := w.CellAt(d.X, d.Y); c != nil {
			under = c.Type()
		}
		c, err := coverPoint(w, d, under, true)
		if err != nil {
			return fmt.Errorf("landscape %d: %w", d.ID, err)
		}
		p.SetPoint(c)
	}
	return nil
}

// addBorders frames the grid with border points on every cell outside the
// playable interior.
func (l *Layout) addBorders(w *world.World) error {
	if !l.Borders.Auto {
		return nil
	}
	id := l.Borders.FirstID
	if id == 0 {
		id = 1
	}
	for x := 0; x < l.Width; x++ {
		for y := 0; y < l.Height; y++ {
			if w.Locate(x, y) {
				continue
			}
			b := world.NewBorder(id, l.Borders.Image)
			if err := w.AddBorder(b); err != nil {
				return err
			}
			c, err := coverPoint(w, PointDef{PointID: id, X: x, Y: y, Image: l.Borders.Image}, world.PointBorder, false)
			if err != nil {
				return fmt.Errorf("border %d: %w", id, err)
			}
			b.SetPoint(c)
			id++
		}
	}
	return nil
}
