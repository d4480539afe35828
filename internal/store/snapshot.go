package store

import (
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/alivechess/server/internal/world"
)

type pointView interface {
	X() (int, error)
	Point() *world.Cell
}

type sectorView interface {
	X() (int, error)
	Sector() *world.Sector
}

func pointRecordOf(c *world.Cell) pointRecord {
	img, _ := c.ImageID()
	return pointRecord{
		ID:      c.ID(),
		X:       c.X(),
		Y:       c.Y(),
		ImageID: img,
		Type:    int16(c.Type()),
		WayCost: c.WayCost(),
	}
}

func sectorRecordOf(s *world.Sector) sectorRecord {
	return sectorRecord{
		ID:      s.ID(),
		X:       s.X(),
		Y:       s.Y(),
		Width:   s.Width(),
		Height:  s.Height(),
		ImageID: s.ImageID(),
		Type:    int16(s.Type()),
		WayCost: s.WayCost(),
	}
}

// Snapshot writes the resolved view of every entity in w in one
// transaction, so entities recreated with the stored ids can load them
// back. Unresolved views are skipped. It returns the number of records
// written.
func (b *Bolt) Snapshot(w *world.World) (int, error) {
	var (
		points  []pointRecord
		sectors []sectorRecord
	)
	addPoint := func(e pointView) {
		if _, err := e.X(); err == nil {
			points = append(points, pointRecordOf(e.Point()))
		}
	}
	addSector := func(e sectorView) {
		if _, err := e.X(); err == nil {
			sectors = append(sectors, sectorRecordOf(e.Sector()))
		}
	}
	for e := range w.Kings() {
		addPoint(e)
	}
	for e := range w.Resources() {
		addPoint(e)
	}
	for e := range w.SingleObjects() {
		addPoint(e)
	}
	for e := range w.LandscapePoints() {
		addPoint(e)
	}
	for e := range w.Borders() {
		addPoint(e)
	}
	for e := range w.Castles() {
		addSector(e)
	}
	for e := range w.Mines() {
		addSector(e)
	}
	for e := range w.MultiObjects() {
		addSector(e)
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		pb, sb := tx.Bucket(bucketPoints), tx.Bucket(bucketSectors)
		for _, r := range points {
			data, err := pack(r)
			if err != nil {
				return err
			}
			if err := pb.Put(key(r.ID), data); err != nil {
				return err
			}
		}
		for _, r := range sectors {
			data, err := pack(r)
			if err != nil {
				return err
			}
			if err := sb.Put(key(r.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	n := len(points) + len(sectors)
	b.log.Info("world snapshot written", zap.Int32("world", w.ID()), zap.Int("records", n))
	return n, nil
}
