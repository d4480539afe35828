// Package store is an embedded backing store for world placements and castle
// vaults, kept in a single bbolt file with msgpack-encoded records.
package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/alivechess/server/internal/world"
)

var (
	bucketPoints  = []byte("points")
	bucketSectors = []byte("sectors")
	bucketVaults  = []byte("vaults")
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

type pointRecord struct {
	ID      int32   `json:"id"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	ImageID int32   `json:"image_id"`
	Type    int16   `json:"type"`
	WayCost float32 `json:"way_cost"`
}

type sectorRecord struct {
	ID      int32   `json:"id"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	ImageID int32   `json:"image_id"`
	Type    int16   `json:"type"`
	WayCost float32 `json:"way_cost"`
}

type unitRecord struct {
	Type  int16 `json:"type"`
	Count int   `json:"count"`
}

type resourceRecord struct {
	ID    int32 `json:"id"`
	Type  int16 `json:"type"`
	Count int   `json:"count"`
}

// vaultRecord holds both stores of one vault id; either part may be empty.
type vaultRecord struct {
	ID        int32            `json:"id"`
	Resources []resourceRecord `json:"resources"`
	Units     []unitRecord     `json:"units"`
}

// Bolt implements world.Loaders on top of a bbolt file.
type Bolt struct {
	db  *bolt.DB
	log *zap.Logger
}

// Open opens or creates the database at path and its buckets.
func Open(path string, log *zap.Logger) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketPoints, bucketSectors, bucketVaults} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	log.Info("bolt store opened", zap.String("path", path))
	return &Bolt{db: db, log: log}, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func key(id int32) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], uint32(id))
	return k[:]
}

func pack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseJSONTag(true)
	err := enc.Encode(v)
	return buf.Bytes(), err
}

func unpack(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseJSONTag(true)
	return dec.Decode(v)
}

func (b *Bolt) put(bucket []byte, id int32, v interface{}) error {
	data, err := pack(v)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(key(id), data)
	})
}

func (b *Bolt) get(bucket []byte, id int32, v interface{}) error {
	return b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucket).Get(key(id))
		if data == nil {
			return fmt.Errorf("%s/%d: %w", bucket, id, ErrNotFound)
		}
		// data is only valid inside the transaction
		return unpack(data, v)
	})
}

func (b *Bolt) PutPoint(c *world.Cell) error {
	return b.put(bucketPoints, c.ID(), pointRecordOf(c))
}

func (b *Bolt) PutSector(s *world.Sector) error {
	return b.put(bucketSectors, s.ID(), sectorRecordOf(s))
}

// PutVault stores the resource and figure stores sharing one vault id. Either
// may be nil.
func (b *Bolt) PutVault(id int32, res *world.ResourceStore, fig *world.FigureStore) error {
	rec := vaultRecord{ID: id}
	if res != nil {
		for _, r := range res.Resources() {
			rec.Resources = append(rec.Resources, resourceRecord{ID: r.ID(), Type: int16(r.Type()), Count: r.Count()})
		}
	}
	if fig != nil {
		for _, u := range fig.Units() {
			rec.Units = append(rec.Units, unitRecord{Type: int16(u.Type), Count: u.Count})
		}
	}
	return b.put(bucketVaults, id, rec)
}

func (b *Bolt) Point(id int32) (*world.Cell, error) {
	var rec pointRecord
	if err := b.get(bucketPoints, id, &rec); err != nil {
		return nil, err
	}
	return world.CreatePoint(world.PointSpec{
		ID:      rec.ID,
		X:       rec.X,
		Y:       rec.Y,
		ImageID: rec.ImageID,
		Type:    world.PointType(rec.Type),
		WayCost: rec.WayCost,
	}), nil
}

// Sector loads a sector and rebuilds its member cells.
func (b *Bolt) Sector(id int32) (*world.Sector, error) {
	var rec sectorRecord
	if err := b.get(bucketSectors, id, &rec); err != nil {
		return nil, err
	}
	return world.BuildSector(world.SectorSpec{
		ID:      rec.ID,
		X:       rec.X,
		Y:       rec.Y,
		Width:   rec.Width,
		Height:  rec.Height,
		ImageID: rec.ImageID,
		Type:    world.PointType(rec.Type),
		WayCost: rec.WayCost,
	})
}

func (b *Bolt) vault(id int32) (vaultRecord, error) {
	var rec vaultRecord
	err := b.get(bucketVaults, id, &rec)
	return rec, err
}

func (b *Bolt) LoadPoint(e world.PointHolder, pointID int32) {
	c, err := b.Point(pointID)
	if err != nil {
		b.log.Warn("load point failed", zap.Stringer("kind", e.Kind()), zap.Int32("id", e.ID()), zap.Error(err))
		return
	}
	e.SetPoint(c)
}

func (b *Bolt) LoadSector(e world.SectorHolder, sectorID int32) {
	s, err := b.Sector(sectorID)
	if err != nil {
		b.log.Warn("load sector failed", zap.Stringer("kind", e.Kind()), zap.Int32("id", e.ID()), zap.Error(err))
		return
	}
	e.SetSector(s)
}

func (b *Bolt) LoadResourceStore(c *world.Castle, vaultID int32) {
	rec, err := b.vault(vaultID)
	if err != nil {
		b.log.Warn("load resource vault failed", zap.Int32("castle", c.ID()), zap.Error(err))
		return
	}
	s := world.NewResourceStore(rec.ID)
	for _, r := range rec.Resources {
		world.NewResource(r.ID, world.ResourceType(r.Type), r.Count).SetVault(s)
	}
	c.SetResourceStore(s)
}

func (b *Bolt) LoadFigureStore(c *world.Castle, vaultID int32) {
	rec, err := b.vault(vaultID)
	if err != nil {
		b.log.Warn("load figure vault failed", zap.Int32("castle", c.ID()), zap.Error(err))
		return
	}
	s := world.NewFigureStore(rec.ID)
	for _, u := range rec.Units {
		s.AddUnit(world.Unit{Type: world.UnitType(u.Type), Count: u.Count})
	}
	c.SetFigureStore(s)
}
