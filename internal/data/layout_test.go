package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alivechess/server/internal/event"
	"github.com/alivechess/server/internal/world"
)

func loadTestLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := LoadLayout(filepath.Join("testdata", "layout.yaml"))
	require.NoError(t, err)
	return l
}

func TestLoadLayout(t *testing.T) {
	l := loadTestLayout(t)
	assert.Equal(t, 8, l.Width)
	assert.Equal(t, 6, l.Height)
	require.Len(t, l.Sectors, 2)
	require.Len(t, l.Kings, 1)
	assert.Nil(t, l.Kings[0].Cost)
	require.NotNil(t, l.SingleObjects[0].Cost)
	assert.Equal(t, float32(4), *l.SingleObjects[0].Cost)

	typ, cost, err := l.terrainAt(1, 3)
	require.NoError(t, err)
	assert.Equal(t, world.PointWater, typ)
	assert.Equal(t, float32(10), cost)

	typ, _, err = l.terrainAt(6, 3)
	require.NoError(t, err)
	assert.Equal(t, world.PointMountain, typ)

	typ, cost, err = l.terrainAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, world.PointPlain, typ)
	assert.Equal(t, float32(1), cost)
}

func TestLoadLayoutErrors(t *testing.T) {
	_, err := LoadLayout(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 0\nheight: 3\n"), 0o644))
	_, err = LoadLayout(path)
	assert.ErrorIs(t, err, world.ErrInvalidSize)
}

func TestDigest(t *testing.T) {
	a := loadTestLayout(t)
	b := loadTestLayout(t)
	assert.Equal(t, a.Digest(), b.Digest())

	dir := t.TempDir()
	raw, err := os.ReadFile(filepath.Join("testdata", "layout.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layout.yaml"), raw, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiles.csv"), []byte("2,2,2,2,2,2,2,2\n"), 0o644))

	c, err := LoadLayout(filepath.Join(dir, "layout.yaml"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Digest(), c.Digest())
}

func TestApply(t *testing.T) {
	l := loadTestLayout(t)
	bus := event.NewBus()
	f := world.NewFactory(bus)
	var built []int32
	f.OnCastleCreated(func(c *world.Castle) { built = append(built, c.ID()) })

	w := world.New(1, world.WithBus(bus))
	require.NoError(t, l.Apply(w, f))
	assert.Equal(t, []int32{10}, built)

	counts := w.Counts()
	assert.Equal(t, 1, counts[world.KindKing])
	assert.Equal(t, 1, counts[world.KindCastle])
	assert.Equal(t, 1, counts[world.KindMine])
	assert.Equal(t, 1, counts[world.KindResource])
	assert.Equal(t, 1, counts[world.KindSingleObject])
	assert.Equal(t, 0, counts[world.KindMultiObject])
	assert.Equal(t, 1, counts[world.KindLandscapePoint])
	assert.Equal(t, 2*8+2*4, counts[world.KindBorder])

	cost, err := w.GetWayCost(1, 3)
	require.NoError(t, err)
	assert.Equal(t, float32(10), cost)

	cell := w.CellAt(2, 2)
	require.NotNil(t, cell)
	id, ok := cell.SectorID()
	assert.True(t, ok)
	assert.Equal(t, int32(1), id)
	assert.Equal(t, float32(2), cell.WayCost())
	require.NotNil(t, cell.Under())
	assert.Equal(t, world.PointPlain, cell.Under().Type())

	castle := w.SearchCastleByID(10)
	require.NotNil(t, castle)
	king := w.SearchKingByID(100)
	require.NotNil(t, king)
	assert.Same(t, king, castle.King())
	assert.Equal(t, []*world.Castle{castle}, king.Castles())
	assert.Equal(t, 4, castle.Distance())
	assert.Nil(t, w.SearchFreeCastle())

	x, err := king.X()
	require.NoError(t, err)
	assert.Equal(t, 3, x)
	kc := king.Point()
	assert.Equal(t, world.PointKing, kc.Type())
	assert.Equal(t, float32(1), kc.WayCost())
	assert.Same(t, kc, w.CellAt(3, 3))

	mine := w.SearchMineByID(20)
	require.NotNil(t, mine)
	assert.Equal(t, world.ResourceGold, mine.ResourceType())
	assert.Equal(t, 5, mine.Output())

	obj := w.SearchSingleObjectByPointID(502)
	require.NotNil(t, obj)
	cost, err = obj.WayCost()
	require.NoError(t, err)
	assert.Equal(t, float32(4), cost)

	b := w.SearchBorderByID(1000)
	require.NotNil(t, b)
	assert.Equal(t, world.PointBorder, b.Point().Type())
	assert.False(t, w.Locate(b.Point().X(), b.Point().Y()))
}

func TestApplyRemovingKingRestoresTerrain(t *testing.T) {
	l := loadTestLayout(t)
	w := world.New(1)
	require.NoError(t, l.Apply(w, world.NewFactory(nil)))

	king := w.SearchKingByID(100)
	require.NoError(t, w.RemoveKing(king))
	assert.Equal(t, world.PointPlain, w.CellAt(3, 3).Type())
}

func TestApplyErrors(t *testing.T) {
	f := world.NewFactory(nil)

	l := &Layout{Width: 4, Height: 4, Kings: []PointDef{{ID: 1, X: 0, Y: 0}}}
	err := l.Apply(world.New(1), f)
	assert.ErrorIs(t, err, world.ErrOutOfRange)

	l = &Layout{Width: 4, Height: 4, Castles: []CastleDef{{ID: 1, Sector: 9}}}
	err = l.Apply(world.New(1), f)
	assert.ErrorContains(t, err, "unknown sector 9")

	l = &Layout{
		Width:   4,
		Height:  4,
		Sectors: []SectorDef{{ID: 1, X: 1, Y: 1, Width: 1, Height: 1}},
		Castles: []CastleDef{{ID: 1, Sector: 1, King: 7}},
	}
	err = l.Apply(world.New(1), f)
	assert.ErrorContains(t, err, "unknown king 7")

	l = &Layout{Width: 4, Height: 4, Resources: []PointDef{{ID: 1, X: 1, Y: 1, Type: "mithril"}}}
	err = l.Apply(world.New(1), f)
	assert.ErrorContains(t, err, "mithril")
}

func TestApplyGrid(t *testing.T) {
	l := loadTestLayout(t)
	w := world.New(1)
	require.NoError(t, l.ApplyGrid(w))

	assert.Equal(t, 8, w.Width())
	for _, n := range w.Counts() {
		assert.Zero(t, n)
	}
	id, ok := w.CellAt(5, 1).SectorID()
	assert.True(t, ok)
	assert.Equal(t, int32(2), id)
	assert.Equal(t, world.PointPlain, w.CellAt(3, 3).Type())
}

func TestShippedLayout(t *testing.T) {
	l, err := LoadLayout(filepath.Join("..", "..", "data", "world", "classic.yaml"))
	require.NoError(t, err)

	w := world.New(1)
	require.NoError(t, l.Apply(w, world.NewFactory(nil)))
	assert.Equal(t, 2, w.Len(world.KindCastle))
	assert.Equal(t, 3, w.Len(world.KindResource))
	assert.Equal(t, 2*24+2*14, w.Len(world.KindBorder))
	assert.NotNil(t, w.SearchFreeCastle())

	king := w.SearchKingByID(100)
	require.NotNil(t, king)
	assert.Same(t, king, w.SearchCastleByID(10).King())
	assert.NotNil(t, w.SearchMineByID(21))
}

func TestShippedNoiseLayout(t *testing.T) {
	l, err := LoadLayout(filepath.Join("..", "..", "data", "world", "wilds.yaml"))
	require.NoError(t, err)

	w := world.New(2)
	require.NoError(t, l.Apply(w, world.NewFactory(nil)))
	assert.Equal(t, 2, w.Len(world.KindCastle))
	assert.Equal(t, 1, w.Len(world.KindMine))
	assert.Equal(t, 2*40+2*26, w.Len(world.KindBorder))
	assert.NotNil(t, w.SearchMineByID(20))
}

func TestLayoutObserverIDsShared(t *testing.T) {
	_, err := LoadLayout(writeLayout(t, `
width: 6
height: 6
sectors:
  - {id: 1, x: 1, y: 1, width: 2, height: 2, type: castle}
castles:
  - {id: 1, sector: 1}
kings:
  - {id: 1, point_id: 50, x: 4, y: 4}
`))
	require.ErrorIs(t, err, world.ErrDuplicateObserver)
	assert.ErrorContains(t, err, "king 1 and castle 1 share observer id 1")

	l := &Layout{
		Width:   6,
		Height:  6,
		Sectors: []SectorDef{{ID: 1, X: 1, Y: 1, Width: 2, Height: 2}, {ID: 2, X: 3, Y: 3, Width: 2, Height: 2}},
		Castles: []CastleDef{{ID: 7, Sector: 1}},
		Mines:   []MineDef{{ID: 7, Sector: 2, Resource: "gold"}},
	}
	w := world.New(1)
	err = l.Apply(w, world.NewFactory(nil))
	require.ErrorIs(t, err, world.ErrDuplicateObserver)
	assert.ErrorContains(t, err, "castle 7 and mine 7")
	assert.Zero(t, w.Width())

	l.Mines[0].ID = 8
	require.NoError(t, l.Apply(w, world.NewFactory(nil)))
	assert.Equal(t, 1, w.Len(world.KindMine))
}

func writeLayout(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "noise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNoiseTerrain(t *testing.T) {
	const body = `
width: 12
height: 10
base: {type: plain, cost: 1}
noise:
  seed: 42
  scale: 4
  bands:
    - {below: -0.2, type: water, cost: 10}
    - {below: 0.3, type: tree, cost: 2}
`
	a, err := LoadLayout(writeLayout(t, body))
	require.NoError(t, err)
	b, err := LoadLayout(writeLayout(t, body))
	require.NoError(t, err)

	for x := 0; x < a.Width; x++ {
		for y := 0; y < a.Height; y++ {
			ta, ca, err := a.terrainAt(x, y)
			require.NoError(t, err)
			tb, cb, err := b.terrainAt(x, y)
			require.NoError(t, err)
			assert.Equal(t, ta, tb, "(%d,%d)", x, y)
			assert.Equal(t, ca, cb)
			assert.Contains(t, []world.PointType{world.PointWater, world.PointTree, world.PointPlain}, ta)
		}
	}
}

func TestNoiseBandsCoverEverything(t *testing.T) {
	l, err := LoadLayout(writeLayout(t, `
width: 5
height: 5
noise: {seed: 7, scale: 3, bands: [{below: 2, type: water, cost: 9}]}
`))
	require.NoError(t, err)

	w := world.New(1)
	require.NoError(t, l.ApplyGrid(w))
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			c := w.CellAt(x, y)
			require.NotNil(t, c)
			assert.Equal(t, world.PointWater, c.Type())
			assert.Equal(t, float32(9), c.WayCost())
		}
	}
}

func TestNoiseValidation(t *testing.T) {
	_, err := LoadLayout(writeLayout(t, "width: 4\nheight: 4\nnoise: {scale: 0}\n"))
	assert.ErrorContains(t, err, "scale")

	_, err = LoadLayout(writeLayout(t, `
width: 4
height: 4
noise: {scale: 2, bands: [{below: 0.5, type: water}, {below: 0.1, type: tree}]}
`))
	assert.ErrorContains(t, err, "ascend")
}
