package store

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alivechess/server/internal/world"
)

func openTest(t *testing.T) *Bolt {
	t.Helper()
	b, err := Open(filepath.Join(t.TempDir(), "world.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestPointRoundTripThroughLoader(t *testing.T) {
	b := openTest(t)
	require.NoError(t, b.PutPoint(world.CreatePoint(world.PointSpec{
		ID: 17, X: 4, Y: 5, ImageID: 3, Type: world.PointResource, WayCost: 2.5,
	})))

	r := world.NewResource(1, world.ResourceGold, 10, world.WithLoaders(b), world.WithStoredIDs(1, 17))
	c := r.Point()
	require.NotNil(t, c)
	assert.Equal(t, int32(17), c.ID())
	assert.Equal(t, world.PointResource, c.Type())
	x, err := r.X()
	require.NoError(t, err)
	assert.Equal(t, 4, x)
	cost, err := r.WayCost()
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), cost)
}

func TestSectorLoadRebuildsCells(t *testing.T) {
	b := openTest(t)
	s, err := world.CreateSector(world.SectorSpec{ID: 5, X: 2, Y: 3, Width: 3, Height: 2, Type: world.PointCastle, WayCost: 1})
	require.NoError(t, err)
	require.NoError(t, b.PutSector(s))

	c := world.NewCastle(9, world.WithLoaders(b), world.WithStoredIDs(1, 5))
	loaded := c.Sector()
	require.NotNil(t, loaded)
	assert.Equal(t, 6, loaded.Len())
	for _, p := range loaded.Points() {
		assert.True(t, loaded.Contains(p.X(), p.Y()))
		assert.Equal(t, world.PointCastle, p.Type())
	}
}

func TestMissingRecordLeavesViewUnset(t *testing.T) {
	b := openTest(t)
	k := world.NewKing(1, world.WithLoaders(b), world.WithStoredIDs(1, 404))
	assert.Nil(t, k.Point())

	_, err := b.Point(404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVaultLoad(t *testing.T) {
	b := openTest(t)
	res := world.NewResourceStore(8)
	world.NewResource(1, world.ResourceWood, 4).SetVault(res)
	world.NewResource(2, world.ResourceWood, 6).SetVault(res)
	fig := world.NewFigureStore(8)
	fig.AddUnit(world.Unit{Type: world.UnitKnight, Count: 2})
	require.NoError(t, b.PutVault(8, res, fig))

	c := world.NewCastle(1, world.WithLoaders(b))
	require.NoError(t, c.SetResourceVaultID(8))
	require.NoError(t, c.SetFigureVaultID(8))

	require.NotNil(t, c.ResourceStore())
	assert.Equal(t, 10, c.ResourceStore().Amount(world.ResourceWood))
	require.NotNil(t, c.FigureStore())
	assert.Equal(t, 2, c.FigureStore().Count(world.UnitKnight))
}

func TestConcurrentPutsAndLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.db")
	b, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := int32(1); i <= 32; i++ {
		wg.Add(2)
		go func(id int32) {
			defer wg.Done()
			assert.NoError(t, b.PutPoint(world.CreatePoint(world.PointSpec{ID: id, X: int(id), Y: 1, WayCost: 1})))
		}(i)
		go func(id int32) {
			defer wg.Done()
			// may run before or after the matching put
			if c, err := b.Point(id); err == nil {
				assert.Equal(t, int(id), c.X())
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, b.Close())

	b, err = Open(path, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()
	for i := int32(1); i <= 32; i++ {
		c, err := b.Point(i)
		require.NoError(t, err)
		assert.Equal(t, int(i), c.X())
	}
}

func TestSnapshotRestoresViews(t *testing.T) {
	b := openTest(t)

	w := world.New(3)
	require.NoError(t, w.Initialize(6, 6))
	k := world.NewKing(1)
	require.NoError(t, w.AddKing(k))
	require.NoError(t, k.AddView(world.CreatePoint(world.PointSpec{ID: 40, X: 2, Y: 3, Type: world.PointKing, WayCost: 1})))

	s, err := world.CreateSector(world.SectorSpec{ID: 8, X: 1, Y: 1, Width: 2, Height: 2, Type: world.PointMine, WayCost: 3})
	require.NoError(t, err)
	require.NoError(t, w.InitializeSector(s))
	m := world.NewMine(2)
	m.SetSector(s)
	require.NoError(t, w.AddMine(m))
	require.NoError(t, w.AddBorder(world.NewBorder(9, 0)))

	n, err := b.Snapshot(w)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	k2 := world.NewKing(1, world.WithLoaders(b), world.WithStoredIDs(3, 40))
	x, err := k2.X()
	assert.ErrorIs(t, err, world.ErrNotInitialized)
	require.NotNil(t, k2.Point())
	x, err = k2.X()
	require.NoError(t, err)
	assert.Equal(t, 2, x)

	m2 := world.NewMine(2, world.WithLoaders(b), world.WithStoredIDs(3, 8))
	require.NotNil(t, m2.Sector())
	assert.Equal(t, 4, m2.Sector().Len())
	assert.Equal(t, world.PointMine, m2.Sector().Type())
}
