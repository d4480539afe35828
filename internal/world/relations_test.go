package world

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alivechess/server/internal/event"
)

func placedCastle(t *testing.T, w *World, id int32, x, y int) *Castle {
	t.Helper()
	s, err := CreateSector(SectorSpec{ID: id * 100, X: x, Y: y, Width: 2, Height: 2, Type: PointCastle, WayCost: 1})
	require.NoError(t, err)
	require.NoError(t, w.InitializeSector(s))
	c := NewCastle(id)
	c.SetSector(s)
	return c
}

func TestCastleAddSearchRemove(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	c := placedCastle(t, w, 7, 2, 2)

	require.NoError(t, w.AddCastle(c))
	assert.Same(t, w, c.World())
	assert.Equal(t, int32(1), c.WorldID())
	assert.True(t, w.Contains(KindCastle, 7))
	assert.Same(t, c, w.SearchCastleByID(7))

	obs, err := w.SearchObserverByID(7, CastleObserver)
	require.NoError(t, err)
	assert.Same(t, c, obs)
	assert.Equal(t, Observer(c), w.Observer(7))

	require.NoError(t, w.RemoveCastle(c))
	assert.Nil(t, c.World())
	assert.Zero(t, c.WorldID())
	assert.False(t, w.ContainsCastle(7))
	assert.Nil(t, w.SearchCastleByID(7))
	obs, err = w.SearchObserverByID(7, CastleObserver)
	require.NoError(t, err)
	assert.Nil(t, obs)
	assert.Nil(t, w.Observer(7))
}

func TestAttachDetachSymmetryAllKinds(t *testing.T) {
	w := newTestWorld(t, 12, 12)
	fillPlain(t, w)

	cell := func(x, y int) *Cell {
		c, err := w.CreatePointOver(PointSpec{ID: int32(x*100 + y), X: x, Y: y, WayCost: 1})
		require.NoError(t, err)
		return c
	}
	sector := func(id int32, x, y int) *Sector {
		s, err := CreateSector(SectorSpec{ID: id, X: x, Y: y, Width: 2, Height: 2, WayCost: 1})
		require.NoError(t, err)
		require.NoError(t, w.InitializeSector(s))
		return s
	}

	king := NewKing(1)
	king.SetPoint(cell(1, 1))
	castle := NewCastle(2)
	castle.SetSector(sector(20, 2, 2))
	mine := NewMine(3)
	mine.SetSector(sector(30, 5, 5))
	res := NewResource(4, ResourceGold, 10)
	res.SetPoint(cell(8, 1))
	single := NewSingleObject(5, ObjectTree)
	single.SetPoint(cell(8, 2))
	multi := NewMultiObject(6, ObjectLake)
	multi.SetSector(sector(60, 8, 8))
	land := NewLandscapePoint(7, LandscapeSand, 0)
	land.SetPoint(cell(1, 8))
	border := NewBorder(8, 0)
	border.SetPoint(cell(0, 0))

	cases := []struct {
		e      Placed
		add    func() error
		remove func() error
	}{
		{king, func() error { return w.AddKing(king) }, func() error { return w.RemoveKing(king) }},
		{castle, func() error { return w.AddCastle(castle) }, func() error { return w.RemoveCastle(castle) }},
		{mine, func() error { return w.AddMine(mine) }, func() error { return w.RemoveMine(mine) }},
		{res, func() error { return w.AddResource(res) }, func() error { return w.RemoveResource(res) }},
		{single, func() error { return w.AddSingleObject(single) }, func() error { return w.RemoveSingleObject(single) }},
		{multi, func() error { return w.AddMultiObject(multi) }, func() error { return w.RemoveMultiObject(multi) }},
		{land, func() error { return w.AddLandscapePoint(land) }, func() error { return w.RemoveLandscapePoint(land) }},
		{border, func() error { return w.AddBorder(border) }, func() error { return w.RemoveBorder(border) }},
	}
	for _, tc := range cases {
		t.Run(tc.e.Kind().String(), func(t *testing.T) {
			require.NoError(t, tc.add())
			assert.Same(t, w, tc.e.World())
			assert.True(t, w.Contains(tc.e.Kind(), tc.e.ID()))
			assert.Equal(t, 1, w.Len(tc.e.Kind()))

			require.NoError(t, tc.remove())
			assert.Nil(t, tc.e.World())
			assert.False(t, w.Contains(tc.e.Kind(), tc.e.ID()))
			assert.ErrorIs(t, tc.remove(), ErrNotAttached)
		})
	}
	for k, n := range w.Counts() {
		assert.Zero(t, n, k.String())
	}
	assert.Zero(t, w.ObserverCount())
}

func TestAddRejections(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	other := newTestWorld(t, 10, 10)

	k := NewKing(5)
	require.NoError(t, w.AddKing(k))
	assert.ErrorIs(t, w.AddKing(k), ErrAlreadyAttached)
	assert.ErrorIs(t, other.AddKing(k), ErrAlreadyAttached)
	assert.ErrorIs(t, w.AddKing(NewKing(5)), ErrDuplicateID)
	assert.ErrorIs(t, w.AddMine(NewMine(5)), ErrDuplicateObserver)
	assert.ErrorIs(t, w.AddKing(nil), ErrNotInitialized)

	// non-observer kinds may reuse an observer id
	require.NoError(t, w.AddResource(NewResource(5, ResourceWood, 1)))
	assert.Equal(t, 1, w.Len(KindMine)+w.Len(KindKing))
	assert.Same(t, k, w.Observer(5))
}

func TestRemoveWithoutViewFails(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	k := NewKing(3)
	require.NoError(t, w.AddKing(k))

	assert.ErrorIs(t, w.RemoveKing(k), ErrNotInitialized)
	assert.Same(t, w, k.World(), "failed removal mutates nothing")
	assert.True(t, w.ContainsKing(3))
	assert.NotNil(t, w.Observer(3))
}

func TestRemoveRevealsCoveredCell(t *testing.T) {
	w := newTestWorld(t, 6, 6)
	fillPlain(t, w)
	ground := w.CellAt(3, 3)

	o := NewSingleObject(11, ObjectStone)
	require.NoError(t, w.AddSingleObject(o))
	c, err := w.CreatePointOver(PointSpec{ID: 300, X: 3, Y: 3, Type: PointObject, WayCost: 9})
	require.NoError(t, err)
	require.NoError(t, o.AddView(c))
	assert.Same(t, c, w.CellAt(3, 3))

	require.NoError(t, w.RemoveSingleObject(o))
	assert.Same(t, ground, w.CellAt(3, 3))
	k, err := w.GetWayCost(3, 3)
	require.NoError(t, err)
	assert.Equal(t, float32(1), k)
}

func TestRemoveCastleRevealsSector(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	fillPlain(t, w)
	c := placedCastle(t, w, 4, 3, 3)
	require.NoError(t, w.AddCastle(c))
	assert.Equal(t, PointCastle, w.CellAt(4, 4).Type())

	require.NoError(t, w.RemoveCastle(c))
	for x := 3; x < 5; x++ {
		for y := 3; y < 5; y++ {
			assert.Equal(t, PointPlain, w.CellAt(x, y).Type())
		}
	}
}

func TestRevealSkipsRecoveredSlot(t *testing.T) {
	w := newTestWorld(t, 6, 6)
	fillPlain(t, w)
	o := NewSingleObject(1, ObjectStone)
	c, err := w.CreatePointOver(PointSpec{X: 2, Y: 2, Type: PointObject})
	require.NoError(t, err)
	o.SetPoint(c)
	require.NoError(t, w.AddSingleObject(o))

	later := CreatePoint(PointSpec{X: 2, Y: 2, Type: PointWater})
	require.NoError(t, w.PlaceCell(later))
	require.NoError(t, w.RemoveSingleObject(o))
	assert.Same(t, later, w.CellAt(2, 2))
}

func TestAddViewRequiresWorld(t *testing.T) {
	w := newTestWorld(t, 6, 6)
	k := NewKing(1)
	c := CreatePoint(PointSpec{ID: 9, X: 2, Y: 2, Type: PointKing})
	assert.ErrorIs(t, k.AddView(c), ErrNotAttached)

	require.NoError(t, w.AddKing(k))
	require.NoError(t, k.AddView(c))
	assert.Same(t, c, w.CellAt(2, 2))
	assert.Equal(t, int32(9), k.PointID())
	assert.Same(t, k, w.SearchKingByPointID(9))
}

func TestSearchObserverKinds(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	k, m := NewKing(1), NewMine(2)
	require.NoError(t, w.AddKing(k))
	require.NoError(t, w.AddMine(m))

	got, err := w.SearchObserverByID(1, KingObserver)
	require.NoError(t, err)
	assert.Same(t, k, got)
	got, err = w.SearchObserverByID(2, MineObserver)
	require.NoError(t, err)
	assert.Same(t, m, got)
	got, err = w.SearchObserverByID(2, KingObserver)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = w.SearchObserverByID(1, nil)
	assert.ErrorIs(t, err, ErrInvalidObserverKind)

	kind, err := ObserverKindOf(PointMine)
	require.NoError(t, err)
	assert.Equal(t, KindMine, kind.Kind())
	_, err = ObserverKindOf(PointNone)
	assert.ErrorIs(t, err, ErrInvalidObserverKind)
	_, err = ObserverKindOf(PointResource)
	assert.ErrorIs(t, err, ErrInvalidObserverKind)
}

func TestEventsPublished(t *testing.T) {
	bus := event.NewBus()
	w := New(2, WithBus(bus))
	require.NoError(t, w.Initialize(6, 6))
	fillPlain(t, w)

	var attached, detached []int32
	exposed := 0
	event.Subscribe(bus, func(e EntityAttached) { attached = append(attached, e.ID) })
	event.Subscribe(bus, func(e EntityDetached) { detached = append(detached, e.ID) })
	event.Subscribe(bus, func(e CellsExposed) { exposed += e.Count })

	r := NewResource(8, ResourceIron, 3)
	c, err := w.CreatePointOver(PointSpec{X: 2, Y: 2, Type: PointResource})
	require.NoError(t, err)
	r.SetPoint(c)
	require.NoError(t, w.AddResource(r))
	require.NoError(t, w.RemoveResource(r))
	assert.Error(t, w.AddKing(nil))
	assert.Empty(t, attached, "delivered on flush only")

	bus.Flush()
	assert.Equal(t, []int32{8}, attached)
	assert.Equal(t, []int32{8}, detached)
	assert.Equal(t, 1, exposed)

	require.NoError(t, w.AddResource(NewResource(8, ResourceIron, 3)), "a new instance may reuse a freed id")
}

func TestConcurrentAddRemove(t *testing.T) {
	w := newTestWorld(t, 40, 40)
	fillPlain(t, w)

	const perKind = 50
	var wg sync.WaitGroup
	errs := make(chan error, 4*perKind)
	for i := 0; i < perKind; i++ {
		wg.Add(2)
		go func(id int32) {
			defer wg.Done()
			k := NewKing(id)
			c, err := w.CreatePointOver(PointSpec{ID: id, X: int(id%38) + 1, Y: 1, Type: PointKing})
			if err != nil {
				errs <- err
				return
			}
			k.SetPoint(c)
			if err := w.AddKing(k); err != nil {
				errs <- err
				return
			}
			if err := w.RemoveKing(k); err != nil {
				errs <- err
			}
		}(int32(i + 1))
		go func(id int32) {
			defer wg.Done()
			r := NewResource(id, ResourceGold, 1)
			if err := w.AddResource(r); err != nil {
				errs <- err
			}
			for range w.Resources() {
			}
			_ = w.SearchResourceByID(id)
		}(int32(i + 1))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Zero(t, w.Len(KindKing))
	assert.Zero(t, w.ObserverCount())
	assert.Equal(t, perKind, w.Len(KindResource))
}

func TestEnumerationDoesNotHoldLock(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	for i := int32(1); i <= 3; i++ {
		require.NoError(t, w.AddBorder(NewBorder(i, 0)))
	}
	seen := 0
	for b := range w.Borders() {
		seen++
		// mutating the registry mid-iteration must not deadlock
		require.NoError(t, w.AddBorder(NewBorder(b.ID()+100, 0)))
	}
	assert.Equal(t, 3, seen)
	assert.Equal(t, 6, w.Len(KindBorder))

	var ids []string
	for b := range w.Borders() {
		ids = append(ids, fmt.Sprint(b.ID()))
		if len(ids) == 2 {
			break
		}
	}
	assert.Len(t, ids, 2)
}
