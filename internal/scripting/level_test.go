package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alivechess/server/internal/world"
)

func newWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New(1)
	require.NoError(t, w.Initialize(5, 5))
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			require.NoError(t, w.PlaceCell(world.CreatePoint(world.PointSpec{X: x, Y: y, Type: world.PointPlain, WayCost: 1})))
		}
	}
	require.NoError(t, w.PlaceCell(world.CreatePoint(world.PointSpec{X: 2, Y: 2, Type: world.PointWater, WayCost: 10})))
	require.NoError(t, w.PlaceCell(world.CreatePoint(world.PointSpec{X: 3, Y: 3, Type: world.PointMountain, WayCost: 9})))
	return w
}

func TestLoadLevel(t *testing.T) {
	l, err := LoadLevel(filepath.Join("testdata", "classic.lua"), nil)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 1, l.ID())
	assert.Equal(t, "classic", l.Name())
	assert.Equal(t, float32(5), l.CostLimit())
}

func TestLoadLevelErrors(t *testing.T) {
	_, err := LoadLevel(filepath.Join("testdata", "missing.lua"), nil)
	assert.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "empty.lua")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
	_, err = LoadLevel(path, nil)
	assert.ErrorContains(t, err, "no level table")

	require.NoError(t, os.WriteFile(path, []byte("level = {\n"), 0o644))
	_, err = LoadLevel(path, nil)
	assert.Error(t, err)
}

func TestLoadLevelDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`level = {id = 3, name = "dir", cost_limit = 2}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`level.cost_limit = 4`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	l, err := LoadLevel(dir, nil)
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, "dir", l.Name())
	assert.Equal(t, float32(4), l.CostLimit())
}

func TestCanEnterDefault(t *testing.T) {
	l, err := LoadLevel(filepath.Join("testdata", "classic.lua"), nil)
	require.NoError(t, err)
	defer l.Close()

	assert.False(t, l.CanEnter(1, 1), "unbound level")

	w := newWorld(t)
	w.SetLevel(l)
	assert.Same(t, l, w.Level())

	assert.True(t, l.CanEnter(1, 1))
	assert.False(t, l.CanEnter(0, 1), "border")
	assert.False(t, l.CanEnter(2, 2), "water over limit")
}

func TestCanEnterScripted(t *testing.T) {
	l, err := LoadLevel(filepath.Join("testdata", "swamp.lua"), nil)
	require.NoError(t, err)
	defer l.Close()

	w := newWorld(t)
	w.SetLevel(l)

	assert.True(t, l.CanEnter(1, 1))
	assert.True(t, l.CanEnter(2, 2))
	assert.False(t, l.CanEnter(3, 3))
	assert.False(t, l.CanEnter(4, 4))
}

func TestCanEnterScriptError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.lua")
	src := "level = {id = 1, name = \"broken\", cost_limit = 1}\nfunction can_enter(x, y) error(\"boom\") end\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	l, err := LoadLevel(path, nil)
	require.NoError(t, err)
	defer l.Close()
	w := newWorld(t)
	w.SetLevel(l)
	assert.False(t, l.CanEnter(1, 1))
}

func TestShippedLevel(t *testing.T) {
	l, err := LoadLevel(filepath.Join("..", "..", "scripts", "level", "classic.lua"), nil)
	require.NoError(t, err)
	defer l.Close()

	w := newWorld(t)
	require.NoError(t, w.PlaceCell(world.CreatePoint(world.PointSpec{X: 1, Y: 2, Type: world.PointRoad, WayCost: 0.5})))
	w.SetLevel(l)

	assert.Equal(t, "classic", l.Name())
	assert.True(t, l.CanEnter(1, 1))
	assert.True(t, l.CanEnter(1, 2))
	assert.False(t, l.CanEnter(2, 2))
	assert.False(t, l.CanEnter(3, 3))
}
