package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/alivechess/server/internal/world"
)

// Level is a ruleset defined by a Lua script. The script must set a global
// `level` table with `id`, `name` and `cost_limit`; it may define
// `can_enter(x, y)` to override the default movement check.
//
// Once bound to a world the script can call `locate(x, y)` and
// `way_cost(x, y)`.
type Level struct {
	mu  sync.Mutex // one goroutine in the VM at a time
	vm  *lua.LState
	log *zap.Logger

	id        int
	name      string
	costLimit float32
	w         *world.World
}

// LoadLevel runs the script at path, or every .lua file in it when path is
// a directory.
func LoadLevel(path string, log *zap.Logger) (*Level, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	l := &Level{vm: vm, log: log}
	if err := l.load(path); err != nil {
		vm.Close()
		return nil, err
	}

	t, ok := vm.GetGlobal("level").(*lua.LTable)
	if !ok {
		vm.Close()
		return nil, fmt.Errorf("level script %s: no level table", path)
	}
	l.id = lInt(t, "id")
	l.name = lStr(t, "name")
	l.costLimit = float32(lua.LVAsNumber(t.RawGetString("cost_limit")))
	if l.name == "" {
		vm.Close()
		return nil, fmt.Errorf("level script %s: level.name is empty", path)
	}
	l.log = log.With(zap.String("level", l.name))
	return l, nil
}

func (l *Level) load(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("level script: %w", err)
	}
	if !fi.IsDir() {
		if err := l.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		p := filepath.Join(path, entry.Name())
		if err := l.vm.DoFile(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		l.log.Debug("loaded lua script", zap.String("file", p))
	}
	return nil
}

func (l *Level) ID() int            { return l.id }
func (l *Level) Name() string       { return l.name }
func (l *Level) CostLimit() float32 { return l.costLimit }

// BindWorld exposes the world's spatial queries to the script.
func (l *Level) BindWorld(w *world.World) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w = w
	l.vm.SetGlobal("locate", l.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(w.Locate(L.CheckInt(1), L.CheckInt(2))))
		return 1
	}))
	l.vm.SetGlobal("way_cost", l.vm.NewFunction(func(L *lua.LState) int {
		k, err := w.GetWayCost(L.CheckInt(1), L.CheckInt(2))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LNumber(k))
		return 1
	}))
}

// CanEnter reports whether a figure may move onto (x, y). Without a
// can_enter function the cell must be interior and no costlier than
// cost_limit. An unbound level refuses everything.
func (l *Level) CanEnter(x, y int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return false
	}
	fn := l.vm.GetGlobal("can_enter")
	if fn == lua.LNil {
		return l.w.CheckPoint(x, y, l.costLimit)
	}
	if err := l.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(x), lua.LNumber(y)); err != nil {
		l.log.Error("lua can_enter error", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
		return false
	}
	result := l.vm.Get(-1)
	l.vm.Pop(1)
	return lua.LVAsBool(result)
}

// Close shuts down the Lua VM.
func (l *Level) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vm.Close()
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}
