package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/core/event"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/input"
	"github.com/pondhero/platformer/internal/spatial"
)

// ErrUnknownBehaviour is returned by Engine.New for names no script registered.
var ErrUnknownBehaviour = errors.New("scripting: unknown behaviour")

// Host is what scripts can reach outside their own entity. Every field is
// optional; the matching Lua calls become no-ops when unset.
type Host struct {
	Clock *clock.Time
	Input *input.State
	Bus   *event.Bus
	// Spawn creates an entity from the named prefab at pos.
	Spawn func(w *ecs.World, prefab string, pos geom.Point) (*ecs.Entity, error)
}

// Engine wraps a single gopher-lua VM holding every registered behaviour.
// Single-goroutine access only (game loop).
type Engine struct {
	vm   *lua.LState
	log  *zap.Logger
	host Host

	behaviours map[string]*lua.LTable
	selfMeta   *lua.LTable
	methods    *lua.LTable
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory: shared helpers in lib/ first, then the behaviour files.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:         vm,
		log:        log,
		behaviours: make(map[string]*lua.LTable),
	}
	e.registerGlobals()
	e.registerSelf()

	if err := e.loadDir(filepath.Join(scriptsDir, "lib")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load lib scripts: %w", err)
	}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load behaviour scripts: %w", err)
	}

	log.Info("behaviours loaded", zap.Strings("names", e.Names()))
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}
		e.log.Debug("lua script loaded", zap.String("file", path))
	}
	return nil
}

// SetHost connects scripts to the running game.
func (e *Engine) SetHost(h Host) { e.host = h }

// Has reports whether a script registered the behaviour name.
func (e *Engine) Has(name string) bool {
	_, ok := e.behaviours[name]
	return ok
}

// Names returns registered behaviour names, sorted.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.behaviours))
	for n := range e.behaviours {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns an unattached Behaviour running the named script table.
func (e *Engine) New(name string) (*Behaviour, error) {
	tbl, ok := e.behaviours[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBehaviour, name)
	}
	return &Behaviour{Name: name, engine: e, table: tbl}, nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) registerGlobals() {
	e.vm.SetGlobal("behaviour", e.vm.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		tbl := L.CheckTable(2)
		if _, dup := e.behaviours[name]; dup {
			L.RaiseError("behaviour %q registered twice", name)
		}
		e.behaviours[name] = tbl
		return 0
	}))

	e.vm.SetGlobal("mask", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(checkMask(L, 1)))
		return 1
	}))

	e.vm.SetGlobal("held", e.vm.NewFunction(func(L *lua.LState) int {
		a := checkAction(L, 1)
		L.Push(lua.LBool(e.host.Input != nil && e.host.Input.Held(a)))
		return 1
	}))

	e.vm.SetGlobal("pressed", e.vm.NewFunction(func(L *lua.LState) int {
		a := checkAction(L, 1)
		L.Push(lua.LBool(e.host.Input != nil && e.host.Input.Pressed(a)))
		return 1
	}))

	e.vm.SetGlobal("shake", e.vm.NewFunction(func(L *lua.LState) int {
		d := float64(L.CheckNumber(1))
		if e.host.Bus != nil {
			event.Emit(e.host.Bus, event.ShakeRequested{Duration: d})
		}
		return 0
	}))
}

// checkMask accepts a mask number or a name list such as "enemy|hazard".
func checkMask(L *lua.LState, n int) spatial.Mask {
	switch v := L.CheckAny(n).(type) {
	case lua.LNumber:
		return spatial.Mask(uint32(v))
	case lua.LString:
		m, err := spatial.ParseMask(string(v))
		if err != nil {
			L.ArgError(n, err.Error())
		}
		return m
	default:
		L.ArgError(n, "mask expected, got "+v.Type().String())
	}
	return 0
}

func checkAction(L *lua.LState, n int) input.Action {
	name := L.CheckString(n)
	a, ok := input.Named(name)
	if !ok {
		L.ArgError(n, "unknown action "+strings.ToLower(name))
	}
	return a
}
