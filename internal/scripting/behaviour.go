package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/pondhero/platformer/internal/component"
	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/spatial"
)

var BehaviourKind = ecs.RegisterKind[*Behaviour]("behaviour")

// Behaviour runs a Lua behaviour table against its entity. The optional
// sibling components must be set before the behaviour is attached; hooks
// the table defines are wired into them then.
//
// Script hooks, each receiving self first:
//
//	awake(self)           once, on attach
//	update(self, dt)      every active frame
//	hit_x(self), hit_y(self)  when the Mover is blocked (replaces the stop)
//	hurt(self)            when the Hurtable takes a hit
//
// A hook that raises an error is logged and the behaviour is disabled.
type Behaviour struct {
	ecs.Base

	Name     string
	Mover    *spatial.Mover
	Collider *spatial.Collider
	Animator *component.Animator
	Hurtable *component.Hurtable

	engine *Engine
	table  *lua.LTable
	self   *lua.LUserData
	state  *lua.LTable
	failed bool
}

func (*Behaviour) Kind() ecs.KindID { return BehaviourKind.ID() }

// Failed reports whether a hook raised an error.
func (b *Behaviour) Failed() bool { return b.failed }

// State returns the script's persistent state table.
func (b *Behaviour) State() *lua.LTable { return b.state }

func (b *Behaviour) Attached() {
	vm := b.engine.vm
	if b.state == nil {
		b.state = vm.NewTable()
	}
	b.self = vm.NewUserData()
	b.self.Value = b
	b.self.Metatable = b.engine.selfMeta

	if b.Mover != nil {
		if b.hook("hit_x") != nil {
			b.Mover.OnHitX = func(m *spatial.Mover) {
				if !b.call("hit_x") {
					m.StopX()
				}
			}
		}
		if b.hook("hit_y") != nil {
			b.Mover.OnHitY = func(m *spatial.Mover) {
				if !b.call("hit_y") {
					m.StopY()
				}
			}
		}
	}
	if b.Hurtable != nil && b.hook("hurt") != nil {
		prev := b.Hurtable.OnHurt
		b.Hurtable.OnHurt = func(h *component.Hurtable) {
			if prev != nil {
				prev(h)
			}
			b.call("hurt")
		}
	}

	b.call("awake")
}

func (b *Behaviour) Update(t *clock.Time) {
	b.call("update", lua.LNumber(t.Delta))
}

func (b *Behaviour) hook(name string) *lua.LFunction {
	fn, _ := b.table.RawGetString(name).(*lua.LFunction)
	return fn
}

// call runs hook name if the table defines it. It reports whether the hook
// ran to completion.
func (b *Behaviour) call(name string, args ...lua.LValue) bool {
	if b.failed || b.Entity() == nil {
		return false
	}
	fn := b.hook(name)
	if fn == nil {
		return false
	}

	if err := b.engine.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, append([]lua.LValue{b.self}, args...)...); err != nil {
		b.failed = true
		b.SetActive(false)
		b.engine.log.Error("lua behaviour error",
			zap.String("behaviour", b.Name),
			zap.String("hook", name),
			zap.Error(err),
		)
		return false
	}
	return true
}

// registerSelf builds the metatable shared by every self userdata.
func (e *Engine) registerSelf() {
	L := e.vm
	e.methods = L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"x":         selfX,
		"y":         selfY,
		"set_pos":   selfSetPos,
		"speed":     selfSpeed,
		"set_speed": selfSetSpeed,
		"on_ground": selfOnGround,
		"move_x":    selfMoveX,
		"move_y":    selfMoveY,
		"check":     selfCheck,
		"destroy":   selfDestroy,
		"play":      selfPlay,
		"pause":     e.selfPause,
		"spawn":     e.selfSpawn,
		"focus":     selfFocus,
		"first":     selfFirst,
	})

	e.selfMeta = L.NewTable()
	L.SetField(e.selfMeta, "__index", L.NewFunction(func(L *lua.LState) int {
		b := checkSelf(L)
		switch key := L.CheckString(2); key {
		case "state":
			L.Push(b.state)
		case "name":
			L.Push(lua.LString(b.Name))
		default:
			L.Push(e.methods.RawGetString(key))
		}
		return 1
	}))
}

func checkSelf(L *lua.LState) *Behaviour {
	ud := L.CheckUserData(1)
	b, ok := ud.Value.(*Behaviour)
	if !ok {
		L.ArgError(1, "behaviour expected")
	}
	return b
}

// checkEntity returns the entity of self, raising an error once the
// behaviour is detached.
func checkEntity(L *lua.LState) (*Behaviour, *ecs.Entity) {
	b := checkSelf(L)
	e := b.Entity()
	if e == nil {
		L.RaiseError("behaviour %q is detached", b.Name)
	}
	return b, e
}

func checkMover(L *lua.LState) *spatial.Mover {
	b, _ := checkEntity(L)
	if b.Mover == nil {
		L.RaiseError("behaviour %q has no mover", b.Name)
	}
	return b.Mover
}

func selfX(L *lua.LState) int {
	_, e := checkEntity(L)
	L.Push(lua.LNumber(e.Position.X))
	return 1
}

func selfY(L *lua.LState) int {
	_, e := checkEntity(L)
	L.Push(lua.LNumber(e.Position.Y))
	return 1
}

func selfSetPos(L *lua.LState) int {
	_, e := checkEntity(L)
	e.Position = geom.Pt(L.CheckInt(2), L.CheckInt(3))
	return 0
}

func selfSpeed(L *lua.LState) int {
	m := checkMover(L)
	L.Push(lua.LNumber(m.Speed.X))
	L.Push(lua.LNumber(m.Speed.Y))
	return 2
}

func selfSetSpeed(L *lua.LState) int {
	m := checkMover(L)
	m.Speed = geom.V(float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
	return 0
}

func selfOnGround(L *lua.LState) int {
	b, _ := checkEntity(L)
	L.Push(lua.LBool(b.Mover != nil && b.Mover.OnGround(1)))
	return 1
}

func selfMoveX(L *lua.LState) int {
	m := checkMover(L)
	L.Push(lua.LBool(m.MoveX(L.CheckInt(2))))
	return 1
}

func selfMoveY(L *lua.LState) int {
	m := checkMover(L)
	L.Push(lua.LBool(m.MoveY(L.CheckInt(2))))
	return 1
}

// self:check(mask, dx, dy) tests the collider shifted by (dx, dy).
func selfCheck(L *lua.LState) int {
	b, _ := checkEntity(L)
	if b.Collider == nil {
		L.RaiseError("behaviour %q has no collider", b.Name)
	}
	mask := checkMask(L, 2)
	off := geom.Pt(L.OptInt(3, 0), L.OptInt(4, 0))
	L.Push(lua.LBool(b.Collider.Check(mask, off)))
	return 1
}

func selfDestroy(L *lua.LState) int {
	b := checkSelf(L)
	if e := b.Entity(); e != nil {
		e.Destroy()
	}
	return 0
}

// self:play(name [, restart]) switches the animation.
func selfPlay(L *lua.LState) int {
	b, _ := checkEntity(L)
	if b.Animator == nil {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LBool(b.Animator.Play(L.CheckString(2), L.OptBool(3, false))))
	return 1
}

// self:focus() returns the position of the entity the camera follows, or
// nothing when there is none.
func selfFocus(L *lua.LState) int {
	_, e := checkEntity(L)
	f, ok := ecs.First(e.World(), component.FocusKind)
	if !ok {
		return 0
	}
	p := f.Entity().Position
	L.Push(lua.LNumber(p.X))
	L.Push(lua.LNumber(p.Y))
	return 2
}

// self:first(mask) returns the position of the oldest other entity whose
// collider carries every category in mask, or nothing when none is alive.
func selfFirst(L *lua.LState) int {
	_, e := checkEntity(L)
	mask := checkMask(L, 2)
	c, ok := ecs.Find(e.World(), spatial.ColliderKind, func(c *spatial.Collider) bool {
		return c.Entity() != e && c.Mask&mask == mask
	})
	if !ok {
		return 0
	}
	p := c.Entity().Position
	L.Push(lua.LNumber(p.X))
	L.Push(lua.LNumber(p.Y))
	return 2
}

func (e *Engine) selfPause(L *lua.LState) int {
	checkSelf(L)
	sec := float64(L.CheckNumber(2))
	if e.host.Clock != nil {
		e.host.Clock.PauseFor(sec)
	}
	return 0
}

// self:spawn(prefab [, dx, dy]) spawns relative to the entity position.
func (e *Engine) selfSpawn(L *lua.LState) int {
	b, ent := checkEntity(L)
	prefab := L.CheckString(2)
	pos := ent.Position.Add(geom.Pt(L.OptInt(3, 0), L.OptInt(4, 0)))
	if e.host.Spawn == nil {
		L.Push(lua.LFalse)
		return 1
	}
	if _, err := e.host.Spawn(ent.World(), prefab, pos); err != nil {
		e.log.Warn("lua spawn failed",
			zap.String("behaviour", b.Name),
			zap.String("prefab", prefab),
			zap.Error(err),
		)
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LTrue)
	return 1
}
