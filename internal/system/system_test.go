package system

import (
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pondhero/platformer/internal/component"
	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/core/event"
	"github.com/pondhero/platformer/internal/data"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/input"
	"github.com/pondhero/platformer/internal/level"
	"github.com/pondhero/platformer/internal/render"
	"github.com/pondhero/platformer/internal/render/term"
	"github.com/pondhero/platformer/internal/spatial"
)

const (
	testTilesets = `
tile_size: 8
tilesets:
  - name: castle
    tiles: [[0, 0]]
`
	testPrefabs = `
prefabs:
  - name: hero
    hitbox: [-4, -8, 8, 8]
    mask: player
    reload_offset: [0, -16]
    focus: true
    unique: true
    mover: { collide: true }
`
	// 4x3 rooms of 8px tiles: 32x24 pixels each
	testRooms = `
columns: 4
rows: 3
legend:
  "#": { tileset: castle, solid: true }
  "@": { prefab: hero }
rooms:
  - name: start
    cell: [0, 0]
    rows: ["....", ".@..", "####"]
  - name: east
    cell: [1, 0]
    rows: ["....", "....", "####"]
  - name: sky
    cell: [1, -1]
    rows: ["....", "....", "...."]
`
)

type rig struct {
	world   *ecs.World
	clock   *clock.Time
	bus     *event.Bus
	cam     *Camera
	builder *level.Builder
	rooms   *RoomSystem
	camera  *CameraSystem
}

func newRig(t *testing.T) *rig {
	t.Helper()
	var (
		c   data.Content
		err error
	)
	c.Sprites, err = data.ParseSpriteTable([]byte("sprites: []"))
	require.NoError(t, err)
	c.Tilesets, err = data.ParseTilesetTable([]byte(testTilesets))
	require.NoError(t, err)
	c.Prefabs, err = data.ParsePrefabTable([]byte(testPrefabs))
	require.NoError(t, err)
	c.Rooms, err = data.ParseRoomTable([]byte(testRooms))
	require.NoError(t, err)

	r := &rig{
		world: ecs.NewWorld(),
		clock: clock.New(),
		bus:   event.NewBus(),
		cam:   &Camera{},
	}
	r.builder = level.NewBuilder(&c, level.WithBus(r.bus))
	r.rooms = NewRoomSystem(r.world, r.builder, r.cam, r.bus, zap.NewNop())
	r.camera = NewCameraSystem(r.cam, r.world, r.clock, r.builder, r.rooms, r.bus, zap.NewNop())
	require.NoError(t, r.rooms.Load(RoomRequest{Cell: geom.Pt(0, 0), Clear: true}))
	return r
}

func (r *rig) hero(t *testing.T) *ecs.Entity {
	t.Helper()
	e, ok := component.Tagged(r.world, "hero")
	require.True(t, ok)
	return e
}

// frame steps the clock by 100ms and runs the camera and room systems.
func (r *rig) frame() {
	r.clock.Step(100 * time.Millisecond)
	r.camera.Update(0)
	r.rooms.Update(0)
}

func TestInputSystemDrainsEvents(t *testing.T) {
	ch := make(chan tcell.Event, 4)
	ch <- tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)
	ch <- tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone)
	close(ch)

	st := input.NewState()
	var cmds []term.Command
	s := NewInputSystem(ch, st, func(c term.Command) { cmds = append(cmds, c) })

	s.Update(16 * time.Millisecond)
	assert.True(t, st.Pressed(input.Jump))
	assert.Equal(t, []term.Command{term.CmdToggleColliders}, cmds)
	assert.Nil(t, s.events, "closed channel is dropped")

	s.Update(16 * time.Millisecond)
	assert.False(t, st.Pressed(input.Jump))
	assert.True(t, st.Held(input.Jump))
}

func TestEventSystemDeliversPreviousFrame(t *testing.T) {
	bus := event.NewBus()
	var got []float64
	event.Subscribe(bus, func(ev event.ShakeRequested) { got = append(got, ev.Duration) })

	event.Emit(bus, event.ShakeRequested{Duration: 0.3})
	NewEventSystem(bus).Update(0)
	assert.Equal(t, []float64{0.3}, got)
}

func TestWorldSystemFreezesDuringTransition(t *testing.T) {
	w := ecs.NewWorld()
	ck := clock.New()
	cam := &Camera{}
	e := w.CreateEntity(geom.Point{})
	ecs.Attach(e, &spatial.Mover{Speed: geom.V(10, 0)})

	s := NewWorldSystem(w, ck, cam)
	s.Update(time.Second)
	assert.Equal(t, 10, e.Position.X)
	assert.Equal(t, uint64(1), ck.Frame)

	cam.transition = &transition{}
	s.Update(time.Second)
	assert.Equal(t, 10, e.Position.X)
	assert.Equal(t, uint64(2), ck.Frame, "clock keeps running")
}

func TestRenderSystem(t *testing.T) {
	w := ecs.NewWorld()
	cam := &Camera{Position: geom.V(32, 0), Shake: geom.Pt(1, -1)}
	e := w.CreateEntity(geom.Pt(40, 8))
	tm := ecs.Attach(e, component.NewTilemap(8, 8, 1, 1))
	tm.SetCell(0, 0, render.Image{Sheet: "castle", Source: geom.R(0, 0, 8, 8), Tint: render.White})
	ecs.Attach(e, spatial.NewRect(geom.R(0, 0, 8, 8)))

	rec := render.NewRecorder()
	s := NewRenderSystem(rec, w, cam)
	s.Background = render.Hex(0x150e22)
	s.Update(0)

	require.Len(t, rec.Ops, 2)
	assert.Equal(t, render.OpClear, rec.Ops[0].Kind)
	assert.Equal(t, render.Hex(0x150e22), rec.Ops[0].Color)
	assert.Equal(t, geom.Pt(9, 7), rec.Ops[1].Pos)
	assert.Equal(t, 1, rec.Frames)

	s.ShowColliders = true
	s.Update(0)
	require.Len(t, rec.Ops, 3)
	assert.Equal(t, render.OpHollowRect, rec.Ops[2].Kind)
	assert.Equal(t, geom.R(9, 7, 8, 8), rec.Ops[2].Rect)
}

func TestRoomSystem(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, geom.Pt(0, 0), r.cam.Room)
	// floor + hero
	assert.Equal(t, 2, r.world.EntityCount())

	err := r.rooms.Load(RoomRequest{Cell: geom.Pt(7, 7)})
	assert.True(t, errors.Is(err, ErrNoRoom))

	r.rooms.Request(RoomRequest{Cell: geom.Pt(1, 0)})
	r.rooms.Request(RoomRequest{Cell: geom.Pt(0, 0), Clear: true})
	assert.True(t, r.rooms.Pending())
	r.rooms.Update(0)
	assert.False(t, r.rooms.Pending())
	assert.Equal(t, geom.Pt(0, 0), r.cam.Room, "later request wins")
	assert.Equal(t, 2, r.world.EntityCount())

	require.NoError(t, r.rooms.Load(RoomRequest{Cell: geom.Pt(1, 0), Clear: true}))
	assert.Equal(t, geom.V(32, 0), r.cam.Position, "camera moved onto the room")
	assert.Equal(t, 1, r.world.EntityCount(), "hero only spawns in the start room")
}

func TestTransitionToNextRoom(t *testing.T) {
	r := newRig(t)
	hero := r.hero(t)
	assert.Equal(t, geom.Pt(12, 16), hero.Position)

	hero.Position.X = 32
	r.frame()

	assert.True(t, r.cam.Transitioning())
	assert.True(t, r.clock.Paused())
	assert.Equal(t, geom.Pt(1, 0), r.cam.Room, "next room built at end of frame")
	// two floors and the hero, which is unique and not spawned again
	assert.Equal(t, 3, r.world.EntityCount())

	for i := 0; i < 20 && r.cam.Transitioning(); i++ {
		r.frame()
	}
	require.False(t, r.cam.Transitioning())

	assert.Equal(t, geom.V(32, 0), r.cam.Position)
	assert.Equal(t, 2, r.world.EntityCount(), "old floor destroyed")
	assert.True(t, hero.Alive())
	assert.Equal(t, geom.Pt(-32, 0), r.cam.Offset())
}

func TestTransitionMidwayEases(t *testing.T) {
	r := newRig(t)
	r.hero(t).Position.X = 40
	r.frame() // starts, clock paused
	r.frame() // pause consumed
	r.frame() // ease 0.25
	r.frame() // ease 0.5

	require.True(t, r.cam.Transitioning())
	assert.InDelta(t, 16.0, r.cam.Position.X, 1e-9)
}

func TestClimbBoost(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.rooms.Load(RoomRequest{Cell: geom.Pt(1, 0)}))
	hero := r.hero(t)
	hero.Position = geom.Pt(40, -1)

	for i := 0; i < 20; i++ {
		r.frame()
		if !r.cam.Transitioning() && r.cam.Room == geom.Pt(1, -1) {
			break
		}
	}
	assert.Equal(t, geom.Pt(1, -1), r.cam.Room)
	m, ok := ecs.Get(hero, spatial.MoverKind)
	require.True(t, ok)
	assert.Equal(t, geom.V(0, ClimbBoost), m.Speed)
}

func TestNoRoomBehindClampsFocus(t *testing.T) {
	r := newRig(t)
	hero := r.hero(t)

	hero.Position = geom.Pt(-5, 10)
	r.frame()
	assert.False(t, r.cam.Transitioning())
	assert.Equal(t, geom.Pt(0, 10), hero.Position)

	// falling below the room: clamped, not yet reloaded
	hero.Position = geom.Pt(12, 24+FallReload)
	r.frame()
	assert.Same(t, hero, r.hero(t))
	assert.Equal(t, 24+FallReload, hero.Position.Y)
}

func TestFallingOutReloads(t *testing.T) {
	r := newRig(t)
	hero := r.hero(t)

	hero.Position = geom.Pt(12, 24+FallClamp+50)
	r.frame()

	assert.False(t, hero.Alive(), "world cleared")
	reborn := r.hero(t)
	assert.Equal(t, geom.Pt(12, 0), reborn.Position, "reload offset applied")
	assert.Equal(t, 2, r.world.EntityCount())
}

func TestShake(t *testing.T) {
	r := newRig(t)
	event.Emit(r.bus, event.ShakeRequested{Duration: 0.2})
	NewEventSystem(r.bus).Update(0)

	r.clock.Step(50 * time.Millisecond)
	r.camera.Update(0)
	s := r.cam.Shake
	assert.Contains(t, []int{-1, 1}, s.X)
	assert.Contains(t, []int{-1, 1}, s.Y)

	for i := 0; i < 5; i++ {
		r.clock.Step(50 * time.Millisecond)
		r.camera.Update(0)
	}
	assert.Equal(t, geom.Point{}, r.cam.Shake)
}
