package level

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pondhero/platformer/internal/component"
	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/core/event"
	"github.com/pondhero/platformer/internal/data"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/scripting"
	"github.com/pondhero/platformer/internal/spatial"
)

const testSprites = `
sprites:
  - name: frog
    origin: [4, 12]
    animations:
      - name: idle
        frames:
          - { source: [0, 0, 8, 12], duration: 0.5 }
`

const testTilesets = `
tile_size: 8
tilesets:
  - name: castle
    tiles: [[0, 0], [8, 0], [16, 0]]
  - name: jumpthru
    tiles: [[0, 8]]
`

const testPrefabs = `
prefabs:
  - name: player
    sprite: frog
    animation: idle
    depth: -10
    hitbox: [-4, -12, 8, 12]
    mask: player
    reload_offset: [0, -16]
    focus: true
    unique: true
    script: player
    mover: { gravity: 450, collide: true }
    hurtable: { hurt_by: "enemy|hazard" }
  - name: bramble
    hitbox: [-4, -8, 8, 8]
    mask: hazard
  - name: spark
    lifetime: 0.25
    mover: { speed: [120, 0] }
  - name: ghost
    script: missing
`

const testRooms = `
columns: 4
rows: 3
legend:
  "#": { tileset: castle, solid: true }
  "-": { tileset: jumpthru, jumpthrough: true }
  "@": { prefab: player }
  "b": { prefab: bramble }
rooms:
  - name: start
    cell: [0, 0]
    rows:
      - "...."
      - ".@b."
      - "#-##"
  - name: east
    cell: [1, 0]
    rows:
      - "...."
      - "...."
      - "####"
`

func testContent(t *testing.T) *data.Content {
	t.Helper()
	var (
		c   data.Content
		err error
	)
	c.Sprites, err = data.ParseSpriteTable([]byte(testSprites))
	require.NoError(t, err)
	c.Tilesets, err = data.ParseTilesetTable([]byte(testTilesets))
	require.NoError(t, err)
	c.Prefabs, err = data.ParsePrefabTable([]byte(testPrefabs))
	require.NoError(t, err)
	c.Rooms, err = data.ParseRoomTable([]byte(testRooms))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	return &c
}

func testScripts(t *testing.T) *scripting.Engine {
	t.Helper()
	dir := t.TempDir()
	src := `behaviour("player", { awake = function(self) self.state.awake = true end })`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "player.lua"), []byte(src), 0o644))
	e, err := scripting.NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func newBuilder(t *testing.T, opts ...Option) *Builder {
	return NewBuilder(testContent(t), append([]Option{WithScripts(testScripts(t))}, opts...)...)
}

func TestRoomGeometry(t *testing.T) {
	b := newBuilder(t)

	assert.Equal(t, 8, b.TileSize())
	assert.Equal(t, geom.Pt(32, 24), b.RoomSize())
	assert.Equal(t, geom.Pt(32, 0), b.Origin(geom.Pt(1, 0)))
	assert.Equal(t, geom.R(-32, 24, 32, 24), b.Bounds(geom.Pt(-1, 1)))
	assert.Equal(t, geom.Pt(-1, 0), b.CellAt(geom.Pt(-1, 0)))
	assert.Equal(t, geom.Pt(1, 1), b.CellAt(geom.Pt(32, 24)))
	assert.Equal(t, "east", b.Room(geom.Pt(1, 0)).Name)
	assert.Nil(t, b.Room(geom.Pt(5, 5)))
}

func TestLoadRoom(t *testing.T) {
	bus := event.NewBus()
	b := newBuilder(t, WithBus(bus))
	w := ecs.NewWorld()

	floor, err := b.Load(w, b.Room(geom.Pt(0, 0)), false)
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(0, 0), floor.Position)

	solids, ok := ecs.Get(floor, spatial.ColliderKind)
	require.True(t, ok)
	assert.Equal(t, spatial.Solid, solids.Mask)
	for x, want := range []bool{true, false, true, true} {
		assert.Equal(t, want, solids.Cell(x, 2), "solid cell %d", x)
	}
	assert.False(t, solids.Cell(0, 0))

	tm, ok := ecs.Get(floor, component.TilemapKind)
	require.True(t, ok)
	assert.Equal(t, "castle", tm.Cell(0, 2).Sheet)
	assert.Equal(t, "jumpthru", tm.Cell(1, 2).Sheet)
	assert.True(t, tm.Cell(0, 0).Empty())

	jt, ok := ecs.Find(w, spatial.ColliderKind, func(c *spatial.Collider) bool { return c.Mask == spatial.JumpThrough })
	require.True(t, ok)
	assert.Equal(t, geom.R(8, 16, 8, JumpThroughHeight), jt.Bounds())

	player, ok := component.Tagged(w, "player")
	require.True(t, ok)
	assert.Equal(t, geom.Pt(12, 16), player.Position)

	bramble, ok := component.Tagged(w, "bramble")
	require.True(t, ok)
	assert.Equal(t, geom.Pt(20, 16), bramble.Position)

	// floor, jump-through, player, bramble
	assert.Equal(t, 4, w.EntityCount())
	assert.Equal(t, 1, bus.Pending())

	var loaded []event.RoomLoaded
	event.Subscribe(bus, func(ev event.RoomLoaded) { loaded = append(loaded, ev) })
	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []event.RoomLoaded{{Name: "start", Cell: geom.Pt(0, 0)}}, loaded)
}

func TestReloadOffsetAndUnique(t *testing.T) {
	b := newBuilder(t)
	w := ecs.NewWorld()
	room := b.Room(geom.Pt(0, 0))

	_, err := b.Load(w, room, true)
	require.NoError(t, err)
	player, ok := component.Tagged(w, "player")
	require.True(t, ok)
	assert.Equal(t, geom.Pt(12, 0), player.Position)

	_, err = b.Load(w, room, false)
	require.NoError(t, err)
	n := 0
	ecs.Each(w, component.TagKind, func(tag *component.Tag) {
		if tag.Name == "player" {
			n++
		}
	})
	assert.Equal(t, 1, n, "unique prefab spawned once")
	assert.Equal(t, 1, w.ComponentCount(component.FocusKind.ID()))
}

func TestSpawnComposesPrefab(t *testing.T) {
	bus := event.NewBus()
	b := newBuilder(t, WithBus(bus))
	w := ecs.NewWorld()

	e, err := b.Spawn(w, "player", geom.Pt(40, 40))
	require.NoError(t, err)

	_, ok := ecs.Get(e, component.FocusKind)
	assert.True(t, ok)

	anim, ok := ecs.Get(e, component.AnimatorKind)
	require.True(t, ok)
	assert.Equal(t, -10, anim.Depth)
	assert.Equal(t, "idle", anim.Animation().Name)

	hitbox, ok := ecs.Get(e, spatial.ColliderKind)
	require.True(t, ok)
	assert.Equal(t, spatial.Player, hitbox.Mask)
	assert.Equal(t, geom.R(36, 28, 8, 12), hitbox.Bounds())

	mover, ok := ecs.Get(e, spatial.MoverKind)
	require.True(t, ok)
	assert.Same(t, hitbox, mover.Collider)
	assert.Equal(t, 450.0, mover.Gravity)

	hurt, ok := ecs.Get(e, component.HurtableKind)
	require.True(t, ok)
	assert.Same(t, hitbox, hurt.Collider)
	assert.Same(t, bus, hurt.Bus)
	assert.Equal(t, spatial.Enemy|spatial.Hazard, hurt.HurtBy)

	bh, ok := ecs.Get(e, scripting.BehaviourKind)
	require.True(t, ok)
	assert.Same(t, mover, bh.Mover)
	assert.Same(t, anim, bh.Animator)
	assert.Equal(t, "true", bh.State().RawGetString("awake").String())
}

func TestSpawnLifetime(t *testing.T) {
	b := newBuilder(t)
	w := ecs.NewWorld()

	e, err := b.Spawn(w, "spark", geom.Pt(0, 0))
	require.NoError(t, err)

	ck := clock.Fixed(0.125)
	w.Update(ck)
	assert.True(t, e.Alive())
	assert.Equal(t, 15, e.Position.X)
	w.Update(ck)
	assert.False(t, e.Alive())
}

func TestSpawnErrors(t *testing.T) {
	b := newBuilder(t)
	w := ecs.NewWorld()

	_, err := b.Spawn(w, "dragon", geom.Point{})
	assert.True(t, errors.Is(err, ErrUnknownPrefab))

	_, err = b.Spawn(w, "ghost", geom.Point{})
	assert.True(t, errors.Is(err, scripting.ErrUnknownBehaviour))

	bare := NewBuilder(testContent(t))
	_, err = bare.Spawn(w, "player", geom.Point{})
	assert.True(t, errors.Is(err, ErrNoScripts))

	assert.Equal(t, 0, w.EntityCount(), "failed spawns leave nothing behind")
}
