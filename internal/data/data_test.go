package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/render"
	"github.com/pondhero/platformer/internal/spatial"
)

const spritesYAML = `
sprites:
  - name: player
    origin: [4, 12]
    color: "#6abe30"
    animations:
      - name: idle
        frames:
          - { source: [0, 0, 8, 12], duration: 0.5 }
      - name: run
        frames:
          - { source: [8, 0, 8, 12], duration: 0.1 }
          - { source: [16, 0, 8, 12], duration: 0.1, color: "#ffffff" }
  - name: bramble
    sheet: hazards
    animations:
      - name: idle
        frames:
          - { source: [0, 0, 8, 8], duration: 1 }
`

const tilesetsYAML = `
tile_size: 8
tilesets:
  - name: castle
    color: "#ffffff"
    tiles: [[0, 0], [8, 0], [16, 0]]
  - name: jumpthru
    sheet: props
    tiles: [[0, 8]]
`

const prefabsYAML = `
prefabs:
  - name: player
    sprite: player
    animation: idle
    depth: -10
    hitbox: [-4, -12, 8, 12]
    mask: player
    reload_offset: [0, -16]
    focus: true
    unique: true
    script: player
    mover: { gravity: 450, friction: 800, collide: true }
    hurtable: { hurt_by: "enemy|hazard" }
  - name: bramble
    sprite: bramble
    hitbox: [-4, -8, 8, 8]
    mask: hazard
  - name: spark
    lifetime: 0.25
    mover: { speed: [120, 0] }
`

const roomsYAML = `
columns: 4
rows: 3
legend:
  "#": { tileset: castle, solid: true }
  "-": { tileset: jumpthru, jumpthrough: true }
  "@": { prefab: player }
rooms:
  - cell: [0, 0]
    rows:
      - "...."
      - ".@b."
      - "#-##"
    legend:
      "b": { prefab: bramble }
  - name: east
    cell: [1, 0]
    rows:
      - "...."
      - "...."
      - "####"
`

func writeContent(t *testing.T, files map[string]string) Paths {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return Paths{
		Sprites:  filepath.Join(dir, "sprites.yaml"),
		Tilesets: filepath.Join(dir, "tilesets.yaml"),
		Prefabs:  filepath.Join(dir, "prefabs.yaml"),
		Rooms:    filepath.Join(dir, "rooms.yaml"),
	}
}

func allContent() map[string]string {
	return map[string]string{
		"sprites.yaml":  spritesYAML,
		"tilesets.yaml": tilesetsYAML,
		"prefabs.yaml":  prefabsYAML,
		"rooms.yaml":    roomsYAML,
	}
}

func TestLoadContent(t *testing.T) {
	c, err := Load(writeContent(t, allContent()))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Sprites.Count())
	assert.Equal(t, 2, c.Tilesets.Count())
	assert.Equal(t, 3, c.Prefabs.Count())
	assert.Equal(t, 2, c.Rooms.Count())
}

func TestSprites(t *testing.T) {
	st, err := ParseSpriteTable([]byte(spritesYAML))
	require.NoError(t, err)

	p := st.Get("player")
	require.NotNil(t, p)
	assert.Equal(t, geom.Pt(4, 12), p.Origin)
	assert.Equal(t, 1, p.Animation("run"))
	assert.Equal(t, -1, p.Animation("fly"))

	run := p.Animations[1]
	assert.InDelta(t, 0.2, run.Duration(), 1e-12)
	assert.Equal(t, render.Image{Sheet: "player", Source: geom.R(8, 0, 8, 12), Tint: render.Hex(0x6abe30)}, run.Frames[0].Image)
	assert.Equal(t, render.White, run.Frames[1].Image.Tint)

	b := st.Get("bramble")
	assert.Equal(t, "hazards", b.Animations[0].Frames[0].Image.Sheet)
	assert.Equal(t, render.White, b.Animations[0].Frames[0].Image.Tint, "untinted defaults to white")
	assert.Nil(t, st.Get("nobody"))
}

func TestSpriteErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no name", "sprites: [{animations: []}]"},
		{"duplicate", "sprites: [{name: a}, {name: a}]"},
		{"no frames", "sprites: [{name: a, animations: [{name: idle, frames: []}]}]"},
		{"zero duration", "sprites: [{name: a, animations: [{name: idle, frames: [{source: [0,0,1,1]}]}]}]"},
		{"bad rect", "sprites: [{name: a, animations: [{name: idle, frames: [{source: [0,0,1], duration: 1}]}]}]"},
		{"bad color", "sprites: [{name: a, color: red}]"},
		{"bad origin", "sprites: [{name: a, origin: [1]}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpriteTable([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestTilesetTileAtIsStable(t *testing.T) {
	tt, err := ParseTilesetTable([]byte(tilesetsYAML))
	require.NoError(t, err)
	assert.Equal(t, 8, tt.TileSize)

	castle := tt.Get("castle")
	require.Len(t, castle.Tiles, 3)
	assert.Equal(t, geom.R(16, 0, 8, 8), castle.Tiles[2].Source)

	seen := map[geom.Rect]bool{}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img := castle.TileAt(1, x, y)
			assert.Equal(t, img, castle.TileAt(1, x, y))
			seen[img.Source] = true
		}
	}
	assert.Len(t, seen, 3, "all variants used over a 8x8 area")

	jt := tt.Get("jumpthru")
	assert.Equal(t, "props", jt.TileAt(0, 5, 5).Sheet)
	assert.True(t, (&Tileset{}).TileAt(0, 0, 0).Empty())
}

func TestTilesetErrors(t *testing.T) {
	_, err := ParseTilesetTable([]byte("tilesets: [{name: a, tiles: [[0,0]]}]"))
	assert.ErrorContains(t, err, "tile_size")
	_, err = ParseTilesetTable([]byte("tile_size: 8\ntilesets: [{name: a}]"))
	assert.ErrorContains(t, err, "no tiles")
}

func TestPrefabs(t *testing.T) {
	pt, err := ParsePrefabTable([]byte(prefabsYAML))
	require.NoError(t, err)

	p := pt.Get("player")
	require.NotNil(t, p)
	assert.Equal(t, -10, p.Depth)
	assert.Equal(t, spatial.Player, p.Mask)
	assert.Equal(t, geom.R(-4, -12, 8, 12), *p.Hitbox)
	assert.Equal(t, geom.Pt(0, -16), p.ReloadOffset)
	assert.True(t, p.Focus)
	assert.True(t, p.Unique)
	require.NotNil(t, p.Mover)
	assert.Equal(t, MoverDef{Gravity: 450, Friction: 800, Collide: true}, *p.Mover)
	require.NotNil(t, p.Hurtable)
	assert.Equal(t, spatial.Enemy|spatial.Hazard, p.Hurtable.HurtBy)

	spark := pt.Get("spark")
	assert.Equal(t, geom.V(120, 0), spark.Mover.Speed)
	assert.Nil(t, spark.Hitbox)
	assert.Equal(t, 0.25, spark.Lifetime)
}

func TestPrefabErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"mask", "prefabs: [{name: a, mask: lava}]", "unknown mask"},
		{"collide without hitbox", "prefabs: [{name: a, mover: {collide: true}}]", "needs a hitbox"},
		{"hurtable without hitbox", "prefabs: [{name: a, hurtable: {hurt_by: enemy}}]", "needs a hitbox"},
		{"speed", "prefabs: [{name: a, mover: {speed: [1]}}]", "speed"},
		{"duplicate", "prefabs: [{name: a}, {name: a}]", "twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrefabTable([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRooms(t *testing.T) {
	rt, err := ParseRoomTable([]byte(roomsYAML))
	require.NoError(t, err)
	assert.Equal(t, 4, rt.Columns)
	assert.Equal(t, 3, rt.Rows)

	r := rt.Get(geom.Pt(0, 0))
	require.NotNil(t, r)
	assert.Equal(t, "0x0", r.Name)

	c, ok := r.At(1, 1)
	require.True(t, ok)
	assert.Equal(t, "player", c.Prefab)
	c, ok = r.At(2, 1)
	require.True(t, ok)
	assert.Equal(t, "bramble", c.Prefab, "room legend extends the shared one")
	c, ok = r.At(1, 2)
	require.True(t, ok)
	assert.True(t, c.JumpThrough)
	_, ok = r.At(0, 0)
	assert.False(t, ok)

	assert.Same(t, rt.Get(geom.Pt(1, 0)), rt.Named("east"))
	assert.Nil(t, rt.Get(geom.Pt(5, 5)))
	assert.Nil(t, rt.Named("west"))

	_, ok = rt.Named("east").Legend['b']
	assert.False(t, ok, "room legends stay local")
}

func TestRoomErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"size", "rooms: []", "positive"},
		{"row count", "columns: 2\nrows: 2\nrooms: [{cell: [0,0], rows: [\"..\"]}]", "rows, want"},
		{"row width", "columns: 2\nrows: 1\nrooms: [{cell: [0,0], rows: [\"...\"]}]", "columns, want"},
		{"legend", "columns: 2\nrows: 1\nrooms: [{cell: [0,0], rows: [\".x\"]}]", "not in legend"},
		{"cell twice", "columns: 1\nrows: 1\nrooms: [{cell: [0,0], rows: [\".\"]}, {cell: [0,0], rows: [\".\"]}]", "used twice"},
		{"legend key", "columns: 1\nrows: 1\nlegend: {ab: {solid: true}}\nrooms: []", "single character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoomTable([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestValidateReportsDanglingReferences(t *testing.T) {
	files := allContent()
	files["prefabs.yaml"] = `
prefabs:
  - { name: player, sprite: ghost }
  - { name: bramble, sprite: bramble, animation: dance }
`
	_, err := Load(writeContent(t, files))
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown sprite "ghost"`)
	assert.ErrorContains(t, err, `no animation "dance"`)
}

func TestLoadMissingFile(t *testing.T) {
	files := allContent()
	delete(files, "rooms.yaml")
	_, err := Load(writeContent(t, files))
	assert.ErrorContains(t, err, "read rooms")
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor(" #150e22")
	require.NoError(t, err)
	assert.Equal(t, render.Hex(0x150e22), c)

	_, err = ParseColor("#fff")
	assert.Error(t, err)
	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}
