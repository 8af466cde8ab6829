// Package level turns content tables into entities: rooms into floor,
// jump-through and prefab entities, prefabs into composed entities.
package level

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pondhero/platformer/internal/component"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/core/event"
	"github.com/pondhero/platformer/internal/data"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/scripting"
	"github.com/pondhero/platformer/internal/spatial"
)

// JumpThroughHeight is the height of the one-way platform collider placed
// at the top of each jump-through cell.
const JumpThroughHeight = 4

var (
	ErrUnknownPrefab = errors.New("level: unknown prefab")
	ErrNoScripts     = errors.New("level: prefab needs scripts but none are loaded")
)

// Builder spawns rooms and prefabs into a world.
type Builder struct {
	content *data.Content
	scripts *scripting.Engine
	bus     *event.Bus
	log     *zap.Logger
	seed    uint32
}

// Option configures a Builder.
type Option func(*Builder)

// WithScripts enables prefabs that name a Lua behaviour.
func WithScripts(e *scripting.Engine) Option {
	return func(b *Builder) { b.scripts = e }
}

// WithBus makes hurtables report hits and rooms report loads on bus.
func WithBus(bus *event.Bus) Option {
	return func(b *Builder) { b.bus = bus }
}

func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// WithSeed varies which tile of a tileset each cell shows.
func WithSeed(seed uint32) Option {
	return func(b *Builder) { b.seed = seed }
}

func NewBuilder(content *data.Content, opts ...Option) *Builder {
	b := &Builder{content: content, log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TileSize returns the edge of a tile in pixels.
func (b *Builder) TileSize() int { return b.content.Tilesets.TileSize }

// RoomSize returns the pixel size of every room.
func (b *Builder) RoomSize() geom.Point {
	ts := b.TileSize()
	return geom.Pt(b.content.Rooms.Columns*ts, b.content.Rooms.Rows*ts)
}

// Origin returns the world position of the top-left pixel of room cell.
func (b *Builder) Origin(cell geom.Point) geom.Point {
	size := b.RoomSize()
	return geom.Pt(cell.X*size.X, cell.Y*size.Y)
}

// Bounds returns the world rectangle covered by room cell.
func (b *Builder) Bounds(cell geom.Point) geom.Rect {
	o, size := b.Origin(cell), b.RoomSize()
	return geom.R(o.X, o.Y, size.X, size.Y)
}

// CellAt returns the room cell containing world position p.
func (b *Builder) CellAt(p geom.Point) geom.Point {
	size := b.RoomSize()
	return geom.Pt(geom.FloorDiv(p.X, size.X), geom.FloorDiv(p.Y, size.Y))
}

// Room returns the room at cell, or nil.
func (b *Builder) Room(cell geom.Point) *data.Room { return b.content.Rooms.Get(cell) }

// Load builds room into w: one floor entity carrying the tilemap and the
// solid grid, a jump-through collider per jump-through cell and a spawn per
// prefab cell. A reload applies each prefab's ReloadOffset. The floor
// entity is returned.
func (b *Builder) Load(w *ecs.World, room *data.Room, reload bool) (*ecs.Entity, error) {
	ts := b.TileSize()
	cols, rows := b.content.Rooms.Columns, b.content.Rooms.Rows
	origin := b.Origin(room.Cell)

	floor := w.CreateEntity(origin)
	tilemap := ecs.Attach(floor, component.NewTilemap(ts, ts, cols, rows))
	solids := ecs.Attach(floor, spatial.NewGrid(ts, cols, rows))
	solids.Mask = spatial.Solid

	var errs []error
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			cell, ok := room.At(x, y)
			if !ok {
				continue
			}
			tile := origin.Add(geom.Pt(x*ts, y*ts))

			if cell.Tileset != "" {
				tilemap.SetCell(x, y, b.content.Tilesets.Get(cell.Tileset).TileAt(b.seed, x, y))
			}
			if cell.Solid {
				solids.SetCell(x, y, true)
			}
			if cell.JumpThrough {
				jt := ecs.Attach(w.CreateEntity(tile), spatial.NewRect(geom.R(0, 0, ts, JumpThroughHeight)))
				jt.Mask = spatial.JumpThrough
			}
			if cell.Prefab != "" {
				// prefabs stand bottom-center on their cell
				pos := tile.Add(geom.Pt(ts/2, ts))
				if _, err := b.spawn(w, cell.Prefab, pos, reload); err != nil {
					errs = append(errs, fmt.Errorf("room %q cell %d,%d: %w", room.Name, x, y, err))
				}
			}
		}
	}

	if b.bus != nil {
		event.Emit(b.bus, event.RoomLoaded{Name: room.Name, Cell: room.Cell})
	}
	b.log.Debug("room loaded",
		zap.String("room", room.Name),
		zap.Int("cell_x", room.Cell.X),
		zap.Int("cell_y", room.Cell.Y),
		zap.Bool("reload", reload),
		zap.Int("entities", w.EntityCount()),
	)
	return floor, errors.Join(errs...)
}

// Spawn creates an entity from the named prefab at pos. A unique prefab
// that is already alive is not spawned again; the live entity is returned.
func (b *Builder) Spawn(w *ecs.World, prefab string, pos geom.Point) (*ecs.Entity, error) {
	return b.spawn(w, prefab, pos, false)
}

func (b *Builder) spawn(w *ecs.World, name string, pos geom.Point, reload bool) (*ecs.Entity, error) {
	p := b.content.Prefabs.Get(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrefab, name)
	}
	if p.Unique {
		if e, ok := component.Tagged(w, p.Name); ok {
			return e, nil
		}
	}
	if p.Script != "" {
		if b.scripts == nil {
			return nil, fmt.Errorf("%w: %q", ErrNoScripts, p.Name)
		}
		if !b.scripts.Has(p.Script) {
			return nil, fmt.Errorf("prefab %q: %w: %q", p.Name, scripting.ErrUnknownBehaviour, p.Script)
		}
	}

	pos = pos.Add(p.Offset)
	if reload {
		pos = pos.Add(p.ReloadOffset)
	}
	e := w.CreateEntity(pos)
	ecs.Attach(e, component.NewTag(p.Name))
	if p.Focus {
		ecs.Attach(e, component.NewFocus())
	}

	var anim *component.Animator
	if p.Sprite != "" {
		anim = component.NewAnimator(b.content.Sprites.Get(p.Sprite))
		anim.Depth = p.Depth
		ecs.Attach(e, anim)
		if p.Animation != "" {
			anim.Play(p.Animation, true)
		}
	}

	var hitbox *spatial.Collider
	if p.Hitbox != nil {
		hitbox = spatial.NewRect(*p.Hitbox)
		hitbox.Mask = p.Mask
		ecs.Attach(e, hitbox)
	}

	var mover *spatial.Mover
	if p.Mover != nil {
		mover = &spatial.Mover{
			Speed:    p.Mover.Speed,
			Gravity:  p.Mover.Gravity,
			Friction: p.Mover.Friction,
		}
		if p.Mover.Collide {
			mover.Collider = hitbox
		}
		ecs.Attach(e, mover)
	}

	var hurtable *component.Hurtable
	if p.Hurtable != nil {
		hurtable = ecs.Attach(e, &component.Hurtable{
			Collider: hitbox,
			HurtBy:   p.Hurtable.HurtBy,
			Bus:      b.bus,
		})
	}

	if p.Script != "" {
		bh, err := b.scripts.New(p.Script)
		if err != nil {
			e.Destroy()
			return nil, err
		}
		bh.Mover = mover
		bh.Collider = hitbox
		bh.Animator = anim
		bh.Hurtable = hurtable
		ecs.Attach(e, bh)
	}

	// awake may already have destroyed it
	if p.Lifetime > 0 && e.Alive() {
		component.DestroyAfter(e, p.Lifetime)
	}
	return e, nil
}
