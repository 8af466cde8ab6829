package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/pondhero/platformer/internal/component"
	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/core/event"
	coresys "github.com/pondhero/platformer/internal/core/system"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/level"
	"github.com/pondhero/platformer/internal/spatial"
)

const (
	TransitionDuration = 0.4
	TransitionPause    = 0.1
	ShakeInterval      = 0.05
	// FallReload is how far below the room the focus may fall before the
	// room is reloaded; FallClamp bounds it until then.
	FallReload = 64
	FallClamp  = 100
	// ClimbBoost is the upward speed given to the focus after entering the
	// room above, so it clears the ledge.
	ClimbBoost = -150
)

// Camera is the view shared by the frame systems. Position is the world
// pixel shown at the top-left of the screen.
type Camera struct {
	Room     geom.Point
	Position geom.Vec
	Shake    geom.Point

	shakeTimer float64
	transition *transition
}

type transition struct {
	from, to geom.Point
	ease     float64
	// previous holds the entities of the room being left.
	previous []ecs.Ref
}

// Transitioning reports whether the camera is sliding between rooms.
func (c *Camera) Transitioning() bool { return c.transition != nil }

// Offset returns the translation applied to world draws.
func (c *Camera) Offset() geom.Point {
	return c.Position.Round().Neg().Add(c.Shake)
}

// ShakeFor shakes the view for seconds. The longest request wins.
func (c *Camera) ShakeFor(seconds float64) {
	if seconds > c.shakeTimer {
		c.shakeTimer = seconds
	}
}

// CameraSystem follows the Focus entity: it moves the camera to the next
// room when the focus walks off screen, keeps it inside rooms that have no
// neighbour and reloads the room when it falls out. Phase 3 (PostUpdate).
type CameraSystem struct {
	cam     *Camera
	world   *ecs.World
	clock   *clock.Time
	builder *level.Builder
	rooms   *RoomSystem
	log     *zap.Logger
}

// NewCameraSystem subscribes the camera to shake requests on bus.
func NewCameraSystem(cam *Camera, w *ecs.World, ck *clock.Time, b *level.Builder, rooms *RoomSystem, bus *event.Bus, log *zap.Logger) *CameraSystem {
	event.Subscribe(bus, func(ev event.ShakeRequested) { cam.ShakeFor(ev.Duration) })
	return &CameraSystem{cam: cam, world: w, clock: ck, builder: b, rooms: rooms, log: log}
}

func (s *CameraSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CameraSystem) Update(_ time.Duration) {
	if s.cam.transition != nil {
		s.slide()
		return
	}
	s.shake()

	focus, ok := ecs.First(s.world, component.FocusKind)
	if !ok {
		return
	}
	e := focus.Entity()
	bounds := s.builder.Bounds(s.cam.Room)
	if bounds.Contains(e.Position) {
		return
	}

	// rooms are only entered left to right, or straight up and down
	next := s.builder.CellAt(e.Position)
	if next.X >= s.cam.Room.X && s.builder.Room(next) != nil {
		s.clock.PauseFor(TransitionPause)
		t := &transition{from: s.cam.Room, to: next}
		s.world.EachEntity(func(it *ecs.Entity) { t.previous = append(t.previous, it.Ref()) })
		s.cam.transition = t
		s.rooms.Request(RoomRequest{Cell: next})
		s.log.Debug("room transition",
			zap.Int("from_x", t.from.X), zap.Int("from_y", t.from.Y),
			zap.Int("to_x", next.X), zap.Int("to_y", next.Y),
		)
		return
	}

	e.Position = geom.Pt(
		geom.Clamp(e.Position.X, bounds.X, bounds.Right()),
		geom.Clamp(e.Position.Y, bounds.Y, bounds.Bottom()+FallClamp),
	)
	if e.Position.Y > bounds.Bottom()+FallReload {
		s.rooms.Request(RoomRequest{Cell: s.cam.Room, Clear: true, Reload: true})
	}
}

func (s *CameraSystem) shake() {
	s.cam.shakeTimer -= s.clock.Delta
	if s.cam.shakeTimer <= 0 {
		s.cam.Shake = geom.Point{}
		return
	}
	if s.clock.OnInterval(ShakeInterval) {
		h := geom.Hash2(uint32(s.clock.Frame), 0, 0)
		s.cam.Shake = geom.Pt(int(h&1)*2-1, int(h>>1&1)*2-1)
	}
}

func (s *CameraSystem) slide() {
	t := s.cam.transition
	t.ease = geom.Approach(t.ease, 1, s.clock.Delta/TransitionDuration)

	from := s.builder.Origin(t.from)
	to := s.builder.Origin(t.to)
	s.cam.Position = geom.Lerp(
		geom.V(float64(from.X), float64(from.Y)),
		geom.V(float64(to.X), float64(to.Y)),
		geom.CubeInOut(t.ease),
	)
	if t.ease < 1 {
		return
	}

	var keep *ecs.Entity
	if focus, ok := ecs.First(s.world, component.FocusKind); ok {
		keep = focus.Entity()
		if t.to.Y < t.from.Y {
			if m, ok := ecs.Get(keep, spatial.MoverKind); ok {
				m.Speed = geom.V(0, ClimbBoost)
			}
		}
	}
	for _, ref := range t.previous {
		if e, ok := ref.Get(); ok && e != keep {
			e.Destroy()
		}
	}

	s.clock.PauseFor(TransitionPause)
	s.cam.transition = nil
}
