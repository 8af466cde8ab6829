package system

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/core/event"
	coresys "github.com/pondhero/platformer/internal/core/system"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/level"
)

var ErrNoRoom = errors.New("system: no room at cell")

// RoomRequest asks for a room to be built.
type RoomRequest struct {
	Cell geom.Point
	// Clear empties the world first, cancels any transition and moves the
	// camera onto the room.
	Clear bool
	// Reload spawns prefabs at their reload offset.
	Reload bool
}

// RoomSystem applies room loads requested during the frame once every
// other system has run, so no update ever sees a half-built room.
// Phase 5 (Cleanup).
type RoomSystem struct {
	world   *ecs.World
	builder *level.Builder
	cam     *Camera
	bus     *event.Bus
	log     *zap.Logger

	pending *RoomRequest
}

func NewRoomSystem(w *ecs.World, b *level.Builder, cam *Camera, bus *event.Bus, log *zap.Logger) *RoomSystem {
	return &RoomSystem{world: w, builder: b, cam: cam, bus: bus, log: log}
}

func (s *RoomSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

// Request queues a load for the end of the frame. A later request in the
// same frame replaces an earlier one.
func (s *RoomSystem) Request(r RoomRequest) {
	s.pending = &r
}

// Pending reports whether a load is queued.
func (s *RoomSystem) Pending() bool { return s.pending != nil }

func (s *RoomSystem) Update(_ time.Duration) {
	if s.pending == nil {
		return
	}
	r := *s.pending
	s.pending = nil
	if err := s.Load(r); err != nil {
		s.log.Error("room load failed",
			zap.Int("cell_x", r.Cell.X),
			zap.Int("cell_y", r.Cell.Y),
			zap.Error(err),
		)
	}
}

// Load builds the requested room now. Spawn failures are reported after
// the rest of the room has been built.
func (s *RoomSystem) Load(r RoomRequest) error {
	room := s.builder.Room(r.Cell)
	if room == nil {
		return fmt.Errorf("%w %d,%d", ErrNoRoom, r.Cell.X, r.Cell.Y)
	}
	if r.Clear {
		s.world.Clear()
		s.cam.transition = nil
		o := s.builder.Origin(r.Cell)
		s.cam.Position = geom.V(float64(o.X), float64(o.Y))
		if s.bus != nil {
			s.bus.Reset()
		}
	}
	s.cam.Room = r.Cell
	_, err := s.builder.Load(s.world, room, r.Reload)
	return err
}
