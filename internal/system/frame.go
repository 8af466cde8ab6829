package system

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/core/event"
	coresys "github.com/pondhero/platformer/internal/core/system"
	"github.com/pondhero/platformer/internal/input"
	"github.com/pondhero/platformer/internal/render"
	"github.com/pondhero/platformer/internal/render/term"
	"github.com/pondhero/platformer/internal/spatial"
)

// InputSystem drains pending terminal events into the action state and
// hands driver commands to OnCommand. Phase 0 (Input).
type InputSystem struct {
	events    <-chan tcell.Event
	state     *input.State
	onCommand func(term.Command)
}

// NewInputSystem reads events until the channel closes. A nil channel
// (headless) only advances the hold windows.
func NewInputSystem(events <-chan tcell.Event, st *input.State, onCommand func(term.Command)) *InputSystem {
	return &InputSystem{events: events, state: st, onCommand: onCommand}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(dt time.Duration) {
drain:
	for s.events != nil {
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.events = nil
				break drain
			}
			if cmd := term.Translate(ev, s.state); cmd != term.CmdNone && s.onCommand != nil {
				s.onCommand(cmd)
			}
		default:
			break drain
		}
	}
	s.state.Step(dt.Seconds())
}

// EventSystem delivers the events emitted during the previous frame.
// Phase 1 (PreUpdate).
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// WorldSystem steps the frame clock and updates the world. The world is
// frozen while the camera slides between rooms. Phase 2 (Update).
type WorldSystem struct {
	world *ecs.World
	clock *clock.Time
	cam   *Camera
}

func NewWorldSystem(w *ecs.World, ck *clock.Time, cam *Camera) *WorldSystem {
	return &WorldSystem{world: w, clock: ck, cam: cam}
}

func (s *WorldSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *WorldSystem) Update(dt time.Duration) {
	s.clock.Step(dt)
	if !s.cam.Transitioning() {
		s.world.Update(s.clock)
	}
}

// Presenter is a Surface that buffers draws until Show.
type Presenter interface {
	Show()
}

// RenderSystem draws the world through the camera, then the collider
// overlay when enabled. Phase 4 (Output).
type RenderSystem struct {
	surface render.Surface
	world   *ecs.World
	cam     *Camera

	Background    render.Color
	ShowColliders bool
}

func NewRenderSystem(s render.Surface, w *ecs.World, cam *Camera) *RenderSystem {
	return &RenderSystem{surface: s, world: w, cam: cam, Background: render.Black}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *RenderSystem) Update(_ time.Duration) {
	s.surface.Clear(s.Background)

	s.surface.PushOffset(s.cam.Offset())
	s.world.Render(s.surface)
	if s.ShowColliders {
		ecs.Each(s.world, spatial.ColliderKind, func(c *spatial.Collider) {
			c.Render(s.surface)
		})
	}
	s.surface.PopOffset()

	if p, ok := s.surface.(Presenter); ok {
		p.Show()
	}
}
