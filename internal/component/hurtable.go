package component

import (
	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/core/event"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/spatial"
)

var HurtableKind = ecs.RegisterKind[*Hurtable]("hurtable")

const (
	HurtPause     = 0.1
	HurtStun      = 0.5
	HurtFlicker   = 0.5
	flickerPeriod = 0.05
)

// Hurtable watches Collider for overlaps with anything in HurtBy. A hit
// freezes game time briefly, stuns the hurtable so it cannot be hit again
// right away and makes the entity flicker.
type Hurtable struct {
	ecs.Base

	Collider *spatial.Collider
	HurtBy   spatial.Mask
	OnHurt   func(*Hurtable)
	// Bus, when set, receives an event.Hurt per hit.
	Bus *event.Bus

	Stun    float64
	Flicker float64
}

func (*Hurtable) Kind() ecs.KindID { return HurtableKind.ID() }

// Hurt applies a hit as if the collider had been touched.
func (h *Hurtable) Hurt(t *clock.Time) {
	t.PauseFor(HurtPause)
	h.Stun = HurtStun
	h.Flicker = HurtFlicker

	e := h.Entity()
	if h.Bus != nil {
		event.Emit(h.Bus, event.Hurt{Entity: e.ID(), At: e.Position})
	}
	if h.OnHurt != nil {
		h.OnHurt(h)
	}
}

func (h *Hurtable) Update(t *clock.Time) {
	if h.Collider != nil && h.Stun <= 0 && (h.OnHurt != nil || h.Bus != nil) {
		if h.Collider.Check(h.HurtBy, geom.Point{}) {
			h.Hurt(t)
			// OnHurt may destroy the entity
			if h.Entity() == nil {
				return
			}
		}
	}

	h.Stun -= t.Delta

	if h.Flicker > 0 {
		h.Flicker -= t.Delta
		e := h.Entity()
		if t.OnInterval(flickerPeriod) {
			e.Visible = !e.Visible
		}
		if h.Flicker <= 0 {
			e.Visible = true
		}
	}
}
