package spatial

import (
	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/geom"
)

var MoverKind = ecs.RegisterKind[*Mover]("mover")

// Mover integrates Speed into whole-pixel motion of its entity. Fractions
// of a pixel carry over to the next frame in a remainder, so no motion is
// lost to rounding.
type Mover struct {
	ecs.Base

	// Collider blocks motion against Solid (and JumpThrough when falling).
	// Nil means unobstructed motion.
	Collider *Collider
	Speed    geom.Vec
	Gravity  float64
	Friction float64

	// OnHitX and OnHitY replace the default StopX/StopY response when a
	// sweep is blocked on that axis.
	OnHitX func(*Mover)
	OnHitY func(*Mover)

	remainder geom.Vec
}

func (*Mover) Kind() ecs.KindID { return MoverKind.ID() }

func (m *Mover) Update(t *clock.Time) {
	dt := t.Delta

	if m.Friction > 0 && m.OnGround(1) {
		m.Speed.X = geom.Approach(m.Speed.X, 0, m.Friction*dt)
	}

	if m.Gravity != 0 && (m.Collider == nil || !m.Collider.Check(Solid, geom.Pt(0, 1))) {
		m.Speed.Y += m.Gravity * dt
	}

	// explicit conversions keep each product rounded on its own (no fused
	// multiply-add), so motion is bit-identical on every platform
	step := geom.V(float64(m.Speed.X*dt), float64(m.Speed.Y*dt))
	total := geom.V(m.remainder.X+step.X, m.remainder.Y+step.Y)
	move := geom.Pt(int(total.X), int(total.Y))
	m.remainder = geom.V(total.X-float64(move.X), total.Y-float64(move.Y))

	m.MoveX(move.X)
	// a hit handler may have destroyed the entity
	if m.Entity() != nil {
		m.MoveY(move.Y)
	}
}

// MoveX moves the entity amount pixels horizontally, one pixel at a time.
// It returns true if a Solid collider blocked the sweep.
func (m *Mover) MoveX(amount int) bool {
	e := m.Entity()
	if e == nil {
		return false
	}
	if m.Collider == nil {
		e.Position.X += amount
		return false
	}

	sign := geom.Sign(amount)
	for amount != 0 {
		if m.Collider.Check(Solid, geom.Pt(sign, 0)) {
			m.hitX()
			return true
		}
		amount -= sign
		e.Position.X += sign
	}
	return false
}

// MoveY moves the entity amount pixels vertically. Moving down is also
// blocked by JumpThrough colliders the mover is not already inside.
func (m *Mover) MoveY(amount int) bool {
	e := m.Entity()
	if e == nil {
		return false
	}
	if m.Collider == nil {
		e.Position.Y += amount
		return false
	}

	sign := geom.Sign(amount)
	for amount != 0 {
		blocked := m.Collider.Check(Solid, geom.Pt(0, sign))
		if !blocked && sign > 0 {
			blocked = m.landsOnJumpThrough(sign)
		}
		if blocked {
			m.hitY()
			return true
		}
		amount -= sign
		e.Position.Y += sign
	}
	return false
}

func (m *Mover) StopX() {
	m.Speed.X = 0
	m.remainder.X = 0
}

func (m *Mover) StopY() {
	m.Speed.Y = 0
	m.remainder.Y = 0
}

func (m *Mover) Stop() {
	m.Speed = geom.Vec{}
	m.remainder = geom.Vec{}
}

// OnGround reports whether the mover would be blocked dist pixels below.
func (m *Mover) OnGround(dist int) bool {
	if m.Collider == nil {
		return false
	}
	return m.Collider.Check(Solid, geom.Pt(0, dist)) || m.landsOnJumpThrough(dist)
}

// Remainder returns the sub-pixel motion carried into the next frame.
func (m *Mover) Remainder() geom.Vec { return m.remainder }

func (m *Mover) landsOnJumpThrough(dist int) bool {
	return m.Collider.Check(JumpThrough, geom.Pt(0, dist)) &&
		!m.Collider.Check(JumpThrough, geom.Point{})
}

func (m *Mover) hitX() {
	if m.OnHitX != nil {
		m.OnHitX(m)
	} else {
		m.StopX()
	}
}

func (m *Mover) hitY() {
	if m.OnHitY != nil {
		m.OnHitY(m)
	} else {
		m.StopY()
	}
}
