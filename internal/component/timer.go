package component

import (
	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
)

var TimerKind = ecs.RegisterKind[*Timer]("timer")

// Timer counts game time down and calls OnEnd once when it runs out.
type Timer struct {
	ecs.Base

	OnEnd func(*Timer)

	remaining float64
}

func NewTimer(seconds float64, onEnd func(*Timer)) *Timer {
	return &Timer{OnEnd: onEnd, remaining: seconds}
}

func (*Timer) Kind() ecs.KindID { return TimerKind.ID() }

// Start (re)arms the timer.
func (t *Timer) Start(seconds float64) { t.remaining = seconds }

// Remaining returns the seconds left, zero or less once fired.
func (t *Timer) Remaining() float64 { return t.remaining }

// Running reports whether the timer has yet to fire.
func (t *Timer) Running() bool { return t.remaining > 0 }

func (t *Timer) Update(ck *clock.Time) {
	if t.remaining <= 0 {
		return
	}
	t.remaining -= ck.Delta
	if t.remaining <= 0 && t.OnEnd != nil {
		t.OnEnd(t)
	}
}

// DestroyAfter attaches a timer that destroys e after seconds.
func DestroyAfter(e *ecs.Entity, seconds float64) *Timer {
	return ecs.Attach(e, NewTimer(seconds, func(t *Timer) {
		t.Entity().Destroy()
	}))
}
