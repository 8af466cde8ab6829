// Package clock provides the per-frame game time handed to every update.
package clock

import "time"

// Time is the frame clock owned by the game driver and passed by pointer
// into each update. Gameplay code reads Delta and never needs to know
// whether time is flowing: during a pause Delta is zero.
// Single goroutine only (game loop), no locks.
type Time struct {
	// Delta is the game time step of the current frame in seconds.
	Delta float64
	// Raw is the wall-clock step of the current frame, unaffected by pause.
	Raw float64
	// Elapsed is total game time in seconds, frozen while paused.
	Elapsed float64
	// Frame counts Step calls.
	Frame uint64

	pause float64
}

// New returns a clock at frame zero.
func New() *Time {
	return &Time{}
}

// Step advances the clock by one frame of dt wall time.
func (t *Time) Step(dt time.Duration) {
	raw := dt.Seconds()
	t.Raw = raw
	t.Frame++

	if t.pause > 0 {
		t.pause -= raw
		t.Delta = 0
		return
	}
	t.Delta = raw
	t.Elapsed += raw
}

// PauseFor freezes game time for the given number of seconds. Overlapping
// requests do not stack; the longest remaining pause wins.
func (t *Time) PauseFor(seconds float64) {
	if seconds > t.pause {
		t.pause = seconds
	}
}

// Paused reports whether a pause is pending.
func (t *Time) Paused() bool { return t.pause > 0 }

// OnInterval reports whether game time crossed a multiple of interval during
// the current frame.
func (t *Time) OnInterval(interval float64) bool {
	if interval <= 0 || t.Delta <= 0 {
		return false
	}
	prev := int((t.Elapsed - t.Delta) / interval)
	return prev < int(t.Elapsed/interval)
}

// Fixed returns a clock whose Delta is already set, for driving updates with
// a known step (tools and tests).
func Fixed(delta float64) *Time {
	return &Time{Delta: delta, Raw: delta}
}
