package system

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownPhase = errors.New("system: unknown phase")

// Runner executes systems in phase order each frame. Systems sharing a
// phase keep their registration order.
type Runner struct {
	phases [phaseCount][]System
	count  int
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to the bucket of its phase. A phase outside the known
// set panics.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic(fmt.Errorf("%w: %d", ErrUnknownPhase, int(p)))
	}
	r.phases[p] = append(r.phases[p], s)
	r.count++
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return r.count }

// Tick runs one full frame.
func (r *Runner) Tick(dt time.Duration) {
	for _, bucket := range r.phases {
		for _, s := range bucket {
			s.Update(dt)
		}
	}
}

// TickPhases runs only the given phases, in the order given. The driver
// uses it to redraw without advancing the simulation.
func (r *Runner) TickPhases(dt time.Duration, phases ...Phase) {
	for _, p := range phases {
		if p < 0 || p >= phaseCount {
			continue
		}
		for _, s := range r.phases[p] {
			s.Update(dt)
		}
	}
}
