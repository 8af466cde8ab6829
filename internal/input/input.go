// Package input tracks the abstract player actions fed by a backend.
// Terminals report key presses but no releases, so a press keeps its
// action held for a short hold window.
package input

import "strings"

// Action is an abstract control.
type Action uint8

const (
	Left Action = iota
	Right
	Up
	Down
	Jump
	Attack
	numActions
)

var actionNames = [numActions]string{"left", "right", "up", "down", "jump", "attack"}

func (a Action) String() string {
	if a < numActions {
		return actionNames[a]
	}
	return "unknown"
}

// Named returns the action called name.
func Named(name string) (Action, bool) {
	name = strings.ToLower(name)
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}

// DefaultHold is how long a press keeps its action held, in seconds.
const DefaultHold = 0.12

// State is the per-frame action state. Single goroutine only.
type State struct {
	Hold float64

	held    [numActions]float64
	pressed [numActions]bool
	queued  [numActions]bool
}

func NewState() *State {
	return &State{Hold: DefaultHold}
}

// Press records a press. It becomes visible to Pressed on the next Step.
func (s *State) Press(a Action) {
	if a < numActions {
		s.queued[a] = true
	}
}

// Step starts a new frame of dt seconds: queued presses become pressed and
// (re)start their hold window, older holds decay.
func (s *State) Step(dt float64) {
	for a := range s.held {
		s.pressed[a] = s.queued[a]
		s.queued[a] = false
		if s.pressed[a] {
			s.held[a] = s.Hold
		} else if s.held[a] > 0 {
			s.held[a] -= dt
		}
	}
}

// Held reports whether a was pressed within the hold window.
func (s *State) Held(a Action) bool { return a < numActions && s.held[a] > 0 }

// Pressed reports whether a was pressed since the previous Step.
func (s *State) Pressed(a Action) bool { return a < numActions && s.pressed[a] }

// Axis returns -1, 0 or 1 from a pair of opposing actions.
func (s *State) Axis(neg, pos Action) int {
	v := 0
	if s.Held(neg) {
		v--
	}
	if s.Held(pos) {
		v++
	}
	return v
}

// Reset releases everything.
func (s *State) Reset() {
	*s = State{Hold: s.Hold}
}
