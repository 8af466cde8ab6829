package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: poll keys
	PhasePreUpdate               // 1: deliver last frame's events
	PhaseUpdate                  // 2: step clock + world update
	PhasePostUpdate              // 3: camera, room transitions
	PhaseOutput                  // 4: render + present
	PhaseCleanup                 // 5: apply deferred room loads

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
