package event

import (
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/geom"
)

// Hurt is emitted when a Hurtable takes a hit.
type Hurt struct {
	Entity ecs.EntityID
	At     geom.Point
}

// RoomLoaded is emitted after a room has been built into the world.
type RoomLoaded struct {
	Name string
	Cell geom.Point
}

// ShakeRequested asks the camera to shake for Duration seconds.
type ShakeRequested struct {
	Duration float64
}
