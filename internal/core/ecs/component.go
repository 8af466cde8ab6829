package ecs

import (
	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/pool"
	"github.com/pondhero/platformer/internal/render"
)

// Component is a behavioral unit attached to exactly one Entity. Concrete
// types embed Base, which supplies no-op hooks and the attachment state, and
// implement Kind to select their storage pool.
type Component interface {
	Kind() KindID

	// Attached runs once the component is linked into its entity and world.
	Attached()
	// Update runs once per frame while the component and its entity are active.
	Update(t *clock.Time)
	// Render runs once per frame while the component and its entity are visible.
	Render(s render.Surface)
	// Detached runs before the component is unlinked. Entity() is still valid.
	Detached()

	base() *Base
}

// node is the element stored in a per-kind pool.
type node struct {
	link  pool.Link[*node]
	owner Component
}

func (n *node) PoolLink() *pool.Link[*node] { return &n.link }

// Base carries the state every component shares. The zero value is active
// and visible at depth 0.
type Base struct {
	// Depth orders rendering: higher depths are drawn first (further back),
	// lower depths last (on top).
	Depth int

	node      node
	kind      KindID
	entity    *Entity
	inactive  bool
	hidden    bool
	detaching bool
}

func (b *Base) base() *Base { return b }

func (b *Base) Attached()               {}
func (b *Base) Update(*clock.Time)      {}
func (b *Base) Render(render.Surface)   {}
func (b *Base) Detached()               {}
func (b *Base) Active() bool            { return !b.inactive }
func (b *Base) SetActive(active bool)   { b.inactive = !active }
func (b *Base) Visible() bool           { return !b.hidden }
func (b *Base) SetVisible(visible bool) { b.hidden = !visible }

// Entity returns the owning entity, or nil when detached.
func (b *Base) Entity() *Entity { return b.entity }

// World returns the owning world, or nil when detached.
func (b *Base) World() *World {
	if b.entity == nil {
		return nil
	}
	return b.entity.world
}

// Destroy detaches the component from its world. Safe to call repeatedly.
func (b *Base) Destroy() {
	if b.entity != nil && b.entity.world != nil {
		b.entity.world.Destroy(b.node.owner)
	}
}
