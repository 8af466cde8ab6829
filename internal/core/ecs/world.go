package ecs

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/pool"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/render"
)

// Precondition violations. The World panics with these (wrapped); they mark
// caller bugs and are never returned as errors.
var (
	ErrNilEntity       = errors.New("ecs: nil entity")
	ErrNilComponent    = errors.New("ecs: nil component")
	ErrDeadEntity      = errors.New("ecs: entity is destroyed")
	ErrForeignEntity   = errors.New("ecs: entity belongs to another world")
	ErrAlreadyAttached = errors.New("ecs: component already attached")
	ErrUnregistered    = errors.New("ecs: component kind not registered")
)

// World owns every live entity (one pool) and, per component kind ever
// attached, one pool of live components of that kind. It drives the
// per-frame update and render passes.
//
// World is the sole mutator of its pools. Single goroutine only (game loop).
type World struct {
	log     *zap.Logger
	recycle bool

	ids   *EntityPool
	alive pool.Pool[*Entity]
	free  []*Entity

	// pools is indexed by KindID; order lists kinds by first attach.
	pools []*pool.Pool[*node]
	order []KindID

	visible []Component
}

// Option configures a World.
type Option func(*World)

// WithLogger routes world diagnostics to log.
func WithLogger(log *zap.Logger) Option {
	return func(w *World) { w.log = log }
}

// WithEntityRecycling reuses destroyed Entity values for new entities.
// Hold Refs rather than *Entity across frames when enabled.
func WithEntityRecycling(on bool) Option {
	return func(w *World) { w.recycle = on }
}

func NewWorld(opts ...Option) *World {
	w := &World{
		log:     zap.NewNop(),
		ids:     NewEntityPool(),
		pools:   make([]*pool.Pool[*node], 0, 32),
		order:   make([]KindID, 0, 32),
		visible: make([]Component, 0, 256),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CreateEntity adds an active, visible entity at pos with no components.
func (w *World) CreateEntity(pos geom.Point) *Entity {
	var e *Entity
	if n := len(w.free); n > 0 {
		e = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		e = &Entity{}
	}

	e.id = w.ids.Create()
	e.Active = true
	e.Visible = true
	e.Position = pos
	e.world = w
	w.alive.Insert(e)
	return e
}

// FirstEntity returns the oldest live entity, or nil.
func (w *World) FirstEntity() *Entity { return w.alive.First() }

// LastEntity returns the newest live entity, or nil.
func (w *World) LastEntity() *Entity { return w.alive.Last() }

// NextEntity returns the entity created after e that is still alive, or nil.
func (w *World) NextEntity(e *Entity) *Entity { return w.alive.Next(e) }

// EachEntity visits live entities in creation order. fn may create or
// destroy entities.
func (w *World) EachEntity(fn func(*Entity)) { w.alive.Each(fn) }

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int { return w.alive.Len() }

// DestroyEntity detaches every component of e in attachment order, then
// removes e. Destroying a dead or foreign entity is a no-op, as is a nested
// call made from a component's Detached hook while e is being destroyed.
func (w *World) DestroyEntity(e *Entity) {
	if e == nil || e.world != w || e.dying {
		return
	}
	e.dying = true

	snapshot := slices.Clone(e.components)
	for _, c := range snapshot {
		w.Destroy(c)
	}

	w.alive.Remove(e)
	w.ids.Destroy(e.id)
	e.world = nil
	e.dying = false
	clear(e.components)
	e.components = e.components[:0]

	if w.recycle {
		w.free = append(w.free, e)
	}
}

// Attach links c to e: it joins the pool of its kind and the tail of the
// entity's component list, then its Attached hook runs. Attaching to a nil,
// dead, dying or foreign entity, or attaching a component twice, panics.
func (w *World) Attach(e *Entity, c Component) Component {
	switch {
	case e == nil:
		panic(ErrNilEntity)
	case c == nil:
		panic(ErrNilComponent)
	case e.world == nil || e.dying:
		panic(fmt.Errorf("%w: %v", ErrDeadEntity, e.id))
	case e.world != w:
		panic(fmt.Errorf("%w: %v", ErrForeignEntity, e.id))
	}

	b := c.base()
	if b.entity != nil {
		panic(fmt.Errorf("%w: %s on %v", ErrAlreadyAttached, KindName(c.Kind()), b.entity.id))
	}

	kind := c.Kind()
	p := w.poolFor(kind)

	b.kind = kind
	b.entity = e
	b.node.owner = c
	p.Insert(&b.node)
	e.components = append(e.components, c)

	c.Attached()
	return c
}

// Destroy runs c's Detached hook and unlinks it from its entity and its kind
// pool. The entity back-reference is cleared last. Detached or foreign
// components are ignored, so Destroy is safe from inside any hook.
func (w *World) Destroy(c Component) {
	if c == nil {
		return
	}
	b := c.base()
	if b.entity == nil || b.entity.world != w || b.detaching {
		return
	}
	b.detaching = true
	c.Detached()

	e := b.entity
	if i := slices.Index(e.components, c); i >= 0 {
		e.components = slices.Delete(e.components, i, i+1)
	}
	w.pools[b.kind].Remove(&b.node)

	b.entity = nil
	b.detaching = false
}

// Clear destroys every live entity and, with them, every component.
func (w *World) Clear() {
	n := w.alive.Len()
	w.alive.Each(w.DestroyEntity)
	w.log.Debug("world cleared", zap.Int("entities", n))
}

// Kinds returns registered component kinds in registration order.
func (w *World) Kinds() []KindID { return slices.Clone(w.order) }

// ComponentCount returns the number of live components of kind.
func (w *World) ComponentCount(kind KindID) int {
	if p := w.lookup(kind); p != nil {
		return p.Len()
	}
	return 0
}

// Update walks every kind pool in registration order and updates components
// whose own and entity's active flags are set. Components may attach or
// destroy anything, themselves included, from their Update.
func (w *World) Update(t *clock.Time) {
	for i := 0; i < len(w.order); i++ {
		w.pools[w.order[i]].Each(func(n *node) {
			b := n.owner.base()
			if b.entity != nil && b.Active() && b.entity.Active {
				n.owner.Update(t)
			}
		})
	}
}

// Render gathers visible components, stable-sorts them by descending depth
// (equal depths keep kind-registration then pool order) and renders each.
func (w *World) Render(s render.Surface) {
	for _, kind := range w.order {
		w.pools[kind].Each(func(n *node) {
			b := n.owner.base()
			if b.Visible() && b.entity.Visible {
				w.visible = append(w.visible, n.owner)
			}
		})
	}

	sort.SliceStable(w.visible, func(i, j int) bool {
		return w.visible[i].base().Depth > w.visible[j].base().Depth
	})

	for _, c := range w.visible {
		// a component rendered earlier this frame may have destroyed c
		if c.base().entity != nil {
			c.Render(s)
		}
	}

	clear(w.visible)
	w.visible = w.visible[:0]
}

func (w *World) lookup(kind KindID) *pool.Pool[*node] {
	if int(kind) < len(w.pools) {
		return w.pools[kind]
	}
	return nil
}

// poolFor returns the pool of kind, registering it on first use.
func (w *World) poolFor(kind KindID) *pool.Pool[*node] {
	if kind == 0 {
		panic(ErrUnregistered)
	}
	if p := w.lookup(kind); p != nil {
		return p
	}
	for int(kind) >= len(w.pools) {
		w.pools = append(w.pools, nil)
	}
	p := &pool.Pool[*node]{}
	w.pools[kind] = p
	w.order = append(w.order, kind)

	w.log.Debug("component kind registered",
		zap.String("kind", KindName(kind)),
		zap.Uint16("id", uint16(kind)),
		zap.Int("order", len(w.order)-1),
	)
	return p
}
