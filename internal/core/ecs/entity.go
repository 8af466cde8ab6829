package ecs

import (
	"fmt"

	"github.com/pondhero/platformer/internal/core/pool"
	"github.com/pondhero/platformer/internal/geom"
)

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("%d.%d", id.Index(), id.Generation())
}

// EntityPool manages entity identities with generational indices and a free
// list. Index 0 is never handed out so the zero EntityID means "none".
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 1, 1024),
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1,
	}
}

func (p *EntityPool) Create() EntityID {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewEntityID(idx, p.generations[idx])
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return // already destroyed (stale reference)
	}
	idx := id.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}

// Entity is an identity plus a pixel position plus the ordered components
// attached to it. Entities are created and destroyed only through a World.
type Entity struct {
	link pool.Link[*Entity]

	id EntityID

	// Active gates Update of every attached component.
	Active bool
	// Visible gates Render of every attached component.
	Visible bool
	// Position is in whole pixels; motion never leaves it fractional.
	Position geom.Point

	components []Component
	world      *World
	dying      bool
}

func (e *Entity) PoolLink() *pool.Link[*Entity] { return &e.link }

func (e *Entity) ID() EntityID { return e.id }

// World returns the owning world, or nil once the entity is destroyed.
func (e *Entity) World() *World { return e.world }

// Alive reports whether the entity still belongs to a world.
func (e *Entity) Alive() bool { return e != nil && e.world != nil }

// Components returns the attached components in attachment order. The slice
// is owned by the entity; copy it before destroying components while ranging.
func (e *Entity) Components() []Component { return e.components }

// Add attaches c through the owning world.
func (e *Entity) Add(c Component) Component {
	if e.world == nil {
		panic(fmt.Errorf("%w: %v", ErrDeadEntity, e.id))
	}
	return e.world.Attach(e, c)
}

// Destroy removes the entity and all its components from its world.
func (e *Entity) Destroy() {
	if e.world != nil {
		e.world.DestroyEntity(e)
	}
}

// Ref returns a handle that stops resolving once this entity is destroyed,
// even if the Entity value is later recycled for a new identity.
func (e *Entity) Ref() Ref { return Ref{id: e.id, e: e} }

// Ref is a generation-checked entity handle for references held across frames.
type Ref struct {
	id EntityID
	e  *Entity
}

// Get returns the referenced entity while it is alive.
func (r Ref) Get() (*Entity, bool) {
	if r.e == nil || r.e.world == nil || r.e.id != r.id {
		return nil, false
	}
	return r.e, true
}

func (r Ref) ID() EntityID { return r.id }
