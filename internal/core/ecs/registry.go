package ecs

import "sync"

// KindID is the small integer naming a concrete component type. It selects
// the per-kind pool in a World. Zero is never assigned.
type KindID uint16

// Kind is the typed registration token of component type T. Declare one per
// concrete type as a package-level variable:
//
//	var TimerKind = ecs.RegisterKind[*Timer]("timer")
//	func (*Timer) Kind() ecs.KindID { return TimerKind.ID() }
type Kind[T Component] struct {
	id KindID
}

func (k Kind[T]) ID() KindID     { return k.id }
func (k Kind[T]) Name() string   { return KindName(k.id) }
func (k Kind[T]) Valid() bool    { return k.id != 0 }
func (id KindID) String() string { return KindName(id) }

// kindTable is the process-wide registration table. Registration happens
// during package initialization; lookups afterwards are read-only.
var kindTable = struct {
	mu    sync.Mutex
	names []string
}{names: []string{"<none>"}}

// RegisterKind assigns the next KindID to T.
func RegisterKind[T Component](name string) Kind[T] {
	kindTable.mu.Lock()
	defer kindTable.mu.Unlock()
	kindTable.names = append(kindTable.names, name)
	return Kind[T]{id: KindID(len(kindTable.names) - 1)}
}

// KindName returns the registered name of id.
func KindName(id KindID) string {
	kindTable.mu.Lock()
	defer kindTable.mu.Unlock()
	if int(id) >= len(kindTable.names) {
		return "<unregistered>"
	}
	return kindTable.names[id]
}

// KindCount returns the number of registered kinds.
func KindCount() int {
	kindTable.mu.Lock()
	defer kindTable.mu.Unlock()
	return len(kindTable.names) - 1
}
