package ecs

// First returns the oldest live component of kind k. It is the O(1) lookup
// gameplay code uses to find singletons such as the focus entity. Absence is
// reported with ok == false, never as an error.
func First[T Component](w *World, k Kind[T]) (c T, ok bool) {
	if p := w.lookup(k.id); p != nil {
		if n := p.First(); n != nil {
			return n.owner.(T), true
		}
	}
	return c, false
}

// Last returns the newest live component of kind k.
func Last[T Component](w *World, k Kind[T]) (c T, ok bool) {
	if p := w.lookup(k.id); p != nil {
		if n := p.Last(); n != nil {
			return n.owner.(T), true
		}
	}
	return c, false
}

// Each visits every live component of kind k in attachment order. fn may
// attach or destroy components.
func Each[T Component](w *World, k Kind[T], fn func(T)) {
	if p := w.lookup(k.id); p != nil {
		p.Each(func(n *node) { fn(n.owner.(T)) })
	}
}

// Find returns the first live component of kind k accepted by match.
func Find[T Component](w *World, k Kind[T], match func(T) bool) (c T, ok bool) {
	if p := w.lookup(k.id); p != nil {
		if n, found := p.Find(func(n *node) bool { return match(n.owner.(T)) }); found {
			return n.owner.(T), true
		}
	}
	return c, false
}

// Get returns the first component of kind k attached to e.
func Get[T Component](e *Entity, k Kind[T]) (c T, ok bool) {
	for _, it := range e.components {
		if it.Kind() == k.id {
			return it.(T), true
		}
	}
	return c, false
}

// Attach is World.Attach returning the concrete type, for chained setup:
//
//	mover := ecs.Attach(e, &spatial.Mover{Gravity: 450})
func Attach[T Component](e *Entity, c T) T {
	if e == nil {
		panic(ErrNilEntity)
	}
	e.Add(c)
	return c
}
