// Package pool implements an intrusive doubly-linked list. Elements carry
// their own links, so insert and remove are O(1) and never move or
// invalidate unrelated elements. The pool does not own its elements.
package pool

// Link is embedded in every pooled element. owner holds the *Pool[T] the
// element is linked into, or nil.
type Link[T any] struct {
	next, prev T
	owner      any
}

// Element is implemented by pointer types that embed a Link.
type Element[T any] interface {
	comparable
	PoolLink() *Link[T]
}

// Pool is an ordered collection of T maintained through each element's Link.
// The zero value is an empty pool.
type Pool[T Element[T]] struct {
	first, last T
	len         int

	// cursors holds the captured "next" element of every walk in progress.
	cursors []T
}

// First returns the head of the pool, or the zero T when empty.
func (p *Pool[T]) First() T { return p.first }

// Last returns the tail of the pool, or the zero T when empty.
func (p *Pool[T]) Last() T { return p.last }

// Len returns the number of elements currently linked.
func (p *Pool[T]) Len() int { return p.len }

// Next returns the element after item.
func (p *Pool[T]) Next(item T) T { return item.PoolLink().next }

// Prev returns the element before item.
func (p *Pool[T]) Prev(item T) T { return item.PoolLink().prev }

// Contains reports whether item is linked into p.
func (p *Pool[T]) Contains(item T) bool {
	var zero T
	return item != zero && item.PoolLink().owner == p
}

// Insert appends item at the tail.
//
// Precondition: item is not linked into any pool. Inserting an element that
// is already linked corrupts both lists; callers own that discipline.
func (p *Pool[T]) Insert(item T) {
	var zero T
	l := item.PoolLink()
	l.owner = p
	l.next = zero
	l.prev = p.last
	if p.last != zero {
		p.last.PoolLink().next = item
	} else {
		p.first = item
	}
	p.last = item
	p.len++

	// A walk whose captured next is empty is on the old tail; let it
	// continue onto the new element.
	for i := range p.cursors {
		if p.cursors[i] == zero {
			p.cursors[i] = item
		}
	}
}

// Remove unlinks item. Removing an element that is not in p is a no-op.
// Walks in progress whose captured next element is item skip past it.
func (p *Pool[T]) Remove(item T) {
	if !p.Contains(item) {
		return
	}
	var zero T
	l := item.PoolLink()

	for i := range p.cursors {
		if p.cursors[i] == item {
			p.cursors[i] = l.next
		}
	}

	if l.prev != zero {
		l.prev.PoolLink().next = l.next
	}
	if l.next != zero {
		l.next.PoolLink().prev = l.prev
	}
	if p.first == item {
		p.first = l.next
	}
	if p.last == item {
		p.last = l.prev
	}

	l.next = zero
	l.prev = zero
	l.owner = nil
	p.len--
}

// Each calls fn for every element in insertion order. The next element is
// captured before fn runs, so fn may remove the current element, any other
// element, or insert new ones (appended elements are visited in this walk).
func (p *Pool[T]) Each(fn func(T)) {
	var zero T
	idx := len(p.cursors)
	p.cursors = append(p.cursors, zero)
	defer func() { p.cursors = p.cursors[:idx] }()

	for cur := p.first; cur != zero; cur = p.cursors[idx] {
		p.cursors[idx] = cur.PoolLink().next
		fn(cur)
	}
}

// Find returns the first element for which match returns true.
func (p *Pool[T]) Find(match func(T) bool) (T, bool) {
	var zero T
	for cur := p.first; cur != zero; cur = cur.PoolLink().next {
		if match(cur) {
			return cur, true
		}
	}
	return zero, false
}
