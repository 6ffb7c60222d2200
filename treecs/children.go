package treecs

import (
	"cmp"
	"iter"

	"github.com/gammazero/deque"
)

// ChildrenKind identifies which representation a Children value currently uses.
type ChildrenKind uint8

const (
	NoChild ChildrenKind = iota
	SingleChild
	DoubleChild
	// OtherChildren does not imply more than two items: once a sequence grows past two it keeps
	// this representation even if it later shrinks.
	OtherChildren
)

func (k ChildrenKind) String() string {
	switch k {
	case NoChild:
		return "NoChild"
	case SingleChild:
		return "SingleChild"
	case DoubleChild:
		return "DoubleChild"
	case OtherChildren:
		return "OtherChildren"
	}
	return "ChildrenKind(?)"
}

// Children is an ordered, double-ended sequence specialised for the common
// zero, one and two element cases. Those are stored inline; anything larger
// moves into a deque.
//
// The zero value is an empty sequence ready to use. Assigning a Children
// copies the inline cases, but an OtherChildren copy shares its deque with
// the original. Use Clone for an independent copy.
type Children[T any] struct {
	kind  ChildrenKind
	first T
	last  T
	other *deque.Deque[T]
}

// NewChildren returns an empty sequence.
func NewChildren[T any]() Children[T] {
	return Children[T]{}
}

// NewChildrenFrom builds the smallest representation that holds items.
// More than two items use the deque representation, pre-grown to fit.
func NewChildrenFrom[T any](items ...T) Children[T] {
	switch len(items) {
	case 0:
		return Children[T]{}
	case 1:
		return Children[T]{kind: SingleChild, first: items[0]}
	case 2:
		return Children[T]{kind: DoubleChild, first: items[0], last: items[1]}
	}

	d := new(deque.Deque[T])
	d.Grow(len(items))
	for _, item := range items {
		d.PushBack(item)
	}
	return Children[T]{kind: OtherChildren, other: d}
}

// Kind returns the current representation.
func (c *Children[T]) Kind() ChildrenKind {
	return c.kind
}

// Len returns the number of items in the sequence.
func (c *Children[T]) Len() int {
	switch c.kind {
	case SingleChild:
		return 1
	case DoubleChild:
		return 2
	case OtherChildren:
		return c.other.Len()
	}
	return 0
}

// Get returns the item at index i.
func (c *Children[T]) Get(i int) (T, bool) {
	var zero T
	if i < 0 {
		return zero, false
	}
	switch c.kind {
	case SingleChild:
		if i == 0 {
			return c.first, true
		}
	case DoubleChild:
		if i == 0 {
			return c.first, true
		}
		if i == 1 {
			return c.last, true
		}
	case OtherChildren:
		if i < c.other.Len() {
			return c.other.At(i), true
		}
	}
	return zero, false
}

// At returns the item at index i and panics if i is out of range.
func (c *Children[T]) At(i int) T {
	item, ok := c.Get(i)
	if !ok {
		panic("treecs: child index out of range")
	}
	return item
}

// Set replaces the item at index i. It returns false if i is out of range.
func (c *Children[T]) Set(i int, item T) bool {
	if i < 0 {
		return false
	}
	switch c.kind {
	case SingleChild:
		if i == 0 {
			c.first = item
			return true
		}
	case DoubleChild:
		if i == 0 {
			c.first = item
			return true
		}
		if i == 1 {
			c.last = item
			return true
		}
	case OtherChildren:
		if i < c.other.Len() {
			c.other.Set(i, item)
			return true
		}
	}
	return false
}

// Left returns the first item.
func (c *Children[T]) Left() (T, bool) {
	switch c.kind {
	case SingleChild, DoubleChild:
		return c.first, true
	case OtherChildren:
		if c.other.Len() > 0 {
			return c.other.Front(), true
		}
	}
	var zero T
	return zero, false
}

// Right returns the last item.
func (c *Children[T]) Right() (T, bool) {
	switch c.kind {
	case SingleChild:
		return c.first, true
	case DoubleChild:
		return c.last, true
	case OtherChildren:
		if c.other.Len() > 0 {
			return c.other.Back(), true
		}
	}
	var zero T
	return zero, false
}

// SetLeft replaces the first item. It returns false on an empty sequence.
func (c *Children[T]) SetLeft(item T) bool {
	return c.Set(0, item)
}

// SetRight replaces the last item. It returns false on an empty sequence.
func (c *Children[T]) SetRight(item T) bool {
	return c.Set(c.Len()-1, item)
}

// PushRight appends item at the right end.
func (c *Children[T]) PushRight(item T) {
	switch c.kind {
	case NoChild:
		c.kind = SingleChild
		c.first = item
	case SingleChild:
		c.kind = DoubleChild
		c.last = item
	case DoubleChild:
		d := new(deque.Deque[T])
		d.Grow(4)
		d.PushBack(c.first)
		d.PushBack(c.last)
		d.PushBack(item)
		c.promote(d)
	case OtherChildren:
		c.other.PushBack(item)
	}
}

// PushLeft prepends item at the left end.
func (c *Children[T]) PushLeft(item T) {
	switch c.kind {
	case NoChild:
		c.kind = SingleChild
		c.first = item
	case SingleChild:
		c.kind = DoubleChild
		c.last = c.first
		c.first = item
	case DoubleChild:
		d := new(deque.Deque[T])
		d.Grow(4)
		d.PushBack(item)
		d.PushBack(c.first)
		d.PushBack(c.last)
		c.promote(d)
	case OtherChildren:
		c.other.PushFront(item)
	}
}

// PopLeft removes and returns the first item.
// The deque representation is kept even when it becomes small.
func (c *Children[T]) PopLeft() (T, bool) {
	var zero T
	switch c.kind {
	case SingleChild:
		item := c.first
		c.reset()
		return item, true
	case DoubleChild:
		item := c.first
		c.kind = SingleChild
		c.first = c.last
		c.last = zero
		return item, true
	case OtherChildren:
		if c.other.Len() > 0 {
			return c.other.PopFront(), true
		}
	}
	return zero, false
}

// PopRight removes and returns the last item.
// The deque representation is kept even when it becomes small.
func (c *Children[T]) PopRight() (T, bool) {
	var zero T
	switch c.kind {
	case SingleChild:
		item := c.first
		c.reset()
		return item, true
	case DoubleChild:
		item := c.last
		c.kind = SingleChild
		c.last = zero
		return item, true
	case OtherChildren:
		if c.other.Len() > 0 {
			return c.other.PopBack(), true
		}
	}
	return zero, false
}

// All returns an iterator over index/item pairs from left to right.
func (c *Children[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		n := c.Len()
		for i := 0; i < n; i++ {
			item, ok := c.Get(i)
			if !ok || !yield(i, item) {
				return
			}
		}
	}
}

// Backward returns an iterator over index/item pairs from right to left.
func (c *Children[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := c.Len() - 1; i >= 0; i-- {
			item, ok := c.Get(i)
			if !ok || !yield(i, item) {
				return
			}
		}
	}
}

// Values returns an iterator over the items from left to right.
func (c *Children[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range c.All() {
			if !yield(item) {
				return
			}
		}
	}
}

// Drain returns an iterator that pops items from the left until the sequence is empty
// or the caller stops.
func (c *Children[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, ok := c.PopLeft()
			if !ok || !yield(item) {
				return
			}
		}
	}
}

// Update calls fn once for every item, left to right, with a pointer the callback may write through.
// The pointer is only valid for the duration of the call.
func (c *Children[T]) Update(fn func(i int, item *T)) {
	switch c.kind {
	case SingleChild:
		fn(0, &c.first)
	case DoubleChild:
		fn(0, &c.first)
		fn(1, &c.last)
	case OtherChildren:
		for i := 0; i < c.other.Len(); i++ {
			item := c.other.At(i)
			fn(i, &item)
			c.other.Set(i, item)
		}
	}
}

// Clone returns a copy that shares no storage with c.
func (c *Children[T]) Clone() Children[T] {
	out := *c
	if c.kind == OtherChildren {
		d := new(deque.Deque[T])
		d.Grow(c.other.Len())
		for i := 0; i < c.other.Len(); i++ {
			d.PushBack(c.other.At(i))
		}
		out.other = d
	}
	return out
}

func (c *Children[T]) promote(d *deque.Deque[T]) {
	var zero T
	c.kind = OtherChildren
	c.first = zero
	c.last = zero
	c.other = d
}

func (c *Children[T]) reset() {
	*c = Children[T]{}
}

// RemoveChild removes the first element equal to item and reports whether one was found.
func RemoveChild[T comparable](c *Children[T], item T) (T, bool) {
	var zero T
	switch c.kind {
	case SingleChild:
		if c.first == item {
			out := c.first
			c.reset()
			return out, true
		}
	case DoubleChild:
		if c.first == item {
			out := c.first
			c.kind = SingleChild
			c.first = c.last
			c.last = zero
			return out, true
		}
		if c.last == item {
			out := c.last
			c.kind = SingleChild
			c.last = zero
			return out, true
		}
	case OtherChildren:
		idx := c.other.Index(func(v T) bool { return v == item })
		if idx >= 0 {
			return c.other.Remove(idx), true
		}
	}
	return zero, false
}

// IndexOfChild returns the position of the first element equal to item, or -1.
func IndexOfChild[T comparable](c *Children[T], item T) int {
	for i, v := range c.All() {
		if v == item {
			return i
		}
	}
	return -1
}

// EqualChildren reports whether a and b hold the same items in the same order,
// regardless of representation.
func EqualChildren[T comparable](a, b *Children[T]) bool {
	return CompareChildrenFunc(a, b, func(x, y T) int {
		if x == y {
			return 0
		}
		return 1
	}) == 0
}

// CompareChildren orders a and b lexicographically, element by element.
func CompareChildren[T cmp.Ordered](a, b *Children[T]) int {
	return CompareChildrenFunc(a, b, cmp.Compare[T])
}

// CompareChildrenFunc is like CompareChildren but uses compare for elements.
// A strict prefix orders before the longer sequence.
func CompareChildrenFunc[T any](a, b *Children[T], compare func(T, T) int) int {
	na, nb := a.Len(), b.Len()
	for i := 0; i < na && i < nb; i++ {
		if c := compare(a.At(i), b.At(i)); c != 0 {
			return c
		}
	}
	return cmp.Compare(na, nb)
}
