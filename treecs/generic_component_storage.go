package treecs

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/kamstrup/intmap"
)

const (
	genericBlockSize = 64

	// borrow states of a slot; positive values count shared borrows
	slotFree     int32 = 0
	slotBorrowed int32 = -1
)

type slotState uint8

const (
	slotLive slotState = iota
	// removed while borrowed; the last Release returns it to the free list
	slotRetired
	// cleared while borrowed; never reused
	slotDropped
)

type componentSlot[T any] struct {
	owner   EntityKey
	value   T
	borrows atomic.Int32
	index   int
	state   slotState // guarded by the column lock
}

// genericComponentStorage holds every component of type T.
// Values live in fixed-size blocks that are never moved, so pointers handed
// out by get stay valid until the slot is deleted.
type genericComponentStorage[T any] struct {
	mu        sync.RWMutex
	typ       reflect.Type
	blocks    []*[genericBlockSize]componentSlot[T]
	index     *intmap.Map[EntityKey, int]
	freeSlots []int
	nextIndex int
}

func newGenericComponentStorage[T any]() *genericComponentStorage[T] {
	return &genericComponentStorage[T]{
		typ:   reflect.TypeFor[T](),
		index: intmap.New[EntityKey, int](genericBlockSize),
	}
}

func (cs *genericComponentStorage[T]) slot(index int) *componentSlot[T] {
	return &cs.blocks[index/genericBlockSize][index%genericBlockSize]
}

// Put stores item for entity, overwriting any previous value.
func (cs *genericComponentStorage[T]) Put(entity EntityKey, item T) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if index, ok := cs.index.Get(entity); ok {
		slot := cs.slot(index)
		if slot.borrows.Load() != slotFree {
			panic(ErrBorrowConflict)
		}
		slot.value = item
		return
	}

	var index int
	if len(cs.freeSlots) > 0 {
		index = cs.freeSlots[len(cs.freeSlots)-1]
		cs.freeSlots = cs.freeSlots[:len(cs.freeSlots)-1]
	} else {
		index = cs.nextIndex
		cs.nextIndex++
		if index/genericBlockSize >= len(cs.blocks) {
			cs.blocks = append(cs.blocks, new([genericBlockSize]componentSlot[T]))
		}
	}

	slot := cs.slot(index)
	slot.owner = entity
	slot.value = item
	slot.index = index
	slot.state = slotLive
	cs.index.Put(entity, index)
}

func (cs *genericComponentStorage[T]) get(entity EntityKey) *componentSlot[T] {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	index, ok := cs.index.Get(entity)
	if !ok {
		return nil
	}
	return cs.slot(index)
}

// Get returns a pointer to the component of entity, or nil.
func (cs *genericComponentStorage[T]) Get(entity EntityKey) *T {
	slot := cs.get(entity)
	if slot == nil {
		return nil
	}
	return &slot.value
}

func (cs *genericComponentStorage[T]) GetAny(entity EntityKey) any {
	if p := cs.Get(entity); p != nil {
		return p
	}
	return nil
}

func (cs *genericComponentStorage[T]) Has(entity EntityKey) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	_, ok := cs.index.Get(entity)
	return ok
}

// borrow looks up the slot of entity and takes a borrow on it under the read
// lock, so the slot cannot be released between the lookup and the borrow.
func (cs *genericComponentStorage[T]) borrow(entity EntityKey, mutable bool) *componentSlot[T] {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	index, ok := cs.index.Get(entity)
	if !ok {
		return nil
	}
	slot := cs.slot(index)
	if mutable {
		if !slot.borrows.CompareAndSwap(slotFree, slotBorrowed) {
			panic(ErrBorrowConflict)
		}
		return slot
	}
	for {
		n := slot.borrows.Load()
		if n == slotBorrowed {
			panic(ErrBorrowConflict)
		}
		if slot.borrows.CompareAndSwap(n, n+1) {
			return slot
		}
	}
}

// settle recycles a retired slot once its last borrow is gone.
func (cs *genericComponentStorage[T]) settle(slot *componentSlot[T]) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if slot.state != slotRetired || slot.borrows.Load() != slotFree {
		return
	}
	var zero T
	slot.value = zero
	slot.state = slotLive
	cs.freeSlots = append(cs.freeSlots, slot.index)
}

// Update runs fn on the component of entity while holding the column's write lock.
// It panics with ErrBorrowConflict if the component is borrowed.
func (cs *genericComponentStorage[T]) Update(entity EntityKey, fn func(*T)) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	index, ok := cs.index.Get(entity)
	if !ok {
		return false
	}
	slot := cs.slot(index)
	if slot.borrows.Load() != slotFree {
		panic(ErrBorrowConflict)
	}
	fn(&slot.value)
	return true
}

// Take removes the component of entity and returns it.
func (cs *genericComponentStorage[T]) Take(entity EntityKey) (T, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var zero T
	index, ok := cs.index.Get(entity)
	if !ok {
		return zero, false
	}
	slot := cs.slot(index)
	value := slot.value
	cs.release(index, slot)
	cs.index.Del(entity)
	return value, true
}

// Delete marks the slot of entity as empty.
func (cs *genericComponentStorage[T]) Delete(entity EntityKey) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	index, ok := cs.index.Get(entity)
	if !ok {
		return false
	}
	cs.release(index, cs.slot(index))
	cs.index.Del(entity)
	return true
}

// release detaches a slot from its entity. A borrowed slot keeps its value for
// the outstanding refs and is only reused after the last one is released.
func (cs *genericComponentStorage[T]) release(index int, slot *componentSlot[T]) {
	slot.owner = 0
	if slot.borrows.Load() != slotFree {
		slot.state = slotRetired
		return
	}
	var zero T
	slot.value = zero
	cs.freeSlots = append(cs.freeSlots, index)
}

func (cs *genericComponentStorage[T]) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.index.Len()
}

func (cs *genericComponentStorage[T]) Type() reflect.Type {
	return cs.typ
}

// Clear drops every component and releases all blocks.
// Slots still borrowed stay readable through their refs but are never reused.
func (cs *genericComponentStorage[T]) Clear() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for _, block := range cs.blocks {
		for i := range block {
			if block[i].borrows.Load() != slotFree {
				block[i].owner = 0
				block[i].state = slotDropped
			}
		}
	}
	cs.blocks = nil
	cs.freeSlots = nil
	cs.nextIndex = 0
	cs.index.Clear()
}

// Entities returns the owners of all filled slots in slot order.
func (cs *genericComponentStorage[T]) Entities() []EntityKey {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	out := make([]EntityKey, 0, cs.index.Len())
	for i := 0; i < cs.nextIndex; i++ {
		owner := cs.slot(i).owner
		if !owner.IsZero() {
			out = append(out, owner)
		}
	}
	return out
}
