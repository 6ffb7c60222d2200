package treecs

import (
	"errors"
	"reflect"
	"sort"
	"sync"
)

// ErrBorrowConflict is the panic value raised when a borrow overlaps a mutable borrow of the same slot.
var ErrBorrowConflict = errors.New("treecs: component already borrowed")

// ComponentStore maps a component type to the values of that type, one per entity.
//
// Each type lives in its own column with its own lock, so operations on
// different types never contend. The store does not check entity liveness;
// that is the arena's job.
//
// GetComponent hands out pointers into the store. A pointer stays valid until
// the component or its entity is removed, and callers must not keep two
// writers to the same slot alive at once. Borrow and BorrowMut check that
// obligation at runtime instead.
type ComponentStore struct {
	mu      sync.RWMutex
	columns map[reflect.Type]iComponentStorage
}

// NewComponentStore creates an empty store.
func NewComponentStore() *ComponentStore {
	return &ComponentStore{
		columns: make(map[reflect.Type]iComponentStorage),
	}
}

// Store returns s, so a bare store can be used wherever a StoreProvider is expected.
func (s *ComponentStore) Store() *ComponentStore {
	return s
}

// StoreProvider is anything that exposes a component store: the store itself or a Treecs.
type StoreProvider interface {
	Store() *ComponentStore
}

func (s *ComponentStore) column(t reflect.Type) iComponentStorage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columns[t]
}

func columnOf[T any](s *ComponentStore) *genericComponentStorage[T] {
	col := s.column(reflect.TypeFor[T]())
	if col == nil {
		return nil
	}
	return col.(*genericComponentStorage[T])
}

func columnOrCreate[T any](s *ComponentStore) *genericComponentStorage[T] {
	if col := columnOf[T](s); col != nil {
		return col
	}

	t := reflect.TypeFor[T]()
	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok := s.columns[t]; ok {
		return col.(*genericComponentStorage[T])
	}
	col := newGenericComponentStorage[T]()
	s.columns[t] = col
	return col
}

// getErased returns a pointer to the component of type t for entity as an any, or nil.
func (s *ComponentStore) getErased(t reflect.Type, entity EntityKey) any {
	col := s.column(t)
	if col == nil {
		return nil
	}
	return col.GetAny(entity)
}

// RemoveEntity purges entity from every column.
func (s *ComponentStore) RemoveEntity(entity EntityKey) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, col := range s.columns {
		col.Delete(entity)
	}
}

// Clear drops every component of every type.
func (s *ComponentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, col := range s.columns {
		col.Clear()
	}
}

// Types returns the component types that have been stored at least once, sorted by name.
func (s *ComponentStore) Types() []reflect.Type {
	s.mu.RLock()
	types := make([]reflect.Type, 0, len(s.columns))
	for t := range s.columns {
		types = append(types, t)
	}
	s.mu.RUnlock()

	sort.Sort(byTypeName(types))
	return types
}

// Count returns the number of components of type t.
func (s *ComponentStore) Count(t reflect.Type) int {
	col := s.column(t)
	if col == nil {
		return 0
	}
	return col.Len()
}

// HasType reports whether entity carries a component of type t.
func (s *ComponentStore) HasType(t reflect.Type, entity EntityKey) bool {
	col := s.column(t)
	return col != nil && col.Has(entity)
}

// EntitiesWith returns every entity carrying a component of type t, in storage order.
func (s *ComponentStore) EntitiesWith(t reflect.Type) []EntityKey {
	col := s.column(t)
	if col == nil {
		return nil
	}
	return col.Entities()
}

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Register stores component for entity, overwriting any previous value of type T.
// Overwriting a borrowed component panics with ErrBorrowConflict.
func Register[T any](p StoreProvider, entity EntityKey, component T) {
	columnOrCreate[T](p.Store()).Put(entity, component)
}

// GetComponent returns the component of type T for entity, or nil.
func GetComponent[T any](p StoreProvider, entity EntityKey) *T {
	col := columnOf[T](p.Store())
	if col == nil {
		return nil
	}
	return col.Get(entity)
}

// HasComponent reports whether entity carries a component of type T.
func HasComponent[T any](p StoreProvider, entity EntityKey) bool {
	col := columnOf[T](p.Store())
	return col != nil && col.Has(entity)
}

// RemoveComponent detaches the component of type T from entity and returns it.
func RemoveComponent[T any](p StoreProvider, entity EntityKey) (T, bool) {
	col := columnOf[T](p.Store())
	if col == nil {
		var zero T
		return zero, false
	}
	return col.Take(entity)
}

// UpdateComponent runs fn on the component of type T while holding the column's write lock.
// It returns false if entity has no such component and panics with
// ErrBorrowConflict if the component is borrowed.
func UpdateComponent[T any](p StoreProvider, entity EntityKey, fn func(*T)) bool {
	col := columnOf[T](p.Store())
	return col != nil && col.Update(entity, fn)
}

// Ref is a checked borrow of one component slot. Release must be called exactly once.
//
// Removing the component while it is borrowed detaches the slot from its
// entity; the ref keeps reading the removed value and the slot is reused only
// after the last ref is released. Overwriting or updating a borrowed component
// panics with ErrBorrowConflict.
type Ref[T any] struct {
	value   *T
	slot    *componentSlot[T]
	col     *genericComponentStorage[T]
	mutable bool
}

// Value returns the borrowed component.
func (r *Ref[T]) Value() *T {
	return r.value
}

// Release ends the borrow.
func (r *Ref[T]) Release() {
	if r.slot == nil {
		return
	}
	var last bool
	if r.mutable {
		last = r.slot.borrows.CompareAndSwap(slotBorrowed, slotFree)
	} else {
		last = r.slot.borrows.Add(-1) == slotFree
	}
	if last {
		r.col.settle(r.slot)
	}
	r.slot = nil
	r.value = nil
	r.col = nil
}

// Borrow takes a shared borrow of the component of type T. It returns nil if
// entity has no such component and panics with ErrBorrowConflict if the slot
// is mutably borrowed.
func Borrow[T any](p StoreProvider, entity EntityKey) *Ref[T] {
	col := columnOf[T](p.Store())
	if col == nil {
		return nil
	}
	slot := col.borrow(entity, false)
	if slot == nil {
		return nil
	}
	return &Ref[T]{value: &slot.value, slot: slot, col: col}
}

// BorrowMut takes an exclusive borrow of the component of type T. It returns
// nil if entity has no such component and panics with ErrBorrowConflict if
// any other borrow of the slot is live.
func BorrowMut[T any](p StoreProvider, entity EntityKey) *Ref[T] {
	col := columnOf[T](p.Store())
	if col == nil {
		return nil
	}
	slot := col.borrow(entity, true)
	if slot == nil {
		return nil
	}
	return &Ref[T]{value: &slot.value, slot: slot, col: col, mutable: true}
}
