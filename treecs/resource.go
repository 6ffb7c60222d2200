package treecs

import "reflect"

// Resource provides access to a single value of type T owned by a tree but
// not attached to any entity, such as a viewport size or a theme. Resources
// survive removal of the root.
type Resource[T any] struct {
	tree *Treecs
	ptr  *T
}

// NewResource creates a Resource accessor for the given tree.
// If initializer is provided and the resource doesn't exist yet,
// it will be created with the initializer value. Otherwise, a zero value is used.
func NewResource[T any](tree *Treecs, initializer ...T) *Resource[T] {
	ptr := GetResource[T](tree)
	if ptr == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		ptr = SetResource(tree, value)
	}
	return &Resource[T]{tree: tree, ptr: ptr}
}

// Init binds the accessor to a tree.
// This is called automatically by Passes during pass registration.
func (r *Resource[T]) Init(tree *Treecs) {
	r.tree = tree
	r.ptr = nil
	r.updateCache()
}

// Get returns a pointer to the resource, or nil if it has not been set.
func (r *Resource[T]) Get() *T {
	if r.ptr == nil {
		r.updateCache()
	}
	return r.ptr
}

// Exists returns true if the resource has been set on the tree
func (r *Resource[T]) Exists() bool {
	return r.Get() != nil
}

func (r *Resource[T]) updateCache() {
	if r.tree == nil {
		return
	}
	r.ptr = GetResource[T](r.tree)
}

// SetResource stores value as the tree's resource of type T and returns a pointer to it.
// An existing resource of the same type is overwritten in place.
func SetResource[T any](tree *Treecs, value T) *T {
	if ptr := GetResource[T](tree); ptr != nil {
		*ptr = value
		return ptr
	}
	ptr := &value
	tree.resources[reflect.TypeFor[T]()] = ptr
	return ptr
}

// GetResource returns the tree's resource of type T, or nil.
func GetResource[T any](tree *Treecs) *T {
	v, ok := tree.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return v.(*T)
}
