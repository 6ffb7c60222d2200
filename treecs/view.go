package treecs

import (
	"reflect"
	"unsafe"
)

// View is a projection described by a struct type.
// The type T should be a struct with embedded or named pointer fields, one per component type.
// Embedded fields are always required; named fields can be marked as optional using the
// `treecs:"optional"` struct tag.
//
//	type layoutRow struct {
//		*Size
//		Padding *Insets `treecs:"optional"`
//	}
//	q := treecs.NewBreadthQuery[layoutRow](tree, treecs.NewView[layoutRow]().Fetch)
type View[T any] struct {
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr
}

// NewView creates a new view for the given struct type
func NewView[T any]() *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	types := make([]reflect.Type, 0, structType.NumField())
	optional := make([]bool, 0, structType.NumField())
	fieldOffset := make([]uintptr, 0, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		types = append(types, fieldType.Elem())
		fieldOffset = append(fieldOffset, field.Offset)

		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("treecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid treecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}
		optional = append(optional, isOptional)
	}

	return &View[T]{
		types:       types,
		optional:    optional,
		fieldOffset: fieldOffset,
	}
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is missing any required components
// Optional components are set to nil if not present
func (v *View[T]) Fill(store *ComponentStore, entity EntityKey, ptr *T) bool {
	structPtr := unsafe.Pointer(ptr)

	for i, componentType := range v.types {
		component := store.getErased(componentType, entity)
		fieldPtr := unsafe.Add(structPtr, v.fieldOffset[i])

		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}
		*(*unsafe.Pointer)(fieldPtr) = dataPointer(component)
	}
	return true
}

// Fetch resolves the view for entity. Its signature matches Projection, so
// v.Fetch can be handed straight to a query.
func (v *View[T]) Fetch(store *ComponentStore, entity EntityKey) (T, bool) {
	var result T
	ok := v.Fill(store, entity, &result)
	return result, ok
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(p StoreProvider, entity EntityKey) *T {
	var result T
	if !v.Fill(p.Store(), entity, &result) {
		return nil
	}
	return &result
}

// Types returns the component types named by the view, in field order.
func (v *View[T]) Types() []reflect.Type {
	return v.types
}
