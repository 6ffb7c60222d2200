package treecs

import "reflect"

// iComponentStorage is an interface for a type-erased component column.
type iComponentStorage interface {
	Type() reflect.Type
	GetAny(entity EntityKey) any
	Has(entity EntityKey) bool
	Delete(entity EntityKey) bool
	Len() int
	Clear()
	Entities() []EntityKey
}
