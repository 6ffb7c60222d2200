package treecs

// Projection resolves the data a query pulls for one entity. It returns false
// when the entity lacks a required component, which makes the query skip it.
type Projection[T any] func(store *ComponentStore, entity EntityKey) (T, bool)

// Required fetches the component of type C and skips entities without one.
func Required[C any]() Projection[*C] {
	return func(store *ComponentStore, entity EntityKey) (*C, bool) {
		c := GetComponent[C](store, entity)
		return c, c != nil
	}
}

// Optional fetches the component of type C, yielding nil instead of skipping.
func Optional[C any]() Projection[*C] {
	return func(store *ComponentStore, entity EntityKey) (*C, bool) {
		return GetComponent[C](store, entity), true
	}
}

// Key resolves to the entity key itself and never skips.
func Key() Projection[EntityKey] {
	return func(_ *ComponentStore, entity EntityKey) (EntityKey, bool) {
		return entity, true
	}
}

// Pair holds the results of two joined projections.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple holds the results of three joined projections.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Quad holds the results of four joined projections.
type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// Join2 combines two projections; the entity is skipped if either skips.
func Join2[A, B any](a Projection[A], b Projection[B]) Projection[Pair[A, B]] {
	return func(store *ComponentStore, entity EntityKey) (Pair[A, B], bool) {
		var out Pair[A, B]
		var ok bool
		if out.First, ok = a(store, entity); !ok {
			return out, false
		}
		if out.Second, ok = b(store, entity); !ok {
			return out, false
		}
		return out, true
	}
}

// Join3 combines three projections.
func Join3[A, B, C any](a Projection[A], b Projection[B], c Projection[C]) Projection[Triple[A, B, C]] {
	ab := Join2(a, b)
	return func(store *ComponentStore, entity EntityKey) (Triple[A, B, C], bool) {
		var out Triple[A, B, C]
		head, ok := ab(store, entity)
		if !ok {
			return out, false
		}
		out.First, out.Second = head.First, head.Second
		if out.Third, ok = c(store, entity); !ok {
			return out, false
		}
		return out, true
	}
}

// Join4 combines four projections.
func Join4[A, B, C, D any](a Projection[A], b Projection[B], c Projection[C], d Projection[D]) Projection[Quad[A, B, C, D]] {
	abc := Join3(a, b, c)
	return func(store *ComponentStore, entity EntityKey) (Quad[A, B, C, D], bool) {
		var out Quad[A, B, C, D]
		head, ok := abc(store, entity)
		if !ok {
			return out, false
		}
		out.First, out.Second, out.Third = head.First, head.Second, head.Third
		if out.Fourth, ok = d(store, entity); !ok {
			return out, false
		}
		return out, true
	}
}
