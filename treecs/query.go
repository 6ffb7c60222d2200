package treecs

import "iter"

// Row is one resolved query result.
type Row[M, T any] struct {
	Meta M
	Key  EntityKey
	Data T
}

// Query pairs a traversal with a projection. Entities the projection rejects
// are skipped silently.
type Query[M, T any] struct {
	cursor  Cursor[M]
	store   *ComponentStore
	project Projection[T]
}

// NewQuery creates a query draining cursor and resolving every key through project.
func NewQuery[M, T any](p StoreProvider, cursor Cursor[M], project Projection[T]) *Query[M, T] {
	return &Query[M, T]{
		cursor:  cursor,
		store:   p.Store(),
		project: project,
	}
}

// NewAncestorQuery walks from start up to the root.
func NewAncestorQuery[T any](tree *Treecs, start EntityKey, project Projection[T]) *Query[int, T] {
	return NewQuery[int, T](tree, NewAncestorIter(tree, start), project)
}

// Next returns the next entity that resolves.
func (q *Query[M, T]) Next() (Row[M, T], bool) {
	for {
		meta, key, ok := q.cursor.Next()
		if !ok {
			return Row[M, T]{}, false
		}
		if data, ok := q.project(q.store, key); ok {
			return Row[M, T]{Meta: meta, Key: key, Data: data}, true
		}
	}
}

// Restart replays the query from the top.
func (q *Query[M, T]) Restart() {
	q.cursor.Restart()
}

// All returns an iterator over the remaining metadata/data pairs.
func (q *Query[M, T]) All() iter.Seq2[M, T] {
	return func(yield func(M, T) bool) {
		for {
			row, ok := q.Next()
			if !ok || !yield(row.Meta, row.Data) {
				return
			}
		}
	}
}

// Rows returns an iterator over the remaining rows.
func (q *Query[M, T]) Rows() iter.Seq[Row[M, T]] {
	return func(yield func(Row[M, T]) bool) {
		for {
			row, ok := q.Next()
			if !ok || !yield(row) {
				return
			}
		}
	}
}

// Collect drains the remaining rows into a slice.
func (q *Query[M, T]) Collect() []Row[M, T] {
	var out []Row[M, T]
	for row := range q.Rows() {
		out = append(out, row)
	}
	return out
}

// BreadthQuery is a Query over an enter/leave traversal that can flip its sibling order.
type BreadthQuery[T any] struct {
	*Query[Step, T]
	it *BreadthIter
}

// NewBreadthQuery creates a forward enter/leave query from the root.
func NewBreadthQuery[T any](tree *Treecs, project Projection[T]) *BreadthQuery[T] {
	it := NewBreadthIter(tree)
	return &BreadthQuery[T]{Query: NewQuery[Step, T](tree, it, project), it: it}
}

// NewReversedBreadthQuery creates an enter/leave query that visits siblings right to left.
func NewReversedBreadthQuery[T any](tree *Treecs, project Projection[T]) *BreadthQuery[T] {
	it := NewReversedBreadthIter(tree)
	return &BreadthQuery[T]{Query: NewQuery[Step, T](tree, it, project), it: it}
}

// Reverse flips the sibling order and restarts from the root.
func (q *BreadthQuery[T]) Reverse() {
	q.it.Reverse()
}

// Reversed reports whether siblings are visited right to left.
func (q *BreadthQuery[T]) Reversed() bool {
	return q.it.Reversed()
}
