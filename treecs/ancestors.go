package treecs

import "iter"

// AncestorIter yields an entity, then its parent, and so on up to and including the root.
// The metadata of each key is its distance from the start.
type AncestorIter struct {
	tree    *Treecs
	start   EntityKey
	current EntityKey
	depth   int
	done    bool
}

// NewAncestorIter creates an iterator starting at start.
func NewAncestorIter(tree *Treecs, start EntityKey) *AncestorIter {
	it := &AncestorIter{tree: tree, start: start}
	it.Restart()
	return it
}

// Next returns the next key on the chain with its distance from the start.
func (it *AncestorIter) Next() (int, EntityKey, bool) {
	if it.done {
		return 0, 0, false
	}
	link, ok := it.tree.LinkData(it.current)
	if !ok {
		it.done = true
		return 0, 0, false
	}

	key, depth := it.current, it.depth
	if parent, ok := link.Parent(); ok {
		it.current = parent
		it.depth++
	} else {
		it.done = true
	}
	return depth, key, true
}

// Restart rewinds to the starting entity.
func (it *AncestorIter) Restart() {
	it.current = it.start
	it.depth = 0
	it.done = false
}

// Keys returns an iterator over the remaining keys.
func (it *AncestorIter) Keys() iter.Seq[EntityKey] {
	return func(yield func(EntityKey) bool) {
		for {
			_, key, ok := it.Next()
			if !ok || !yield(key) {
				return
			}
		}
	}
}
