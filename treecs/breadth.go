package treecs

import "iter"

// Step tells whether a traversal event opens or closes a node.
type Step uint8

const (
	// Enter is emitted the first time a node is reached, before any of its descendants.
	Enter Step = iota
	// Leave is emitted once every descendant of the node has been left.
	Leave
)

func (s Step) String() string {
	if s == Leave {
		return "Leave"
	}
	return "Enter"
}

// Cursor is a restartable traversal over entity keys. M is the metadata a
// traversal attaches to every key it yields.
type Cursor[M any] interface {
	Next() (M, EntityKey, bool)
	Restart()
}

type breadthFrame struct {
	step Step
	key  EntityKey
}

// BreadthIter walks the tree depth first from the root and emits an Enter and
// a Leave event per node, like start and end tags. Each Leave follows the
// Leave of every descendant.
//
// Siblings are visited left to right; a reversed iterator visits them right
// to left. The tree must not change structurally during a walk.
type BreadthIter struct {
	tree     *Treecs
	stack    []breadthFrame
	reversed bool
}

// NewBreadthIter creates a forward iterator positioned at the root.
func NewBreadthIter(tree *Treecs) *BreadthIter {
	it := &BreadthIter{tree: tree}
	it.Restart()
	return it
}

// NewReversedBreadthIter creates an iterator that visits siblings right to left.
func NewReversedBreadthIter(tree *Treecs) *BreadthIter {
	it := &BreadthIter{tree: tree, reversed: true}
	it.Restart()
	return it
}

// Next returns the next event.
func (it *BreadthIter) Next() (Step, EntityKey, bool) {
	n := len(it.stack)
	if n == 0 {
		return Enter, 0, false
	}
	frame := it.stack[n-1]
	it.stack = it.stack[:n-1]

	if frame.step == Leave {
		return Leave, frame.key, true
	}

	it.stack = append(it.stack, breadthFrame{step: Leave, key: frame.key})
	link, ok := it.tree.LinkData(frame.key)
	if !ok {
		// the entity vanished under the iterator; emit its pair and skip the subtree
		return Enter, frame.key, true
	}

	children := link.Children()
	if it.reversed {
		for _, child := range children.All() {
			it.stack = append(it.stack, breadthFrame{step: Enter, key: child})
		}
	} else {
		for _, child := range children.Backward() {
			it.stack = append(it.stack, breadthFrame{step: Enter, key: child})
		}
	}
	return Enter, frame.key, true
}

// Restart rewinds the iterator to the current root of its tree.
func (it *BreadthIter) Restart() {
	it.stack = append(it.stack[:0], breadthFrame{step: Enter, key: it.tree.Root()})
}

// Reverse flips the sibling order and restarts.
func (it *BreadthIter) Reverse() {
	it.reversed = !it.reversed
	it.Restart()
}

// Reversed reports whether siblings are visited right to left.
func (it *BreadthIter) Reversed() bool {
	return it.reversed
}

// Events returns an iterator over the remaining events.
func (it *BreadthIter) Events() iter.Seq2[Step, EntityKey] {
	return func(yield func(Step, EntityKey) bool) {
		for {
			step, key, ok := it.Next()
			if !ok || !yield(step, key) {
				return
			}
		}
	}
}
