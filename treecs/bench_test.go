package treecs_test

import (
	"testing"

	"github.com/plus3/visora/treecs"
)

func wideTree(fanout, depth int) *treecs.Treecs {
	tree := treecs.New()
	level := []treecs.EntityKey{tree.Root()}
	for d := 0; d < depth; d++ {
		var next []treecs.EntityKey
		for _, parent := range level {
			for i := 0; i < fanout; i++ {
				child, _ := tree.Add(parent)
				treecs.Register(tree, child, Position{X: i, Y: d})
				next = append(next, child)
			}
		}
		level = next
	}
	return tree
}

func BenchmarkAdd(b *testing.B) {
	tree := treecs.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Add(tree.Root())
	}
}

func BenchmarkAddRemove(b *testing.B) {
	tree := treecs.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		child, _ := tree.Add(tree.Root())
		tree.Remove(child)
	}
}

func BenchmarkRegister(b *testing.B) {
	tree := treecs.New()
	keys := make([]treecs.EntityKey, b.N)
	for i := range keys {
		keys[i], _ = tree.Add(tree.Root())
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		treecs.Register(tree, keys[i], Position{X: i})
	}
}

func BenchmarkGetComponent(b *testing.B) {
	tree := treecs.New()
	child, _ := tree.Add(tree.Root())
	treecs.Register(tree, child, Position{X: 1})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = treecs.GetComponent[Position](tree, child)
	}
}

func BenchmarkBreadthIter(b *testing.B) {
	tree := wideTree(8, 4)
	it := treecs.NewBreadthIter(tree)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it.Restart()
		for range it.Events() {
		}
	}
}

func BenchmarkBreadthQuery(b *testing.B) {
	tree := wideTree(8, 4)
	q := treecs.NewBreadthQuery(tree, treecs.Required[Position]())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Restart()
		sum := 0
		for _, pos := range q.All() {
			sum += pos.X
		}
		_ = sum
	}
}

func BenchmarkViewQuery(b *testing.B) {
	tree := wideTree(8, 4)
	type row struct {
		*Position
		Name *Name `treecs:"optional"`
	}
	q := treecs.NewBreadthQuery[row](tree, treecs.NewView[row]().Fetch)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Restart()
		for range q.All() {
		}
	}
}

func BenchmarkRemoveSubtree(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		tree := wideTree(4, 4)
		b.StartTimer()
		tree.Remove(tree.Root())
	}
}
