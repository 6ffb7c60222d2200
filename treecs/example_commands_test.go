package treecs_test

import (
	"fmt"

	"github.com/plus3/visora/treecs"
)

type Health struct {
	Current int
}

type PrunePass struct{}

func (PrunePass) Execute(frame *treecs.Frame) {
	pruned := 0
	for step, row := range treecs.NewBreadthQuery(frame.Tree, treecs.Join2(treecs.Key(), treecs.Required[Health]())).All() {
		if step == treecs.Enter && row.Second.Current <= 0 {
			frame.Commands.Remove(row.First)
			pruned++
		}
	}
	if pruned > 0 {
		fmt.Printf("Queued %d subtrees for removal\n", pruned)
	}
}

// ExampleCommands removes dead nodes found during a walk. The removals are
// applied when the frame ends, so the walk never sees a half-removed subtree.
func ExampleCommands() {
	tree := treecs.New()
	root, _ := tree.EntityMut(tree.Root())
	for _, hp := range []int{0, 50, 100} {
		child := root.NewChild()
		treecs.AddComponent(child, Health{Current: hp})
		child.NewChild()
	}

	passes := treecs.NewPasses(tree)
	passes.Register(PrunePass{})
	passes.Once(1.0)

	fmt.Printf("Remaining entities: %d\n", tree.Len())

	// Output:
	// Queued 1 subtrees for removal
	// Remaining entities: 5
}
