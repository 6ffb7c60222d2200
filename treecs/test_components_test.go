package treecs_test

import (
	"github.com/plus3/visora/treecs"
)

// Common test component types
type Position struct {
	X, Y int
}

type Name struct {
	Value string
}

type Size struct {
	W, H int
}

type Padding struct {
	All int
}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string

type Inventory struct {
	Items []string
}

type Animal interface {
	Noise() string
}

type Dog struct{}

func (Dog) Noise() string { return "Bark" }

type Cat struct{}

func (Cat) Noise() string { return "Meow" }

// event is a flattened traversal step used to compare whole streams with cmp.Diff.
type event struct {
	Step treecs.Step
	Key  treecs.EntityKey
}

func drainBreadth(it *treecs.BreadthIter) []event {
	var out []event
	for step, key := range it.Events() {
		out = append(out, event{Step: step, Key: key})
	}
	return out
}

// sampleTree builds
//
//	root
//	├── a
//	│   ├── a1
//	│   └── a2
//	└── b
func sampleTree() (tree *treecs.Treecs, a, a1, a2, b treecs.EntityKey) {
	tree = treecs.New()
	a, _ = tree.Add(tree.Root())
	a1, _ = tree.Add(a)
	a2, _ = tree.Add(a)
	b, _ = tree.Add(tree.Root())
	return
}
