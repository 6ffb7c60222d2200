package treecs_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/visora/treecs"
)

func TestAncestorsEndAtRoot(t *testing.T) {
	tree, a, a1, _, _ := sampleTree()
	leaf, _ := tree.Add(a1)

	it := treecs.NewAncestorIter(tree, leaf)
	var depths []int
	var keys []treecs.EntityKey
	for {
		depth, key, ok := it.Next()
		if !ok {
			break
		}
		depths = append(depths, depth)
		keys = append(keys, key)
	}

	assert.Equal(t, []treecs.EntityKey{leaf, a1, a, tree.Root()}, keys)
	assert.Equal(t, []int{0, 1, 2, 3}, depths)

	it.Restart()
	assert.Equal(t, keys, slices.Collect(it.Keys()))
}

func TestAncestorsOfRoot(t *testing.T) {
	tree := treecs.New()
	keys := slices.Collect(treecs.NewAncestorIter(tree, tree.Root()).Keys())
	assert.Equal(t, []treecs.EntityKey{tree.Root()}, keys)
}

func TestAncestorsOfDeadEntity(t *testing.T) {
	tree, a, a1, _, _ := sampleTree()
	tree.Remove(a)

	it := treecs.NewAncestorIter(tree, a1)
	_, _, ok := it.Next()
	assert.False(t, ok)
}
