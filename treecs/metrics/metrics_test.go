package metrics_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/visora/treecs"
	"github.com/plus3/visora/treecs/metrics"
)

type Label struct {
	Text string
}

func TestCollector(t *testing.T) {
	tree := treecs.New()
	a, _ := tree.Add(tree.Root())
	b, _ := tree.Add(a)
	tree.Add(tree.Root())
	treecs.Register(tree, a, Label{Text: "a"})
	treecs.Register(tree, b, Label{Text: "b"})

	var mu sync.Mutex
	collector := metrics.NewCollector(tree, metrics.WithSubsystem("ui"), metrics.WithLocker(&mu))

	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, registry.Register(collector))

	expected := `
# HELP treecs_ui_entities Number of live entities, root included
# TYPE treecs_ui_entities gauge
treecs_ui_entities 4
# HELP treecs_ui_max_depth Depth of the deepest entity, 0 for a lone root
# TYPE treecs_ui_max_depth gauge
treecs_ui_max_depth 2
# HELP treecs_ui_leaves Number of entities without children
# TYPE treecs_ui_leaves gauge
treecs_ui_leaves 2
# HELP treecs_ui_components Number of stored components by type
# TYPE treecs_ui_components gauge
treecs_ui_components{type="metrics_test.Label"} 2
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"treecs_ui_entities", "treecs_ui_max_depth", "treecs_ui_leaves", "treecs_ui_components")
	assert.NoError(t, err)
}

func TestCollectorAfterRemoval(t *testing.T) {
	tree := treecs.New()
	a, _ := tree.Add(tree.Root())
	tree.Add(a)
	tree.Remove(a)

	collector := metrics.NewCollector(tree)
	assert.Equal(t, 1, testutil.CollectAndCount(collector, "treecs_entities"))
	assert.Equal(t, 0, testutil.CollectAndCount(collector, "treecs_components"))

	expected := `
# HELP treecs_free_slots Number of arena slots waiting for reuse
# TYPE treecs_free_slots gauge
treecs_free_slots 2
`
	assert.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected), "treecs_free_slots"))
}
