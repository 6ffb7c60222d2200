// Package metrics exports the shape of a treecs tree as Prometheus metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/plus3/visora/treecs"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "treecs").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Locker, if set, is held while the tree is read. Use the lock that
	// guards structural changes when the tree is mutated on another goroutine.
	Locker sync.Locker
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithLocker sets the lock held while collecting.
func WithLocker(l sync.Locker) Option {
	return func(c *Config) {
		c.Locker = l
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "treecs",
	}
}

// Collector is a prometheus.Collector reporting TreeStats of one tree.
type Collector struct {
	tree   *treecs.Treecs
	locker sync.Locker

	entities   *prometheus.Desc
	freeSlots  *prometheus.Desc
	maxDepth   *prometheus.Desc
	leaves     *prometheus.Desc
	components *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for tree.
func NewCollector(tree *treecs.Treecs, opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(config.Namespace, config.Subsystem, name),
			help, labels, config.ConstLabels,
		)
	}

	return &Collector{
		tree:       tree,
		locker:     config.Locker,
		entities:   desc("entities", "Number of live entities, root included"),
		freeSlots:  desc("free_slots", "Number of arena slots waiting for reuse"),
		maxDepth:   desc("max_depth", "Depth of the deepest entity, 0 for a lone root"),
		leaves:     desc("leaves", "Number of entities without children"),
		components: desc("components", "Number of stored components by type", "type"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entities
	ch <- c.freeSlots
	ch <- c.maxDepth
	ch <- c.leaves
	ch <- c.components
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.locker != nil {
		c.locker.Lock()
	}
	stats := c.tree.CollectStats()
	if c.locker != nil {
		c.locker.Unlock()
	}

	ch <- prometheus.MustNewConstMetric(c.entities, prometheus.GaugeValue, float64(stats.EntityCount))
	ch <- prometheus.MustNewConstMetric(c.freeSlots, prometheus.GaugeValue, float64(stats.FreeSlots))
	ch <- prometheus.MustNewConstMetric(c.maxDepth, prometheus.GaugeValue, float64(stats.MaxDepth))
	ch <- prometheus.MustNewConstMetric(c.leaves, prometheus.GaugeValue, float64(stats.LeafCount))
	for _, comp := range stats.ComponentBreakdown {
		ch <- prometheus.MustNewConstMetric(c.components, prometheus.GaugeValue, float64(comp.Count), comp.Name)
	}
}
