package treecs

import "reflect"

// TreeStats is a snapshot of the size and shape of a tree.
type TreeStats struct {
	EntityCount        int
	FreeSlots          int
	MaxDepth           int
	LeafCount          int
	ComponentTypeCount int
	ComponentCount     int
	ComponentBreakdown []ComponentStats
}

// ComponentStats counts the stored components of one type.
type ComponentStats struct {
	Type  reflect.Type
	Name  string
	Count int
}

// CollectStats walks the tree and the component store.
func (t *Treecs) CollectStats() TreeStats {
	stats := TreeStats{
		EntityCount: t.live,
		FreeSlots:   len(t.freeSlots),
	}

	depth := -1
	it := NewBreadthIter(t)
	for step, key := range it.Events() {
		if step == Leave {
			depth--
			continue
		}
		depth++
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		if link, ok := t.LinkData(key); ok && link.Children().Len() == 0 {
			stats.LeafCount++
		}
	}

	for _, typ := range t.components.Types() {
		n := t.components.Count(typ)
		if n == 0 {
			continue
		}
		stats.ComponentBreakdown = append(stats.ComponentBreakdown, ComponentStats{
			Type:  typ,
			Name:  typ.String(),
			Count: n,
		})
		stats.ComponentCount += n
	}
	stats.ComponentTypeCount = len(stats.ComponentBreakdown)
	return stats
}
