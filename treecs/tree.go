package treecs

import (
	"iter"
	"reflect"
)

type linkSlot struct {
	generation uint32
	live       bool
	link       LinkData
}

// Treecs is an arena of tree-linked entities with a component store attached.
// It always holds at least one entity, the root.
//
// Structural operations (Add, Remove) need exclusive access to the tree for
// the duration of the call.
type Treecs struct {
	slots      []linkSlot
	freeSlots  []uint32
	live       int
	root       EntityKey
	components *ComponentStore
	resources  map[reflect.Type]any
}

// New creates a tree holding a lone root with no components.
func New() *Treecs {
	t := &Treecs{
		components: NewComponentStore(),
		resources:  make(map[reflect.Type]any),
	}
	t.root = t.insert(newLinkData())
	return t
}

// Store returns the component store of the tree.
func (t *Treecs) Store() *ComponentStore {
	return t.components
}

// Root returns the current root. The root changes identity when it is removed.
func (t *Treecs) Root() EntityKey {
	return t.root
}

// Len returns the number of live entities, root included.
func (t *Treecs) Len() int {
	return t.live
}

// Contains reports whether entity is live.
func (t *Treecs) Contains(entity EntityKey) bool {
	_, ok := t.slotOf(entity)
	return ok
}

// LinkData returns the structural record of a live entity.
// The record aliases the arena and must not be kept across structural changes.
func (t *Treecs) LinkData(entity EntityKey) (*LinkData, bool) {
	slot, ok := t.slotOf(entity)
	if !ok {
		return nil, false
	}
	return &slot.link, true
}

// Add creates a new entity as the rightmost child of parent.
// It fails if parent is not live.
func (t *Treecs) Add(parent EntityKey) (EntityKey, bool) {
	if !t.Contains(parent) {
		return 0, false
	}
	key := t.insert(newLinkDataWithParent(parent))
	// insert may grow slots, so resolve the parent afterwards
	parentSlot, _ := t.slotOf(parent)
	parentSlot.link.children.PushRight(key)
	return key, true
}

// Remove detaches entity from its parent and deletes it together with its
// whole subtree, purging every component of every removed entity.
//
// Removing the root clears the entire tree and replaces the root with a
// fresh, empty entity.
func (t *Treecs) Remove(entity EntityKey) bool {
	slot, ok := t.slotOf(entity)
	if !ok {
		return false
	}

	parent, hasParent := slot.link.Parent()
	if !hasParent {
		t.reset()
		return true
	}

	parentSlot, _ := t.slotOf(parent)
	RemoveChild(&parentSlot.link.children, entity)

	stack := []EntityKey{entity}
	for len(stack) > 0 {
		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		link := t.release(key)
		t.components.RemoveEntity(key)
		for child := range link.children.Values() {
			stack = append(stack, child)
		}
	}
	return true
}

// Keys yields every live entity in slot order.
func (t *Treecs) Keys() iter.Seq[EntityKey] {
	return func(yield func(EntityKey) bool) {
		for i := range t.slots {
			slot := &t.slots[i]
			if !slot.live {
				continue
			}
			if !yield(NewEntityKey(slot.generation, uint32(i))) {
				return
			}
		}
	}
}

// Depth returns the number of ancestors of entity, 0 for the root.
func (t *Treecs) Depth(entity EntityKey) (int, bool) {
	if !t.Contains(entity) {
		return 0, false
	}
	depth := -1
	for range NewAncestorIter(t, entity).Keys() {
		depth++
	}
	return depth, true
}

func (t *Treecs) slotOf(entity EntityKey) (*linkSlot, bool) {
	idx := int(entity.Index())
	if idx >= len(t.slots) {
		return nil, false
	}
	slot := &t.slots[idx]
	if !slot.live || slot.generation != entity.Generation() {
		return nil, false
	}
	return slot, true
}

func (t *Treecs) insert(link LinkData) EntityKey {
	var idx uint32
	if n := len(t.freeSlots); n > 0 {
		idx = t.freeSlots[n-1]
		t.freeSlots = t.freeSlots[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, linkSlot{generation: 1})
	}

	slot := &t.slots[idx]
	slot.live = true
	slot.link = link
	t.live++
	return NewEntityKey(slot.generation, idx)
}

// release frees the slot of a live entity and returns its former record.
// The generation is bumped so the old key never aliases a later entity.
// A slot whose generation wraps is retired for good instead of reused.
func (t *Treecs) release(entity EntityKey) LinkData {
	idx := entity.Index()
	slot := &t.slots[idx]
	link := slot.link

	slot.live = false
	slot.link = LinkData{}
	slot.generation++
	if slot.generation != 0 {
		t.freeSlots = append(t.freeSlots, idx)
	}
	t.live--
	return link
}

func (t *Treecs) reset() {
	for i := range t.slots {
		slot := &t.slots[i]
		if slot.live {
			t.release(NewEntityKey(slot.generation, uint32(i)))
		}
	}
	t.components.Clear()
	t.root = t.insert(newLinkData())
}
