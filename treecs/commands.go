package treecs

// Commands buffers structural changes so they can be made while a query is
// walking the tree, and applied once the walk is over.
type Commands struct {
	adds      []addCommand
	removes   []EntityKey
	registers []registerCommand
	defers    []func()
}

// NewCommands creates an empty buffer.
func NewCommands() *Commands {
	return &Commands{}
}

type addCommand struct {
	parent EntityKey
	then   func(EntityMut)
}

type registerCommand struct {
	entity EntityKey
	apply  func(*Treecs)
}

// Add queues the creation of a child of parent. then, if not nil, runs on the new entity.
func (c *Commands) Add(parent EntityKey, then func(EntityMut)) {
	c.adds = append(c.adds, addCommand{parent: parent, then: then})
}

// Remove queues the removal of entity and its subtree.
func (c *Commands) Remove(entity EntityKey) {
	c.removes = append(c.removes, entity)
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.adds) + len(c.removes) + len(c.registers) + len(c.defers)
}

// QueueComponent queues the registration of component on entity.
func QueueComponent[T any](c *Commands, entity EntityKey, component T) {
	c.registers = append(c.registers, registerCommand{
		entity: entity,
		apply: func(tree *Treecs) {
			Register(tree, entity, component)
		},
	})
}

// Flush applies every queued operation to tree and resets the buffer.
// Removals run first; registrations and additions aimed at entities that are
// no longer live are dropped.
func (c *Commands) Flush(tree *Treecs) {
	for _, entity := range c.removes {
		tree.Remove(entity)
	}

	for _, cmd := range c.registers {
		if tree.Contains(cmd.entity) {
			cmd.apply(tree)
		}
	}

	for _, cmd := range c.adds {
		key, ok := tree.Add(cmd.parent)
		if !ok {
			continue
		}
		if cmd.then != nil {
			cmd.then(EntityMut{Entity: Entity{tree: tree, key: key}})
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	clear(c.adds)
	clear(c.registers)
	clear(c.defers)
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.registers = c.registers[:0]
	c.defers = c.defers[:0]
}
