package treecs

// Entity is a read-only view of one node of a tree.
//
// Liveness is checked when the view is created, not on every call. A view
// must not be kept across structural changes made through another handle.
type Entity struct {
	tree *Treecs
	key  EntityKey
}

// EntityMut is a read-write view of one node of a tree. It shares the
// liveness rules of Entity.
type EntityMut struct {
	Entity
}

// Entity returns a read-only view of key, or false if key is not live.
func (t *Treecs) Entity(key EntityKey) (Entity, bool) {
	if !t.Contains(key) {
		return Entity{}, false
	}
	return Entity{tree: t, key: key}, true
}

// EntityMut returns a read-write view of key, or false if key is not live.
func (t *Treecs) EntityMut(key EntityKey) (EntityMut, bool) {
	e, ok := t.Entity(key)
	return EntityMut{Entity: e}, ok
}

func (e Entity) linkData() *LinkData {
	link, ok := e.tree.LinkData(e.key)
	if !ok {
		panic("treecs: entity view used after its entity was removed")
	}
	return link
}

// Key returns the key of the viewed entity.
func (e Entity) Key() EntityKey {
	return e.key
}

// Parent returns a view of the parent, or false for the root.
func (e Entity) Parent() (Entity, bool) {
	parent, ok := e.linkData().Parent()
	if !ok {
		return Entity{}, false
	}
	return Entity{tree: e.tree, key: parent}, true
}

// Child returns a view of the child at index.
func (e Entity) Child(index int) (Entity, bool) {
	child, ok := e.linkData().Children().Get(index)
	if !ok {
		return Entity{}, false
	}
	return Entity{tree: e.tree, key: child}, true
}

// ChildCount returns the number of children.
func (e Entity) ChildCount() int {
	return e.linkData().Children().Len()
}

// Parent returns a read-write view of the parent, or false for the root.
func (e EntityMut) Parent() (EntityMut, bool) {
	p, ok := e.Entity.Parent()
	return EntityMut{Entity: p}, ok
}

// Child returns a read-write view of the child at index.
func (e EntityMut) Child(index int) (EntityMut, bool) {
	c, ok := e.Entity.Child(index)
	return EntityMut{Entity: c}, ok
}

// NewChild appends a new child and returns a view of it.
func (e EntityMut) NewChild() EntityMut {
	key, ok := e.tree.Add(e.key)
	if !ok {
		panic("treecs: entity view used after its entity was removed")
	}
	return EntityMut{Entity: Entity{tree: e.tree, key: key}}
}

// Remove deletes the entity and its subtree. The view is dead afterwards and
// calling Remove on a dead view panics.
func (e EntityMut) Remove() {
	if !e.tree.Remove(e.key) {
		panic("treecs: entity view used after its entity was removed")
	}
}

// AsRef downgrades the view to read-only.
func (e EntityMut) AsRef() Entity {
	return e.Entity
}

// ComponentOf returns the component of type T on the viewed entity, or nil.
func ComponentOf[T any](e Entity) *T {
	return GetComponent[T](e.tree, e.key)
}

// AddComponent attaches component to the viewed entity, replacing any value of type T.
func AddComponent[T any](e EntityMut, component T) {
	Register(e.tree, e.key, component)
}

// DetachComponent removes the component of type T from the viewed entity and returns it.
func DetachComponent[T any](e EntityMut) (T, bool) {
	return RemoveComponent[T](e.tree, e.key)
}
