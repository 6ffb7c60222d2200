package treecs

import "cmp"

// LinkData is the structural record of one entity: its parent, if any, and its ordered children.
// If an entity names P as parent, P's children contain that entity exactly once.
type LinkData struct {
	parent    EntityKey
	hasParent bool
	children  Children[EntityKey]
}

func newLinkData() LinkData {
	return LinkData{}
}

func newLinkDataWithParent(parent EntityKey) LinkData {
	return LinkData{parent: parent, hasParent: true}
}

// Parent returns the parent key. The root has none.
func (l *LinkData) Parent() (EntityKey, bool) {
	return l.parent, l.hasParent
}

// Children returns the children of the entity. The returned pointer aliases the arena.
func (l *LinkData) Children() *Children[EntityKey] {
	return &l.children
}

// Equal reports whether two records have the same parent and the same children in order.
func (l *LinkData) Equal(other *LinkData) bool {
	return l.hasParent == other.hasParent &&
		l.parent == other.parent &&
		EqualChildren(&l.children, &other.children)
}

// Compare orders records by parent (a missing parent first) and then by children.
func (l *LinkData) Compare(other *LinkData) int {
	if c := cmp.Compare(boolRank(l.hasParent), boolRank(other.hasParent)); c != 0 {
		return c
	}
	if c := cmp.Compare(l.parent, other.parent); c != 0 {
		return c
	}
	return CompareChildren(&l.children, &other.children)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
