package treecs

// Renderer consumes a tree through its own per-node payload type P. Every
// node carries at most one P; nodes without one are skipped by the query.
type Renderer[P any] interface {
	Render(q *BreadthQuery[*P]) error
}

// Mount attaches the renderer payload of a node, replacing any previous one.
func Mount[P any](e EntityMut, payload P) {
	AddComponent(e, payload)
}

// Render hands r a forward enter/leave query over its payload type.
func Render[P any](tree *Treecs, r Renderer[P]) error {
	return r.Render(NewBreadthQuery(tree, Required[P]()))
}
