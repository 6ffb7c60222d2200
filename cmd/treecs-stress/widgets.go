package main

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/plus3/visora/treecs"
)

// Widget is the render payload of a node.
type Widget struct {
	Kind string
	ID   int
}

// Box is the measured size of a node. Leaves carry a fixed intrinsic size;
// containers are sized by the measure pass.
type Box struct {
	W, H int
	Leaf bool
}

// Offset is the position assigned by the place pass.
type Offset struct {
	X, Y int
}

// FrameCounters accumulates per-run totals across frames.
type FrameCounters struct {
	Frames        int64
	Mounted       int64
	Unmounted     int64
	RenderedBytes int64
}

// fillNode mounts a widget on node and grows a subtree of the given depth
// below it. It returns the number of entities mounted, node included.
func fillNode(node treecs.EntityMut, depth, fanout int, rng *rand.Rand, nextID *int) int {
	*nextID++
	treecs.AddComponent(node, Offset{})

	if depth <= 1 {
		treecs.Mount(node, Widget{Kind: "span", ID: *nextID})
		treecs.AddComponent(node, Box{W: 1 + rng.Intn(8), H: 1, Leaf: true})
		return 1
	}

	treecs.Mount(node, Widget{Kind: "div", ID: *nextID})
	treecs.AddComponent(node, Box{})
	mounted := 1
	for i := 0; i < fanout; i++ {
		mounted += fillNode(node.NewChild(), depth-1, fanout, rng, nextID)
	}
	return mounted
}

// ChurnPass tears down random subtrees of the root and queues replacements.
type ChurnPass struct {
	Scenario treecs.Resource[Scenario]
	Counters treecs.Resource[FrameCounters]

	rng    *rand.Rand
	nextID int
}

func (p *ChurnPass) Execute(frame *treecs.Frame) {
	sc := p.Scenario.Get()
	counters := p.Counters.Get()
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(sc.Seed))
	}

	root, _ := frame.Tree.Entity(frame.Tree.Root())
	n := root.ChildCount()
	if n == 0 {
		return
	}
	for _, i := range p.rng.Perm(n)[:min(sc.Churn, n)] {
		victim, _ := root.Child(i)
		frame.Commands.Remove(victim.Key())
		counters.Unmounted += int64(sc.nodesPerSubtree())

		frame.Commands.Add(frame.Tree.Root(), func(e treecs.EntityMut) {
			counters.Mounted += int64(fillNode(e, sc.Depth, sc.Fanout, p.rng, &p.nextID))
		})
	}
}

// MeasurePass sizes containers bottom up: children are stacked vertically,
// so a container is as wide as its widest child and as tall as all of them.
type MeasurePass struct{}

func (MeasurePass) Execute(frame *treecs.Frame) {
	q := treecs.NewBreadthQuery(frame.Tree, treecs.Join2(treecs.Key(), treecs.Required[Box]()))
	for row := range q.Rows() {
		box := row.Data.Second
		if row.Meta == treecs.Enter {
			if !box.Leaf {
				box.W, box.H = 0, 0
			}
			continue
		}
		e, _ := frame.Tree.Entity(row.Key)
		parent, ok := e.Parent()
		if !ok {
			continue
		}
		if pb := treecs.ComponentOf[Box](parent); pb != nil {
			pb.W = max(pb.W, box.W)
			pb.H += box.H
		}
	}
}

// PlacePass assigns offsets top down. It walks siblings right to left and
// stacks them upward from the bottom edge of their parent.
type PlacePass struct{}

func (PlacePass) Execute(frame *treecs.Frame) {
	q := treecs.NewReversedBreadthQuery(frame.Tree, treecs.Join3(
		treecs.Key(),
		treecs.Required[Box](),
		treecs.Required[Offset](),
	))

	// bottom edge still free inside each open container
	var cursor []int
	for row := range q.Rows() {
		box, off := row.Data.Second, row.Data.Third
		if row.Meta == treecs.Leave {
			cursor = cursor[:len(cursor)-1]
			continue
		}
		if n := len(cursor); n > 0 {
			cursor[n-1] -= box.H
			off.Y = cursor[n-1]
			if e, ok := frame.Tree.Entity(row.Key); ok {
				if parent, ok := e.Parent(); ok {
					if po := treecs.ComponentOf[Offset](parent); po != nil {
						off.X = po.X
					}
				}
			}
		}
		cursor = append(cursor, off.Y+box.H)
	}
}

// markupRenderer serializes widgets as nested tags.
type markupRenderer struct {
	w       io.Writer
	written int64
}

func (r *markupRenderer) Render(q *treecs.BreadthQuery[*Widget]) error {
	for step, w := range q.All() {
		var n int
		var err error
		if step == treecs.Enter {
			n, err = fmt.Fprintf(r.w, "<%s id=%d>", w.Kind, w.ID)
		} else {
			n, err = fmt.Fprintf(r.w, "</%s>", w.Kind)
		}
		r.written += int64(n)
		if err != nil {
			return err
		}
	}
	return nil
}

// RenderPass serializes the tree to Out.
type RenderPass struct {
	Counters treecs.Resource[FrameCounters]
	Out      io.Writer
	Err      error
}

func (p *RenderPass) Execute(frame *treecs.Frame) {
	r := &markupRenderer{w: p.Out}
	if err := treecs.Render[Widget](frame.Tree, r); err != nil && p.Err == nil {
		p.Err = err
	}
	counters := p.Counters.Get()
	counters.RenderedBytes += r.written
	counters.Frames++
}

// populate mounts fanout subtrees below the root.
func populate(tree *treecs.Treecs, sc Scenario) int {
	rng := rand.New(rand.NewSource(sc.Seed))
	root, _ := tree.EntityMut(tree.Root())
	treecs.Mount(root, Widget{Kind: "body"})
	treecs.AddComponent(root, Box{})
	treecs.AddComponent(root, Offset{})

	nextID := 0
	mounted := 1
	for i := 0; i < sc.Fanout; i++ {
		mounted += fillNode(root.NewChild(), sc.Depth, sc.Fanout, rng, &nextID)
	}
	return mounted
}
