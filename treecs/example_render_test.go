package treecs_test

import (
	"fmt"
	"strings"

	"github.com/plus3/visora/treecs"
)

type Element struct {
	Tag  string
	Text string
}

type htmlRenderer struct {
	sb strings.Builder
}

func (r *htmlRenderer) Render(q *treecs.BreadthQuery[*Element]) error {
	for step, el := range q.All() {
		switch step {
		case treecs.Enter:
			fmt.Fprintf(&r.sb, "<%s>%s", el.Tag, el.Text)
		case treecs.Leave:
			fmt.Fprintf(&r.sb, "</%s>", el.Tag)
		}
	}
	return nil
}

func ExampleRender() {
	tree := treecs.New()
	root, _ := tree.EntityMut(tree.Root())
	treecs.Mount(root, Element{Tag: "body"})

	list := root.NewChild()
	treecs.Mount(list, Element{Tag: "ul"})
	for _, item := range []string{"one", "two"} {
		treecs.Mount(list.NewChild(), Element{Tag: "li", Text: item})
	}

	// Nodes without an Element are invisible to the renderer, but their
	// mounted descendants are not.
	wrapper := root.NewChild()
	treecs.Mount(wrapper.NewChild(), Element{Tag: "p", Text: "bye"})

	r := &htmlRenderer{}
	if err := treecs.Render[Element](tree, r); err != nil {
		panic(err)
	}
	fmt.Println(r.sb.String())
	// Output:
	// <body><ul><li>one</li><li>two</li></ul><p>bye</p></body>
}
