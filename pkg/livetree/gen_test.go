package livetree

import (
	"fmt"
	"slices"

	"github.com/brianvoe/gofakeit/v7"

	. "github.com/vango-dev/vdiff/pkg/vdom"
)

// treeGen builds random trees and random edits of them.
type treeGen struct {
	f     *gofakeit.Faker
	fresh int
}

var genTags = []string{"div", "span", "p", "section", "ul"}

func (g *treeGen) chance(n int) bool { return g.f.Number(1, n) == 1 }

func (g *treeGen) leaf() *Node {
	switch g.f.Number(0, 5) {
	case 0:
		return Comment(g.f.Word())
	case 1:
		return Component("Widget", Attr("n", g.f.Number(0, 2)))
	default:
		return Text(g.f.Word())
	}
}

func (g *treeGen) attrs() []Attribute {
	var out []Attribute
	if g.f.Bool() {
		out = append(out, Class(g.f.RandomString([]string{"a", "b", "c"})))
	}
	if g.chance(3) {
		out = append(out, Class(g.f.RandomString([]string{"b", "d"})))
	}
	if g.f.Bool() {
		out = append(out, ID(g.f.RandomString([]string{"x", "y"})))
	}
	if g.chance(3) {
		out = append(out, Style(Prop("color", g.f.RandomString([]string{"red", "blue"}))))
	}
	if g.chance(4) {
		out = append(out, On("click", g.f.RandomString([]string{"h1", "h2"}), nil))
	}
	if g.chance(5) {
		out = append(out, ValueAttr(g.f.Word()))
	}
	return out
}

func (g *treeGen) node(depth int) *Node {
	if depth <= 0 || g.chance(4) {
		return g.leaf()
	}
	if g.chance(4) {
		return g.keyedList(depth)
	}
	var n *Node
	if g.chance(6) {
		n = Fragment()
	} else {
		n = Element(g.f.RandomString(genTags), g.attrs())
	}
	for i, count := 0, g.f.Number(0, 4); i < count; i++ {
		n.Children = append(n.Children, g.node(depth-1))
	}
	return n
}

func (g *treeGen) item(key string, depth int) *Node {
	tag := "li"
	if g.chance(8) {
		tag = "p"
	}
	return Element(tag, Key(key), g.attrs(), g.node(depth-1))
}

func (g *treeGen) keyedList(depth int) *Node {
	pool := []string{"k0", "k1", "k2", "k3", "k4", "k5", "k6", "k7"}
	g.shuffle(pool)
	n := Ul(g.attrs())
	for _, k := range pool[:g.f.Number(0, 6)] {
		n.Children = append(n.Children, g.item(k, depth))
	}
	return n
}

func (g *treeGen) shuffle(s any) {
	switch v := s.(type) {
	case []string:
		for i := len(v) - 1; i > 0; i-- {
			j := g.f.Number(0, i)
			v[i], v[j] = v[j], v[i]
		}
	case []*Node:
		for i := len(v) - 1; i > 0; i-- {
			j := g.f.Number(0, i)
			v[i], v[j] = v[j], v[i]
		}
	}
}

// mutate returns a random edit of n. n itself is left untouched.
func (g *treeGen) mutate(n *Node, depth int) *Node {
	if g.chance(10) {
		return g.node(depth)
	}
	if n.Kind != KindElement && n.Kind != KindFragment {
		if g.f.Bool() {
			return g.leaf()
		}
		return n
	}

	out := &Node{Kind: n.Kind, Tag: n.Tag, Namespace: n.Namespace, Attrs: n.Attrs}
	if n.Kind == KindElement && g.chance(3) {
		out.Attrs = g.attrs()
		if k, ok := n.Key(); ok {
			out.Attrs = append(out.Attrs, Key(k))
		}
	}

	if isKeyed(n) {
		out.Children = g.mutateKeyed(n.Children, depth)
		return out
	}
	for _, c := range n.Children {
		if g.chance(5) {
			continue
		}
		out.Children = append(out.Children, g.mutate(c, depth-1))
	}
	for i, extra := 0, g.f.Number(0, 2); i < extra; i++ {
		out.Children = append(out.Children, g.node(depth-1))
	}
	return out
}

func (g *treeGen) mutateKeyed(children []*Node, depth int) []*Node {
	var kept []*Node
	for _, c := range children {
		if g.chance(4) {
			continue
		}
		if g.f.Bool() {
			c = g.mutate(c, depth-1)
		}
		kept = append(kept, c)
	}
	g.shuffle(kept)
	for i, extra := 0, g.f.Number(0, 2); i < extra; i++ {
		var fresh *Node
		if g.chance(5) {
			fresh = Li(g.f.Word())
		} else {
			fresh = g.item(fmt.Sprintf("n%d", g.fresh), depth)
			g.fresh++
		}
		kept = slices.Insert(kept, g.f.Number(0, len(kept)), fresh)
	}
	return kept
}

func isKeyed(n *Node) bool {
	for _, c := range n.Children {
		if _, ok := c.Key(); ok {
			return true
		}
	}
	return false
}
