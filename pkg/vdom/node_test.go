package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCreateElementArguments(t *testing.T) {
	var nilNode *Node
	n := Div(
		nil,
		ID("x"),
		[]Attribute{Class("a"), {}},
		nilNode,
		P("p"),
		[]*Node{Span(), nil},
		"text",
		NewTreePath(3),
	)
	if len(n.Attrs) != 2 {
		t.Errorf("got %d attributes, want 2", len(n.Attrs))
	}
	var kinds []NodeKind
	for _, c := range n.Children {
		kinds = append(kinds, c.Kind)
	}
	want := []NodeKind{KindElement, KindElement, KindText, KindText}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if n.Children[3].Text != "[3]" {
		t.Errorf("stringer child = %q, want [3]", n.Children[3].Text)
	}
}

func TestNodeKey(t *testing.T) {
	if key, ok := Li(Key(7)).Key(); !ok || key != "7" {
		t.Errorf("Key() = %q, %v, want 7, true", key, ok)
	}
	if _, ok := Li().Key(); ok {
		t.Errorf("unkeyed element reported a key")
	}
	if _, ok := Text("x").Key(); ok {
		t.Errorf("text node reported a key")
	}
}

func TestNodeLookupAndCount(t *testing.T) {
	tree := Div(Ul(Li("a"), Li("b")), P("c"))
	if got := tree.NodeCount(); got != 8 {
		t.Errorf("NodeCount = %d, want 8", got)
	}
	if got := tree.Lookup(NewTreePath(0, 1, 0)); got == nil || got.Text != "b" {
		t.Errorf("Lookup([0,1,0]) = %+v, want text b", got)
	}
	if got := tree.Lookup(NewTreePath(4)); got != nil {
		t.Errorf("Lookup out of range = %+v, want nil", got)
	}
	if tree.Lookup(Root()) != tree {
		t.Errorf("Lookup(root) should return the tree")
	}
}

func TestNodeWalkPrune(t *testing.T) {
	tree := Div(Ul(Li("a")), P("c"))
	var visited []string
	tree.Walk(func(p TreePath, n *Node) bool {
		visited = append(visited, p.String())
		return n.Tag != "ul"
	})
	want := []string{"[]", "[0]", "[1]", "[1,0]"}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("Walk mismatch (-want +got):\n%s", diff)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Node
		want bool
	}{
		{"same", sampleTree(), sampleTree(), true},
		{"nil", nil, nil, true},
		{"one nil", Div(), nil, false},
		{"keys ignored", Li(Key("a"), "x"), Li(Key("b"), "x"), true},
		{"merged classes", Div(Class("a"), Class("b")), Div(Class("a b")), true},
		{"attribute order ignored", Div(ID("a"), Class("b")), Div(Class("b"), ID("a")), true},
		{"attribute differs", Div(ID("a")), Div(ID("b")), false},
		{"child order", Div("a", "b"), Div("b", "a"), false},
		{"kind", Text("a"), Comment("a"), false},
		{"namespace", Element("g"), ElementNS("svg", "g"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}
