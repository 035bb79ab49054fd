package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// describe renders patches as comparable strings.
func describe(patches []Patch) []string {
	out := make([]string, len(patches))
	for i, p := range patches {
		out[i] = p.String()
	}
	return out
}

func assertPatches(t *testing.T, got []Patch, want ...string) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	if diff := cmp.Diff(want, describe(got)); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
}

func sampleTree() *Node {
	return Div(ID("app"), Class("a"), Class("b"), Style(Prop("color", "red")),
		Ul(
			Li(Key(1), "one"),
			Li(Key(2), "two"),
		),
		Comment("note"),
		Raw("<b>x</b>"),
		Component("Counter", Attr("start", 1)),
		Fragment(Text("f1"), Text("f2")),
		Button(On("click", "inc", nil), "+"),
		ElementNS("http://www.w3.org/2000/svg", "svg", Attr("viewBox", "0 0 1 1")),
	)
}

func TestDiffBothNil(t *testing.T) {
	if patches := Diff(nil, nil); len(patches) != 0 {
		t.Errorf("got %d patches, want 0", len(patches))
	}
}

func TestDiffNodeRemoved(t *testing.T) {
	assertPatches(t, Diff(Div(), nil), "RemoveNode [] <div>")
}

func TestDiffNodeAddedWithoutPrevious(t *testing.T) {
	assertPatches(t, Diff(nil, Div()))
}

func TestDiffIdempotent(t *testing.T) {
	assertPatches(t, Diff(sampleTree(), sampleTree()))
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	prev, next := sampleTree(), Div(ID("other"), P("changed"))
	_ = Diff(prev, next)
	if diff := cmp.Diff(sampleTree(), prev); diff != "" {
		t.Errorf("previous tree mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Div(ID("other"), P("changed")), next); diff != "" {
		t.Errorf("next tree mutated (-want +got):\n%s", diff)
	}
}

func TestDiffReplace(t *testing.T) {
	tests := []struct {
		name string
		prev *Node
		next *Node
		want string
	}{
		{"text changed", Text("Hello"), Text("World"), "ReplaceNode [] nodes=1"},
		{"kind changed", Div(), Text("x"), "ReplaceNode [] <div> nodes=1"},
		{"tag changed", Div(), Span(), "ReplaceNode [] <div> nodes=1"},
		{"namespace changed", Element("a"), ElementNS("svg", "a"), "ReplaceNode [] <a> nodes=1"},
		{"comment changed", Comment("a"), Comment("b"), "ReplaceNode [] nodes=1"},
		{"raw changed", Raw("<i>a</i>"), Raw("<i>b</i>"), "ReplaceNode [] nodes=1"},
		{"replace attribute", Div(ID("x")), Div(ID("x"), Replace()), "ReplaceNode [] <div> nodes=1"},
		{"component inputs", Component("Counter", Attr("start", 1)), Component("Counter", Attr("start", 2)), "ReplaceNode [] nodes=1"},
		{"component type", Component("Counter"), Component("Timer"), "ReplaceNode [] nodes=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patches := Diff(tt.prev, tt.next)
			assertPatches(t, patches, tt.want)
			if patches[0].Nodes[0] != tt.next {
				t.Errorf("replacement node is not the new node")
			}
		})
	}
}

func TestDiffLeafUnchanged(t *testing.T) {
	assertPatches(t, Diff(Text("Hello"), Text("Hello")))
	assertPatches(t, Diff(Component("Counter", Attr("start", 1)), Component("Counter", Attr("start", 1))))
}

func TestDiffAttributes(t *testing.T) {
	prev := Div(ID("a"), Class("x"))
	next := Div(ID("b"), TitleAttr("t"))
	patches := Diff(prev, next)
	assertPatches(t, patches,
		"AddAttributes [] <div> attrs=id,title",
		"RemoveAttributes [] <div> attrs=class",
	)
	if v, _ := patches[0].Attrs[0].Simple(); v.String() != "b" {
		t.Errorf("id = %q, want b", v.String())
	}
}

func TestDiffAttributeMerge(t *testing.T) {
	t.Run("drop one source value", func(t *testing.T) {
		patches := Diff(Div(Class("a"), Class("b")), Div(Class("a")))
		assertPatches(t, patches, "AddAttributes [] <div> attrs=class")
		if v, _ := patches[0].Attrs[0].Simple(); v.String() != "a" {
			t.Errorf("class = %q, want a", v.String())
		}
	})
	t.Run("add one source value", func(t *testing.T) {
		patches := Diff(Div(Class("a")), Div(Class("a"), Class("b")))
		assertPatches(t, patches, "AddAttributes [] <div> attrs=class")
		if v, _ := patches[0].Attrs[0].Simple(); v.String() != "a b" {
			t.Errorf("class = %q, want %q", v.String(), "a b")
		}
	})
	t.Run("equal after merge", func(t *testing.T) {
		assertPatches(t, Diff(Div(Class("a b")), Div(Class("a"), Class("b"))))
	})
}

func TestDiffStatefulAttributesAlwaysReapplied(t *testing.T) {
	prev := Input(Type("text"), ValueAttr("x"), Checked(false))
	next := Input(Type("text"), ValueAttr("x"), Checked(false))
	assertPatches(t, Diff(prev, next), "AddAttributes [] <input> attrs=value,checked")
}

func TestDiffReservedAttributesNotEmitted(t *testing.T) {
	prev := Div(Key("a"), SkipCriteria(1))
	next := Div(Key("b"), SkipCriteria(2))
	assertPatches(t, Diff(prev, next))
}

func TestDiffListeners(t *testing.T) {
	t.Run("handler ignored", func(t *testing.T) {
		prev := Button(On("click", "h1", func() {}))
		next := Button(On("click", "h1", func() {}))
		assertPatches(t, Diff(prev, next))
	})
	t.Run("id changed", func(t *testing.T) {
		prev := Button(On("click", "h1", nil))
		next := Button(On("click", "h2", nil))
		assertPatches(t, Diff(prev, next), "AddAttributes [] <button> attrs=onclick")
	})
}

func TestDiffAttributesBeforeChildren(t *testing.T) {
	prev := Div(ID("a"), "x")
	next := Div(ID("b"), "y")
	assertPatches(t, Diff(prev, next),
		"AddAttributes [] <div> attrs=id",
		"ReplaceNode [0] nodes=1",
	)
}

func TestDiffAppendChildrenBoundary(t *testing.T) {
	next := Ul(Li("a"), Li("b"), Li("c"))
	patches := Diff(Ul(), next)
	assertPatches(t, patches, "AppendChildren [] <ul> nodes=3")
	for i, n := range patches[0].Nodes {
		if n != next.Children[i] {
			t.Errorf("node %d is not the new child", i)
		}
	}
}

func TestDiffPositionalRemove(t *testing.T) {
	prev := Ul(Li("a"), Li("b"), Li("c"))
	next := Ul(Li("a"))
	assertPatches(t, Diff(prev, next),
		"RemoveNode [2] <li>",
		"RemoveNode [1] <li>",
	)
}

func TestDiffClearChildren(t *testing.T) {
	assertPatches(t, Diff(Ul(Li("a"), Li("b")), Ul()), "ClearChildren [] <ul>")
}

func TestDiffNestedPath(t *testing.T) {
	prev := Div(P("x"), P("y"))
	next := Div(P("x"), P("z"))
	assertPatches(t, Diff(prev, next), "ReplaceNode [1,0] nodes=1")
}

func TestDiffFragment(t *testing.T) {
	prev := Fragment(Text("a"), Text("b"))
	next := Fragment(Text("a"), Text("c"), Text("d"))
	assertPatches(t, Diff(prev, next),
		"ReplaceNode [1] nodes=1",
		"AppendChildren [] nodes=1",
	)
}

func TestDiffRecursiveBasePath(t *testing.T) {
	patches := DiffRecursive(Text("a"), Text("b"), NewTreePath(2, 1))
	assertPatches(t, patches, "ReplaceNode [2,1] nodes=1")
}

func TestDiffSkipAttribute(t *testing.T) {
	assertPatches(t, Diff(Div("a"), Div(Skip(), "b")))
}

func TestDiffSkipCriteria(t *testing.T) {
	t.Run("equal criteria", func(t *testing.T) {
		assertPatches(t, Diff(Div(SkipCriteria(1), "a"), Div(SkipCriteria(1), "b")))
	})
	t.Run("changed criteria", func(t *testing.T) {
		assertPatches(t, Diff(Div(SkipCriteria(1), "a"), Div(SkipCriteria(2), "b")),
			"ReplaceNode [0] nodes=1")
	})
	t.Run("tag mismatch still replaces", func(t *testing.T) {
		assertPatches(t, Diff(Div(SkipCriteria(1)), Span(SkipCriteria(1))),
			"ReplaceNode [] <div> nodes=1")
	})
}
