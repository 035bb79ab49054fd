package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func simpleOf(t *testing.T, a Attribute) string {
	t.Helper()
	v, ok := a.Simple()
	if !ok {
		t.Fatalf("attribute %q has no simple value", a.Name)
	}
	return v.String()
}

func TestMergeAttributes(t *testing.T) {
	t.Run("class tokens joined", func(t *testing.T) {
		merged := MergeAttributes([]Attribute{Class("a b"), Class("b c"), Class("")})
		if len(merged) != 1 {
			t.Fatalf("got %d attributes, want 1", len(merged))
		}
		if got := simpleOf(t, merged[0]); got != "a b c" {
			t.Errorf("class = %q, want %q", got, "a b c")
		}
	})

	t.Run("simple last wins", func(t *testing.T) {
		merged := MergeAttributes([]Attribute{ID("x"), ID("y")})
		if got := simpleOf(t, merged[0]); got != "y" {
			t.Errorf("id = %q, want y", got)
		}
	})

	t.Run("first seen order", func(t *testing.T) {
		merged := MergeAttributes([]Attribute{ID("x"), Class("c"), ID("y"), {}})
		names := []string{}
		for _, a := range merged {
			names = append(names, a.Name)
		}
		if diff := cmp.Diff([]string{"id", "class"}, names); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("styles accumulate", func(t *testing.T) {
		merged := MergeAttributes([]Attribute{
			Style(Prop("color", "red"), Prop("margin", 0)),
			Style(Prop("color", "blue")),
		})
		want := []StyleProp{
			{Name: "color", Value: StringValue("blue")},
			{Name: "margin", Value: IntValue(0)},
		}
		if diff := cmp.Diff(want, merged[0].Styles()); diff != "" {
			t.Errorf("styles mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("listeners accumulate", func(t *testing.T) {
		merged := MergeAttributes([]Attribute{On("click", "1", nil), On("click", "2", nil)})
		if got := len(merged[0].Listeners()); got != 2 {
			t.Errorf("got %d listeners, want 2", got)
		}
	})

	t.Run("namespaces are distinct", func(t *testing.T) {
		merged := MergeAttributes([]Attribute{AttrNS("xlink", "href", "a"), Href("b")})
		if len(merged) != 2 {
			t.Errorf("got %d attributes, want 2", len(merged))
		}
	})

	t.Run("value kinds ordered", func(t *testing.T) {
		a := Attribute{Name: "x", Values: []AttrValue{
			CallValue(FunctionCall{Name: "f"}),
			ListenerValue(Listener{Event: "e", ID: "1"}),
			EmptyValue(),
			StyleValue(Prop("a", 1)),
			Simple(StringValue("s")),
		}}
		merged := MergeAttributes([]Attribute{a})
		var kinds []ValueKind
		for _, v := range merged[0].Values {
			kinds = append(kinds, v.Kind)
		}
		want := []ValueKind{ValueSimple, ValueStyle, ValueListener, ValueCall}
		if diff := cmp.Diff(want, kinds); diff != "" {
			t.Errorf("kinds mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestAttrValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b AttrValue
		want bool
	}{
		{"same simple", Simple(StringValue("a")), Simple(StringValue("a")), true},
		{"different scalar kind", Simple(StringValue("1")), Simple(IntValue(1)), false},
		{"listener ignores handler", ListenerValue(Listener{Event: "click", ID: "1", Handler: func() {}}),
			ListenerValue(Listener{Event: "click", ID: "1"}), true},
		{"listener id", ListenerValue(Listener{Event: "click", ID: "1"}), ListenerValue(Listener{Event: "click", ID: "2"}), false},
		{"call args", CallValue(FunctionCall{Name: "f", Args: []Value{IntValue(1)}}),
			CallValue(FunctionCall{Name: "f", Args: []Value{IntValue(2)}}), false},
		{"style order", StyleValue(Prop("a", 1), Prop("b", 2)), StyleValue(Prop("b", 2), Prop("a", 1)), false},
		{"empty", EmptyValue(), EmptyValue(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReservedNames(t *testing.T) {
	for _, name := range []string{"key", "skip", "skip_criteria", "replace"} {
		if !IsDiffOnly(name) {
			t.Errorf("IsDiffOnly(%q) = false", name)
		}
	}
	for _, name := range []string{"value", "checked", "disabled", "open"} {
		if !IsStateful(name) || IsDiffOnly(name) {
			t.Errorf("%q should be stateful only", name)
		}
	}
	if IsDiffOnly("class") || IsStateful("class") {
		t.Errorf("class should not be reserved")
	}
}

func TestNamespacedReservedNames(t *testing.T) {
	const xlink = "http://www.w3.org/1999/xlink"

	n := Li(AttrNS(xlink, "key", "x"), Key("a"))
	if key, ok := n.Key(); !ok || key != "a" {
		t.Errorf("Key() = %q, %v, want a, true", key, ok)
	}
	if _, ok := Li(AttrNS(xlink, "key", "x")).Key(); ok {
		t.Error("namespaced key reported as the node key")
	}
	if a, ok := n.Attr(NameKey); !ok || a.Namespace != "" {
		t.Errorf("Attr(key) = %+v, %v, want the plain key", a, ok)
	}

	rendered := n.RenderedAttributes()
	if len(rendered) != 1 || rendered[0].Namespace != xlink {
		t.Errorf("RenderedAttributes = %+v, want only the namespaced key", rendered)
	}
	if !Key("a").DiffOnly() || AttrNS(xlink, "skip", true).DiffOnly() {
		t.Error("DiffOnly should only hold without a namespace")
	}
	if !ValueAttr("v").Stateful() || AttrNS(xlink, "value", "v").Stateful() {
		t.Error("Stateful should only hold without a namespace")
	}

	// A namespaced skip does not stop the diff.
	prev := Div(AttrNS(xlink, "skip", true), "a")
	next := Div(AttrNS(xlink, "skip", true), "b")
	assertPatches(t, Diff(prev, next), "ReplaceNode [0] nodes=1")
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		in   any
		want Value
		str  string
	}{
		{"x", StringValue("x"), "x"},
		{true, BoolValue(true), "true"},
		{42, IntValue(42), "42"},
		{int64(-3), IntValue(-3), "-3"},
		{1.5, FloatValue(1.5), "1.5"},
		{NewTreePath(1), StringValue("[1]"), "[1]"},
	}
	for _, tt := range tests {
		got := ValueOf(tt.in)
		if got != tt.want {
			t.Errorf("ValueOf(%v) = %+v, want %+v", tt.in, got, tt.want)
		}
		if got.String() != tt.str {
			t.Errorf("ValueOf(%v).String() = %q, want %q", tt.in, got.String(), tt.str)
		}
	}
}

func TestValueTruthy(t *testing.T) {
	if !BoolValue(true).Truthy() || BoolValue(false).Truthy() {
		t.Errorf("bool truthiness wrong")
	}
	if !StringValue("true").Truthy() || StringValue("yes").Truthy() {
		t.Errorf("string truthiness wrong")
	}
	if !IntValue(1).Truthy() || IntValue(0).Truthy() {
		t.Errorf("int truthiness wrong")
	}
}

func TestClassesSortsMapKeys(t *testing.T) {
	a := Classes("base", map[string]bool{"z": true, "a": true, "off": false}, []string{"x"})
	if got := simpleOf(t, a); got != "base a z x" {
		t.Errorf("Classes = %q, want %q", got, "base a z x")
	}
}
