package vdom

import "strings"

// Reserved attribute names. The first group steers the diff engine and is
// never emitted in attribute patches; the second group names stateful
// attributes whose live value can drift from the last render.
const (
	NameKey          = "key"
	NameSkip         = "skip"
	NameSkipCriteria = "skip_criteria"
	NameReplace      = "replace"

	NameValue    = "value"
	NameChecked  = "checked"
	NameDisabled = "disabled"
	NameOpen     = "open"
)

// IsDiffOnly reports whether name carries diffing semantics only.
func IsDiffOnly(name string) bool {
	switch name {
	case NameKey, NameSkip, NameSkipCriteria, NameReplace:
		return true
	}
	return false
}

// IsStateful reports whether name is always re-applied when present.
func IsStateful(name string) bool {
	switch name {
	case NameValue, NameChecked, NameDisabled, NameOpen:
		return true
	}
	return false
}

// ValueKind is the AttrValue discriminator.
type ValueKind uint8

const (
	ValueEmpty ValueKind = iota
	ValueSimple
	ValueStyle
	ValueListener
	ValueCall
)

// String returns the string representation of the ValueKind.
func (k ValueKind) String() string {
	switch k {
	case ValueEmpty:
		return "Empty"
	case ValueSimple:
		return "Simple"
	case ValueStyle:
		return "Style"
	case ValueListener:
		return "Listener"
	case ValueCall:
		return "Call"
	default:
		return "Unknown"
	}
}

// StyleProp is one property of a style map.
type StyleProp struct {
	Name  string
	Value Value
}

// Listener is an event callback reference. Listeners compare by Event and
// ID; Handler is opaque to the diff engine.
type Listener struct {
	Event   string
	ID      string
	Handler any
}

// FunctionCall is an opaque invocation descriptor such as inner_html.
type FunctionCall struct {
	Name string
	Args []Value
}

// AttrValue is one value of an attribute. Only the field matching Kind is
// meaningful.
type AttrValue struct {
	Kind     ValueKind
	Simple   Value
	Styles   []StyleProp
	Listener Listener
	Call     FunctionCall
}

// Simple wraps a scalar.
func Simple(v Value) AttrValue { return AttrValue{Kind: ValueSimple, Simple: v} }

// StyleValue wraps style properties.
func StyleValue(props ...StyleProp) AttrValue { return AttrValue{Kind: ValueStyle, Styles: props} }

// ListenerValue wraps an event listener.
func ListenerValue(l Listener) AttrValue { return AttrValue{Kind: ValueListener, Listener: l} }

// CallValue wraps a function call descriptor.
func CallValue(fc FunctionCall) AttrValue { return AttrValue{Kind: ValueCall, Call: fc} }

// EmptyValue returns the empty value.
func EmptyValue() AttrValue { return AttrValue{} }

// Equal reports whether two values are equivalent.
func (v AttrValue) Equal(o AttrValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueSimple:
		return v.Simple == o.Simple
	case ValueStyle:
		if len(v.Styles) != len(o.Styles) {
			return false
		}
		for i := range v.Styles {
			if v.Styles[i] != o.Styles[i] {
				return false
			}
		}
		return true
	case ValueListener:
		return v.Listener.Event == o.Listener.Event && v.Listener.ID == o.Listener.ID
	case ValueCall:
		if v.Call.Name != o.Call.Name || len(v.Call.Args) != len(o.Call.Args) {
			return false
		}
		for i := range v.Call.Args {
			if v.Call.Args[i] != o.Call.Args[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Attribute is a named, optionally namespaced, sequence of values.
type Attribute struct {
	Namespace string
	Name      string
	Values    []AttrValue
}

// IsEmpty reports whether the attribute has no name and is ignored.
func (a Attribute) IsEmpty() bool {
	return a.Name == ""
}

// Simple returns the attribute's scalar value, the last one when several
// are present.
func (a Attribute) Simple() (Value, bool) {
	for i := len(a.Values) - 1; i >= 0; i-- {
		if a.Values[i].Kind == ValueSimple {
			return a.Values[i].Simple, true
		}
	}
	return Value{}, false
}

// Styles returns all style properties of the attribute in order.
func (a Attribute) Styles() []StyleProp {
	var out []StyleProp
	for _, v := range a.Values {
		if v.Kind == ValueStyle {
			out = append(out, v.Styles...)
		}
	}
	return out
}

// Listeners returns the event listeners of the attribute.
func (a Attribute) Listeners() []Listener {
	var out []Listener
	for _, v := range a.Values {
		if v.Kind == ValueListener {
			out = append(out, v.Listener)
		}
	}
	return out
}

// Equal reports whether two attributes have the same identity and values.
func (a Attribute) Equal(o Attribute) bool {
	if a.Namespace != o.Namespace || a.Name != o.Name || len(a.Values) != len(o.Values) {
		return false
	}
	for i := range a.Values {
		if !a.Values[i].Equal(o.Values[i]) {
			return false
		}
	}
	return true
}

type attrID struct {
	ns   string
	name string
}

func (a Attribute) id() attrID { return attrID{ns: a.Namespace, name: a.Name} }

// DiffOnly reports whether a is a reserved diff-only attribute. Reserved
// names only apply without a namespace.
func (a Attribute) DiffOnly() bool { return a.Namespace == "" && IsDiffOnly(a.Name) }

// Stateful reports whether a is a stateful attribute without a namespace.
func (a Attribute) Stateful() bool { return a.Namespace == "" && IsStateful(a.Name) }

// MergeAttributes folds attributes that share a namespace and name into a
// single attribute, keeping first-seen order.
//
// The merged attribute carries at most one simple value (last wins, except
// class which joins its distinct tokens), at most one style value holding
// every property (later properties override earlier ones of the same name),
// then all listeners and calls in order. Empty values are dropped.
func MergeAttributes(attrs []Attribute) []Attribute {
	if len(attrs) == 0 {
		return nil
	}
	order := make([]attrID, 0, len(attrs))
	groups := make(map[attrID][]AttrValue, len(attrs))
	for _, a := range attrs {
		if a.IsEmpty() {
			continue
		}
		id := a.id()
		if _, seen := groups[id]; !seen {
			order = append(order, id)
			groups[id] = nil
		}
		groups[id] = append(groups[id], a.Values...)
	}
	out := make([]Attribute, 0, len(order))
	for _, id := range order {
		out = append(out, Attribute{
			Namespace: id.ns,
			Name:      id.name,
			Values:    mergeValues(id.name, groups[id]),
		})
	}
	return out
}

func mergeValues(name string, values []AttrValue) []AttrValue {
	var (
		simple    *Value
		classes   []string
		styles    []StyleProp
		styleAt   map[string]int
		hasStyle  bool
		listeners []AttrValue
		calls     []AttrValue
	)
	for _, v := range values {
		switch v.Kind {
		case ValueSimple:
			if name == "class" {
				classes = appendClassTokens(classes, v.Simple.String())
				continue
			}
			s := v.Simple
			simple = &s
		case ValueStyle:
			hasStyle = true
			if styleAt == nil {
				styleAt = make(map[string]int)
			}
			for _, p := range v.Styles {
				if i, ok := styleAt[p.Name]; ok {
					styles[i] = p
					continue
				}
				styleAt[p.Name] = len(styles)
				styles = append(styles, p)
			}
		case ValueListener:
			listeners = append(listeners, v)
		case ValueCall:
			calls = append(calls, v)
		}
	}
	out := make([]AttrValue, 0, 2+len(listeners)+len(calls))
	if name == "class" && classes != nil {
		out = append(out, Simple(StringValue(strings.Join(classes, " "))))
	} else if simple != nil {
		out = append(out, Simple(*simple))
	}
	if hasStyle {
		out = append(out, StyleValue(styles...))
	}
	out = append(out, listeners...)
	out = append(out, calls...)
	return out
}

func appendClassTokens(classes []string, s string) []string {
	if classes == nil {
		classes = []string{}
	}
	for _, tok := range strings.Fields(s) {
		dup := false
		for _, c := range classes {
			if c == tok {
				dup = true
				break
			}
		}
		if !dup {
			classes = append(classes, tok)
		}
	}
	return classes
}

// renderedAttributes returns the merged attributes that a binding renders,
// dropping the diff-only reserved names.
func renderedAttributes(attrs []Attribute) []Attribute {
	merged := MergeAttributes(attrs)
	out := merged[:0]
	for _, a := range merged {
		if a.DiffOnly() {
			continue
		}
		out = append(out, a)
	}
	return out
}

// findAttribute returns the merged attribute with the given name and no
// namespace.
func findAttribute(attrs []Attribute, name string) (Attribute, bool) {
	var found bool
	var values []AttrValue
	for _, a := range attrs {
		if a.Name != name || a.Namespace != "" {
			continue
		}
		found = true
		values = append(values, a.Values...)
	}
	if !found {
		return Attribute{}, false
	}
	return Attribute{Name: name, Values: mergeValues(name, values)}, true
}
