package treeio

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// A document is the generic value produced by the JSON and YAML decoders:
// maps, slices and scalars. The accepted node shapes are
//
//	"some text"                                   text node
//	null                                          nil node
//	{"tag": "div", "ns": "...", "attrs": ..., "children": [...]}
//	{"text": "..."} / {"comment": "..."} / {"raw": "..."}
//	{"fragment": [...]}
//	{"component": {"type": "Counter", "attrs": ..., "children": [...]}}
//
// attrs is either a map of name to scalar (a "style" entry may be a map of
// properties) or a list of entries
//
//	{"name": "class", "ns": "...", "value": "a"}
//	{"name": "style", "style": [["color", "red"]]}
//	{"name": "onclick", "listener": {"event": "click", "id": "h1"}}
//	{"name": "inner_html", "call": {"name": "set_inner_html", "args": ["<b/>"]}}
//
// An entry with none of value, style, listener or call has an empty value.

// NodeFromDocument converts a decoded document into a tree.
func NodeFromDocument(doc any) (*vdom.Node, error) {
	return nodeFromDoc(doc, "$")
}

func invalid(loc, format string, args ...any) *errors.Error {
	return errors.New(errors.CodeUnreadableInput).
		WithDetailf("%s: %s", loc, fmt.Sprintf(format, args...))
}

var nodeKeys = []string{"tag", "text", "comment", "raw", "fragment", "component"}

func nodeFromDoc(doc any, loc string) (*vdom.Node, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case string:
		return vdom.Text(v), nil
	case map[string]any:
		return nodeFromMap(v, loc)
	default:
		return nil, invalid(loc, "node must be a string or an object, got %T", doc)
	}
}

func nodeFromMap(m map[string]any, loc string) (*vdom.Node, error) {
	var kind string
	for _, k := range nodeKeys {
		if _, ok := m[k]; ok {
			if kind != "" {
				return nil, invalid(loc, "node has both %q and %q", kind, k)
			}
			kind = k
		}
	}

	switch kind {
	case "tag":
		if err := checkKeys(m, loc, "tag", "ns", "attrs", "children"); err != nil {
			return nil, err
		}
		tag, err := stringField(m, "tag", loc)
		if err != nil {
			return nil, err
		}
		if tag == "" {
			return nil, invalid(loc, "empty tag")
		}
		ns, err := stringField(m, "ns", loc)
		if err != nil {
			return nil, err
		}
		attrs, err := attrsFromDoc(m["attrs"], loc+".attrs")
		if err != nil {
			return nil, err
		}
		children, err := nodesFromDoc(m["children"], loc+".children")
		if err != nil {
			return nil, err
		}
		return &vdom.Node{Kind: vdom.KindElement, Tag: tag, Namespace: ns, Attrs: attrs, Children: children}, nil

	case "text", "comment", "raw":
		if err := checkKeys(m, loc, kind); err != nil {
			return nil, err
		}
		s, err := stringField(m, kind, loc)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "text":
			return vdom.Text(s), nil
		case "comment":
			return vdom.Comment(s), nil
		default:
			return vdom.Raw(s), nil
		}

	case "fragment":
		if err := checkKeys(m, loc, "fragment"); err != nil {
			return nil, err
		}
		children, err := nodesFromDoc(m["fragment"], loc+".fragment")
		if err != nil {
			return nil, err
		}
		return &vdom.Node{Kind: vdom.KindFragment, Children: children}, nil

	case "component":
		if err := checkKeys(m, loc, "component"); err != nil {
			return nil, err
		}
		c, ok := m["component"].(map[string]any)
		if !ok {
			return nil, invalid(loc+".component", "must be an object")
		}
		cloc := loc + ".component"
		if err := checkKeys(c, cloc, "type", "attrs", "children"); err != nil {
			return nil, err
		}
		typ, err := stringField(c, "type", cloc)
		if err != nil {
			return nil, err
		}
		attrs, err := attrsFromDoc(c["attrs"], cloc+".attrs")
		if err != nil {
			return nil, err
		}
		children, err := nodesFromDoc(c["children"], cloc+".children")
		if err != nil {
			return nil, err
		}
		return &vdom.Node{
			Kind:      vdom.KindComponent,
			Component: &vdom.ComponentRef{Type: typ, Attrs: attrs, Children: children},
		}, nil
	}
	return nil, invalid(loc, "object is not a node: want one of %v", nodeKeys)
}

func checkKeys(m map[string]any, loc string, allowed ...string) error {
	for k := range m {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			return invalid(loc, "unexpected key %q", k)
		}
	}
	return nil
}

func stringField(m map[string]any, key, loc string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalid(loc+"."+key, "must be a string, got %T", v)
	}
	return s, nil
}

func nodesFromDoc(doc any, loc string) ([]*vdom.Node, error) {
	if doc == nil {
		return nil, nil
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, invalid(loc, "must be a list, got %T", doc)
	}
	nodes := make([]*vdom.Node, 0, len(list))
	for i, item := range list {
		n, err := nodeFromDoc(item, fmt.Sprintf("%s[%d]", loc, i))
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func attrsFromDoc(doc any, loc string) ([]vdom.Attribute, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil

	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		attrs := make([]vdom.Attribute, 0, len(names))
		for _, name := range names {
			aloc := loc + "." + name
			if props, ok := v[name].(map[string]any); ok && name == "style" {
				styles, err := stylesFromDoc(props, aloc)
				if err != nil {
					return nil, err
				}
				attrs = append(attrs, vdom.Attribute{Name: name, Values: []vdom.AttrValue{styles}})
				continue
			}
			val, ok := scalarOf(v[name])
			if !ok {
				return nil, invalid(aloc, "must be a scalar, got %T", v[name])
			}
			attrs = append(attrs, vdom.Attribute{Name: name, Values: []vdom.AttrValue{vdom.Simple(val)}})
		}
		return attrs, nil

	case []any:
		attrs := make([]vdom.Attribute, 0, len(v))
		for i, item := range v {
			a, err := attrFromEntry(item, fmt.Sprintf("%s[%d]", loc, i))
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, a)
		}
		return attrs, nil
	}
	return nil, invalid(loc, "must be an object or a list, got %T", doc)
}

func attrFromEntry(doc any, loc string) (vdom.Attribute, error) {
	var a vdom.Attribute
	m, ok := doc.(map[string]any)
	if !ok {
		return a, invalid(loc, "attribute must be an object, got %T", doc)
	}
	if err := checkKeys(m, loc, "name", "ns", "value", "style", "listener", "call"); err != nil {
		return a, err
	}
	var err error
	if a.Name, err = stringField(m, "name", loc); err != nil {
		return a, err
	}
	if a.Name == "" {
		return a, invalid(loc, "attribute without a name")
	}
	if a.Namespace, err = stringField(m, "ns", loc); err != nil {
		return a, err
	}

	var value vdom.AttrValue
	switch {
	case m["value"] != nil:
		s, ok := scalarOf(m["value"])
		if !ok {
			return a, invalid(loc+".value", "must be a scalar, got %T", m["value"])
		}
		value = vdom.Simple(s)
	case m["style"] != nil:
		if value, err = stylesFromDoc(m["style"], loc+".style"); err != nil {
			return a, err
		}
	case m["listener"] != nil:
		l, ok := m["listener"].(map[string]any)
		if !ok {
			return a, invalid(loc+".listener", "must be an object")
		}
		var listener vdom.Listener
		if listener.Event, err = stringField(l, "event", loc+".listener"); err != nil {
			return a, err
		}
		if listener.ID, err = stringField(l, "id", loc+".listener"); err != nil {
			return a, err
		}
		value = vdom.ListenerValue(listener)
	case m["call"] != nil:
		c, ok := m["call"].(map[string]any)
		if !ok {
			return a, invalid(loc+".call", "must be an object")
		}
		var call vdom.FunctionCall
		if call.Name, err = stringField(c, "name", loc+".call"); err != nil {
			return a, err
		}
		args, _ := c["args"].([]any)
		for i, arg := range args {
			s, ok := scalarOf(arg)
			if !ok {
				return a, invalid(fmt.Sprintf("%s.call.args[%d]", loc, i), "must be a scalar")
			}
			call.Args = append(call.Args, s)
		}
		value = vdom.CallValue(call)
	default:
		value = vdom.EmptyValue()
	}
	a.Values = []vdom.AttrValue{value}
	return a, nil
}

// stylesFromDoc accepts a map of properties (applied in name order) or a
// list of [name, value] pairs.
func stylesFromDoc(doc any, loc string) (vdom.AttrValue, error) {
	var props []vdom.StyleProp
	switch v := doc.(type) {
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s, ok := scalarOf(v[name])
			if !ok {
				return vdom.AttrValue{}, invalid(loc+"."+name, "must be a scalar")
			}
			props = append(props, vdom.StyleProp{Name: name, Value: s})
		}
	case []any:
		for i, item := range v {
			pair, ok := item.([]any)
			if !ok || len(pair) != 2 {
				return vdom.AttrValue{}, invalid(fmt.Sprintf("%s[%d]", loc, i), "must be a [name, value] pair")
			}
			name, ok := pair[0].(string)
			s, ok2 := scalarOf(pair[1])
			if !ok || !ok2 {
				return vdom.AttrValue{}, invalid(fmt.Sprintf("%s[%d]", loc, i), "must be a [name, value] pair")
			}
			props = append(props, vdom.StyleProp{Name: name, Value: s})
		}
	default:
		return vdom.AttrValue{}, invalid(loc, "must be an object or a list of pairs, got %T", doc)
	}
	return vdom.StyleValue(props...), nil
}

func scalarOf(v any) (vdom.Value, bool) {
	switch x := v.(type) {
	case string:
		return vdom.StringValue(x), true
	case bool:
		return vdom.BoolValue(x), true
	case int:
		return vdom.IntValue(int64(x)), true
	case int64:
		return vdom.IntValue(x), true
	case uint64:
		return vdom.IntValue(int64(x)), true
	case float64:
		return vdom.FloatValue(x), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return vdom.IntValue(i), true
		}
		if f, err := x.Float64(); err == nil {
			return vdom.FloatValue(f), true
		}
	}
	return vdom.Value{}, false
}

// Document converts a tree into its document form. The result marshals to
// JSON or YAML and reads back with NodeFromDocument.
func Document(n *vdom.Node) any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case vdom.KindText:
		return map[string]any{"text": n.Text}
	case vdom.KindComment:
		return map[string]any{"comment": n.Text}
	case vdom.KindRaw:
		return map[string]any{"raw": n.Text}
	case vdom.KindFragment:
		return map[string]any{"fragment": documents(n.Children)}
	case vdom.KindComponent:
		c := map[string]any{}
		if n.Component != nil {
			c["type"] = n.Component.Type
			if len(n.Component.Attrs) > 0 {
				c["attrs"] = attrDocuments(n.Component.Attrs)
			}
			if len(n.Component.Children) > 0 {
				c["children"] = documents(n.Component.Children)
			}
		}
		return map[string]any{"component": c}
	}

	m := map[string]any{"tag": n.Tag}
	if n.Namespace != "" {
		m["ns"] = n.Namespace
	}
	if len(n.Attrs) > 0 {
		m["attrs"] = attrDocuments(n.Attrs)
	}
	if len(n.Children) > 0 {
		m["children"] = documents(n.Children)
	}
	return m
}

func documents(nodes []*vdom.Node) []any {
	out := make([]any, 0, len(nodes))
	for _, c := range nodes {
		if c != nil {
			out = append(out, Document(c))
		}
	}
	return out
}

// attrDocuments emits one list entry per attribute value.
func attrDocuments(attrs []vdom.Attribute) []any {
	var out []any
	for _, a := range attrs {
		for _, v := range a.Values {
			entry := map[string]any{"name": a.Name}
			if a.Namespace != "" {
				entry["ns"] = a.Namespace
			}
			switch v.Kind {
			case vdom.ValueSimple:
				entry["value"] = scalarDocument(v.Simple)
			case vdom.ValueStyle:
				pairs := make([]any, len(v.Styles))
				for i, p := range v.Styles {
					pairs[i] = []any{p.Name, scalarDocument(p.Value)}
				}
				entry["style"] = pairs
			case vdom.ValueListener:
				entry["listener"] = map[string]any{"event": v.Listener.Event, "id": v.Listener.ID}
			case vdom.ValueCall:
				args := make([]any, len(v.Call.Args))
				for i, arg := range v.Call.Args {
					args[i] = scalarDocument(arg)
				}
				entry["call"] = map[string]any{"name": v.Call.Name, "args": args}
			}
			out = append(out, entry)
		}
	}
	return out
}

func scalarDocument(v vdom.Value) any {
	switch v.Kind {
	case vdom.ScalarBool:
		return v.Bool
	case vdom.ScalarInt:
		return v.Int
	case vdom.ScalarFloat:
		return v.Float
	default:
		return v.Str
	}
}
