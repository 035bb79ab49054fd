package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// ComponentTag is the placeholder element a component renders as.
const ComponentTag = "vdiff-component"

// innerHTMLCall is the call name InnerHTML attaches to an element.
const innerHTMLCall = "set_inner_html"

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Whitespace between block elements is
	// not significant for diffing but does change the rendered bytes.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces.
	Indent string
}

// Renderer renders trees to HTML. A Renderer has no per-render state and
// may be shared.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a tree to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.Node) error {
	return r.renderNode(w, node, 0)
}

func (r *Renderer) renderNode(w io.Writer, node *vdom.Node, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node.Tag, node.Namespace, node.RenderedAttributes(), node.Children, depth)
	case vdom.KindText:
		_, err := io.WriteString(w, html.EscapeString(node.Text))
		return err
	case vdom.KindComment:
		_, err := fmt.Fprintf(w, "<!--%s-->", node.Text)
		return err
	case vdom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	case vdom.KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth); err != nil {
				return err
			}
		}
		return nil
	case vdom.KindComponent:
		return r.renderComponent(w, node, depth)
	default:
		return fmt.Errorf("render: unknown node kind %d", node.Kind)
	}
}

// renderComponent renders a component as a placeholder element carrying
// its type and inputs, with the component's children inside.
func (r *Renderer) renderComponent(w io.Writer, node *vdom.Node, depth int) error {
	ref := node.Component
	if ref == nil {
		return nil
	}
	typ := vdom.Attr("type", ref.Type)
	attrs := vdom.MergeAttributes(append([]vdom.Attribute{typ}, ref.Attrs...))
	return r.renderElement(w, ComponentTag, "", attrs, ref.Children, depth)
}

func (r *Renderer) renderElement(w io.Writer, tag, ns string, attrs []vdom.Attribute, children []*vdom.Node, depth int) error {
	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", tag); err != nil {
		return err
	}
	inner, hasInner, err := r.renderAttributes(w, ns, attrs)
	if err != nil {
		return err
	}

	if ns == "" && vdom.IsVoidElement(tag) {
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if r.config.Pretty {
			io.WriteString(w, "\n")
		}
		return nil
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if hasInner {
		if _, err := io.WriteString(w, inner); err != nil {
			return err
		}
	} else {
		block := len(children) > 0 && !isInlineElement(tag) && !onlyText(children)
		if r.config.Pretty && block {
			io.WriteString(w, "\n")
		}
		for _, child := range children {
			if err := r.renderNode(w, child, depth+1); err != nil {
				return err
			}
		}
		if r.config.Pretty && block {
			r.writeIndent(w, depth)
		}
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
	return nil
}

// renderAttributes writes attrs in order and returns the inner HTML set
// through an InnerHTML call, if any.
func (r *Renderer) renderAttributes(w io.Writer, elementNS string, attrs []vdom.Attribute) (string, bool, error) {
	var (
		inner    string
		hasInner bool
	)
	for _, a := range attrs {
		for _, v := range a.Values {
			if v.Kind == vdom.ValueCall && v.Call.Name == innerHTMLCall && len(v.Call.Args) > 0 {
				inner, hasInner = v.Call.Args[0].String(), true
			}
		}

		value, ok := attributeText(a)
		if !ok {
			continue
		}
		name := qualifiedName(elementNS, a)
		if value == nil {
			if _, err := fmt.Fprintf(w, " %s", name); err != nil {
				return "", false, err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, name, html.EscapeString(*value)); err != nil {
			return "", false, err
		}
	}
	return inner, hasInner, nil
}

// attributeText returns the markup value of a merged attribute. A nil
// value with ok set means a bare boolean attribute. Listeners and calls
// have no markup form.
func attributeText(a vdom.Attribute) (*string, bool) {
	simple, hasSimple := a.Simple()
	styles := a.Styles()
	if !hasSimple && len(styles) == 0 {
		return nil, false
	}

	if hasSimple && simple.Kind == vdom.ScalarBool && len(styles) == 0 {
		if !simple.Bool {
			if isBooleanAttr(a.Name) {
				return nil, false
			}
		} else if isBooleanAttr(a.Name) {
			return nil, true
		}
	}

	if len(styles) == 0 {
		s := simple.String()
		return &s, true
	}
	var parts []string
	if hasSimple {
		if s := strings.TrimSuffix(strings.TrimSpace(simple.String()), ";"); s != "" {
			parts = append(parts, s)
		}
	}
	for _, p := range styles {
		parts = append(parts, p.Name+":"+p.Value.String())
	}
	s := strings.Join(parts, ";")
	return &s, true
}

// namespacePrefixes maps attribute namespaces to their markup prefix.
var namespacePrefixes = map[string]string{
	"http://www.w3.org/1999/xlink":         "xlink",
	"http://www.w3.org/XML/1998/namespace": "xml",
	"http://www.w3.org/2000/xmlns/":        "xmlns",
}

func qualifiedName(elementNS string, a vdom.Attribute) string {
	if a.Namespace == "" || a.Namespace == elementNS {
		return a.Name
	}
	if prefix, ok := namespacePrefixes[a.Namespace]; ok {
		return prefix + ":" + a.Name
	}
	return a.Name
}

func onlyText(children []*vdom.Node) bool {
	for _, c := range children {
		if c != nil && c.Kind != vdom.KindText {
			return false
		}
	}
	return true
}

func (r *Renderer) writeIndent(w io.Writer, depth int) {
	io.WriteString(w, strings.Repeat(r.config.Indent, depth))
}

func isInlineElement(tag string) bool {
	switch tag {
	case "a", "abbr", "b", "bdi", "bdo", "br", "cite", "code", "data", "dfn",
		"em", "i", "kbd", "mark", "q", "s", "samp", "small", "span", "strong",
		"sub", "sup", "time", "u", "var":
		return true
	}
	return false
}

// isBooleanAttr reports whether name is an HTML boolean attribute, which
// renders bare when true and not at all when false.
func isBooleanAttr(name string) bool {
	switch name {
	case "allowfullscreen", "async", "autofocus", "autoplay", "checked",
		"controls", "default", "defer", "disabled", "formnovalidate", "hidden",
		"inert", "ismap", "itemscope", "loop", "multiple", "muted", "nomodule",
		"novalidate", "open", "playsinline", "readonly", "required", "reversed",
		"selected":
		return true
	}
	return false
}
