package treeio

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

var foreignNamespaces = map[string]string{
	"svg":  "http://www.w3.org/2000/svg",
	"math": "http://www.w3.org/1998/Math/MathML",
}

var attrNamespaces = map[string]string{
	"xlink": "http://www.w3.org/1999/xlink",
	"xml":   "http://www.w3.org/XML/1998/namespace",
	"xmlns": "http://www.w3.org/2000/xmlns/",
}

// ParseHTML parses markup into a tree.
//
// A complete document (starting with a doctype or <html>) yields its <html>
// element. Anything else is parsed as body content: a single top-level node
// is returned as is, several are wrapped in a fragment. Whitespace-only text
// is dropped and a style attribute is split into properties.
func ParseHTML(r io.Reader) (*vdom.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New(errors.CodeUnreadableInput).Wrap(err)
	}
	text := string(src)

	head := strings.ToLower(strings.TrimSpace(text))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(text))
		if err != nil {
			return nil, errors.New(errors.CodeUnreadableInput).Wrap(err)
		}
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				return convertHTML(c), nil
			}
		}
		return nil, errors.New(errors.CodeUnreadableInput).WithDetail("document has no root element")
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(text), body)
	if err != nil {
		return nil, errors.New(errors.CodeUnreadableInput).Wrap(err)
	}

	var out []*vdom.Node
	for _, n := range nodes {
		if c := convertHTML(n); c != nil {
			out = append(out, c)
		}
	}
	switch len(out) {
	case 0:
		return nil, errors.New(errors.CodeUnreadableInput).WithDetail("no nodes found in markup")
	case 1:
		return out[0], nil
	default:
		return &vdom.Node{Kind: vdom.KindFragment, Children: out}, nil
	}
}

func convertHTML(n *html.Node) *vdom.Node {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return vdom.Text(n.Data)

	case html.CommentNode:
		return vdom.Comment(n.Data)

	case html.ElementNode:
		el := &vdom.Node{
			Kind:      vdom.KindElement,
			Tag:       n.Data,
			Namespace: foreignNamespaces[n.Namespace],
		}
		for _, a := range n.Attr {
			el.Attrs = append(el.Attrs, convertAttr(a))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := convertHTML(c); child != nil {
				el.Children = append(el.Children, child)
			}
		}
		return el
	}
	return nil
}

func convertAttr(a html.Attribute) vdom.Attribute {
	ns := a.Namespace
	if uri, ok := attrNamespaces[ns]; ok {
		ns = uri
	}
	if a.Key == "style" && ns == "" {
		if props := parseStyle(a.Val); len(props) > 0 {
			return vdom.Style(props...)
		}
	}
	return vdom.AttrNS(ns, a.Key, a.Val)
}

// parseStyle splits "color: red; margin: 0" into properties.
func parseStyle(s string) []vdom.StyleProp {
	var props []vdom.StyleProp
	for _, decl := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		props = append(props, vdom.Prop(name, strings.TrimSpace(value)))
	}
	return props
}
