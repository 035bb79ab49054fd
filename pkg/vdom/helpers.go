package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *Node {
	return &Node{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment node.
func Comment(content string) *Node {
	return &Node{
		Kind: KindComment,
		Text: content,
	}
}

// Raw creates an unescaped markup node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(html string) *Node {
	return &Node{
		Kind: KindRaw,
		Text: html,
	}
}

// Component creates an embedded component leaf. Arguments follow the same
// rules as element arguments.
func Component(typ string, args ...any) *Node {
	inner := createElement(typ, args)
	return &Node{
		Kind: KindComponent,
		Component: &ComponentRef{
			Type:     typ,
			Attrs:    inner.Attrs,
			Children: inner.Children,
		},
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *Node {
	node := &Node{Kind: KindFragment}
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *Node:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*Node:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}
	return node
}

// NodeList is a convenience for building child slices.
func NodeList(nodes ...*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *Node) *Node {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *Node) *Node {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *Node) *Node {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to nodes, dropping nil results.
func Range[T any](items []T, fn func(item T, index int) *Node) []*Node {
	result := make([]*Node, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Repeat creates n nodes using the given function.
func Repeat(n int, fn func(i int) *Node) []*Node {
	if n <= 0 {
		return nil
	}
	result := make([]*Node, 0, n)
	for i := 0; i < n; i++ {
		node := fn(i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}
