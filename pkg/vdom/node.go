package vdom

// NodeKind is the discriminator of the Node union.
type NodeKind uint8

const (
	KindElement   NodeKind = iota // Element with tag, attributes and children
	KindText                      // Text leaf
	KindComment                   // Comment leaf
	KindRaw                       // Trusted raw markup leaf
	KindComponent                 // Embedded stateful component leaf
	KindFragment                  // Siblings without a wrapping element
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindRaw:
		return "Raw"
	case KindComponent:
		return "Component"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// IsLeaf reports whether nodes of this kind never have children.
func (k NodeKind) IsLeaf() bool {
	switch k {
	case KindText, KindComment, KindRaw, KindComponent:
		return true
	}
	return false
}

// ComponentRef describes an embedded stateful component. The binding owns
// the component instance; the tree only carries its type and inputs.
type ComponentRef struct {
	Type     string
	Attrs    []Attribute
	Children []*Node
}

// Node is one node of a virtual tree. Trees are treated as immutable once
// built: nothing in this package mutates a Node it did not create.
type Node struct {
	Kind      NodeKind
	Tag       string      // Element tag
	Namespace string      // Element namespace, empty for HTML
	Attrs     []Attribute // Element attributes, unmerged
	Children  []*Node     // Element or fragment children
	Text      string      // Text, comment or raw content

	Component *ComponentRef
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.Kind.IsLeaf()
}

// Key returns the reconciliation key of the node, if any.
func (n *Node) Key() (string, bool) {
	if n == nil || n.Kind != KindElement {
		return "", false
	}
	a, ok := findAttribute(n.Attrs, NameKey)
	if !ok {
		return "", false
	}
	v, ok := a.Simple()
	if !ok {
		return "", false
	}
	return v.String(), true
}

// MergedAttributes returns the node's attributes with duplicates merged.
func (n *Node) MergedAttributes() []Attribute {
	return MergeAttributes(n.Attrs)
}

// RenderedAttributes returns the merged attributes a binding renders,
// without the diff-only reserved names.
func (n *Node) RenderedAttributes() []Attribute {
	return renderedAttributes(n.Attrs)
}

// Attr returns the merged attribute with the given name and no namespace.
func (n *Node) Attr(name string) (Attribute, bool) {
	return findAttribute(n.Attrs, name)
}

// Lookup returns the node at path relative to n, or nil.
func (n *Node) Lookup(path TreePath) *Node {
	cur := n
	for _, i := range path.Indices() {
		if cur == nil || i >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[i]
	}
	return cur
}

// NodeCount returns the number of nodes in the subtree rooted at n.
func (n *Node) NodeCount() int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += c.NodeCount()
	}
	return count
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn stops descent into that node's children.
func (n *Node) Walk(fn func(path TreePath, node *Node) bool) {
	n.walk(Root(), fn)
}

func (n *Node) walk(path TreePath, fn func(TreePath, *Node) bool) {
	if n == nil || !fn(path, n) {
		return
	}
	for i, c := range n.Children {
		c.walk(path.Traverse(i), fn)
	}
}

// Equal reports whether two trees are structurally equivalent: same kinds,
// tags, namespaces, merged attributes, leaf content and child order.
// Diff-only reserved attributes are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindText, KindComment, KindRaw:
		return a.Text == b.Text
	case KindComponent:
		return componentEqual(a.Component, b.Component)
	case KindElement:
		if a.Tag != b.Tag || a.Namespace != b.Namespace {
			return false
		}
		if !attributesEqual(renderedAttributes(a.Attrs), renderedAttributes(b.Attrs)) {
			return false
		}
	}
	return childrenEqual(a.Children, b.Children)
}

func childrenEqual(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func componentEqual(a, b *ComponentRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Type == b.Type &&
		attributesEqual(MergeAttributes(a.Attrs), MergeAttributes(b.Attrs)) &&
		childrenEqual(a.Children, b.Children)
}

// attributesEqual compares two merged attribute lists by identity, ignoring
// order.
func attributesEqual(a, b []Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	index := make(map[attrID]Attribute, len(a))
	for _, attr := range a {
		index[attr.id()] = attr
	}
	for _, attr := range b {
		other, ok := index[attr.id()]
		if !ok || !other.Equal(attr) {
			return false
		}
	}
	return true
}
