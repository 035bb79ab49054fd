package livetree

import (
	"slices"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// NodeID addresses a node in the arena. IDs are never reused within a Tree.
type NodeID uint32

// NoNode is the zero NodeID; it never addresses a node.
const NoNode NodeID = 0

type liveNode struct {
	kind      vdom.NodeKind
	tag       string
	namespace string
	text      string
	attrs     []vdom.Attribute // merged, diff-only names dropped
	component *vdom.ComponentRef

	parent   NodeID
	children []NodeID
	removed  bool
}

// Tree is a mutable tree materialized from a virtual tree.
// A Tree is not safe for concurrent use.
type Tree struct {
	nodes []liveNode // index 0 is reserved for NoNode
	root  NodeID
	alive int
}

// Mount materializes n into a new live tree.
func Mount(n *vdom.Node) *Tree {
	t := &Tree{nodes: make([]liveNode, 1, n.NodeCount()+1)}
	t.root = t.materialize(n, NoNode)
	return t
}

// Root returns the root node, or NoNode for an empty tree.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of attached nodes.
func (t *Tree) Len() int { return t.alive }

// Parent returns the parent of id, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].parent
}

// Children returns a copy of the children of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return slices.Clone(t.nodes[id].children)
}

// Tag returns the tag of an element node.
func (t *Tree) Tag(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].tag
}

func (t *Tree) valid(id NodeID) bool {
	return id != NoNode && int(id) < len(t.nodes) && !t.nodes[id].removed
}

func (t *Tree) materialize(n *vdom.Node, parent NodeID) NodeID {
	if n == nil {
		return NoNode
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, liveNode{
		kind:      n.Kind,
		tag:       n.Tag,
		namespace: n.Namespace,
		text:      n.Text,
		attrs:     renderAttrs(n.Attrs),
		component: n.Component,
		parent:    parent,
	})
	t.alive++

	children := make([]NodeID, 0, len(n.Children))
	for _, c := range n.Children {
		if cid := t.materialize(c, id); cid != NoNode {
			children = append(children, cid)
		}
	}
	t.nodes[id].children = children
	return id
}

func renderAttrs(attrs []vdom.Attribute) []vdom.Attribute {
	var out []vdom.Attribute
	for _, a := range vdom.MergeAttributes(attrs) {
		if !a.DiffOnly() {
			out = append(out, a)
		}
	}
	return out
}

// release marks the subtree rooted at id as removed.
func (t *Tree) release(id NodeID) {
	n := &t.nodes[id]
	if n.removed {
		return
	}
	n.removed = true
	t.alive--
	for _, c := range n.children {
		t.release(c)
	}
}

// resolve walks path from the root.
func (t *Tree) resolve(path vdom.TreePath) (NodeID, bool) {
	cur := t.root
	if cur == NoNode {
		return NoNode, false
	}
	for i := 0; i < path.Depth(); i++ {
		children := t.nodes[cur].children
		idx := path.At(i)
		if idx >= len(children) {
			return NoNode, false
		}
		cur = children[idx]
	}
	return cur, true
}

// FindAllNodes resolves every target against the current tree and checks
// tag assertions. It fails on the first unresolvable target.
func (t *Tree) FindAllNodes(targets []vdom.LookupTarget) (map[vdom.TreePath]NodeID, error) {
	return t.findAll(targets, nil)
}

func (t *Tree) findAll(targets []vdom.LookupTarget, moveOnly map[vdom.TreePath]bool) (map[vdom.TreePath]NodeID, error) {
	resolved := make(map[vdom.TreePath]NodeID, len(targets))
	for _, target := range targets {
		id, ok := t.resolve(target.Path)
		if !ok {
			code := errors.CodePathNotFound
			if moveOnly[target.Path] {
				code = errors.CodeMoveSourceGone
			}
			return nil, errors.New(code).AtPath(target.Path)
		}
		if target.Tag != "" {
			n := &t.nodes[id]
			if n.kind != vdom.KindElement || n.tag != target.Tag {
				return nil, errors.New(errors.CodeTagMismatch).
					AtPath(target.Path).
					WithDetailf("want <%s>, got %s", target.Tag, t.describe(id))
			}
		}
		resolved[target.Path] = id
	}
	return resolved, nil
}

func (t *Tree) describe(id NodeID) string {
	n := &t.nodes[id]
	if n.kind == vdom.KindElement {
		return "<" + n.tag + ">"
	}
	return n.kind.String()
}

// Snapshot materializes the live tree back into a virtual tree.
func (t *Tree) Snapshot() *vdom.Node {
	if t.root == NoNode {
		return nil
	}
	return t.snapshot(t.root)
}

func (t *Tree) snapshot(id NodeID) *vdom.Node {
	n := &t.nodes[id]
	out := &vdom.Node{
		Kind:      n.kind,
		Tag:       n.tag,
		Namespace: n.namespace,
		Text:      n.text,
		Component: n.component,
	}
	if len(n.attrs) > 0 {
		out.Attrs = slices.Clone(n.attrs)
	}
	if len(n.children) > 0 {
		out.Children = make([]*vdom.Node, len(n.children))
		for i, c := range n.children {
			out.Children[i] = t.snapshot(c)
		}
	}
	return out
}
