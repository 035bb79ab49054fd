package livetree

import (
	"slices"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// Apply resolves every path of the script against the current tree, then
// applies the patches in order. The first failure aborts the script and is
// returned as a fatal *errors.Error; the tree must then be discarded.
func (t *Tree) Apply(patches []vdom.Patch) error {
	if len(patches) == 0 {
		return nil
	}

	targets := make(map[vdom.TreePath]bool, len(patches))
	for _, p := range patches {
		targets[p.Path] = true
	}
	moveOnly := make(map[vdom.TreePath]bool)
	for _, p := range patches {
		for _, np := range p.NodePaths {
			if !targets[np] {
				moveOnly[np] = true
			}
		}
	}

	resolved, err := t.findAll(vdom.LookupTargets(patches), moveOnly)
	if err != nil {
		return err
	}

	for i, p := range patches {
		if err := t.apply(p, resolved); err != nil {
			if err.Detail == "" {
				err.WithDetailf("patch %d (%s)", i, p.Op)
			}
			return err
		}
	}
	return nil
}

func (t *Tree) apply(p vdom.Patch, resolved map[vdom.TreePath]NodeID) *errors.Error {
	target := resolved[p.Path]
	if t.nodes[target].removed {
		return errors.New(errors.CodePathNotFound).
			AtPath(p.Path).
			WithDetailf("%s target was removed by an earlier patch", p.Op)
	}

	switch p.Op {
	case vdom.AppendChildren:
		if !t.isContainer(target) {
			return notApplicable(p, t.describe(target))
		}
		for _, n := range p.Nodes {
			if id := t.materialize(n, target); id != NoNode {
				t.nodes[target].children = append(t.nodes[target].children, id)
			}
		}

	case vdom.InsertBeforeNode, vdom.InsertAfterNode:
		parent := t.nodes[target].parent
		if parent == NoNode {
			return noParent(p)
		}
		ids := make([]NodeID, 0, len(p.Nodes))
		for _, n := range p.Nodes {
			if id := t.materialize(n, parent); id != NoNode {
				ids = append(ids, id)
			}
		}
		t.insertSiblings(parent, target, ids, p.Op == vdom.InsertAfterNode)

	case vdom.MoveBeforeNode, vdom.MoveAfterNode:
		parent := t.nodes[target].parent
		if parent == NoNode {
			return noParent(p)
		}
		ids := make([]NodeID, 0, len(p.NodePaths))
		for _, np := range p.NodePaths {
			id := resolved[np]
			if t.nodes[id].removed {
				return errors.New(errors.CodeMoveSourceGone).
					AtPath(np).
					WithDetail("move source was removed by an earlier patch")
			}
			if id == target {
				continue
			}
			if t.nodes[id].parent == NoNode {
				return noParent(p)
			}
			t.detach(id)
			ids = append(ids, id)
		}
		t.insertSiblings(parent, target, ids, p.Op == vdom.MoveAfterNode)

	case vdom.AddAttributes:
		if t.nodes[target].kind != vdom.KindElement {
			return notApplicable(p, t.describe(target))
		}
		for _, a := range renderAttrs(p.Attrs) {
			t.setAttr(target, a)
		}

	case vdom.RemoveAttributes:
		if t.nodes[target].kind != vdom.KindElement {
			return notApplicable(p, t.describe(target))
		}
		for _, a := range p.Attrs {
			t.removeAttr(target, a)
		}

	case vdom.ReplaceNode:
		parent := t.nodes[target].parent
		if parent == NoNode {
			if len(p.Nodes) != 1 {
				return noParent(p)
			}
			t.release(target)
			t.root = t.materialize(p.Nodes[0], NoNode)
			return nil
		}
		ids := make([]NodeID, 0, len(p.Nodes))
		for _, n := range p.Nodes {
			if id := t.materialize(n, parent); id != NoNode {
				ids = append(ids, id)
			}
		}
		t.insertSiblings(parent, target, ids, false)
		t.detach(target)
		t.release(target)

	case vdom.RemoveNode:
		if t.nodes[target].parent == NoNode {
			t.release(target)
			t.root = NoNode
			return nil
		}
		t.detach(target)
		t.release(target)

	case vdom.ClearChildren:
		if !t.isContainer(target) {
			return notApplicable(p, t.describe(target))
		}
		for _, c := range t.nodes[target].children {
			t.release(c)
		}
		t.nodes[target].children = nil

	default:
		return errors.New(errors.CodeNotApplicable).
			AtPath(p.Path).
			WithDetailf("unknown patch op %d", uint8(p.Op))
	}
	return nil
}

func notApplicable(p vdom.Patch, got string) *errors.Error {
	return errors.New(errors.CodeNotApplicable).
		AtPath(p.Path).
		WithDetailf("%s on %s", p.Op, got)
}

func noParent(p vdom.Patch) *errors.Error {
	return errors.New(errors.CodeNoParent).
		AtPath(p.Path).
		WithDetailf("%s needs a target with a parent", p.Op)
}

func (t *Tree) isContainer(id NodeID) bool {
	k := t.nodes[id].kind
	return k == vdom.KindElement || k == vdom.KindFragment
}

// detach unlinks id from its parent.
func (t *Tree) detach(id NodeID) {
	parent := t.nodes[id].parent
	if parent == NoNode {
		return
	}
	siblings := t.nodes[parent].children
	if i := slices.Index(siblings, id); i >= 0 {
		t.nodes[parent].children = slices.Delete(siblings, i, i+1)
	}
	t.nodes[id].parent = NoNode
}

// insertSiblings places ids next to anchor under parent, keeping their
// order.
func (t *Tree) insertSiblings(parent, anchor NodeID, ids []NodeID, after bool) {
	if len(ids) == 0 {
		return
	}
	siblings := t.nodes[parent].children
	i := slices.Index(siblings, anchor)
	if after {
		i++
	}
	t.nodes[parent].children = slices.Insert(siblings, i, ids...)
	for _, id := range ids {
		t.nodes[id].parent = parent
	}
}

func (t *Tree) setAttr(id NodeID, a vdom.Attribute) {
	attrs := t.nodes[id].attrs
	for i := range attrs {
		if attrs[i].Namespace == a.Namespace && attrs[i].Name == a.Name {
			attrs[i] = a
			return
		}
	}
	t.nodes[id].attrs = append(attrs, a)
}

func (t *Tree) removeAttr(id NodeID, a vdom.Attribute) {
	t.nodes[id].attrs = slices.DeleteFunc(t.nodes[id].attrs, func(x vdom.Attribute) bool {
		return x.Namespace == a.Namespace && x.Name == a.Name
	})
}
