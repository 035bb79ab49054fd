package vdom

// Diff compares two trees and returns the patches that transform prev into
// next. Paths in the result address prev.
func Diff(prev, next *Node) []Patch {
	return DiffRecursive(prev, next, Root())
}

// DiffRecursive diffs two subtrees located at path in the previous tree.
func DiffRecursive(prev, next *Node, path TreePath) []Patch {
	d := &differ{}
	d.diff(prev, next, path, nil)
	return d.patches
}

// DiffWithSkip diffs two trees, consulting skip (aligned with next) to prune
// subtrees. skip is evaluated once, through env, before any comparison.
func DiffWithSkip(prev, next *Node, skip *SkipDiff, env Env) []Patch {
	d := &differ{}
	d.diff(prev, next, Root(), skip.Evaluate(env))
	return d.patches
}

// differ accumulates patches for one diff pass. The inputs are only read.
type differ struct {
	patches []Patch
}

func (d *differ) emit(p Patch) {
	d.patches = append(d.patches, p)
}

// diff recursively compares the nodes at path.
func (d *differ) diff(prev, next *Node, path TreePath, ev *Evaluated) {
	// Both nil - nothing to do
	if prev == nil && next == nil {
		return
	}

	// Node removed
	if next == nil {
		d.emit(patchRemove(path, prev))
		return
	}

	// Node added: there is nothing in prev to address, the parent appends it
	if prev == nil {
		return
	}

	sameShape := sameElementShape(prev, next)
	if ev != nil && ev.Skip {
		if ev.Subtree || !sameShape {
			return
		}
		// The node itself is asserted unchanged but some descendant is not.
		d.diffChildren(prev, next, path, ev)
		return
	}

	if sameShape && skipByAttribute(prev, next) {
		return
	}

	if needsReplace(prev, next) {
		d.emit(patchReplace(path, prev, next))
		return
	}

	switch prev.Kind {
	case KindElement:
		d.diffAttributes(prev, next, path)
		d.diffChildren(prev, next, path, ev)
	case KindFragment:
		d.diffChildren(prev, next, path, ev)
	case KindText, KindComment, KindRaw:
		if prev.Text != next.Text {
			d.emit(patchReplace(path, prev, next))
		}
	case KindComponent:
		if !componentEqual(prev.Component, next.Component) {
			d.emit(patchReplace(path, prev, next))
		}
	}
}

// sameElementShape reports whether both nodes are elements, or fragments,
// of the same identity so that their children can be paired.
func sameElementShape(prev, next *Node) bool {
	if prev.Kind != next.Kind {
		return false
	}
	switch prev.Kind {
	case KindElement:
		return prev.Tag == next.Tag && prev.Namespace == next.Namespace
	case KindFragment:
		return true
	}
	return false
}

// skipByAttribute reports whether next opts out of diffing through the skip
// attribute, or through a skip_criteria equal to prev's.
func skipByAttribute(prev, next *Node) bool {
	if next.Kind != KindElement {
		return false
	}
	if a, ok := next.Attr(NameSkip); ok {
		if v, ok := a.Simple(); ok && v.Truthy() {
			return true
		}
	}
	nc, ok := next.Attr(NameSkipCriteria)
	if !ok {
		return false
	}
	pc, ok := prev.Attr(NameSkipCriteria)
	return ok && pc.Equal(nc)
}

// needsReplace reports whether next cannot be reached by patching prev in
// place.
func needsReplace(prev, next *Node) bool {
	if prev.Kind != next.Kind {
		return true
	}
	switch prev.Kind {
	case KindElement:
		if prev.Tag != next.Tag || prev.Namespace != next.Namespace {
			return true
		}
		if a, ok := next.Attr(NameReplace); ok {
			if v, ok := a.Simple(); ok && v.Truthy() {
				return true
			}
		}
	case KindComponent:
		if prev.Component == nil || next.Component == nil {
			return prev.Component != next.Component
		}
		return prev.Component.Type != next.Component.Type
	}
	return false
}

// diffAttributes compares merged attributes by namespace and name. Changed,
// added and stateful attributes are set first; attributes absent from next
// are then removed.
func (d *differ) diffAttributes(prev, next *Node, path TreePath) {
	prevAttrs := renderedAttributes(prev.Attrs)
	nextAttrs := renderedAttributes(next.Attrs)

	prevByID := make(map[attrID]Attribute, len(prevAttrs))
	for _, a := range prevAttrs {
		prevByID[a.id()] = a
	}
	nextIDs := make(map[attrID]struct{}, len(nextAttrs))

	var add []Attribute
	for _, a := range nextAttrs {
		nextIDs[a.id()] = struct{}{}
		old, exists := prevByID[a.id()]
		if exists && old.Equal(a) && !a.Stateful() {
			continue
		}
		add = append(add, a)
	}

	var remove []Attribute
	for _, a := range prevAttrs {
		if _, exists := nextIDs[a.id()]; !exists {
			remove = append(remove, a)
		}
	}

	if len(add) > 0 {
		d.emit(patchAddAttributes(path, prev, add))
	}
	if len(remove) > 0 {
		d.emit(patchRemoveAttributes(path, prev, remove))
	}
}

// diffChildren compares and patches child nodes.
func (d *differ) diffChildren(prev, next *Node, path TreePath, ev *Evaluated) {
	if hasKeys(prev.Children) || hasKeys(next.Children) {
		d.diffKeyedChildren(prev, next, path, ev)
		return
	}
	d.diffPositionalChildren(prev, next, path, ev)
}

// diffPositionalChildren pairs children by index.
func (d *differ) diffPositionalChildren(prev, next *Node, path TreePath, ev *Evaluated) {
	prevChildren, nextChildren := prev.Children, next.Children
	common := min(len(prevChildren), len(nextChildren))

	for i := 0; i < common; i++ {
		d.diff(prevChildren[i], nextChildren[i], path.Traverse(i), ev.Child(i))
	}

	switch {
	case len(prevChildren) > common && len(nextChildren) == 0:
		d.emit(patchClearChildren(path, prev))
	case len(prevChildren) > common:
		// Last to first so that earlier siblings keep their positions.
		for i := len(prevChildren) - 1; i >= common; i-- {
			d.emit(patchRemove(path.Traverse(i), prevChildren[i]))
		}
	case len(nextChildren) > common:
		d.emit(patchAppendChildren(path, prev, nextChildren[common:]))
	}
}

// hasKeys returns true if any child has a key.
func hasKeys(children []*Node) bool {
	for _, child := range children {
		if _, ok := child.Key(); ok {
			return true
		}
	}
	return false
}
