package vdom

import (
	"fmt"
	"strings"
)

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	InsertBeforeNode PatchOp = 0x01 // Insert Nodes before the target
	InsertAfterNode  PatchOp = 0x02 // Insert Nodes after the target
	AppendChildren   PatchOp = 0x03 // Append Nodes to the target's children
	AddAttributes    PatchOp = 0x04 // Set Attrs on the target
	RemoveAttributes PatchOp = 0x05 // Remove Attrs from the target
	ReplaceNode      PatchOp = 0x06 // Replace the target with Nodes
	RemoveNode       PatchOp = 0x07 // Remove the target
	ClearChildren    PatchOp = 0x08 // Remove all children of the target
	MoveBeforeNode   PatchOp = 0x09 // Move NodePaths before the target
	MoveAfterNode    PatchOp = 0x0A // Move NodePaths after the target
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case InsertBeforeNode:
		return "InsertBeforeNode"
	case InsertAfterNode:
		return "InsertAfterNode"
	case AppendChildren:
		return "AppendChildren"
	case AddAttributes:
		return "AddAttributes"
	case RemoveAttributes:
		return "RemoveAttributes"
	case ReplaceNode:
		return "ReplaceNode"
	case RemoveNode:
		return "RemoveNode"
	case ClearChildren:
		return "ClearChildren"
	case MoveBeforeNode:
		return "MoveBeforeNode"
	case MoveAfterNode:
		return "MoveAfterNode"
	default:
		return "Unknown"
	}
}

// ParsePatchOp returns the PatchOp with the given name.
func ParsePatchOp(name string) (PatchOp, bool) {
	for op := InsertBeforeNode; op <= MoveAfterNode; op++ {
		if op.String() == name {
			return op, true
		}
	}
	return 0, false
}

// Patch is one positional mutation of the live tree.
//
// Path addresses the target in the tree being patched. Tag, when non-empty,
// is the tag the target is expected to have. Nodes carries new subtrees for
// insert, append and replace; Attrs carries attributes for the attribute
// ops; NodePaths carries the previous-tree paths of the nodes to relocate
// for the move ops.
type Patch struct {
	Path      TreePath
	Tag       string
	Op        PatchOp
	Nodes     []*Node
	Attrs     []Attribute
	NodePaths []TreePath
}

// LookupTarget is one path a binding must resolve before applying a script.
type LookupTarget struct {
	Path TreePath
	Tag  string
}

// LookupTargets returns the patch's own target, with its tag assertion,
// followed by every move source.
func (p Patch) LookupTargets() []LookupTarget {
	targets := make([]LookupTarget, 0, 1+len(p.NodePaths))
	targets = append(targets, LookupTarget{Path: p.Path, Tag: p.Tag})
	for _, np := range p.NodePaths {
		targets = append(targets, LookupTarget{Path: np})
	}
	return targets
}

// LookupTargets returns the distinct targets of a script in visitation
// order. When a path is listed both with and without a tag, the tagged
// entry is kept.
func LookupTargets(patches []Patch) []LookupTarget {
	byPath := make(map[TreePath]string)
	var paths []TreePath
	for _, p := range patches {
		for _, t := range p.LookupTargets() {
			tag, seen := byPath[t.Path]
			if !seen {
				paths = append(paths, t.Path)
			}
			if !seen || tag == "" {
				byPath[t.Path] = t.Tag
			}
		}
	}
	SortPaths(paths)
	out := make([]LookupTarget, len(paths))
	for i, path := range paths {
		out[i] = LookupTarget{Path: path, Tag: byPath[path]}
	}
	return out
}

// String formats the patch for logs and terminal output.
func (p Patch) String() string {
	var b strings.Builder
	b.WriteString(p.Op.String())
	b.WriteByte(' ')
	b.WriteString(p.Path.String())
	if p.Tag != "" {
		fmt.Fprintf(&b, " <%s>", p.Tag)
	}
	if len(p.Nodes) > 0 {
		fmt.Fprintf(&b, " nodes=%d", len(p.Nodes))
	}
	if len(p.Attrs) > 0 {
		names := make([]string, len(p.Attrs))
		for i, a := range p.Attrs {
			names[i] = a.Name
		}
		fmt.Fprintf(&b, " attrs=%s", strings.Join(names, ","))
	}
	if len(p.NodePaths) > 0 {
		srcs := make([]string, len(p.NodePaths))
		for i, np := range p.NodePaths {
			srcs[i] = np.String()
		}
		fmt.Fprintf(&b, " from=%s", strings.Join(srcs, ","))
	}
	return b.String()
}

func elementTag(n *Node) string {
	if n != nil && n.Kind == KindElement {
		return n.Tag
	}
	return ""
}

// Patch constructors. old is the previous-tree node at path and supplies
// the tag assertion.

func patchInsertBefore(path TreePath, old *Node, nodes []*Node) Patch {
	return Patch{Path: path, Tag: elementTag(old), Op: InsertBeforeNode, Nodes: nodes}
}

func patchInsertAfter(path TreePath, old *Node, nodes []*Node) Patch {
	return Patch{Path: path, Tag: elementTag(old), Op: InsertAfterNode, Nodes: nodes}
}

func patchAppendChildren(path TreePath, old *Node, nodes []*Node) Patch {
	return Patch{Path: path, Tag: elementTag(old), Op: AppendChildren, Nodes: nodes}
}

func patchAddAttributes(path TreePath, old *Node, attrs []Attribute) Patch {
	return Patch{Path: path, Tag: elementTag(old), Op: AddAttributes, Attrs: attrs}
}

func patchRemoveAttributes(path TreePath, old *Node, attrs []Attribute) Patch {
	return Patch{Path: path, Tag: elementTag(old), Op: RemoveAttributes, Attrs: attrs}
}

func patchReplace(path TreePath, old *Node, nodes ...*Node) Patch {
	return Patch{Path: path, Tag: elementTag(old), Op: ReplaceNode, Nodes: nodes}
}

func patchRemove(path TreePath, old *Node) Patch {
	return Patch{Path: path, Tag: elementTag(old), Op: RemoveNode}
}

func patchClearChildren(path TreePath, old *Node) Patch {
	return Patch{Path: path, Tag: elementTag(old), Op: ClearChildren}
}

func patchMoveBefore(path TreePath, old *Node, sources []TreePath) Patch {
	return Patch{Path: path, Tag: elementTag(old), Op: MoveBeforeNode, NodePaths: sources}
}

func patchMoveAfter(path TreePath, old *Node, sources []TreePath) Patch {
	return Patch{Path: path, Tag: elementTag(old), Op: MoveAfterNode, NodePaths: sources}
}
