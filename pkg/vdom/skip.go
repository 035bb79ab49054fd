package vdom

import (
	"strconv"
	"strings"
)

// Env resolves slot decisions at traversal time. Implementations may read
// volatile state but must answer consistently within one pass.
type Env interface {
	Decide(slot int) bool
}

// EnvFunc adapts a function to Env.
type EnvFunc func(slot int) bool

// Decide implements Env.
func (f EnvFunc) Decide(slot int) bool { return f(slot) }

// Flags is an Env backed by a slice; slots out of range decide false.
type Flags []bool

// Decide implements Env.
func (f Flags) Decide(slot int) bool {
	if slot < 0 || slot >= len(f) {
		return false
	}
	return f[slot]
}

// Decision is a skip decision: either a constant or a slot resolved through
// an Env. The zero value is Const(false).
type Decision struct {
	slot   int
	isSlot bool
	value  bool
}

// Const returns a decision that always evaluates to v.
func Const(v bool) Decision { return Decision{value: v} }

// Slot returns a decision resolved by Env.Decide(i).
func Slot(i int) Decision { return Decision{slot: i, isSlot: true} }

// IsSlot reports whether the decision is resolved through an Env.
func (d Decision) IsSlot() bool { return d.isSlot }

// SlotIndex returns the slot index of a slot decision.
func (d Decision) SlotIndex() int { return d.slot }

// Value returns the constant of a constant decision.
func (d Decision) Value() bool { return d.value }

// Eval resolves the decision. A slot decision with a nil env is false.
func (d Decision) Eval(env Env) bool {
	if !d.isSlot {
		return d.value
	}
	if env == nil {
		return false
	}
	return env.Decide(d.slot)
}

// String implements fmt.Stringer.
func (d Decision) String() string {
	if d.isSlot {
		return "slot(" + strconv.Itoa(d.slot) + ")"
	}
	return strconv.FormatBool(d.value)
}

// SkipDiff is a decision tree aligned with the shape of a new tree. A true
// decision means the producer asserts the node is unchanged since the
// previous render.
//
// A SkipDiff must not be cached across diff passes: slot decisions may
// change between evaluations.
type SkipDiff struct {
	Decision Decision
	Children []*SkipDiff
}

// NewSkipDiff creates a decision node.
func NewSkipDiff(d Decision, children ...*SkipDiff) *SkipDiff {
	return &SkipDiff{Decision: d, Children: children}
}

// SkipIf creates a constant decision node.
func SkipIf(flag bool, children ...*SkipDiff) *SkipDiff {
	return NewSkipDiff(Const(flag), children...)
}

// Traverse returns, in visitation order, the paths whose decision is false
// and which therefore must be diffed. A single root sits at the root path;
// several roots are treated as siblings under it. Every decision is
// evaluated exactly once, and children are visited regardless of their
// parent's decision.
func Traverse(env Env, roots ...*SkipDiff) []TreePath {
	var paths []TreePath
	if len(roots) == 1 {
		return roots[0].traverse(env, Root(), paths)
	}
	return traverseList(env, roots, Root(), paths)
}

func traverseList(env Env, list []*SkipDiff, current TreePath, paths []TreePath) []TreePath {
	for i, s := range list {
		paths = s.traverse(env, current.Traverse(i), paths)
	}
	return paths
}

func (s *SkipDiff) traverse(env Env, current TreePath, paths []TreePath) []TreePath {
	if s == nil {
		return paths
	}
	if !s.Decision.Eval(env) {
		paths = append(paths, current)
	}
	return traverseList(env, s.Children, current, paths)
}

// IsSkippableRecursive reports whether the node and all its descendants
// decide true. Evaluation stops at the first false decision.
func (s *SkipDiff) IsSkippableRecursive(env Env) bool {
	if s == nil || !s.Decision.Eval(env) {
		return false
	}
	for _, c := range s.Children {
		if !c.IsSkippableRecursive(env) {
			return false
		}
	}
	return true
}

// Evaluated is a SkipDiff with every decision resolved.
type Evaluated struct {
	Skip     bool // The node's own decision
	Subtree  bool // Skip is true for the node and every descendant
	Children []*Evaluated
}

// Evaluate resolves every decision exactly once, parents before children.
func (s *SkipDiff) Evaluate(env Env) *Evaluated {
	if s == nil {
		return nil
	}
	e := &Evaluated{Skip: s.Decision.Eval(env)}
	e.Subtree = e.Skip
	if len(s.Children) > 0 {
		e.Children = make([]*Evaluated, len(s.Children))
		for i, c := range s.Children {
			e.Children[i] = c.Evaluate(env)
			if e.Children[i] == nil || !e.Children[i].Subtree {
				e.Subtree = false
			}
		}
	}
	return e
}

// Child returns the evaluated decision of the i-th child, or nil.
func (e *Evaluated) Child(i int) *Evaluated {
	if e == nil || i < 0 || i >= len(e.Children) {
		return nil
	}
	return e.Children[i]
}

// Equal reports whether both trees evaluate to the same decisions under env.
// The result only holds for the moment of comparison.
func (s *SkipDiff) Equal(o *SkipDiff, env Env) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Decision.Eval(env) != o.Decision.Eval(env) || len(s.Children) != len(o.Children) {
		return false
	}
	for i := range s.Children {
		if !s.Children[i].Equal(o.Children[i], env) {
			return false
		}
	}
	return true
}

// Format renders the evaluated tree as "(true,[(false,[])])".
func (s *SkipDiff) Format(env Env) string {
	var b strings.Builder
	s.format(env, &b)
	return b.String()
}

func (s *SkipDiff) format(env Env, b *strings.Builder) {
	if s == nil {
		b.WriteString("nil")
		return
	}
	b.WriteByte('(')
	b.WriteString(strconv.FormatBool(s.Decision.Eval(env)))
	b.WriteString(",[")
	for i, c := range s.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		c.format(env, b)
	}
	b.WriteString("])")
}
