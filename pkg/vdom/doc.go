// Package vdom provides the virtual tree model and the diff engine for vdiff.
//
// A virtual tree is an immutable description of a presentation tree. Diffing
// two trees produces an ordered patch script that a platform binding (see
// package livetree for the reference implementation) applies to its live,
// mutable tree.
//
// # Core Types
//
// Node is the building block: an element with a tag, attributes and
// children, a leaf (text, comment, raw markup or an embedded component), or
// a fragment of siblings. Attribute carries one or more AttrValue entries;
// attributes sharing a name are merged before comparison.
//
// # Element API
//
// Elements are created with variadic factory functions:
//
//	Ul(Class("todo"),
//	    Li(Key("a"), "first"),
//	    Li(Key("b"), "second"),
//	)
//
// # Diffing
//
// Diff compares two trees and returns []Patch. Every patch is addressed by a
// TreePath into the previous tree. Patch order is part of the contract: a
// binding must resolve every path first (Patch.LookupTargets) and then apply
// the patches strictly in order.
//
// Children carrying a key attribute are reconciled by identity; moves are
// minimized with a longest increasing subsequence so that only nodes outside
// the subsequence are relocated.
//
// # Skip-diff
//
// A SkipDiff tree, aligned with the new tree, lets the producer of a view
// assert that subtrees are unchanged. Decisions are constants or slots
// resolved through an Env at diff time, evaluated exactly once per pass.
package vdom
