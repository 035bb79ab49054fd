package vdom

import "sort"

// keyedEntry is one new child in a keyed list.
type keyedEntry struct {
	next   *Node
	oldIdx int // -1 when the child is fresh
}

// diffKeyedChildren reconciles children by key.
//
// The nth old child with a given key pairs with the nth new child with that
// key, and unkeyed children pair in order among their unkeyed siblings.
// Unmatched old children are removed first (last to first). The matched
// children forming the longest increasing subsequence of old indices stay in
// place and anchor every other child: moved and fresh children ahead of an
// anchor are placed before it, those after the last anchor are placed after
// it. Matched pairs are then diffed in new order.
func (d *differ) diffKeyedChildren(prev, next *Node, path TreePath, ev *Evaluated) {
	prevChildren, nextChildren := prev.Children, next.Children

	oldByKey := make(map[string][]int, len(prevChildren))
	var oldUnkeyed []int
	for i, child := range prevChildren {
		if key, ok := child.Key(); ok {
			oldByKey[key] = append(oldByKey[key], i)
		} else {
			oldUnkeyed = append(oldUnkeyed, i)
		}
	}

	entries := make([]keyedEntry, len(nextChildren))
	matchedOld := make([]bool, len(prevChildren))
	var seq, seqPos []int // matched old indices in new order, and their new positions
	for i, child := range nextChildren {
		entries[i] = keyedEntry{next: child, oldIdx: -1}
		oldIdx := -1
		if key, ok := child.Key(); ok {
			oldIdx = popFront(oldByKey, key)
		} else if len(oldUnkeyed) > 0 {
			oldIdx, oldUnkeyed = oldUnkeyed[0], oldUnkeyed[1:]
		}
		if oldIdx < 0 {
			continue
		}
		matchedOld[oldIdx] = true
		entries[i].oldIdx = oldIdx
		seq = append(seq, oldIdx)
		seqPos = append(seqPos, i)
	}

	if len(seq) == 0 {
		if len(prevChildren) > 0 {
			d.emit(patchClearChildren(path, prev))
		}
		if len(nextChildren) > 0 {
			d.emit(patchAppendChildren(path, prev, nextChildren))
		}
		return
	}

	for i := len(prevChildren) - 1; i >= 0; i-- {
		if !matchedOld[i] {
			d.emit(patchRemove(path.Traverse(i), prevChildren[i]))
		}
	}

	anchor := make([]bool, len(nextChildren))
	for _, p := range LongestIncreasingSubsequence(seq) {
		anchor[seqPos[p]] = true
	}

	var run []keyedEntry
	lastAnchor := -1
	for i, e := range entries {
		if !anchor[i] {
			run = append(run, e)
			continue
		}
		if len(run) > 0 {
			at := e.oldIdx
			for _, g := range groupRun(run) {
				d.emitPlacement(path.Traverse(at), prevChildren[at], g, false)
			}
			run = run[:0]
		}
		lastAnchor = e.oldIdx
	}
	if len(run) > 0 {
		groups := groupRun(run)
		for i := len(groups) - 1; i >= 0; i-- {
			d.emitPlacement(path.Traverse(lastAnchor), prevChildren[lastAnchor], groups[i], true)
		}
	}

	for i, e := range entries {
		if e.oldIdx >= 0 {
			d.diff(prevChildren[e.oldIdx], e.next, path.Traverse(e.oldIdx), ev.Child(i))
		}
	}
}

// popFront takes the earliest unmatched old index for key, or -1.
func popFront(byKey map[string][]int, key string) int {
	q := byKey[key]
	if len(q) == 0 {
		return -1
	}
	byKey[key] = q[1:]
	return q[0]
}

// groupRun splits a run into maximal groups of consecutive moved or
// consecutive fresh entries.
func groupRun(run []keyedEntry) [][]keyedEntry {
	var groups [][]keyedEntry
	start := 0
	for i := 1; i <= len(run); i++ {
		if i == len(run) || (run[i].oldIdx >= 0) != (run[start].oldIdx >= 0) {
			groups = append(groups, run[start:i])
			start = i
		}
	}
	return groups
}

// emitPlacement positions one group relative to the anchor at path.
func (d *differ) emitPlacement(path TreePath, anchor *Node, group []keyedEntry, after bool) {
	if group[0].oldIdx >= 0 {
		sources := make([]TreePath, len(group))
		for i, e := range group {
			sources[i] = path.Parent().Traverse(e.oldIdx)
		}
		if after {
			d.emit(patchMoveAfter(path, anchor, sources))
		} else {
			d.emit(patchMoveBefore(path, anchor, sources))
		}
		return
	}
	nodes := make([]*Node, len(group))
	for i, e := range group {
		nodes[i] = e.next
	}
	if after {
		d.emit(patchInsertAfter(path, anchor, nodes))
	} else {
		d.emit(patchInsertBefore(path, anchor, nodes))
	}
}

// LongestIncreasingSubsequence returns the positions in seq of a longest
// strictly increasing subsequence. Among subsequences of maximal length it
// returns the one whose positions are lexicographically smallest, so the
// result is deterministic. It runs in O(n log n).
func LongestIncreasingSubsequence(seq []int) []int {
	n := len(seq)
	if n == 0 {
		return nil
	}

	// lengths[i] is the length of the longest increasing subsequence
	// starting at i, computed right to left with patience sorting on the
	// negated values.
	lengths := make([]int, n)
	var tails []int
	for i := n - 1; i >= 0; i-- {
		x := -seq[i]
		k := sort.SearchInts(tails, x)
		if k == len(tails) {
			tails = append(tails, x)
		} else {
			tails[k] = x
		}
		lengths[i] = k + 1
	}

	need := len(tails)
	out := make([]int, 0, need)
	for i := 0; i < n && need > 0; i++ {
		if lengths[i] == need && (len(out) == 0 || seq[i] > seq[out[len(out)-1]]) {
			out = append(out, i)
			need--
		}
	}
	return out
}
