package vdom

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TreePath addresses a node by the child indices leading to it from the
// root. The zero value is the root path.
//
// A TreePath is an immutable value: it is comparable with ==, usable as a
// map key, and Traverse never modifies its receiver. Indices are packed as
// big-endian uint32 so that byte order equals depth-first visitation order.
type TreePath struct {
	enc string
}

const pathWidth = 4

// MaxPathIndex is the largest child index a TreePath can hold.
const MaxPathIndex = 1<<32 - 1

// Root returns the empty path.
func Root() TreePath { return TreePath{} }

// NewTreePath creates a path from child indices.
func NewTreePath(indices ...int) TreePath {
	p := Root()
	for _, i := range indices {
		p = p.Traverse(i)
	}
	return p
}

// Traverse returns a new path with index appended. It panics when index is
// negative or above MaxPathIndex.
func (p TreePath) Traverse(index int) TreePath {
	if index < 0 || uint64(index) > MaxPathIndex {
		panic("vdom: tree path index out of range: " + strconv.Itoa(index))
	}
	var b [pathWidth]byte
	binary.BigEndian.PutUint32(b[:], uint32(index))
	return TreePath{enc: p.enc + string(b[:])}
}

// Depth returns the number of indices in the path.
func (p TreePath) Depth() int { return len(p.enc) / pathWidth }

// IsRoot reports whether p is the root path.
func (p TreePath) IsRoot() bool { return p.enc == "" }

// At returns the i-th index of the path.
func (p TreePath) At(i int) int {
	return int(binary.BigEndian.Uint32([]byte(p.enc[i*pathWidth : (i+1)*pathWidth])))
}

// Indices returns the child indices of the path.
func (p TreePath) Indices() []int {
	out := make([]int, p.Depth())
	for i := range out {
		out[i] = p.At(i)
	}
	return out
}

// Parent returns the path of the parent node. The parent of the root is
// the root.
func (p TreePath) Parent() TreePath {
	if p.IsRoot() {
		return p
	}
	return TreePath{enc: p.enc[:len(p.enc)-pathWidth]}
}

// Last returns the final index of the path, or -1 for the root.
func (p TreePath) Last() int {
	if p.IsRoot() {
		return -1
	}
	return p.At(p.Depth() - 1)
}

// Equal reports whether p and q address the same position.
func (p TreePath) Equal(q TreePath) bool { return p == q }

// HasPrefix reports whether q is p itself or one of its ancestors.
func (p TreePath) HasPrefix(q TreePath) bool {
	return strings.HasPrefix(p.enc, q.enc)
}

// Compare orders paths by depth-first, children-in-order visitation: an
// ancestor sorts before its descendants, and siblings sort by index.
func (p TreePath) Compare(q TreePath) int {
	return strings.Compare(p.enc, q.enc)
}

// String renders the path as "[0,2,1]".
func (p TreePath) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < p.Depth(); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(p.At(i)))
	}
	b.WriteByte(']')
	return b.String()
}

// MarshalJSON encodes the path as an array of indices.
func (p TreePath) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Indices())
}

// UnmarshalJSON decodes an array of indices in [0, MaxPathIndex].
func (p *TreePath) UnmarshalJSON(data []byte) error {
	var indices []int
	if err := json.Unmarshal(data, &indices); err != nil {
		return err
	}
	for _, i := range indices {
		if i < 0 || uint64(i) > MaxPathIndex {
			return fmt.Errorf("vdom: tree path index %d out of range", i)
		}
	}
	*p = NewTreePath(indices...)
	return nil
}

// SortPaths sorts paths in visitation order.
func SortPaths(paths []TreePath) {
	sort.Slice(paths, func(i, j int) bool { return paths[i].Compare(paths[j]) < 0 })
}

// DedupPaths returns the distinct paths in visitation order.
func DedupPaths(paths []TreePath) []TreePath {
	if len(paths) == 0 {
		return nil
	}
	out := make([]TreePath, len(paths))
	copy(out, paths)
	SortPaths(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
