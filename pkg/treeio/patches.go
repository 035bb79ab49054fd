package treeio

import (
	"fmt"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// PatchDocument is the JSON and YAML form of a patch.
type PatchDocument struct {
	Op        string  `json:"op" yaml:"op"`
	Path      []int   `json:"path" yaml:"path"`
	Tag       string  `json:"tag,omitempty" yaml:"tag,omitempty"`
	Nodes     []any   `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Attrs     []any   `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	NodePaths [][]int `json:"node_paths,omitempty" yaml:"node_paths,omitempty"`
}

// PatchDocuments converts a patch script into its document form.
func PatchDocuments(patches []vdom.Patch) []PatchDocument {
	docs := make([]PatchDocument, len(patches))
	for i, p := range patches {
		d := PatchDocument{
			Op:   p.Op.String(),
			Path: indices(p.Path),
			Tag:  p.Tag,
		}
		if len(p.Nodes) > 0 {
			d.Nodes = documents(p.Nodes)
		}
		if len(p.Attrs) > 0 {
			d.Attrs = attrDocuments(p.Attrs)
		}
		for _, np := range p.NodePaths {
			d.NodePaths = append(d.NodePaths, indices(np))
		}
		docs[i] = d
	}
	return docs
}

func indices(p vdom.TreePath) []int {
	if ix := p.Indices(); ix != nil {
		return ix
	}
	return []int{}
}

// PatchesFromDocuments converts documents back into a patch script.
func PatchesFromDocuments(docs []PatchDocument) ([]vdom.Patch, error) {
	patches := make([]vdom.Patch, len(docs))
	for i, d := range docs {
		loc := fmt.Sprintf("$[%d]", i)
		op, ok := vdom.ParsePatchOp(d.Op)
		if !ok {
			return nil, invalid(loc+".op", "unknown patch op %q", d.Op)
		}
		path, err := treePath(d.Path, loc+".path")
		if err != nil {
			return nil, err
		}
		p := vdom.Patch{Op: op, Path: path, Tag: d.Tag}
		if d.Nodes != nil {
			if p.Nodes, err = nodesFromDoc(d.Nodes, loc+".nodes"); err != nil {
				return nil, err
			}
		}
		if d.Attrs != nil {
			if p.Attrs, err = attrsFromDoc(d.Attrs, loc+".attrs"); err != nil {
				return nil, err
			}
		}
		for j, np := range d.NodePaths {
			tp, err := treePath(np, fmt.Sprintf("%s.node_paths[%d]", loc, j))
			if err != nil {
				return nil, err
			}
			p.NodePaths = append(p.NodePaths, tp)
		}
		patches[i] = p
	}
	return patches, nil
}

func treePath(ix []int, loc string) (vdom.TreePath, error) {
	for _, i := range ix {
		if i < 0 || uint64(i) > vdom.MaxPathIndex {
			return vdom.Root(), invalid(loc, "index %d out of range", i)
		}
	}
	return vdom.NewTreePath(ix...), nil
}
