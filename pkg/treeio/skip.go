package treeio

import (
	"encoding/json"
	"fmt"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// SkipFromDocument converts a decoded document into a skip tree. Accepted
// shapes:
//
//	true / false                          constant leaf
//	3                                     leaf decided by env slot 3
//	{"skip": true, "children": [...]}     constant node
//	{"slot": 3, "children": [...]}        slot node
//	[decision, child, child, ...]         compact form
func SkipFromDocument(doc any) (*vdom.SkipDiff, error) {
	if doc == nil {
		return nil, nil
	}
	return skipFromDoc(doc, "$")
}

func skipFromDoc(doc any, loc string) (*vdom.SkipDiff, error) {
	switch v := doc.(type) {
	case bool, int, int64, uint64, float64, json.Number:
		d, err := decisionOf(v, loc)
		if err != nil {
			return nil, err
		}
		return vdom.NewSkipDiff(d), nil

	case []any:
		if len(v) == 0 {
			return nil, invalid(loc, "compact skip node needs a decision")
		}
		d, err := decisionOf(v[0], loc+"[0]")
		if err != nil {
			return nil, err
		}
		children, err := skipChildren(v[1:], loc, 1)
		if err != nil {
			return nil, err
		}
		return vdom.NewSkipDiff(d, children...), nil

	case map[string]any:
		if err := checkKeys(v, loc, "skip", "slot", "children"); err != nil {
			return nil, err
		}
		var d vdom.Decision
		skip, hasSkip := v["skip"]
		slot, hasSlot := v["slot"]
		switch {
		case hasSkip && hasSlot:
			return nil, invalid(loc, "skip node has both \"skip\" and \"slot\"")
		case hasSkip:
			b, ok := skip.(bool)
			if !ok {
				return nil, invalid(loc+".skip", "must be a boolean, got %T", skip)
			}
			d = vdom.Const(b)
		case hasSlot:
			s, err := decisionOf(slot, loc+".slot")
			if err != nil || !s.IsSlot() {
				return nil, invalid(loc+".slot", "must be a slot number")
			}
			d = s
		default:
			d = vdom.Const(false)
		}

		var list []any
		if c, ok := v["children"]; ok && c != nil {
			if list, ok = c.([]any); !ok {
				return nil, invalid(loc+".children", "must be a list, got %T", c)
			}
		}
		children, err := skipChildren(list, loc+".children", 0)
		if err != nil {
			return nil, err
		}
		return vdom.NewSkipDiff(d, children...), nil
	}
	return nil, invalid(loc, "not a skip node: %T", doc)
}

func skipChildren(list []any, loc string, offset int) ([]*vdom.SkipDiff, error) {
	children := make([]*vdom.SkipDiff, 0, len(list))
	for i, item := range list {
		c, err := skipFromDoc(item, fmt.Sprintf("%s[%d]", loc, i+offset))
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return children, nil
}

// decisionOf maps a boolean to a constant and a non-negative integer to a
// slot.
func decisionOf(v any, loc string) (vdom.Decision, error) {
	if b, ok := v.(bool); ok {
		return vdom.Const(b), nil
	}
	s, ok := scalarOf(v)
	if ok && s.Kind == vdom.ScalarFloat && s.Float == float64(int64(s.Float)) {
		s = vdom.IntValue(int64(s.Float))
	}
	if !ok || s.Kind != vdom.ScalarInt || s.Int < 0 {
		return vdom.Decision{}, invalid(loc, "decision must be a boolean or a slot number, got %v", v)
	}
	return vdom.Slot(int(s.Int)), nil
}

// SkipDocument converts a skip tree into its object form.
func SkipDocument(s *vdom.SkipDiff) any {
	if s == nil {
		return nil
	}
	m := map[string]any{}
	if s.Decision.IsSlot() {
		m["slot"] = s.Decision.SlotIndex()
	} else {
		m["skip"] = s.Decision.Value()
	}
	if len(s.Children) > 0 {
		children := make([]any, len(s.Children))
		for i, c := range s.Children {
			children[i] = SkipDocument(c)
		}
		m["children"] = children
	}
	return m
}
