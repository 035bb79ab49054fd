package protocol

import (
	"errors"
	"math"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// nullMarker stands for a nil node.
const nullMarker = 0xFF

// Node decoding errors.
var (
	ErrInvalidKind      = errors.New("protocol: invalid node kind")
	ErrInvalidValueKind = errors.New("protocol: invalid attribute value kind")
	ErrInvalidScalar    = errors.New("protocol: invalid scalar kind")
	ErrInvalidPath      = errors.New("protocol: tree path index out of range")
)

// EncodeNode encodes a tree to bytes.
//
// Layout per node: kind byte, then
//
//	Element:   tag, namespace, attributes, children
//	Text:      text (Comment and Raw likewise)
//	Component: type, attributes, children
//	Fragment:  children
//
// A nil node is the single byte 0xFF. Listener handlers are not encoded;
// their event and ID are.
func EncodeNode(n *vdom.Node) []byte {
	e := NewEncoderWithCap(64 * (n.NodeCount() + 1))
	EncodeNodeTo(e, n)
	return e.Bytes()
}

// EncodeNodeTo encodes a tree using the provided encoder.
func EncodeNodeTo(e *Encoder, n *vdom.Node) {
	if n == nil {
		e.WriteByte(nullMarker)
		return
	}
	e.WriteByte(byte(n.Kind))

	switch n.Kind {
	case vdom.KindElement:
		e.WriteString(n.Tag)
		e.WriteString(n.Namespace)
		encodeAttributes(e, n.Attrs)
		encodeNodes(e, n.Children)

	case vdom.KindText, vdom.KindComment, vdom.KindRaw:
		e.WriteString(n.Text)

	case vdom.KindComponent:
		c := n.Component
		if c == nil {
			c = &vdom.ComponentRef{}
		}
		e.WriteString(c.Type)
		encodeAttributes(e, c.Attrs)
		encodeNodes(e, c.Children)

	case vdom.KindFragment:
		encodeNodes(e, n.Children)
	}
}

func encodeNodes(e *Encoder, nodes []*vdom.Node) {
	e.WriteCount(len(nodes))
	for _, c := range nodes {
		EncodeNodeTo(e, c)
	}
}

func encodeAttributes(e *Encoder, attrs []vdom.Attribute) {
	e.WriteCount(len(attrs))
	for _, a := range attrs {
		e.WriteString(a.Namespace)
		e.WriteString(a.Name)
		e.WriteCount(len(a.Values))
		for _, v := range a.Values {
			encodeAttrValue(e, v)
		}
	}
}

func encodeAttrValue(e *Encoder, v vdom.AttrValue) {
	e.WriteByte(byte(v.Kind))
	switch v.Kind {
	case vdom.ValueSimple:
		encodeScalar(e, v.Simple)
	case vdom.ValueStyle:
		e.WriteCount(len(v.Styles))
		for _, p := range v.Styles {
			e.WriteString(p.Name)
			encodeScalar(e, p.Value)
		}
	case vdom.ValueListener:
		e.WriteString(v.Listener.Event)
		e.WriteString(v.Listener.ID)
	case vdom.ValueCall:
		e.WriteString(v.Call.Name)
		e.WriteCount(len(v.Call.Args))
		for _, arg := range v.Call.Args {
			encodeScalar(e, arg)
		}
	}
}

func encodeScalar(e *Encoder, v vdom.Value) {
	e.WriteByte(byte(v.Kind))
	switch v.Kind {
	case vdom.ScalarString:
		e.WriteString(v.Str)
	case vdom.ScalarBool:
		e.WriteBool(v.Bool)
	case vdom.ScalarInt:
		e.WriteSvarint(v.Int)
	case vdom.ScalarFloat:
		e.WriteFloat64(v.Float)
	}
}

// EncodePathTo encodes a path as a count followed by one uvarint per index.
func EncodePathTo(e *Encoder, p vdom.TreePath) {
	e.WriteCount(p.Depth())
	for i := 0; i < p.Depth(); i++ {
		e.WriteUvarint(uint64(p.At(i)))
	}
}

// DecodeNode decodes a tree encoded by EncodeNode. The whole input must be
// consumed.
func DecodeNode(data []byte) (*vdom.Node, error) {
	d := NewDecoder(data)
	n, err := DecodeNodeFrom(d, DefaultLimits())
	if err != nil {
		return nil, err
	}
	return n, d.finish()
}

// DecodeNodeFrom decodes one tree from d, enforcing the depth limit.
func DecodeNodeFrom(d *Decoder, limits Limits) (*vdom.Node, error) {
	return decodeNode(d, 0, limits.nodeDepth())
}

func decodeNode(d *Decoder, depth, maxDepth int) (*vdom.Node, error) {
	if err := checkDepth(depth, maxDepth); err != nil {
		return nil, err
	}
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind == nullMarker {
		return nil, nil
	}

	n := &vdom.Node{Kind: vdom.NodeKind(kind)}
	switch n.Kind {
	case vdom.KindElement:
		if n.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}
		if n.Namespace, err = d.ReadString(); err != nil {
			return nil, err
		}
		if n.Attrs, err = decodeAttributes(d); err != nil {
			return nil, err
		}
		if n.Children, err = decodeNodes(d, depth, maxDepth); err != nil {
			return nil, err
		}

	case vdom.KindText, vdom.KindComment, vdom.KindRaw:
		if n.Text, err = d.ReadString(); err != nil {
			return nil, err
		}

	case vdom.KindComponent:
		c := &vdom.ComponentRef{}
		if c.Type, err = d.ReadString(); err != nil {
			return nil, err
		}
		if c.Attrs, err = decodeAttributes(d); err != nil {
			return nil, err
		}
		if c.Children, err = decodeNodes(d, depth, maxDepth); err != nil {
			return nil, err
		}
		n.Component = c

	case vdom.KindFragment:
		if n.Children, err = decodeNodes(d, depth, maxDepth); err != nil {
			return nil, err
		}

	default:
		return nil, ErrInvalidKind
	}
	return n, nil
}

func decodeNodes(d *Decoder, depth, maxDepth int) ([]*vdom.Node, error) {
	count, err := d.ReadCount()
	if err != nil || count == 0 {
		return nil, err
	}
	nodes := make([]*vdom.Node, 0, count)
	for i := 0; i < count; i++ {
		c, err := decodeNode(d, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, c)
	}
	return nodes, nil
}

func decodeAttributes(d *Decoder) ([]vdom.Attribute, error) {
	count, err := d.ReadCount()
	if err != nil || count == 0 {
		return nil, err
	}
	attrs := make([]vdom.Attribute, 0, count)
	for i := 0; i < count; i++ {
		var a vdom.Attribute
		if a.Namespace, err = d.ReadString(); err != nil {
			return nil, err
		}
		if a.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		nv, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		if nv > 0 {
			a.Values = make([]vdom.AttrValue, 0, nv)
		}
		for j := 0; j < nv; j++ {
			v, err := decodeAttrValue(d)
			if err != nil {
				return nil, err
			}
			a.Values = append(a.Values, v)
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

func decodeAttrValue(d *Decoder) (vdom.AttrValue, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return vdom.AttrValue{}, err
	}
	v := vdom.AttrValue{Kind: vdom.ValueKind(kind)}
	switch v.Kind {
	case vdom.ValueEmpty:

	case vdom.ValueSimple:
		if v.Simple, err = decodeScalar(d); err != nil {
			return v, err
		}

	case vdom.ValueStyle:
		count, err := d.ReadCount()
		if err != nil {
			return v, err
		}
		for i := 0; i < count; i++ {
			var p vdom.StyleProp
			if p.Name, err = d.ReadString(); err != nil {
				return v, err
			}
			if p.Value, err = decodeScalar(d); err != nil {
				return v, err
			}
			v.Styles = append(v.Styles, p)
		}

	case vdom.ValueListener:
		if v.Listener.Event, err = d.ReadString(); err != nil {
			return v, err
		}
		if v.Listener.ID, err = d.ReadString(); err != nil {
			return v, err
		}

	case vdom.ValueCall:
		if v.Call.Name, err = d.ReadString(); err != nil {
			return v, err
		}
		count, err := d.ReadCount()
		if err != nil {
			return v, err
		}
		for i := 0; i < count; i++ {
			arg, err := decodeScalar(d)
			if err != nil {
				return v, err
			}
			v.Call.Args = append(v.Call.Args, arg)
		}

	default:
		return v, ErrInvalidValueKind
	}
	return v, nil
}

func decodeScalar(d *Decoder) (vdom.Value, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return vdom.Value{}, err
	}
	switch vdom.ScalarKind(kind) {
	case vdom.ScalarString:
		s, err := d.ReadString()
		return vdom.StringValue(s), err
	case vdom.ScalarBool:
		b, err := d.ReadBool()
		return vdom.BoolValue(b), err
	case vdom.ScalarInt:
		i, err := d.ReadSvarint()
		return vdom.IntValue(i), err
	case vdom.ScalarFloat:
		f, err := d.ReadFloat64()
		return vdom.FloatValue(f), err
	default:
		return vdom.Value{}, ErrInvalidScalar
	}
}

// DecodePathFrom decodes a path written by EncodePathTo.
func DecodePathFrom(d *Decoder) (vdom.TreePath, error) {
	depth, err := d.ReadCount()
	if err != nil {
		return vdom.Root(), err
	}
	if depth > MaxPathDepth {
		return vdom.Root(), ErrMaxDepthExceeded
	}
	p := vdom.Root()
	for i := 0; i < depth; i++ {
		idx, err := d.ReadUvarint()
		if err != nil {
			return vdom.Root(), err
		}
		if idx > math.MaxUint32 || idx > uint64(math.MaxInt) {
			return vdom.Root(), ErrInvalidPath
		}
		p = p.Traverse(int(idx))
	}
	return p, nil
}
