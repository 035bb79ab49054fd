package protocol

import (
	"errors"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// ErrInvalidOp is returned when a payload names an unknown patch op.
var ErrInvalidOp = errors.New("protocol: invalid patch op")

// PatchesFrame is one patch script sent to a client.
//
// Wire format:
//
//	[Seq: uvarint][Count: uvarint][Patch...]
//
// Each patch is:
//
//	[Op: byte][Path][Tag: string][op payload]
//
// where the payload is a node list for insert, append and replace ops, an
// attribute list for the attribute ops, a path list for the move ops, and
// empty for RemoveNode and ClearChildren.
type PatchesFrame struct {
	Seq     uint64
	Patches []vdom.Patch
}

// EncodePatches encodes a patch script.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoderWithCap(32 + 32*len(pf.Patches))
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patch script using the provided encoder.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteCount(len(pf.Patches))
	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
}

func encodePatch(e *Encoder, p *vdom.Patch) {
	e.WriteByte(byte(p.Op))
	EncodePathTo(e, p.Path)
	e.WriteString(p.Tag)

	switch p.Op {
	case vdom.InsertBeforeNode, vdom.InsertAfterNode, vdom.AppendChildren, vdom.ReplaceNode:
		encodeNodes(e, p.Nodes)
	case vdom.AddAttributes, vdom.RemoveAttributes:
		encodeAttributes(e, p.Attrs)
	case vdom.MoveBeforeNode, vdom.MoveAfterNode:
		e.WriteCount(len(p.NodePaths))
		for _, np := range p.NodePaths {
			EncodePathTo(e, np)
		}
	}
}

// DecodePatches decodes a patch script. The whole input must be consumed.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	pf, err := DecodePatchesFrom(d, DefaultLimits())
	if err != nil {
		return nil, err
	}
	return pf, d.finish()
}

// DecodePatchesFrom decodes a patch script from d.
func DecodePatchesFrom(d *Decoder, limits Limits) (*PatchesFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	pf := &PatchesFrame{Seq: seq, Patches: make([]vdom.Patch, 0, count)}
	for i := 0; i < count; i++ {
		p, err := decodePatch(d, limits.nodeDepth())
		if err != nil {
			return nil, err
		}
		pf.Patches = append(pf.Patches, p)
	}
	return pf, nil
}

func decodePatch(d *Decoder, maxDepth int) (vdom.Patch, error) {
	var p vdom.Patch
	op, err := d.ReadByte()
	if err != nil {
		return p, err
	}
	p.Op = vdom.PatchOp(op)
	if p.Op < vdom.InsertBeforeNode || p.Op > vdom.MoveAfterNode {
		return p, ErrInvalidOp
	}
	if p.Path, err = DecodePathFrom(d); err != nil {
		return p, err
	}
	if p.Tag, err = d.ReadString(); err != nil {
		return p, err
	}

	switch p.Op {
	case vdom.InsertBeforeNode, vdom.InsertAfterNode, vdom.AppendChildren, vdom.ReplaceNode:
		// Payload nodes sit one level below the patch.
		p.Nodes, err = decodeNodes(d, 0, maxDepth)
	case vdom.AddAttributes, vdom.RemoveAttributes:
		p.Attrs, err = decodeAttributes(d)
	case vdom.MoveBeforeNode, vdom.MoveAfterNode:
		var count int
		if count, err = d.ReadCount(); err != nil {
			return p, err
		}
		for i := 0; i < count; i++ {
			np, err := DecodePathFrom(d)
			if err != nil {
				return p, err
			}
			p.NodePaths = append(p.NodePaths, np)
		}
	}
	return p, err
}
