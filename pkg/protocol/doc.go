// Package protocol implements the binary wire format for trees and patch
// scripts.
//
// A tree travels from the renderer to the server in a Tree frame; the patch
// script that turns the previous tree into it travels back in a Patches
// frame. Encoding uses no reflection and never retains the input buffer.
//
// # Wire Format
//
// Every message is framed with a 6-byte header:
//
//	┌────────────┬────────────┬──────────────────────────────┐
//	│ Frame Type │ Flags      │ Payload Length               │
//	│ (1 byte)   │ (1 byte)   │ (4 bytes, big-endian)        │
//	└────────────┴────────────┴──────────────────────────────┘
//
// # Frame Types
//
//   - FrameTree (0x01): an encoded vdom.Node
//   - FramePatches (0x02): a PatchesFrame
//   - FrameAck (0x04): an Ack
//   - FrameError (0x05): an ErrorMessage
//
// # Encoding
//
//   - Varint: unsigned integers, protobuf style
//   - ZigZag: signed integers as unsigned varints
//   - Length-prefixed: strings and lists carry a varint length
//   - Big-endian: fixed width integers and float64
//
// A TreePath is its depth followed by one varint per index.
//
// # Limits
//
// Decoders reject hostile input instead of allocating for it: strings are
// capped at DefaultMaxAllocation, lists at MaxCollectionCount (and at the
// number of bytes left), nesting at MaxNodeDepth, frames at MaxPayloadSize.
//
// # Usage Example
//
//	pf := &PatchesFrame{Seq: 1, Patches: vdom.Diff(prev, next)}
//	frame := NewFrame(FramePatches, EncodePatches(pf))
//	if err := WriteFrame(w, frame); err != nil {
//	    return err
//	}
//
//	decoded, err := DecodePatches(frame.Payload)
package protocol
