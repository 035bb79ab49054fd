package protocol

import (
	"errors"
	"io"
)

// FrameHeaderSize is the size of the frame header in bytes.
const FrameHeaderSize = 6

// MaxPayloadSize is the largest payload a frame may carry.
const MaxPayloadSize = HardMaxAllocation

// FrameType identifies the payload of a frame.
type FrameType uint8

const (
	FrameTree    FrameType = 0x01 // Client → Server: next tree (EncodeNode)
	FramePatches FrameType = 0x02 // Server → Client: patch script (EncodePatches)
	FrameAck     FrameType = 0x04 // Either way: sequence acknowledgment
	FrameError   FrameType = 0x05 // Either way: error report
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameTree:
		return "Tree"
	case FramePatches:
		return "Patches"
	case FrameAck:
		return "Ack"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Valid reports whether ft is a known frame type.
func (ft FrameType) Valid() bool {
	return ft.String() != "Unknown"
}

// FrameFlags are optional frame modifiers.
type FrameFlags uint8

const (
	// FlagReset marks a Tree frame that replaces the session tree without
	// producing patches.
	FlagReset FrameFlags = 0x01
)

// Has reports whether ff contains flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is a typed, length-prefixed payload.
//
// Wire format (6 byte header + payload):
//
//	┌────────────┬────────────┬──────────────────────────────┐
//	│ Frame Type │ Flags      │ Payload Length               │
//	│ (1 byte)   │ (1 byte)   │ (4 bytes, big-endian)        │
//	└────────────┴────────────┴──────────────────────────────┘
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame creates a frame with no flags.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode returns the frame header followed by the payload.
func (f *Frame) Encode() []byte {
	e := NewEncoderWithCap(FrameHeaderSize + len(f.Payload))
	f.EncodeTo(e)
	return e.Bytes()
}

// EncodeTo encodes the frame using the provided encoder.
func (f *Frame) EncodeTo(e *Encoder) {
	e.WriteByte(byte(f.Type))
	e.WriteByte(byte(f.Flags))
	e.WriteUint32(uint32(len(f.Payload)))
	e.WriteBytes(f.Payload)
}

// DecodeFrame decodes one complete frame. Bytes past the payload are
// rejected.
func DecodeFrame(data []byte) (*Frame, error) {
	ft, flags, length, err := DecodeFrameHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) < FrameHeaderSize+length {
		return nil, io.ErrUnexpectedEOF
	}
	if len(data) > FrameHeaderSize+length {
		return nil, ErrTrailingBytes
	}
	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:])
	return &Frame{Type: ft, Flags: flags, Payload: payload}, nil
}

// DecodeFrameHeader decodes and validates a frame header.
func DecodeFrameHeader(data []byte) (FrameType, FrameFlags, int, error) {
	d := NewDecoder(data)
	ft, err := d.ReadByte()
	if err != nil {
		return 0, 0, 0, err
	}
	flags, err := d.ReadByte()
	if err != nil {
		return 0, 0, 0, err
	}
	length, err := d.ReadUint32()
	if err != nil {
		return 0, 0, 0, err
	}
	if !FrameType(ft).Valid() {
		return 0, 0, 0, ErrInvalidFrameType
	}
	if length > MaxPayloadSize {
		return 0, 0, 0, ErrFrameTooLarge
	}
	return FrameType(ft), FrameFlags(flags), int(length), nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	ft, flags, length, err := DecodeFrameHeader(header)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}
	return &Frame{Type: ft, Flags: flags, Payload: payload}, nil
}

// WriteFrame writes one frame to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}
