package protocol

// Ack acknowledges a sequence number.
//
// The server acks a mounted tree (a Tree frame with no previous tree, or
// with FlagReset). The client acks every Patches frame it applied.
type Ack struct {
	Seq uint64
}

// EncodeAck encodes an Ack to bytes.
func EncodeAck(ack *Ack) []byte {
	e := NewEncoderWithCap(10)
	e.WriteUvarint(ack.Seq)
	return e.Bytes()
}

// DecodeAck decodes an Ack from bytes.
func DecodeAck(data []byte) (*Ack, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	return &Ack{Seq: seq}, d.finish()
}
