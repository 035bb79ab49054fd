package protocol

import (
	"errors"
	"io"
	"math"
	"testing"
)

func TestEncoderDecoder(t *testing.T) {
	e := NewEncoder()
	e.WriteByte(0x42)
	e.WriteUvarint(12345)
	e.WriteSvarint(-9876)
	e.WriteString("hello world")
	e.WriteBool(true)
	e.WriteBool(false)
	e.WriteUint32(0x12345678)
	e.WriteUint64(0x123456789ABCDEF0)
	e.WriteFloat64(2.718281828459045)
	e.WriteCount(0)

	d := NewDecoder(e.Bytes())

	if b, err := d.ReadByte(); err != nil || b != 0x42 {
		t.Errorf("ReadByte() = %x, %v; want 0x42, nil", b, err)
	}
	if uv, err := d.ReadUvarint(); err != nil || uv != 12345 {
		t.Errorf("ReadUvarint() = %d, %v; want 12345, nil", uv, err)
	}
	if sv, err := d.ReadSvarint(); err != nil || sv != -9876 {
		t.Errorf("ReadSvarint() = %d, %v; want -9876, nil", sv, err)
	}
	if s, err := d.ReadString(); err != nil || s != "hello world" {
		t.Errorf("ReadString() = %q, %v; want \"hello world\", nil", s, err)
	}
	if b, err := d.ReadBool(); err != nil || !b {
		t.Errorf("ReadBool() = %v, %v; want true, nil", b, err)
	}
	if b, err := d.ReadBool(); err != nil || b {
		t.Errorf("ReadBool() = %v, %v; want false, nil", b, err)
	}
	if v, err := d.ReadUint32(); err != nil || v != 0x12345678 {
		t.Errorf("ReadUint32() = %x, %v; want 0x12345678, nil", v, err)
	}
	if v, err := d.ReadUint64(); err != nil || v != 0x123456789ABCDEF0 {
		t.Errorf("ReadUint64() = %x, %v; want 0x123456789ABCDEF0, nil", v, err)
	}
	if v, err := d.ReadFloat64(); err != nil || v != 2.718281828459045 {
		t.Errorf("ReadFloat64() = %v, %v; want 2.718281828459045, nil", v, err)
	}
	if n, err := d.ReadCount(); err != nil || n != 0 {
		t.Errorf("ReadCount() = %d, %v; want 0, nil", n, err)
	}
	if !d.EOF() {
		t.Errorf("decoder has %d bytes left, want 0", d.Remaining())
	}
}

func TestVarintEncoding(t *testing.T) {
	tests := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}
	for _, tt := range tests {
		e := NewEncoder()
		e.WriteUvarint(tt.value)
		if got := e.Bytes(); string(got) != string(tt.want) {
			t.Errorf("WriteUvarint(%d) = %x, want %x", tt.value, got, tt.want)
		}
		got, err := NewDecoder(tt.want).ReadUvarint()
		if err != nil || got != tt.value {
			t.Errorf("ReadUvarint(%x) = %d, %v; want %d, nil", tt.want, got, err, tt.value)
		}
	}
}

func TestSvarintZigZag(t *testing.T) {
	tests := []struct {
		value int64
		want  byte
	}{
		{0, 0x00},
		{-1, 0x01},
		{1, 0x02},
		{-2, 0x03},
		{2, 0x04},
	}
	for _, tt := range tests {
		e := NewEncoder()
		e.WriteSvarint(tt.value)
		if got := e.Bytes(); len(got) != 1 || got[0] != tt.want {
			t.Errorf("WriteSvarint(%d) = %x, want %x", tt.value, got, tt.want)
		}
	}

	for _, v := range []int64{math.MinInt64, -1 << 40, 1 << 40, math.MaxInt64} {
		e := NewEncoder()
		e.WriteSvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadSvarint()
		if err != nil || got != v {
			t.Errorf("svarint round trip of %d = %d, %v", v, got, err)
		}
	}
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(*Decoder) error
		want error
	}{
		{
			name: "empty byte",
			data: nil,
			read: func(d *Decoder) error { _, err := d.ReadByte(); return err },
			want: io.ErrUnexpectedEOF,
		},
		{
			name: "incomplete varint",
			data: []byte{0x80},
			read: func(d *Decoder) error { _, err := d.ReadUvarint(); return err },
			want: io.ErrUnexpectedEOF,
		},
		{
			name: "varint overflow",
			data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01},
			read: func(d *Decoder) error { _, err := d.ReadUvarint(); return err },
			want: ErrVarintOverflow,
		},
		{
			name: "string longer than buffer",
			data: []byte{0x05, 'a', 'b'},
			read: func(d *Decoder) error { _, err := d.ReadString(); return err },
			want: io.ErrUnexpectedEOF,
		},
		{
			name: "invalid bool",
			data: []byte{0x02},
			read: func(d *Decoder) error { _, err := d.ReadBool(); return err },
			want: ErrInvalidBool,
		},
		{
			name: "short uint32",
			data: []byte{0x00, 0x01},
			read: func(d *Decoder) error { _, err := d.ReadUint32(); return err },
			want: io.ErrUnexpectedEOF,
		},
		{
			name: "collection over limit",
			data: []byte{0xA1, 0x8D, 0x06}, // 100001
			read: func(d *Decoder) error { _, err := d.ReadCount(); return err },
			want: ErrCollectionTooLarge,
		},
		{
			name: "collection larger than remaining bytes",
			data: []byte{0x03, 0x00},
			read: func(d *Decoder) error { _, err := d.ReadCount(); return err },
			want: io.ErrUnexpectedEOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.read(NewDecoder(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStringAllocationLimit(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(DefaultMaxAllocation + 1)
	e.WriteBytes(make([]byte, DefaultMaxAllocation+1))
	if _, err := NewDecoder(e.Bytes()).ReadString(); !errors.Is(err, ErrAllocationTooLarge) {
		t.Errorf("ReadString() error = %v, want ErrAllocationTooLarge", err)
	}
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoderWithCap(8)
	e.WriteString("abc")
	e.Reset()
	if e.Len() != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", e.Len())
	}
	e.WriteByte(1)
	if got := e.Bytes(); len(got) != 1 || got[0] != 1 {
		t.Errorf("Bytes() = %x, want 01", got)
	}
}
