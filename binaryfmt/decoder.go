package binaryfmt

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Decoder reads primitive values from a Cursor in a fixed byte order
// (big-endian or little-endian). It owns no other state; exclusive-mutation
// semantics mean one decode operation runs at a time on a given Decoder.
type Decoder struct {
	c     *Cursor
	order binary.ByteOrder
}

// NewDecoder creates a Decoder over buf using the given byte order.
func NewDecoder(buf []byte, order binary.ByteOrder) *Decoder {
	return &Decoder{c: NewCursor(buf), order: order}
}

// NewDecoderRange creates a Decoder bounded to [min, max) of buf.
func NewDecoderRange(buf []byte, min, max int, order binary.ByteOrder) (*Decoder, error) {
	c, err := NewCursorRange(buf, min, max)
	if err != nil {
		return nil, err
	}
	return &Decoder{c: c, order: order}, nil
}

// Cursor exposes the underlying cursor for shared positioning operations.
func (d *Decoder) Cursor() *Cursor { return d.c }

// Order returns the configured byte order.
func (d *Decoder) Order() binary.ByteOrder { return d.order }

// Capacity, Len, Offset, Reset, Rewind, Seek, Skip, SkipZeros, IsSkipZeros
// delegate to the shared Cursor.
func (d *Decoder) Capacity() int                  { return d.c.Capacity() }
func (d *Decoder) Len() int                       { return d.c.Len() }
func (d *Decoder) Offset() int                    { return d.c.Offset() }
func (d *Decoder) Reset()                         { d.c.Reset() }
func (d *Decoder) Rewind(n int) error              { return d.c.Rewind(n) }
func (d *Decoder) Seek(pos int) error              { return d.c.Seek(pos) }
func (d *Decoder) Skip(n int) error                { return d.c.Skip(n) }
func (d *Decoder) SkipZeros(n int) error           { return d.c.SkipZeros(n) }
func (d *Decoder) IsSkipZeros(n int) (bool, error) { return d.c.IsSkipZeros(n) }

// GetBool reads one byte as a boolean: 0 = false, 1 = true, anything else
// is ErrInvalidBoolean.
func (d *Decoder) GetBool() (bool, error) {
	b, err := d.GetU8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrInvalidBoolean
	}
}

// GetU8 reads one unsigned byte.
func (d *Decoder) GetU8() (uint8, error) {
	if err := d.c.ensure(1); err != nil {
		return 0, err
	}
	v := d.c.buf[d.c.off]
	d.c.advance(1)
	return v, nil
}

// GetI8 reads one signed byte.
func (d *Decoder) GetI8() (int8, error) {
	v, err := d.GetU8()
	return int8(v), err
}

// GetU16 reads a two-byte unsigned integer in the configured byte order.
func (d *Decoder) GetU16() (uint16, error) {
	if err := d.c.ensure(2); err != nil {
		return 0, err
	}
	v := d.order.Uint16(d.c.buf[d.c.off : d.c.off+2])
	d.c.advance(2)
	return v, nil
}

// GetI16 reads a two-byte signed integer.
func (d *Decoder) GetI16() (int16, error) {
	v, err := d.GetU16()
	return int16(v), err
}

// GetU32 reads a four-byte unsigned integer.
func (d *Decoder) GetU32() (uint32, error) {
	if err := d.c.ensure(4); err != nil {
		return 0, err
	}
	v := d.order.Uint32(d.c.buf[d.c.off : d.c.off+4])
	d.c.advance(4)
	return v, nil
}

// GetI32 reads a four-byte signed integer.
func (d *Decoder) GetI32() (int32, error) {
	v, err := d.GetU32()
	return int32(v), err
}

// GetU64 reads an eight-byte unsigned integer.
func (d *Decoder) GetU64() (uint64, error) {
	if err := d.c.ensure(8); err != nil {
		return 0, err
	}
	v := d.order.Uint64(d.c.buf[d.c.off : d.c.off+8])
	d.c.advance(8)
	return v, nil
}

// GetI64 reads an eight-byte signed integer.
func (d *Decoder) GetI64() (int64, error) {
	v, err := d.GetU64()
	return int64(v), err
}

// GetF32 reads a four-byte IEEE-754 float.
func (d *Decoder) GetF32() (float32, error) {
	v, err := d.GetU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// GetF64 reads an eight-byte IEEE-754 float.
func (d *Decoder) GetF64() (float64, error) {
	v, err := d.GetU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// GetUsize32 reads a four-byte unsigned integer as a platform-width count.
func (d *Decoder) GetUsize32() (int, error) {
	v, err := d.GetU32()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// GetUsize64 reads an eight-byte unsigned integer as a platform-width count,
// failing with ErrIntegerConversion if it overflows int.
func (d *Decoder) GetUsize64() (int, error) {
	v, err := d.GetU64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt64 {
		return 0, ErrIntegerConversion
	}
	return int(v), nil
}

// GetBytes reads exactly n raw bytes (a view into the underlying buffer,
// not a copy).
func (d *Decoder) GetBytes(n int) ([]byte, error) {
	if err := d.c.ensure(n); err != nil {
		return nil, err
	}
	v := d.c.buf[d.c.off : d.c.off+n]
	d.c.advance(n)
	return v, nil
}

// GetString reads n raw bytes and validates them as UTF-8.
func (d *Decoder) GetString(n int) (string, error) {
	start := d.c.off
	b, err := d.GetBytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", invalidUTF8Error(start, n)
	}
	return string(b), nil
}

// GetCString reads a NUL-terminated string from within a fixed-size field,
// failing if no NUL byte is found in the first n bytes. The cursor always
// advances by exactly n bytes (the field's fixed width), regardless of
// where the NUL terminator falls.
func (d *Decoder) GetCString(n int) (string, error) {
	start := d.c.off
	b, err := d.GetBytes(n)
	if err != nil {
		return "", err
	}
	nul := -1
	for i, c := range b {
		if c == 0 {
			nul = i
			break
		}
	}
	if nul < 0 {
		return "", ErrInvalidUTF8
	}
	if !utf8.Valid(b[:nul]) {
		return "", invalidUTF8Error(start, nul)
	}
	return string(b[:nul]), nil
}
