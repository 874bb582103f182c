package binaryfmt

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// XdrDecoder decodes RFC 4506 XDR primitives: every integer widens to 32
// bits on the wire in big-endian order; booleans are u32 0/1; byte arrays
// and strings are length-prefixed (u32) and padded to the next multiple of
// 4 with zero bytes, which must read back as zero. Rewind/Seek/Skip offsets
// must be 4-byte aligned.
type XdrDecoder struct {
	c *Cursor
}

// NewXdrDecoder creates an XdrDecoder over buf.
func NewXdrDecoder(buf []byte) *XdrDecoder {
	return &XdrDecoder{c: NewCursor(buf)}
}

// NewXdrDecoderRange creates an XdrDecoder bounded to [min, max) of buf.
func NewXdrDecoderRange(buf []byte, min, max int) (*XdrDecoder, error) {
	c, err := NewCursorRange(buf, min, max)
	if err != nil {
		return nil, err
	}
	return &XdrDecoder{c: c}, nil
}

// Cursor exposes the underlying cursor.
func (d *XdrDecoder) Cursor() *Cursor { return d.c }

func (d *XdrDecoder) Capacity() int { return d.c.Capacity() }
func (d *XdrDecoder) Len() int      { return d.c.Len() }
func (d *XdrDecoder) Offset() int   { return d.c.Offset() }
func (d *XdrDecoder) Reset()        { d.c.Reset() }

// pad4 rounds n up to the next multiple of 4.
func pad4(n int) int { return (n + 3) &^ 3 }

func alignedOrErr(n int) error {
	if n%4 != 0 {
		return ErrAlignment
	}
	return nil
}

// Rewind moves the offset back by n bytes; n must be a multiple of 4.
func (d *XdrDecoder) Rewind(n int) error {
	if err := alignedOrErr(n); err != nil {
		return err
	}
	return d.c.Rewind(n)
}

// Seek sets the absolute offset; it must be a multiple of 4.
func (d *XdrDecoder) Seek(pos int) error {
	if err := alignedOrErr(pos); err != nil {
		return err
	}
	return d.c.Seek(pos)
}

// Skip advances the offset by n bytes; n must be a multiple of 4.
func (d *XdrDecoder) Skip(n int) error {
	if err := alignedOrErr(n); err != nil {
		return err
	}
	return d.c.Skip(n)
}

// SkipZeros advances by n (multiple of 4) bytes, requiring them all zero.
func (d *XdrDecoder) SkipZeros(n int) error {
	if err := alignedOrErr(n); err != nil {
		return err
	}
	return d.c.SkipZeros(n)
}

// GetBool reads a u32 XDR boolean: 0 = false, 1 = true.
func (d *XdrDecoder) GetBool() (bool, error) {
	v, err := d.GetU32()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrInvalidBoolean
	}
}

// GetU8 reads a widened (4-byte) unsigned 8-bit value.
func (d *XdrDecoder) GetU8() (uint8, error) {
	v, err := d.GetU32()
	if err != nil {
		return 0, err
	}
	if v > 0xFF {
		return 0, ErrIntegerConversion
	}
	return uint8(v), nil
}

// GetI8 reads a widened signed 8-bit value.
func (d *XdrDecoder) GetI8() (int8, error) {
	v, err := d.GetI32()
	if err != nil {
		return 0, err
	}
	if v < -128 || v > 127 {
		return 0, ErrIntegerConversion
	}
	return int8(v), nil
}

// GetU16 reads a widened unsigned 16-bit value.
func (d *XdrDecoder) GetU16() (uint16, error) {
	v, err := d.GetU32()
	if err != nil {
		return 0, err
	}
	if v > 0xFFFF {
		return 0, ErrIntegerConversion
	}
	return uint16(v), nil
}

// GetI16 reads a widened signed 16-bit value.
func (d *XdrDecoder) GetI16() (int16, error) {
	v, err := d.GetI32()
	if err != nil {
		return 0, err
	}
	if v < -32768 || v > 32767 {
		return 0, ErrIntegerConversion
	}
	return int16(v), nil
}

// GetU32 reads a four-byte unsigned integer, big-endian.
func (d *XdrDecoder) GetU32() (uint32, error) {
	if err := d.c.ensure(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.c.buf[d.c.off : d.c.off+4])
	d.c.advance(4)
	return v, nil
}

// GetI32 reads a four-byte signed integer, big-endian.
func (d *XdrDecoder) GetI32() (int32, error) {
	v, err := d.GetU32()
	return int32(v), err
}

// GetU64 reads two consecutive XDR u32 words (hi, lo), forming a 64-bit
// unsigned integer, per RFC 4506 hyper encoding.
func (d *XdrDecoder) GetU64() (uint64, error) {
	hi, err := d.GetU32()
	if err != nil {
		return 0, err
	}
	lo, err := d.GetU32()
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// GetI64 reads a signed 64-bit hyper value.
func (d *XdrDecoder) GetI64() (int64, error) {
	v, err := d.GetU64()
	return int64(v), err
}

// GetF32 reads a four-byte IEEE-754 float.
func (d *XdrDecoder) GetF32() (float32, error) {
	v, err := d.GetU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// GetF64 reads an eight-byte IEEE-754 double.
func (d *XdrDecoder) GetF64() (float64, error) {
	v, err := d.GetU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// GetUsize32 reads a u32 length/count as a platform-width int.
func (d *XdrDecoder) GetUsize32() (int, error) {
	v, err := d.GetU32()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// GetBytes reads a length-prefixed (u32 count) byte array, validating and
// consuming the zero padding to the next multiple of 4. The returned slice
// is a view into the underlying buffer.
func (d *XdrDecoder) GetBytes() ([]byte, error) {
	n, err := d.GetUsize32()
	if err != nil {
		return nil, err
	}
	if err := d.c.ensure(n); err != nil {
		return nil, err
	}
	start := d.c.off
	d.c.advance(n)
	padding := pad4(n) - n
	if padding > 0 {
		if err := d.c.SkipZeros(padding); err != nil {
			return nil, err
		}
	}
	return d.c.buf[start : start+n], nil
}

// GetString reads a length-prefixed XDR string, validating UTF-8 and the
// trailing zero padding.
func (d *XdrDecoder) GetString() (string, error) {
	start := d.c.off
	b, err := d.GetBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", invalidUTF8Error(start, len(b))
	}
	return string(b), nil
}

// XdrEncoder mirrors XdrDecoder for encoding: every value widens to 32
// bits (or a pair of them for 64-bit hypers), big-endian, with byte
// arrays/strings length-prefixed and zero-padded to a 4-byte boundary.
type XdrEncoder struct {
	e *Encoder
}

// NewXdrEncoder wraps buf for XDR encoding.
func NewXdrEncoder(buf []byte) *XdrEncoder {
	return &XdrEncoder{e: NewEncoder(buf, binary.BigEndian)}
}

// Offset returns bytes written so far.
func (e *XdrEncoder) Offset() int { return e.e.Offset() }

// Finish returns the written prefix.
func (e *XdrEncoder) Finish() []byte { return e.e.Finish() }

// PutBool writes a u32 boolean.
func (e *XdrEncoder) PutBool(v bool) error {
	if v {
		return e.e.PutU32(1)
	}
	return e.e.PutU32(0)
}

// PutU8 writes a widened unsigned 8-bit value.
func (e *XdrEncoder) PutU8(v uint8) error { return e.e.PutU32(uint32(v)) }

// PutI8 writes a widened signed 8-bit value.
func (e *XdrEncoder) PutI8(v int8) error { return e.e.PutI32(int32(v)) }

// PutU16 writes a widened unsigned 16-bit value.
func (e *XdrEncoder) PutU16(v uint16) error { return e.e.PutU32(uint32(v)) }

// PutI16 writes a widened signed 16-bit value.
func (e *XdrEncoder) PutI16(v int16) error { return e.e.PutI32(int32(v)) }

// PutU32 writes a four-byte unsigned integer.
func (e *XdrEncoder) PutU32(v uint32) error { return e.e.PutU32(v) }

// PutI32 writes a four-byte signed integer.
func (e *XdrEncoder) PutI32(v int32) error { return e.e.PutI32(v) }

// PutU64 writes a 64-bit hyper as two consecutive u32 words (hi, lo).
func (e *XdrEncoder) PutU64(v uint64) error {
	if err := e.e.PutU32(uint32(v >> 32)); err != nil {
		return err
	}
	return e.e.PutU32(uint32(v))
}

// PutI64 writes a signed 64-bit hyper.
func (e *XdrEncoder) PutI64(v int64) error { return e.PutU64(uint64(v)) }

// PutF32 writes a four-byte IEEE-754 float.
func (e *XdrEncoder) PutF32(v float32) error { return e.e.PutF32(v) }

// PutF64 writes an eight-byte IEEE-754 double.
func (e *XdrEncoder) PutF64(v float64) error { return e.e.PutF64(v) }

// PutBytes writes a length-prefixed byte array, zero-padded to a 4-byte
// boundary.
func (e *XdrEncoder) PutBytes(b []byte) error {
	if err := e.e.PutU32(uint32(len(b))); err != nil {
		return err
	}
	if err := e.e.PutBytes(b); err != nil {
		return err
	}
	return e.e.PutZeros(pad4(len(b)) - len(b))
}

// PutString writes a length-prefixed XDR string.
func (e *XdrEncoder) PutString(s string) error { return e.PutBytes([]byte(s)) }
