package binaryfmt

import (
	"encoding/binary"
	"math"
)

// Encoder writes primitive values into a caller-owned output slice in a
// fixed byte order, advancing a cursor as it goes. Finish returns the
// filled prefix.
type Encoder struct {
	buf   []byte
	off   int
	order binary.ByteOrder
}

// NewEncoder wraps buf (which must be large enough for everything that will
// be written) for encoding in the given byte order.
func NewEncoder(buf []byte, order binary.ByteOrder) *Encoder {
	return &Encoder{buf: buf, order: order}
}

// Offset returns the number of bytes written so far.
func (e *Encoder) Offset() int { return e.off }

// Finish returns the written prefix of the output buffer.
func (e *Encoder) Finish() []byte { return e.buf[:e.off] }

func (e *Encoder) ensure(n int) error {
	if e.off+n > len(e.buf) {
		return endOfInputError(e.off, len(e.buf), n)
	}
	return nil
}

// PutBool writes a boolean as one byte (0 or 1).
func (e *Encoder) PutBool(v bool) error {
	if v {
		return e.PutU8(1)
	}
	return e.PutU8(0)
}

// PutU8 writes one unsigned byte.
func (e *Encoder) PutU8(v uint8) error {
	if err := e.ensure(1); err != nil {
		return err
	}
	e.buf[e.off] = v
	e.off++
	return nil
}

// PutI8 writes one signed byte.
func (e *Encoder) PutI8(v int8) error { return e.PutU8(uint8(v)) }

// PutU16 writes a two-byte unsigned integer.
func (e *Encoder) PutU16(v uint16) error {
	if err := e.ensure(2); err != nil {
		return err
	}
	e.order.PutUint16(e.buf[e.off:e.off+2], v)
	e.off += 2
	return nil
}

// PutI16 writes a two-byte signed integer.
func (e *Encoder) PutI16(v int16) error { return e.PutU16(uint16(v)) }

// PutU32 writes a four-byte unsigned integer.
func (e *Encoder) PutU32(v uint32) error {
	if err := e.ensure(4); err != nil {
		return err
	}
	e.order.PutUint32(e.buf[e.off:e.off+4], v)
	e.off += 4
	return nil
}

// PutI32 writes a four-byte signed integer.
func (e *Encoder) PutI32(v int32) error { return e.PutU32(uint32(v)) }

// PutU64 writes an eight-byte unsigned integer.
func (e *Encoder) PutU64(v uint64) error {
	if err := e.ensure(8); err != nil {
		return err
	}
	e.order.PutUint64(e.buf[e.off:e.off+8], v)
	e.off += 8
	return nil
}

// PutI64 writes an eight-byte signed integer.
func (e *Encoder) PutI64(v int64) error { return e.PutU64(uint64(v)) }

// PutF32 writes a four-byte IEEE-754 float.
func (e *Encoder) PutF32(v float32) error { return e.PutU32(math.Float32bits(v)) }

// PutF64 writes an eight-byte IEEE-754 float.
func (e *Encoder) PutF64(v float64) error { return e.PutU64(math.Float64bits(v)) }

// PutBytes writes raw bytes verbatim.
func (e *Encoder) PutBytes(b []byte) error {
	if err := e.ensure(len(b)); err != nil {
		return err
	}
	copy(e.buf[e.off:], b)
	e.off += len(b)
	return nil
}

// PutZeros writes n zero bytes.
func (e *Encoder) PutZeros(n int) error {
	if err := e.ensure(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		e.buf[e.off+i] = 0
	}
	e.off += n
	return nil
}

// PutString writes s's bytes verbatim (no length prefix; caller-specified
// width framing is the plain-endian convention).
func (e *Encoder) PutString(s string) error { return e.PutBytes([]byte(s)) }

// PutCString writes s followed by enough NUL bytes to fill a field of
// width n. Fails if s (plus its terminator) does not fit in n bytes.
func (e *Encoder) PutCString(s string, n int) error {
	if len(s)+1 > n {
		return ErrIntegerConversion
	}
	if err := e.PutBytes([]byte(s)); err != nil {
		return err
	}
	return e.PutZeros(n - len(s))
}
