package binaryfmt

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecoderGetPrimitives_LittleEndian(t *testing.T) {
	buf := []byte{
		0x01,                   // bool true
		0xFF,                   // u8
		0x34, 0x12,             // u16 = 0x1234
		0x78, 0x56, 0x34, 0x12, // u32 = 0x12345678
	}
	d := NewDecoder(buf, binary.LittleEndian)

	b, err := d.GetBool()
	require.NoError(t, err)
	require.True(t, b)

	u8, err := d.GetU8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xFF), u8)

	u16, err := d.GetU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), u16)

	u32, err := d.GetU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), u32)

	require.Equal(t, len(buf), d.Offset())
}

func TestDecoderGetBool_Invalid(t *testing.T) {
	d := NewDecoder([]byte{2}, binary.BigEndian)
	_, err := d.GetBool()
	require.ErrorIs(t, err, ErrInvalidBoolean)
}

func TestDecoderEndOfInput_DoesNotAdvance(t *testing.T) {
	d := NewDecoder([]byte{1, 2}, binary.BigEndian)
	_, err := d.GetU32()
	require.ErrorIs(t, err, ErrEndOfInput)
	require.Equal(t, 0, d.Offset(), "offset must not advance on failure")
}

func TestDecoderGetCString(t *testing.T) {
	buf := make([]byte, 8)
	copy(buf, "foo")
	d := NewDecoder(buf, binary.BigEndian)

	s, err := d.GetCString(8)
	require.NoError(t, err)
	require.Equal(t, "foo", s)
	require.Equal(t, 8, d.Offset())
}

func TestDecoderGetCString_NoTerminator(t *testing.T) {
	buf := []byte{'a', 'b', 'c', 'd'}
	d := NewDecoder(buf, binary.BigEndian)
	_, err := d.GetCString(4)
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestDecoderSkipZeros(t *testing.T) {
	d := NewDecoder([]byte{0, 0, 0, 1}, binary.BigEndian)
	require.NoError(t, d.SkipZeros(3))
	require.Equal(t, 3, d.Offset())

	ok, err := d.IsSkipZeros(1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDecoderSkipZeros_NonZero(t *testing.T) {
	d := NewDecoder([]byte{0, 1, 0}, binary.BigEndian)
	err := d.SkipZeros(3)
	require.ErrorIs(t, err, ErrNonZeroPadding)
	require.Equal(t, 0, d.Offset())
}

func TestEncoderDecoderRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	e := NewEncoder(buf, binary.LittleEndian)
	require.NoError(t, e.PutBool(true))
	require.NoError(t, e.PutU64(0xdeadbeefcafebabe))
	require.NoError(t, e.PutF64(3.5))
	require.NoError(t, e.PutCString("bar", 8))

	out := e.Finish()

	d := NewDecoder(out, binary.LittleEndian)
	b, err := d.GetBool()
	require.NoError(t, err)
	require.True(t, b)

	u64, err := d.GetU64()
	require.NoError(t, err)
	require.Equal(t, uint64(0xdeadbeefcafebabe), u64)

	f64, err := d.GetF64()
	require.NoError(t, err)
	require.InDelta(t, 3.5, f64, 0)

	s, err := d.GetCString(8)
	require.NoError(t, err)
	require.Equal(t, "bar", s)
}

func TestCursorRewindSeek(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3, 4}, binary.BigEndian)
	_, err := d.GetU32()
	require.NoError(t, err)

	require.NoError(t, d.Rewind(2))
	require.Equal(t, 2, d.Offset())

	require.Error(t, d.Rewind(10))

	require.NoError(t, d.Seek(0))
	require.Equal(t, 0, d.Offset())

	require.Error(t, d.Seek(10))
}

func TestCursorRange(t *testing.T) {
	buf := []byte{0, 0, 1, 2, 3, 4, 0, 0}
	d, err := NewDecoderRange(buf, 2, 6, binary.BigEndian)
	require.NoError(t, err)
	require.Equal(t, 4, d.Capacity())

	v, err := d.GetU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), v)

	_, err = NewDecoderRange(buf, 6, 2, binary.BigEndian)
	require.ErrorIs(t, err, ErrInvalidClamp)
}
