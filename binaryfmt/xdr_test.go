package binaryfmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXdrBoolRoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	e := NewXdrEncoder(buf)
	require.NoError(t, e.PutBool(true))

	d := NewXdrDecoder(e.Finish())
	v, err := d.GetBool()
	require.NoError(t, err)
	require.True(t, v)
}

func TestXdrBool_InvalidEncoding(t *testing.T) {
	buf := []byte{0, 0, 0, 2}
	d := NewXdrDecoder(buf)
	_, err := d.GetBool()
	require.ErrorIs(t, err, ErrInvalidBoolean)
}

func TestXdrIntegerWidening(t *testing.T) {
	buf := make([]byte, 8)
	e := NewXdrEncoder(buf)
	require.NoError(t, e.PutU8(200))
	require.NoError(t, e.PutI16(-1234))

	d := NewXdrDecoder(e.Finish())
	u8, err := d.GetU8()
	require.NoError(t, err)
	require.Equal(t, uint8(200), u8)

	i16, err := d.GetI16()
	require.NoError(t, err)
	require.Equal(t, int16(-1234), i16)
}

func TestXdrU64HyperEncoding(t *testing.T) {
	buf := make([]byte, 8)
	e := NewXdrEncoder(buf)
	require.NoError(t, e.PutU64(0x0102030405060708))

	out := e.Finish()
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, out[0:4], "hi word first")
	require.Equal(t, []byte{0x05, 0x06, 0x07, 0x08}, out[4:8], "lo word second")

	d := NewXdrDecoder(out)
	v, err := d.GetU64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), v)
}

func TestXdrBytesPadding(t *testing.T) {
	buf := make([]byte, 32)
	e := NewXdrEncoder(buf)
	require.NoError(t, e.PutBytes([]byte("abc")))
	out := e.Finish()

	// len prefix (4) + 3 data bytes + 1 pad byte = 8.
	require.Equal(t, 8, len(out))
	require.Equal(t, byte(0), out[7], "padding byte must be zero")

	d := NewXdrDecoder(out)
	b, err := d.GetBytes()
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), b)
	require.Equal(t, len(out), d.Offset())
}

func TestXdrBytesPadding_NonZeroRejected(t *testing.T) {
	buf := make([]byte, 8)
	e := NewXdrEncoder(buf)
	require.NoError(t, e.PutBytes([]byte("abc")))
	out := e.Finish()
	out[7] = 0xFF // corrupt the padding byte

	d := NewXdrDecoder(out)
	_, err := d.GetBytes()
	require.ErrorIs(t, err, ErrNonZeroPadding)
}

func TestXdrStringRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	e := NewXdrEncoder(buf)
	require.NoError(t, e.PutString("hello, zfs"))

	d := NewXdrDecoder(e.Finish())
	s, err := d.GetString()
	require.NoError(t, err)
	require.Equal(t, "hello, zfs", s)
}

func TestXdrAlignmentEnforced(t *testing.T) {
	d := NewXdrDecoder(make([]byte, 16))
	require.ErrorIs(t, d.Skip(3), ErrAlignment)
	require.ErrorIs(t, d.Seek(5), ErrAlignment)
	require.NoError(t, d.Skip(4))
	require.NoError(t, d.Rewind(4))
}

func TestXdrEmptyBytes(t *testing.T) {
	buf := make([]byte, 4)
	e := NewXdrEncoder(buf)
	require.NoError(t, e.PutBytes(nil))
	out := e.Finish()
	require.Equal(t, 4, len(out))

	d := NewXdrDecoder(out)
	b, err := d.GetBytes()
	require.NoError(t, err)
	require.Empty(t, b)
}
