package spacemap

import (
	"encoding/binary"
	"testing"

	"github.com/scigolib/zfsphys/binaryfmt"
	"github.com/stretchr/testify/require"
)

func roundTripEntry(t *testing.T, e *Entry, wantSize int) *Entry {
	t.Helper()
	buf := make([]byte, wantSize)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, e.Encode(enc))
	require.Equal(t, wantSize, enc.Offset())

	dec := binaryfmt.NewDecoder(enc.Finish(), binary.BigEndian)
	got, err := DecodeEntry(dec)
	require.NoError(t, err)
	return got
}

func TestEntryV1_RoundTrip(t *testing.T) {
	e := &Entry{V1: &EntryV1{Action: Free, Offset: 0x1234, Run: RunMaxV1}}
	got := roundTripEntry(t, e, 8)
	require.NotNil(t, got.V1)
	require.Equal(t, Free, got.V1.Action)
	require.Equal(t, uint64(0x1234), got.V1.Offset)
	require.Equal(t, RunMaxV1, got.V1.Run)
}

func TestDebugEntry_RoundTrip(t *testing.T) {
	e := &Entry{Debug: &DebugEntry{Action: Allocate, SyncPass: SyncPassMax, TXG: 42}}
	got := roundTripEntry(t, e, 8)
	require.NotNil(t, got.Debug)
	require.Equal(t, Allocate, got.Debug.Action)
	require.Equal(t, SyncPassMax, got.Debug.SyncPass)
	require.Equal(t, uint64(42), got.Debug.TXG)
}

func TestEntryV2_RoundTrip(t *testing.T) {
	e := &Entry{V2: &EntryV2{Action: Free, Offset: 0x7fffffffffffffff, Run: 12345, Vdev: VdevMaxV2}}
	got := roundTripEntry(t, e, 16)
	require.NotNil(t, got.V2)
	require.Equal(t, Free, got.V2.Action)
	require.Equal(t, uint64(0x7fffffffffffffff), got.V2.Offset)
	require.Equal(t, uint64(12345), got.V2.Run)
	require.Equal(t, VdevMaxV2, got.V2.Vdev)
}

func TestEntry_Padding(t *testing.T) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, paddingValue)
	dec := binaryfmt.NewDecoder(buf, binary.BigEndian)
	got, err := DecodeEntry(dec)
	require.NoError(t, err)
	require.True(t, got.Padding)

	got = roundTripEntry(t, &Entry{Padding: true}, 8)
	require.True(t, got.Padding)
}

func TestEntryV2_RejectsNonZeroPadding(t *testing.T) {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf, uint64(3)<<62|uint64(1)<<60) // type=V2, padding bit set
	dec := binaryfmt.NewDecoder(buf, binary.BigEndian)
	_, err := DecodeEntry(dec)
	require.ErrorIs(t, err, ErrNonZeroPadding)
}

func TestEntry_RejectsUnknownAction(t *testing.T) {
	buf := make([]byte, 8)
	// V1 entry with action bit... only 0/1 valid, so force via Debug's 2-bit
	// action field instead, which can carry 2 or 3.
	a := uint64(2)<<62 | uint64(3)<<debugActionShift
	binary.BigEndian.PutUint64(buf, a)
	dec := binaryfmt.NewDecoder(buf, binary.BigEndian)
	_, err := DecodeEntry(dec)
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestHeader_RoundTrip_NoHistogram(t *testing.T) {
	h := &Header{Obj: 7, LengthBytes: 4096, AllocatedBytes: 2048}
	buf := make([]byte, HeaderSizeNoHistogram)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, h.Encode(enc))

	dec := binaryfmt.NewDecoder(enc.Finish(), binary.BigEndian)
	got, err := DecodeHeader(dec)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, HeaderSizeNoHistogram, h.Size())
}

func TestHeader_RoundTrip_WithHistogram(t *testing.T) {
	var hist [HistogramBuckets]uint64
	for i := range hist {
		hist[i] = uint64(i)
	}
	h := &Header{Obj: 3, LengthBytes: 1, AllocatedBytes: 1, Histogram: &hist}
	buf := make([]byte, HeaderSizeHistogram)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, h.Encode(enc))

	dec := binaryfmt.NewDecoder(enc.Finish(), binary.BigEndian)
	got, err := DecodeHeader(dec)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, HeaderSizeHistogram, h.Size())
}

func TestHeader_RejectsMissingObject(t *testing.T) {
	buf := make([]byte, HeaderSizeNoHistogram)
	dec := binaryfmt.NewDecoder(buf, binary.BigEndian)
	_, err := DecodeHeader(dec)
	require.ErrorIs(t, err, ErrMissingObject)
}
