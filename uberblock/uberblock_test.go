package uberblock

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scigolib/zfsphys/binaryfmt"
	"github.com/scigolib/zfsphys/blockptr"
)

const slotSize = 1024

func sampleBlockPointer() *blockptr.BlockPointer {
	return &blockptr.BlockPointer{
		Kind: blockptr.KindRegular,
		Regular: &blockptr.Regular{
			ChecksumType:     2,
			Compression:      1,
			Dmu:              3,
			Level:            0,
			LogicalBirthTxg:  10,
			LogicalSectors:   1,
			PhysicalBirthTxg: 10,
			PhysicalSectors:  1,
		},
	}
}

func TestUberBlock_RoundTrip(t *testing.T) {
	sv := SpaVersion(5000)
	u := &UberBlock{
		CheckpointTxg:   0,
		Order:           binary.BigEndian,
		GuidSum:         0xabc,
		Ptr:             sampleBlockPointer(),
		SoftwareVersion: &sv,
		Timestamp:       1700000000,
		Txg:             42,
		Version:         5000,
	}

	buf := make([]byte, slotSize)
	require.NoError(t, u.ToBytes(buf, 7))

	got, err := FromBytes(buf, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, u.Txg, got.Txg)
	require.Equal(t, u.GuidSum, got.GuidSum)
	require.Equal(t, u.Version, got.Version)
	require.Equal(t, *u.SoftwareVersion, *got.SoftwareVersion)
	require.Equal(t, blockptr.KindRegular, got.Ptr.Kind)
}

func TestUberBlock_WrongOffsetFailsChecksum(t *testing.T) {
	u := &UberBlock{
		Order:   binary.BigEndian,
		Ptr:     sampleBlockPointer(),
		Txg:     1,
		Version: 5000,
	}
	buf := make([]byte, slotSize)
	require.NoError(t, u.ToBytes(buf, 3))

	_, err := FromBytes(buf, 4)
	require.Error(t, err)
}

// S6: an all-zero slot decodes to nil, nil.
func TestUberBlock_S6_EmptyAllZero(t *testing.T) {
	buf := make([]byte, slotSize)
	got, err := FromBytes(buf, 0)
	require.NoError(t, err)
	require.Nil(t, got)
}

// S6: a slot that is zero everywhere except its checksum tail also
// decodes to nil, matching the writer variant that leaves a stale
// checksum behind on an otherwise-cleared slot.
func TestUberBlock_S6_EmptyExceptChecksumTail(t *testing.T) {
	buf := make([]byte, slotSize)
	for i := len(buf) - ChecksumTailSize; i < len(buf); i++ {
		buf[i] = 0xff
	}
	got, err := FromBytes(buf, 0)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestShift_ClampsToVersionRange(t *testing.T) {
	require.Equal(t, uint32(10), Shift(SpaVersion(1), 20))
	require.Equal(t, uint32(17), Shift(SpaVersion(2), 20))
	require.Equal(t, uint32(13), Shift(SpaVersionFeatures, 20))
	require.Equal(t, uint32(11), Shift(SpaVersion(2), 11))
	require.Equal(t, uint32(10), Shift(SpaVersion(2), 4))
}

func TestMmp_RoundTripAllFieldsPresent(t *testing.T) {
	failIntervals := uint16(3)
	sequence := uint16(99)
	writeInterval := uint32(1000)
	m := &Mmp{
		Delay:         12345,
		FailIntervals: &failIntervals,
		Sequence:      &sequence,
		WriteInterval: &writeInterval,
	}

	buf := make([]byte, MmpSize)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, m.ToEncoder(enc))

	dec := binaryfmt.NewDecoder(buf, binary.BigEndian)
	got, err := MmpFromDecoder(dec)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, m.Delay, got.Delay)
	require.Equal(t, *m.FailIntervals, *got.FailIntervals)
	require.Equal(t, *m.Sequence, *got.Sequence)
	require.Equal(t, *m.WriteInterval, *got.WriteInterval)
}

func TestMmp_UnconfiguredRoundTrip(t *testing.T) {
	buf := make([]byte, MmpSize)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, MmpEmptyToEncoder(enc))

	dec := binaryfmt.NewDecoder(buf, binary.BigEndian)
	got, err := MmpFromDecoder(dec)
	require.NoError(t, err)
	require.Nil(t, got)
}
