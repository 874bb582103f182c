package fletcher

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

var testVectorA = []byte{
	0xbc, 0x4b, 0x4d, 0x58, 0x43, 0xca, 0x34, 0x35, 0xe4, 0xd0, 0x59, 0xe4, 0xd0, 0x2b, 0x08,
	0xe3, 0x2f, 0xe3, 0x78, 0xe1, 0xe6, 0xf6, 0xf1, 0x34, 0x84, 0xdc, 0x1e, 0x0e, 0x12, 0x28,
	0x2e, 0xbe, 0x53, 0xbd, 0x1a, 0xf9, 0x8a, 0x97, 0x6e, 0xab, 0x7c, 0x06, 0xed, 0x50, 0xa8,
	0xc9, 0xe4, 0x1e, 0xb8, 0xaf, 0xb8, 0x8c, 0x94, 0xb5, 0x15, 0xed, 0xa8, 0x3f, 0x9d, 0x99,
	0x9c, 0x26, 0xe8, 0x1d, 0x87, 0x29, 0x1f, 0x60, 0x64, 0xca, 0xd1, 0xe8, 0x48, 0x7e, 0xe4,
	0xf2, 0x56, 0xf3, 0x59, 0x73, 0x04, 0x39, 0xb2, 0x62, 0x56, 0xea, 0xf1, 0x44, 0xf0, 0x06,
	0x28, 0x2e, 0x56, 0x16, 0xd3, 0x80, 0x0d, 0x47, 0x9e, 0x87, 0x3f, 0x52, 0x64, 0x30, 0x63,
	0x6d, 0x64, 0x58, 0xcb, 0x84, 0x4d, 0xf7, 0x1c, 0x6e, 0xc7, 0x07, 0x86, 0x3d, 0x17, 0xec,
	0x51, 0x8f, 0x51, 0x6e, 0x5a, 0x52, 0x64, 0xee,
}

// S1: Fletcher-4 big-endian, 128 bytes.
func TestFletcher4_S1_BigEndian128(t *testing.T) {
	f, err := NewFletcher4(binary.BigEndian, Generic)
	require.NoError(t, err)

	got := f.Hash(testVectorA)
	require.Equal(t, [4]uint64{
		0x00000eeea163cc, 0x00010e013af8bd, 0x000c85c68f433f, 0x00709c54f4292c,
	}, got)
}

// S2: Fletcher-4 little-endian, first 64 bytes.
func TestFletcher4_S2_LittleEndian64(t *testing.T) {
	f, err := NewFletcher4(binary.LittleEndian, Generic)
	require.NoError(t, err)

	got := f.Hash(testVectorA[:64])
	require.Equal(t, [4]uint64{
		0x0000087d4ae1ef, 0x00004a004d2fab, 0x0001b839b026e4, 0x000809feab1826,
	}, got)
}

func TestFletcher4_AllImplementationsAgree(t *testing.T) {
	want := NewFletcher4Best(binary.BigEndian).Hash(testVectorA)

	for _, impl := range []Implementation{Generic, SuperScalar2, SuperScalar4, SSE2, SSSE3, AVX2, AVX512F, AVX512BW} {
		if !impl.IsSupported() {
			continue
		}
		f, err := NewFletcher4(binary.BigEndian, impl)
		require.NoError(t, err)
		require.Equal(t, want, f.Hash(testVectorA), "implementation %s disagrees", impl)
	}
}

func TestFletcher4_PartitionedUpdateMatchesWhole(t *testing.T) {
	whole := NewFletcher4Best(binary.BigEndian).Hash(testVectorA)

	f, err := NewFletcher4(binary.BigEndian, BestAvailable())
	require.NoError(t, err)
	f.Update(testVectorA[:17])
	f.Update(testVectorA[17:50])
	f.Update(testVectorA[50:])
	require.Equal(t, whole, f.Finalize())
}

func TestFletcher4_Idempotent(t *testing.T) {
	f, err := NewFletcher4(binary.BigEndian, Generic)
	require.NoError(t, err)
	require.Equal(t, f.Hash(testVectorA), f.Hash(testVectorA))
}

func TestFletcher4_UnsupportedImplementation(t *testing.T) {
	// AVX512BW will never be reported supported on a non-amd64 build,
	// and even on amd64 in CI it is frequently unavailable; this test
	// only asserts the error path shape when unsupported, skipping
	// when the host happens to support it.
	if AVX512BW.IsSupported() {
		t.Skip("host supports AVX512BW")
	}
	_, err := NewFletcher4(binary.BigEndian, AVX512BW)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestFletcher4_ResetClearsState(t *testing.T) {
	f, err := NewFletcher4(binary.BigEndian, Generic)
	require.NoError(t, err)
	f.Update(testVectorA)
	f.Reset()
	require.Equal(t, [4]uint64{0, 0, 0, 0}, f.Finalize())
}

func TestFletcher4_TrailingPartialBlockDropped(t *testing.T) {
	f, err := NewFletcher4(binary.BigEndian, Generic)
	require.NoError(t, err)
	f.Update(testVectorA)
	f.Update([]byte{1, 2, 3}) // fewer than 4 bytes, never completes a block
	require.Equal(t, NewFletcher4Best(binary.BigEndian).Hash(testVectorA), f.Finalize())
}
