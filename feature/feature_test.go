package feature

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeature_StringAndParseRoundTrip(t *testing.T) {
	for _, f := range All {
		name := f.String()
		require.NotEmpty(t, name)
		parsed, err := ParseFeature(name)
		require.NoError(t, err)
		require.Equal(t, f, parsed)
	}
}

func TestFeature_CanonicalNames(t *testing.T) {
	require.Equal(t, "com.delphix:embedded_data", EmbeddedData.String())
	require.Equal(t, "org.openzfs:blake3", Blake3.String())
	require.Equal(t, "org.freebsd:zstd_compress", ZstdCompress.String())
	require.Len(t, All, 41)
}

func TestParseFeature_Unknown(t *testing.T) {
	_, err := ParseFeature("nonexistent:feature")
	require.Error(t, err)
}

func TestFeatureSet_InsertIdempotent(t *testing.T) {
	var s FeatureSet
	s.Insert(Encryption)
	s.Insert(Encryption)
	require.True(t, s.Contains(Encryption))
	require.Equal(t, 1, s.Len())
}

func TestFeatureSet_RemoveIdempotent(t *testing.T) {
	var s FeatureSet
	s.Insert(Draid)
	s.Remove(Draid)
	s.Remove(Draid)
	require.False(t, s.Contains(Draid))
	require.Equal(t, 0, s.Len())
}

func TestFeatureSet_IterationOrder(t *testing.T) {
	var s FeatureSet
	s.Insert(ZstdCompress)
	s.Insert(AsyncDestroy)
	s.Insert(HoleBirth)

	got := s.Iterate()
	require.Equal(t, []Feature{AsyncDestroy, HoleBirth, ZstdCompress}, got)
}
