package nvlist

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// xdrBuf is a tiny raw-byte-oriented builder for hand-crafting NV list wire
// fixtures: nv.rs has no encoder counterpart to round-trip against, so
// fixtures here are built the same way the reference's own on-disk data is
// shaped, one XDR primitive at a time.
type xdrBuf struct {
	b []byte
}

func (x *xdrBuf) u32(v uint32) *xdrBuf {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	x.b = append(x.b, tmp[:]...)
	return x
}

func (x *xdrBuf) u64(v uint64) *xdrBuf {
	return x.u32(uint32(v >> 32)).u32(uint32(v))
}

func (x *xdrBuf) bytes(v []byte) *xdrBuf {
	x.u32(uint32(len(v)))
	x.b = append(x.b, v...)
	pad := (4 - len(v)%4) % 4
	x.b = append(x.b, make([]byte, pad)...)
	return x
}

func (x *xdrBuf) str(s string) *xdrBuf {
	return x.bytes([]byte(s))
}

// pair appends one complete encoded_size/decoded_size-framed pair, given a
// function that writes the name/type/count/value body.
func pair(body func(x *xdrBuf)) []byte {
	var inner xdrBuf
	body(&inner)
	var out xdrBuf
	encodedSize := uint32(8 + len(inner.b))
	out.u32(encodedSize).u32(encodedSize)
	out.b = append(out.b, inner.b...)
	return out.b
}

func boolFlagPair(name string) []byte {
	return pair(func(x *xdrBuf) {
		x.str(name).u32(uint32(Boolean)).u32(0)
	})
}

func u64Pair(name string, v uint64) []byte {
	return pair(func(x *xdrBuf) {
		x.str(name).u32(uint32(Uint64)).u32(1).u64(v)
	})
}

func strPair(name, v string) []byte {
	return pair(func(x *xdrBuf) {
		x.str(name).u32(uint32(String)).u32(1).str(v)
	})
}

func u32ArrayPair(name string, vs []uint32) []byte {
	return pair(func(x *xdrBuf) {
		x.str(name).u32(uint32(Uint32Array)).u32(uint32(len(vs)))
		for _, v := range vs {
			x.u32(v)
		}
	})
}

func strArrayPair(name string, vs []string) []byte {
	return pair(func(x *xdrBuf) {
		x.str(name).u32(uint32(StringArray)).u32(uint32(len(vs)))
		for _, v := range vs {
			x.str(v)
		}
	})
}

func endOfList() []byte {
	var x xdrBuf
	x.u32(0).u32(0)
	return x.b
}

// buildList assembles a full top-level list: the 4-byte header, version,
// flags, each pair in order, and the end-of-list sentinel.
func buildList(unique Unique, pairs ...[]byte) []byte {
	var x xdrBuf
	x.u32(0)                 // version
	x.u32(uint32(unique))    // flags
	for _, p := range pairs {
		x.b = append(x.b, p...)
	}
	x.b = append(x.b, endOfList()...)

	out := make([]byte, 4+len(x.b))
	out[0] = byte(EncodingXdr)
	out[1] = byte(EndianBig)
	copy(out[4:], x.b)
	return out
}

func TestList_ScalarsAndFlag(t *testing.T) {
	buf := buildList(UniqueName,
		boolFlagPair("org.openzfs:blake3"),
		u64Pair("txg", 42),
		strPair("name", "tank"),
	)

	l, err := FromBytes(buf)
	require.NoError(t, err)
	require.Equal(t, EncodingXdr, l.Encoding())
	require.Equal(t, UniqueName, l.Unique())

	p, err := l.NextPair()
	require.NoError(t, err)
	require.Equal(t, "org.openzfs:blake3", p.Name)
	require.Equal(t, Boolean, p.Type)

	p, err = l.NextPair()
	require.NoError(t, err)
	require.Equal(t, Uint64, p.Type)
	require.Equal(t, uint64(42), p.U64)

	p, err = l.NextPair()
	require.NoError(t, err)
	require.Equal(t, String, p.Type)
	require.Equal(t, "tank", p.Str)

	p, err = l.NextPair()
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestList_Find(t *testing.T) {
	buf := buildList(UniqueName, u64Pair("a", 1), u64Pair("b", 2), u64Pair("c", 3))
	l, err := FromBytes(buf)
	require.NoError(t, err)

	v, found, err := l.GetU64("b")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(2), v)

	_, found, err = l.GetU64("missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestList_WrongTypeAccessor(t *testing.T) {
	buf := buildList(UniqueName, strPair("name", "tank"))
	l, err := FromBytes(buf)
	require.NoError(t, err)

	_, _, err = l.GetU64("name")
	require.ErrorIs(t, err, ErrWrongType)
}

func TestList_NumericArrayLazyDecode(t *testing.T) {
	buf := buildList(UniqueNone, u32ArrayPair("guids", []uint32{1, 2, 3, 4}))
	l, err := FromBytes(buf)
	require.NoError(t, err)

	p, err := l.NextPair()
	require.NoError(t, err)
	require.Equal(t, Uint32Array, p.Type)
	require.Equal(t, 4, p.U32Array.Len())

	vals, err := p.U32Array.Decode()
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3, 4}, vals)
}

// Nested list with a string array, mirroring a pool config's vdev_tree
// child list carrying a path string array.
func TestList_NestedListAndStringArray(t *testing.T) {
	child := buildList(UniqueName,
		strArrayPair("paths", []string{"/dev/sda1", "/dev/sda2"}),
		u64Pair("guid", 7),
	)
	// Strip the 4-byte header: a nested NvList pair's value is just the
	// version/flags/pairs body, inheriting encoding/endian from the parent.
	childBody := child[HeaderSize:]

	outerPair := pair(func(x *xdrBuf) {
		x.str("vdev_tree").u32(uint32(NvList)).u32(1)
		x.b = append(x.b, childBody...)
	})

	buf := buildList(UniqueName, outerPair)
	l, err := FromBytes(buf)
	require.NoError(t, err)

	p, err := l.NextPair()
	require.NoError(t, err)
	require.Equal(t, NvList, p.Type)
	require.NotNil(t, p.List)

	paths, found, err := p.List.GetStrArray("paths")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"/dev/sda1", "/dev/sda2"}, paths)

	guid, found, err := p.List.GetU64("guid")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(7), guid)
}

func TestList_ListArray(t *testing.T) {
	child1 := buildList(UniqueName, u64Pair("id", 1))[HeaderSize:]
	child2 := buildList(UniqueName, u64Pair("id", 2))[HeaderSize:]

	outerPair := pair(func(x *xdrBuf) {
		x.str("children").u32(uint32(NvListArray)).u32(2)
		x.b = append(x.b, child1...)
		x.b = append(x.b, child2...)
	})

	buf := buildList(UniqueName, outerPair)
	l, err := FromBytes(buf)
	require.NoError(t, err)

	p, err := l.NextPair()
	require.NoError(t, err)
	require.Equal(t, NvListArray, p.Type)
	require.Equal(t, 2, p.ListArray.Len())

	lists, err := p.ListArray.Decode()
	require.NoError(t, err)
	require.Len(t, lists, 2)

	id1, found, err := lists[0].GetU64("id")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(1), id1)

	id2, found, err := lists[1].GetU64("id")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(2), id2)
}

func TestList_TruncatedHeader(t *testing.T) {
	_, err := FromBytes([]byte{1, 0})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestList_ReservedBytesMustBeZero(t *testing.T) {
	buf := buildList(UniqueNone)
	buf[2] = 1
	_, err := FromBytes(buf)
	require.ErrorIs(t, err, ErrReservedBytes)
}

func TestList_UnknownDataType(t *testing.T) {
	bad := pair(func(x *xdrBuf) {
		x.str("x").u32(99).u32(1).u32(0)
	})
	buf := buildList(UniqueNone, bad)
	l, err := FromBytes(buf)
	require.NoError(t, err)

	_, err = l.NextPair()
	require.ErrorIs(t, err, ErrUnknownDataType)
}
