package acl

import (
	"encoding/binary"
	"testing"

	"github.com/scigolib/zfsphys/binaryfmt"
	"github.com/stretchr/testify/require"
)

func TestAceV0_RoundTrip(t *testing.T) {
	ace := &AceV0{ID: 1000, Permissions: ReadData | WriteData, Flags: Owner, Type: Allow}
	buf := make([]byte, AceV0Size)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, ace.Encode(enc))

	dec := binaryfmt.NewDecoder(enc.Finish(), binary.BigEndian)
	got, err := DecodeAceV0(dec)
	require.NoError(t, err)
	require.Equal(t, ace, got)
}

func TestAceV0_RejectsUnexpectedType(t *testing.T) {
	ace := &AceV0{ID: 1, Permissions: ReadData, Flags: 0, Type: AccessAllowObject}
	buf := make([]byte, AceV0Size)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	err := ace.Encode(enc)
	require.ErrorIs(t, err, ErrUnexpectedType)
}

func TestAceV0_RejectsUnknownPermissions(t *testing.T) {
	buf := make([]byte, AceV0Size)
	binary.BigEndian.PutUint32(buf[4:], 0xf0000000)
	dec := binaryfmt.NewDecoder(buf, binary.BigEndian)
	_, err := DecodeAceV0(dec)
	require.ErrorIs(t, err, ErrUnknownPermissions)
}

func buildAclV0(t *testing.T) []byte {
	t.Helper()
	acl := &AclV0{Count: 1}
	acl.Aces[0] = AceV0{ID: 500, Permissions: ReadData, Flags: Owner, Type: Allow}
	buf := make([]byte, AclV0Size)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, acl.Encode(enc))
	return enc.Finish()
}

func TestAclV0_RoundTrip(t *testing.T) {
	buf := buildAclV0(t)
	dec := binaryfmt.NewDecoder(buf, binary.BigEndian)
	got, err := DecodeAclV0(dec)
	require.NoError(t, err)
	require.Equal(t, uint32(1), got.Count)
	require.Equal(t, uint32(500), got.Aces[0].ID)
	require.Nil(t, got.ObjectID)
}

func TestDecodeAcl_DispatchesV0(t *testing.T) {
	buf := buildAclV0(t)
	dec := binaryfmt.NewDecoder(buf, binary.BigEndian)
	got, err := DecodeAcl(dec)
	require.NoError(t, err)
	require.NotNil(t, got.V0)
	require.Nil(t, got.V1)
}

func TestAceV1Header_RoundTrip(t *testing.T) {
	h := &AceV1Header{Type: AccessAllowCallback, Flags: Owner, Permissions: ReadData}
	buf := make([]byte, AceV1HeaderSize)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, h.encode(enc))

	dec := binaryfmt.NewDecoder(enc.Finish(), binary.BigEndian)
	got, err := decodeAceV1Header(dec)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestAceV1Iterator_Simple(t *testing.T) {
	h := AceV1Header{Type: Allow, Flags: Owner, Permissions: ReadData}
	buf := make([]byte, AceV1HeaderSize)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, h.encode(enc))

	dec := binaryfmt.NewDecoder(enc.Finish(), binary.BigEndian)
	it, err := NewAceV1Iterator(dec)
	require.NoError(t, err)

	ace, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, ace.Simple)
	require.Equal(t, h, ace.Simple.Header)

	ace, err = it.Next()
	require.NoError(t, err)
	require.Nil(t, ace)
}

func TestAceV1Iterator_Id(t *testing.T) {
	h := AceV1Header{Type: Deny, Flags: IdentifierGroup, Permissions: WriteData}
	buf := make([]byte, AceV1HeaderSize+8)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, h.encode(enc))
	require.NoError(t, enc.PutU64(777))

	dec := binaryfmt.NewDecoder(enc.Finish(), binary.BigEndian)
	it, err := NewAceV1Iterator(dec)
	require.NoError(t, err)

	ace, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, ace.ID)
	require.Equal(t, uint64(777), ace.ID.ID)
}

func TestAceV1Iterator_Object(t *testing.T) {
	h := AceV1Header{Type: AccessAllowObject, Flags: 0, Permissions: ReadData}
	buf := make([]byte, AceV1HeaderSize+32)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, h.encode(enc))
	objGUID := make([]byte, 16)
	for i := range objGUID {
		objGUID[i] = byte(i)
	}
	require.NoError(t, enc.PutBytes(objGUID))
	require.NoError(t, enc.PutBytes(make([]byte, 16)))

	dec := binaryfmt.NewDecoder(enc.Finish(), binary.BigEndian)
	it, err := NewAceV1Iterator(dec)
	require.NoError(t, err)

	ace, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, ace.Object)
	require.Equal(t, byte(5), ace.Object.ObjectGUID[5])
}

func TestAclV1_RoundTrip(t *testing.T) {
	acl := &AclV1{Size: AclV1Size, Count: 0}
	buf := make([]byte, AclV1Size)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, acl.Encode(enc))

	dec := binaryfmt.NewDecoder(enc.Finish(), binary.BigEndian)
	got, err := DecodeAclV1(dec)
	require.NoError(t, err)
	require.Equal(t, acl, got)
}

func TestDecodeAcl_DispatchesV1(t *testing.T) {
	acl := &AclV1{Size: AclV1Size, Count: 0}
	buf := make([]byte, AclV1Size)
	enc := binaryfmt.NewEncoder(buf, binary.BigEndian)
	require.NoError(t, acl.Encode(enc))

	dec := binaryfmt.NewDecoder(enc.Finish(), binary.BigEndian)
	got, err := DecodeAcl(dec)
	require.NoError(t, err)
	require.NotNil(t, got.V1)
	require.Nil(t, got.V0)
}

func TestDecodeAcl_RejectsUnknownVersion(t *testing.T) {
	buf := make([]byte, AclV0Size)
	binary.BigEndian.PutUint16(buf[12:], 7)
	dec := binaryfmt.NewDecoder(buf, binary.BigEndian)
	_, err := DecodeAcl(dec)
	require.ErrorIs(t, err, ErrVersion)
}
