package acl

import (
	"encoding/binary"
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// AclV1AcesBytes is the byte size of the raw AceV1 region embedded in an
// AclV1 record: six AceV0-sized slots' worth of space, reused as a
// variable-length AceV1 stream rather than a fixed array.
const AclV1AcesBytes = AceV0Size * AclV0Entries

// AclV1Size is the encoded byte size of an AclV1.
const AclV1Size = 88

// AclV1Version is the version word identifying the AclV1 format.
const AclV1Version uint16 = 1

// AclV1 is the variable-shape ACL bonus-buffer record introduced for ZPL
// version 3 / SPA version 9: Count AceV1 records packed into a fixed
// AclV1AcesBytes byte region, walked with NewAceV1Iterator.
type AclV1 struct {
	ObjectID *uint64
	Size     uint32
	Count    uint16
	Aces     [AclV1AcesBytes]byte
}

// DecodeAclV1 decodes an AclV1.
func DecodeAclV1(dec *binaryfmt.Decoder) (*AclV1, error) {
	objRaw, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	var objectID *uint64
	if objRaw != 0 {
		objectID = &objRaw
	}

	size, err := dec.GetU32()
	if err != nil {
		return nil, err
	}
	version, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	if version != AclV1Version {
		return nil, fmt.Errorf("acl: %w: %d", ErrVersion, version)
	}
	count, err := dec.GetU16()
	if err != nil {
		return nil, err
	}

	aces, err := dec.GetBytes(AclV1AcesBytes)
	if err != nil {
		return nil, err
	}

	acl := &AclV1{ObjectID: objectID, Size: size, Count: count}
	copy(acl.Aces[:], aces)
	return acl, nil
}

// Encode appends a's wire form to enc.
func (a *AclV1) Encode(enc *binaryfmt.Encoder) error {
	var objRaw uint64
	if a.ObjectID != nil {
		objRaw = *a.ObjectID
	}
	if err := enc.PutU64(objRaw); err != nil {
		return err
	}
	if err := enc.PutU32(a.Size); err != nil {
		return err
	}
	if err := enc.PutU16(AclV1Version); err != nil {
		return err
	}
	if err := enc.PutU16(a.Count); err != nil {
		return err
	}
	return enc.PutBytes(a.Aces[:])
}

// AceIterator returns an iterator over the AceV1 records packed into
// a.Aces, decoded in the given byte order.
func (a *AclV1) AceIterator(order binary.ByteOrder) (*AceV1Iterator, error) {
	dec := binaryfmt.NewDecoder(a.Aces[:], order)
	return NewAceV1Iterator(dec)
}
