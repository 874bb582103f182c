package acl

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// AceV0 is the original fixed-size access control entry: an id, a
// permission mask, a flag mask, and a type restricted to the four basic
// allow/deny/audit/alarm actions.
type AceV0 struct {
	ID          uint32
	Permissions Permission
	Flags       Flag
	Type        Type
}

// AceV0Size is the encoded byte size of an AceV0.
const AceV0Size = 12

// DecodeAceV0 decodes one AceV0.
func DecodeAceV0(dec *binaryfmt.Decoder) (*AceV0, error) {
	id, err := dec.GetU32()
	if err != nil {
		return nil, err
	}
	permsRaw, err := dec.GetU32()
	if err != nil {
		return nil, err
	}
	flagsRaw, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	typeRaw, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	aceType, err := parseType(typeRaw)
	if err != nil {
		return nil, err
	}

	perms := Permission(permsRaw)
	if err := validatePermissions(perms); err != nil {
		return nil, err
	}
	flags := Flag(flagsRaw)
	if err := validateFlags(flags); err != nil {
		return nil, err
	}
	if !aceType.isBasic() {
		return nil, fmt.Errorf("acl: %w: %s", ErrUnexpectedType, aceType)
	}

	return &AceV0{ID: id, Permissions: perms, Flags: flags, Type: aceType}, nil
}

// Encode appends a's wire form to enc.
func (a *AceV0) Encode(enc *binaryfmt.Encoder) error {
	if err := validatePermissions(a.Permissions); err != nil {
		return err
	}
	if err := validateFlags(a.Flags); err != nil {
		return err
	}
	if !a.Type.isBasic() {
		return fmt.Errorf("acl: %w: %s", ErrUnexpectedType, a.Type)
	}
	if err := enc.PutU32(a.ID); err != nil {
		return err
	}
	if err := enc.PutU32(uint32(a.Permissions)); err != nil {
		return err
	}
	if err := enc.PutU16(uint16(a.Flags)); err != nil {
		return err
	}
	return enc.PutU16(uint16(a.Type))
}

// AclV0Entries is the fixed number of AceV0 slots an AclV0 holds.
const AclV0Entries = 6

// AclV0Size is the encoded byte size of an AclV0.
const AclV0Size = 88

// AclV0Version is the version word identifying the AclV0 format.
const AclV0Version uint16 = 0

const aclV0Padding = 2

// AclV0 is the fixed-size ACL bonus-buffer record: six AceV0 entries and
// the object id of the ACL object holding any overflow (nil if the ACL
// fits entirely within the six entries).
type AclV0 struct {
	ObjectID *uint64
	Count    uint32
	Aces     [AclV0Entries]AceV0
}

// DecodeAclV0 decodes an AclV0.
func DecodeAclV0(dec *binaryfmt.Decoder) (*AclV0, error) {
	objRaw, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	var objectID *uint64
	if objRaw != 0 {
		objectID = &objRaw
	}

	count, err := dec.GetU32()
	if err != nil {
		return nil, err
	}
	version, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	if version != AclV0Version {
		return nil, fmt.Errorf("acl: %w: %d", ErrVersion, version)
	}
	if err := dec.SkipZeros(aclV0Padding); err != nil {
		return nil, err
	}

	acl := &AclV0{ObjectID: objectID, Count: count}
	for i := range acl.Aces {
		ace, err := DecodeAceV0(dec)
		if err != nil {
			return nil, err
		}
		acl.Aces[i] = *ace
	}
	return acl, nil
}

// Encode appends a's wire form to enc.
func (a *AclV0) Encode(enc *binaryfmt.Encoder) error {
	var objRaw uint64
	if a.ObjectID != nil {
		objRaw = *a.ObjectID
	}
	if err := enc.PutU64(objRaw); err != nil {
		return err
	}
	if err := enc.PutU32(a.Count); err != nil {
		return err
	}
	if err := enc.PutU16(AclV0Version); err != nil {
		return err
	}
	if err := enc.PutZeros(aclV0Padding); err != nil {
		return err
	}
	for i := range a.Aces {
		if err := a.Aces[i].Encode(enc); err != nil {
			return err
		}
	}
	return nil
}
