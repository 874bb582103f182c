package acl

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// AceV1Header is the common 8-byte prefix of every AceV1 record shape.
type AceV1Header struct {
	Type        Type
	Flags       Flag
	Permissions Permission
}

// AceV1HeaderSize is the encoded byte size of an AceV1Header.
const AceV1HeaderSize = 8

func decodeAceV1Header(dec *binaryfmt.Decoder) (*AceV1Header, error) {
	typeRaw, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	aceType, err := parseType(typeRaw)
	if err != nil {
		return nil, err
	}
	flagsRaw, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	permsRaw, err := dec.GetU32()
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

	return &AceV1Header{Type: aceType, Flags: flags, Permissions: perms}, nil
}

func (h *AceV1Header) encode(enc *binaryfmt.Encoder) error {
	if err := validatePermissions(h.Permissions); err != nil {
		return err
	}
	if err := validateFlags(h.Flags); err != nil {
		return err
	}
	if err := enc.PutU16(uint16(h.Type)); err != nil {
		return err
	}
	if err := enc.PutU16(uint16(h.Flags)); err != nil {
		return err
	}
	return enc.PutU32(uint32(h.Permissions))
}

// AceV1Simple is an Allow/Deny ACE whose principal is the owner, owning
// group, or everyone: the header alone fully describes it.
type AceV1Simple struct {
	Header AceV1Header
}

// AceV1Id is an ACE for an explicit principal id: every AceV1 type other
// than the simple and object shapes.
type AceV1Id struct {
	Header AceV1Header
	ID     uint64
}

// AceV1Object is a CIFS object ACE, carrying the object and inheritance
// GUIDs the base formats have no room for.
type AceV1Object struct {
	Header       AceV1Header
	ObjectGUID   [16]byte
	InheritGUID  [16]byte
}

// AceV1 is the tagged union of the three AceV1 record shapes.
type AceV1 struct {
	Simple *AceV1Simple
	ID     *AceV1Id
	Object *AceV1Object
}

func isObjectType(t Type) bool {
	switch t {
	case AccessAllowObject, AccessDenyObject, SystemAuditObject, SystemAlarmObject:
		return true
	default:
		return false
	}
}

// Encode appends a's wire form to enc.
func (a *AceV1) Encode(enc *binaryfmt.Encoder) error {
	switch {
	case a.Simple != nil:
		return a.Simple.Header.encode(enc)
	case a.ID != nil:
		if err := a.ID.Header.encode(enc); err != nil {
			return err
		}
		return enc.PutU64(a.ID.ID)
	case a.Object != nil:
		if err := a.Object.Header.encode(enc); err != nil {
			return err
		}
		if err := enc.PutBytes(a.Object.ObjectGUID[:]); err != nil {
			return err
		}
		return enc.PutBytes(a.Object.InheritGUID[:])
	default:
		return fmt.Errorf("acl: ace has no variant set")
	}
}

// AceV1Iterator scans a chain of AceV1 records of mixed, self-describing
// length: each record's header type determines whether an id or a pair of
// GUIDs follows it.
type AceV1Iterator struct {
	dec *binaryfmt.Decoder
}

// NewAceV1Iterator wraps the remaining bytes of dec — the aces region of
// an AclV1 — as an AceV1Iterator.
func NewAceV1Iterator(dec *binaryfmt.Decoder) (*AceV1Iterator, error) {
	remaining, err := dec.GetBytes(dec.Len())
	if err != nil {
		return nil, err
	}
	return &AceV1Iterator{dec: binaryfmt.NewDecoder(remaining, dec.Order())}, nil
}

// Reset rewinds the iterator to its first record.
func (it *AceV1Iterator) Reset() { it.dec.Reset() }

// Next decodes the next AceV1 record, or returns (nil, nil) once the
// region is exhausted.
func (it *AceV1Iterator) Next() (*AceV1, error) {
	if it.dec.Len() == 0 {
		return nil, nil
	}

	header, err := decodeAceV1Header(it.dec)
	if err != nil {
		return nil, err
	}

	if isObjectType(header.Type) {
		objectGUID, err := it.dec.GetBytes(16)
		if err != nil {
			return nil, err
		}
		inheritGUID, err := it.dec.GetBytes(16)
		if err != nil {
			return nil, err
		}
		obj := &AceV1Object{Header: *header}
		copy(obj.ObjectGUID[:], objectGUID)
		copy(obj.InheritGUID[:], inheritGUID)
		return &AceV1{Object: obj}, nil
	}

	if header.Type == Allow || header.Type == Deny {
		switch header.Flags & TypeMask {
		case Owner, OwningGroup, Everyone:
			return &AceV1{Simple: &AceV1Simple{Header: *header}}, nil
		}
	}

	id, err := it.dec.GetU64()
	if err != nil {
		return nil, err
	}
	return &AceV1{ID: &AceV1Id{Header: *header, ID: id}}, nil
}
