package acl

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// versionPeekOffset is the byte offset of the version field shared by
// AclV0 and AclV1: object_id (8) + count-or-size (4).
const versionPeekOffset = 12

// Acl is the version-dispatched union of the two ACL record formats.
type Acl struct {
	V0 *AclV0
	V1 *AclV1
}

// DecodeAcl peeks the version field at versionPeekOffset and dispatches
// to DecodeAclV0 or DecodeAclV1, rewinding dec to its original position
// first.
func DecodeAcl(dec *binaryfmt.Decoder) (*Acl, error) {
	offset := dec.Offset()
	if err := dec.Skip(versionPeekOffset); err != nil {
		return nil, err
	}
	version, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	if err := dec.Seek(offset); err != nil {
		return nil, err
	}

	switch version {
	case AclV0Version:
		v0, err := DecodeAclV0(dec)
		if err != nil {
			return nil, err
		}
		return &Acl{V0: v0}, nil
	case AclV1Version:
		v1, err := DecodeAclV1(dec)
		if err != nil {
			return nil, err
		}
		return &Acl{V1: v1}, nil
	default:
		return nil, fmt.Errorf("acl: %w: %d", ErrVersion, version)
	}
}

// Encode appends a's wire form to enc.
func (a *Acl) Encode(enc *binaryfmt.Encoder) error {
	switch {
	case a.V0 != nil:
		return a.V0.Encode(enc)
	case a.V1 != nil:
		return a.V1.Encode(enc)
	default:
		return fmt.Errorf("acl: %w: acl has neither version set", ErrVersion)
	}
}
