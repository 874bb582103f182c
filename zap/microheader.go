package zap

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// MicroHeader is the 64-byte header at the start of a micro-ZAP block. The
// rest of the block, a multiple of MicroEntrySize bytes, holds the entries
// themselves; there is no entry count and no ordering, so a reader must
// decode every slot and skip the empty ones.
type MicroHeader struct {
	Salt                 uint64
	CaseNormalization    CaseNormalization
	UnicodeNormalization UnicodeNormalization
}

const (
	MicroHeaderSize      = 64
	MicroBlockType uint64 = 0x8000000000000003

	microHeaderPadding = 40
)

// DecodeMicroHeader decodes a MicroHeader from the start of dec, which must
// be positioned at offset 0 of the block.
func DecodeMicroHeader(dec *binaryfmt.Decoder) (*MicroHeader, error) {
	blockType, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	if blockType != MicroBlockType {
		return nil, fmt.Errorf("zap: %w: %#x", ErrBlockType, blockType)
	}

	salt, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	normalization, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	caseNorm, unicodeNorm, err := splitNormalization(normalization)
	if err != nil {
		return nil, err
	}

	if err := dec.SkipZeros(microHeaderPadding); err != nil {
		return nil, err
	}

	return &MicroHeader{
		Salt:                 salt,
		CaseNormalization:    caseNorm,
		UnicodeNormalization: unicodeNorm,
	}, nil
}

// Encode appends h's wire form to enc.
func (h *MicroHeader) Encode(enc *binaryfmt.Encoder) error {
	if err := enc.PutU64(MicroBlockType); err != nil {
		return err
	}
	if err := enc.PutU64(h.Salt); err != nil {
		return err
	}
	if err := enc.PutU64(joinNormalization(h.CaseNormalization, h.UnicodeNormalization)); err != nil {
		return err
	}
	return enc.PutZeros(microHeaderPadding)
}
