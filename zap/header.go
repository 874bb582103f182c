package zap

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// Header is the leading block_type-dispatched union of a ZAP object's
// first block: either a single-block MicroHeader or a MegaHeader.
type Header struct {
	Micro *MicroHeader
	Mega  *MegaHeader
}

// DecodeHeader peeks the leading u64 block_type and dispatches to
// DecodeMicroHeader or DecodeMegaHeader, rewinding dec to its original
// position first so the chosen decoder sees the full header from byte 0.
func DecodeHeader(dec *binaryfmt.Decoder) (*Header, error) {
	blockType, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	if err := dec.Rewind(8); err != nil {
		return nil, err
	}

	switch blockType {
	case MegaBlockType:
		mega, err := DecodeMegaHeader(dec)
		if err != nil {
			return nil, err
		}
		return &Header{Mega: mega}, nil
	case MicroBlockType:
		micro, err := DecodeMicroHeader(dec)
		if err != nil {
			return nil, err
		}
		return &Header{Micro: micro}, nil
	default:
		return nil, fmt.Errorf("zap: %w: %#x", ErrBlockType, blockType)
	}
}

// Encode appends h's wire form to enc.
func (h *Header) Encode(enc *binaryfmt.Encoder) error {
	switch {
	case h.Mega != nil:
		return h.Mega.Encode(enc)
	case h.Micro != nil:
		return h.Micro.Encode(enc)
	default:
		return fmt.Errorf("zap: %w: header has neither variant set", ErrBlockType)
	}
}
