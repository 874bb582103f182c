package zap

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// MegaHeader is the 104-byte header of a mega-ZAP's first block. The
// remaining half of that block holds either the embedded leaf-pointer
// table (when Table.Embedded()) or padding, per
// GetPaddingSizeAndEmbeddedLeafPointerCount.
type MegaHeader struct {
	Table                 MegaPointerTable
	NextFreeBlock          uint64
	NumberOfLeafs          uint64
	NumberOfEntries        uint64
	Salt                   uint64
	CaseNormalization      CaseNormalization
	UnicodeNormalization   UnicodeNormalization

	// HashBits48 selects 48-bit hash values instead of the 28-bit default.
	HashBits48 bool
	// KeyU64 marks keys as u64 values rather than strings.
	KeyU64 bool
	// PreHashedKey treats the key's first u64 as an already-distributed hash.
	PreHashedKey bool
}

const (
	MegaHeaderSize       = 104
	MegaBlockType uint64  = 0x8000000000000001
	MegaMagic     uint64  = 0x00000002f52ab2ab

	megaFlagHashBits48   uint64 = 1 << 0
	megaFlagKeyU64       uint64 = 1 << 1
	megaFlagPreHashedKey uint64 = 1 << 2
	megaFlagAll                 = megaFlagHashBits48 | megaFlagKeyU64 | megaFlagPreHashedKey
)

// DecodeMegaHeader decodes a MegaHeader from the start of dec.
func DecodeMegaHeader(dec *binaryfmt.Decoder) (*MegaHeader, error) {
	blockType, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	if blockType != MegaBlockType {
		return nil, fmt.Errorf("zap: %w: %#x", ErrBlockType, blockType)
	}

	magic, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	if magic != MegaMagic {
		return nil, fmt.Errorf("zap: %w: %#x", ErrMagic, magic)
	}

	table, err := DecodeMegaPointerTable(dec)
	if err != nil {
		return nil, err
	}

	h := &MegaHeader{Table: *table}
	if h.NextFreeBlock, err = dec.GetU64(); err != nil {
		return nil, err
	}
	if h.NumberOfLeafs, err = dec.GetU64(); err != nil {
		return nil, err
	}
	if h.NumberOfEntries, err = dec.GetU64(); err != nil {
		return nil, err
	}
	if h.Salt, err = dec.GetU64(); err != nil {
		return nil, err
	}

	normalization, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	h.CaseNormalization, h.UnicodeNormalization, err = splitNormalization(normalization)
	if err != nil {
		return nil, err
	}

	flags, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	if flags&^megaFlagAll != 0 {
		return nil, fmt.Errorf("zap: %w: %#x", ErrUnknownFlags, flags)
	}
	h.HashBits48 = flags&megaFlagHashBits48 != 0
	h.KeyU64 = flags&megaFlagKeyU64 != 0
	h.PreHashedKey = flags&megaFlagPreHashedKey != 0

	return h, nil
}

// Encode appends h's wire form to enc.
func (h *MegaHeader) Encode(enc *binaryfmt.Encoder) error {
	if err := enc.PutU64(MegaBlockType); err != nil {
		return err
	}
	if err := enc.PutU64(MegaMagic); err != nil {
		return err
	}
	if err := h.Table.Encode(enc); err != nil {
		return err
	}
	for _, v := range []uint64{h.NextFreeBlock, h.NumberOfLeafs, h.NumberOfEntries, h.Salt} {
		if err := enc.PutU64(v); err != nil {
			return err
		}
	}
	if err := enc.PutU64(joinNormalization(h.CaseNormalization, h.UnicodeNormalization)); err != nil {
		return err
	}

	var flags uint64
	if h.HashBits48 {
		flags |= megaFlagHashBits48
	}
	if h.KeyU64 {
		flags |= megaFlagKeyU64
	}
	if h.PreHashedKey {
		flags |= megaFlagPreHashedKey
	}
	return enc.PutU64(flags)
}

// GetPaddingSizeAndEmbeddedLeafPointerCount returns, for a given block size,
// the byte size of the header's trailing padding and the number of u64
// leaf pointers an embedded pointer table holds: the header occupies the
// first half of the block, and the second half is either padding or an
// embedded table, so both are derived from half the block size.
func GetPaddingSizeAndEmbeddedLeafPointerCount(blockSize int) (padding, leaves int, err error) {
	if err := validateBlockSize(blockSize); err != nil {
		return 0, 0, err
	}
	half := blockSize / 2
	return half - MegaHeaderSize, half / 8, nil
}
