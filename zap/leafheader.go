package zap

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// LeafHeader is the 48-byte header of a ZAP leaf block: a hash table of
// u16 chunk indices follows it, then the leaf's chunk array.
type LeafHeader struct {
	// HashPrefix is the shared prefix, of HashPrefixLen bits, of every
	// entry's hash in this leaf. May be zero.
	HashPrefix uint64
	// HashPrefixLen is the bit length of HashPrefix. May be zero.
	HashPrefixLen uint16
	// NumberOfFreeChunks is the count of LeafChunkFree chunks in this block.
	NumberOfFreeChunks uint16
	// NumberOfEntries is the count of LeafChunkEntry chunks in this block.
	NumberOfEntries uint16
	// NextFreeChunk is the head of the free-chunk list, or nil at EOL.
	NextFreeChunk *uint16
	// CDSorted reports whether same-hash entries are sorted by increasing
	// collision differentiator.
	CDSorted bool
}

const (
	LeafHeaderSize      = 48
	LeafBlockType uint64 = 0x8000000000000000
	LeafMagic     uint32 = 0x02AB1EAF

	// leafEOL terminates every next-chunk-index chain in a leaf block.
	leafEOL uint16 = 0xffff

	leafHeaderPaddingA = 8
	leafHeaderPaddingB = 11

	leafHeaderFlagCDSorted uint8 = 1
	leafHeaderFlagAll             = leafHeaderFlagCDSorted
)

// DecodeLeafHeader decodes a LeafHeader from the start of dec.
func DecodeLeafHeader(dec *binaryfmt.Decoder) (*LeafHeader, error) {
	blockType, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	if blockType != LeafBlockType {
		return nil, fmt.Errorf("zap: %w: %#x", ErrBlockType, blockType)
	}
	if err := dec.SkipZeros(leafHeaderPaddingA); err != nil {
		return nil, err
	}

	hashPrefix, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	magic, err := dec.GetU32()
	if err != nil {
		return nil, err
	}
	if magic != LeafMagic {
		return nil, fmt.Errorf("zap: %w: %#x", ErrMagic, magic)
	}

	numFree, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	numEntries, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	hashPrefixLen, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	nextRaw, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	var next *uint16
	if nextRaw != leafEOL {
		v := nextRaw
		next = &v
	}

	flags, err := dec.GetU8()
	if err != nil {
		return nil, err
	}
	if flags&^leafHeaderFlagAll != 0 {
		return nil, fmt.Errorf("zap: %w: %#x", ErrUnknownFlags, flags)
	}

	if err := dec.SkipZeros(leafHeaderPaddingB); err != nil {
		return nil, err
	}

	return &LeafHeader{
		HashPrefix:         hashPrefix,
		HashPrefixLen:      hashPrefixLen,
		NumberOfFreeChunks: numFree,
		NumberOfEntries:    numEntries,
		NextFreeChunk:      next,
		CDSorted:           flags&leafHeaderFlagCDSorted != 0,
	}, nil
}

// Encode appends h's wire form to enc.
func (h *LeafHeader) Encode(enc *binaryfmt.Encoder) error {
	if err := enc.PutU64(LeafBlockType); err != nil {
		return err
	}
	if err := enc.PutZeros(leafHeaderPaddingA); err != nil {
		return err
	}
	if err := enc.PutU64(h.HashPrefix); err != nil {
		return err
	}
	if err := enc.PutU32(LeafMagic); err != nil {
		return err
	}
	if err := enc.PutU16(h.NumberOfFreeChunks); err != nil {
		return err
	}
	if err := enc.PutU16(h.NumberOfEntries); err != nil {
		return err
	}
	if err := enc.PutU16(h.HashPrefixLen); err != nil {
		return err
	}
	next := leafEOL
	if h.NextFreeChunk != nil {
		next = *h.NextFreeChunk
	}
	if err := enc.PutU16(next); err != nil {
		return err
	}
	var flags uint8
	if h.CDSorted {
		flags = leafHeaderFlagCDSorted
	}
	if err := enc.PutU8(flags); err != nil {
		return err
	}
	return enc.PutZeros(leafHeaderPaddingB)
}

// GetEntriesAndChunksCounts returns, for a given leaf block size, the
// number of u16 hash-table slots following the header and the number of
// LeafChunkSize-byte chunks filling the rest of the block.
func GetEntriesAndChunksCounts(blockSize int) (entries, chunks int, err error) {
	if err := validateBlockSize(blockSize); err != nil {
		return 0, 0, err
	}
	entries = blockSize >> 5
	chunks = (blockSize - (LeafHeaderSize + 2*entries)) / LeafChunkSize
	return entries, chunks, nil
}
