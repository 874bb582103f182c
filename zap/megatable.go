package zap

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/scigolib/zfsphys/binaryfmt"
	"github.com/scigolib/zfsphys/internal/utils"
)

// MegaPointerTable is the 40-byte leaf-pointer-table descriptor embedded in
// a MegaHeader. None of its fields are range-checked on decode: every u64
// combination is a structurally valid (if not necessarily sane) table
// state, the growth-by-doubling machinery is what keeps them consistent.
type MegaPointerTable struct {
	// StartingBlock is the first block of the table; 0 means the table is
	// embedded in the header's own block.
	StartingBlock uint64
	// Blocks is the number of blocks the table occupies; 0 means embedded.
	Blocks uint64
	// HashBits is the number of top hash bits used to index the table.
	HashBits uint64
	// NextBlock is the start of an in-progress doubled copy, or 0 if none.
	NextBlock uint64
	// BlocksCopied counts source blocks already duplicated into NextBlock.
	BlocksCopied uint64
}

const MegaPointerTableSize = 40

// DecodeMegaPointerTable decodes a MegaPointerTable.
func DecodeMegaPointerTable(dec *binaryfmt.Decoder) (*MegaPointerTable, error) {
	t := &MegaPointerTable{}
	var err error
	if t.StartingBlock, err = dec.GetU64(); err != nil {
		return nil, err
	}
	if t.Blocks, err = dec.GetU64(); err != nil {
		return nil, err
	}
	if t.HashBits, err = dec.GetU64(); err != nil {
		return nil, err
	}
	if t.NextBlock, err = dec.GetU64(); err != nil {
		return nil, err
	}
	if t.BlocksCopied, err = dec.GetU64(); err != nil {
		return nil, err
	}
	return t, nil
}

// Encode appends t's wire form to enc.
func (t *MegaPointerTable) Encode(enc *binaryfmt.Encoder) error {
	for _, v := range []uint64{t.StartingBlock, t.Blocks, t.HashBits, t.NextBlock, t.BlocksCopied} {
		if err := enc.PutU64(v); err != nil {
			return err
		}
	}
	return nil
}

// Embedded reports whether the table lives in the header's own block
// rather than at an external block range.
func (t *MegaPointerTable) Embedded() bool { return t.Blocks == 0 }

// GrowthInProgress reports whether a doubled copy is underway.
func (t *MegaPointerTable) GrowthInProgress() bool { return t.NextBlock != 0 }

// CommitGrowth applies the copy-by-duplication growth rule once
// BlocksCopied has reached Blocks: the new region becomes current, its
// size doubles, HashBits gains one bit, and the copy-in-progress fields
// reset. It is a no-op (returns false, nil) if the copy is not yet
// complete, and fails if the doubled block count would overflow or
// exceed utils.MaxZapPointerTableBlocks.
func (t *MegaPointerTable) CommitGrowth() (bool, error) {
	return t.CommitGrowthWithLogger(nil)
}

// CommitGrowthWithLogger is CommitGrowth with diagnostic logging: logger
// (if non-nil) receives a debug record naming the old and new table size
// whenever a growth commit actually applies.
func (t *MegaPointerTable) CommitGrowthWithLogger(logger *slog.Logger) (bool, error) {
	logger = utils.LoggerOrDiscard(logger)
	if !t.GrowthInProgress() || t.BlocksCopied != t.Blocks {
		return false, nil
	}

	newBlocks, err := utils.SafeMultiply(t.Blocks, 2)
	if err != nil {
		return false, fmt.Errorf("zap: mega pointer table growth overflow: %w", err)
	}
	if newBlocks > utils.MaxZapPointerTableBlocks {
		return false, fmt.Errorf("zap: mega pointer table would grow to %d blocks, exceeds limit %d",
			newBlocks, utils.MaxZapPointerTableBlocks)
	}

	oldBlocks, oldHashBits := t.Blocks, t.HashBits
	t.StartingBlock = t.NextBlock
	t.Blocks = newBlocks
	t.HashBits++
	t.NextBlock = 0
	t.BlocksCopied = 0
	logger.Debug("zap: mega pointer table growth committed",
		"oldBlocks", oldBlocks, "newBlocks", t.Blocks,
		"oldHashBits", oldHashBits, "newHashBits", t.HashBits)
	return true, nil
}

// GrowthRegionByteSize returns the byte size of the doubled external
// pointer-table region a caller must allocate or read starting at
// t.NextBlock, given blockSize bytes per block. It fails under the same
// conditions as CommitGrowth's overflow guard, so a caller can size its
// read before the copy is actually committed.
func (t *MegaPointerTable) GrowthRegionByteSize(blockSize uint64) (uint64, error) {
	return utils.CalculateZapPointerTableSize(t.Blocks, blockSize)
}

// LeafPointerIndex returns the index into t's leaf-pointer array that hash
// dispatches to: its top t.HashBits bits.
func (t *MegaPointerTable) LeafPointerIndex(hash uint64) uint64 {
	if t.HashBits == 0 {
		return 0
	}
	return hash >> (64 - t.HashBits)
}

// DecodeLeafPointers decodes n consecutive u64 leaf-block pointers from
// dec: the embedded table occupying the second half of a mega-ZAP's
// header block, or an external pointer-table block's full contents.
func DecodeLeafPointers(dec *binaryfmt.Decoder, n int) ([]uint64, error) {
	out := make([]uint64, n)
	for i := range out {
		v, err := dec.GetU64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// EncodeLeafPointers appends pointers to enc in order.
func EncodeLeafPointers(enc *binaryfmt.Encoder, pointers []uint64) error {
	for _, v := range pointers {
		if err := enc.PutU64(v); err != nil {
			return err
		}
	}
	return nil
}

// LeafPointerAt resolves the hash dispatch rule (§4.6 "Hash dispatch")
// against a decoded pointer-table array: it returns the leaf-block pointer
// at LeafPointerIndex(hash), failing if that index falls outside pointers
// (a pointer table shorter than 2^HashBits entries).
func (t *MegaPointerTable) LeafPointerAt(pointers []uint64, hash uint64) (uint64, error) {
	idx := t.LeafPointerIndex(hash)
	if idx >= uint64(len(pointers)) {
		return 0, fmt.Errorf("%w: index %d, table has %d entries", ErrPointerTableRange, idx, len(pointers))
	}
	return pointers[idx], nil
}

// DuplicatePointers applies the copy-by-duplication growth rule (Testable
// Property: new[2i] == new[2i+1] == old[i] for every i) to a decoded
// pointer-table array, returning a table twice as long.
func DuplicatePointers(old []uint64) []uint64 {
	out := make([]uint64, 0, len(old)*2)
	for _, v := range old {
		out = append(out, v, v)
	}
	return out
}

// DuplicatePointerBytes applies the same copy-by-duplication growth rule
// directly to an encoded pointer-table byte region (length a multiple of
// 8), using a pooled staging buffer sized for the doubled region: a real
// growth copies whole leaf-pointer blocks, not individually decoded
// integers, so the staging buffer is the unit of reuse rather than the
// u64 slice DuplicatePointers works with.
func DuplicatePointerBytes(old []byte, order binary.ByteOrder) ([]byte, error) {
	if len(old)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrPointerTableRegion, len(old))
	}

	doubledSize, err := utils.SafeMultiply(uint64(len(old)), 2)
	if err != nil {
		return nil, fmt.Errorf("zap: pointer table growth copy size overflow: %w", err)
	}

	staging := utils.GetBuffer(int(doubledSize))
	defer utils.ReleaseBuffer(staging)

	count := uint64(len(old) / 8)
	for i := uint64(0); i < count; i++ {
		v := order.Uint64(old[i*8 : i*8+8])
		order.PutUint64(staging[i*16:i*16+8], v)
		order.PutUint64(staging[i*16+8:i*16+16], v)
	}

	out := make([]byte, doubledSize)
	copy(out, staging)
	return out, nil
}
