package blockptr

import "github.com/scigolib/zfsphys/binaryfmt"

// DVA is a Data Virtual Address: a 16-byte pointer to a physical
// allocation on one top-level vdev. It never appears on disk in isolation;
// block pointers embed up to three of them.
//
// No retrieval-pack source carries a dedicated DVA definition, so this
// struct is grounded in the well-documented ZFS on-disk layout rather than
// a specific pack file: word 0 packs a 32-bit vdev id and an 8-bit grid
// hint alongside a 24-bit allocation size (in sectors, minus one); word 1
// packs a gang-block bit and a 63-bit sector offset.
type DVA struct {
	// Vdev is the top-level vdev id this allocation lives on.
	Vdev uint32

	// GRID is a historical RAID-Z grid hint, rarely used by modern code.
	GRID uint8

	// ASize is the allocated size in sectors, including any RAID-Z parity.
	ASize uint32

	// Gang reports whether this DVA points to a gang block rather than a
	// direct data allocation.
	Gang bool

	// Offset is the sector offset within the vdev (not including the
	// vdev's internal boot/label reservation).
	Offset uint64
}

// dvaSize is the encoded byte size of a DVA.
const dvaSize = 16

const (
	dvaASizeMask        = 0xffffff
	dvaGRIDShift         = 24
	dvaVdevShift         = 32
	dvaGangFlagMask     uint64 = 1 << 63
	dvaOffsetMaskShifted uint64 = (1 << 63) - 1
)

// IsEmpty reports whether d is the all-zero DVA, which on-disk means "no
// allocation".
func (d DVA) IsEmpty() bool {
	return d == DVA{}
}

// DVAFromDecoder decodes a single 16-byte DVA. Returns the zero DVA (with
// ok=false) without error if the 16 bytes are all zero.
func DVAFromDecoder(dec *binaryfmt.Decoder) (DVA, bool, error) {
	word0, err := dec.GetU64()
	if err != nil {
		return DVA{}, false, err
	}
	word1, err := dec.GetU64()
	if err != nil {
		return DVA{}, false, err
	}
	if word0 == 0 && word1 == 0 {
		return DVA{}, false, nil
	}

	d := DVA{
		Vdev:   uint32(word0 >> dvaVdevShift),
		GRID:   uint8(word0 >> dvaGRIDShift),
		ASize:  uint32(word0&dvaASizeMask) + 1,
		Gang:   word1&dvaGangFlagMask != 0,
		Offset: word1 & dvaOffsetMaskShifted,
	}
	return d, true, nil
}

// ToEncoder encodes d as a 16-byte DVA.
func (d DVA) ToEncoder(enc *binaryfmt.Encoder) error {
	if d.ASize < 1 {
		return errInvalidDVAASize(d.ASize)
	}
	word0 := uint64(d.Vdev)<<dvaVdevShift | uint64(d.GRID)<<dvaGRIDShift | uint64(d.ASize-1)&dvaASizeMask
	word1 := d.Offset & dvaOffsetMaskShifted
	if d.Gang {
		word1 |= dvaGangFlagMask
	}
	if err := enc.PutU64(word0); err != nil {
		return err
	}
	return enc.PutU64(word1)
}

// DVAEmptyToEncoder encodes the all-zero (absent) DVA.
func DVAEmptyToEncoder(enc *binaryfmt.Encoder) error {
	return enc.PutZeros(dvaSize)
}
