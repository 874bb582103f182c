package spacemap

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// DebugEntry is an 8-byte diagnostic record inserted between allocation
// runs: the sync pass and transaction group active when it was written.
type DebugEntry struct {
	Action   Action
	SyncPass uint16
	TXG      uint64
}

const (
	debugActionShift        = 60
	debugActionMaskShifted  = (1 << 2) - 1
	debugSyncPassShift      = 50
	debugSyncPassMaskShift  = (1 << 10) - 1
	debugTXGMask            = (1 << 50) - 1

	// SyncPassMax is the largest value DebugEntry.SyncPass can hold.
	SyncPassMax uint16 = debugSyncPassMaskShift

	// paddingValue is the sentinel word (entry-type bits 0b10 with every
	// other bit clear) that marks a V1/Debug-sized slot as padding rather
	// than a real entry.
	paddingValue uint64 = 1 << 63
)

// EntryV1 is the original 8-byte allocate/free record: a 47-bit block
// offset and 15-bit run length, relative to the space map's own vdev.
type EntryV1 struct {
	Action Action
	Offset uint64
	Run    uint16
}

const (
	v1ActionShift       = 15
	v1ActionMaskShifted = 1
	v1OffsetShift       = 16
	v1OffsetMaskShifted = (1 << 47) - 1
	v1RunMask           = (1 << 15) - 1

	// RunMaxV1 is the largest value EntryV1.Run can hold.
	RunMaxV1 uint16 = v1RunMask
)

// EntryV2 is the 16-byte allocate/free record introduced by
// com.delphix:spacemap_v2: a 63-bit offset, 36-bit run length, and an
// explicit 24-bit vdev id, letting one map span multiple vdevs.
type EntryV2 struct {
	Action Action
	Offset uint64
	Run    uint64
	Vdev   uint32
}

const (
	v2ActionShift       = 63
	v2ActionMaskShifted = 1
	v2OffsetMask        = (1 << 63) - 1
	v2VdevMask          = (1 << 24) - 1
	v2RunShift          = 24
	v2RunMaskShifted    = (1 << 36) - 1
	v2PaddingMask       = uint64(3) << 60

	// VdevMaxV2 is the largest value EntryV2.Vdev can hold.
	VdevMaxV2 uint32 = v2VdevMask
)

// Entry is the tagged union of the three space map log record kinds, plus
// the padding sentinel. Exactly one of Debug, V1, V2 is non-nil, unless
// Padding is true.
type Entry struct {
	Debug   *DebugEntry
	V1      *EntryV1
	V2      *EntryV2
	Padding bool
}

// DecodeEntry decodes one space map log entry. V2 entries consume 16
// bytes; Debug, V1, and Padding consume 8.
func DecodeEntry(dec *binaryfmt.Decoder) (*Entry, error) {
	a, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	switch typeBits := (a >> 62) & 0x3; typeBits {
	case 0, 1:
		// Only the top bit distinguishes V1 from the 2-bit type-tag space;
		// both 0 and 1 mean "V1 entry".
		action, err := parseAction(uint8((a >> v1ActionShift) & v1ActionMaskShifted))
		if err != nil {
			return nil, err
		}
		offset := (a >> v1OffsetShift) & v1OffsetMaskShifted
		run := uint16(a & v1RunMask)
		return &Entry{V1: &EntryV1{Action: action, Offset: offset, Run: run}}, nil

	case 2:
		if a == paddingValue {
			return &Entry{Padding: true}, nil
		}
		action, err := parseAction(uint8((a >> debugActionShift) & debugActionMaskShifted))
		if err != nil {
			return nil, err
		}
		syncPass := uint16((a >> debugSyncPassShift) & debugSyncPassMaskShift)
		txg := a & debugTXGMask
		return &Entry{Debug: &DebugEntry{Action: action, SyncPass: syncPass, TXG: txg}}, nil

	case 3:
		b, err := dec.GetU64()
		if err != nil {
			return nil, err
		}
		if padding := a & v2PaddingMask; padding != 0 {
			return nil, fmt.Errorf("spacemap: %w: %#x", ErrNonZeroPadding, padding)
		}
		vdev := uint32(a & v2VdevMask)
		run := (a >> v2RunShift) & v2RunMaskShifted
		action, err := parseAction(uint8((b >> v2ActionShift) & v2ActionMaskShifted))
		if err != nil {
			return nil, err
		}
		offset := b & v2OffsetMask
		return &Entry{V2: &EntryV2{Action: action, Offset: offset, Run: run, Vdev: vdev}}, nil

	default:
		panic("unreachable: type bits are a 2-bit field")
	}
}

// Encode appends e's wire form to enc.
func (e *Entry) Encode(enc *binaryfmt.Encoder) error {
	switch {
	case e.Padding:
		return enc.PutU64(paddingValue)
	case e.V1 != nil:
		v := e.V1
		if v.Run > RunMaxV1 {
			return fmt.Errorf("spacemap: run %d exceeds V1 maximum %d", v.Run, RunMaxV1)
		}
		a := (uint64(v.Action) << v1ActionShift) | (v.Offset&v1OffsetMaskShifted)<<v1OffsetShift | uint64(v.Run)&v1RunMask
		return enc.PutU64(a)
	case e.Debug != nil:
		d := e.Debug
		if d.SyncPass > SyncPassMax {
			return fmt.Errorf("spacemap: sync pass %d exceeds maximum %d", d.SyncPass, SyncPassMax)
		}
		a := uint64(2)<<62 | (uint64(d.Action)&debugActionMaskShifted)<<debugActionShift |
			(uint64(d.SyncPass)&debugSyncPassMaskShift)<<debugSyncPassShift | (d.TXG & debugTXGMask)
		return enc.PutU64(a)
	case e.V2 != nil:
		v := e.V2
		if v.Vdev > VdevMaxV2 {
			return fmt.Errorf("spacemap: vdev %d exceeds maximum %d", v.Vdev, VdevMaxV2)
		}
		a := uint64(3)<<62 | (v.Run&v2RunMaskShifted)<<v2RunShift | uint64(v.Vdev)&v2VdevMask
		b := ((uint64(v.Action) & v2ActionMaskShifted) << v2ActionShift) | (v.Offset & v2OffsetMask)
		if err := enc.PutU64(a); err != nil {
			return err
		}
		return enc.PutU64(b)
	default:
		return ErrNoVariant
	}
}
