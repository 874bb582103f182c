package zap

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// MicroEntry is one decoded micro-ZAP entry: a name, its 64-bit value, and
// the collision differentiator distinguishing entries that hash alike.
type MicroEntry struct {
	CD    uint32
	Name  string
	Value uint64
}

const (
	MicroEntrySize = 64

	microEntryNameMax     = 49
	microEntryNameField   = microEntryNameMax + 1
	microEntryPadding     = 2
)

// DecodeMicroEntry decodes one MicroEntrySize-byte slot. It returns
// (nil, nil) if the slot is all-zero (empty).
func DecodeMicroEntry(dec *binaryfmt.Decoder) (*MicroEntry, error) {
	empty, err := dec.IsSkipZeros(MicroEntrySize)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}

	value, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	cd, err := dec.GetU32()
	if err != nil {
		return nil, err
	}
	if err := dec.SkipZeros(microEntryPadding); err != nil {
		return nil, err
	}
	nameBytes, err := dec.GetBytes(microEntryNameField)
	if err != nil {
		return nil, err
	}
	nul := -1
	for i, b := range nameBytes {
		if b == 0 {
			nul = i
			break
		}
	}
	if nul < 0 {
		return nil, ErrNameNotTerminated
	}

	return &MicroEntry{CD: cd, Name: string(nameBytes[:nul]), Value: value}, nil
}

// Encode appends e's wire form to enc. A nil *MicroEntry encodes the empty
// (all-zero) slot.
func (e *MicroEntry) Encode(enc *binaryfmt.Encoder) error {
	if e == nil {
		return enc.PutZeros(MicroEntrySize)
	}
	if len(e.Name) > microEntryNameMax {
		return fmt.Errorf("zap: %w: %q", ErrNameTooLong, e.Name)
	}
	if err := enc.PutU64(e.Value); err != nil {
		return err
	}
	if err := enc.PutU32(e.CD); err != nil {
		return err
	}
	if err := enc.PutZeros(microEntryPadding); err != nil {
		return err
	}
	return enc.PutCString(e.Name, microEntryNameField)
}

// MicroIterator scans the entry region following a MicroHeader, skipping
// empty slots and decoding each occupied one in turn.
type MicroIterator struct {
	Header *MicroHeader
	dec    *binaryfmt.Decoder
}

// NewMicroIterator decodes the header at the start of dec and returns an
// iterator positioned at the first entry. dec must cover exactly one
// micro-ZAP block.
func NewMicroIterator(dec *binaryfmt.Decoder) (*MicroIterator, error) {
	header, err := DecodeMicroHeader(dec)
	if err != nil {
		return nil, err
	}
	remaining, err := dec.GetBytes(dec.Len())
	if err != nil {
		return nil, err
	}
	if len(remaining)%MicroEntrySize != 0 {
		return nil, fmt.Errorf("zap: %w: %d", ErrInvalidEntriesLength, len(remaining))
	}
	return &MicroIterator{
		Header: header,
		dec:    binaryfmt.NewDecoder(remaining, dec.Order()),
	}, nil
}

// Reset rewinds the iterator to its first entry.
func (it *MicroIterator) Reset() { it.dec.Reset() }

// Next returns the next occupied entry, or (nil, nil) once every slot has
// been scanned.
func (it *MicroIterator) Next() (*MicroEntry, error) {
	for it.dec.Len() > 0 {
		entry, err := DecodeMicroEntry(it.dec)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			return entry, nil
		}
	}
	return nil, nil
}
