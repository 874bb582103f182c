package uberblock

import (
	"errors"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// MmpSize is the encoded byte size of an Mmp (Multi-Modifier Protection)
// sub-record.
const MmpSize = 24

// MmpMagic is the leading magic of a configured Mmp sub-record. A magic
// of zero means MMP is not configured at all (Decode returns nil, nil).
const MmpMagic uint64 = 0x00000000a11cea11

const (
	mmpConfigWriteIntervalFlag  uint64 = 1 << 0
	mmpConfigSequenceFlag       uint64 = 1 << 1
	mmpConfigFailIntervalsFlag  uint64 = 1 << 2
	mmpConfigReservedMask       uint64 = 0xff &^ (mmpConfigWriteIntervalFlag | mmpConfigSequenceFlag | mmpConfigFailIntervalsFlag)
	mmpConfigWriteIntervalShift        = 8
	mmpConfigWriteIntervalMask  uint64 = (1 << 24) - 1
	mmpConfigSequenceShift             = 32
	mmpConfigFailIntervalsShift        = 48
)

// MmpWriteIntervalMax is the largest write interval (milliseconds) the
// 24-bit on-disk field can hold.
const MmpWriteIntervalMax uint32 = uint32(mmpConfigWriteIntervalMask)

// ErrMmpInvalidMagic is returned when the Mmp magic is neither zero nor
// MmpMagic.
var ErrMmpInvalidMagic = errors.New("uberblock: invalid mmp magic")

// ErrMmpNonZeroValues is returned when magic is zero but delay/config are
// not, or when a field's guard bit is clear but its value is non-zero.
var ErrMmpNonZeroValues = errors.New("uberblock: mmp has non-zero values for an absent field")

// ErrMmpReservedBits is returned when reserved config bits are set.
var ErrMmpReservedBits = errors.New("uberblock: mmp reserved config bits set")

// ErrMmpWriteIntervalTooLarge is returned when encoding a write interval
// that does not fit the 24-bit field.
var ErrMmpWriteIntervalTooLarge = errors.New("uberblock: mmp write interval too large")

// Mmp is the Multi-Modifier Protection sub-record: a sequence counter and
// write-interval/fail-interval policy used to detect concurrent pool
// imports. Each of its three fields is independently optional, guarded by
// its own bit in the packed config word.
type Mmp struct {
	Delay          uint64
	FailIntervals  *uint16
	Sequence       *uint16
	WriteInterval  *uint32
}

// MmpFromDecoder decodes an Mmp sub-record. Returns (nil, nil) if the
// magic is zero, meaning MMP is not configured.
func MmpFromDecoder(dec *binaryfmt.Decoder) (*Mmp, error) {
	magic, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	delay, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	config, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	switch magic {
	case 0:
		if delay != 0 || config != 0 {
			return nil, ErrMmpNonZeroValues
		}
		return nil, nil
	case MmpMagic:
		if config&mmpConfigReservedMask != 0 {
			return nil, ErrMmpReservedBits
		}

		failIntervals := uint16(config >> mmpConfigFailIntervalsShift)
		sequence := uint16(config >> mmpConfigSequenceShift)
		writeInterval := uint32((config >> mmpConfigWriteIntervalShift) & mmpConfigWriteIntervalMask)

		m := &Mmp{Delay: delay}

		if config&mmpConfigFailIntervalsFlag != 0 {
			m.FailIntervals = &failIntervals
		} else if failIntervals != 0 {
			return nil, ErrMmpNonZeroValues
		}

		if config&mmpConfigSequenceFlag != 0 {
			m.Sequence = &sequence
		} else if sequence != 0 {
			return nil, ErrMmpNonZeroValues
		}

		if config&mmpConfigWriteIntervalFlag != 0 {
			m.WriteInterval = &writeInterval
		} else if writeInterval != 0 {
			return nil, ErrMmpNonZeroValues
		}

		return m, nil
	default:
		return nil, ErrMmpInvalidMagic
	}
}

// ToEncoder encodes m as a 24-byte Mmp sub-record.
func (m *Mmp) ToEncoder(enc *binaryfmt.Encoder) error {
	if err := enc.PutU64(MmpMagic); err != nil {
		return err
	}
	if err := enc.PutU64(m.Delay); err != nil {
		return err
	}

	var config uint64
	if m.FailIntervals != nil {
		config |= uint64(*m.FailIntervals)<<mmpConfigFailIntervalsShift | mmpConfigFailIntervalsFlag
	}
	if m.Sequence != nil {
		config |= uint64(*m.Sequence)<<mmpConfigSequenceShift | mmpConfigSequenceFlag
	}
	if m.WriteInterval != nil {
		if *m.WriteInterval > MmpWriteIntervalMax {
			return ErrMmpWriteIntervalTooLarge
		}
		config |= uint64(*m.WriteInterval)<<mmpConfigWriteIntervalShift | mmpConfigWriteIntervalFlag
	}

	return enc.PutU64(config)
}

// MmpEmptyToEncoder encodes the unconfigured (all-zero) Mmp sub-record.
func MmpEmptyToEncoder(enc *binaryfmt.Encoder) error {
	return enc.PutZeros(MmpSize)
}
