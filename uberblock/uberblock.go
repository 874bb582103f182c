// Package uberblock implements the ZFS uberblock: the root-of-trust
// record a vdev label carries an array of, each describing one
// transaction group's root block pointer, checksummed and tweaked by its
// own byte offset within the label.
package uberblock

import (
	"encoding/binary"
	"errors"

	"github.com/scigolib/zfsphys/binaryfmt"
	"github.com/scigolib/zfsphys/blockptr"
	"github.com/scigolib/zfsphys/internal/utils"
)

// Magic is the leading 8 bytes of an encoded uberblock. Its byte order,
// once matched, determines the order of every other field in the record.
const Magic uint64 = 0x0000000000bab10c

// MinShift and MaxShift bound the power-of-two uberblock size: from 1024
// bytes up to the 128 KiB region a label reserves for the whole array.
const (
	MinShift = 10
	MaxShift = 17
)

// ErrBufferTooSmall is returned when an input buffer is shorter than the
// minimum a decode/encode operation requires.
var ErrBufferTooSmall = errors.New("uberblock: buffer too small")

// ErrInvalidMagic is returned when neither byte order of the leading
// magic matches Magic.
var ErrInvalidMagic = errors.New("uberblock: invalid magic")

// ErrEmptyBlockPointer is returned when an uberblock's root block pointer
// decodes as empty; a live uberblock must always address something.
var ErrEmptyBlockPointer = errors.New("uberblock: empty root block pointer")

// UberBlock is one entry of a vdev label's uberblock array.
type UberBlock struct {
	CheckpointTxg   uint64
	Order           binary.ByteOrder
	GuidSum         uint64
	Mmp             *Mmp
	Ptr             *blockptr.BlockPointer
	SoftwareVersion *SpaVersion
	Timestamp       uint64
	Txg             uint64
	Version         SpaVersion
}

// Shift returns the uberblock size exponent for version and ashift: the
// byte size is 1 << Shift. V1 is pinned to the 1024-byte minimum; V5000
// (feature flags) tops out at 8192 bytes (shift 13); every version in
// between tops out at the full 128 KiB/label region (shift 17).
func Shift(version SpaVersion, ashift uint32) uint32 {
	max := version.shiftMax()
	switch {
	case ashift < MinShift:
		return MinShift
	case ashift > max:
		return max
	default:
		return ashift
	}
}

func bytesAreEmpty(bytes []byte, excludeChecksum bool) bool {
	if len(bytes) < 16 {
		return false
	}
	dec := binaryfmt.NewDecoder(bytes, binary.LittleEndian)
	magicIsZero, err := dec.IsSkipZeros(8)
	if err != nil || !magicIsZero {
		return false
	}
	if err := dec.Skip(8); err != nil { // version
		return false
	}
	excluded := 0
	if excludeChecksum {
		excluded = ChecksumTailSize
	}
	restSize := dec.Len() - excluded
	if restSize < 0 {
		return false
	}
	isZero, err := dec.IsSkipZeros(restSize)
	if err != nil {
		return false
	}
	return isZero
}

// FromBytes decodes one uberblock slot. Returns (nil, nil) if the slot is
// empty: either the label checksum fails to verify and the bytes (wholly,
// or excluding the checksum tail) are all-zero, which both real-world
// writer variants use to mark an unused slot.
func FromBytes(bytes []byte, offset uint64) (*UberBlock, error) {
	return FromBytesWithOptions(bytes, offset, binaryfmt.DecodeOptions{})
}

// FromBytesWithOptions is FromBytes with diagnostic logging: opts.Logger
// (if non-nil) receives a debug record each time an empty slot is
// detected. Only the bad-magic check can report one: bytesAreEmpty
// requires a zero magic, so a slot whose magic matched is never empty.
func FromBytesWithOptions(bytes []byte, offset uint64, opts binaryfmt.DecodeOptions) (*UberBlock, error) {
	logger := utils.LoggerOrDiscard(opts.Logger)
	if len(bytes) < ChecksumTailSize+208 {
		return nil, ErrBufferTooSmall
	}

	var order binary.ByteOrder
	switch {
	case binary.BigEndian.Uint64(bytes[:8]) == Magic:
		order = binary.BigEndian
	case binary.LittleEndian.Uint64(bytes[:8]) == Magic:
		order = binary.LittleEndian
	default:
		if bytesAreEmpty(bytes, true) {
			logger.Debug("uberblock: empty slot (bad magic, zero body)", "offset", offset)
			return nil, nil
		}
		return nil, ErrInvalidMagic
	}

	if !LabelVerify(bytes, offset, order) {
		if bytesAreEmpty(bytes, false) {
			logger.Debug("uberblock: empty slot (checksum mismatch, zero body)", "offset", offset)
			return nil, nil
		}
		return nil, ErrInvalidMagic
	}

	dec := binaryfmt.NewDecoder(bytes, order)
	if _, err := dec.GetU64(); err != nil { // magic, already matched
		return nil, err
	}

	versionRaw, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	version, err := ParseSpaVersion(versionRaw)
	if err != nil {
		return nil, err
	}

	txg, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	guidSum, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	timestamp, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	ptr, err := blockptr.FromDecoder(dec)
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		return nil, ErrEmptyBlockPointer
	}

	swRaw, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	var softwareVersion *SpaVersion
	if swRaw != 0 {
		sv, err := ParseSpaVersion(swRaw)
		if err != nil {
			return nil, err
		}
		softwareVersion = &sv
	}

	mmp, err := MmpFromDecoder(dec)
	if err != nil {
		return nil, err
	}

	checkpointTxg, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	restSize := dec.Len() - ChecksumTailSize
	if restSize < 0 {
		return nil, ErrBufferTooSmall
	}
	if err := dec.SkipZeros(restSize); err != nil {
		return nil, err
	}

	return &UberBlock{
		CheckpointTxg:   checkpointTxg,
		Order:           order,
		GuidSum:         guidSum,
		Mmp:             mmp,
		Ptr:             ptr,
		SoftwareVersion: softwareVersion,
		Timestamp:       timestamp,
		Txg:             txg,
		Version:         version,
	}, nil
}

// ToBytes encodes u into bytes (which must be exactly the uberblock slot
// size) and computes its tweaked label checksum over offset.
func (u *UberBlock) ToBytes(bytes []byte, offset uint64) error {
	if len(bytes) < ChecksumTailSize+208 {
		return ErrBufferTooSmall
	}

	enc := binaryfmt.NewEncoder(bytes, u.Order)
	if err := enc.PutU64(Magic); err != nil {
		return err
	}
	if err := enc.PutU64(uint64(u.Version)); err != nil {
		return err
	}
	if err := enc.PutU64(u.Txg); err != nil {
		return err
	}
	if err := enc.PutU64(u.GuidSum); err != nil {
		return err
	}
	if err := enc.PutU64(u.Timestamp); err != nil {
		return err
	}
	if err := u.Ptr.ToEncoder(enc); err != nil {
		return err
	}

	if u.SoftwareVersion != nil {
		if err := enc.PutU64(uint64(*u.SoftwareVersion)); err != nil {
			return err
		}
	} else {
		if err := enc.PutU64(0); err != nil {
			return err
		}
	}

	if u.Mmp != nil {
		if err := u.Mmp.ToEncoder(enc); err != nil {
			return err
		}
	} else {
		if err := MmpEmptyToEncoder(enc); err != nil {
			return err
		}
	}

	if err := enc.PutU64(u.CheckpointTxg); err != nil {
		return err
	}

	restSize := len(bytes) - enc.Offset() - ChecksumTailSize
	if restSize < 0 {
		return ErrBufferTooSmall
	}
	if err := enc.PutZeros(restSize); err != nil {
		return err
	}

	return LabelChecksum(bytes, offset, u.Order)
}
