package blockptr

import "github.com/scigolib/zfsphys/binaryfmt"

// Regular is a block pointer addressing plaintext, uncompressed-or-not
// data via up to three DVAs.
type Regular struct {
	ChecksumType     ChecksumType
	ChecksumValue    ChecksumValue
	Compression      CompressionType
	Dedup            bool
	Dmu              DmuType
	DVAs             [3]*DVA
	LittleEndian     bool
	FillCount        uint64
	Level            uint8
	LogicalBirthTxg  uint64
	LogicalSectors   uint32
	PhysicalBirthTxg uint64
	PhysicalSectors  uint32
}

func regularFromDecoder(dec *binaryfmt.Decoder) (*Regular, error) {
	var dvas [3]*DVA
	for i := range dvas {
		d, ok, err := DVAFromDecoder(dec)
		if err != nil {
			return nil, err
		}
		if ok {
			dvas[i] = &d
		}
	}

	flags, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	embedded := flags&embeddedFlagMask != 0
	encrypted := flags&encryptedFlagMask != 0
	if embedded || encrypted {
		return nil, errInvalidBlockPointerType(embedded, encrypted)
	}

	dedup := flags&dedupFlagMask != 0
	littleEndian := flags&littleEndianFlagMask != 0
	level := uint8((flags >> levelShift) & levelMaskShifted)

	dmu := DmuType(flags >> dmuShift)
	if err := dmu.Validate(); err != nil {
		return nil, err
	}
	checksumType := ChecksumType(flags >> checksumShift)
	if err := checksumType.Validate(); err != nil {
		return nil, err
	}
	compression := CompressionType((flags >> compressionShift) & compressionMaskShifted)
	if err := compression.Validate(); err != nil {
		return nil, err
	}

	logicalSectors := uint32(flags&0xffff) + 1
	physicalSectors := uint32((flags>>regularPhysicalSectorsShift)&0xffff) + 1

	if err := dec.SkipZeros(16); err != nil {
		return nil, err
	}

	physicalBirthTxg, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	logicalBirthTxg, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	fillCount, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	var checksumValue ChecksumValue
	for i := range checksumValue {
		v, err := dec.GetU64()
		if err != nil {
			return nil, err
		}
		checksumValue[i] = v
	}

	return &Regular{
		ChecksumType:     checksumType,
		ChecksumValue:    checksumValue,
		Compression:      compression,
		Dedup:            dedup,
		Dmu:              dmu,
		DVAs:             dvas,
		LittleEndian:     littleEndian,
		FillCount:        fillCount,
		Level:            level,
		LogicalBirthTxg:  logicalBirthTxg,
		LogicalSectors:   logicalSectors,
		PhysicalBirthTxg: physicalBirthTxg,
		PhysicalSectors:  physicalSectors,
	}, nil
}

// ToEncoder encodes r as a 128-byte regular block pointer.
func (r *Regular) ToEncoder(enc *binaryfmt.Encoder) error {
	for _, d := range r.DVAs {
		var err error
		if d != nil {
			err = d.ToEncoder(enc)
		} else {
			err = DVAEmptyToEncoder(enc)
		}
		if err != nil {
			return err
		}
	}

	if r.LogicalSectors < 1 || r.LogicalSectors > LogicalSectorsMax {
		return ErrInvalidSectors
	}
	if r.PhysicalSectors < 1 || r.PhysicalSectors > PhysicalSectorsMax {
		return ErrInvalidSectors
	}
	if uint64(r.Level) > levelMaskShifted {
		return ErrInvalidLevel
	}
	if err := r.Dmu.Validate(); err != nil {
		return err
	}
	if err := r.ChecksumType.Validate(); err != nil {
		return err
	}
	if err := r.Compression.Validate(); err != nil {
		return err
	}

	flags := uint64(r.LogicalSectors-1) |
		uint64(r.PhysicalSectors-1)<<regularPhysicalSectorsShift |
		uint64(r.Compression)<<compressionShift |
		uint64(r.ChecksumType)<<checksumShift |
		uint64(r.Dmu)<<dmuShift |
		uint64(r.Level)<<levelShift
	if r.Dedup {
		flags |= dedupFlagMask
	}
	if r.LittleEndian {
		flags |= littleEndianFlagMask
	}
	if err := enc.PutU64(flags); err != nil {
		return err
	}

	if err := enc.PutZeros(16); err != nil {
		return err
	}
	if err := enc.PutU64(r.PhysicalBirthTxg); err != nil {
		return err
	}
	if err := enc.PutU64(r.LogicalBirthTxg); err != nil {
		return err
	}
	if err := enc.PutU64(r.FillCount); err != nil {
		return err
	}
	for _, v := range r.ChecksumValue {
		if err := enc.PutU64(v); err != nil {
			return err
		}
	}
	return nil
}
