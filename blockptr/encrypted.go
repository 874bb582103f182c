package blockptr

import "github.com/scigolib/zfsphys/binaryfmt"

// Encrypted is a block pointer addressing encrypted data via up to two
// DVAs, carrying the salt, IV, and truncated MAC needed to decrypt and
// authenticate the payload.
type Encrypted struct {
	ChecksumType     ChecksumType
	ChecksumValue    [2]uint64
	Compression      CompressionType
	Dedup            bool
	Dmu              DmuType
	DVAs             [2]*DVA
	LittleEndian     bool
	FillCount        uint32
	Level            uint8
	LogicalBirthTxg  uint64
	LogicalSectors   uint32
	MAC              [2]uint64
	PhysicalBirthTxg uint64
	PhysicalSectors  uint32
	Salt             uint64
	IV1              uint64
	IV2              uint32
}

func encryptedFromDecoder(dec *binaryfmt.Decoder) (*Encrypted, error) {
	var dvas [2]*DVA
	for i := range dvas {
		d, ok, err := DVAFromDecoder(dec)
		if err != nil {
			return nil, err
		}
		if ok {
			dvas[i] = &d
		}
	}

	salt, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	iv1, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	flags, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	embedded := flags&embeddedFlagMask != 0
	encrypted := flags&encryptedFlagMask != 0
	if embedded || !encrypted {
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
	physicalSectors := uint32((flags>>encryptedPhysicalSectorsShift)&0xffff) + 1

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

	ivFill, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	iv2 := uint32(ivFill >> encryptedIV2Shift)
	fillCount := uint32(ivFill & encryptedIVFillMask)

	var checksumValue [2]uint64
	for i := range checksumValue {
		v, err := dec.GetU64()
		if err != nil {
			return nil, err
		}
		checksumValue[i] = v
	}
	var mac [2]uint64
	for i := range mac {
		v, err := dec.GetU64()
		if err != nil {
			return nil, err
		}
		mac[i] = v
	}

	return &Encrypted{
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
		MAC:              mac,
		PhysicalBirthTxg: physicalBirthTxg,
		PhysicalSectors:  physicalSectors,
		Salt:             salt,
		IV1:              iv1,
		IV2:              iv2,
	}, nil
}

// ToEncoder encodes e as a 128-byte encrypted block pointer.
func (e *Encrypted) ToEncoder(enc *binaryfmt.Encoder) error {
	for _, d := range e.DVAs {
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

	if e.LogicalSectors < 1 || e.LogicalSectors > LogicalSectorsMax {
		return ErrInvalidSectors
	}
	if e.PhysicalSectors < 1 || e.PhysicalSectors > PhysicalSectorsMax {
		return ErrInvalidSectors
	}

	if err := enc.PutU64(e.Salt); err != nil {
		return err
	}
	if err := enc.PutU64(e.IV1); err != nil {
		return err
	}

	if uint64(e.Level) > levelMaskShifted {
		return ErrInvalidLevel
	}
	if err := e.Dmu.Validate(); err != nil {
		return err
	}
	if err := e.ChecksumType.Validate(); err != nil {
		return err
	}
	if err := e.Compression.Validate(); err != nil {
		return err
	}

	flags := uint64(e.LogicalSectors-1) |
		uint64(e.PhysicalSectors-1)<<encryptedPhysicalSectorsShift |
		uint64(e.Compression)<<compressionShift |
		uint64(e.ChecksumType)<<checksumShift |
		uint64(e.Dmu)<<dmuShift |
		uint64(e.Level)<<levelShift |
		encryptedFlagMask
	if e.Dedup {
		flags |= dedupFlagMask
	}
	if e.LittleEndian {
		flags |= littleEndianFlagMask
	}
	if err := enc.PutU64(flags); err != nil {
		return err
	}

	if err := enc.PutZeros(16); err != nil {
		return err
	}
	if err := enc.PutU64(e.PhysicalBirthTxg); err != nil {
		return err
	}
	if err := enc.PutU64(e.LogicalBirthTxg); err != nil {
		return err
	}
	if err := enc.PutU64(uint64(e.FillCount) | uint64(e.IV2)<<encryptedIV2Shift); err != nil {
		return err
	}
	for _, v := range e.ChecksumValue {
		if err := enc.PutU64(v); err != nil {
			return err
		}
	}
	for _, v := range e.MAC {
		if err := enc.PutU64(v); err != nil {
			return err
		}
	}
	return nil
}
