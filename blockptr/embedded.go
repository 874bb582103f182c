package blockptr

import "github.com/scigolib/zfsphys/binaryfmt"

// EmbeddedPhysicalSizeMax is the inline payload capacity of an Embedded
// block pointer, in bytes.
const EmbeddedPhysicalSizeMax = 112

// EmbeddedLogicalSizeMax is the largest logical (decompressed) size an
// Embedded block pointer can declare: the field is 25 bits wide.
const EmbeddedLogicalSizeMax = embeddedLogicalSizeMask

// Embedded is a block pointer whose payload is small enough to live
// inline in the pointer itself, avoiding a separate block allocation.
// It carries no DVAs.
type Embedded struct {
	Compression     CompressionType
	Dmu             DmuType
	EmbeddedType    EmbeddedType
	LittleEndian    bool
	Level           uint8
	LogicalBirthTxg uint64
	LogicalSize     int
	PhysicalSize    int
	Payload         [EmbeddedPhysicalSizeMax]byte
}

func embeddedFromDecoder(dec *binaryfmt.Decoder) (*Embedded, error) {
	var payload [EmbeddedPhysicalSizeMax]byte

	b, err := dec.GetBytes(48)
	if err != nil {
		return nil, err
	}
	copy(payload[0:48], b)

	flags, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	b, err = dec.GetBytes(24)
	if err != nil {
		return nil, err
	}
	copy(payload[48:72], b)

	logicalBirthTxg, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	b, err = dec.GetBytes(40)
	if err != nil {
		return nil, err
	}
	copy(payload[72:112], b)

	embedded := flags&embeddedFlagMask != 0
	encrypted := flags&encryptedFlagMask != 0
	if !embedded || encrypted {
		return nil, errInvalidBlockPointerType(embedded, encrypted)
	}

	if flags&dedupFlagMask != 0 {
		return nil, ErrInvalidDedupValue
	}

	littleEndian := flags&littleEndianFlagMask != 0
	level := uint8((flags >> levelShift) & levelMaskShifted)

	dmu := DmuType(flags >> dmuShift)
	if err := dmu.Validate(); err != nil {
		return nil, err
	}

	// Embedded type is packed in the same bits as checksum_type on other
	// variants: a block pointer's parent already checksums the DVA that
	// addresses it, so those bits are free to repurpose here.
	embeddedType, err := ParseEmbeddedType(uint8(flags >> checksumShift))
	if err != nil {
		return nil, err
	}

	compression := CompressionType((flags >> compressionShift) & compressionMaskShifted)
	if err := compression.Validate(); err != nil {
		return nil, err
	}

	logicalSize := int(flags & embeddedLogicalSizeMask)
	physicalSize := int((flags >> embeddedPhysicalSizeShift) & embeddedPhysicalSizeMaskShifted)

	if physicalSize > len(payload) {
		return nil, ErrInvalidEmbeddedLength
	}

	return &Embedded{
		Compression:     compression,
		Dmu:             dmu,
		EmbeddedType:    embeddedType,
		LittleEndian:    littleEndian,
		Level:           level,
		LogicalBirthTxg: logicalBirthTxg,
		LogicalSize:     logicalSize,
		PhysicalSize:    physicalSize,
		Payload:         payload,
	}, nil
}

// ToEncoder encodes e as a 128-byte embedded block pointer.
func (e *Embedded) ToEncoder(enc *binaryfmt.Encoder) error {
	if e.PhysicalSize > len(e.Payload) {
		return ErrInvalidEmbeddedLength
	}
	if uint64(e.LogicalSize) > EmbeddedLogicalSizeMax {
		return ErrInvalidEmbeddedLength
	}
	if uint64(e.Level) > levelMaskShifted {
		return ErrInvalidLevel
	}
	if err := e.Dmu.Validate(); err != nil {
		return err
	}
	if err := e.Compression.Validate(); err != nil {
		return err
	}

	if err := enc.PutBytes(e.Payload[0:48]); err != nil {
		return err
	}

	flags := uint64(e.LogicalSize) |
		uint64(e.PhysicalSize)<<embeddedPhysicalSizeShift |
		uint64(e.Compression)<<compressionShift |
		embeddedFlagMask |
		uint64(e.EmbeddedType)<<checksumShift |
		uint64(e.Dmu)<<dmuShift |
		uint64(e.Level)<<levelShift
	if e.LittleEndian {
		flags |= littleEndianFlagMask
	}
	if err := enc.PutU64(flags); err != nil {
		return err
	}

	if err := enc.PutBytes(e.Payload[48:72]); err != nil {
		return err
	}
	if err := enc.PutU64(e.LogicalBirthTxg); err != nil {
		return err
	}
	return enc.PutBytes(e.Payload[72:112])
}
