// Package nvlist decodes the ZFS "name-value list" wire format: a small
// 4-byte header followed by an XDR-encoded sequence of (name, typed value)
// pairs, terminated by a zero-sized sentinel pair. NV lists nest inside
// pool configuration, feature descriptors, and vdev labels alike.
package nvlist

import (
	"errors"
	"fmt"
)

// Encoding selects how the list body is framed. Only Xdr is implemented:
// the reference decoder this package is grounded on treats Native as
// unimplemented, and every real NV list this codec will ever see (pool
// config, vdev labels) is encoded as Xdr.
type Encoding uint8

const (
	EncodingNative Encoding = 0
	EncodingXdr    Encoding = 1
)

func (e Encoding) String() string {
	switch e {
	case EncodingNative:
		return "native"
	case EncodingXdr:
		return "xdr"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

// EndianOrder is the header's declared byte order. It has no bearing on the
// list body when Encoding is Xdr (XDR integers are always big-endian on the
// wire); it is validated and carried along purely as header metadata.
type EndianOrder uint8

const (
	EndianBig    EndianOrder = 0
	EndianLittle EndianOrder = 1
)

func (o EndianOrder) String() string {
	switch o {
	case EndianBig:
		return "big"
	case EndianLittle:
		return "little"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// ParseEndianOrder validates v as 0 (big) or 1 (little).
func ParseEndianOrder(v uint8) (EndianOrder, error) {
	switch v {
	case 0:
		return EndianBig, nil
	case 1:
		return EndianLittle, nil
	default:
		return 0, fmt.Errorf("nvlist: %w: %d", ErrUnknownEndian, v)
	}
}

// Unique is the name-uniqueness discipline declared in the header's flags
// field (its bottom two bits).
type Unique uint8

const (
	UniqueNone     Unique = 0
	UniqueName     Unique = 1
	UniqueNameType Unique = 2
)

func (u Unique) String() string {
	switch u {
	case UniqueNone:
		return "none"
	case UniqueName:
		return "name"
	case UniqueNameType:
		return "name_type"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(u))
	}
}

// DataType is the wire tag (1..27) identifying a pair's value shape.
type DataType uint32

const (
	Boolean       DataType = 1
	Byte          DataType = 2
	Int16         DataType = 3
	Uint16        DataType = 4
	Int32         DataType = 5
	Uint32        DataType = 6
	Int64         DataType = 7
	Uint64        DataType = 8
	String        DataType = 9
	ByteArray     DataType = 10
	Int16Array    DataType = 11
	Uint16Array   DataType = 12
	Int32Array    DataType = 13
	Uint32Array   DataType = 14
	Int64Array    DataType = 15
	Uint64Array   DataType = 16
	StringArray   DataType = 17
	HrTime        DataType = 18
	NvList        DataType = 19
	NvListArray   DataType = 20
	BooleanValue  DataType = 21
	Int8          DataType = 22
	Uint8         DataType = 23
	BooleanArray  DataType = 24
	Int8Array     DataType = 25
	Uint8Array    DataType = 26
	Double        DataType = 27
)

func (t DataType) String() string {
	switch t {
	case Boolean:
		return "boolean"
	case Byte:
		return "byte"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case String:
		return "string"
	case ByteArray:
		return "byte_array"
	case Int16Array:
		return "int16_array"
	case Uint16Array:
		return "uint16_array"
	case Int32Array:
		return "int32_array"
	case Uint32Array:
		return "uint32_array"
	case Int64Array:
		return "int64_array"
	case Uint64Array:
		return "uint64_array"
	case StringArray:
		return "string_array"
	case HrTime:
		return "hr_time"
	case NvList:
		return "nv_list"
	case NvListArray:
		return "nv_list_array"
	case BooleanValue:
		return "boolean_value"
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case BooleanArray:
		return "boolean_array"
	case Int8Array:
		return "int8_array"
	case Uint8Array:
		return "uint8_array"
	case Double:
		return "double"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// ParseDataType validates v as one of the 27 defined data types.
func ParseDataType(v uint32) (DataType, error) {
	if v < 1 || v > 27 {
		return 0, fmt.Errorf("nvlist: %w: %d", ErrUnknownDataType, v)
	}
	return DataType(v), nil
}

var (
	ErrReservedBytes    = errors.New("nvlist: non-zero reserved header bytes")
	ErrUnknownEndian    = errors.New("nvlist: unknown endian order")
	ErrUnsupportedEncoding = errors.New("nvlist: unsupported encoding (only xdr is implemented)")
	ErrUnknownVersion   = errors.New("nvlist: unknown version")
	ErrUnknownFlags     = errors.New("nvlist: unknown flags")
	ErrUnknownDataType  = errors.New("nvlist: unknown data type")
	ErrInvalidCount     = errors.New("nvlist: invalid element count for data type")
	ErrInvalidEncodedSize = errors.New("nvlist: pair consumed a different byte count than its declared encoded_size")
	ErrWrongType        = errors.New("nvlist: pair has a different data type than requested")
	ErrTruncated        = errors.New("nvlist: truncated header")
)

// elementSize returns the validated count discipline and, for fixed-width
// array types, the per-element wire size (0 for scalars, which instead
// enforce count == 1, and for Boolean, which enforces count == 0). Variable-
// width array types (ByteArray/StringArray/NvListArray) also return 0: their
// element size is not fixed, and count is unconstrained.
func elementSize(t DataType, count int) (int, error) {
	switch t {
	case Boolean:
		if count != 0 {
			return 0, fmt.Errorf("nvlist: %w: boolean requires count 0, got %d", ErrInvalidCount, count)
		}
		return 0, nil
	case Byte, Int16, Uint16, Int32, Uint32, Int64, Uint64, String, HrTime,
		NvList, BooleanValue, Int8, Uint8, Double:
		if count != 1 {
			return 0, fmt.Errorf("nvlist: %w: %s requires count 1, got %d", ErrInvalidCount, t, count)
		}
		return 0, nil
	case BooleanArray, Int16Array, Uint16Array, Int32Array, Uint32Array, Int8Array, Uint8Array:
		return 4, nil
	case Int64Array, Uint64Array:
		return 8, nil
	case ByteArray, StringArray, NvListArray:
		return 0, nil
	default:
		return 0, fmt.Errorf("nvlist: %w: %d", ErrUnknownDataType, uint32(t))
	}
}
