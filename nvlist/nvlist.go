package nvlist

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
	"github.com/scigolib/zfsphys/internal/utils"
)

// HeaderSize is the byte size of the leading [encoding, endian, 0, 0] header.
const HeaderSize = 4

// List is a decoder positioned over one name-value list's body (the part
// after the 4-byte header): a u32 version, a u32 flags word, and a sequence
// of pairs terminated by a zero/zero sentinel.
type List struct {
	data     []byte
	dec      *binaryfmt.XdrDecoder
	encoding Encoding
	endian   EndianOrder
	unique   Unique
}

// Encoding, Endian, and Unique expose the list's header-declared metadata.
func (l *List) Encoding() Encoding { return l.encoding }
func (l *List) Endian() EndianOrder { return l.endian }
func (l *List) Unique() Unique     { return l.unique }

// FromBytes decodes the 4-byte header from data and returns a List
// positioned at its first pair.
func FromBytes(data []byte) (*List, error) {
	if len(data) < HeaderSize {
		return nil, ErrTruncated
	}
	encoding := Encoding(data[0])
	endian, err := ParseEndianOrder(data[1])
	if err != nil {
		return nil, err
	}
	if data[2] != 0 || data[3] != 0 {
		return nil, ErrReservedBytes
	}
	if encoding != EncodingXdr {
		return nil, ErrUnsupportedEncoding
	}

	l, err := fromPartial(data, HeaderSize, len(data)-HeaderSize, encoding)
	if err != nil {
		return nil, err
	}
	l.endian = endian
	return l, nil
}

// fromPartial decodes a list's version/flags preamble from data[start:start+length]
// and returns a List ready to iterate its pairs. Used both for the
// top-level list (after its header) and for nested lists, which repeat the
// version/flags preamble but not the 4-byte outer header.
func fromPartial(data []byte, start, length int, encoding Encoding) (*List, error) {
	if encoding != EncodingXdr {
		return nil, ErrUnsupportedEncoding
	}
	dec, err := binaryfmt.NewXdrDecoderRange(data, start, start+length)
	if err != nil {
		return nil, err
	}

	version, err := dec.GetU32()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("nvlist: %w: %d", ErrUnknownVersion, version)
	}

	flags, err := dec.GetU32()
	if err != nil {
		return nil, err
	}
	if flags&^0x3 != 0 {
		return nil, fmt.Errorf("nvlist: %w: %#x", ErrUnknownFlags, flags)
	}

	return &List{
		data:     data,
		dec:      dec,
		encoding: encoding,
		endian:   EndianBig,
		unique:   Unique(flags & 0x3),
	}, nil
}

// Reset rewinds the decoder to the first pair (just past version/flags).
func (l *List) Reset() {
	l.dec.Reset()
	_ = l.dec.Skip(8)
}

// drain consumes every remaining pair without collecting them, used to
// measure how many bytes a nested list's own pair stream occupies.
func (l *List) drain() error {
	for {
		p, err := l.NextPair()
		if err != nil {
			return err
		}
		if p == nil {
			return nil
		}
	}
}

// NextPair decodes the next pair, or returns (nil, nil) at the end-of-list
// sentinel (encoded_size == decoded_size == 0).
func (l *List) NextPair() (*Pair, error) {
	if l.dec.Len() == 0 {
		return nil, nil
	}

	startingOffset := l.dec.Offset()

	encodedSize, err := l.dec.GetUsize32()
	if err != nil {
		return nil, err
	}
	decodedSize, err := l.dec.GetUsize32()
	if err != nil {
		return nil, err
	}
	if encodedSize == 0 && decodedSize == 0 {
		return nil, nil
	}

	name, err := l.dec.GetString()
	if err != nil {
		return nil, err
	}
	dtRaw, err := l.dec.GetU32()
	if err != nil {
		return nil, err
	}
	dt, err := ParseDataType(dtRaw)
	if err != nil {
		return nil, err
	}
	count, err := l.dec.GetUsize32()
	if err != nil {
		return nil, err
	}
	fixedElemSize, err := elementSize(dt, count)
	if err != nil {
		return nil, err
	}

	valueOffset := l.dec.Offset()
	bytesUsed := valueOffset - startingOffset
	if bytesUsed > encodedSize {
		return nil, fmt.Errorf("nvlist: %w: encoded_size=%d used=%d", ErrInvalidEncodedSize, encodedSize, bytesUsed)
	}
	bytesRem := encodedSize - bytesUsed
	arrayValueSize64, err := utils.CalculateNvArrayRegion(uint32(count), uint64(fixedElemSize))
	if err != nil {
		return nil, fmt.Errorf("nvlist: %w", err)
	}
	arrayValueSize := int(arrayValueSize64)

	pair := &Pair{Name: name, Type: dt}

	switch dt {
	case Boolean:
		// No value bytes; presence alone is the flag.

	case Byte:
		v, err := l.dec.GetU8()
		if err != nil {
			return nil, err
		}
		pair.Byte = v
	case Int16:
		v, err := l.dec.GetI16()
		if err != nil {
			return nil, err
		}
		pair.I16 = v
	case Uint16:
		v, err := l.dec.GetU16()
		if err != nil {
			return nil, err
		}
		pair.U16 = v
	case Int32:
		v, err := l.dec.GetI32()
		if err != nil {
			return nil, err
		}
		pair.I32 = v
	case Uint32:
		v, err := l.dec.GetU32()
		if err != nil {
			return nil, err
		}
		pair.U32 = v
	case Int64:
		v, err := l.dec.GetI64()
		if err != nil {
			return nil, err
		}
		pair.I64 = v
	case Uint64:
		v, err := l.dec.GetU64()
		if err != nil {
			return nil, err
		}
		pair.U64 = v
	case String:
		v, err := l.dec.GetString()
		if err != nil {
			return nil, err
		}
		pair.Str = v
	case ByteArray:
		v, err := l.dec.GetBytes()
		if err != nil {
			return nil, err
		}
		pair.ByteArray = append([]byte(nil), v...)
	case Int16Array:
		if err := l.dec.Skip(arrayValueSize); err != nil {
			return nil, err
		}
		pair.I16Array = newNumericArray(l.data, valueOffset, arrayValueSize, count,
			func(d *binaryfmt.XdrDecoder) (int16, error) { return d.GetI16() })
	case Uint16Array:
		if err := l.dec.Skip(arrayValueSize); err != nil {
			return nil, err
		}
		pair.U16Array = newNumericArray(l.data, valueOffset, arrayValueSize, count,
			func(d *binaryfmt.XdrDecoder) (uint16, error) { return d.GetU16() })
	case Int32Array:
		if err := l.dec.Skip(arrayValueSize); err != nil {
			return nil, err
		}
		pair.I32Array = newNumericArray(l.data, valueOffset, arrayValueSize, count,
			func(d *binaryfmt.XdrDecoder) (int32, error) { return d.GetI32() })
	case Uint32Array:
		if err := l.dec.Skip(arrayValueSize); err != nil {
			return nil, err
		}
		pair.U32Array = newNumericArray(l.data, valueOffset, arrayValueSize, count,
			func(d *binaryfmt.XdrDecoder) (uint32, error) { return d.GetU32() })
	case Int64Array:
		if err := l.dec.Skip(arrayValueSize); err != nil {
			return nil, err
		}
		pair.I64Array = newNumericArray(l.data, valueOffset, arrayValueSize, count,
			func(d *binaryfmt.XdrDecoder) (int64, error) { return d.GetI64() })
	case Uint64Array:
		if err := l.dec.Skip(arrayValueSize); err != nil {
			return nil, err
		}
		pair.U64Array = newNumericArray(l.data, valueOffset, arrayValueSize, count,
			func(d *binaryfmt.XdrDecoder) (uint64, error) { return d.GetU64() })
	case StringArray:
		if err := l.dec.Skip(bytesRem); err != nil {
			return nil, err
		}
		pair.StrArray = StrArray{data: l.data, offset: valueOffset, length: bytesRem, count: count}
	case HrTime:
		v, err := l.dec.GetI64()
		if err != nil {
			return nil, err
		}
		pair.HrTime = v
	case NvList:
		if err := l.dec.Skip(bytesRem); err != nil {
			return nil, err
		}
		sub, err := fromPartial(l.data, valueOffset, bytesRem, l.encoding)
		if err != nil {
			return nil, err
		}
		pair.List = sub
	case NvListArray:
		if err := l.dec.Skip(bytesRem); err != nil {
			return nil, err
		}
		pair.ListArray = ListArray{data: l.data, offset: valueOffset, length: bytesRem, count: count, order: l.encoding}
	case BooleanValue:
		v, err := l.dec.GetBool()
		if err != nil {
			return nil, err
		}
		pair.Bool = v
	case Int8:
		v, err := l.dec.GetI8()
		if err != nil {
			return nil, err
		}
		pair.I8 = v
	case Uint8:
		v, err := l.dec.GetU8()
		if err != nil {
			return nil, err
		}
		pair.U8 = v
	case BooleanArray:
		if err := l.dec.Skip(arrayValueSize); err != nil {
			return nil, err
		}
		pair.BoolArray = newNumericArray(l.data, valueOffset, arrayValueSize, count,
			func(d *binaryfmt.XdrDecoder) (bool, error) { return d.GetBool() })
	case Int8Array:
		if err := l.dec.Skip(arrayValueSize); err != nil {
			return nil, err
		}
		pair.I8Array = newNumericArray(l.data, valueOffset, arrayValueSize, count,
			func(d *binaryfmt.XdrDecoder) (int8, error) { return d.GetI8() })
	case Uint8Array:
		if err := l.dec.Skip(arrayValueSize); err != nil {
			return nil, err
		}
		pair.U8Array = newNumericArray(l.data, valueOffset, arrayValueSize, count,
			func(d *binaryfmt.XdrDecoder) (uint8, error) { return d.GetU8() })
	case Double:
		v, err := l.dec.GetF64()
		if err != nil {
			return nil, err
		}
		pair.F64 = v
	}

	totalUsed := l.dec.Offset() - startingOffset
	if totalUsed != encodedSize {
		return nil, fmt.Errorf("nvlist: %w: encoded_size=%d used=%d", ErrInvalidEncodedSize, encodedSize, totalUsed)
	}

	return pair, nil
}

// Find resets the cursor and returns the first pair named name, or
// (nil, nil) if no such pair exists.
func (l *List) Find(name string) (*Pair, error) {
	l.Reset()
	for {
		p, err := l.NextPair()
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, nil
		}
		if p.Name == name {
			return p, nil
		}
	}
}
