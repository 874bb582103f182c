package zap

import (
	"fmt"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// LeafChunkSize is the fixed byte size of every leaf chunk, whichever of
// the three kinds it holds.
const LeafChunkSize = 24

const (
	leafChunkTypeData  uint8 = 251
	leafChunkTypeEntry uint8 = 252
	leafChunkTypeFree  uint8 = 253

	leafChunkDataSize = 21
)

// LeafChunkData holds one link of a name or value byte chain: up to
// leafChunkDataSize raw bytes, plus the index of the next chunk in the
// chain (nil at EOL).
type LeafChunkData struct {
	Data [leafChunkDataSize]byte
	Next *uint16
}

func decodeLeafChunkData(dec *binaryfmt.Decoder) (*LeafChunkData, error) {
	chunkType, err := dec.GetU8()
	if err != nil {
		return nil, err
	}
	if chunkType != leafChunkTypeData {
		return nil, fmt.Errorf("zap: %w: %d", ErrUnknownChunkType, chunkType)
	}
	raw, err := dec.GetBytes(leafChunkDataSize)
	if err != nil {
		return nil, err
	}
	next, err := decodeChainNext(dec)
	if err != nil {
		return nil, err
	}
	d := &LeafChunkData{Next: next}
	copy(d.Data[:], raw)
	return d, nil
}

func (d *LeafChunkData) encode(enc *binaryfmt.Encoder) error {
	if err := enc.PutU8(leafChunkTypeData); err != nil {
		return err
	}
	if err := enc.PutBytes(d.Data[:]); err != nil {
		return err
	}
	return encodeChainNext(enc, d.Next)
}

// LeafChunkEntry is a key-value directory entry: its hash and name/value
// locations within the leaf's chunk chain. value_int_size/value_length
// describe the value as an array of fixed-width integers, not raw bytes,
// so a u64 value chain carries value_int_size=8, value_length=1.
type LeafChunkEntry struct {
	Hash          uint64
	CD            uint32
	NameChunk     uint16
	NameLength    uint16
	ValueChunk    uint16
	ValueLength   uint16
	ValueIntSize  uint8
	Next          *uint16
}

func decodeLeafChunkEntry(dec *binaryfmt.Decoder) (*LeafChunkEntry, error) {
	chunkType, err := dec.GetU8()
	if err != nil {
		return nil, err
	}
	if chunkType != leafChunkTypeEntry {
		return nil, fmt.Errorf("zap: %w: %d", ErrUnknownChunkType, chunkType)
	}

	e := &LeafChunkEntry{}
	if e.ValueIntSize, err = dec.GetU8(); err != nil {
		return nil, err
	}
	if e.Next, err = decodeChainNext(dec); err != nil {
		return nil, err
	}
	if e.NameChunk, err = dec.GetU16(); err != nil {
		return nil, err
	}
	if e.NameLength, err = dec.GetU16(); err != nil {
		return nil, err
	}
	if e.ValueChunk, err = dec.GetU16(); err != nil {
		return nil, err
	}
	if e.ValueLength, err = dec.GetU16(); err != nil {
		return nil, err
	}
	if e.CD, err = dec.GetU32(); err != nil {
		return nil, err
	}
	if e.Hash, err = dec.GetU64(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *LeafChunkEntry) encode(enc *binaryfmt.Encoder) error {
	if err := enc.PutU8(leafChunkTypeEntry); err != nil {
		return err
	}
	if err := enc.PutU8(e.ValueIntSize); err != nil {
		return err
	}
	if err := encodeChainNext(enc, e.Next); err != nil {
		return err
	}
	if err := enc.PutU16(e.NameChunk); err != nil {
		return err
	}
	if err := enc.PutU16(e.NameLength); err != nil {
		return err
	}
	if err := enc.PutU16(e.ValueChunk); err != nil {
		return err
	}
	if err := enc.PutU16(e.ValueLength); err != nil {
		return err
	}
	if err := enc.PutU32(e.CD); err != nil {
		return err
	}
	return enc.PutU64(e.Hash)
}

// LeafChunkFree is an unused chunk on the leaf's free list.
type LeafChunkFree struct {
	Next *uint16
}

func decodeLeafChunkFree(dec *binaryfmt.Decoder) (*LeafChunkFree, error) {
	chunkType, err := dec.GetU8()
	if err != nil {
		return nil, err
	}
	if chunkType != leafChunkTypeFree {
		return nil, fmt.Errorf("zap: %w: %d", ErrUnknownChunkType, chunkType)
	}
	// Matching the reference: the padding bytes carry no defined meaning
	// and are not validated as zero on decode.
	if err := dec.Skip(leafChunkDataSize); err != nil {
		return nil, err
	}
	next, err := decodeChainNext(dec)
	if err != nil {
		return nil, err
	}
	return &LeafChunkFree{Next: next}, nil
}

func (f *LeafChunkFree) encode(enc *binaryfmt.Encoder) error {
	if err := enc.PutU8(leafChunkTypeFree); err != nil {
		return err
	}
	if err := enc.PutZeros(leafChunkDataSize); err != nil {
		return err
	}
	return encodeChainNext(enc, f.Next)
}

func decodeChainNext(dec *binaryfmt.Decoder) (*uint16, error) {
	raw, err := dec.GetU16()
	if err != nil {
		return nil, err
	}
	if raw == leafEOL {
		return nil, nil
	}
	v := raw
	return &v, nil
}

func encodeChainNext(enc *binaryfmt.Encoder, next *uint16) error {
	v := leafEOL
	if next != nil {
		v = *next
	}
	return enc.PutU16(v)
}

// LeafChunk is the tagged union of the three chunk kinds, dispatched on
// the chunk's leading type byte.
type LeafChunk struct {
	Data  *LeafChunkData
	Entry *LeafChunkEntry
	Free  *LeafChunkFree
}

// DecodeLeafChunk peeks the chunk's type byte and decodes the matching
// variant, rewinding dec to the chunk's start first.
func DecodeLeafChunk(dec *binaryfmt.Decoder) (*LeafChunk, error) {
	chunkType, err := dec.GetU8()
	if err != nil {
		return nil, err
	}
	if err := dec.Rewind(1); err != nil {
		return nil, err
	}

	switch chunkType {
	case leafChunkTypeData:
		d, err := decodeLeafChunkData(dec)
		if err != nil {
			return nil, err
		}
		return &LeafChunk{Data: d}, nil
	case leafChunkTypeEntry:
		e, err := decodeLeafChunkEntry(dec)
		if err != nil {
			return nil, err
		}
		return &LeafChunk{Entry: e}, nil
	case leafChunkTypeFree:
		f, err := decodeLeafChunkFree(dec)
		if err != nil {
			return nil, err
		}
		return &LeafChunk{Free: f}, nil
	default:
		return nil, fmt.Errorf("zap: %w: %d", ErrUnknownChunkType, chunkType)
	}
}

// Encode appends c's wire form to enc.
func (c *LeafChunk) Encode(enc *binaryfmt.Encoder) error {
	switch {
	case c.Data != nil:
		return c.Data.encode(enc)
	case c.Entry != nil:
		return c.Entry.encode(enc)
	case c.Free != nil:
		return c.Free.encode(enc)
	default:
		return fmt.Errorf("zap: %w: chunk has no variant set", ErrUnknownChunkType)
	}
}
