package zap

import (
	"bytes"
	"errors"
	"fmt"
	"math/bits"

	"github.com/scigolib/zfsphys/binaryfmt"
)

// ErrChainTooShort is returned when a data chain ends before the declared
// name/value length has been consumed.
var ErrChainTooShort = errors.New("zap: data chunk chain ended before declared length")

// ErrEntryNotFound is returned by Leaf.Lookup when no chunk in the probed
// hash-table bucket matches both hash and name.
var ErrEntryNotFound = errors.New("zap: entry not found")

// Leaf is a fully decoded ZAP leaf block: its header, the u16 hash table
// that maps a hash bucket to a chunk index, and the chunk array itself.
type Leaf struct {
	Header    *LeafHeader
	HashTable []*uint16
	Chunks    []*LeafChunk
}

// DecodeLeaf decodes a complete leaf block of the given size: the header,
// its hash table, and every chunk.
func DecodeLeaf(dec *binaryfmt.Decoder, blockSize int) (*Leaf, error) {
	header, err := DecodeLeafHeader(dec)
	if err != nil {
		return nil, err
	}

	entries, chunks, err := GetEntriesAndChunksCounts(blockSize)
	if err != nil {
		return nil, err
	}

	hashTable := make([]*uint16, entries)
	for i := range hashTable {
		hashTable[i], err = decodeChainNext(dec)
		if err != nil {
			return nil, err
		}
	}

	chunkList := make([]*LeafChunk, chunks)
	for i := range chunkList {
		chunkList[i], err = DecodeLeafChunk(dec)
		if err != nil {
			return nil, err
		}
	}

	return &Leaf{Header: header, HashTable: hashTable, Chunks: chunkList}, nil
}

// EntrySlot computes the hash-table bucket index for hash, given the
// number of top bits already consumed by the pointer-table dispatch
// (hashBits) and the number of buckets in this leaf's hash table.
func EntrySlot(hash uint64, hashBits uint64, entriesCount int) int {
	shift := 64 - hashBits - uint64(bits.Len(uint(entriesCount-1)))
	return int((hash >> shift)) & (entriesCount - 1)
}

// chunkAt bounds-checks idx against l.Chunks, the recurring guard every
// chain walk below needs before indexing.
func (l *Leaf) chunkAt(idx uint16) (*LeafChunk, error) {
	if int(idx) >= len(l.Chunks) {
		return nil, fmt.Errorf("zap: %w: chunk index %d out of range", ErrChainTooShort, idx)
	}
	return l.Chunks[idx], nil
}

// Lookup walks the hash-table bucket for hash and returns the first entry
// whose hash and reconstructed name both match. hashBits is the number of
// top hash bits already consumed by the pointer-table dispatch that chose
// this leaf (MegaPointerTable.HashBits), not l.Header.HashPrefixLen.
func (l *Leaf) Lookup(hash uint64, hashBits uint64, name string) (*LeafChunkEntry, error) {
	slot := EntrySlot(hash, hashBits, len(l.HashTable))
	next := l.HashTable[slot]

	for next != nil {
		chunk, err := l.chunkAt(*next)
		if err != nil {
			return nil, err
		}
		entry := chunk.Entry
		if entry == nil {
			return nil, fmt.Errorf("zap: %w: hash table points at a non-entry chunk", ErrChainTooShort)
		}
		if entry.Hash == hash {
			entryName, err := l.Name(entry)
			if err != nil {
				return nil, err
			}
			if entryName == name {
				return entry, nil
			}
		}
		next = entry.Next
	}
	return nil, ErrEntryNotFound
}

// Name reconstructs an entry's key by walking its name-chunk data chain.
func (l *Leaf) Name(entry *LeafChunkEntry) (string, error) {
	raw, err := l.readChain(entry.NameChunk, int(entry.NameLength))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ValueBytes reconstructs an entry's raw value bytes by walking its
// value-chunk data chain. The caller interprets the bytes in
// ValueIntSize-byte units per ValueLength, as ZAP values have no inherent
// alignment within a chunk.
func (l *Leaf) ValueBytes(entry *LeafChunkEntry) ([]byte, error) {
	return l.readChain(entry.ValueChunk, int(entry.ValueLength)*int(entry.ValueIntSize))
}

// readChain concatenates data bytes across a LeafChunkData chain starting
// at startChunk until length bytes have been collected.
func (l *Leaf) readChain(startChunk uint16, length int) ([]byte, error) {
	var out bytes.Buffer
	next := &startChunk
	for out.Len() < length && next != nil {
		chunk, err := l.chunkAt(*next)
		if err != nil {
			return nil, err
		}
		if chunk.Data == nil {
			return nil, fmt.Errorf("zap: %w: chain points at a non-data chunk", ErrChainTooShort)
		}
		remaining := length - out.Len()
		take := len(chunk.Data.Data)
		if take > remaining {
			take = remaining
		}
		out.Write(chunk.Data.Data[:take])
		next = chunk.Data.Next
	}
	if out.Len() < length {
		return nil, ErrChainTooShort
	}
	return out.Bytes(), nil
}
