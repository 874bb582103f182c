package nvlist

import (
	"github.com/scigolib/zfsphys/binaryfmt"
)

// Array is a lazy, clamped view over one pair's array value region: nothing
// is decoded when a Pair is produced, only the [offset, offset+length) wire
// window and element count are recorded. Decode() materializes it in one
// pass; it may be called more than once, each call re-reading from the
// window's start.
type Array[T any] struct {
	data   []byte
	offset int
	length int
	count  int
	get    func(dec *binaryfmt.XdrDecoder) (T, error)
}

// Len returns the number of elements the array declares, without decoding.
func (a Array[T]) Len() int { return a.count }

// Decode reads every element of the array in wire order.
func (a Array[T]) Decode() ([]T, error) {
	if a.count == 0 {
		return nil, nil
	}
	dec, err := binaryfmt.NewXdrDecoderRange(a.data, a.offset, a.offset+a.length)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, a.count)
	for i := 0; i < a.count; i++ {
		v, err := a.get(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func newNumericArray[T any](data []byte, offset, length, count int, get func(*binaryfmt.XdrDecoder) (T, error)) Array[T] {
	return Array[T]{data: data, offset: offset, length: length, count: count, get: get}
}

// StrArray is the variable-width counterpart of Array: its wire window
// covers `count` consecutive XDR strings with no further framing between
// them.
type StrArray struct {
	data   []byte
	offset int
	length int
	count  int
}

func (a StrArray) Len() int { return a.count }

func (a StrArray) Decode() ([]string, error) {
	if a.count == 0 {
		return nil, nil
	}
	dec, err := binaryfmt.NewXdrDecoderRange(a.data, a.offset, a.offset+a.length)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, a.count)
	for i := 0; i < a.count; i++ {
		s, err := dec.GetString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ListArray is an array of nested NV lists. Each element is itself a
// complete list terminated by its own zero/zero sentinel pair, so elements
// are decoded one at a time, each consuming exactly as much of the window
// as its own pair stream needs.
type ListArray struct {
	data   []byte
	offset int
	length int
	count  int
	order  Encoding
}

func (a ListArray) Len() int { return a.count }

func (a ListArray) Decode() ([]*List, error) {
	if a.count == 0 {
		return nil, nil
	}
	out := make([]*List, 0, a.count)
	pos := a.offset
	end := a.offset + a.length
	for i := 0; i < a.count; i++ {
		if pos > end {
			return nil, ErrTruncated
		}
		sub, err := fromPartial(a.data, pos, end-pos, a.order)
		if err != nil {
			return nil, err
		}
		if err := sub.drain(); err != nil {
			return nil, err
		}
		consumed := sub.dec.Offset() - pos
		list, err := fromPartial(a.data, pos, consumed, a.order)
		if err != nil {
			return nil, err
		}
		out = append(out, list)
		pos += consumed
	}
	return out, nil
}
