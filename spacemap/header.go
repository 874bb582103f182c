package spacemap

import "github.com/scigolib/zfsphys/binaryfmt"

// HistogramBuckets is the number of free-region histogram buckets carried
// by a Header's optional extension.
const HistogramBuckets = 32

// Header is the space map's bonus-buffer record: its own object number,
// the byte length of the entry log, bytes currently allocated, and an
// optional free-region size histogram.
type Header struct {
	// Obj is the dnode object number of the space map itself. Deprecated by
	// newer ZFS but still populated for backward compatibility.
	Obj uint64
	// LengthBytes is the byte length of the entry log.
	LengthBytes uint64
	// AllocatedBytes is the number of bytes currently allocated from the map.
	AllocatedBytes uint64
	// Histogram counts free regions by size bucket; nil if the record was
	// encoded without the histogram extension.
	Histogram *[HistogramBuckets]uint64
}

const (
	// HeaderSizeNoHistogram is the encoded size without the histogram
	// extension.
	HeaderSizeNoHistogram = 24
	// HeaderSizeHistogram is the encoded size with the histogram extension.
	HeaderSizeHistogram = 320

	histogramPadding = 40
)

// DecodeHeader decodes a Header. The histogram extension is present if dec
// has any bytes remaining after the three leading fields.
func DecodeHeader(dec *binaryfmt.Decoder) (*Header, error) {
	obj, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	if obj == 0 {
		return nil, ErrMissingObject
	}

	lengthBytes, err := dec.GetU64()
	if err != nil {
		return nil, err
	}
	allocatedBytes, err := dec.GetU64()
	if err != nil {
		return nil, err
	}

	h := &Header{Obj: obj, LengthBytes: lengthBytes, AllocatedBytes: allocatedBytes}
	if dec.Len() == 0 {
		return h, nil
	}

	if err := dec.SkipZeros(histogramPadding); err != nil {
		return nil, err
	}
	var hist [HistogramBuckets]uint64
	for i := range hist {
		if hist[i], err = dec.GetU64(); err != nil {
			return nil, err
		}
	}
	h.Histogram = &hist
	return h, nil
}

// Encode appends h's wire form to enc.
func (h *Header) Encode(enc *binaryfmt.Encoder) error {
	if h.Obj == 0 {
		return ErrMissingObject
	}
	if err := enc.PutU64(h.Obj); err != nil {
		return err
	}
	if err := enc.PutU64(h.LengthBytes); err != nil {
		return err
	}
	if err := enc.PutU64(h.AllocatedBytes); err != nil {
		return err
	}
	if h.Histogram == nil {
		return nil
	}
	if err := enc.PutZeros(histogramPadding); err != nil {
		return err
	}
	for _, v := range h.Histogram {
		if err := enc.PutU64(v); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the header's encoded byte size: HeaderSizeNoHistogram or
// HeaderSizeHistogram depending on whether the histogram is present.
func (h *Header) Size() int {
	if h.Histogram == nil {
		return HeaderSizeNoHistogram
	}
	return HeaderSizeHistogram
}
