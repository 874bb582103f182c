// Package binaryfmt implements the bounded, cursor-driven binary and XDR
// codecs used to decode and encode ZFS on-disk records. All three flavors
// (big-endian, little-endian, XDR) share one cursor discipline: a read or
// write that succeeds advances the offset by exactly the bytes consumed,
// and a single primitive read or write that fails its bounds check leaves
// the offset untouched. Reads that reject a value after reading it
// (invalid boolean, invalid UTF-8, out-of-range widened integer, non-zero
// XDR padding) and composite reads or writes (XDR hypers, length-prefixed
// arrays) can fail with the offset already past the bytes they consumed.
package binaryfmt

import (
	"fmt"

	"github.com/scigolib/zfsphys/internal/utils"
)

// ErrEndOfInput is returned when a get would read past the cursor's bound.
var ErrEndOfInput = fmt.Errorf("binaryfmt: end of input")

// ErrInvalidClamp is returned when a caller-supplied sub-region does not
// fit within the cursor's own bounds.
var ErrInvalidClamp = fmt.Errorf("binaryfmt: invalid clamp")

// ErrNonZeroPadding is returned by SkipZeros when a skipped byte is non-zero.
var ErrNonZeroPadding = fmt.Errorf("binaryfmt: non-zero padding")

// ErrInvalidBoolean is returned when a decoded boolean value is neither 0 nor 1.
var ErrInvalidBoolean = fmt.Errorf("binaryfmt: invalid boolean encoding")

// ErrInvalidUTF8 is returned when a decoded string is not valid UTF-8.
var ErrInvalidUTF8 = fmt.Errorf("binaryfmt: invalid utf-8")

// ErrIntegerConversion is returned when a widened or narrowed integer does
// not fit in the target width.
var ErrIntegerConversion = fmt.Errorf("binaryfmt: integer width conversion")

// ErrAlignment is returned when an XDR rewind/seek/skip offset is not a
// multiple of 4.
var ErrAlignment = fmt.Errorf("binaryfmt: alignment error")

// ErrRewindPastStart is returned when Rewind would move offset before min.
var ErrRewindPastStart = fmt.Errorf("binaryfmt: rewind past start")

// ErrSeekOutOfRange is returned when Seek targets a position outside [min, max].
var ErrSeekOutOfRange = fmt.Errorf("binaryfmt: seek out of range")

// endOfInputError annotates ErrEndOfInput with the offset/capacity/count
// that triggered it, matching the spec's (offset, capacity, count) shape.
func endOfInputError(offset, capacity, count int) error {
	return utils.WrapError(
		fmt.Sprintf("end of input: offset=%d capacity=%d count=%d", offset, capacity, count),
		ErrEndOfInput,
	)
}

// invalidUTF8Error annotates ErrInvalidUTF8 with the byte offset and length
// of the offending string.
func invalidUTF8Error(offset, length int) error {
	return utils.WrapError(
		fmt.Sprintf("invalid utf-8 at offset=%d length=%d", offset, length),
		ErrInvalidUTF8,
	)
}
