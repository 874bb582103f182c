// Package fletcher implements the Fletcher-2 and Fletcher-4 rolling
// checksums (§4.2): block-parallel hashes selected at construction time
// from a generic reference implementation, two superscalar lane-parallel
// variants, and (on amd64, gated by CPU feature probing through
// internal/cpufeature) wider SIMD-width tiers that share the same
// closed-form finalize weights as their superscalar counterparts.
//
// Neither digest keeps the caller's buffer alive past Update: each call
// copies only the tail that does not fill a whole block.
package fletcher

import (
	"encoding/binary"
	"errors"

	"github.com/scigolib/zfsphys/internal/cpufeature"
)

// Implementation selects the block-parallel update strategy. All values
// compute byte-identical digests for the same input; they differ only in
// how many lanes of the running checksum are updated per loop iteration.
type Implementation int

const (
	Generic Implementation = iota
	SuperScalar2
	SuperScalar4
	SSE2
	SSSE3
	AVX2
	AVX512F
	AVX512BW
)

func (i Implementation) String() string {
	switch i {
	case Generic:
		return "generic"
	case SuperScalar2:
		return "superscalar2"
	case SuperScalar4:
		return "superscalar4"
	case SSE2:
		return "sse2"
	case SSSE3:
		return "ssse3"
	case AVX2:
		return "avx2"
	case AVX512F:
		return "avx512f"
	case AVX512BW:
		return "avx512bw"
	default:
		return "unknown"
	}
}

// lanes reports the parallel stream width of an implementation. Widths
// above 4 (AVX512F/AVX512BW) are only ever reached on amd64 builds where
// the host CPU advertises the matching feature.
func (i Implementation) lanes() int {
	switch i {
	case Generic:
		return 1
	case SuperScalar2, SSE2, SSSE3:
		return 2
	case SuperScalar4, AVX2:
		return 4
	case AVX512F, AVX512BW:
		return 8
	default:
		return 1
	}
}

// IsSupported reports whether the implementation can run on this host.
// Generic and the two superscalar tiers are pure integer arithmetic and
// always available; the remaining tiers require the matching amd64
// feature, probed once via internal/cpufeature and cached by that
// package for concurrent callers.
func (i Implementation) IsSupported() bool {
	switch i {
	case Generic, SuperScalar2, SuperScalar4:
		return true
	case SSE2:
		return cpufeature.HasSSE2()
	case SSSE3:
		return cpufeature.HasSSSE3()
	case AVX2:
		return cpufeature.HasAVX2()
	case AVX512F:
		return cpufeature.HasAVX512F()
	case AVX512BW:
		return cpufeature.HasAVX512BW()
	default:
		return false
	}
}

// BestAvailable returns the widest implementation of digest supported by
// the host, preferring AVX512BW > AVX512F > AVX2 > SSSE3 > SSE2 >
// SuperScalar4 > SuperScalar2 > Generic.
func BestAvailable() Implementation {
	for _, i := range []Implementation{AVX512BW, AVX512F, AVX2, SSSE3, SSE2, SuperScalar4, SuperScalar2} {
		if i.IsSupported() {
			return i
		}
	}
	return Generic
}

// ErrUnsupported is returned by New when the requested implementation is
// not available on this host or build.
var ErrUnsupported = errors.New("fletcher: implementation not supported on this host")

func decodeU32(order binary.ByteOrder, b []byte) uint64 {
	return uint64(order.Uint32(b))
}

func decodeU64(order binary.ByteOrder, b []byte) uint64 {
	return order.Uint64(b)
}
