package fletcher

import "encoding/binary"

const (
	fletcher2BlockSize    = 16
	fletcher2U64Count     = 4
	fletcher2MaxSIMDWidth = 4
)

// Fletcher2 computes the Fletcher-2 checksum (four 64-bit running sums
// over pairs of 64-bit big- or little-endian words, 16 bytes per block).
// The zero value is not usable; construct with NewFletcher2.
type Fletcher2 struct {
	order      binary.ByteOrder
	impl       Implementation
	lanes      int
	blockSize  int
	bufferFill int
	buffer     [fletcher2BlockSize * fletcher2MaxSIMDWidth]byte
	state      [fletcher2U64Count * fletcher2MaxSIMDWidth]uint64
}

// NewFletcher2 constructs a Fletcher2 hasher reading data in the given
// byte order using impl. It returns ErrUnsupported if impl is not
// available on this host. Fletcher-2 runs at most four lanes:
// AVX512F/AVX512BW fold back to the quad-stream finalize, same as
// SuperScalar4, matching the reference implementation's
// FLETCHER_2_MAX_SIMD_WIDTH.
func NewFletcher2(order binary.ByteOrder, impl Implementation) (*Fletcher2, error) {
	if !impl.IsSupported() {
		return nil, ErrUnsupported
	}
	lanes := f2Lanes(impl)
	return &Fletcher2{
		order:     order,
		impl:      impl,
		lanes:     lanes,
		blockSize: fletcher2BlockSize * lanes,
	}, nil
}

// f2Lanes maps an Implementation to its Fletcher-2 lane width. Unlike
// Fletcher-4, SSE2/SSSE3 finalize as a single stream and AVX512F/BW cap
// out at four lanes (quad-stream), per the reference dispatch table.
func f2Lanes(impl Implementation) int {
	switch impl {
	case Generic, SSE2, SSSE3:
		return 1
	case SuperScalar2, AVX2:
		return 2
	case SuperScalar4, AVX512F, AVX512BW:
		return 4
	default:
		return 1
	}
}

// Reset clears all rolling state and the partial-block buffer.
func (f *Fletcher2) Reset() {
	f.bufferFill = 0
	for i := range f.state {
		f.state[i] = 0
	}
}

// Update feeds data into the running checksum. Bytes that do not fill a
// whole block are buffered and carried into the next call.
func (f *Fletcher2) Update(data []byte) {
	if f.bufferFill > 0 {
		n := copy(f.buffer[f.bufferFill:f.blockSize], data)
		f.bufferFill += n
		data = data[n:]
		if f.bufferFill < f.blockSize {
			return
		}
		f.updateBlocks(f.buffer[:f.blockSize])
		f.bufferFill = 0
	}

	whole := (len(data) / f.blockSize) * f.blockSize
	if whole > 0 {
		f.updateBlocks(data[:whole])
	}
	rem := data[whole:]
	if len(rem) > 0 {
		f.bufferFill = copy(f.buffer[:], rem)
	}
}

// updateBlocks processes data in chunks of f.blockSize bytes. Each lane
// i reads one (v, w) pair of 64-bit words from its 16-byte slot of the
// chunk: a[i]+=v, b[i]+=w, c[i]+=a[i], d[i]+=b[i].
func (f *Fletcher2) updateBlocks(data []byte) {
	l := f.lanes
	order := f.order
	a := f.state[0:l]
	b := f.state[l : 2*l]
	c := f.state[2*l : 3*l]
	d := f.state[3*l : 4*l]

	for off := 0; off < len(data); off += f.blockSize {
		chunk := data[off : off+f.blockSize]
		for i := 0; i < l; i++ {
			v := decodeU64(order, chunk[i*16:i*16+8])
			w := decodeU64(order, chunk[i*16+8:i*16+16])
			a[i] += v
			b[i] += w
		}
		for i := 0; i < l; i++ {
			c[i] += a[i]
			d[i] += b[i]
		}
	}
}

// Finalize collapses the running state back to the canonical four-word
// digest. Whole 16-byte blocks left in the partial-block buffer are then
// folded in with the generic update; a trailing remainder shorter than 16
// bytes is not part of the digest.
func (f *Fletcher2) Finalize() [4]uint64 {
	var digest [4]uint64
	switch f.lanes {
	case 2:
		digest = finishF2Dual(f.state[0:8])
	case 4:
		digest = finishF2Quad(f.state[0:16])
	default:
		digest = finishF2Single(f.state[0:4])
	}
	for off := 0; off+fletcher2BlockSize <= f.bufferFill; off += fletcher2BlockSize {
		digest[0] += decodeU64(f.order, f.buffer[off:off+8])
		digest[1] += decodeU64(f.order, f.buffer[off+8:off+16])
		digest[2] += digest[0]
		digest[3] += digest[1]
	}
	return digest
}

// Hash resets the hasher, consumes data in one call, and returns the
// finalized digest.
func (f *Fletcher2) Hash(data []byte) [4]uint64 {
	f.Reset()
	f.Update(data)
	return f.Finalize()
}

func finishF2Single(state []uint64) [4]uint64 {
	return [4]uint64{state[0], state[1], state[2], state[3]}
}

// finishF2Dual and finishF2Quad operate on the grouped-by-accumulator
// layout produced by updateBlocks (a[0:l], b[l:2l], c[2l:3l], d[3l:4l]),
// not the reference implementation's interleaved-by-lane layout; the
// closed-form weights are identical either way since they only depend on
// which stream each word belongs to.
func finishF2Dual(state []uint64) [4]uint64 {
	a := state[0:2]
	b := state[2:4]
	c := state[4:6]
	d := state[6:8]

	ra := a[0] + a[1]
	rb := b[0] + b[1]
	rc := (c[0]+c[1])*2 - a[1]
	rd := (d[0]+d[1])*2 - b[1]

	return [4]uint64{ra, rb, rc, rd}
}

func finishF2Quad(state []uint64) [4]uint64 {
	a := state[0:4]
	b := state[4:8]
	c := state[8:12]
	d := state[12:16]

	ra := sumAndMul(a, 1)
	rb := sumAndMul(b, 1)
	rc := sumAndMul(c, 4) - (a[1] + a[2]*2 + a[3]*3)
	rd := sumAndMul(d, 4) - (b[1] + b[2]*2 + b[3]*3)

	return [4]uint64{ra, rb, rc, rd}
}
