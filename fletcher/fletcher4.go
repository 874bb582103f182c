package fletcher

import "encoding/binary"

const (
	fletcher4BlockSize    = 4
	fletcher4U64Count     = 4
	fletcher4MaxSIMDWidth = 8
)

// Fletcher4 computes the Fletcher-4 checksum (four 64-bit running sums
// over 32-bit big- or little-endian words). The zero value is not
// usable; construct with NewFletcher4.
type Fletcher4 struct {
	order          binary.ByteOrder
	impl           Implementation
	lanes          int
	blockSize      int
	bufferFill     int
	buffer         [fletcher4BlockSize * fletcher4MaxSIMDWidth]byte
	state          [fletcher4U64Count * fletcher4MaxSIMDWidth]uint64
}

// NewFletcher4 constructs a Fletcher4 hasher reading data in the given
// byte order using impl. It returns ErrUnsupported if impl is not
// available on this host.
func NewFletcher4(order binary.ByteOrder, impl Implementation) (*Fletcher4, error) {
	if !impl.IsSupported() {
		return nil, ErrUnsupported
	}
	lanes := impl.lanes()
	return &Fletcher4{
		order:     order,
		impl:      impl,
		lanes:     lanes,
		blockSize: fletcher4BlockSize * lanes,
	}, nil
}

// Reset clears all rolling state and the partial-block buffer.
func (f *Fletcher4) Reset() {
	f.bufferFill = 0
	for i := range f.state {
		f.state[i] = 0
	}
}

// Update feeds data into the running checksum. Bytes that do not fill a
// whole block are buffered and carried into the next call.
func (f *Fletcher4) Update(data []byte) {
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

// updateBlocks processes data in chunks of f.blockSize bytes using the
// lane-parallel loop shared by every implementation tier: each lane i
// tracks its own a/b/c/d accumulators, decoded independently from the
// i-th 4-byte word of the chunk (§4.2, "Fletcher state").
func (f *Fletcher4) updateBlocks(data []byte) {
	l := f.lanes
	order := f.order
	a := f.state[0:l]
	b := f.state[l : 2*l]
	c := f.state[2*l : 3*l]
	d := f.state[3*l : 4*l]

	for off := 0; off < len(data); off += f.blockSize {
		chunk := data[off : off+f.blockSize]
		for i := 0; i < l; i++ {
			v := decodeU32(order, chunk[i*4:i*4+4])
			a[i] += v
		}
		for i := 0; i < l; i++ {
			b[i] += a[i]
		}
		for i := 0; i < l; i++ {
			c[i] += b[i]
		}
		for i := 0; i < l; i++ {
			d[i] += c[i]
		}
	}
}

// Finalize collapses the (possibly lane-parallel) running state back to
// the canonical four-word digest and returns it. Whole 4-byte blocks left
// in the partial-block buffer are then folded in with the generic update;
// a trailing remainder shorter than 4 bytes is dropped, not padded.
func (f *Fletcher4) Finalize() [4]uint64 {
	var digest [4]uint64
	switch f.lanes {
	case 2:
		digest = finishF4Dual(f.state[0:8])
	case 4:
		digest = finishF4Quad(f.state[0:16])
	case 8:
		digest = finishF4Octo(f.state[0:32])
	default:
		digest = finishF4Single(f.state[0:4])
	}
	for off := 0; off+fletcher4BlockSize <= f.bufferFill; off += fletcher4BlockSize {
		digest[0] += decodeU32(f.order, f.buffer[off:off+fletcher4BlockSize])
		digest[1] += digest[0]
		digest[2] += digest[1]
		digest[3] += digest[2]
	}
	return digest
}

// Hash resets the hasher, consumes data in one call, and returns the
// finalized digest.
func (f *Fletcher4) Hash(data []byte) [4]uint64 {
	f.Reset()
	f.Update(data)
	return f.Finalize()
}

func finishF4Single(state []uint64) [4]uint64 {
	return [4]uint64{state[0], state[1], state[2], state[3]}
}

func finishF4Dual(state []uint64) [4]uint64 {
	a := state[0:2]
	b := state[2:4]
	c := state[4:6]
	d := state[6:8]

	ra := a[0] + a[1]
	rb := (b[0]+b[1])*2 - a[1]
	rc := (c[0]+c[1])*4 - (b[0] + b[1]*3)
	rd := (d[0]+d[1])*8 - (c[0]*4 + c[1]*8) + b[1]

	return [4]uint64{ra, rb, rc, rd}
}

func sumAndMul(v []uint64, m uint64) uint64 {
	var r uint64
	for _, x := range v {
		r += x
	}
	return r * m
}

func mulAndSum(v []uint64, m []uint16) uint64 {
	var r uint64
	for i := range v {
		r += v[i] * uint64(m[i])
	}
	return r
}

func finishF4Quad(state []uint64) [4]uint64 {
	a := state[0:4]
	b := state[4:8]
	c := state[8:12]
	d := state[12:16]

	ra := sumAndMul(a, 1)
	rb := sumAndMul(b, 4) - (a[1] + a[2]*2 + a[3]*3)

	rcMb := []uint16{6, 10, 14, 18}
	rc := sumAndMul(c, 16) - mulAndSum(b, rcMb) + a[2] + a[3]*3

	rdMc := []uint16{48, 64, 80, 96}
	rdMb := []uint16{4, 10, 20, 34}
	rd := sumAndMul(d, 64) - mulAndSum(c, rdMc) + mulAndSum(b, rdMb) - a[3]

	return [4]uint64{ra, rb, rc, rd}
}

func finishF4Octo(state []uint64) [4]uint64 {
	a := state[0:8]
	b := state[8:16]
	c := state[16:24]
	d := state[24:32]

	ra := sumAndMul(a, 1)

	rbMa := []uint16{0, 1, 2, 3, 4, 5, 6, 7}
	rb := sumAndMul(b, 8) - mulAndSum(a, rbMa)

	rcMb := []uint16{28, 36, 44, 52, 60, 68, 76, 84}
	rcMa := []uint16{0, 0, 1, 3, 6, 10, 15, 21}
	rc := sumAndMul(c, 64) - mulAndSum(b, rcMb) + mulAndSum(a, rcMa)

	rdMc := []uint16{448, 512, 576, 640, 704, 768, 832, 896}
	rdMb := []uint16{56, 84, 120, 164, 216, 276, 344, 420}
	rdMa := []uint16{0, 0, 0, 1, 4, 10, 20, 35}
	rd := sumAndMul(d, 512) - mulAndSum(c, rdMc) + mulAndSum(b, rdMb) - mulAndSum(a, rdMa)

	return [4]uint64{ra, rb, rc, rd}
}
