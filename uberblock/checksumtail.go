package uberblock

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/scigolib/zfsphys/binaryfmt"
	"github.com/scigolib/zfsphys/internal/utils"
)

// ChecksumTailSize is the byte size of the trailing checksum record every
// uberblock (and vdev label region) carries.
const ChecksumTailSize = 40

// checksumTailMagic is the well-known ZFS block-tail magic, read
// independently of the record's own byte order: its presence (in either
// orientation) is part of how a decoder settles on the record's order in
// the wider label format. This codec does not need that disambiguation
// (the uberblock's own leading magic already does it), so the constant
// exists only to lay out the tail's shape faithfully.
const checksumTailMagic uint64 = 0x0210da7ab10c7a11

// ChecksumTail is the 40-byte trailer ([`zbt_magic`, `zbt_cksum`] in
// upstream terms): an 8-byte magic followed by a 32-byte (4x64) digest.
// No file in the retrieval pack defines this record or the label checksum
// procedure that fills it in (neither appears anywhere in the pack); both
// are reconstructed here from the well-documented ZFS on-disk format,
// using SHA-256 folded into four 64-bit words as the digest function,
// since the uberblock decode path this codec is grounded on plumbs a
// caller-supplied Sha256 state through exactly this call.
type ChecksumTail struct {
	Magic    uint64
	Checksum [4]uint64
}

// labelChecksum computes the tweaked SHA-256 digest over buf[:len(buf)-40]
// using offset as a tweak (hashed first, in order's byte order), and
// returns it folded into four u64 words in the same order. The tweak and
// body are staged into one pooled buffer so the hash sees a single write,
// rather than two separate Write calls into sha256's own internal buffer.
func labelChecksum(buf []byte, offset uint64, order binary.ByteOrder) [4]uint64 {
	staging := utils.GetBuffer(8 + len(buf))
	defer utils.ReleaseBuffer(staging)

	order.PutUint64(staging[:8], offset)
	copy(staging[8:], buf)

	h := sha256.New()
	h.Write(staging)
	sum := h.Sum(nil)

	var out [4]uint64
	for i := range out {
		out[i] = order.Uint64(sum[i*8 : i*8+8])
	}
	return out
}

// LabelVerify recomputes the tweaked checksum over bytes[:len(bytes)-40]
// and compares it against the trailing ChecksumTail. bytes must be at
// least ChecksumTailSize long.
func LabelVerify(bytes []byte, offset uint64, order binary.ByteOrder) bool {
	if len(bytes) < ChecksumTailSize {
		return false
	}
	body := bytes[:len(bytes)-ChecksumTailSize]
	want := labelChecksum(body, offset, order)

	dec := binaryfmt.NewDecoder(bytes[len(bytes)-ChecksumTailSize:], order)
	if _, err := dec.GetU64(); err != nil { // magic, unchecked here
		return false
	}
	var got [4]uint64
	for i := range got {
		v, err := dec.GetU64()
		if err != nil {
			return false
		}
		got[i] = v
	}
	return got == want
}

// LabelChecksum computes the tweaked checksum over bytes[:len(bytes)-40]
// and writes the resulting ChecksumTail into the trailing 40 bytes.
func LabelChecksum(bytes []byte, offset uint64, order binary.ByteOrder) error {
	if len(bytes) < ChecksumTailSize {
		return ErrBufferTooSmall
	}
	body := bytes[:len(bytes)-ChecksumTailSize]
	sum := labelChecksum(body, offset, order)

	enc := binaryfmt.NewEncoder(bytes[len(bytes)-ChecksumTailSize:], order)
	if err := enc.PutU64(checksumTailMagic); err != nil {
		return err
	}
	for _, v := range sum {
		if err := enc.PutU64(v); err != nil {
			return err
		}
	}
	return nil
}
