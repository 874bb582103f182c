// Package main provides zfsdump, a command-line utility that decodes and
// prints the uberblock array from a ZFS vdev label region, and optionally
// a ZAP object or NV list found at a caller-supplied byte offset within
// the same region.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/scigolib/zfsphys/binaryfmt"
	"github.com/scigolib/zfsphys/nvlist"
	"github.com/scigolib/zfsphys/uberblock"
	"github.com/scigolib/zfsphys/zap"
)

// labelSize is the byte size of one vdev label's uberblock array region.
const labelSize = 128 * 1024

func main() {
	zapOffset := flag.Int64("zap", -1, "decode and print a ZAP header at this byte offset")
	nvlistOffset := flag.Int64("nvlist", -1, "decode and print an NV list at this byte offset")
	verbose := flag.Bool("v", false, "emit diagnostic logging to stderr")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: zfsdump [flags] <label-region-file>")
		fmt.Println("Flags:")
		flag.PrintDefaults()
		return
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}
	if len(data) < 2*labelSize {
		log.Fatalf("File too small: want at least %d bytes, got %d", 2*labelSize, len(data))
	}

	best, bestOffset := scanUberblocks(data, logger)
	if best == nil {
		fmt.Println("No valid uberblock found in either label copy.")
	} else {
		fmt.Printf("Winning uberblock at byte offset 0x%x:\n", bestOffset)
		printUberblock(best)
	}

	if *zapOffset >= 0 {
		dumpZap(data, *zapOffset)
	}
	if *nvlistOffset >= 0 {
		dumpNvlist(data, *nvlistOffset)
	}
}

// scanUberblocks decodes every non-empty slot across both 128 KiB label
// copies at every power-of-two slot size between uberblock.MinShift and
// uberblock.MaxShift, returning the slot with the highest (Txg, Timestamp)
// and the file offset it was found at.
func scanUberblocks(data []byte, logger *slog.Logger) (*uberblock.UberBlock, int64) {
	var best *uberblock.UberBlock
	var bestOffset int64

	for copyIdx := 0; copyIdx < 2; copyIdx++ {
		region := data[copyIdx*labelSize : (copyIdx+1)*labelSize]
		for shift := uint32(uberblock.MinShift); shift <= uberblock.MaxShift; shift++ {
			slotSize := 1 << shift
			for start := 0; start+slotSize <= labelSize; start += slotSize {
				slot := region[start : start+slotSize]
				offset := uint64(start)
				ub, err := uberblock.FromBytesWithOptions(slot, offset, binaryfmt.DecodeOptions{Logger: logger})
				if err != nil || ub == nil {
					continue
				}
				if best == nil || ub.Txg > best.Txg || (ub.Txg == best.Txg && ub.Timestamp > best.Timestamp) {
					best = ub
					bestOffset = int64(copyIdx*labelSize + start)
				}
			}
		}
	}
	return best, bestOffset
}

func derefU16(p *uint16) any {
	if p == nil {
		return "none"
	}
	return *p
}

func derefU32(p *uint32) any {
	if p == nil {
		return "none"
	}
	return *p
}

func printUberblock(u *uberblock.UberBlock) {
	fmt.Printf("  txg:              %d\n", u.Txg)
	fmt.Printf("  guid_sum:         %#x\n", u.GuidSum)
	fmt.Printf("  timestamp:        %d\n", u.Timestamp)
	fmt.Printf("  version:          %d\n", u.Version)
	fmt.Printf("  checkpoint_txg:   %d\n", u.CheckpointTxg)
	if u.SoftwareVersion != nil {
		fmt.Printf("  software_version: %d\n", *u.SoftwareVersion)
	}
	if u.Mmp != nil {
		fmt.Printf("  mmp:              delay=%d seq=%v write_interval=%v fail_intervals=%v\n",
			u.Mmp.Delay, derefU16(u.Mmp.Sequence), derefU32(u.Mmp.WriteInterval), derefU16(u.Mmp.FailIntervals))
	}
	fmt.Printf("  rootbp:           %+v\n", u.Ptr)
}

func dumpZap(data []byte, offset int64) {
	if offset < 0 || offset >= int64(len(data)) {
		log.Printf("zap offset out of range: %#x", offset)
		return
	}
	dec := binaryfmt.NewDecoder(data[offset:], binary.BigEndian)
	header, err := zap.DecodeHeader(dec)
	if err != nil {
		log.Printf("Failed to decode ZAP header at %#x: %v", offset, err)
		return
	}
	fmt.Printf("ZAP header at %#x:\n", offset)
	switch {
	case header.Micro != nil:
		fmt.Printf("  kind: micro, salt=%#x case_norm=%v unicode_norm=%v\n",
			header.Micro.Salt, header.Micro.CaseNormalization, header.Micro.UnicodeNormalization)
	case header.Mega != nil:
		fmt.Printf("  kind: mega, leafs=%d entries=%d hash_bits=%d salt=%#x\n",
			header.Mega.NumberOfLeafs, header.Mega.NumberOfEntries, header.Mega.Table.HashBits, header.Mega.Salt)
	}
}

func dumpNvlist(data []byte, offset int64) {
	if offset < 0 || offset >= int64(len(data)) {
		log.Printf("nvlist offset out of range: %#x", offset)
		return
	}
	list, err := nvlist.FromBytes(data[offset:])
	if err != nil {
		log.Printf("Failed to decode NV list at %#x: %v", offset, err)
		return
	}
	fmt.Printf("NV list at %#x (encoding=%v endian=%v unique=%v):\n",
		offset, list.Encoding(), list.Endian(), list.Unique())
	for {
		pair, err := list.NextPair()
		if err != nil {
			log.Printf("Failed to decode pair: %v", err)
			return
		}
		if pair == nil {
			return
		}
		fmt.Printf("  %s (%v) = %s\n", pair.Name, pair.Type, formatPairValue(pair))
	}
}

// formatPairValue renders the field of pair matching its Type; scalar
// cases print the value directly, array and nested-list cases print a
// summary since their full contents can be large.
func formatPairValue(pair *nvlist.Pair) string {
	switch pair.Type {
	case nvlist.Boolean:
		return "true"
	case nvlist.BooleanValue:
		return fmt.Sprintf("%v", pair.Bool)
	case nvlist.Byte:
		return fmt.Sprintf("%d", pair.Byte)
	case nvlist.Uint8:
		return fmt.Sprintf("%d", pair.U8)
	case nvlist.Int8:
		return fmt.Sprintf("%d", pair.I8)
	case nvlist.Int16:
		return fmt.Sprintf("%d", pair.I16)
	case nvlist.Uint16:
		return fmt.Sprintf("%d", pair.U16)
	case nvlist.Int32:
		return fmt.Sprintf("%d", pair.I32)
	case nvlist.Uint32:
		return fmt.Sprintf("%d", pair.U32)
	case nvlist.Int64:
		return fmt.Sprintf("%d", pair.I64)
	case nvlist.Uint64:
		return fmt.Sprintf("%d", pair.U64)
	case nvlist.Double:
		return fmt.Sprintf("%g", pair.F64)
	case nvlist.HrTime:
		return fmt.Sprintf("%d", pair.HrTime)
	case nvlist.String:
		return fmt.Sprintf("%q", pair.Str)
	case nvlist.NvList:
		return "<nested list>"
	default:
		return "<array or unsupported type>"
	}
}
