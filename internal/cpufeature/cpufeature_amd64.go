//go:build amd64

package cpufeature

import "golang.org/x/sys/cpu"

func hasSSE2() bool     { return cpu.X86.HasSSE2 }
func hasSSSE3() bool    { return cpu.X86.HasSSSE3 }
func hasAVX2() bool     { return cpu.X86.HasAVX2 }
func hasAVX512F() bool  { return cpu.X86.HasAVX512F }
func hasAVX512BW() bool { return cpu.X86.HasAVX512BW }
