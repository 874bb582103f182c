// Package cpufeature exposes the runtime half of Fletcher implementation
// selection (§4.2, §5, §9 of the format spec): "is_supported() combines
// both" the build-time feature gate (a Go build tag restricting which
// files are even compiled in) and the CPU's actual capability, probed via
// golang.org/x/sys/cpu and cached by that package for concurrent callers.
package cpufeature

// HasSSE2 reports whether the host CPU supports SSE2.
func HasSSE2() bool { return hasSSE2() }

// HasSSSE3 reports whether the host CPU supports SSSE3.
func HasSSSE3() bool { return hasSSSE3() }

// HasAVX2 reports whether the host CPU supports AVX2.
func HasAVX2() bool { return hasAVX2() }

// HasAVX512F reports whether the host CPU supports AVX512F.
func HasAVX512F() bool { return hasAVX512F() }

// HasAVX512BW reports whether the host CPU supports AVX512BW.
func HasAVX512BW() bool { return hasAVX512BW() }
