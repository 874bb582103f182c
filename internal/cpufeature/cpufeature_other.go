//go:build !amd64

package cpufeature

// On non-amd64 architectures only the generic and superscalar Fletcher
// implementations are available, matching the spec's "first three are
// always available" rule; no SIMD back-end ever reports supported here.
func hasSSE2() bool     { return false }
func hasSSSE3() bool    { return false }
func hasAVX2() bool     { return false }
func hasAVX512F() bool  { return false }
func hasAVX512BW() bool { return false }
