package uberblock

import "fmt"

// SpaVersion is the SPA (storage pool allocator) on-disk format version.
// Versions 1 through 28 are the legacy numbered sequence; 5000 marks the
// switch to feature-flag versioning, after which on-disk compatibility is
// tracked by the feature catalogue instead of a monotonically bumped
// number.
type SpaVersion uint64

const SpaVersionFeatures SpaVersion = 5000

// Validate reports whether v is a version this codec recognizes: 1..28,
// or the feature-flags marker 5000.
func (v SpaVersion) Validate() error {
	if v >= 1 && v <= 28 {
		return nil
	}
	if v == SpaVersionFeatures {
		return nil
	}
	return fmt.Errorf("uberblock: unknown spa version %d", uint64(v))
}

// ParseSpaVersion validates and returns v as a SpaVersion.
func ParseSpaVersion(v uint64) (SpaVersion, error) {
	sv := SpaVersion(v)
	if err := sv.Validate(); err != nil {
		return 0, err
	}
	return sv, nil
}

// shiftMax returns the maximum uberblock shift permitted for v: 10 for
// V1 (its ashift is fixed at the 1024-byte minimum), 17 for the classic
// numbered versions up through 28 (the size of the entire uberblock
// region within a label), and 13 for the feature-flags version.
func (v SpaVersion) shiftMax() uint32 {
	switch {
	case v == 1:
		return 10
	case v == SpaVersionFeatures:
		return 13
	default:
		return 17
	}
}
