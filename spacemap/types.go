// Package spacemap decodes the on-disk space map format: a header record
// (held in a dnode's bonus buffer) describing a map's size and allocation
// totals, followed by a log of 8- or 16-byte entries recording each
// allocate/free event.
package spacemap

import (
	"errors"
	"fmt"
)

// Action distinguishes an allocation event from a free event.
type Action uint8

const (
	Allocate Action = 0
	Free     Action = 1
)

func (a Action) String() string {
	switch a {
	case Allocate:
		return "Allocate"
	case Free:
		return "Free"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

func parseAction(v uint8) (Action, error) {
	switch Action(v) {
	case Allocate, Free:
		return Action(v), nil
	default:
		return 0, fmt.Errorf("spacemap: %w: %d", ErrUnknownAction, v)
	}
}

var (
	// ErrUnknownAction is returned when an entry's action bits don't decode
	// to a known Action.
	ErrUnknownAction = errors.New("spacemap: unknown action")
	// ErrMissingObject is returned by DecodeHeader/(*Header).Encode when the
	// object number is zero: the field is mandatory, zero is never valid.
	ErrMissingObject = errors.New("spacemap: missing object number")
	// ErrNonZeroPadding is returned when an entry's reserved padding bits
	// carry a nonzero value.
	ErrNonZeroPadding = errors.New("spacemap: non-zero padding")
	// ErrNoVariant is returned by (*Entry).Encode when none of an Entry's
	// variant fields is set.
	ErrNoVariant = errors.New("spacemap: entry has no variant set")
)
