// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoTiers       = errors.New("no decode tiers configured")
	ErrUnknownFormat = errors.New("unrecognized audio format")
	ErrTooManyFaults = errors.New("too many consecutive decode faults")

	// ErrPanic wraps a panic recovered from inside a tier.
	ErrPanic = errors.New("decoder panicked")
)

// TierError is the failure of a single tier for one path.
type TierError struct {
	Tier string
	Err  error
}

func (e *TierError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tier, e.Err)
}

func (e *TierError) Unwrap() error { return e.Err }

// Error is returned when every tier of a chain failed. It keeps each tier's
// failure in chain order; errors.Is and errors.As see all of them.
type Error struct {
	Path  string
	Tiers []*TierError
}

func (e *Error) Error() string {
	if len(e.Tiers) == 0 {
		return fmt.Sprintf("decode %s: %v", e.Path, ErrNoTiers)
	}

	parts := make([]string, len(e.Tiers))
	for i, t := range e.Tiers {
		parts[i] = t.Error()
	}
	return fmt.Sprintf("decode %s: all %d tiers failed: %s", e.Path, len(e.Tiers), strings.Join(parts, "; "))
}

func (e *Error) Unwrap() []error {
	if len(e.Tiers) == 0 {
		return []error{ErrNoTiers}
	}

	errs := make([]error, len(e.Tiers))
	for i, t := range e.Tiers {
		errs[i] = t
	}
	return errs
}
