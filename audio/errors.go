// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrDecodeFault marks a recoverable per-packet decode failure. Readers
	// may skip the packet and keep reading.
	ErrDecodeFault = errors.New("transient decode fault")

	// ErrFormatChanged is returned by a Source whose stream parameters were
	// reset mid-stream. The decoder must be instantiated again to continue.
	ErrFormatChanged = errors.New("stream format changed")

	ErrNoSamples     = errors.New("no samples decoded")
	ErrInvalidBuffer = errors.New("invalid audio buffer")
)
