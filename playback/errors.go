// SPDX-License-Identifier: EPL-2.0

package playback

import "errors"

var (
	// ErrServiceUnavailable is returned when a command can no longer reach
	// the owner goroutine.
	ErrServiceUnavailable = errors.New("playback service unavailable")

	// ErrDeviceInit wraps the failure to open the output device. The
	// service keeps accepting commands and drops them.
	ErrDeviceInit = errors.New("audio device init failed")

	ErrNoDevice = errors.New("no output device")
)
