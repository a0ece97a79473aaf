// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"github.com/ik5/sampledeck/audio"
)

// Device is an opened output device. It is created, used and closed only
// by the owner goroutine.
type Device interface {
	// NewVoice prepares buf for playback without starting it.
	NewVoice(buf *audio.Buffer) (Voice, error)
	Close() error
}

// Voice is one buffer being played through a Device.
type Voice interface {
	Play()
	// IsPlaying turns false once the buffer has been played out.
	IsPlaying() bool
	Close() error
}

// DeviceOpener opens the output device. It runs on the owner goroutine.
type DeviceOpener func(cfg Config) (Device, error)

// Decoder turns a path into a playable buffer. *decode.Chain implements it.
type Decoder interface {
	Decode(path string) (*audio.Buffer, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(path string) (*audio.Buffer, error)

func (f DecoderFunc) Decode(path string) (*audio.Buffer, error) { return f(path) }
