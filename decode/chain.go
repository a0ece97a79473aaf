// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"fmt"
	"time"

	"github.com/ik5/sampledeck/audio"
)

// Tier is one strategy for turning a file into a Buffer.
type Tier interface {
	Name() string
	Attempt(path string) (*audio.Buffer, error)
}

// Chain tries its tiers in order and returns the first success. Results of
// different tiers are never mixed.
type Chain struct {
	tiers []Tier
}

func New(tiers ...Tier) *Chain {
	return &Chain{tiers: tiers}
}

// Options tune the default chain.
type Options struct {
	// MaxFaults is how many consecutive bad packets the probing tier skips
	// before it gives up on a stream.
	MaxFaults int

	// FFmpeg is the ffmpeg binary for the external tier. Empty disables it.
	FFmpeg     string
	SampleRate int
	Channels   int
	Timeout    time.Duration
}

// Default builds the standard chain: structured WAV, probing, generic, and
// ffmpeg when configured.
func Default(opts Options) *Chain {
	c := New(Structured{}, NewProbe(opts.MaxFaults), Generic{})
	if opts.FFmpeg != "" {
		c.Append(&External{Binary: opts.FFmpeg, SampleRate: opts.SampleRate, Channels: opts.Channels, Timeout: opts.Timeout})
	}
	return c
}

// Append adds tiers after the existing ones.
func (c *Chain) Append(tiers ...Tier) *Chain {
	c.tiers = append(c.tiers, tiers...)
	return c
}

// Names lists the tiers in the order they are tried.
func (c *Chain) Names() []string {
	names := make([]string, len(c.tiers))
	for i, t := range c.tiers {
		names[i] = t.Name()
	}
	return names
}

// Decode runs the tiers for path. When all of them fail the error is an
// *Error holding one *TierError per tier.
func (c *Chain) Decode(path string) (*audio.Buffer, error) {
	failed := &Error{Path: path}

	for _, t := range c.tiers {
		buf, err := attempt(t, path)
		if err == nil {
			return buf, nil
		}
		failed.Tiers = append(failed.Tiers, &TierError{Tier: t.Name(), Err: err})
	}

	return nil, failed
}

// attempt runs one tier, turning panics and invalid results into errors.
func attempt(t Tier, path string) (buf *audio.Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	buf, err = t.Attempt(path)
	if err != nil {
		return nil, err
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if len(buf.Samples) == 0 {
		return nil, audio.ErrNoSamples
	}
	return buf, nil
}
