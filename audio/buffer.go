// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Buffer is a fully decoded clip in canonical form: interleaved float32
// samples with the channel count and sample rate attached.
type Buffer struct {
	Channels   int
	SampleRate int
	Samples    []float32
}

// Validate checks the invariants every decoded buffer must hold.
func (b *Buffer) Validate() error {
	switch {
	case b == nil:
		return fmt.Errorf("%w: nil", ErrInvalidBuffer)
	case b.Channels < 1:
		return fmt.Errorf("%w: %d channels", ErrInvalidBuffer, b.Channels)
	case b.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidBuffer, b.SampleRate)
	case len(b.Samples)%b.Channels != 0:
		return fmt.Errorf("%w: %d samples not a multiple of %d channels", ErrInvalidBuffer, len(b.Samples), b.Channels)
	}
	return nil
}

// Frames is the number of samples per channel.
func (b *Buffer) Frames() int {
	if b.Channels < 1 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float32 {
	var peak float32
	for _, s := range b.Samples {
		if s < 0 {
			s = -s
		}
		peak = max(peak, s)
	}
	return peak
}

// NewSource streams the buffer through the Source interface. The samples
// are shared, not copied.
func (b *Buffer) NewSource() Source {
	return &bufferSource{buf: b}
}

type bufferSource struct {
	buf *Buffer
	pos int
}

func (s *bufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *bufferSource) Channels() int   { return s.buf.Channels }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.buf.Samples) {
		return 0, io.EOF
	}

	// whole frames only
	want := len(dst) - len(dst)%s.buf.Channels
	n := copy(dst[:want], s.buf.Samples[s.pos:])
	s.pos += n

	if s.pos >= len(s.buf.Samples) {
		return n, io.EOF
	}
	return n, nil
}

// ReadAll drains src into a Buffer. io.EOF ends the stream normally; any
// other error is returned together with whatever was read so far.
func ReadAll(src Source) (*Buffer, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidBuffer, channels)
	}

	size := src.BufSize()
	if size < channels {
		size = 4096
	}
	size -= size % channels

	out := &Buffer{Channels: channels, SampleRate: src.SampleRate()}
	tmp := make([]float32, size)

	for {
		n, err := src.ReadSamples(tmp)
		out.Samples = append(out.Samples, tmp[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("%w", err)
		}
		if n == 0 {
			// a source returning nothing and no error will never progress
			break
		}
	}

	if len(out.Samples)%channels != 0 {
		out.Samples = out.Samples[:len(out.Samples)-len(out.Samples)%channels]
	}
	if len(out.Samples) == 0 {
		return out, ErrNoSamples
	}

	return out, nil
}
