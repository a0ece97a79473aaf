// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// MockSource generates a synthetic signal through the audio.Source method
// set. It does not import the audio package so that package's own tests can
// use it.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int // total frames to produce
	pos        int // frames produced so far
	waveform   func(frame, channel int) float32

	// Chunk caps the frames returned per read; zero means no cap.
	Chunk int
	// FailAt makes the read that reaches this frame return Err instead of
	// io.EOF, as a decoder hitting a corrupt block would.
	FailAt int
	Err    error

	closed bool
}

// NewMockSource returns a source of frames frames, each sample computed by
// waveform.
func NewMockSource(sampleRate, channels, frames int, waveform func(frame, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
		FailAt:     -1,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

// NewSineSource produces the same sine on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	step := 2 * math.Pi * frequency / float64(sampleRate)
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		return float32(math.Sin(step * float64(frame)))
	})
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	end := m.frames
	if m.FailAt >= 0 {
		end = min(end, m.FailAt)
	}
	if m.pos >= end {
		return 0, m.end()
	}

	n := min(len(dst)/m.channels, end-m.pos)
	if m.Chunk > 0 {
		n = min(n, m.Chunk)
	}

	for f := range n {
		for c := range m.channels {
			dst[f*m.channels+c] = m.waveform(m.pos+f, c)
		}
	}
	m.pos += n

	if m.pos >= end {
		return n * m.channels, m.end()
	}
	return n * m.channels, nil
}

func (m *MockSource) end() error {
	if m.FailAt >= 0 && m.pos >= m.FailAt && m.Err != nil {
		return m.Err
	}
	return io.EOF
}

// Step is one scripted read: the samples it returns and the error that
// comes with them.
type Step struct {
	Samples []float32
	Err     error
}

// ScriptSource replays a fixed sequence of reads and then reports io.EOF.
type ScriptSource struct {
	Rate  int
	Chans int
	Steps []Step

	closed bool
}

func (s *ScriptSource) SampleRate() int { return s.Rate }
func (s *ScriptSource) Channels() int   { return s.Chans }
func (s *ScriptSource) BufSize() int    { return 64 }
func (s *ScriptSource) Closed() bool    { return s.closed }

func (s *ScriptSource) Close() error {
	s.closed = true
	return nil
}

func (s *ScriptSource) ReadSamples(dst []float32) (int, error) {
	if len(s.Steps) == 0 {
		return 0, io.EOF
	}
	st := s.Steps[0]
	s.Steps = s.Steps[1:]
	return copy(dst, st.Samples), st.Err
}
