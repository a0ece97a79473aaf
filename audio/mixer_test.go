// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"testing"

	"github.com/ik5/sampledeck/internal/audiotest"
)

// channelSource emits frame f with channel c holding float32(c+1)/10.
func channelSource(channels, frames int) *audiotest.MockSource {
	return audiotest.NewMockSource(8000, channels, frames, func(_ int, c int) float32 {
		return float32(c+1) / 10
	})
}

func TestChannelMixer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int
		out  int
		want []float32 // one output frame
	}{
		{"mono passthrough", 1, 1, []float32{0.1}},
		{"stereo to mono", 2, 1, []float32{0.15}},
		{"mono to stereo", 1, 2, []float32{0.1, 0.1}},
		{"5.1 to stereo", 6, 2, []float32{0.3, 0.4}},
		{"6 to mono", 6, 1, []float32{0.35}},
		{"stereo to quad", 2, 4, []float32{0.1, 0.2, 0.1, 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mixer := NewChannelMixer(channelSource(tt.in, 10), tt.out)
			if mixer.Channels() != tt.out {
				t.Fatalf("Channels() = %d, want %d", mixer.Channels(), tt.out)
			}

			buf := make([]float32, 4*tt.out)
			n, err := mixer.ReadSamples(buf)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != len(buf) {
				t.Fatalf("ReadSamples() n = %d, want %d", n, len(buf))
			}

			for f := range 4 {
				for c, want := range tt.want {
					got := buf[f*tt.out+c]
					if d := got - want; d > 1e-6 || d < -1e-6 {
						t.Errorf("frame %d ch %d = %v, want %v", f, c, got, want)
					}
				}
			}
		})
	}
}

func TestChannelMixer_ReadsToEOF(t *testing.T) {
	t.Parallel()

	mixer := NewMonoMixer(channelSource(2, 1000))
	buf := make([]float32, 300)

	total := 0
	for {
		n, err := mixer.ReadSamples(buf)
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if total != 1000 {
		t.Errorf("total mono samples = %d, want 1000", total)
	}
}

func TestChannelMixer_InvalidDstSize(t *testing.T) {
	t.Parallel()

	mixer := NewChannelMixer(channelSource(1, 10), 2)
	if _, err := mixer.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestChannelMixer_Metadata(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(44100, 2, 10)
	mixer := NewChannelMixer(src, 0)

	if mixer.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1 for a non-positive request", mixer.Channels())
	}
	if mixer.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", mixer.SampleRate())
	}
	if err := mixer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
