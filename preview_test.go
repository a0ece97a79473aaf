// SPDX-License-Identifier: EPL-2.0

package sampledeck

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ik5/sampledeck/audio"
	"github.com/ik5/sampledeck/formats/wav"
	"github.com/ik5/sampledeck/internal/audiotest"
)

func TestResampleToMono16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     audio.Source
		rate    int
		wantLen int
		bufSize int
	}{
		{"stereo downsample", audiotest.NewSineSource(44100, 2, 44100, 440), 8000, 8000, 4096},
		{"mono downsample", audiotest.NewConstantSource(16000, 1, 16000, 0.5), 8000, 8000, 4096},
		{"upsample", audiotest.NewSineSource(8000, 1, 8000, 440), 16000, 16000, 4096},
		{"same rate", audiotest.NewSineSource(22050, 2, 1000, 440), 22050, 1000, 4096},
		{"tiny buffer", audiotest.NewSineSource(44100, 2, 4410, 440), 22050, 2205, 7},
		{"surround", audiotest.NewConstantSource(48000, 6, 4800, 0.25), 48000, 4800, 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pcm, rate, err := ResampleToMono16(tt.src, tt.rate, tt.bufSize)
			if err != nil {
				t.Fatalf("ResampleToMono16() error = %v", err)
			}
			if rate != tt.rate {
				t.Errorf("rate = %d, want %d", rate, tt.rate)
			}
			if len(pcm) != tt.wantLen {
				t.Errorf("got %d samples, want %d", len(pcm), tt.wantLen)
			}
		})
	}
}

func TestResampleToMono16_Constant(t *testing.T) {
	t.Parallel()

	pcm, _, err := ResampleToMono16(audiotest.NewConstantSource(8000, 2, 800, 0.5), 8000, 256)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	for i, s := range pcm {
		if s != 16383 {
			t.Fatalf("pcm[%d] = %d, want 16383", i, s)
		}
	}
}

func TestResampleToMono16_Clamping(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(8000, 1, 99, func(frame, _ int) float32 {
		switch frame % 3 {
		case 0:
			return 2
		case 1:
			return -2
		}
		return 0
	})

	pcm, _, err := ResampleToMono16(src, 8000, 4096)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	for i, s := range pcm {
		want := [3]int16{32767, -32767, 0}[i%3]
		if s != want {
			t.Fatalf("pcm[%d] = %d, want %d", i, s, want)
		}
	}
}

func TestResampleToMono16_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt block")
	src := audiotest.NewSineSource(8000, 1, 8000, 440)
	src.FailAt, src.Err, src.Chunk = 1000, boom, 100

	pcm, _, err := ResampleToMono16(src, 8000, 4096)
	if !errors.Is(err, boom) {
		t.Fatalf("ResampleToMono16() error = %v, want %v", err, boom)
	}
	if len(pcm) != 1000 {
		t.Errorf("kept %d samples before the error, want 1000", len(pcm))
	}
}

func TestResampleToMono16_Empty(t *testing.T) {
	t.Parallel()

	pcm, _, err := ResampleToMono16(audiotest.NewSilentSource(44100, 2, 0), 8000, 4096)
	if err != nil || len(pcm) != 0 {
		t.Errorf("ResampleToMono16(empty) = %d samples, %v", len(pcm), err)
	}
}

func TestRenderPreview(t *testing.T) {
	t.Parallel()

	buf := &audio.Buffer{Channels: 2, SampleRate: 44100, Samples: make([]float32, 2*44100)}

	var out bytes.Buffer
	if err := RenderPreview(&out, buf, 0); err != nil {
		t.Fatalf("RenderPreview() error = %v", err)
	}

	details, err := wav.ReadDetails(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("ReadDetails() error = %v", err)
	}
	if details.Format.NumChannels != 1 || details.Format.SampleRate != DefaultPreviewRate || details.Bits != 16 {
		t.Errorf("preview format = %+v, %d bits", details.Format, details.Bits)
	}
	if details.Duration != time.Second {
		t.Errorf("preview duration = %s, want 1s", details.Duration)
	}

	if err := RenderPreview(&out, &audio.Buffer{}, 8000); !errors.Is(err, audio.ErrInvalidBuffer) {
		t.Errorf("RenderPreview(invalid) error = %v", err)
	}
}

func BenchmarkResampleToMono16(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		src := audiotest.NewSineSource(44100, 2, 44100, 440)
		_, _, _ = ResampleToMono16(src, 8000, 4096)
	}
}

func BenchmarkResampleToMono16_Upsample(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		src := audiotest.NewSineSource(8000, 1, 8000, 440)
		_, _, _ = ResampleToMono16(src, 48000, 4096)
	}
}
