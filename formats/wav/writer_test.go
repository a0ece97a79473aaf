// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/sampledeck/audio"
)

func TestWriteWAV16_Header(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 100, -100, 200, -200}
	buf := new(bytes.Buffer)

	if err := WriteWAV16(buf, 8000, samples); err != nil {
		t.Fatalf("WriteWAV16() error = %v, want nil", err)
	}

	data := buf.Bytes()
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("WAV size = %d, want %d", len(data), 44+len(samples)*2)
	}

	le := binary.LittleEndian
	tests := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", le.Uint32(data[4:8]), uint32(len(data) - 8)},
		{"fmt size", le.Uint32(data[16:20]), 16},
		{"format tag", uint32(le.Uint16(data[20:22])), TagPCM},
		{"channels", uint32(le.Uint16(data[22:24])), 1},
		{"sample rate", le.Uint32(data[24:28]), 8000},
		{"byte rate", le.Uint32(data[28:32]), 16000},
		{"block align", uint32(le.Uint16(data[32:34])), 2},
		{"bits", uint32(le.Uint16(data[34:36])), 16},
		{"data size", le.Uint32(data[40:44]), uint32(len(samples) * 2)},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
		t.Errorf("chunk markers = %q %q %q", data[0:4], data[8:12], data[36:40])
	}
}

func TestWriteWAV16_RoundTrip(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 20000) // spans several write chunks
	for i := range samples {
		samples[i] = int16(i*7 - 32768)
	}

	buf := new(bytes.Buffer)
	if err := WriteWAV16(buf, 44100, samples); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}

	src, err := Decoder{}.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	got, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got.Samples) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(got.Samples), len(samples))
	}

	for i, s := range samples {
		if want := float32(s) / 32768; got.Samples[i] != want {
			t.Fatalf("sample %d = %v, want %v", i, got.Samples[i], want)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrShortWrite }

func TestWriteWAV16_WriteError(t *testing.T) {
	t.Parallel()

	if err := WriteWAV16(failingWriter{}, 8000, []int16{1}); !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("WriteWAV16() error = %v, want io.ErrShortWrite", err)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	in := &audio.Buffer{Channels: 2, SampleRate: 22050, Samples: []float32{0, 0.5, -0.5, 0.25, 1.5, -1.5}}

	for _, bits := range []int{16, 24, 32} {
		path := filepath.Join(t.TempDir(), "out.wav")
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}

		if err := Encode(f, in, bits); err != nil {
			t.Fatalf("Encode(%d) error = %v", bits, err)
		}
		f.Close()

		rf, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Load(rf)
		rf.Close()
		if err != nil {
			t.Fatalf("Load() after Encode(%d) error = %v", bits, err)
		}

		if got.Channels != 2 || got.SampleRate != 22050 || len(got.Samples) != len(in.Samples) {
			t.Fatalf("Load() = %d ch @ %d Hz x %d, want 2 ch @ 22050 Hz x %d",
				got.Channels, got.SampleRate, len(got.Samples), len(in.Samples))
		}

		for i, s := range in.Samples {
			want := clamp(s)
			if d := got.Samples[i] - want; d > 1e-3 || d < -1e-3 {
				t.Errorf("%d bit: sample %d = %v, want about %v", bits, i, got.Samples[i], want)
			}
		}
	}
}

func TestEncode_Rejects(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := Encode(f, &audio.Buffer{Channels: 1, SampleRate: 8000}, 8); !errors.Is(err, ErrUnsupportedWavLayout) {
		t.Errorf("Encode(8 bit) error = %v, want ErrUnsupportedWavLayout", err)
	}
	if err := Encode(f, &audio.Buffer{}, 16); !errors.Is(err, audio.ErrInvalidBuffer) {
		t.Errorf("Encode(invalid buffer) error = %v, want ErrInvalidBuffer", err)
	}
}

func BenchmarkWriteWAV16(b *testing.B) {
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}

	for b.Loop() {
		_ = WriteWAV16(io.Discard, 16000, samples)
	}
}
