// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ik5/sampledeck/audio"
)

// mockMP3Reader simulates the gomp3.Decoder for testing. chunk limits how
// many bytes a single Read returns, so odd splits can be exercised.
type mockMP3Reader struct {
	sampleRate int
	data       []byte
	chunk      int
	err        error
}

func newMockReader(samples []int16, chunk int) *mockMP3Reader {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return &mockMP3Reader{sampleRate: 44100, data: data, chunk: chunk}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if len(m.data) == 0 {
		if m.err != nil {
			return 0, m.err
		}
		return 0, io.EOF
	}

	n := len(buf)
	if m.chunk > 0 {
		n = min(n, m.chunk)
	}
	n = copy(buf[:n], m.data)
	m.data = m.data[n:]

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("This is not MP3 data")} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Decode(%q) error = nil, want error", data)
		}
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newSource(&mockMP3Reader{sampleRate: 22050})

	if src.SampleRate() != 22050 {
		t.Errorf("SampleRate() = %d, want 22050", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.BufSize() != 4096 {
		t.Errorf("BufSize() = %d, want 4096", src.BufSize())
	}
}

func TestSource_ConversionAccuracy(t *testing.T) {
	t.Parallel()

	samples := []int16{0, -32768, 16384, -16384, 32767, 1}
	src := newSource(newMockReader(samples, 0))

	buf, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(buf.Samples) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(buf.Samples), len(samples))
	}

	for i, s := range samples {
		if want := float32(s) / 32768; buf.Samples[i] != want {
			t.Errorf("sample %d = %v, want %v", i, buf.Samples[i], want)
		}
	}
}

func TestSource_OddReadSplits(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 1000)
	for i := range samples {
		samples[i] = int16(i * 31)
	}

	// 7 byte reads split both samples and frames
	src := newSource(newMockReader(samples, 7))
	buf, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if len(buf.Samples) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(buf.Samples), len(samples))
	}
	for i, s := range samples {
		if want := float32(s) / 32768; buf.Samples[i] != want {
			t.Fatalf("sample %d = %v, want %v", i, buf.Samples[i], want)
		}
	}
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unexpected eof ends the stream", io.ErrUnexpectedEOF, io.EOF},
		{"decoder error is a fault", errors.New("mp3: bad frame"), audio.ErrDecodeFault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSource(&mockMP3Reader{sampleRate: 44100, err: tt.err})
			if _, err := src.ReadSamples(make([]float32, 8)); !errors.Is(err, tt.want) {
				t.Errorf("ReadSamples() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSource_InvalidDst(t *testing.T) {
	t.Parallel()

	src := newSource(newMockReader([]int16{1, 2}, 0))
	if _, err := src.ReadSamples(make([]float32, 1)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 44100*2)
	buf := make([]float32, 4096)

	for b.Loop() {
		src := newSource(newMockReader(samples, 0))
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
