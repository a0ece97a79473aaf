// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ik5/sampledeck/audio"
	"github.com/ik5/sampledeck/internal/audiotest"
)

// scriptDecoder hands out one source per Decode call.
type scriptDecoder struct {
	sources []*audiotest.ScriptSource
	calls   int
}

func (d *scriptDecoder) Decode(io.Reader) (audio.Source, error) {
	if d.calls >= len(d.sources) {
		return nil, errors.New("no more streams")
	}
	d.calls++
	return d.sources[d.calls-1], nil
}

func fakeProbe(t *testing.T, dec audio.Decoder, maxFaults int) (*Probe, string) {
	t.Helper()

	r := audio.NewRegistry()
	r.Register("fake", dec, audio.Magic(0, "FAKE"))

	path := filepath.Join(t.TempDir(), "clip.bin")
	if err := os.WriteFile(path, []byte("FAKE0000"), 0o644); err != nil {
		t.Fatal(err)
	}
	return &Probe{Registry: r, MaxFaults: maxFaults}, path
}

func TestProbe_SkipsFaults(t *testing.T) {
	t.Parallel()

	src := &audiotest.ScriptSource{Rate: 8000, Chans: 1, Steps: []audiotest.Step{
		{Samples: []float32{0.1, 0.2}},
		{Err: audio.ErrDecodeFault},
		{Samples: []float32{0.3}, Err: audio.ErrDecodeFault},
		{Samples: []float32{0.4}},
		{Err: io.EOF},
	}}
	p, path := fakeProbe(t, &scriptDecoder{sources: []*audiotest.ScriptSource{src}}, 2)

	buf, err := p.Attempt(path)
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if want := []float32{0.1, 0.2, 0.3, 0.4}; !slices.Equal(buf.Samples, want) {
		t.Errorf("Samples = %v, want %v", buf.Samples, want)
	}
	if !src.Closed() {
		t.Error("source not closed")
	}
}

func TestProbe_TooManyFaults(t *testing.T) {
	t.Parallel()

	steps := make([]audiotest.Step, 5)
	for i := range steps {
		steps[i] = audiotest.Step{Err: audio.ErrDecodeFault}
	}
	src := &audiotest.ScriptSource{Rate: 8000, Chans: 1, Steps: steps}
	p, path := fakeProbe(t, &scriptDecoder{sources: []*audiotest.ScriptSource{src}}, 3)

	_, err := p.Attempt(path)
	if !errors.Is(err, ErrTooManyFaults) || !errors.Is(err, audio.ErrDecodeFault) {
		t.Errorf("Attempt() error = %v, want ErrTooManyFaults wrapping ErrDecodeFault", err)
	}
}

func TestProbe_FaultsAfterAudioKeepWhatWasRead(t *testing.T) {
	t.Parallel()

	steps := []audiotest.Step{{Samples: []float32{0.5, 0.5}}}
	for range 4 {
		steps = append(steps, audiotest.Step{Err: audio.ErrDecodeFault})
	}
	src := &audiotest.ScriptSource{Rate: 8000, Chans: 2, Steps: steps}
	p, path := fakeProbe(t, &scriptDecoder{sources: []*audiotest.ScriptSource{src}}, 1)

	buf, err := p.Attempt(path)
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if buf.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", buf.Frames())
	}
}

func TestProbe_FormatChanged(t *testing.T) {
	t.Parallel()

	first := &audiotest.ScriptSource{Rate: 8000, Chans: 1, Steps: []audiotest.Step{
		{Samples: []float32{0.1}},
		{Err: audio.ErrFormatChanged},
	}}
	// a stream with a different layout is dropped, the reader carries on
	other := &audiotest.ScriptSource{Rate: 16000, Chans: 2, Steps: []audiotest.Step{
		{Samples: []float32{0.9, 0.9}},
		{Err: audio.ErrFormatChanged},
	}}
	same := &audiotest.ScriptSource{Rate: 8000, Chans: 1, Steps: []audiotest.Step{
		{Samples: []float32{0.2}},
		{Err: io.ErrUnexpectedEOF},
	}}
	dec := &scriptDecoder{sources: []*audiotest.ScriptSource{first, other, same}}
	p, path := fakeProbe(t, dec, 4)

	buf, err := p.Attempt(path)
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if want := []float32{0.1, 0.2}; !slices.Equal(buf.Samples, want) {
		t.Errorf("Samples = %v, want %v", buf.Samples, want)
	}
	if buf.SampleRate != 8000 || buf.Channels != 1 {
		t.Errorf("layout = %d ch @ %d Hz, want first stream's", buf.Channels, buf.SampleRate)
	}
	if dec.calls != 3 {
		t.Errorf("decoder built %d times, want 3", dec.calls)
	}
	for i, s := range dec.sources {
		if !s.Closed() {
			t.Errorf("source %d not closed", i)
		}
	}
}

func TestProbe_NoSamples(t *testing.T) {
	t.Parallel()

	src := &audiotest.ScriptSource{Rate: 8000, Chans: 1}
	p, path := fakeProbe(t, &scriptDecoder{sources: []*audiotest.ScriptSource{src}}, 1)

	if _, err := p.Attempt(path); !errors.Is(err, audio.ErrNoSamples) {
		t.Errorf("Attempt() error = %v, want ErrNoSamples", err)
	}
}

func TestProbe_HardErrorStops(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := &audiotest.ScriptSource{Rate: 8000, Chans: 1, Steps: []audiotest.Step{
		{Samples: []float32{0.1}},
		{Err: boom},
	}}
	p, path := fakeProbe(t, &scriptDecoder{sources: []*audiotest.ScriptSource{src}}, 1)

	if _, err := p.Attempt(path); !errors.Is(err, boom) {
		t.Errorf("Attempt() error = %v, want %v", err, boom)
	}
}

func TestProbe_UnknownFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("just some text"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewProbe(0).Attempt(path); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Attempt() error = %v, want ErrUnknownFormat", err)
	}
}

func TestProbe_Sniffing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ramp := audiotest.Ramp(100, 2)

	tests := []struct {
		name string
		data []byte
	}{
		// content wins over a misleading extension
		{"wav-as.mp3", audiotest.WAV{Format: audiotest.FormatFloat, Channels: 2, SampleRate: 22050, Bits: 64}.Encode(ramp)},
		{"clip.aiff", audiotest.AIFF{Channels: 2, SampleRate: 22050, Bits: 16}.Encode(ramp)},
		{"listed.wav", audiotest.WAV{Format: audiotest.FormatPCM, Channels: 2, SampleRate: 22050, Bits: 24, ListChunk: true}.Encode(ramp)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, tt.data, 0o644); err != nil {
				t.Fatal(err)
			}

			buf, err := NewProbe(0).Attempt(path)
			if err != nil {
				t.Fatalf("Attempt() error = %v", err)
			}
			if buf.Channels != 2 || buf.SampleRate != 22050 || buf.Frames() != 100 {
				t.Errorf("buffer = %d ch @ %d Hz x %d frames", buf.Channels, buf.SampleRate, buf.Frames())
			}
		})
	}
}

func TestFormats_Order(t *testing.T) {
	t.Parallel()

	if got := Formats().Formats(); !slices.Equal(got, []string{"wav", "aiff", "ogg", "mp3"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestMpegSync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header []byte
		want   bool
	}{
		{[]byte{0xFF, 0xFB, 0x90}, true},
		{[]byte{0xFF, 0xE3}, true},
		{[]byte{0xFF, 0x1B}, false},
		{[]byte{0xFF}, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := mpegSync(tt.header); got != tt.want {
			t.Errorf("mpegSync(% x) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
