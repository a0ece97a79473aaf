// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ik5/sampledeck/audio"
)

// fakeDevice records every voice it hands out and the peak number of
// voices alive at once.
type fakeDevice struct {
	mu       sync.Mutex
	voices   []*fakeVoice
	live     int
	peak     int
	closed   bool
	voiceErr error
}

func (d *fakeDevice) NewVoice(buf *audio.Buffer) (Voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.voiceErr != nil {
		return nil, d.voiceErr
	}

	v := &fakeVoice{dev: d, buf: buf}
	d.voices = append(d.voices, v)
	d.live++
	d.peak = max(d.peak, d.live)
	return v, nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDevice) snapshot() (voices []*fakeVoice, live, peak int, closed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeVoice(nil), d.voices...), d.live, d.peak, d.closed
}

type fakeVoice struct {
	dev *fakeDevice
	buf *audio.Buffer

	mu       sync.Mutex
	started  bool
	finished bool
	closed   bool
}

func (v *fakeVoice) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.started = true
}

func (v *fakeVoice) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.started && !v.finished && !v.closed
}

// finish simulates the buffer running out.
func (v *fakeVoice) finish() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.finished = true
}

func (v *fakeVoice) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *fakeVoice) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.mu.Unlock()

	v.dev.mu.Lock()
	v.dev.live--
	v.dev.mu.Unlock()
	return nil
}

var errNoSuchFile = errors.New("no such file")

// fakeDecoder serves a small buffer for every path except those listed as
// failing. Paths with a gate block until the gate is closed.
type fakeDecoder struct {
	mu      sync.Mutex
	decoded []string
	fail    map[string]error
	gates   map[string]chan struct{}
	entered chan string
}

func (d *fakeDecoder) Decode(path string) (*audio.Buffer, error) {
	d.mu.Lock()
	d.decoded = append(d.decoded, path)
	gate := d.gates[path]
	err := d.fail[path]
	d.mu.Unlock()

	if d.entered != nil {
		d.entered <- path
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &audio.Buffer{Channels: 1, SampleRate: 8000, Samples: []float32{0.1, 0.2}}, nil
}

func (d *fakeDecoder) paths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.decoded...)
}

// syncBuffer lets the test read log output the owner is writing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) count(s string) int {
	return strings.Count(b.String(), s)
}

func newLogger(level log.Level) (*log.Logger, *syncBuffer) {
	out := &syncBuffer{}
	l := log.New(out)
	l.SetLevel(level)
	return l, out
}

func openerFor(dev Device) DeviceOpener {
	return func(Config) (Device, error) { return dev, nil }
}

func testConfig() Config {
	return Config{SampleRate: 8000, Channels: 1, ReapInterval: 5 * time.Millisecond}
}

// eventually polls cond until it holds or a second has passed.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
