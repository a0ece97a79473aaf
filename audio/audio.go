// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples, nominally in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Sniffer reports whether header (the first bytes of a stream) belongs to a
// format.
type Sniffer func(header []byte) bool

// Magic returns a Sniffer matching sig at offset.
func Magic(offset int, sig string) Sniffer {
	return func(header []byte) bool {
		end := offset + len(sig)
		return len(header) >= end && bytes.Equal(header[offset:end], []byte(sig))
	}
}

// SniffLen is how many leading bytes Probe needs to tell formats apart.
const SniffLen = 16

type entry struct {
	format  string
	decoder Decoder
	sniff   []Sniffer
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
// Registration order is probing order.
type Registry struct {
	codecs map[string]*entry
	order  []string

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]*entry),
		mtx:    &sync.Mutex{},
	}
}

// Register adds or replaces the decoder for format. Sniffers are optional;
// a format without them can only be found by name.
func (r *Registry) Register(format string, d Decoder, sniff ...Sniffer) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	format = strings.ToLower(format)
	if _, ok := r.codecs[format]; !ok {
		r.order = append(r.order, format)
	}
	r.codecs[format] = &entry{format: format, decoder: d, sniff: sniff}
}

// Alias makes name resolve to an already registered format.
func (r *Registry) Alias(name, format string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if e, ok := r.codecs[strings.ToLower(format)]; ok {
		r.codecs[strings.ToLower(name)] = e
	}
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	e, ok := r.codecs[strings.ToLower(format)]
	if !ok {
		return nil, false
	}
	return e.decoder, true
}

// Formats lists registered format keys in probing order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return append([]string(nil), r.order...)
}

// Probe picks a decoder by content first, then by the extension of name.
func (r *Registry) Probe(header []byte, name string) (string, Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, format := range r.order {
		e := r.codecs[format]
		for _, sniff := range e.sniff {
			if sniff(header) {
				return e.format, e.decoder, true
			}
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if e, ok := r.codecs[ext]; ok && ext != "" {
		return e.format, e.decoder, true
	}

	return "", nil, false
}
