// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/sampledeck/audio"
	"github.com/ik5/sampledeck/utils"
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

var int16Norm, _ = utils.NewNormalizer(utils.Encoding{Family: utils.Integer, Bits: 16})

type source struct {
	dec        mp3Reader
	sampleRate int
	channels   int
	buf        []byte
	pending    []byte // odd byte carried over between reads
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // samples, not bytes

// ReadSamples converts go-mp3 output (16-bit little-endian, always stereo)
// into float32. Decoder errors other than end of stream are reported as
// audio.ErrDecodeFault.
func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.channels
	if frames == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	frameBytes := s.channels * 2
	need := frames * frameBytes
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	carried := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	var (
		n, whole int
		err      error
	)
	// keep reading until at least one whole frame is available
	for {
		var got int
		got, err = s.dec.Read(s.buf[carried+n:])
		n += got
		whole = (carried + n) - (carried+n)%frameBytes
		if whole > 0 || err != nil || got == 0 || carried+n == len(s.buf) {
			break
		}
	}
	n += carried
	s.pending = append(s.pending, s.buf[whole:n]...)

	samples := whole / 2
	for i := range samples {
		dst[i] = int16Norm.Int(int32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))))
	}

	switch {
	case err == nil:
		if samples == 0 {
			return 0, io.EOF
		}
		return samples, nil
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		return samples, io.EOF
	default:
		return samples, fmt.Errorf("%w: %w", audio.ErrDecodeFault, err)
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec), nil
}

func newSource(dec mp3Reader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   2,
		buf:        make([]byte, 8192),
	}
}
