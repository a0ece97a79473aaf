// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/sampledeck/audio"
	"github.com/ik5/sampledeck/utils"
)

type wavSource struct {
	r    io.Reader
	h    Header
	norm utils.Normalizer
	buf  []byte
}

func (s *wavSource) SampleRate() int { return s.h.SampleRate }
func (s *wavSource) Channels() int   { return s.h.Channels }
func (s *wavSource) BufSize() int    { return 4096 }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.h.Channels
	if frames == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	want := frames * s.h.BlockAlign
	if len(s.buf) < want {
		s.buf = make([]byte, want)
	}

	n, err := io.ReadFull(s.r, s.buf[:want])
	// a truncated data chunk ends on the last whole frame
	n -= n % s.h.BlockAlign

	var samples int
	if s.h.Float() && s.h.Bits == 64 {
		samples = n / 8
		for i := range samples {
			dst[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(s.buf[i*8:])))
		}
	} else {
		samples = s.norm.Bytes(dst, s.buf[:n], true)
	}

	switch {
	case err == nil:
		return samples, nil
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		return samples, io.EOF
	default:
		return samples, fmt.Errorf("%w", err)
	}
}

// Decoder streams WAV sample data of any integer or float encoding,
// including WAVE_FORMAT_EXTENSIBLE, without seeking.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	src := &wavSource{h: h, r: newChunkEndReader(r), buf: make([]byte, 4096)}
	if h.DataSize >= 0 {
		src.r = io.LimitReader(r, h.DataSize)
	}

	if !(h.Float() && h.Bits == 64) {
		enc, err := h.Encoding()
		if err != nil {
			return nil, err
		}
		if src.norm, err = utils.NewNormalizer(enc); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}

	return src, nil
}
