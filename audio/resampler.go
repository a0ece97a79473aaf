// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// Resampler streams from src to a target sample rate using cubic
// (Catmull-Rom) interpolation. Works on interleaved samples; preserves
// channel count. When downsampling, incoming frames pass through a one-pole
// low-pass filter first.
type Resampler struct {
	src      Source
	channels int
	srcRate  int64
	dstRate  int64

	// hist[1] and hist[2] bracket the output position, hist[0] and hist[3]
	// shape the curve. left counts real (not edge-padded) frames in hist[1:].
	hist   [4][]float32
	left   int
	primed bool
	cur    int64 // source frame index held in hist[1]
	out    int64 // output frames produced so far

	in     []float32
	inPos  int
	inLen  int
	srcEOF bool
	err    error

	lowpass bool
	alpha   float32
	state   []float32
}

// Resample returns src unchanged when it already runs at rate, otherwise a
// Resampler.
func Resample(src Source, rate int) Source {
	if src.SampleRate() == rate {
		return src
	}
	return NewResampler(src, rate)
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(src.Channels(), 1)
	size := max(src.BufSize(), channels)
	size -= size % channels

	r := &Resampler{
		src:      src,
		channels: channels,
		srcRate:  int64(max(src.SampleRate(), 1)),
		dstRate:  int64(max(dstRate, 1)),
		in:       make([]float32, size),
		lowpass:  src.SampleRate() > dstRate,
		alpha:    0.5,
		state:    make([]float32, channels),
	}

	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// nextFrame copies the next source frame into dst, refilling the input
// block as needed. It reports false once the source is exhausted.
func (r *Resampler) nextFrame(dst []float32) bool {
	for r.inPos >= r.inLen {
		if r.srcEOF {
			return false
		}

		n, err := r.src.ReadSamples(r.in)
		n -= n % r.channels
		r.inPos, r.inLen = 0, n

		if err != nil {
			r.srcEOF = true
			if !errors.Is(err, io.EOF) {
				r.err = fmt.Errorf("%w", err)
			}
		} else if n == 0 {
			r.srcEOF = true
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.lowpass {
		for c := range r.channels {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.state[c]
			r.state[c] = dst[c]
		}
	}

	return true
}

func (r *Resampler) prime() bool {
	if !r.nextFrame(r.hist[1]) {
		return false
	}
	// start the filter on the first frame to avoid a warm-up transient
	copy(r.state, r.hist[1])
	copy(r.hist[0], r.hist[1])
	r.left = 1

	for i := 2; i < len(r.hist); i++ {
		if r.nextFrame(r.hist[i]) {
			r.left++
		} else {
			copy(r.hist[i], r.hist[i-1])
		}
	}

	r.primed = true
	return true
}

func (r *Resampler) advance() {
	r.hist[0], r.hist[1], r.hist[2], r.hist[3] = r.hist[1], r.hist[2], r.hist[3], r.hist[0]
	if r.left > 0 {
		r.left--
	}

	if r.nextFrame(r.hist[3]) {
		r.left++
	} else {
		copy(r.hist[3], r.hist[2])
	}
}

func (r *Resampler) end() error {
	if r.err != nil {
		return r.err
	}
	return io.EOF
}

// ReadSamples produces samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed && !r.prime() {
		return 0, r.end()
	}

	// positions are derived from the output index in integer math so the
	// output length never drifts: N source frames give ceil(N*dst/src).
	written := 0
	for written < len(dst) {
		num := r.out * r.srcRate
		for r.cur < num/r.dstRate {
			r.advance()
			r.cur++
		}
		if r.left == 0 {
			break
		}

		x := float32(num%r.dstRate) / float32(r.dstRate)
		for c := range r.channels {
			dst[written+c] = catmullRom(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], x)
		}

		written += r.channels
		r.out++
	}

	if written == 0 {
		return 0, r.end()
	}
	return written, nil
}

// catmullRom interpolates between y1 and y2; x is the fractional position
// (0 <= x <= 1) and y0, y3 are the outer neighbours.
func catmullRom(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}
