// SPDX-License-Identifier: EPL-2.0

package sampledeck

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/sampledeck/audio"
	"github.com/ik5/sampledeck/formats/wav"
	"github.com/ik5/sampledeck/utils"
)

// DefaultPreviewRate is the sample rate of preview renders.
const DefaultPreviewRate = 22050

// ResampleToMono16 runs src through the resampler and a mono downmix and
// collects the result as clamped 16-bit PCM.
//
// bufferSize is the number of samples read per step; it only affects
// throughput.
func ResampleToMono16(src audio.Source, targetRate, bufferSize int) ([]int16, int, error) {
	mono := audio.NewMonoMixer(audio.Resample(src, targetRate))
	buf := make([]float32, max(bufferSize, 1))

	// estimate the output so short clips never reallocate
	pcm := make([]int16, 0, targetRate)

	for {
		n, err := mono.ReadSamples(buf)
		if n > 0 {
			start := len(pcm)
			pcm = append(pcm, make([]int16, n)...)
			utils.Float32sToInt16s(pcm[start:], buf[:n])
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pcm, targetRate, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}

	return pcm, targetRate, nil
}

// RenderPreview writes buf to w as a 16-bit mono WAV at rate Hz (or
// DefaultPreviewRate when rate is zero).
func RenderPreview(w io.Writer, buf *audio.Buffer, rate int) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if rate <= 0 {
		rate = DefaultPreviewRate
	}

	pcm, rate, err := ResampleToMono16(buf.NewSource(), rate, 4096)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}

	return wav.WriteWAV16(w, rate, pcm)
}
