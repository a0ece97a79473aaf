// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/sampledeck/audio"
	"github.com/ik5/sampledeck/utils"
)

// Load decodes a whole WAV file through go-audio/wav. It only accepts the
// plain integer (tag 1) and float (tag 3) layouts the normalizer covers;
// extensible, float64 and compressed files fail with an error matching
// utils.ErrUnsupportedEncoding so a more lenient decoder can take over.
func Load(rs io.ReadSeeker) (*audio.Buffer, error) {
	d := gowav.NewDecoder(rs)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
		}
		return nil, ErrNotWavFile
	}

	enc, err := encodingOf(d.WavAudioFormat, int(d.BitDepth))
	if err != nil {
		return nil, err
	}

	norm, err := utils.NewNormalizer(enc)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}
	if d.PCMChunk == nil {
		return nil, fmt.Errorf("%w: no data chunk", ErrUnsupportedWavChunks)
	}

	// without a size the data runs into whatever chunks follow it
	if d.PCMSize <= 0 || uint32(d.PCMSize) == unknownSize {
		return nil, fmt.Errorf("%w: data chunk size not set", ErrUnsupportedWavChunks)
	}

	// the pad byte after an odd sized chunk is not sample data
	raw, err := io.ReadAll(io.LimitReader(d.PCMChunk.R, int64(d.PCMSize)))
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	channels := int(d.NumChans)
	frame := channels * enc.BytesPerSample()
	raw = raw[:len(raw)-len(raw)%frame]

	samples := make([]float32, len(raw)/enc.BytesPerSample())
	norm.Bytes(samples, raw, true)

	return &audio.Buffer{
		Channels:   channels,
		SampleRate: int(d.SampleRate),
		Samples:    samples,
	}, nil
}

func encodingOf(tag uint16, bits int) (utils.Encoding, error) {
	switch tag {
	case TagPCM:
		return utils.Encoding{Family: utils.Integer, Bits: bits}, nil
	case TagFloat:
		return utils.Encoding{Family: utils.Float, Bits: bits}, nil
	}
	return utils.Encoding{}, fmt.Errorf("%w: wav format tag %#04x", utils.ErrUnsupportedEncoding, tag)
}
