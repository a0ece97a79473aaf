// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// Details is the container level description of a WAV file.
type Details struct {
	Format   *goaudio.Format
	Tag      uint16
	Bits     int
	Frames   int64
	Duration time.Duration
}

// ReadDetails reads the headers of rs and sizes the data chunk without
// decoding any samples.
func ReadDetails(rs io.ReadSeeker) (Details, error) {
	d := gowav.NewDecoder(rs)
	if !d.IsValidFile() {
		return Details{}, ErrNotWavFile
	}

	info := Details{
		Format: d.Format(),
		Tag:    d.WavAudioFormat,
		Bits:   int(d.BitDepth),
	}

	if err := d.FwdToPCM(); err != nil || d.PCMChunk == nil {
		return info, fmt.Errorf("%w: no data chunk", ErrUnsupportedWavChunks)
	}

	frame := info.Format.NumChannels * info.Bits / 8
	if frame > 0 {
		info.Frames = int64(d.PCMSize / frame)
	}
	if info.Format.SampleRate > 0 {
		info.Duration = time.Duration(info.Frames) * time.Second / time.Duration(info.Format.SampleRate)
	}

	return info, nil
}

// Info opens path and returns its Details.
func Info(path string) (Details, error) {
	f, err := os.Open(path)
	if err != nil {
		return Details{}, fmt.Errorf("%w", err)
	}
	defer f.Close()

	return ReadDetails(f)
}
