// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"errors"
	"fmt"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	bmp3 "github.com/gopxl/beep/v2/mp3"
	bvorbis "github.com/gopxl/beep/v2/vorbis"
	bwav "github.com/gopxl/beep/v2/wav"

	"github.com/ik5/sampledeck/audio"
)

type beepDecoder struct {
	name   string
	decode func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)
}

var beepDecoders = []beepDecoder{
	{"wav", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return bwav.Decode(f) }},
	{"flac", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) }},
	{"mp3", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return bmp3.Decode(f) }},
	{"vorbis", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return bvorbis.Decode(f) }},
}

// Generic runs the beep decoders in turn and keeps the first that produces
// audio. It is the only tier reading FLAC.
type Generic struct{}

func (Generic) Name() string { return "generic" }

func (Generic) Attempt(path string) (*audio.Buffer, error) {
	var errs []error

	for _, d := range beepDecoders {
		buf, err := decodeBeep(path, d)
		if err == nil {
			return buf, nil
		}
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return nil, err
		}
		errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
	}

	return nil, errors.Join(errs...)
}

func decodeBeep(path string, d beepDecoder) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer f.Close()

	s, format, err := d.decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer s.Close()

	return readStreamer(s, format)
}

// readStreamer converts beep's stereo float64 frames to interleaved
// float32. Mono sources are stored as one channel.
func readStreamer(s beep.Streamer, format beep.Format) (*audio.Buffer, error) {
	channels := 2
	if format.NumChannels == 1 {
		channels = 1
	}

	out := &audio.Buffer{Channels: channels, SampleRate: int(format.SampleRate)}
	frames := make([][2]float64, 1024)
	idle := 0

	for {
		n, ok := s.Stream(frames)
		for _, fr := range frames[:n] {
			out.Samples = append(out.Samples, float32(fr[0]))
			if channels == 2 {
				out.Samples = append(out.Samples, float32(fr[1]))
			}
		}

		if !ok {
			break
		}
		if n == 0 {
			if idle++; idle > maxIdleReads {
				break
			}
			continue
		}
		idle = 0
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if len(out.Samples) == 0 {
		return nil, audio.ErrNoSamples
	}
	return out, nil
}
