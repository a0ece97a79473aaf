// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/sampledeck/audio"
	"github.com/ik5/sampledeck/formats/aiff"
	"github.com/ik5/sampledeck/formats/mp3"
	"github.com/ik5/sampledeck/formats/vorbis"
	"github.com/ik5/sampledeck/formats/wav"
)

const (
	defaultMaxFaults = 16
	// reads that return nothing and no error before a source counts as stalled
	maxIdleReads = 64
)

// Probe identifies the container from its first bytes (falling back to the
// file extension) and decodes it packet by packet, tolerating bad packets
// and mid-stream format resets.
type Probe struct {
	Registry  *audio.Registry
	MaxFaults int
}

// NewProbe returns a Probe over the built-in wav, aiff, ogg and mp3
// decoders.
func NewProbe(maxFaults int) *Probe {
	if maxFaults <= 0 {
		maxFaults = defaultMaxFaults
	}
	return &Probe{Registry: Formats(), MaxFaults: maxFaults}
}

// Formats is the registry of streaming decoders, in probing order.
func Formats() *audio.Registry {
	r := audio.NewRegistry()

	r.Register("wav", wav.Decoder{}, audio.Magic(0, "RIFF"))
	r.Alias("wave", "wav")

	r.Register("aiff", aiff.Decoder{}, all(audio.Magic(0, "FORM"), audio.Magic(8, "AIFF")))
	r.Alias("aif", "aiff")

	r.Register("ogg", vorbis.Decoder{}, audio.Magic(0, "OggS"))
	r.Alias("oga", "ogg")

	r.Register("mp3", mp3.Decoder{}, audio.Magic(0, "ID3"), mpegSync)

	return r
}

func all(sniffers ...audio.Sniffer) audio.Sniffer {
	return func(header []byte) bool {
		for _, s := range sniffers {
			if !s(header) {
				return false
			}
		}
		return true
	}
}

// mpegSync matches an MPEG audio frame header without ID3 tag.
func mpegSync(header []byte) bool {
	return len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0
}

func (p *Probe) Name() string { return "probe" }

func (p *Probe) Attempt(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	// a short file simply yields a short header
	header, _ := br.Peek(audio.SniffLen)

	format, dec, ok := p.Registry.Probe(header, path)
	if !ok {
		return nil, ErrUnknownFormat
	}

	src, err := dec.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format, err)
	}

	buf, err := p.drain(src, dec, br)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format, err)
	}
	return buf, nil
}

// drain reads src to the end. The first stream layout seen is kept; after a
// format reset the decoder is built again on the rest of r and only packets
// matching that layout are kept.
func (p *Probe) drain(src audio.Source, dec audio.Decoder, r io.Reader) (*audio.Buffer, error) {
	out := &audio.Buffer{Channels: src.Channels(), SampleRate: src.SampleRate()}
	if out.Channels < 1 || out.SampleRate < 1 {
		src.Close()
		return nil, fmt.Errorf("%w: %d ch @ %d Hz", audio.ErrInvalidBuffer, out.Channels, out.SampleRate)
	}

	tmp := make([]float32, 4096*out.Channels)
	var (
		faults, idle int
		lastFault    error
	)

read:
	for {
		n, err := src.ReadSamples(tmp[:len(tmp)-len(tmp)%src.Channels()])

		if n > 0 && src.Channels() == out.Channels && src.SampleRate() == out.SampleRate {
			out.Samples = append(out.Samples, tmp[:n-n%out.Channels]...)
		}

		switch {
		case err == nil:
			faults = 0
			if n == 0 {
				if idle++; idle > maxIdleReads {
					break read
				}
				continue
			}
			idle = 0

		case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
			break read

		case errors.Is(err, audio.ErrFormatChanged):
			src.Close()
			next, derr := dec.Decode(r)
			if derr != nil {
				// nothing decodable follows the reset
				src = nil
				break read
			}
			src = next
			if c := src.Channels(); c < 1 {
				break read
			} else if len(tmp) < c {
				tmp = make([]float32, 4096*c)
			}

		case errors.Is(err, audio.ErrDecodeFault):
			lastFault = err
			if faults++; faults > p.MaxFaults {
				break read
			}

		default:
			src.Close()
			return nil, err
		}
	}

	if src != nil {
		src.Close()
	}

	if len(out.Samples) == 0 {
		if faults > p.MaxFaults {
			return nil, fmt.Errorf("%w: %w", ErrTooManyFaults, lastFault)
		}
		return nil, audio.ErrNoSamples
	}
	return out, nil
}
