// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/sampledeck/audio"
)

const readyTimeout = 5 * time.Second

// oto allows a single context per process; it is created on first open
// and suspended, not destroyed, when a device is closed.
var (
	otoMu   sync.Mutex
	otoCtx  *oto.Context
	otoRate int
	otoCh   int
)

// OpenOto opens the system output through oto as float32 at the configured
// rate and channel count.
func OpenOto(cfg Config) (Device, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if cfg.SampleRate != otoRate || cfg.Channels != otoCh {
			return nil, fmt.Errorf("oto context already open at %d Hz x %d, requested %d Hz x %d",
				otoRate, otoCh, cfg.SampleRate, cfg.Channels)
		}
		if err := otoCtx.Resume(); err != nil {
			return nil, fmt.Errorf("resume oto context: %w", err)
		}
		return &otoDevice{ctx: otoCtx, rate: otoRate, channels: otoCh}, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create oto context: %w", err)
	}

	select {
	case <-ready:
	case <-time.After(readyTimeout):
		return nil, fmt.Errorf("oto context not ready after %s", readyTimeout)
	}

	otoCtx, otoRate, otoCh = ctx, cfg.SampleRate, cfg.Channels
	return &otoDevice{ctx: ctx, rate: cfg.SampleRate, channels: cfg.Channels}, nil
}

type otoDevice struct {
	ctx      *oto.Context
	rate     int
	channels int
}

func (d *otoDevice) NewVoice(buf *audio.Buffer) (Voice, error) {
	if err := d.ctx.Err(); err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	p := d.ctx.NewPlayer(newStream(buf, d.rate, d.channels))
	return &otoVoice{player: p}, nil
}

func (d *otoDevice) Close() error {
	if err := d.ctx.Suspend(); err != nil {
		return fmt.Errorf("suspend oto context: %w", err)
	}
	return nil
}

type otoVoice struct {
	player *oto.Player
}

func (v *otoVoice) Play()           { v.player.Play() }
func (v *otoVoice) IsPlaying() bool { return v.player.IsPlaying() }

func (v *otoVoice) Close() error {
	v.player.Pause()
	if err := v.player.Close(); err != nil {
		return fmt.Errorf("close oto player: %w", err)
	}
	return nil
}

// stream renders a buffer as little-endian float32 bytes at the device's
// rate and channel count.
type stream struct {
	src audio.Source
	tmp []float32
	raw []byte
	off int
	eof bool
}

func newStream(buf *audio.Buffer, rate, channels int) *stream {
	var src audio.Source = buf.NewSource()
	src = audio.Resample(src, rate)
	src = audio.NewChannelMixer(src, channels)

	return &stream{src: src, tmp: make([]float32, 1024*channels)}
}

func (s *stream) Read(p []byte) (int, error) {
	if s.off >= len(s.raw) {
		if s.eof {
			return 0, io.EOF
		}
		if err := s.fill(); err != nil {
			return 0, err
		}
		if len(s.raw) == 0 {
			return 0, io.EOF
		}
	}

	n := copy(p, s.raw[s.off:])
	s.off += n
	return n, nil
}

func (s *stream) fill() error {
	n, err := s.src.ReadSamples(s.tmp)

	s.raw = s.raw[:0]
	for _, v := range s.tmp[:n] {
		s.raw = binary.LittleEndian.AppendUint32(s.raw, math.Float32bits(v))
	}
	s.off = 0

	if err != nil {
		s.eof = true
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("render voice: %w", err)
		}
	}
	return nil
}
