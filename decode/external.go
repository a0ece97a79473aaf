// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/sampledeck/audio"
	"github.com/ik5/sampledeck/utils"
)

const defaultExternalTimeout = 2 * time.Minute

// External decodes anything ffmpeg can read to float32 PCM at a fixed
// rate and channel count.
type External struct {
	Binary     string
	SampleRate int
	Channels   int
	Timeout    time.Duration
}

func (e *External) Name() string { return "external" }

func (e *External) Attempt(path string) (*audio.Buffer, error) {
	rate := e.SampleRate
	if rate <= 0 {
		rate = 48000
	}
	channels := e.Channels
	if channels <= 0 {
		channels = 2
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultExternalTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.Binary,
		"-nostdin",
		"-loglevel", "error",
		"-i", "file:"+path,
		"-f", "f32le",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(rate),
		"pipe:1",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}

	norm, err := utils.NewNormalizer(utils.Encoding{Family: utils.Float, Bits: 32})
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	frame := 4 * channels
	out = out[:len(out)-len(out)%frame]

	buf := &audio.Buffer{Channels: channels, SampleRate: rate, Samples: make([]float32, len(out)/4)}
	norm.Bytes(buf.Samples, out, false)

	return buf, nil
}
