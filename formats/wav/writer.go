// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/sampledeck/audio"
)

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate. The header is
// written up front, so w does not need to seek.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	const (
		channels = 1
		bits     = 16
	)

	dataSize := uint32(len(samples) * 2)
	header := make([]byte, 44)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], TagPCM)
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*channels*bits/8))
	binary.LittleEndian.PutUint16(header[32:34], channels*bits/8)
	binary.LittleEndian.PutUint16(header[34:36], bits)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}

	const chunk = 8192
	buf := make([]byte, min(len(samples), chunk)*2)

	for i := 0; i < len(samples); i += chunk {
		part := samples[i:min(i+chunk, len(samples))]
		out := buf[:len(part)*2]
		for j, s := range part {
			binary.LittleEndian.PutUint16(out[j*2:], uint16(s))
		}

		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// Encode writes buf as integer PCM of the given bit depth (16, 24 or 32)
// using go-audio/wav. Samples are clamped to full scale on the way out.
func Encode(ws io.WriteSeeker, buf *audio.Buffer, bits int) error {
	if err := buf.Validate(); err != nil {
		return fmt.Errorf("%w", err)
	}

	switch bits {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d bit output", ErrUnsupportedWavLayout, bits)
	}

	scale := float64(uint64(1)<<(bits-1)) - 1
	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = int(float64(clamp(s)) * scale)
	}

	enc := gowav.NewEncoder(ws, buf.SampleRate, bits, buf.Channels, TagPCM)
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: bits,
	}

	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func clamp(s float32) float32 {
	return max(min(s, 1), -1)
}
