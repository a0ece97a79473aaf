// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// WAV format tags.
const (
	FormatPCM        = 1
	FormatFloat      = 3
	FormatExtensible = 0xFFFE
)

// WAV describes a fixture file. Samples are interleaved and nominally in
// [-1, 1]; integer encodings scale by 2^(Bits-1) and saturate.
type WAV struct {
	Format     uint16
	SubFormat  uint16 // only used with FormatExtensible
	Channels   int
	SampleRate int
	Bits       int

	// ListChunk inserts an odd-sized LIST chunk between fmt and data.
	ListChunk bool
	// TrailingList appends a LIST chunk after the sample data.
	TrailingList bool
	// ZeroDataSize writes 0 as the data chunk size, as unfinished
	// recordings do.
	ZeroDataSize bool
}

// PCM16 is the canonical 16-bit integer layout.
func PCM16(rate, channels int) WAV {
	return WAV{Format: FormatPCM, Channels: channels, SampleRate: rate, Bits: 16}
}

// Encode renders samples as a complete RIFF/WAVE file.
func (w WAV) Encode(samples []float64) []byte {
	data := w.pcm(samples)
	buf := new(bytes.Buffer)

	fmtSize := 16
	if w.Format == FormatExtensible {
		fmtSize = 40
	}

	riffSize := 4 + 8 + fmtSize + 8 + len(data) + len(data)%2
	if w.ListChunk {
		riffSize += 8 + 5 + 1
	}
	if w.TrailingList {
		riffSize += 8 + 12
	}

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(riffSize))
	buf.WriteString("WAVE")

	blockAlign := w.Channels * w.Bits / 8

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(fmtSize))
	_ = binary.Write(buf, binary.LittleEndian, w.Format)
	_ = binary.Write(buf, binary.LittleEndian, uint16(w.Channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(w.SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(w.SampleRate*blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(w.Bits))

	if w.Format == FormatExtensible {
		_ = binary.Write(buf, binary.LittleEndian, uint16(22))     // cbSize
		_ = binary.Write(buf, binary.LittleEndian, uint16(w.Bits)) // valid bits
		_ = binary.Write(buf, binary.LittleEndian, uint32(0))      // channel mask
		// KSDATAFORMAT_SUBTYPE GUID: the tag followed by the fixed tail
		_ = binary.Write(buf, binary.LittleEndian, w.SubFormat)
		buf.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71})
	}

	if w.ListChunk {
		buf.WriteString("LIST")
		_ = binary.Write(buf, binary.LittleEndian, uint32(5))
		buf.WriteString("INFOx")
		buf.WriteByte(0) // pad to even
	}

	size := uint32(len(data))
	if w.ZeroDataSize {
		size = 0
	}
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, size)
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}

	if w.TrailingList {
		buf.WriteString("LIST")
		_ = binary.Write(buf, binary.LittleEndian, uint32(12))
		buf.WriteString("INFOISFT")
		_ = binary.Write(buf, binary.LittleEndian, uint32(0))
	}

	return buf.Bytes()
}

func (w WAV) float() bool {
	return w.Format == FormatFloat || (w.Format == FormatExtensible && w.SubFormat == FormatFloat)
}

func (w WAV) pcm(samples []float64) []byte {
	size := w.Bits / 8
	out := make([]byte, len(samples)*size)

	for i, s := range samples {
		b := out[i*size : (i+1)*size]

		if w.float() {
			if w.Bits == 64 {
				binary.LittleEndian.PutUint64(b, math.Float64bits(s))
			} else {
				binary.LittleEndian.PutUint32(b, math.Float32bits(float32(s)))
			}
			continue
		}

		v := Quantize(s, w.Bits)
		switch w.Bits {
		case 8:
			b[0] = byte(v + 128) // unsigned offset binary
		case 16:
			binary.LittleEndian.PutUint16(b, uint16(int16(v)))
		case 24:
			b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
		case 32:
			binary.LittleEndian.PutUint32(b, uint32(v))
		}
	}

	return out
}

// Quantize maps s to a signed integer of the given width, saturating at the
// extremes.
func Quantize(s float64, bits int) int32 {
	div := float64(uint64(1) << (bits - 1))
	v := math.Round(s * div)
	v = max(min(v, div-1), -div)
	return int32(v)
}

// WriteFile writes an encoded fixture into dir and returns its path.
func (w WAV) WriteFile(tb testing.TB, dir, name string, samples []float64) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, w.Encode(samples), 0o644); err != nil {
		tb.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// Ramp returns frames*channels interleaved samples stepping evenly from -1
// toward 1, useful for spotting channel swaps and off-by-one reads.
func Ramp(frames, channels int) []float64 {
	out := make([]float64, frames*channels)
	for f := range frames {
		v := -1 + 2*float64(f)/float64(max(frames, 1))
		for c := range channels {
			out[f*channels+c] = v * (1 - 0.25*float64(c))
		}
	}
	return out
}
