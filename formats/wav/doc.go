// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files.
//
// Two readers are provided. Load decodes a whole file with
// github.com/go-audio/wav and accepts only the plain integer and float32
// layouts. Decoder streams any layout, integer 8 to 32 bits, float 32 and
// 64 bits and WAVE_FORMAT_EXTENSIBLE, from a plain io.Reader:
//
//	src, err := wav.Decoder{}.Decode(f)
//	buf, err := wav.Load(f) // f must be an io.ReadSeeker
//
// Integer samples are normalized by 2^(bits-1), 8-bit data is offset
// binary. Nothing is clamped.
//
// Info reports channels, rate, bit depth and duration without decoding.
//
// WriteWAV16 writes a mono 16-bit file to any io.Writer; Encode writes a
// Buffer at 16, 24 or 32 bits through go-audio/wav.
package wav
