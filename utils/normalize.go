// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrUnsupportedEncoding is returned for sample encodings outside the
// normalization table.
var ErrUnsupportedEncoding = errors.New("unsupported sample encoding")

// Family is the numeric family of a raw sample encoding.
type Family uint8

const (
	Integer Family = iota + 1
	Float
)

func (f Family) String() string {
	switch f {
	case Integer:
		return "int"
	case Float:
		return "float"
	default:
		return "unknown"
	}
}

// Encoding describes how a single raw sample is stored.
type Encoding struct {
	Family Family
	Bits   int
}

func (e Encoding) String() string {
	return fmt.Sprintf("%s%d", e.Family, e.Bits)
}

// Divisor returns the value a raw sample is divided by to land in the
// canonical float range.
//
//	int8   128
//	int16  32768
//	int24  8388608
//	int32  2147483648
//	float32 1
func (e Encoding) Divisor() (float64, error) {
	switch e.Family {
	case Integer:
		switch e.Bits {
		case 8, 16, 24, 32:
			return float64(uint64(1) << (e.Bits - 1)), nil
		}
	case Float:
		if e.Bits == 32 {
			return 1, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, e)
}

// BytesPerSample is the storage size of one raw sample.
func (e Encoding) BytesPerSample() int {
	return (e.Bits + 7) / 8
}

// Normalizer converts raw samples of one encoding into float32 signal
// values. Results are not clamped: the most negative integer maps to
// exactly -1.0 while the most positive one stays just below +1.0.
type Normalizer struct {
	enc   Encoding
	scale float64
}

// NewNormalizer builds a Normalizer for enc, failing for encodings that are
// not in the divisor table.
func NewNormalizer(enc Encoding) (Normalizer, error) {
	div, err := enc.Divisor()
	if err != nil {
		return Normalizer{}, err
	}

	return Normalizer{enc: enc, scale: 1 / div}, nil
}

func (n Normalizer) Encoding() Encoding { return n.enc }

// Int normalizes a signed integer sample.
func (n Normalizer) Int(v int32) float32 {
	return float32(float64(v) * n.scale)
}

// Float passes a float32 sample through the (unit) divisor.
func (n Normalizer) Float(v float32) float32 {
	return float32(float64(v) * n.scale)
}

// Bytes decodes little-endian raw samples from raw into dst and returns the
// number of samples written. Trailing bytes that do not form a whole sample
// are ignored. When unsigned8 is set, 8-bit samples are treated as offset
// binary (as WAV stores them) and re-centred before normalization.
func (n Normalizer) Bytes(dst []float32, raw []byte, unsigned8 bool) int {
	size := n.enc.BytesPerSample()
	count := min(len(raw)/size, len(dst))

	switch {
	case n.enc.Family == Float:
		for i := range count {
			dst[i] = n.Float(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	case n.enc.Bits == 8:
		for i := range count {
			v := int32(int8(raw[i]))
			if unsigned8 {
				v = int32(raw[i]) - 128
			}
			dst[i] = n.Int(v)
		}
	case n.enc.Bits == 16:
		for i := range count {
			dst[i] = n.Int(int32(int16(binary.LittleEndian.Uint16(raw[i*2:]))))
		}
	case n.enc.Bits == 24:
		for i := range count {
			dst[i] = n.Int(Int24LE(raw[i*3:]))
		}
	case n.enc.Bits == 32:
		for i := range count {
			dst[i] = n.Int(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	}

	return count
}

// Int24LE sign-extends a 3 byte little-endian sample.
func Int24LE(b []byte) int32 {
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	return (v << 8) >> 8
}
