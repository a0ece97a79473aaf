// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"math/bits"
)

// AIFF describes an uncompressed big-endian AIFF fixture.
type AIFF struct {
	Channels   int
	SampleRate int
	Bits       int
}

// Encode renders samples as a FORM/AIFF file with COMM and SSND chunks.
func (a AIFF) Encode(samples []float64) []byte {
	size := a.Bits / 8
	data := make([]byte, len(samples)*size)
	for i, s := range samples {
		v := Quantize(s, a.Bits)
		b := data[i*size : (i+1)*size]
		switch a.Bits {
		case 8:
			b[0] = byte(int8(v))
		case 16:
			binary.BigEndian.PutUint16(b, uint16(int16(v)))
		case 24:
			b[0], b[1], b[2] = byte(v>>16), byte(v>>8), byte(v)
		case 32:
			binary.BigEndian.PutUint32(b, uint32(v))
		}
	}

	frames := len(samples) / max(a.Channels, 1)
	buf := new(bytes.Buffer)

	buf.WriteString("FORM")
	_ = binary.Write(buf, binary.BigEndian, uint32(4+8+18+8+8+len(data)))
	buf.WriteString("AIFF")

	buf.WriteString("COMM")
	_ = binary.Write(buf, binary.BigEndian, uint32(18))
	_ = binary.Write(buf, binary.BigEndian, uint16(a.Channels))
	_ = binary.Write(buf, binary.BigEndian, uint32(frames))
	_ = binary.Write(buf, binary.BigEndian, uint16(a.Bits))
	buf.Write(extended(a.SampleRate))

	buf.WriteString("SSND")
	_ = binary.Write(buf, binary.BigEndian, uint32(8+len(data)))
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // offset
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // block size
	buf.Write(data)

	return buf.Bytes()
}

// extended encodes a positive integer as an 80-bit IEEE 754 extended float.
func extended(v int) []byte {
	out := make([]byte, 10)
	if v <= 0 {
		return out
	}

	shift := bits.LeadingZeros64(uint64(v))
	exp := 16383 + 63 - shift
	binary.BigEndian.PutUint16(out[0:2], uint16(exp))
	binary.BigEndian.PutUint64(out[2:10], uint64(v)<<shift)
	return out
}
