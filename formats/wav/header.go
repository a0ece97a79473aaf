// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/sampledeck/utils"
)

// Format tags found in the fmt chunk.
const (
	TagPCM        = 0x0001
	TagFloat      = 0x0003
	TagExtensible = 0xFFFE
)

// unknownSize is what streaming writers put in the data chunk size.
const unknownSize = 0xFFFFFFFF

// Header is the stream description gathered while walking the chunks up to
// the start of the sample data.
type Header struct {
	Tag        uint16 // effective tag, extensible resolved to its sub-format
	Extensible bool
	Channels   int
	SampleRate int
	Bits       int
	BlockAlign int

	// DataSize is the byte length of the data chunk, -1 when unknown. An
	// unknown sized chunk ends at the next chunk header or at EOF.
	DataSize int64
}

// Float reports whether samples are IEEE floats.
func (h Header) Float() bool { return h.Tag == TagFloat }

// Encoding maps the header to a normalizer encoding. Float64 is returned as
// is; it is outside the normalization table.
func (h Header) Encoding() (utils.Encoding, error) {
	switch h.Tag {
	case TagPCM:
		return utils.Encoding{Family: utils.Integer, Bits: h.Bits}, nil
	case TagFloat:
		return utils.Encoding{Family: utils.Float, Bits: h.Bits}, nil
	}
	return utils.Encoding{}, fmt.Errorf("%w: %#04x", ErrUnsupportedFormatTag, h.Tag)
}

// Frames is the frame count announced by the data chunk, -1 when unknown.
func (h Header) Frames() int64 {
	if h.DataSize < 0 || h.BlockAlign == 0 {
		return -1
	}
	return h.DataSize / int64(h.BlockAlign)
}

// ReadHeader walks the RIFF chunks of r and stops at the first byte of
// sample data. Chunks other than fmt and data are skipped.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header

	riff := make([]byte, 12)
	if _, err := io.ReadFull(r, riff); err != nil {
		return h, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if !bytes.Equal(riff[:4], []byte("RIFF")) || !bytes.Equal(riff[8:12], []byte("WAVE")) {
		return h, ErrNotWavFile
	}

	var (
		chunk  [8]byte
		gotFmt bool
	)

	for {
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return h, fmt.Errorf("%w: no data chunk", ErrUnsupportedWavChunks)
			}
			return h, fmt.Errorf("%w", err)
		}

		id := string(chunk[:4])
		size := binary.LittleEndian.Uint32(chunk[4:])

		switch id {
		case "fmt ":
			if size < 16 || size > 1024 {
				return h, fmt.Errorf("%w: fmt chunk of %d bytes", ErrUnsupportedWavLayout, size)
			}

			body := make([]byte, size+size%2)
			if _, err := io.ReadFull(r, body); err != nil {
				return h, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
			}
			if err := h.parseFmt(body[:size]); err != nil {
				return h, err
			}
			gotFmt = true

		case "data":
			if !gotFmt {
				return h, fmt.Errorf("%w: data before fmt", ErrUnsupportedWavChunks)
			}

			h.DataSize = int64(size)
			if size == unknownSize || size == 0 {
				h.DataSize = -1
			}
			return h, nil

		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)+int64(size%2)); err != nil {
				return h, fmt.Errorf("%w: chunk %q: %w", ErrUnsupportedWavChunks, id, err)
			}
		}
	}
}

func (h *Header) parseFmt(b []byte) error {
	h.Tag = binary.LittleEndian.Uint16(b[0:2])
	h.Channels = int(binary.LittleEndian.Uint16(b[2:4]))
	h.SampleRate = int(binary.LittleEndian.Uint32(b[4:8]))
	h.BlockAlign = int(binary.LittleEndian.Uint16(b[12:14]))
	h.Bits = int(binary.LittleEndian.Uint16(b[14:16]))

	if h.Tag == TagExtensible {
		if len(b) < 40 {
			return fmt.Errorf("%w: short extensible fmt", ErrUnsupportedWavLayout)
		}
		h.Extensible = true
		// first two bytes of the sub-format GUID carry the plain tag
		h.Tag = binary.LittleEndian.Uint16(b[24:26])
	}

	switch {
	case h.Channels < 1:
		return fmt.Errorf("%w: %d channels", ErrUnsupportedWavLayout, h.Channels)
	case h.SampleRate < 1:
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedWavLayout, h.SampleRate)
	case h.Bits%8 != 0 || h.Bits == 0:
		return fmt.Errorf("%w: %d bits per sample", ErrUnsupportedWavLayout, h.Bits)
	case h.BlockAlign != h.Channels*h.Bits/8:
		return fmt.Errorf("%w: block align %d for %d x %d bits", ErrUnsupportedWavLayout, h.BlockAlign, h.Channels, h.Bits)
	}

	switch h.Tag {
	case TagPCM:
		if h.Bits > 32 {
			return fmt.Errorf("%w: %d bit integer", ErrUnsupportedWavLayout, h.Bits)
		}
	case TagFloat:
		if h.Bits != 32 && h.Bits != 64 {
			return fmt.Errorf("%w: %d bit float", ErrUnsupportedWavLayout, h.Bits)
		}
	default:
		return fmt.Errorf("%w: %#04x", ErrUnsupportedFormatTag, h.Tag)
	}

	return nil
}
