// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bufio"
	"bytes"
	"io"
)

// trailingChunks are the chunk ids writers place after the sample data.
var trailingChunks = [][]byte{
	[]byte("LIST"), []byte("id3 "), []byte("ID3 "), []byte("JUNK"), []byte("PAD "),
	[]byte("fact"), []byte("cue "), []byte("smpl"), []byte("inst"), []byte("acid"),
	[]byte("bext"), []byte("iXML"), []byte("_PMX"),
}

// chunkEndReader reads a data chunk of unknown size up to the header of the
// next chunk, or to the end of the stream. Chunks start on even offsets
// relative to the data.
type chunkEndReader struct {
	br   *bufio.Reader
	off  int64
	done bool
}

func newChunkEndReader(r io.Reader) *chunkEndReader {
	return &chunkEndReader{br: bufio.NewReaderSize(r, 64<<10)}
}

func (c *chunkEndReader) Read(p []byte) (int, error) {
	if c.done {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	want := min(len(p), c.br.Size()-8)
	ahead, err := c.br.Peek(want + 8)
	if len(ahead) == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	n := min(want, len(ahead))
	for i := int(c.off % 2); i < n && i+8 <= len(ahead); i += 2 {
		if isTrailingChunk(ahead[i : i+4]) {
			n, c.done = i, true
			break
		}
	}

	copy(p, ahead[:n])
	_, _ = c.br.Discard(n)
	c.off += int64(n)

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func isTrailingChunk(id []byte) bool {
	for _, t := range trailingChunks {
		if bytes.Equal(id, t) {
			return true
		}
	}
	return false
}
