// SPDX-License-Identifier: EPL-2.0

// Package decode turns sample files into audio.Buffer values through an
// ordered chain of tiers.
//
// The default chain tries, in order:
//
//   - structured: WAV parsed with go-audio/wav and normalized from the
//     encoding table (int8, int16, int24, int32, float32)
//   - probe: content sniffing over the streaming wav, aiff, ogg and mp3
//     decoders, skipping bad packets and surviving format resets
//   - generic: the beep decoders (wav, flac, mp3, vorbis)
//   - external: ffmpeg, only when a binary is configured
//
// The first tier that yields a non-empty buffer wins. When all fail the
// error is an *Error listing each tier's failure in order.
package decode
