// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files through
// github.com/go-audio/aiff.
//
// Integer PCM of 8, 16, 24 and 32 bits is supported, any channel count and
// sample rate. Samples are normalized by 2^(bits-1) without clamping.
//
//	src, err := aiff.Decoder{}.Decode(f)
//
// go-audio needs an io.ReadSeeker; other readers are buffered in memory.
package aiff
