// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with
// github.com/jfreymuth/oggvorbis.
//
// A change of sample rate or channel count mid-stream is reported as
// audio.ErrFormatChanged; corrupt packets as audio.ErrDecodeFault.
package vorbis
