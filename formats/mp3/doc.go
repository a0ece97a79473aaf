// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio with
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so the source reports two channels
// whatever the file holds. Broken frames surface as audio.ErrDecodeFault.
package mp3
