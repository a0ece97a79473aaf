// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoded-audio primitives shared by the decoders
// and the playback engine.
//
// # Source Interface
//
// Every format decoder and every processing stage implements Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples returns interleaved float32 samples. io.EOF marks the end of
// the stream and may arrive together with the final samples.
//
// # Buffers
//
// A Buffer is a whole clip held in memory, the shape every decode tier
// produces and the playback engine consumes:
//
//	buf, err := audio.ReadAll(src)
//	fmt.Println(buf.Channels, buf.SampleRate, buf.Duration())
//
// Samples are not clamped. Values outside [-1, 1] from float sources are
// kept as decoded.
//
// # Processing
//
// Resample converts a Source to another rate with cubic interpolation and
// NewChannelMixer remaps its channel layout:
//
//	src := audio.NewChannelMixer(audio.Resample(buf.NewSource(), 48000), 2)
//
// # Registry
//
// Registry maps format keys to decoders. Probe picks one by sniffing the
// first bytes of a stream and falls back to the file extension:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{}, audio.Magic(0, "RIFF"))
//	format, dec, ok := registry.Probe(header, "kick.wav")
//
// # Errors
//
// ErrDecodeFault marks a packet that failed to decode but can be skipped.
// ErrFormatChanged tells the caller to instantiate the decoder again.
package audio
