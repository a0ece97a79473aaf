// SPDX-License-Identifier: EPL-2.0

// Package sampledeck is the engine behind a sample browser: it decodes
// audio files of any common layout into one canonical float32 form and
// plays them one at a time.
//
// # Layout
//
//   - utils: the sample normalizer (int8, int16, int24, int32 and float32
//     to float32, unclamped) and output PCM helpers
//   - audio: the canonical Buffer, the streaming Source interface, the
//     format Registry, the Resampler and the ChannelMixer
//   - formats/wav, formats/aiff, formats/mp3, formats/vorbis: streaming
//     decoders, plus the go-audio based WAV loader
//   - decode: the tiered decode chain
//   - playback: the playback service and its owner goroutine
//
// # Decoding
//
//	chain := decode.Default(decode.Options{})
//	buf, err := chain.Decode("loops/break.wav")
//	if err != nil {
//		var derr *decode.Error
//		if errors.As(err, &derr) {
//			for _, t := range derr.Tiers {
//				fmt.Println(t.Tier, t.Err)
//			}
//		}
//	}
//
// # Playing
//
//	svc := playback.New(playback.DefaultConfig(), chain, nil, logger)
//	defer svc.Close()
//	_ = svc.Play("loops/break.wav")
//	svc.Stop()
//
// # Previews
//
// RenderPreview writes any decoded buffer as a small 16-bit mono WAV,
// and ResampleToMono16 exposes the same conversion for streaming sources.
package sampledeck
