// SPDX-License-Identifier: EPL-2.0

// Package playback plays one sample at a time through a single output
// device.
//
// A Service is safe for concurrent use. Play and Stop only enqueue a
// command and return; one owner goroutine, locked to its OS thread, opens
// the device, decodes, and starts and retires voices. At most one voice
// exists at any time and a new Play always retires the current one first.
//
// Outcomes are reported through the logger only:
//
//	audio: device error   the device could not be opened; commands are dropped
//	audio: decode error   every decode tier failed for path
//	audio: sink error     the device refused the decoded buffer
//
// A typical setup:
//
//	chain := decode.Default(decode.Options{})
//	svc := playback.New(playback.DefaultConfig(), chain, nil, logger)
//	defer svc.Close()
//
//	_ = svc.Play("kick.wav")
package playback
