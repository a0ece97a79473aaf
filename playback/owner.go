// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"fmt"
	"runtime"
	"time"
)

type commandKind int

const (
	cmdPlay commandKind = iota
	cmdStop
	cmdFlush
)

type command struct {
	kind commandKind
	path string
	done chan struct{}
}

// owner is the state held by the owner goroutine. Nothing here is shared.
type owner struct {
	*Service

	dev   Device
	voice Voice
	path  string
}

func newOwner(s *Service) *owner {
	return &owner{Service: s}
}

func (o *owner) run() {
	// audio backends expect the device to stay on the thread that opened it
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(o.exited)

	o.openDevice()

	reap := time.NewTicker(o.cfg.ReapInterval)
	defer reap.Stop()

	for {
		select {
		case <-o.box.Ready():
			o.drain()
			if o.box.Closed() && o.box.Len() == 0 {
				o.shutdown()
				return
			}
		case <-reap.C:
			o.reap()
		}
	}
}

func (o *owner) openDevice() {
	dev, err := o.safeOpen()
	if err != nil {
		o.logger.Error("audio: device error", "err", fmt.Errorf("%w: %w", ErrDeviceInit, err))
		o.setState(Degraded)
		return
	}
	if dev == nil {
		o.logger.Error("audio: device error", "err", fmt.Errorf("%w: %w", ErrDeviceInit, ErrNoDevice))
		o.setState(Degraded)
		return
	}

	o.dev = dev
	o.setState(Idle)
	o.logger.Debug("audio: device open", "rate", o.cfg.SampleRate, "channels", o.cfg.Channels)
}

func (o *owner) safeOpen() (dev Device, err error) {
	defer func() {
		if r := recover(); r != nil {
			dev, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return o.open(o.cfg)
}

func (o *owner) drain() {
	for {
		c, ok := o.box.Pop()
		if !ok {
			return
		}
		o.handle(c)
	}
}

func (o *owner) handle(c command) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("audio: command failed", "path", c.path, "err", fmt.Errorf("panic: %v", r))
			o.retire()
			if o.dev != nil {
				o.setState(Idle)
			}
		}
	}()

	switch c.kind {
	case cmdFlush:
		close(c.done)
	case cmdStop:
		o.stop()
	case cmdPlay:
		o.play(c.path)
	}
}

func (o *owner) stop() {
	if o.dev == nil {
		o.logger.Debug("audio: no device, dropping stop")
		return
	}
	if o.voice == nil {
		o.logger.Debug("audio: stop while idle")
		return
	}

	o.retire()
	o.setState(Idle)
}

func (o *owner) play(path string) {
	if o.dev == nil {
		o.logger.Debug("audio: no device, dropping play", "path", path)
		return
	}

	o.retire()
	o.setState(Idle)

	// only the last queued request is audible, so skip decoding this one.
	// A bad path skipped here is never decoded and logs no decode error.
	if o.box.Any(func(c command) bool { return c.kind != cmdFlush }) {
		o.logger.Debug("audio: play superseded", "path", path)
		return
	}

	buf, err := o.dec.Decode(path)
	if err != nil {
		o.logger.Error("audio: decode error", "path", path, "err", err)
		return
	}

	v, err := o.dev.NewVoice(buf)
	if err != nil {
		o.logger.Error("audio: sink error", "path", path, "err", err)
		return
	}

	v.Play()
	o.voice, o.path = v, path
	o.setState(Playing)
	o.logger.Debug("audio: playing", "path", path, "channels", buf.Channels, "rate", buf.SampleRate, "duration", buf.Duration())
}

// retire stops and releases the current voice, if any.
func (o *owner) retire() {
	if o.voice == nil {
		return
	}

	if err := o.voice.Close(); err != nil {
		o.logger.Warn("audio: voice close", "path", o.path, "err", err)
	}
	o.voice, o.path = nil, ""
}

func (o *owner) reap() {
	if o.voice == nil || o.voice.IsPlaying() {
		return
	}

	o.logger.Debug("audio: voice finished", "path", o.path)
	o.retire()
	o.setState(Idle)
}

func (o *owner) shutdown() {
	o.retire()
	if o.dev != nil {
		if err := o.dev.Close(); err != nil {
			o.logger.Warn("audio: device close", "err", err)
		}
		o.dev = nil
	}
	o.setState(Stopped)
}
