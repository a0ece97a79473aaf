// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ik5/sampledeck/internal/mailbox"
)

// State is the owner goroutine's last published state.
type State int32

const (
	Idle State = iota
	Playing
	Degraded
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Degraded:
		return "degraded"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

type Config struct {
	SampleRate int
	Channels   int
	// BufferSize is the device buffer length; zero lets the driver pick.
	BufferSize time.Duration
	// ReapInterval is how often finished voices are looked for.
	ReapInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		SampleRate:   48000,
		Channels:     2,
		ReapInterval: 100 * time.Millisecond,
	}
}

// Service accepts play and stop requests from any goroutine and hands them
// to a single owner goroutine, the only code that touches the device.
type Service struct {
	cfg    Config
	dec    Decoder
	open   DeviceOpener
	logger *log.Logger

	box    *mailbox.Mailbox[command]
	state  atomic.Int32
	exited chan struct{}
}

// New starts the owner goroutine. A nil opener uses OpenOto and a nil
// logger uses log.Default().
func New(cfg Config, dec Decoder, open DeviceOpener, logger *log.Logger) *Service {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = def.Channels
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = def.ReapInterval
	}
	if open == nil {
		open = OpenOto
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Service{
		cfg:    cfg,
		dec:    dec,
		open:   open,
		logger: logger,
		box:    mailbox.New[command](),
		exited: make(chan struct{}),
	}

	go newOwner(s).run()
	return s
}

// Play asks for path to be played, replacing whatever is playing. It does
// not wait: decode and device failures are logged, never returned.
func (s *Service) Play(path string) error {
	return s.send(command{kind: cmdPlay, path: path})
}

// Stop silences the current voice, if any.
func (s *Service) Stop() {
	_ = s.send(command{kind: cmdStop})
}

// Flush waits until every command sent before it has been handled.
func (s *Service) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if err := s.send(command{kind: cmdFlush, done: done}); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-s.exited:
		return ErrServiceUnavailable
	case <-ctx.Done():
		return fmt.Errorf("flush: %w", ctx.Err())
	}
}

func (s *Service) State() State {
	return State(s.state.Load())
}

// Close lets the owner finish queued commands, release the voice and the
// device, and exit. It blocks until the owner is gone.
func (s *Service) Close() error {
	s.box.Close()
	<-s.exited
	return nil
}

func (s *Service) send(c command) error {
	select {
	case <-s.exited:
		return ErrServiceUnavailable
	default:
	}

	if err := s.box.Push(c); err != nil {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return nil
}

func (s *Service) setState(st State) {
	s.state.Store(int32(st))
}
