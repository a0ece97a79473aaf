// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/sampledeck/playback"
)

var (
	errNoDevice  = errors.New("no audio output available")
	errNotPlayed = errors.New("could not play file")
)

func newPlayCmd(a *app) *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "play FILE...",
		Short: "Play files one after another",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			svc := a.service()
			defer svc.Close()

			var failed []error
			for _, path := range args {
				err := playOne(ctx, svc, path, !noWait)
				if errors.Is(err, errNoDevice) || ctx.Err() != nil {
					svc.Stop()
					return err
				}
				if err != nil {
					failed = append(failed, err)
				}
			}
			return errors.Join(failed...)
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "start each file without waiting for it to finish")
	return cmd
}

// playOne starts path and, when wait is set, blocks until it has finished.
func playOne(ctx context.Context, svc *playback.Service, path string, wait bool) error {
	if err := svc.Play(path); err != nil {
		return err
	}
	if err := svc.Flush(ctx); err != nil {
		return err
	}

	switch svc.State() {
	case playback.Degraded:
		return errNoDevice
	case playback.Idle:
		// the decode or sink error is already in the log
		return fmt.Errorf("%w: %s", errNotPlayed, path)
	}

	if !wait {
		return nil
	}

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for svc.State() == playback.Playing {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
	return nil
}
