// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ik5/sampledeck/internal/library"
)

func rootArg(a *app, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Library.Root
}

func newListCmd(a *app) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "list [ROOT]",
		Short: "List WAV files under a library root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := library.List(rootArg(a, args), library.ListOptions{Limit: a.cfg.Library.Limit})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, e := range entries {
				if !long {
					fmt.Fprintln(w, e.Path)
					continue
				}
				info, err := library.Stat(e.Path)
				if err != nil {
					a.logger.Warn("library: stat", "path", e.Path, "err", err)
					continue
				}
				printInfo(w, info)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "show size, duration and age")
	return cmd
}

func newScanCmd(a *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "scan [ROOT]",
		Short: "Collect metadata for every WAV file under a library root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := library.NewScanner(library.ListOptions{}, a.logger)
			id := s.Start(cmd.Context(), rootArg(a, args))
			a.logger.Debug("library: scan started", "job", id)

			st, err := poll(cmd.Context(), a.logger, s, id, interval)
			if err != nil {
				return err
			}
			if st.Err != nil {
				return st.Err
			}

			files, err := s.Files(id)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			var size int64
			var length time.Duration
			for _, f := range files {
				printInfo(w, f)
				size += f.Size
				length += f.Duration
			}
			fmt.Fprintf(w, "%s files, %s, %s of audio\n",
				humanize.Comma(int64(len(files))), humanize.Bytes(uint64(size)), length.Round(time.Second))
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "poll", 100*time.Millisecond, "progress polling interval")
	return cmd
}

// poll reports progress until job id is done.
func poll(ctx context.Context, logger *log.Logger, s *library.Scanner, id string, every time.Duration) (library.Status, error) {
	tick := time.NewTicker(max(every, time.Millisecond))
	defer tick.Stop()

	last := -1
	for {
		st, err := s.Status(id)
		if err != nil {
			return st, err
		}
		if st.Done {
			return st, nil
		}
		if st.Processed != last {
			last = st.Processed
			logger.Info("library: scanning", "processed", st.Processed, "total", st.Total)
		}

		select {
		case <-ctx.Done():
			_ = s.Cancel(id)
			s.Wait()
		case <-tick.C:
		}
	}
}

func printInfo(w io.Writer, f library.FileInfo) {
	fmt.Fprintf(w, "%-40s %9s %8s  %s\n",
		f.Name, humanize.Bytes(uint64(f.Size)), f.Duration.Round(time.Millisecond), humanize.Time(f.ModTime))
}
