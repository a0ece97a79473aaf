// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ik5/sampledeck/internal/library"
	"github.com/ik5/sampledeck/playback"
)

const shellHelp = `commands:
  play PATH     play a file, replacing what is playing
  stop          stop playback
  state         show the playback state
  list [ROOT]   list WAV files
  info PATH     decode a file and describe it
  quit          leave the shell`

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive prompt driving one playback service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := a.service()
			defer svc.Close()

			return runShell(cmd.Context(), a, svc, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runShell(ctx context.Context, a *app, svc *playback.Service, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	prompt := func() { fmt.Fprint(out, "> ") }

	prompt()
	for sc.Scan() {
		verb, arg, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch verb {
		case "":
		case "quit", "exit":
			return nil
		case "help", "?":
			fmt.Fprintln(out, shellHelp)
		case "play":
			if arg == "" {
				fmt.Fprintln(out, "usage: play PATH")
				break
			}
			if err := svc.Play(arg); err != nil {
				return err
			}
		case "stop":
			svc.Stop()
		case "state":
			if err := svc.Flush(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, svc.State())
		case "list":
			root := arg
			if root == "" {
				root = a.cfg.Library.Root
			}
			entries, err := library.List(root, library.ListOptions{Limit: a.cfg.Library.Limit})
			if err != nil {
				fmt.Fprintln(out, err)
				break
			}
			for _, e := range entries {
				fmt.Fprintln(out, e.Path)
			}
		case "info":
			buf, err := a.chain().Decode(arg)
			if err != nil {
				printDecodeError(out, err)
				break
			}
			describe(out, arg, buf)
		default:
			fmt.Fprintf(out, "unknown command %q, try help\n", verb)
		}
		prompt()
	}

	return sc.Err()
}
