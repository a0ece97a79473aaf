// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ik5/sampledeck"
	"github.com/ik5/sampledeck/audio"
	"github.com/ik5/sampledeck/decode"
	"github.com/ik5/sampledeck/formats/wav"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		out    string
		rate   int
		export string
		bits   int
	)

	cmd := &cobra.Command{
		Use:   "decode FILE",
		Short: "Decode a file and describe it, optionally writing a preview WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			buf, err := a.chain().Decode(path)
			if err != nil {
				printDecodeError(cmd.ErrOrStderr(), err)
				return fmt.Errorf("cannot decode %s", path)
			}

			describe(cmd.OutOrStdout(), path, buf)

			if export != "" {
				if err := writeExport(export, buf, bits); err != nil {
					return err
				}
			}
			if out != "" {
				return writePreview(out, buf, rate)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write a 16-bit mono preview WAV to this path")
	cmd.Flags().IntVar(&rate, "preview-rate", sampledeck.DefaultPreviewRate, "sample rate of the preview")
	cmd.Flags().StringVar(&export, "export", "", "write the decoded audio as integer PCM WAV at its own rate and channels")
	cmd.Flags().IntVar(&bits, "bits", 24, "bit depth of --export (16, 24 or 32)")
	return cmd
}

func describe(w io.Writer, path string, buf *audio.Buffer) {
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  channels: %d\n", buf.Channels)
	fmt.Fprintf(w, "  rate:     %s Hz\n", humanize.Comma(int64(buf.SampleRate)))
	fmt.Fprintf(w, "  frames:   %s\n", humanize.Comma(int64(buf.Frames())))
	fmt.Fprintf(w, "  duration: %s\n", buf.Duration())
	fmt.Fprintf(w, "  peak:     %.4f\n", buf.Peak())
}

// printDecodeError lists each tier's failure on its own line.
func printDecodeError(w io.Writer, err error) {
	var derr *decode.Error
	if !errors.As(err, &derr) {
		fmt.Fprintln(w, err)
		return
	}

	fmt.Fprintf(w, "%s: no decoder could read this file\n", derr.Path)
	for _, t := range derr.Tiers {
		fmt.Fprintf(w, "  %-10s %v\n", t.Tier, t.Err)
	}
}

func writePreview(path string, buf *audio.Buffer, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}

	if err := sampledeck.RenderPreview(f, buf, rate); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close preview: %w", err)
	}
	return nil
}

func writeExport(path string, buf *audio.Buffer, bits int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}

	if err := wav.Encode(f, buf, bits); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	return nil
}
