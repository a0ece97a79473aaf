// SPDX-License-Identifier: EPL-2.0

// Command sampledeck browses, decodes and plays audio samples.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ik5/sampledeck/decode"
	"github.com/ik5/sampledeck/internal/config"
	"github.com/ik5/sampledeck/playback"
)

// Version is set at build time.
var Version = ""

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg        config.Config
	logger     *log.Logger
	configFile string

	// open is the output device opener; nil uses oto.
	open playback.DeviceOpener
}

func (a *app) chain() *decode.Chain {
	return decode.Default(a.cfg.DecodeOptions())
}

func (a *app) service() *playback.Service {
	return playback.New(a.cfg.Playback(), a.chain(), a.open, a.logger)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "sampledeck",
		Short:         "Browse, decode and play audio samples",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, used, err := config.Load(config.Options{ConfigFile: a.configFile, Flags: cmd.Flags()})
			if err != nil {
				return err
			}

			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if used != "" {
				logger.Debug("using configuration file", "path", used)
			}

			a.cfg, a.logger = cfg, logger
			return nil
		},
	}

	root.Version = Version
	if root.Version == "" {
		root.Version = "unknown (built from source)"
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: sampledeck.yaml in the user config dir)")
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		newPlayCmd(a),
		newDecodeCmd(a),
		newListCmd(a),
		newScanCmd(a),
		newShellCmd(a),
	)
	return root
}

func main() {
	root := newRootCmd(&app{})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sampledeck:", err)
		os.Exit(1)
	}
}
