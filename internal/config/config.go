// SPDX-License-Identifier: EPL-2.0

// Package config loads sampledeck settings from defaults, a YAML file, the
// environment and command line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ik5/sampledeck/decode"
	"github.com/ik5/sampledeck/playback"
)

const (
	appName   = "sampledeck"
	envPrefix = "SAMPLEDECK_"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Device  Device  `mapstructure:"device" envPrefix:"DEVICE_"`
	Decode  Decode  `mapstructure:"decode" envPrefix:"DECODE_"`
	Library Library `mapstructure:"library" envPrefix:"LIBRARY_"`
	Log     Log     `mapstructure:"log" envPrefix:"LOG_"`
}

type Device struct {
	SampleRate   int           `mapstructure:"sample_rate" env:"SAMPLE_RATE"`
	Channels     int           `mapstructure:"channels" env:"CHANNELS"`
	BufferSize   time.Duration `mapstructure:"buffer_size" env:"BUFFER_SIZE"`
	ReapInterval time.Duration `mapstructure:"reap_interval" env:"REAP_INTERVAL"`
}

type Decode struct {
	// MaxFaults is how many consecutive bad packets a stream may have.
	MaxFaults int `mapstructure:"max_faults" env:"MAX_FAULTS"`
	// FFmpeg enables the external decode tier when set.
	FFmpeg  string        `mapstructure:"ffmpeg" env:"FFMPEG"`
	Timeout time.Duration `mapstructure:"timeout" env:"TIMEOUT"`
}

type Library struct {
	Root  string `mapstructure:"root" env:"ROOT"`
	Limit int    `mapstructure:"limit" env:"LIMIT"`
}

type Log struct {
	Level     string `mapstructure:"level" env:"LEVEL"`
	Format    string `mapstructure:"format" env:"FORMAT"`
	Timestamp bool   `mapstructure:"timestamp" env:"TIMESTAMP"`
}

func Default() Config {
	pb := playback.DefaultConfig()

	return Config{
		Device: Device{
			SampleRate:   pb.SampleRate,
			Channels:     pb.Channels,
			ReapInterval: pb.ReapInterval,
		},
		Decode: Decode{
			MaxFaults: 16,
			Timeout:   2 * time.Minute,
		},
		Library: Library{
			Root:  ".",
			Limit: 1000,
		},
		Log: Log{
			Level:     "info",
			Format:    "text",
			Timestamp: true,
		},
	}
}

// Options point Load at its inputs. Empty fields fall back to the usual
// locations.
type Options struct {
	// ConfigFile overrides the search of the user config directories.
	ConfigFile string
	// EnvFile is loaded into the environment when it exists. Defaults to
	// ".env".
	EnvFile string
	// Flags are applied last; only flags set on the command line count.
	Flags *pflag.FlagSet
	// Dirs overrides the directories searched for sampledeck.yaml.
	Dirs []string
}

// Load builds the configuration and validates it. It also reports which
// config file was read, if any.
func Load(opts Options) (Config, string, error) {
	cfg := Default()

	used, err := readFile(&cfg, opts)
	if err != nil {
		return cfg, used, err
	}

	if err := readEnv(&cfg, opts.EnvFile); err != nil {
		return cfg, used, err
	}

	if err := readFlags(&cfg, opts.Flags); err != nil {
		return cfg, used, err
	}

	return cfg, used, cfg.Validate()
}

// SearchDirs lists where sampledeck.yaml is looked for, most specific
// first.
func SearchDirs() ([]string, error) {
	dirs, err := gap.NewScope(gap.User, appName).ConfigDirs()
	if err != nil {
		return nil, fmt.Errorf("config dirs: %w", err)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}
	if c := os.Getenv(envPrefix + "CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}
	return dirs, nil
}

func readFile(cfg *Config, opts Options) (string, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		dirs := opts.Dirs
		if dirs == nil {
			var err error
			if dirs, err = SearchDirs(); err != nil {
				return "", err
			}
		}
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
		v.SetConfigName(appName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return v.ConfigFileUsed(), fmt.Errorf("parse config %s: %w", v.ConfigFileUsed(), err)
	}
	return v.ConfigFileUsed(), nil
}

func readEnv(cfg *Config, envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"rate":         "device.sample_rate",
	"channels":     "device.channels",
	"buffer":       "device.buffer_size",
	"max-faults":   "decode.max_faults",
	"ffmpeg":       "decode.ffmpeg",
	"library":      "library.root",
	"limit":        "library.limit",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"no-timestamp": "log.timestamp",
}

// AddFlags registers the flags Load understands on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.Int("rate", d.Device.SampleRate, "output sample rate in Hz")
	fs.Int("channels", d.Device.Channels, "output channel count")
	fs.Duration("buffer", d.Device.BufferSize, "device buffer length (0 lets the driver pick)")
	fs.Int("max-faults", d.Decode.MaxFaults, "consecutive bad packets tolerated per stream")
	fs.String("ffmpeg", d.Decode.FFmpeg, "ffmpeg binary for the external decode tier")
	fs.String("library", d.Library.Root, "sample library root")
	fs.Int("limit", d.Library.Limit, "maximum files listed from the library")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.String("log-format", d.Log.Format, "log format (text, logfmt, json)")
	fs.Bool("no-timestamp", false, "omit timestamps from log lines")
}

func readFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}

	v := viper.New()
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if f.Name == "no-timestamp" {
			v.Set(key, f.Value.String() != "true")
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = errors.Join(bindErr, err)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Device.SampleRate < 8000 || c.Device.SampleRate > 384000 {
		errs = append(errs, fmt.Errorf("device.sample_rate %d outside 8000..384000", c.Device.SampleRate))
	}
	if c.Device.Channels < 1 || c.Device.Channels > 8 {
		errs = append(errs, fmt.Errorf("device.channels %d outside 1..8", c.Device.Channels))
	}
	if c.Device.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("device.buffer_size %s is negative", c.Device.BufferSize))
	}
	if c.Device.ReapInterval <= 0 {
		errs = append(errs, fmt.Errorf("device.reap_interval %s must be positive", c.Device.ReapInterval))
	}
	if c.Decode.MaxFaults < 0 {
		errs = append(errs, fmt.Errorf("decode.max_faults %d is negative", c.Decode.MaxFaults))
	}
	if c.Library.Limit < 1 {
		errs = append(errs, fmt.Errorf("library.limit %d must be at least 1", c.Library.Limit))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := formatter(c.Log.Format); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func (c Config) Playback() playback.Config {
	return playback.Config{
		SampleRate:   c.Device.SampleRate,
		Channels:     c.Device.Channels,
		BufferSize:   c.Device.BufferSize,
		ReapInterval: c.Device.ReapInterval,
	}
}

func (c Config) DecodeOptions() decode.Options {
	return decode.Options{
		MaxFaults:  c.Decode.MaxFaults,
		FFmpeg:     c.Decode.FFmpeg,
		Timeout:    c.Decode.Timeout,
		SampleRate: c.Device.SampleRate,
		Channels:   c.Device.Channels,
	}
}

// Logger builds the application logger writing to w.
func (c Config) Logger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	f, err := formatter(c.Log.Format)
	if err != nil {
		return nil, err
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: c.Log.Timestamp,
		Prefix:          appName,
		Level:           level,
		Formatter:       f,
	}), nil
}

func formatter(name string) (log.Formatter, error) {
	switch name {
	case "", "text":
		return log.TextFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	}
	return 0, fmt.Errorf("log.format %q: want text, logfmt or json", name)
}
