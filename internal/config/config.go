package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"
)

const envPrefix = "WAYPOINT_"

// Config holds the settings of the httpserver binary.
type Config struct {
	Address      string
	Directory    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogLevel     string
	Color        bool
}

var ErrHelp = flag.ErrHelp

func defaults() Config {
	return Config{
		Address:      "127.0.0.1:4221",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		LogLevel:     "info",
		Color:        true,
	}
}

// Load resolves the configuration from flags, falling back to WAYPOINT_*
// environment variables and then to the defaults. Flags win over environment.
func Load(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	cfg := defaults()
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("httpserver", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Address, "addr", cfg.Address, "address to listen on")
	fs.StringVar(&cfg.Directory, "directory", cfg.Directory, "directory served by /files/:filename")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "deadline for reading a request, 0 disables it")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "deadline for writing a response, 0 disables it")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")
	noColor := fs.Bool("no-color", !cfg.Color, "disable colored logs")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg.Color = !*noColor

	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 {
		return Config{}, errors.New("timeouts must not be negative")
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(envPrefix + "ADDR"); v != "" {
		cfg.Address = v
	}
	if v := getenv(envPrefix + "DIRECTORY"); v != "" {
		cfg.Directory = v
	}
	if v := getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if getenv("NO_COLOR") != "" {
		cfg.Color = false
	}

	for name, dst := range map[string]*time.Duration{
		"READ_TIMEOUT":  &cfg.ReadTimeout,
		"WRITE_TIMEOUT": &cfg.WriteTimeout,
	} {
		v := getenv(envPrefix + name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}
	return nil
}
