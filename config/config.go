package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	HeadersLineSize struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}
)

type (
	Headers struct {
		// LineSize limits a single status, header, chunk-length or trailer line. The line
		// buffer persists among reads, so a line split between them is kept here until its
		// LF arrives. Exceeding the maximal boundary fails the response.
		LineSize HeadersLineSize `yaml:"line_size"`
		// Prealloc is the initial capacity of the response headers storage.
		Prealloc int `yaml:"prealloc"`
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket. A single processing step never reads more than that.
		ReadBufferSize int `yaml:"read_buffer_size"`
		// PollTimeout is how long a single processing step waits for the socket to become
		// readable. It must be kept as small as possible, as processing steps are expected
		// to return control to the caller almost immediately.
		PollTimeout time.Duration `yaml:"poll_timeout"`
		// DialTimeout limits resolving and connecting.
		DialTimeout time.Duration `yaml:"dial_timeout"`
		// WriteTimeout limits every single write into the socket. Zero disables it, so a
		// stalled peer blocks the sending call.
		WriteTimeout time.Duration `yaml:"write_timeout" test:"nullable"`
	}

	Log struct {
		// Level is one of debug, info, warn, error.
		Level string `yaml:"level"`
	}
)

// Config holds settings used across various parts of the client, mainly restrictions,
// limitations and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Headers Headers `yaml:"headers"`
	NET     NET     `yaml:"net"`
	Log     Log     `yaml:"log"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Headers: Headers{
			LineSize: HeadersLineSize{
				Default: 256,
				// lines longer than 16kb are most likely a broken or malicious peer
				Maximal: 16 * 1024,
			},
			Prealloc: 10,
		},
		NET: NET{
			ReadBufferSize: 2 * 1024,
			PollTimeout:    time.Millisecond,
			DialTimeout:    10 * time.Second,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Parse overlays YAML-encoded settings on top of defaults. Keys absent in data keep
// their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads the file and parses it as by Parse.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return Parse(data)
}

// SlogLevel returns the parsed Log.Level, falling back to info on unknown values.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func (c *Config) validate() error {
	switch {
	case c.NET.ReadBufferSize <= 0:
		return fmt.Errorf("config: net.read_buffer_size must be positive, got %d", c.NET.ReadBufferSize)
	case c.NET.PollTimeout <= 0:
		return fmt.Errorf("config: net.poll_timeout must be positive, got %s", c.NET.PollTimeout)
	case c.Headers.LineSize.Maximal < c.Headers.LineSize.Default:
		return fmt.Errorf(
			"config: headers.line_size.maximal (%d) is less than the default (%d)",
			c.Headers.LineSize.Maximal, c.Headers.LineSize.Default,
		)
	}

	return nil
}
