package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the render settings. A TOML file supplies them; command-line
// flags override the file.
type Config struct {
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	SRGB     bool   `toml:"srgb"`
	Output   string `toml:"output"`
	LogLevel string `toml:"log_level"`

	// Sprites is the directory sprite textures resolve against. Empty means
	// the directory of the scene file.
	Sprites string `toml:"sprites"`

	// AtlasSize is the glyph and sprite atlas size in texels.
	AtlasSize uint32 `toml:"atlas_size"`
}

// DefaultConfig returns the settings used when neither file nor flags set a value.
func DefaultConfig() Config {
	return Config{
		Width:     800,
		Height:    600,
		SRGB:      true,
		Output:    "out.png",
		LogLevel:  "info",
		AtlasSize: 2048,
	}
}

// LoadConfig reads a TOML config file over the defaults. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("config: %s: %s", path, strict.String())
		}
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if _, err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings and returns the parsed log level.
func (c Config) Validate() (slog.Level, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return 0, fmt.Errorf("config: invalid size %dx%d", c.Width, c.Height)
	}
	if c.Output == "" {
		return 0, errors.New("config: empty output path")
	}
	return c.Level()
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
