// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/phylame/jem/lib/pmab"
	"github.com/phylame/jem/lib/variant"
	"github.com/phylame/jem/lib/vdm"
)

// EnvVar names the environment variable Load reads.
const EnvVar = "JEM_CONFIG"

// Config is the master configuration for jem.
type Config struct {
	// PMAB configures the codec.
	PMAB PMABConfig `yaml:"pmab" toml:"pmab"`

	// Container configures output containers.
	Container ContainerConfig `yaml:"container" toml:"container"`

	// Log configures the command logger.
	Log LogConfig `yaml:"log" toml:"log"`
}

// PMABConfig configures encoding and decoding.
type PMABConfig struct {
	// TextEncoding is the charset for externalized text.
	// Default: UTF-8
	TextEncoding string `yaml:"text_encoding" toml:"text_encoding"`

	// DateFormat, TimeFormat and DateTimeFormat are yyyy-MM-dd style
	// patterns. The encoder writes them into type tags; the decoder
	// uses them for items that carry none (empty selects the loose
	// ISO grammar when decoding).
	DateFormat     string `yaml:"date_format" toml:"date_format"`
	TimeFormat     string `yaml:"time_format" toml:"time_format"`
	DateTimeFormat string `yaml:"datetime_format" toml:"datetime_format"`

	// TimeZone is an IANA zone name for temporal values. Empty or
	// "Local" means the system zone.
	TimeZone string `yaml:"time_zone" toml:"time_zone"`

	// Strict rejects well-known attributes of the wrong type while
	// decoding.
	Strict bool `yaml:"strict" toml:"strict"`
}

// ContainerConfig configures containers written by jem.
type ContainerConfig struct {
	// Type is "zip" or "dir".
	// Default: zip
	Type string `yaml:"type" toml:"type"`

	// Compression is "deflate", "store" or "zstd".
	// Default: deflate
	Compression string `yaml:"compression" toml:"compression"`

	// Level is the compression level; 0 selects the method default.
	Level int `yaml:"level" toml:"level"`

	// TempDir is where repack stages output before renaming it into
	// place. Empty stages next to the destination, which keeps the
	// final rename on one file system.
	TempDir string `yaml:"temp_dir" toml:"temp_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	// Default: info
	Level string `yaml:"level" toml:"level"`

	// Format is auto, text or json. Auto picks text on a terminal.
	// Default: auto
	Format string `yaml:"format" toml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		PMAB: PMABConfig{
			TextEncoding:   variant.DefaultCharset,
			DateFormat:     pmab.DefaultDateFormat,
			TimeFormat:     pmab.DefaultTimeFormat,
			DateTimeFormat: pmab.DefaultDateTimeFormat,
		},
		Container: ContainerConfig{
			Type:        string(vdm.TypeZip),
			Compression: vdm.CompressionDeflate.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by JEM_CONFIG. It
// fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your jem.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// Resolve loads the file named by flagPath, else the file named by
// JEM_CONFIG, else returns Default.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	if os.Getenv(EnvVar) != "" {
		return Load()
	}
	return Default(), nil
}

// LoadFile loads configuration from a specific file path, on top of
// Default, and validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".json", ".jsonc":
		err = yaml.Unmarshal(jsonc.ToJSON(data), c)
	default:
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":   os.Getenv("HOME"),
		"TMPDIR": os.TempDir(),
	}
	c.Container.TempDir = expandVars(c.Container.TempDir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if _, err := variant.Charset(c.PMAB.TextEncoding); err != nil {
		errs = append(errs, fmt.Errorf("pmab.text_encoding: %w", err))
	}
	for key, pattern := range map[string]string{
		"pmab.date_format":     c.PMAB.DateFormat,
		"pmab.time_format":     c.PMAB.TimeFormat,
		"pmab.datetime_format": c.PMAB.DateTimeFormat,
	} {
		if _, err := variant.Layout(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if _, err := c.location(); err != nil {
		errs = append(errs, fmt.Errorf("pmab.time_zone: %w", err))
	}

	if _, err := vdm.ParseType(c.Container.Type); err != nil {
		errs = append(errs, fmt.Errorf("container.type: %w", err))
	} else if _, err := c.WriterOptions(); err != nil {
		errs = append(errs, fmt.Errorf("container: %w", err))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	return errors.Join(errs...)
}

func (c *Config) location() (*time.Location, error) {
	if c.PMAB.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.PMAB.TimeZone)
}

// EncoderOptions translates the PMAB section into encoder options.
func (c *Config) EncoderOptions(registry *variant.Registry, logger *slog.Logger) (pmab.EncoderOptions, error) {
	location, err := c.location()
	if err != nil {
		return pmab.EncoderOptions{}, err
	}
	return pmab.EncoderOptions{
		Registry:       registry,
		TextEncoding:   c.PMAB.TextEncoding,
		DateFormat:     c.PMAB.DateFormat,
		TimeFormat:     c.PMAB.TimeFormat,
		DateTimeFormat: c.PMAB.DateTimeFormat,
		Location:       location,
		Logger:         logger,
	}, nil
}

// DecoderOptions translates the PMAB section into decoder options.
// Temporal patterns are left empty so that items without a format
// parameter are read with the tolerant loose ISO grammar.
func (c *Config) DecoderOptions(registry *variant.Registry, logger *slog.Logger) (pmab.DecoderOptions, error) {
	location, err := c.location()
	if err != nil {
		return pmab.DecoderOptions{}, err
	}
	return pmab.DecoderOptions{
		Registry:     registry,
		TextEncoding: c.PMAB.TextEncoding,
		Location:     location,
		Strict:       c.PMAB.Strict,
		Logger:       logger,
	}, nil
}

// WriterOptions translates the container section into zip writer
// options.
func (c *Config) WriterOptions() (vdm.WriterOptions, error) {
	compression, err := vdm.ParseCompression(c.Container.Compression)
	if err != nil {
		return vdm.WriterOptions{}, err
	}
	options := vdm.WriterOptions{Compression: compression, Level: c.Container.Level}
	if err := options.Validate(); err != nil {
		return vdm.WriterOptions{}, err
	}
	return options, nil
}

// ContainerType returns the configured output container type.
func (c *Config) ContainerType() (vdm.Type, error) {
	return vdm.ParseType(c.Container.Type)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
