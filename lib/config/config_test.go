// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phylame/jem/lib/variant"
	"github.com/phylame/jem/lib/vdm"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.PMAB.TextEncoding != "UTF-8" {
		t.Errorf("expected text_encoding=UTF-8, got %s", cfg.PMAB.TextEncoding)
	}
	if cfg.PMAB.DateFormat != "yyyy-MM-dd" {
		t.Errorf("expected date_format=yyyy-MM-dd, got %s", cfg.PMAB.DateFormat)
	}
	if cfg.Container.Type != "zip" || cfg.Container.Compression != "deflate" {
		t.Errorf("expected zip/deflate container, got %s/%s", cfg.Container.Type, cfg.Container.Compression)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "auto" {
		t.Errorf("expected info/auto logging, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_RequiresJemConfig(t *testing.T) {
	t.Setenv(EnvVar, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when JEM_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "JEM_CONFIG environment variable not set") {
		t.Errorf("unexpected error message: %q", err)
	}
}

func TestLoad_WithJemConfig(t *testing.T) {
	path := writeConfig(t, "jem.yaml", `
pmab:
  text_encoding: GBK
  time_zone: UTC
  strict: true
container:
  compression: zstd
  level: 9
log:
  level: debug
`)
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.PMAB.TextEncoding != "GBK" || !cfg.PMAB.Strict {
		t.Errorf("pmab section not loaded: %+v", cfg.PMAB)
	}
	// Unset keys keep their defaults.
	if cfg.PMAB.DateFormat != "yyyy-MM-dd" || cfg.Container.Type != "zip" {
		t.Errorf("defaults lost: %+v %+v", cfg.PMAB, cfg.Container)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}

	options, err := cfg.WriterOptions()
	if err != nil {
		t.Fatalf("WriterOptions: %v", err)
	}
	if options.Compression != vdm.CompressionZstd || options.Level != 9 {
		t.Errorf("WriterOptions = %+v", options)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "jem.jsonc", `{
  // Text payloads for legacy readers.
  "pmab": {"text_encoding": "Big5", "datetime_format": "yyyy/MM/dd HH:mm",},
  "container": {"type": "dir"},
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.PMAB.TextEncoding != "Big5" || cfg.PMAB.DateTimeFormat != "yyyy/MM/dd HH:mm" {
		t.Errorf("pmab section not loaded: %+v", cfg.PMAB)
	}
	containerType, err := cfg.ContainerType()
	if err != nil || containerType != vdm.TypeDir {
		t.Errorf("ContainerType() = %v, %v", containerType, err)
	}
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeConfig(t, "jem.toml", `
[pmab]
text_encoding = "GBK"
strict = true

[container]
compression = "store"

[log]
format = "json"
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.PMAB.TextEncoding != "GBK" || !cfg.PMAB.Strict {
		t.Errorf("pmab section not loaded: %+v", cfg.PMAB)
	}
	if cfg.PMAB.DateFormat != "yyyy-MM-dd" {
		t.Errorf("unset date_format = %q, want the default", cfg.PMAB.DateFormat)
	}
	if cfg.Container.Compression != "store" || cfg.Container.Type != "zip" {
		t.Errorf("container section = %+v", cfg.Container)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("log section = %+v", cfg.Log)
	}

	if _, err := LoadFile(writeConfig(t, "bad.toml", "[pmab\n")); err == nil {
		t.Error("malformed TOML loaded")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
	if _, err := LoadFile(writeConfig(t, "bad.yaml", "pmab: [unclosed")); err == nil {
		t.Error("malformed YAML loaded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"charset", func(c *Config) { c.PMAB.TextEncoding = "klingon-8" }, "pmab.text_encoding"},
		{"pattern", func(c *Config) { c.PMAB.TimeFormat = "HH:QQ" }, "pmab.time_format"},
		{"zone", func(c *Config) { c.PMAB.TimeZone = "Mars/Olympus" }, "pmab.time_zone"},
		{"type", func(c *Config) { c.Container.Type = "epub" }, "container.type"},
		{"compression", func(c *Config) { c.Container.Compression = "lzma" }, "container"},
		{"level", func(c *Config) { c.Container.Level = 42 }, "container"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() succeeded")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %s", err, tt.field)
			}
		})
	}

	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Container.Type = "epub"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "log.level") || !strings.Contains(err.Error(), "container.type") {
		t.Errorf("Validate() did not report every problem: %v", err)
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Resolve("")
	if err != nil || cfg.Container.Type != "zip" {
		t.Errorf("Resolve without sources = %+v, %v", cfg, err)
	}

	envPath := writeConfig(t, "env.yaml", "log:\n  level: warn\n")
	flagPath := writeConfig(t, "flag.yaml", "log:\n  level: error\n")
	t.Setenv(EnvVar, envPath)

	cfg, err = Resolve("")
	if err != nil || cfg.Log.Level != "warn" {
		t.Errorf("Resolve from env = %+v, %v", cfg.Log, err)
	}
	cfg, err = Resolve(flagPath)
	if err != nil || cfg.Log.Level != "error" {
		t.Errorf("Resolve from flag = %+v, %v", cfg.Log, err)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("JEM_TEST_STAGING", "/srv/staging")
	vars := map[string]string{"HOME": "/home/reader"}

	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/tmp", "/home/reader/tmp"},
		{"${JEM_TEST_STAGING}/out", "/srv/staging/out"},
		{"${JEM_TEST_UNSET:-/fallback}", "/fallback"},
		{"${JEM_TEST_UNSET}", ""},
		{"/plain/path", "/plain/path"},
	}
	for _, tt := range tests {
		if got := expandVars(tt.input, vars); got != tt.want {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	path := writeConfig(t, "jem.yaml", "container:\n  temp_dir: ${JEM_TEST_STAGING}/jem\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Container.TempDir != "/srv/staging/jem" {
		t.Errorf("temp_dir = %q", cfg.Container.TempDir)
	}
}

func TestCodecOptions(t *testing.T) {
	cfg := Default()
	cfg.PMAB.TimeZone = "UTC"
	cfg.PMAB.Strict = true
	registry := variant.NewRegistry()

	encoderOptions, err := cfg.EncoderOptions(registry, nil)
	if err != nil {
		t.Fatalf("EncoderOptions: %v", err)
	}
	if encoderOptions.Registry != registry || encoderOptions.Location != time.UTC ||
		encoderOptions.DateTimeFormat != "yyyy-MM-dd HH:mm:ss" {
		t.Errorf("EncoderOptions = %+v", encoderOptions)
	}

	decoderOptions, err := cfg.DecoderOptions(registry, nil)
	if err != nil {
		t.Fatalf("DecoderOptions: %v", err)
	}
	if !decoderOptions.Strict || decoderOptions.DateFormat != "" || decoderOptions.TextEncoding != "UTF-8" {
		t.Errorf("DecoderOptions = %+v", decoderOptions)
	}
}
