// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewCommandLogger(t *testing.T) {
	var buffer bytes.Buffer
	// A buffer is never a terminal, so auto selects JSON.
	logger, err := NewCommandLogger(&buffer, slog.LevelInfo, LogFormatAuto)
	if err != nil {
		t.Fatalf("NewCommandLogger: %v", err)
	}
	logger.Debug("hidden")
	logger.With("command", "dump").Info("decoded", "chapters", 3)

	var record map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &record); err != nil {
		t.Fatalf("output is not one JSON record: %v\n%s", err, buffer.String())
	}
	if record["msg"] != "decoded" || record["command"] != "dump" || record["chapters"] != float64(3) {
		t.Errorf("record = %v", record)
	}
}

func TestNewCommandLogger_Text(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewCommandLogger(&buffer, slog.LevelDebug, LogFormatText)
	if err != nil {
		t.Fatalf("NewCommandLogger: %v", err)
	}
	logger.Debug("shown")
	if !strings.Contains(buffer.String(), "msg=shown") {
		t.Errorf("output = %q, want text record", buffer.String())
	}

	if _, err := NewCommandLogger(&buffer, slog.LevelInfo, "xml"); err == nil {
		t.Error("NewCommandLogger accepted an unknown format")
	}
}
