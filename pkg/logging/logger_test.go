package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}
	if cfg.Pretty != false {
		t.Error("Expected default pretty to be false")
	}
}

func TestSetup(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: buf,
	})

	logger.Info().Msg("batch started")

	if !strings.Contains(buf.String(), "batch started") {
		t.Errorf("Expected output to contain message, got %q", buf.String())
	}
}

func TestSetupWithFile(t *testing.T) {
	outDir := t.TempDir()
	buf := &bytes.Buffer{}

	logger, f, err := SetupWithFile(Config{
		Level:  LevelInfo,
		Output: buf,
	}, outDir)
	if err != nil {
		t.Fatalf("SetupWithFile() error: %v", err)
	}
	defer f.Close()

	logger.Info().Msg("report done")

	if !strings.Contains(buf.String(), "report done") {
		t.Errorf("console output missing message: %q", buf.String())
	}

	raw, err := os.ReadFile(filepath.Join(outDir, "logs", "run.log"))
	if err != nil {
		t.Fatalf("read run.log: %v", err)
	}
	if !strings.Contains(string(raw), "report done") {
		t.Errorf("run.log missing message: %q", raw)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel}, // Should default to Info
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: buf,
	})

	logger := NewLogger("report-fetcher")
	logger.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "report-fetcher") {
		t.Errorf("Expected output to contain component name, got %q", output)
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected output to contain message, got %q", output)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelWarn,
		Pretty: false,
		Output: buf,
	})

	logger := NewLogger("test")

	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")

	output := buf.String()
	if strings.Contains(output, "info message") {
		t.Error("Info message should be filtered out at Warn level")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be included at Warn level")
	}
}
