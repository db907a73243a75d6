package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel}, // Default
		{"", zerolog.InfoLevel},        // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestJSONOutputWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)

	log.WithFields(map[string]interface{}{"rows": 10, "page": "intro"}).
		WithError(errors.New("boom")).
		Info("rendered")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line %q: %v", buf.String(), err)
	}
	if entry["message"] != "rendered" || entry["level"] != "info" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["page"] != "intro" || entry["rows"] != float64(10) || entry["error"] != "boom" {
		t.Errorf("missing fields: %v", entry)
	}
	if entry["app"] != "dataloom" {
		t.Errorf("missing app field: %v", entry)
	}
}

func TestLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "json", &buf)
	log.Info("hidden")
	log.Debugf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	log.Warnf("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("expected warn output, got %q", buf.String())
	}
}

func TestFormattedLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json", &buf)
	log.Infof("serving %s", "diabetes.csv")
	log.Errorf("report failed: %d alerts", 3)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %q", buf.String())
	}
	var info, errEntry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &info); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &errEntry); err != nil {
		t.Fatal(err)
	}
	if info["level"] != "info" || info["message"] != "serving diabetes.csv" {
		t.Errorf("unexpected info entry: %v", info)
	}
	if errEntry["level"] != "error" || errEntry["message"] != "report failed: 3 alerts" {
		t.Errorf("unexpected error entry: %v", errEntry)
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	New("info", "console", &buf).WithField("x", "Glucose").Info("chart")
	out := buf.String()
	if !strings.Contains(out, "chart") || !strings.Contains(out, "Glucose") {
		t.Fatalf("console output = %q", out)
	}
}

func TestNop(t *testing.T) {
	Nop().Error("discarded")
}
