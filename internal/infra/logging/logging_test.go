package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"workflow-analyst/internal/config"
)

func TestWithAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, config.LogConfig{Level: "debug", Format: "json"}, false)

	ctx := WithJobID(WithTraceID(context.Background(), "t-1"), "job-9")
	With(ctx, base).Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if entry["trace_id"] != "t-1" || entry["job_id"] != "job-9" {
		t.Errorf("missing context fields: %v", entry)
	}
	if TraceIDFrom(ctx) != "t-1" {
		t.Error("TraceIDFrom did not return the stored id")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %s", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Error("warn should be written")
	}
}

func TestRedactAndTruncate(t *testing.T) {
	if got := Redact("short", false); got != "***" {
		t.Errorf("Redact short = %q", got)
	}
	if got := Redact("a much longer prompt", false); got != "a mu...pt" {
		t.Errorf("Redact long = %q", got)
	}
	if got := Redact("visible", true); got != "visible" {
		t.Errorf("Redact dev = %q", got)
	}
	if got := Truncate("abcdef", 3); got != "abc...(truncated)" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("Truncate short = %q", got)
	}
}
