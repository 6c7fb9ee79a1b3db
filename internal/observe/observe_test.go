package observe

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	if obs == nil {
		t.Fatal("expected non-nil Observer")
	}
	if obs.log == nil {
		t.Fatal("expected non-nil logger")
	}
	if obs.Metrics() == nil {
		t.Fatal("expected non-nil metrics")
	}
}

func TestNewJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := NewJSON(buf, true)

	obs.Log().Info().Str("kind", "commands").Msg("snapshot loaded")

	output := buf.String()
	if !strings.Contains(output, "snapshot loaded") {
		t.Errorf("expected output to contain 'snapshot loaded', got %q", output)
	}
	if !strings.Contains(output, "commands") {
		t.Errorf("expected output to contain field value 'commands', got %q", output)
	}
}

func TestObserver_QuietByDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, false)

	obs.Log().Info().Msg("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("expected info to be filtered when not verbose, got %q", buf.String())
	}

	obs.Log().Warn().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn to pass through, got %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	obs := Discard()
	// Should not panic
	obs.Log().Error().Msg("dropped")
}

func TestObserver_StartSpan(t *testing.T) {
	obs := New(&bytes.Buffer{}, true)

	spanCtx, span := obs.StartSpan(context.Background(), "Store.Add", "commands")
	if spanCtx == nil {
		t.Fatal("expected non-nil context from StartSpan")
	}
	if span == nil {
		t.Fatal("expected non-nil span from StartSpan")
	}
	span.End()
}

func TestObserver_Close(t *testing.T) {
	obs := New(&bytes.Buffer{}, true)

	if err := obs.Close(); err != nil {
		t.Errorf("expected nil error from Close, got %v", err)
	}
}

func TestObserver_LogLevels(t *testing.T) {
	testCases := []struct {
		name  string
		level string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"error", "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, true).Log()

			switch tc.level {
			case "debug":
				logger.Debug().Msg("test")
			case "info":
				logger.Info().Msg("test")
			case "warn":
				logger.Warn().Msg("test")
			case "error":
				logger.Error().Msg("test")
			}

			if !strings.Contains(buf.String(), "test") {
				t.Errorf("expected output to contain 'test', got %q", buf.String())
			}
		})
	}
}
