package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{name: "default config", config: nil},
		{name: "json config", config: &Config{Level: "debug", Format: "json", Output: io.Discard}},
		{name: "console config", config: &Config{Level: "info", Format: "console", Output: io.Discard}},
		{name: "nil output", config: &Config{Level: "warn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, New(tt.config))
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	log.Info("generated types")

	entry := decodeLine(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "generated types", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogger_WithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	child := log.With().
		Str("target", "typescript").
		Strs("schemas", []string{"public"}).
		Int("bytes", 2048).
		Bool("cache_hit", true).
		Logger()

	child.Info("generation finished")

	entry := decodeLine(t, buf)
	assert.Equal(t, "typescript", entry["target"])
	assert.Equal(t, []any{"public"}, entry["schemas"])
	assert.Equal(t, float64(2048), entry["bytes"])
	assert.Equal(t, true, entry["cache_hit"])
}

func TestLogger_ErrorWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "error", Format: "json", Output: buf})

	log.ErrorWith("generation failed", errors.New("circular dependency"), map[string]any{
		"target": "dart",
	})

	entry := decodeLine(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "circular dependency", entry["error"])
	assert.Equal(t, "dart", entry["target"])
}

func TestLogger_WarnWith(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "warn", Format: "json", Output: buf})

	log.WarnWith("overload return types differ", map[string]any{"function": "public.f"})

	entry := decodeLine(t, buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "public.f", entry["function"])
}

func TestLogger_Request(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	log.Request("GET", "/generators/typescript", 200, 15*time.Millisecond, "req-1")

	entry := decodeLine(t, buf)
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "req-1", entry["request_id"])
}

func TestLogger_Context(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	ctx := log.WithContext(context.Background())
	FromContext(ctx).Info("from context")

	entry := decodeLine(t, buf)
	assert.Equal(t, "from context", entry["message"])
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFunc  func(*Logger)
		expected bool
	}{
		{"debug level logs debug", "debug", func(l *Logger) { l.Debug("m") }, true},
		{"info level skips debug", "info", func(l *Logger) { l.Debugf("m %d", 1) }, false},
		{"warn level logs warn", "warn", func(l *Logger) { l.Warnf("m %d", 1) }, true},
		{"warn level skips info", "warn", func(l *Logger) { l.Infof("m %d", 1) }, false},
		{"error level logs error", "error", func(l *Logger) { l.Errorf("m %d", 1) }, true},
		{"unknown level falls back to info", "loud", func(l *Logger) { l.Info("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.logFunc(New(&Config{Level: tt.level, Format: "json", Output: buf}))

			if tt.expected {
				assert.NotEmpty(t, buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestLogger_IndependentLevels(t *testing.T) {
	quiet := &bytes.Buffer{}
	loud := &bytes.Buffer{}
	q := New(&Config{Level: "error", Format: "json", Output: quiet})
	l := New(&Config{Level: "debug", Format: "json", Output: loud})

	q.Info("hidden")
	l.Debug("shown")

	assert.Empty(t, quiet.String())
	assert.NotEmpty(t, loud.String())
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("discarded") })
}

func BenchmarkLogger_WithFields(b *testing.B) {
	log := New(&Config{Level: "info", Format: "json", Output: io.Discard})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		log.With().
			Str("target", "typescript").
			Int("bytes", i).
			Logger().
			Info("benchmark message")
	}
}
