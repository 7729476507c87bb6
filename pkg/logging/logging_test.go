package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "": slog.LevelInfo,
		"warning": slog.LevelWarn, " warn ": slog.LevelWarn, "error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", "json", &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("index unavailable", "attempt", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "index unavailable", rec["msg"])
	assert.Equal(t, float64(2), rec["attempt"])
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("info", "xml", nil)
	assert.Error(t, err)
	_, err = New("chatty", "text", nil)
	assert.Error(t, err)
}

func TestColorHandler(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", "color", &buf)
	require.NoError(t, err)

	log.With("component", "view").WithGroup("load").Error("fetch failed", "id", 42)
	out := buf.String()
	assert.Contains(t, out, colorRed+"ERROR fetch failed"+colorReset)
	assert.Contains(t, out, " component=view")
	assert.Contains(t, out, " load.id=42")

	buf.Reset()
	log.Debug("dropped", slog.Group("req", slog.String("q", "red")))
	assert.Contains(t, buf.String(), " req.q=red")
}
