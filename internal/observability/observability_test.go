package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/sun-schedule/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("run complete", "entries", 53)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "run complete", rec["msg"])
	assert.InDelta(t, 53, rec["entries"], 0)
}

func TestNewLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "text")

	logger.Debug("input opened", "path", "a.csv")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "path=a.csv")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestNewLogger_FromConfig(t *testing.T) {
	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.RowsRead.Add(3)
	assert.InDelta(t, 3, testutil.ToFloat64(a.RowsRead), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.RowsRead), 0)
	count, err := testutil.GatherAndCount(a.Registry())
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetricsForTesting()
	m.EntriesEmitted.Add(53)

	path := filepath.Join(t.TempDir(), "suntable.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "suntable_entries_emitted_total 53")
}

func TestMetrics_WriteTextfileBadDir(t *testing.T) {
	m := NewMetricsForTesting()
	path := filepath.Join(t.TempDir(), "missing", "suntable.prom")

	err := m.WriteTextfile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
