package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	c, err := Init(Options{})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestInitWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	c, err := Init(Options{Enabled: true, Dir: dir, Level: slog.LevelDebug})
	require.NoError(t, err)
	t.Cleanup(func() { L = discard() })

	Debug("grow", "bytes", 48)
	require.NoError(t, c.Close())

	name := filepath.Join(dir, logPrefix+time.Now().Format(time.DateOnly)+logSuffix)
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"grow"`)
	assert.Contains(t, string(data), `"bytes":48`)
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	files := map[string]bool{
		"heapctl-2026-03-19.log": true,  // recent
		"heapctl-2026-01-01.log": false, // expired
		"heapctl-garbage.log":    true,  // unparseable date
		"other-2020-01-01.log":   true,  // foreign prefix
	}
	for name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	cleanOldLogs(dir, now)

	for name, kept := range files {
		_, err := os.Stat(filepath.Join(dir, name))
		if kept {
			assert.NoError(t, err, name)
		} else {
			assert.True(t, os.IsNotExist(err), name)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
