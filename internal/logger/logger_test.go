package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	m, err := newManager(false, dir, nil)
	require.NoError(t, err)

	l := &Logger{tag: "widget", m: m}
	l.Info("submit ", "accepted")
	l.Error("request failed")
	l.Close()

	files, err := filepath.Glob(filepath.Join(dir, "cafeteira_log_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.Len(t, entries, 2)

	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "widget", entries[0]["tag"])
	assert.Equal(t, "submit accepted", entries[0]["message"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestLoggerDevModeWritesToView(t *testing.T) {
	var view bytes.Buffer
	m, err := newManager(true, "", &view)
	require.NoError(t, err)

	l := &Logger{tag: "ui", m: m}
	l.Warn("slow response")
	l.Close()

	assert.Equal(t, "[yellow]DEBUG (ui): slow response[-]\n", view.String())
}

func TestLoggerAfterCloseIsSilent(t *testing.T) {
	m, err := newManager(false, t.TempDir(), nil)
	require.NoError(t, err)

	l := &Logger{tag: "api", m: m}
	l.Close()
	l.Close()

	assert.NotPanics(t, func() { l.Info("dropped") })
}

func TestNewLoggerWithoutInitDiscards(t *testing.T) {
	l := &Logger{tag: "orphan"}
	assert.NotPanics(t, func() {
		l.Info("nothing")
		l.Close()
	})
}
