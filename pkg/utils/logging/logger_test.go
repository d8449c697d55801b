package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_WritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, path, err := InitLogger("uat", Options{LogsDir: dir, Console: &console})
	require.NoError(t, err)

	logger.Debug("building index")
	logger.Info("listed complaints")
	require.NoError(t, logger.Sync())

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "uat_"))

	assert.Contains(t, console.String(), "listed complaints")
	assert.NotContains(t, console.String(), "building index", "debug is file only by default")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "building index", entry["msg"])
	assert.Equal(t, "uat", entry["env"])
	assert.Contains(t, entry, "timestamp")
}

func TestInitLogger_ConsoleLevel(t *testing.T) {
	var console bytes.Buffer

	logger, _, err := InitLogger("local", Options{LogsDir: t.TempDir(), ConsoleLevel: "debug", Console: &console})
	require.NoError(t, err)

	logger.Debug("building index")
	assert.Contains(t, console.String(), "building index")
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	_, _, err := InitLogger("local", Options{LogsDir: t.TempDir(), ConsoleLevel: "chatty"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid console log level")
}
