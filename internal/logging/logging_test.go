package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Info().Msg("dropped")
	log.Warn().Str("endpoint", "/api/menu").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "/api/menu", entry["endpoint"])
	assert.Contains(t, entry, "time")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Format: "console"}, &buf)
	require.NoError(t, err)

	log.Info().Msg("fetch cycle started")
	assert.Contains(t, buf.String(), "fetch cycle started")
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{Level: "loud"}, nil)
	assert.Error(t, err)

	_, err = New(Config{Format: "xml"}, nil)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for _, name := range Levels {
		level, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, name, level.String())
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.log")
	f, err := File(path)
	require.NoError(t, err)
	defer f.Close()

	log, err := New(Config{Format: "json"}, f)
	require.NoError(t, err)
	log.Info().Msg("hello")
	assert.FileExists(t, path)
}
