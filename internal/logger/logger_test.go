package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestNewWithOutputWritesJSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("production", "info", &buf)
	log.Info().Str("collection_id", "c-1").Msg("accepted")
	log.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "collections", entry["service"])
	assert.Equal(t, "c-1", entry["collection_id"])
	assert.Equal(t, "accepted", entry["message"])
}
