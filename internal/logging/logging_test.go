package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestSetup_WritesToFile(t *testing.T) {
	previous := log.Logger
	defer func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}()

	path := filepath.Join(t.TempDir(), "shelfsync.log")
	closer := Setup(Config{Level: "debug", File: path})

	log.Debug().Str("shelf", "read").Msg("hello from test")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello from test"`)
	assert.Contains(t, string(data), `"shelf":"read"`)
}

func TestSetup_WithoutFile(t *testing.T) {
	previous := log.Logger
	defer func() { log.Logger = previous }()

	closer := Setup(Config{Level: "warn"})
	assert.NoError(t, closer.Close())
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
