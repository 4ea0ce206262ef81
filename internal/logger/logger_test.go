package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{" info ", zerolog.InfoLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLog_WritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.DebugLevel)

	log.Info("vote recorded", "poll_id", 4, "option", "yes")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "vote recorded", entry["message"])
	assert.Equal(t, float64(4), entry["poll_id"])
	assert.Equal(t, "yes", entry["option"])
}

func TestLog_ErrorValuesAreStrings(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.DebugLevel)

	log.Error("save failed", "error", errors.New("disk full"))

	assert.Contains(t, buf.String(), `"error":"disk full"`)
}

func TestLog_DanglingKey(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.DebugLevel)

	log.Warn("odd args", "lonely")

	assert.Contains(t, buf.String(), `"lonely":null`)
}

func TestLog_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.ErrorLevel)

	log.SetLevel(zerolog.DebugLevel)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log.Debug("now visible")
	assert.True(t, strings.Contains(buf.String(), "now visible"))
}

func TestHTTPLoggingToggle(t *testing.T) {
	log := New()
	assert.False(t, log.IsHTTPLoggingEnabled())

	log.EnableHTTPLogging()
	assert.True(t, log.IsHTTPLoggingEnabled())

	log.DisableHTTPLogging()
	assert.False(t, log.IsHTTPLoggingEnabled())
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Info("discarded", "k", "v")
		log.Error("discarded")
	})
}
