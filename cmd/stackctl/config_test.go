package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr string
	}{
		{name: "defaults", level: "", format: ""},
		{name: "debug text", level: "debug", format: "text"},
		{name: "warning json", level: "WARNING", format: "json"},
		{name: "bad level", level: "trace", format: "text", wantErr: "unknown log level: trace"},
		{name: "bad format", level: "info", format: "xml", wantErr: "unknown log format: xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := SetupLogger(tt.level, tt.format, &bytes.Buffer{})
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestSetupLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger("warn", "text", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "stack", "oculus-dev")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "stack=oculus-dev")
}

func TestSetupLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger("info", "json", &buf)
	require.NoError(t, err)

	logger.Info("applied", "status", "created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "applied", entry["msg"])
	assert.Equal(t, "created", entry["status"])
}
