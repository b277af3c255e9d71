package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("check complete", "alert", true)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "check complete", line["msg"])
	assert.Equal(t, true, line["alert"])
}

func TestNewLoggerTo_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "DEBUG", "text")

	logger.Debug("fetched", "bytes", 42)

	assert.Contains(t, buf.String(), "msg=fetched")
	assert.Contains(t, buf.String(), "bytes=42")
}

func TestNewLoggerTo_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "verbose", "text")

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Error("failed")
	assert.Contains(t, buf.String(), "level=ERROR")
}
