package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{Level: "trace", Encoding: "json"}.Validate())
	assert.Error(t, Config{Level: "info", Encoding: "xml"}.Validate())
}

func TestNew_JSONLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newWithSink(Config{Level: "warn", Encoding: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", zap.String("agent_id", "u1"))
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "u1", entry["agent_id"])
	assert.Equal(t, "warn", entry["level"])
	assert.Contains(t, entry["caller"], "logging_test.go")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newWithSink(Config{Level: "debug", Encoding: "console"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("hello")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "hello")
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Level: "loud", Encoding: "json"})
	assert.Error(t, err)
}
