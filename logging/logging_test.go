package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLevel_KnownLevels verifies level name mapping
func TestParseLevel_KnownLevels(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
}

// TestParseLevel_Unknown verifies fallback to info
func TestParseLevel_Unknown(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

// TestNew_WritesToFile verifies a logger can be built with a custom output
func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	logger, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Debug("hello")
	assert.NoError(t, logger.Sync())
	assert.FileExists(t, path)
}

// TestOrNop_Nil verifies a nil logger is replaced
func TestOrNop_Nil(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
