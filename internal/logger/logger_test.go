package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("nonsense"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel(""))
}

func TestInitializeWritesJSONFile(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	logFile := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, Initialize("debug", logFile))

	Log.Info("reindex finished", WithIndex("cities"), WithDuration(time.Second))
	// syncing stdout fails with EINVAL on pipes; the file core writes through
	_ = Close()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"reindex finished"`)
	assert.Contains(t, string(data), `"index":"cities"`)
}
