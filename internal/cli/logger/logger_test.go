package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutput_Levels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)

	Debug("hidden", "k", 1)
	Info("reindex started", "index", "cities")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "reindex started")
	assert.Contains(t, buf.String(), "index=cities")
}

func TestSetOutput_Verbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true)

	Debug("HTTP Request", "method", "GET")
	assert.Contains(t, buf.String(), "HTTP Request")
}

func TestNilLoggerIsSafe(t *testing.T) {
	logger = nil
	assert.NotPanics(t, func() {
		Debug("x")
		Info("x")
		Warn("x")
		Error("x")
	})
}
