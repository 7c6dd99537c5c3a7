package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestHTTPRequest_JSON(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(New("info", "json", &buf))
	defer Initialize("info", "text")

	HTTPRequest("GET", "/api/v1/rent", 200, 15*time.Millisecond, "127.0.0.1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "HTTP request", record["msg"])
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "/api/v1/rent", record["path"])
	assert.Equal(t, float64(200), record["status"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(New("info", "text", &buf))
	defer Initialize("info", "text")

	DatabaseCall("SELECT", "rentals")
	assert.Empty(t, buf.String())

	ExternalServiceResult("s3", "PutObject", errors.New("boom"))
	assert.Contains(t, buf.String(), "External service call failed")
	assert.Contains(t, buf.String(), "boom")
}
