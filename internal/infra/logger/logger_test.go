package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTo_Levels(t *testing.T) {
	var buf bytes.Buffer
	NewTo(&buf, "prod").Debug("hidden")
	assert.Zero(t, buf.Len())

	NewTo(&buf, "dev").Debug("request", "method", "GET")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request", rec["msg"])
	assert.Equal(t, "GET", rec["method"])
	assert.Equal(t, "cmms", rec["app"])
}
