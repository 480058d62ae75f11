package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("Error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("DEBUG", &buf)

	log.WithUserID("u-1").WithCampaign("c-9").WithError(errors.New("boom")).Info("campaign finished")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "campaign finished", record["msg"])
	assert.Equal(t, "u-1", record["user_id"])
	assert.Equal(t, "c-9", record["campaign_id"])
	assert.Equal(t, "boom", record["error"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("WARN", &buf)

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.WithComponent("billing").Warn("shown")
	assert.Contains(t, buf.String(), `"component":"billing"`)
}
