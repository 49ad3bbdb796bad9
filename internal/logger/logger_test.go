package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("debug", FormatJSON, buf)
	log.Debug().Str("document", "a.pdf").Msg("opened")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "opened", line["message"])
	assert.Equal(t, "a.pdf", line["document"])
	assert.Equal(t, "debug", line["level"])
}

func TestNew_Console(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("info", FormatConsole, buf)
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestNew_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("warn", FormatJSON, buf)
	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	assert.Equal(t, zerolog.InfoLevel, New("nonsense", FormatJSON, buf).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("", FormatJSON, buf).GetLevel())
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")
	assert.Contains(t, buf.String(), "test")
}

func TestFromContext_Default(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
