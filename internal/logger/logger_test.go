package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("ERROR"))
}

func TestStdoutWriter(t *testing.T) {
	_, ok := stdoutWriter("console").(zerolog.ConsoleWriter)
	assert.True(t, ok)
	assert.Equal(t, os.Stdout, stdoutWriter(""))
	assert.Equal(t, os.Stdout, stdoutWriter("json"))
}

func TestErrorLogFindsErrorInAnyArgument(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	globalLogger = zerolog.New(&buf)
	t.Cleanup(func() { globalLogger = prev })

	ErrorLog(context.Background(), "sync %s failed: %v", "E1", assert.AnError)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, assert.AnError.Error(), entry["error"])
	assert.Equal(t, "sync E1 failed: "+assert.AnError.Error(), entry["message"])
}

func TestWithLoggerCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	globalLogger = zerolog.New(&buf)
	t.Cleanup(func() { globalLogger = prev })

	ctx := WithLogger(context.Background(), map[string]interface{}{"request_id": "abc"})
	InfoLog(ctx, "created %s", "E1")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "created E1", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestErrorLogAttachesError(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	globalLogger = zerolog.New(&buf)
	t.Cleanup(func() { globalLogger = prev })

	ErrorLog(context.Background(), "index failed: %v", assert.AnError)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, assert.AnError.Error(), entry["error"])
	assert.Equal(t, "index failed: "+assert.AnError.Error(), entry["message"])
}

func TestWithLoggerChainsFields(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	globalLogger = zerolog.New(&buf)
	t.Cleanup(func() { globalLogger = prev })

	ctx := WithLogger(context.Background(), map[string]interface{}{"request_id": "abc"})
	ctx = WithLogger(ctx, map[string]interface{}{"principal": "alice"})
	WarnLog(ctx, "slow")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "alice", entry["principal"])
}
