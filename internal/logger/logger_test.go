package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_RedactsAndHashes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)

	log.Info("saved", "user_id", "learner-42", "auth_token", "abc", "percentage", 40)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["auth_token"])
	assert.True(t, strings.HasPrefix(fields["user_id"].(string), "hash:"))
	assert.NotContains(t, fields["user_id"], "learner-42")
	assert.EqualValues(t, 40, fields["percentage"])
}

func TestLogger_WithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core).With("session", "s-1")

	log.Warn("save failed", "error", "boom")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "s-1", entry.ContextMap()["session"])
}

func TestLogger_OddKeyValueCountKeepsTrailingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	assert.Equal(t, []interface{}{"a", 1, "dangling"}, out)
}
