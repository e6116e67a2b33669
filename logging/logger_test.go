package logging_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/melkeydev/demodb-query/logging"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, "warn")
	assert.Equal(t, log.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.Warn("shown", "table", "flights")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "flights")
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	l := logging.New(&bytes.Buffer{}, "chatty")
	assert.Equal(t, log.InfoLevel, l.GetLevel())
}

func TestDebugEnv(t *testing.T) {
	t.Setenv("DEBUG", "1")
	l := logging.New(&bytes.Buffer{}, "error")
	assert.Equal(t, log.DebugLevel, l.GetLevel())
}

func TestNewDiscard(t *testing.T) {
	l := logging.NewDiscard()
	assert.NotNil(t, l.Logger)
	l.Error("dropped")
}
