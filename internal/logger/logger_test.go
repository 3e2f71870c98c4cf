package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferLoggerCapturesMessages(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("sampling gpu %d", 0)
	l.Info("queue snapshot took %dms", 42)
	l.Warn("machine %s unreachable", "dgx-02")
	l.Error("first render failed")

	assert.Len(t, l.Messages, 4)
	assert.Equal(t, "debug", l.Messages[0].Level)
	assert.Equal(t, "sampling gpu 0", l.Messages[0].Message)
	assert.Equal(t, "machine dgx-02 unreachable", l.Messages[2].Message)
}

func TestBufferLoggerHasLevel(t *testing.T) {
	l := NewBufferLogger()
	assert.False(t, l.HasLevel("error"))

	l.Error("boom")
	assert.True(t, l.HasLevel("error"))
	assert.False(t, l.HasLevel("warn"))
}

func TestBufferLoggerClear(t *testing.T) {
	l := NewBufferLogger()
	l.Info("one")
	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestNoopLoggerDiscards(t *testing.T) {
	l := Noop()
	// Should not panic; nothing to assert beyond that.
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	buf := NewBufferLogger()
	SetDefault(buf)
	Default().Info("hello")

	assert.Len(t, buf.Messages, 1)
}
