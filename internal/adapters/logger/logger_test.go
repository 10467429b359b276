package logger_adapter

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"section8-underwriter/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogAdapter_WritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug})

	logger.WithFields(port.Fields{"component": "census"}).Info("lookup done", port.Fields{"zip": "46205", "b": 1})

	out := buf.String()
	assert.Contains(t, out, `msg="lookup done"`)
	assert.Contains(t, out, "component=census b=1 zip=46205")
}

func TestSlogAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelWarn})

	logger.Info("hidden", nil)
	logger.Error("visible", errors.New("boom"), nil)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "error=boom")
}

type recordingPoster struct {
	tags     []string
	messages []map[string]interface{}
}

func (r *recordingPoster) Post(tag string, message interface{}) error {
	r.tags = append(r.tags, tag)
	r.messages = append(r.messages, message.(port.Fields))
	return nil
}

func (r *recordingPoster) Close() error { return nil }

func TestFluentLoggerAdapter(t *testing.T) {
	poster := &recordingPoster{}
	logger := newFluentLoggerAdapter(poster, slog.LevelInfo)

	child := logger.WithFields(port.Fields{"run_id": "r1"})
	child.Debug("skipped", nil)
	child.Warn("provider failed", port.Fields{"provider": "census"})
	child.Error("publish failed", errors.New("closed"), nil)

	require.Len(t, poster.tags, 2)
	assert.Equal(t, []string{"warn", "error"}, poster.tags)
	assert.Equal(t, "r1", poster.messages[0]["run_id"])
	assert.Equal(t, "census", poster.messages[0]["provider"])
	assert.Equal(t, "closed", poster.messages[1]["error"])
	assert.Empty(t, logger.fields, "parent fields are not mutated")
}

func TestMultiLogger(t *testing.T) {
	_, err := NewMultiloggerAdapter()
	require.Error(t, err)

	var a, b bytes.Buffer
	multi, err := NewMultiloggerAdapter(
		NewSlogAdapter(SlogConfig{Writer: &a}),
		NewSlogAdapter(SlogConfig{Writer: &b}),
	)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"k": "v"}).Info("hello", nil)
	assert.Contains(t, a.String(), "k=v")
	assert.Contains(t, b.String(), "k=v")
}
