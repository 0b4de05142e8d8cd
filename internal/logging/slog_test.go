package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTextLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTextLogger(slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG msg=dbg a=1",
		"level=INFO msg=inf b=2",
		"level=WARN msg=wrn c=3",
		"level=ERROR msg=err d=4",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	log, buf := newTextLogger(slog.LevelInfo)
	log.Debug(context.Background(), "hidden")
	assert.Empty(t, buf.String())
}

func TestSlogLogger_WithAndInteraction(t *testing.T) {
	log, buf := newTextLogger(slog.LevelDebug)
	ctx := WithInteraction(context.Background(), "abc-123")

	Module(log, "notes").With("user", "42").Info(ctx, "hello", "k", "v")

	out := buf.String()
	for _, want := range []string{"module=notes", "user=42", "k=v", "interaction=abc-123"} {
		assert.Contains(t, out, want)
	}
}

func TestInteractionID(t *testing.T) {
	assert.Empty(t, InteractionID(context.Background()))
	assert.Equal(t, "x", InteractionID(WithInteraction(context.Background(), "x")))

	args := []any{"a", 1}
	got := contextArgs(WithInteraction(context.Background(), "x"), args)
	assert.Equal(t, []any{"a", 1, "interaction", "x"}, got)
	assert.Equal(t, []any{"a", 1}, args)
}
