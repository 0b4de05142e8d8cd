package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestZapLogger_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(FormatJSON, false, &buf)
	require.NoError(t, err)

	ctx := context.Background()
	log.Debug(ctx, "hidden")
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", "x")
	log.Error(ctx, "err", "d", true)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "inf", lines[0]["msg"])
	assert.EqualValues(t, 2, lines[0]["b"])
	assert.Contains(t, lines[0], "timestamp")

	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "x", lines[1]["c"])

	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.Equal(t, true, lines[2]["d"])
}

func TestZapLogger_DebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(FormatJSON, true, &buf)
	require.NoError(t, err)

	log.Debug(context.Background(), "dbg")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "DEBUG", lines[0]["level"])
}

func TestModule_TagsChild(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(FormatJSON, false, &buf)
	require.NoError(t, err)

	Module(log, "auth").Info(context.Background(), "refreshed")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "auth", lines[0]["module"])
}

func TestNew_TextAndUnknown(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(FormatText, false, &buf)
	require.NoError(t, err)
	log.Info(context.Background(), "plain", "k", "v")
	assert.Contains(t, buf.String(), "msg=plain")
	assert.Contains(t, buf.String(), "k=v")

	_, err = New("xml", false, &buf)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info(context.Background(), "nothing")
	assert.NotNil(t, l.With("a", 1))
}

func TestZapLogger_Interaction(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(FormatJSON, false, &buf)
	require.NoError(t, err)

	log.Info(WithInteraction(context.Background(), "abc-123"), "clicked", "kind", "next")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "abc-123", lines[0]["interaction"])
	assert.Equal(t, "next", lines[0]["kind"])
}
