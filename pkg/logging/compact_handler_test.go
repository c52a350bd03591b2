package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompactHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With("component", "gfa").Warn("malformed line", "line", 3, "tag", "S", "error", errors.New("too few fields"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[WARN]  "), out)
	assert.Contains(t, out, "gfa: malformed line |")
	assert.Contains(t, out, "line=3")
	assert.Contains(t, out, "tag=S")
	assert.Contains(t, out, `error="too few fields"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestCompactHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Debug("hidden")
	log.Log(context.Background(), LevelTrace, "hidden too")
	log.Info("shown", "path", "a b.gfa")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `path="a b.gfa"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		verbose int
		want    slog.Level
	}{
		{"", 0, slog.LevelInfo},
		{"", 1, slog.LevelDebug},
		{"", 2, LevelTrace},
		{"warn", 2, slog.LevelWarn},
		{"ERROR", 0, slog.LevelError},
		{"trace", 0, LevelTrace},
		{"bogus", 0, slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.name, tt.verbose), "%q/%d", tt.name, tt.verbose)
	}
}
