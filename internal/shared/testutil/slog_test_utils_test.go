package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	logger, h := NewTestLogger(t)

	logger.With(slog.String("component", "reports")).Warn("report failed", slog.String("report", "day-chunk"))
	logger.Info("report finished")

	entries := h.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, slog.LevelWarn, entries[0].Level)
	assert.Equal(t, "reports", entries[0].Attrs["component"])
	assert.Equal(t, "day-chunk", entries[0].Attrs["report"])
	assert.NotContains(t, entries[1].Attrs, "component")

	e, ok := h.Find("finished")
	require.True(t, ok)
	assert.Equal(t, slog.LevelInfo, e.Level)

	AssertLogged(t, h, slog.LevelWarn, "report failed")
}
