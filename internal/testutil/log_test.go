package testutil_test

import (
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/recstore/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogRecorder(t *testing.T) {
	l, r := testutil.NewLogRecorder(t, zap.InfoLevel)
	r.AssertEmpty()

	l.Debug("hidden")
	r.AssertEmpty()

	l.Info("first", zap.Int("n", 1), zap.String("s", "x"))
	l.With(zap.String("db", "test")).Warn("second")
	l.Info("first", zap.Int("n", 2))

	entries := r.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, testutil.LogEntry{
		Level:   zap.InfoLevel,
		Message: "first",
		Fields:  map[string]any{"n": json.Number("1"), "s": "x"},
	}, entries[0])
	require.Equal(t, zap.WarnLevel, entries[1].Level)
	require.Equal(t, "test", entries[1].Fields["db"])

	require.Len(t, r.Filter("first"), 2)
	r.AssertField("first", "n", json.Number("2"))
}
