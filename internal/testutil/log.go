// Package testutil provides helpers shared by record store tests.
package testutil

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// LogEntry is a single decoded [zap.Logger] entry.
type LogEntry struct {
	Level   zapcore.Level
	Message string
	// Numbers are decoded as [json.Number].
	Fields map[string]any
}

// LogRecorder keeps JSON-encoded entries written to the logger it was created
// with.
type LogRecorder struct {
	t   testing.TB
	mtx sync.Mutex
	buf zaptest.Buffer
}

// NewLogRecorder returns logger writing entries of minLevel severity and
// above into the returned recorder.
func NewLogRecorder(t testing.TB, minLevel zapcore.Level) (*zap.Logger, *LogRecorder) {
	r := &LogRecorder{t: t}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(r), minLevel)

	return zap.New(core), r
}

func (r *LogRecorder) Write(p []byte) (int, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.buf.Write(p)
}

// Entries returns all written entries in order.
func (r *LogRecorder) Entries() []LogEntry {
	r.mtx.Lock()
	lines := r.buf.Lines()
	r.mtx.Unlock()

	res := make([]LogEntry, 0, len(lines))
	for i := range lines {
		dec := json.NewDecoder(strings.NewReader(lines[i]))
		dec.UseNumber()

		var m map[string]any
		require.NoError(r.t, dec.Decode(&m), lines[i])

		lvl, err := zapcore.ParseLevel(m["level"].(string))
		require.NoError(r.t, err)

		e := LogEntry{
			Level:   lvl,
			Message: m["msg"].(string),
			Fields:  m,
		}
		delete(m, "level")
		delete(m, "msg")

		res = append(res, e)
	}

	return res
}

// Filter returns entries with the given message.
func (r *LogRecorder) Filter(msg string) []LogEntry {
	var res []LogEntry
	for _, e := range r.Entries() {
		if e.Message == msg {
			res = append(res, e)
		}
	}
	return res
}

// AssertEmpty asserts that nothing was logged.
func (r *LogRecorder) AssertEmpty() {
	require.Empty(r.t, r.Entries())
}

// AssertField asserts that some entry with the given message carries
// key=val.
func (r *LogRecorder) AssertField(msg, key string, val any) {
	for _, e := range r.Filter(msg) {
		if e.Fields[key] == val {
			return
		}
	}
	require.Failf(r.t, "log entry not found", "no %q entry with %s=%v", msg, key, val)
}
