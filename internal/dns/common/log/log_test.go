package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// recordingLogger captures the last message per level for assertions.
type recordingLogger struct {
	lastLevel string
	lastMsg   string
	lastField map[string]any
}

func (r *recordingLogger) Debug(f map[string]any, m string) { r.record("debug", f, m) }
func (r *recordingLogger) Info(f map[string]any, m string)  { r.record("info", f, m) }
func (r *recordingLogger) Warn(f map[string]any, m string)  { r.record("warn", f, m) }
func (r *recordingLogger) Error(f map[string]any, m string) { r.record("error", f, m) }

func (r *recordingLogger) record(level string, f map[string]any, m string) {
	r.lastLevel = level
	r.lastMsg = m
	r.lastField = f
}

func TestSetAndGetLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	rec := &recordingLogger{}
	SetLogger(rec)
	assert.Same(t, rec, GetLogger().(*recordingLogger))

	Info(map[string]any{"zone": "example.com"}, "hello")
	assert.Equal(t, "info", rec.lastLevel)
	assert.Equal(t, "hello", rec.lastMsg)
	assert.Equal(t, "example.com", rec.lastField["zone"])

	Warn(nil, "careful")
	assert.Equal(t, "warn", rec.lastLevel)

	Error(nil, "boom")
	assert.Equal(t, "error", rec.lastLevel)

	Debug(nil, "details")
	assert.Equal(t, "debug", rec.lastLevel)
}

func TestConfigure(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	assert.NoError(t, Configure("dev", "debug"))
	assert.NoError(t, Configure("prod", "info"))
	assert.Error(t, Configure("prod", "shouting"))
}

func TestNoopLogger(t *testing.T) {
	n := NewNoopLogger()
	// must not panic
	n.Debug(nil, "")
	n.Info(nil, "")
	n.Warn(nil, "")
	n.Error(nil, "")
}
