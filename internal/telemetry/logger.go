// Package telemetry writes a JSON-lines diagnostic log for a study run.
// Each line carries a timestamp, a level, and the client run ID so logs
// from concurrent participants can be separated after collection.
package telemetry

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

type JSONLogger struct {
	mu    sync.Mutex
	w     io.WriteCloser
	runID string
}

// NewJSONLogger opens the log at path, appending if the file exists. An
// empty path yields a logger that discards everything, so call sites never
// need to branch on whether logging is configured.
func NewJSONLogger(path, runID string) (*JSONLogger, error) {
	if path == "" {
		return &JSONLogger{w: nopCloser{Writer: io.Discard}, runID: runID}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLogger{w: f, runID: runID}, nil
}

func (l *JSONLogger) Info(msg string, fields map[string]any) {
	l.log("info", msg, fields)
}

func (l *JSONLogger) Error(msg string, fields map[string]any) {
	l.log("error", msg, fields)
}

func (l *JSONLogger) log(level, msg string, fields map[string]any) {
	if l == nil || l.w == nil {
		return
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	if l.runID != "" {
		entry["run_id"] = l.runID
	}
	for k, v := range fields {
		entry[k] = v
	}
	b, _ := json.Marshal(entry)
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(append(b, '\n'))
}

func (l *JSONLogger) Close() error {
	if l == nil || l.w == nil {
		return nil
	}
	return l.w.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
