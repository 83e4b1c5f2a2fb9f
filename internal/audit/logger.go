package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Audit event names.
const (
	EventSessionConnected = "session_connected"
	EventSessionClosed    = "session_closed"
	EventSessionTimeout   = "session_timeout"
	EventReadingIngested  = "reading_ingested"
)

// Entry is a single audit record.
type Entry struct {
	Timestamp     time.Time `json:"ts"`
	Event         string    `json:"event"`
	ClientID      string    `json:"clientId,omitempty"`
	ReadingID     string    `json:"readingId,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Detail        string    `json:"detail,omitempty"`
}

// Logger appends audit entries to a JSONL file. A nil *Logger is valid and
// discards all entries, so auditing can be disabled by configuration.
type Logger struct {
	mu       sync.Mutex
	filePath string
	file     *os.File
}

// NewLogger creates an audit logger writing to <dir>/audit.jsonl.
func NewLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	filePath := filepath.Join(dir, "audit.jsonl")
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &Logger{filePath: filePath, file: file}, nil
}

// SessionEvent records a streaming session lifecycle event.
func (l *Logger) SessionEvent(event, clientID, detail string) {
	if l == nil {
		return
	}
	l.write(Entry{
		Timestamp: time.Now().UTC(),
		Event:     event,
		ClientID:  clientID,
		Detail:    detail,
	})
}

// ReadingIngested records an externally submitted reading.
func (l *Logger) ReadingIngested(readingID, correlationID string) {
	if l == nil {
		return
	}
	l.write(Entry{
		Timestamp:     time.Now().UTC(),
		Event:         EventReadingIngested,
		ReadingID:     readingID,
		CorrelationID: correlationID,
	})
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) write(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	// Best effort: an audit write failure must not disturb the caller.
	_, _ = l.file.Write(data)
}
