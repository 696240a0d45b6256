// Package audit appends business events to a JSON-lines file. One line
// per event, flushed on every write so the trail survives a crash.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is a single audit record.
type Entry struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	UserID    *uuid.UUID        `json:"user_id,omitempty"`
	EntityID  *uuid.UUID        `json:"entity_id,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

type Logger struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer
}

// Open creates or appends to the audit file at path.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}

	return &Logger{w: f, c: f}, nil
}

// New wraps an arbitrary writer, used by tests and the TUI demo.
func New(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Record appends one event. userID may be nil for system actions.
func (l *Logger) Record(action string, userID, entityID *uuid.UUID, data map[string]string) error {
	entry := Entry{
		Timestamp: time.Now().UTC(),
		Action:    action,
		UserID:    userID,
		EntityID:  entityID,
		Data:      data,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}

	return nil
}

func (l *Logger) Close() error {
	if l.c == nil {
		return nil
	}

	return l.c.Close()
}

// Tail returns the last n entries of the audit file at path. Lines that
// fail to decode are skipped rather than aborting the read.
func Tail(path string, n int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}

	return entries, nil
}
