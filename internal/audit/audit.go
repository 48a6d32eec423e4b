// Package audit records administrative balance edits.
package audit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// TimeLayout is the timestamp format of a log line.
const TimeLayout = "2006-01-02 15:04:05"

// Entry is one parameter change made by an operator.
type Entry struct {
	At       time.Time
	Player   string
	PlayerID int64
	Unit     string
	Key      string
	Old      string
	New      string
}

// String renders the entry as a log line without a trailing newline.
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s (%d): %s %s %s -> %s",
		e.At.Format(TimeLayout), e.Player, e.PlayerID, e.Unit, e.Key, e.Old, e.New)
}

// Recorder stores audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// FileLog appends entries to a text file.
type FileLog struct {
	path string
	mu   sync.Mutex
}

// NewFileLog creates a recorder appending to path.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Record appends one line.
func (l *FileLog) Record(_ context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	if _, err := f.WriteString(e.String() + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("writing audit log: %w", err)
	}
	return f.Close()
}

// Multi fans an entry out to every recorder. All recorders run even when one fails.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, e Entry) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
