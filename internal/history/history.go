// internal/history/history.go
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entry is one recorded exchange. The log is append-only and write-only:
// nothing in the pipeline ever reads it back; it exists for the user.
// Screen context is carried as the app name plus a bounded text excerpt,
// never image bytes.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	UserText   string    `json:"user_text"`
	ActionType string    `json:"action_type"`
	Summary    string    `json:"summary"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	App        string    `json:"app,omitempty"`
	ScreenText string    `json:"screen_text,omitempty"`
}

// Log persists the most recent exchanges as a JSON file, oldest first,
// capped at a fixed size.
type Log struct {
	path    string
	maxSize int
	logger  *zap.Logger

	mu      sync.Mutex
	entries []Entry
}

// Open loads an existing history file or starts an empty log. A corrupt
// file is discarded rather than blocking startup.
func Open(cfg config.HistoryConfig, logger *zap.Logger) (*Log, error) {
	l := &Log{
		path:    cfg.Path,
		maxSize: cfg.MaxSize,
		logger:  logger.Named("history"),
	}

	data, err := os.ReadFile(cfg.Path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read history file: %w", err)
	default:
		if err := json.Unmarshal(data, &l.entries); err != nil {
			l.logger.Warn("History file corrupt; starting fresh", zap.Error(err))
			l.entries = nil
		}
	}

	l.trim()
	return l, nil
}

// screenTextCap bounds the recorded screen excerpt per entry.
const screenTextCap = 200

// RecordExchange appends one resolved exchange and persists the log.
// Persistence failures are logged, never propagated; history is best-effort.
func (l *Log) RecordExchange(userText string, action schemas.Action, state *schemas.ScreenState) {
	entry := Entry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		UserText:   userText,
		ActionType: string(action.Type),
		Summary:    action.Summary(),
		Confidence: action.Confidence,
		Reasoning:  action.Reasoning,
	}
	if state != nil {
		entry.App = state.App.Name
		entry.ScreenText = state.Text
		if len(entry.ScreenText) > screenTextCap {
			entry.ScreenText = entry.ScreenText[:screenTextCap] + "..."
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	l.trim()

	if err := l.persist(); err != nil {
		l.logger.Warn("Failed to persist history", zap.Error(err))
	}
}

// Len reports the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the retained entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) trim() {
	if l.maxSize > 0 && len(l.entries) > l.maxSize {
		l.entries = l.entries[len(l.entries)-l.maxSize:]
	}
}

// persist writes atomically: temp file in the same directory, then rename.
func (l *Log) persist() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}

	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), l.path)
}
