// Package ledger tracks which (user, assessment) pairs already received a
// report, so re-running the pipeline never double-delivers. The ledger is a
// plain CSV file that survives restarts and can be inspected or edited by
// hand.
package ledger

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var header = []string{"user_id", "assessment_title"}

// Ledger records completed deliveries.
type Ledger interface {
	IsProcessed(userID, assessmentTitle string) bool
	MarkProcessed(userID, assessmentTitle string) error
	Count() int
}

type csvLedger struct {
	mu     sync.Mutex
	path   string
	seen   map[string]struct{}
	logger *slog.Logger
}

// NewCSVLedger loads the ledger at path, creating it (with a header row) if
// it does not exist yet.
func NewCSVLedger(path string, logger *slog.Logger) (Ledger, error) {
	l := &csvLedger{
		path:   path,
		seen:   make(map[string]struct{}),
		logger: logger,
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *csvLedger) IsProcessed(userID, assessmentTitle string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[key(userID, assessmentTitle)]
	return ok
}

// MarkProcessed appends the pair to the file and the in-memory set. Marking
// an already-processed pair is a no-op.
func (l *csvLedger) MarkProcessed(userID, assessmentTitle string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key(userID, assessmentTitle)
	if _, ok := l.seen[k]; ok {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{userID, assessmentTitle}); err != nil {
		return fmt.Errorf("failed to append ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger: %w", err)
	}

	l.seen[k] = struct{}{}
	return nil
}

func (l *csvLedger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

func (l *csvLedger) load() error {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return l.create()
	}
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}

	for i, rec := range records {
		if i == 0 || len(rec) < 2 {
			continue
		}
		l.seen[key(rec[0], rec[1])] = struct{}{}
	}

	l.logger.Info("delivery ledger loaded", "path", l.path, "entries", len(l.seen))
	return nil
}

func (l *csvLedger) create() error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	w.Flush()
	return w.Error()
}

func key(userID, assessmentTitle string) string {
	return userID + "\x00" + assessmentTitle
}
