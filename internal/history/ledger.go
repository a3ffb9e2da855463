// Package history keeps the scored applications of a single session.
package history

import (
	"sync"
	"time"

	"github.com/Dan9191/loan-approval/internal/models"
	"github.com/google/uuid"
)

// Ledger is an append-only log of decisions owned by one session
type Ledger struct {
	mu      sync.RWMutex
	entries []models.HistoryEntry
	now     func() time.Time
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// Append records an application and its decision, preserving insertion order
func (l *Ledger) Append(app models.Application, decision models.Decision) models.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := models.HistoryEntry{
		ID:          uuid.NewString(),
		Application: app,
		Decision:    decision,
		CreatedAt:   l.now().UTC(),
	}
	l.entries = append(l.entries, entry)
	return entry
}

// Entries returns a copy of all entries in insertion order
func (l *Ledger) Entries() []models.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Summary counts approved and denied entries by scanning the whole log
func (l *Ledger) Summary() models.HistorySummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var s models.HistorySummary
	for _, e := range l.entries {
		if e.Decision.Approved {
			s.ApprovedCount++
		} else {
			s.DeniedCount++
		}
	}
	return s
}
