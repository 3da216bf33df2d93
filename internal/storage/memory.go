// Package storage keeps the kiosk's check-in journal.
package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// DefaultJournalSize bounds how many check-ins are kept for Recent.
const DefaultJournalSize = 500

// Compile-time interface check.
var _ domain.CheckInLog = (*MemoryJournal)(nil)

// MemoryJournal is an in-memory, bounded check-in journal. Counts cover
// every check-in since start, not just the retained ones. Safe for
// concurrent access.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []*domain.CheckIn // oldest first
	size    int
	booked  int
	failed  int
	log     *logger.Logger
}

// NewMemoryJournal creates an empty journal keeping at most size entries.
// A size below 1 uses DefaultJournalSize.
func NewMemoryJournal(size int, log *logger.Logger) *MemoryJournal {
	if size < 1 {
		size = DefaultJournalSize
	}
	return &MemoryJournal{size: size, log: log}
}

// Record appends a completed check-in, dropping the oldest over the bound.
func (j *MemoryJournal) Record(ctx context.Context, c *domain.CheckIn) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if c.Kind == domain.OutcomeSuccess {
		j.booked++
	} else {
		j.failed++
	}

	j.entries = append(j.entries, c)
	if over := len(j.entries) - j.size; over > 0 {
		j.entries = append([]*domain.CheckIn(nil), j.entries[over:]...)
	}

	j.log.Debug("journal: recorded %s (%s, %s), booked=%d failed=%d",
		c.CycleID, c.Kind, c.Duration, j.booked, j.failed)
	return nil
}

// Recent returns up to n check-ins, newest first.
func (j *MemoryJournal) Recent(ctx context.Context, n int) ([]*domain.CheckIn, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if n <= 0 || n > len(j.entries) {
		n = len(j.entries)
	}
	out := make([]*domain.CheckIn, 0, n)
	for i := len(j.entries) - 1; i >= len(j.entries)-n; i-- {
		out = append(out, j.entries[i])
	}
	return out, nil
}

// Counts returns the number of successful and failed check-ins since start.
func (j *MemoryJournal) Counts(ctx context.Context) (booked, failed int, err error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.booked, j.failed, nil
}
