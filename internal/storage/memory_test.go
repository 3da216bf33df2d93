package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

func checkIn(id string, kind domain.OutcomeKind) *domain.CheckIn {
	return &domain.CheckIn{
		CycleID:   id,
		Kind:      kind,
		StartedAt: time.Now(),
		Duration:  time.Second,
	}
}

func TestJournalRecordAndCounts(t *testing.T) {
	j := NewMemoryJournal(0, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	j.Record(ctx, checkIn("a", domain.OutcomeSuccess))
	j.Record(ctx, checkIn("b", domain.OutcomeFailure))
	j.Record(ctx, checkIn("c", domain.OutcomeSuccess))

	booked, failed, err := j.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if booked != 2 || failed != 1 {
		t.Fatalf("expected 2 booked 1 failed, got %d/%d", booked, failed)
	}

	recent, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].CycleID != "c" || recent[1].CycleID != "b" {
		t.Fatalf("expected newest first [c b], got %v", ids(recent))
	}
}

func TestJournalBound(t *testing.T) {
	j := NewMemoryJournal(3, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		j.Record(ctx, checkIn(fmt.Sprint(i), domain.OutcomeFailure))
	}

	recent, _ := j.Recent(ctx, 0)
	if got := ids(recent); len(got) != 3 || got[0] != "9" || got[2] != "7" {
		t.Fatalf("expected [9 8 7], got %v", got)
	}
	_, failed, _ := j.Counts(ctx)
	if failed != 10 {
		t.Fatalf("counts must include dropped entries, got %d", failed)
	}
}

func TestJournalConcurrentRecord(t *testing.T) {
	j := NewMemoryJournal(0, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			j.Record(ctx, checkIn(fmt.Sprint(i), domain.OutcomeSuccess))
		}(i)
	}
	wg.Wait()

	booked, _, _ := j.Counts(ctx)
	if booked != 50 {
		t.Fatalf("expected 50 booked, got %d", booked)
	}
}

func ids(cs []*domain.CheckIn) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.CycleID
	}
	return out
}
