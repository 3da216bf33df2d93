package checkin

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// fakeSubmitter records submit attempts. While inFlight is set it rejects
// them the way the guard does.
type fakeSubmitter struct {
	mu       sync.Mutex
	ids      []string
	inFlight bool
	tries    int
}

func (f *fakeSubmitter) TrySubmit(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tries++
	if f.inFlight {
		return false
	}
	f.ids = append(f.ids, id)
	return true
}

func (f *fakeSubmitter) State() domain.SubmissionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight {
		return domain.InFlight
	}
	return domain.Idle
}

func (f *fakeSubmitter) setInFlight(v bool) {
	f.mu.Lock()
	f.inFlight = v
	f.mu.Unlock()
}

func (f *fakeSubmitter) submitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

func (f *fakeSubmitter) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tries
}

// statusLog records status lines.
type statusLog struct {
	mu    sync.Mutex
	lines []string
}

func (s *statusLog) SetStatus(msg string, _ domain.StatusKind) {
	s.mu.Lock()
	s.lines = append(s.lines, msg)
	s.mu.Unlock()
}

const testDebounce = 30 * time.Millisecond

func newTestWatcher(sub Submitter, opts ...WatcherOption) *Watcher {
	opts = append([]WatcherOption{WithDebounce(testDebounce)}, opts...)
	return NewWatcher(sub, &statusLog{}, logger.New(logger.LevelOff, nil), opts...)
}

func settle() { time.Sleep(4 * testDebounce) }

func TestDebounceMinLength(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"too short", "1234", false},
		{"exactly min", "12345", true},
		{"long scan", "CR2024000123", true},
		{"padded short", "  1234  ", false},
		{"blank", "     ", false},
		{"telugu runes count as characters", "అఆఇఈఉ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &fakeSubmitter{}
			w := newTestWatcher(sub)

			w.Change(tt.value)
			settle()

			got := len(sub.submitted()) == 1
			if got != tt.want {
				t.Fatalf("submitted=%v, want %v (attempts=%d)", got, tt.want, sub.attempts())
			}
		})
	}
}

func TestDebounceRestartsOnEachChange(t *testing.T) {
	sub := &fakeSubmitter{}
	w := newTestWatcher(sub)

	// A scanner types one character at a time, faster than the debounce.
	for _, v := range []string{"C", "CR", "CR1", "CR12", "CR123", "CR1234"} {
		w.Change(v)
		time.Sleep(testDebounce / 3)
	}
	settle()

	ids := sub.submitted()
	if len(ids) != 1 || ids[0] != "CR1234" {
		t.Fatalf("expected a single submit of the full scan, got %v", ids)
	}
}

func TestDebounceSkipsWhileInFlight(t *testing.T) {
	sub := &fakeSubmitter{inFlight: true}
	w := newTestWatcher(sub)

	w.Change("CR12345")
	settle()

	if sub.attempts() != 0 {
		t.Fatalf("debounce should not attempt while in flight, got %d attempts", sub.attempts())
	}
}

func TestEnterBypassesMinLength(t *testing.T) {
	sub := &fakeSubmitter{}
	w := newTestWatcher(sub)

	w.Change("12")
	if !w.Enter() {
		t.Fatal("enter with a non-empty value should submit")
	}
	settle()

	ids := sub.submitted()
	if len(ids) != 1 || ids[0] != "12" {
		t.Fatalf("expected exactly one submit of 12, got %v", ids)
	}
}

func TestSubmitButtonCancelsPendingDebounce(t *testing.T) {
	sub := &fakeSubmitter{}
	w := newTestWatcher(sub)

	w.Change("CR12345")
	w.SubmitButton()
	settle()

	if n := len(sub.submitted()); n != 1 {
		t.Fatalf("expected one submit, got %d", n)
	}
}

func TestManualSubmitEmptyIsNoOp(t *testing.T) {
	sub := &fakeSubmitter{}
	w := newTestWatcher(sub)

	w.Change("   ")
	if w.Enter() || w.SubmitButton() {
		t.Fatal("blank value must not submit")
	}
	if sub.attempts() != 0 {
		t.Fatalf("expected no attempts, got %d", sub.attempts())
	}
}

func TestEnterWhileInFlightIsDropped(t *testing.T) {
	sub := &fakeSubmitter{}
	w := newTestWatcher(sub)
	sub.setInFlight(true)

	w.Change("CR12345")
	if w.Enter() {
		t.Fatal("enter should be rejected while in flight")
	}
	sub.setInFlight(false)
	settle()

	if n := len(sub.submitted()); n != 0 {
		t.Fatalf("rejected attempts must not be queued, got %d submits", n)
	}
}

func TestKeypad(t *testing.T) {
	sub := &fakeSubmitter{}
	status := &statusLog{}
	var changes []string
	w := NewWatcher(sub, status, logger.New(logger.LevelOff, nil),
		WithDebounce(testDebounce),
		WithOnChange(func(v string) { changes = append(changes, v) }))

	for _, d := range []int{1, 2, 3, 4, 5, 6} {
		w.Press(DigitKey(d))
	}
	w.Press(KeyBackspace)
	settle()

	if got := w.Value(); got != "12345" {
		t.Fatalf("expected 12345, got %q", got)
	}
	if sub.attempts() != 0 {
		t.Fatal("keypad input must not submit by itself")
	}
	if len(changes) != 7 || changes[6] != "12345" {
		t.Fatalf("expected 7 change notifications ending in 12345, got %v", changes)
	}

	w.Press(KeyClear)
	if w.Value() != "" {
		t.Fatalf("clear should empty the value, got %q", w.Value())
	}
	status.mu.Lock()
	defer status.mu.Unlock()
	if len(status.lines) != 1 || status.lines[0] != "" {
		t.Fatalf("clear should blank the status, got %v", status.lines)
	}
}

func TestKeypadCancelsPendingDebounce(t *testing.T) {
	sub := &fakeSubmitter{}
	w := newTestWatcher(sub)

	w.Change("CR12345")
	w.Press(DigitKey(6))
	settle()

	if sub.attempts() != 0 {
		t.Fatalf("a keypad edit should cancel the pending debounce, got %d attempts", sub.attempts())
	}
	if got := w.Value(); got != "CR123456" {
		t.Fatalf("expected CR123456, got %q", got)
	}
	if !w.Enter() {
		t.Fatal("enter should still submit the edited value")
	}
}

func TestKeypadStopsAtMaxLength(t *testing.T) {
	sub := &fakeSubmitter{}
	var changes int
	w := NewWatcher(sub, &statusLog{}, logger.New(logger.LevelOff, nil),
		WithDebounce(testDebounce),
		WithOnChange(func(string) { changes++ }))

	full := strings.Repeat("1", domain.MaxIdentifierLength)
	w.Change(full)
	w.Press(DigitKey(2))
	settle()

	if got := w.Value(); got != full {
		t.Fatalf("digit past the limit should be ignored, got %d chars", len(got))
	}
	if changes != 0 {
		t.Fatalf("an ignored digit must not notify, got %d", changes)
	}
	if ids := sub.submitted(); len(ids) != 1 || ids[0] != full {
		t.Fatalf("the pending debounce should still fire once, got %d submits", len(ids))
	}

	w.Press(KeyBackspace)
	w.Press(DigitKey(2))
	if got := w.Value(); got != full[:len(full)-1]+"2" {
		t.Fatalf("editing below the limit should work, got %q", got)
	}
}

func TestBackspaceRemovesWholeRune(t *testing.T) {
	w := newTestWatcher(&fakeSubmitter{})
	w.Change("12అ")
	w.Press(KeyBackspace)
	if got := w.Value(); got != "12" {
		t.Fatalf("expected 12, got %q", got)
	}
	w.Press(KeyBackspace)
	w.Press(KeyBackspace)
	w.Press(KeyBackspace)
	if got := w.Value(); got != "" {
		t.Fatalf("backspace on empty should stay empty, got %q", got)
	}
}

func TestResetDropsPendingDebounce(t *testing.T) {
	sub := &fakeSubmitter{}
	w := newTestWatcher(sub)

	w.Change("CR12345")
	w.Reset()
	settle()

	if sub.attempts() != 0 {
		t.Fatalf("reset should cancel the debounce, got %d attempts", sub.attempts())
	}
	if w.Value() != "" {
		t.Fatalf("expected empty value, got %q", w.Value())
	}
}

func TestKeyString(t *testing.T) {
	if DigitKey(7).String() != "7" {
		t.Fatalf("unexpected label %q", DigitKey(7))
	}
	if KeyClear.String() != "clear" || KeyBackspace.String() != "backspace" {
		t.Fatal("unexpected control key labels")
	}
}
