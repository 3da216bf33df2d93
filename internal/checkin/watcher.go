package checkin

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// DefaultDebounce is the quiet period after the last input change before an
// automatic submit is attempted. Scanners type a whole code well inside it.
const DefaultDebounce = 200 * time.Millisecond

// Submitter is the part of the Guard the watcher needs.
type Submitter interface {
	TrySubmit(identifier string) bool
	State() domain.SubmissionState
}

// Compile-time interface check.
var _ Submitter = (*Guard)(nil)

// Key is an on-screen keypad key.
type Key int

const (
	KeyDigit0 Key = iota
	KeyDigit1
	KeyDigit2
	KeyDigit3
	KeyDigit4
	KeyDigit5
	KeyDigit6
	KeyDigit7
	KeyDigit8
	KeyDigit9
	KeyClear
	KeyBackspace
)

// DigitKey returns the keypad key for d, which must be 0-9.
func DigitKey(d int) Key { return KeyDigit0 + Key(d) }

// String returns the key label.
func (k Key) String() string {
	switch {
	case k >= KeyDigit0 && k <= KeyDigit9:
		return string(rune('0' + int(k-KeyDigit0)))
	case k == KeyClear:
		return "clear"
	case k == KeyBackspace:
		return "backspace"
	default:
		return "unknown"
	}
}

// WatcherOption configures the Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce period.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithMinLength sets the shortest identifier the debounce will submit.
func WithMinLength(n int) WatcherOption {
	return func(w *Watcher) {
		if n > 0 {
			w.minLength = n
		}
	}
}

// WithOnChange registers a hook called when the watcher itself changes the
// value (keypad, reset), so the display can re-render.
func WithOnChange(fn func(value string)) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// Watcher owns the identifier field's value and decides when it becomes a
// submit attempt. Typing or scanning goes through Change and is debounced;
// Enter and the submit button go straight to the guard.
type Watcher struct {
	guard     Submitter
	status    domain.StatusSink
	log       *logger.Logger
	debounce  time.Duration
	minLength int
	onChange  func(string)

	mu    sync.Mutex
	value string
	timer *time.Timer
	gen   uint64 // bumped on every timer restart or cancel
}

// NewWatcher creates a watcher that submits through guard.
func NewWatcher(guard Submitter, status domain.StatusSink, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		guard:     guard,
		status:    status,
		log:       log,
		debounce:  DefaultDebounce,
		minLength: domain.DefaultMinIdentifierLength,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Value returns the current field value.
func (w *Watcher) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// Change records a raw input change and restarts the debounce timer.
func (w *Watcher) Change(value string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.value = value
	w.cancelLocked()
	gen := w.gen
	w.timer = time.AfterFunc(w.debounce, func() { w.fire(gen) })
}

// Enter submits the current value immediately.
func (w *Watcher) Enter() bool { return w.submitNow("enter") }

// SubmitButton submits the current value immediately.
func (w *Watcher) SubmitButton() bool { return w.submitNow("button") }

// Press applies a keypad key. Keypad edits never submit on their own, and
// any key cancels a pending debounce, so a scan followed by a keypad edit
// only submits on Enter or the button. Digits past MaxIdentifierLength are
// ignored and leave a pending debounce alone.
func (w *Watcher) Press(k Key) {
	w.mu.Lock()
	isDigit := k >= KeyDigit0 && k <= KeyDigit9
	if isDigit && utf8.RuneCountInString(w.value) >= domain.MaxIdentifierLength {
		w.mu.Unlock()
		w.log.Debug("watcher: field full, ignoring keypad %s", k)
		return
	}
	w.cancelLocked()
	switch {
	case isDigit:
		w.value += k.String()
	case k == KeyBackspace:
		if _, size := utf8.DecodeLastRuneInString(w.value); size > 0 {
			w.value = w.value[:len(w.value)-size]
		}
	case k == KeyClear:
		w.value = ""
	default:
		w.mu.Unlock()
		w.log.Warn("watcher: unknown keypad key %d", int(k))
		return
	}
	value := w.value
	w.mu.Unlock()

	w.log.Debug("watcher: keypad %s", k)
	if k == KeyClear {
		w.status.SetStatus("", domain.StatusNeutral)
	}
	w.notify(value)
}

// Reset empties the field and drops any pending debounce.
func (w *Watcher) Reset() {
	w.mu.Lock()
	w.cancelLocked()
	w.value = ""
	w.mu.Unlock()
	w.notify("")
}

// Stop cancels a pending debounce. Used on shutdown.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.cancelLocked()
	w.mu.Unlock()
}

func (w *Watcher) submitNow(trigger string) bool {
	w.mu.Lock()
	w.cancelLocked()
	value := w.value
	w.mu.Unlock()
	return w.submit(value, trigger)
}

// fire runs when the debounce period elapses. A stale generation means the
// timer was restarted or cancelled after it was armed.
func (w *Watcher) fire(gen uint64) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	value := w.value
	w.mu.Unlock()

	if !domain.EligibleForAutoSubmit(value, w.minLength) {
		return
	}
	if w.guard.State() == domain.InFlight {
		w.log.Debug("watcher: debounce fired while in flight, skipping")
		return
	}
	w.submit(value, "debounce")
}

func (w *Watcher) submit(value, trigger string) bool {
	if domain.NormalizeIdentifier(value) == "" {
		return false
	}
	accepted := w.guard.TrySubmit(value)
	w.log.Debug("watcher: %s submit accepted=%v", trigger, accepted)
	return accepted
}

func (w *Watcher) cancelLocked() {
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) notify(value string) {
	if w.onChange != nil {
		w.onChange(value)
	}
}
