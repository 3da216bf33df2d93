package checkin

import (
	"context"
	"time"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// DefaultFocusInterval is how often focus is pulled back to the field.
const DefaultFocusInterval = 3 * time.Second

// FocusOption configures the FocusKeeper.
type FocusOption func(*FocusKeeper)

// WithFocusInterval sets the refocus period.
func WithFocusInterval(d time.Duration) FocusOption {
	return func(f *FocusKeeper) {
		if d > 0 {
			f.interval = d
		}
	}
}

// FocusKeeper keeps the identifier field focused so a scan is never lost to
// another widget. It never touches the field's value.
type FocusKeeper struct {
	focuser  domain.Focuser
	log      *logger.Logger
	interval time.Duration
}

// NewFocusKeeper creates a focus keeper.
func NewFocusKeeper(focuser domain.Focuser, log *logger.Logger, opts ...FocusOption) *FocusKeeper {
	f := &FocusKeeper{
		focuser:  focuser,
		log:      log,
		interval: DefaultFocusInterval,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run refocuses once immediately and then on every tick. Blocks until ctx
// is cancelled. Intended to be called as a goroutine.
func (f *FocusKeeper) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.log.Debug("focus keeper started (interval=%s)", f.interval)
	f.Nudge()

	for {
		select {
		case <-ctx.Done():
			f.log.Debug("focus keeper stopped")
			return
		case <-ticker.C:
			f.Nudge()
		}
	}
}

// Nudge requests focus now.
func (f *FocusKeeper) Nudge() {
	f.focuser.RequestFocus()
}
