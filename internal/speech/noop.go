package speech

import (
	"context"
	"time"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// Compile-time interface check.
var _ domain.Speaker = (*Silent)(nil)

// Silent is a speaker that never plays anything. Used when speech is
// disabled or no audio device is present.
type Silent struct {
	log *logger.Logger
}

// NewSilent creates a silent speaker.
func NewSilent(log *logger.Logger) *Silent {
	return &Silent{log: log}
}

// Speak resolves immediately.
func (n *Silent) Speak(ctx context.Context, text string, maxWait time.Duration) <-chan struct{} {
	n.log.Debug("speech disabled: would say %q", text)
	done := make(chan struct{})
	close(done)
	return done
}
