package domain

import (
	"context"
	"time"
)

// Booker submits an identifier to the booking service.
type Booker interface {
	Book(ctx context.Context, identifier string) (*Appointment, error)
}

// Speaker plays a message and signals completion on the returned channel.
// The channel is always closed, exactly once, whether the message played,
// timed out or could not be produced at all.
type Speaker interface {
	Speak(ctx context.Context, text string, maxWait time.Duration) <-chan struct{}
}

// StatusSink shows a single status line to the user.
type StatusSink interface {
	SetStatus(message string, kind StatusKind)
}

// Navigator moves the kiosk to another view.
type Navigator interface {
	Navigate(destination string, outcome Outcome)
}

// Focuser asks the platform to put input focus back on the identifier
// field. Implementations must be safe to call at any time.
type Focuser interface {
	RequestFocus()
}

// CheckInLog records completed submit cycles.
type CheckInLog interface {
	Record(ctx context.Context, c *CheckIn) error
	Recent(ctx context.Context, n int) ([]*CheckIn, error)
	Counts(ctx context.Context) (booked, failed int, err error)
}
