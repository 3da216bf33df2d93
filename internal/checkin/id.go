package checkin

import "github.com/google/uuid"

// newCycleID returns a short correlation id for one submit cycle, used to
// tie together the log lines of a single check-in.
func newCycleID() string {
	return uuid.NewString()[:8]
}
