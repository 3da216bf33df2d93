package domain

import (
	"net/url"
	"time"
)

// Appointment is what the booking service returns for a successful check-in.
// Every field is optional on the wire.
type Appointment struct {
	AppointmentID   string
	Doctor          string
	AppointmentTime string
	Name            string
	CRNumber        string
	Age             string
	Gender          string
	Department      string
}

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
)

// String returns a human-readable outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one submission. It is built once by
// the outcome router and treated as read-only afterwards.
type Outcome struct {
	Kind OutcomeKind

	// Appointment is set for OutcomeSuccess only.
	Appointment *Appointment

	DisplayMessage string
	SpeechMessage  string
	// SpeechMaxWait caps how long navigation waits on the spoken message.
	SpeechMaxWait time.Duration
	Destination   string
}

// Succeeded reports whether the outcome is a successful booking.
func (o Outcome) Succeeded() bool { return o.Kind == OutcomeSuccess }

// StatusKind selects how a status line is styled.
type StatusKind int

const (
	StatusNeutral StatusKind = iota
	StatusSuccess
	StatusError
)

// StatusKind returns the status style matching the outcome.
func (o Outcome) StatusKind() StatusKind {
	if o.Succeeded() {
		return StatusSuccess
	}
	return StatusError
}

// Navigation targets.
const (
	HomePath      = "/"
	PrintSlipPath = "/print_slip/"
)

// PrintSlipDestination returns the slip view for an appointment id, with the
// id path-escaped.
func PrintSlipDestination(appointmentID string) string {
	return PrintSlipPath + url.PathEscape(appointmentID)
}

// CheckIn is one completed submit cycle as kept in the journal. The raw
// identifier is not stored.
type CheckIn struct {
	CycleID       string
	Kind          OutcomeKind
	AppointmentID string
	Message       string
	StartedAt     time.Time
	Duration      time.Duration
}
