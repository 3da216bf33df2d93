// Package outcome turns a booking result into what the kiosk shows, says,
// and where it goes next.
package outcome

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// Default speech caps. Failure messages run longer.
const (
	DefaultSuccessMaxWait = 6000 * time.Millisecond
	DefaultFailureMaxWait = 8000 * time.Millisecond
)

// userMessager is implemented by errors that carry text meant for the user.
type userMessager interface {
	UserMessage() string
}

// Option configures the Router.
type Option func(*Router)

// WithScript sets the script a backend message must contain to be shown
// verbatim.
func WithScript(table *unicode.RangeTable) Option {
	return func(r *Router) { r.script = table }
}

// WithExpiredMarker sets the phrase identifying an expired identifier.
func WithExpiredMarker(marker string) Option {
	return func(r *Router) { r.expiredMarker = marker }
}

// WithSpeechCaps sets how long navigation waits on success and failure
// announcements.
func WithSpeechCaps(success, failure time.Duration) Option {
	return func(r *Router) {
		r.successMaxWait = success
		r.failureMaxWait = failure
	}
}

// Router classifies booking results. It holds no mutable state.
type Router struct {
	log            *logger.Logger
	script         *unicode.RangeTable
	expiredMarker  string
	successMaxWait time.Duration
	failureMaxWait time.Duration
}

// NewRouter creates a router with the Telugu defaults.
func NewRouter(log *logger.Logger, opts ...Option) *Router {
	r := &Router{
		log:            log,
		script:         TeluguBlock,
		expiredMarker:  ExpiredMarker,
		successMaxWait: DefaultSuccessMaxWait,
		failureMaxWait: DefaultFailureMaxWait,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify builds the Outcome for one booking attempt. A nil err with a
// non-nil appointment is a success; everything else is a failure.
func (r *Router) Classify(appt *domain.Appointment, err error) domain.Outcome {
	if err == nil && appt != nil {
		return r.success(appt)
	}
	if err == nil {
		err = errors.New("empty booking response")
	}
	return r.failure(err)
}

func (r *Router) success(appt *domain.Appointment) domain.Outcome {
	snapshot := *appt
	return domain.Outcome{
		Kind:           domain.OutcomeSuccess,
		Appointment:    &snapshot,
		DisplayMessage: LineBooked(),
		SpeechMessage:  LineBookedSpeech(snapshot.Doctor, snapshot.AppointmentTime),
		SpeechMaxWait:  r.successMaxWait,
		Destination:    domain.PrintSlipDestination(snapshot.AppointmentID),
	}
}

func (r *Router) failure(err error) domain.Outcome {
	raw := err.Error()
	var um userMessager
	if errors.As(err, &um) {
		raw = um.UserMessage()
	}

	msg := r.Localize(raw)
	r.log.Debug("outcome: failure %q -> %q", raw, msg)

	return domain.Outcome{
		Kind:           domain.OutcomeFailure,
		DisplayMessage: msg,
		SpeechMessage:  msg,
		SpeechMaxWait:  r.failureMaxWait,
		Destination:    domain.HomePath,
	}
}

// Localize applies the failure rules in order: the expired marker maps to
// the fixed 14-day message, text without a single rune of the kiosk script
// maps to the invalid-identifier message, anything else is kept as is.
func (r *Router) Localize(message string) string {
	message = norm.NFC.String(strings.TrimSpace(message))

	if r.expiredMarker != "" && strings.Contains(message, norm.NFC.String(r.expiredMarker)) {
		return LineExpired()
	}
	if !r.inScript(message) {
		return LineInvalidIdentifier()
	}
	return message
}

func (r *Router) inScript(s string) bool {
	for _, c := range s {
		if unicode.Is(r.script, c) {
			return true
		}
	}
	return false
}
