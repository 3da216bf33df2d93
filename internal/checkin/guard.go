// Package checkin implements the kiosk's submit lifecycle: the guard that
// allows one booking at a time, the watcher that turns input into submit
// attempts, and the focus keeper.
package checkin

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
	"github.com/hammamikhairi/ottokiosk/internal/outcome"
)

// DefaultBookingTimeout bounds a single booking call.
const DefaultBookingTimeout = 15 * time.Second

// Classifier turns a booking result into an Outcome.
type Classifier interface {
	Classify(appt *domain.Appointment, err error) domain.Outcome
}

// Compile-time interface check.
var _ Classifier = (*outcome.Router)(nil)

// GuardOption configures the Guard.
type GuardOption func(*Guard)

// WithContext sets the parent context of every submit cycle. Cancelling it
// aborts in-flight bookings and speech.
func WithContext(ctx context.Context) GuardOption {
	return func(g *Guard) { g.ctx = ctx }
}

// WithBookingTimeout bounds each booking call. Zero disables the bound.
func WithBookingTimeout(d time.Duration) GuardOption {
	return func(g *Guard) { g.bookingTimeout = d }
}

// WithSubmittingLine sets the status shown while a booking is in flight.
func WithSubmittingLine(line string) GuardOption {
	return func(g *Guard) { g.submittingLine = line }
}

// WithJournal records every completed cycle in journal.
func WithJournal(journal domain.CheckInLog) GuardOption {
	return func(g *Guard) { g.journal = journal }
}

// WithOnIdle registers a hook called each time a cycle ends and the guard
// is back to Idle.
func WithOnIdle(fn func()) GuardOption {
	return func(g *Guard) { g.onIdle = fn }
}

// Guard serializes submissions: at most one cycle (book, classify, announce,
// navigate) runs at a time. Attempts made while a cycle runs are dropped.
type Guard struct {
	booker  domain.Booker
	router  Classifier
	speaker domain.Speaker
	status  domain.StatusSink
	nav     domain.Navigator
	log     *logger.Logger

	ctx            context.Context
	bookingTimeout time.Duration
	submittingLine string
	journal        domain.CheckInLog
	onIdle         func()

	state atomic.Int32

	mu     sync.Mutex // guards closed and wg.Add
	closed bool
	wg     sync.WaitGroup
}

// NewGuard creates an idle guard wired to its collaborators.
func NewGuard(
	booker domain.Booker,
	router Classifier,
	speaker domain.Speaker,
	status domain.StatusSink,
	nav domain.Navigator,
	log *logger.Logger,
	opts ...GuardOption,
) *Guard {
	g := &Guard{
		booker:         booker,
		router:         router,
		speaker:        speaker,
		status:         status,
		nav:            nav,
		log:            log,
		ctx:            context.Background(),
		bookingTimeout: DefaultBookingTimeout,
		submittingLine: outcome.LineSubmitting(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current submission state.
func (g *Guard) State() domain.SubmissionState {
	return domain.SubmissionState(g.state.Load())
}

// TrySubmit starts a submit cycle for identifier and reports whether it was
// accepted. Blank identifiers and attempts made while a cycle is in flight
// are rejected without side effects. On acceptance the "submitting" status
// is shown before TrySubmit returns; the rest of the cycle runs in the
// background. Once the guard's context is done or Close has been called,
// every attempt is refused.
func (g *Guard) TrySubmit(identifier string) bool {
	id := domain.NormalizeIdentifier(identifier)
	if id == "" {
		g.log.Debug("guard: ignoring blank identifier")
		return false
	}
	if g.ctx.Err() != nil {
		g.log.Debug("guard: shutting down, dropping attempt")
		return false
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		g.log.Debug("guard: closed, dropping attempt")
		return false
	}
	if !g.state.CompareAndSwap(int32(domain.Idle), int32(domain.InFlight)) {
		g.mu.Unlock()
		g.log.Debug("guard: submission already in flight, dropping attempt")
		return false
	}
	g.wg.Add(1)
	g.mu.Unlock()

	cycle := newCycleID()
	g.log.Info("[%s] submitting identifier (%d chars)", cycle, len([]rune(id)))
	g.status.SetStatus(g.submittingLine, domain.StatusNeutral)

	go g.run(cycle, id)
	return true
}

// Wait blocks until every started cycle has finished and the guard is Idle.
func (g *Guard) Wait() { g.wg.Wait() }

// Close refuses further submissions and waits for the cycle in flight, if
// any, to finish.
func (g *Guard) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.wg.Wait()
}

// run is one submit cycle. The release is deferred first so it runs after
// the panic recovery, on every path. A panic before navigation still ends
// in a failure outcome so the patient is never left on the submitting line.
func (g *Guard) run(cycle, id string) {
	defer g.wg.Done()
	defer g.release(cycle)

	started := time.Now()
	navigated := false
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("[%s] cycle panicked: %v", cycle, r)
			if !navigated {
				g.fail(cycle, started, fmt.Errorf("cycle panicked: %v", r))
			}
		}
	}()

	appt, err := g.book(id)
	if err != nil {
		g.log.Warn("[%s] booking failed after %s: %v", cycle, time.Since(started).Round(time.Millisecond), err)
	} else {
		g.log.Info("[%s] booked in %s", cycle, time.Since(started).Round(time.Millisecond))
	}

	out := g.router.Classify(appt, err)
	g.announce(cycle, out)
	navigated = true

	g.record(cycle, out, started)
}

// announce shows out, speaks it, and navigates once the speech resolves.
func (g *Guard) announce(cycle string, out domain.Outcome) {
	g.status.SetStatus(out.DisplayMessage, out.StatusKind())

	<-g.speaker.Speak(g.ctx, out.SpeechMessage, out.SpeechMaxWait)

	g.log.Info("[%s] %s, navigating to %s", cycle, out.Kind, out.Destination)
	g.nav.Navigate(out.Destination, out)
}

// fail announces a failure for a cycle that broke down before navigating.
func (g *Guard) fail(cycle string, started time.Time, cause error) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("[%s] failure announcement panicked: %v", cycle, r)
		}
	}()

	out := g.router.Classify(nil, cause)
	g.announce(cycle, out)
	g.record(cycle, out, started)
}

func (g *Guard) record(cycle string, out domain.Outcome, started time.Time) {
	if g.journal == nil {
		return
	}
	entry := &domain.CheckIn{
		CycleID:   cycle,
		Kind:      out.Kind,
		Message:   out.DisplayMessage,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if out.Appointment != nil {
		entry.AppointmentID = out.Appointment.AppointmentID
	}
	if err := g.journal.Record(g.ctx, entry); err != nil {
		g.log.Error("[%s] journal: %v", cycle, err)
	}
}

func (g *Guard) book(id string) (*domain.Appointment, error) {
	ctx := g.ctx
	if g.bookingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.bookingTimeout)
		defer cancel()
	}
	return g.booker.Book(ctx, id)
}

func (g *Guard) release(cycle string) {
	g.state.Store(int32(domain.Idle))
	g.log.Debug("[%s] guard idle", cycle)
	if g.onIdle != nil {
		g.onIdle()
	}
}
