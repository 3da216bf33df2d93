// Package display provides the kiosk's terminal UI using Bubble Tea.
//
// The [UI] renders the check-in screen: banner, identifier field, status
// line and keypad legend, plus a confirmation view after a successful
// booking. It implements the status, navigation and focus ports, so the
// submit pipeline drives it from any goroutine. Those calls only update
// shared screen state under a mutex and then ask the event loop to
// re-render, so they never block on the program.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottokiosk/internal/checkin"
	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// DefaultSlipHold is how long the confirmation view stays up.
const DefaultSlipHold = 15 * time.Second

const windowTitle = "Check-in"

// ── Styles ───────────────────────────────────────────────────────

var (
	// BannerStyle is muted slate for the banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	inputTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4e7"))

	statusNeutralStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#bae6fd"))

	statusSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#bbf7d0")).
				Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5")).
				Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	slipBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#bbf7d0")).
			Padding(1, 3)

	slipLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa")).
			Width(14)

	slipValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4e7"))
)

// ── UI ───────────────────────────────────────────────────────────

// Input is the field controller the UI forwards key events to.
type Input interface {
	Change(value string)
	Enter() bool
	SubmitButton() bool
	Press(k checkin.Key)
	Reset()
	Value() string
}

// Compile-time interface checks.
var (
	_ Input             = (*checkin.Watcher)(nil)
	_ domain.StatusSink = (*UI)(nil)
	_ domain.Navigator  = (*UI)(nil)
	_ domain.Focuser    = (*UI)(nil)
)

type view int

const (
	viewHome view = iota
	viewSlip
)

// screen is the state shared between the event loop and the ports.
type screen struct {
	view         view
	status       string
	statusKind   domain.StatusKind
	outcome      domain.Outcome
	slipUntil    time.Time
	focusPending bool
}

// Option configures the UI.
type Option func(*UI)

// WithSlipHold sets how long the confirmation view stays up.
func WithSlipHold(d time.Duration) Option {
	return func(u *UI) {
		if d > 0 {
			u.slipHold = d
		}
	}
}

// WithJournal shows check-in counts from journal in the footer.
func WithJournal(journal domain.CheckInLog) Option {
	return func(u *UI) { u.journal = journal }
}

// WithOnFocusIn registers a hook for terminal focus-in events.
func WithOnFocusIn(fn func()) Option {
	return func(u *UI) { u.onFocusIn = fn }
}

// UI manages the kiosk terminal through Bubble Tea.
//
// Call [NewUI], [UI.Attach], then [UI.Run] (blocking).
type UI struct {
	log       *logger.Logger
	slipHold  time.Duration
	onFocusIn func()
	journal   domain.CheckInLog

	input Input
	state func() domain.SubmissionState

	mu        sync.Mutex
	scr       screen
	slipGen   uint64
	slipTimer *time.Timer

	program atomic.Pointer[tea.Program]
	readyCh chan struct{}
	done    atomic.Bool
}

// NewUI creates the display. Call Attach and then Run.
func NewUI(log *logger.Logger, opts ...Option) *UI {
	u := &UI{
		log:      log,
		slipHold: DefaultSlipHold,
		state:    func() domain.SubmissionState { return domain.Idle },
		readyCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Attach connects the field controller and the submission state source.
// Must be called before Run.
func (u *UI) Attach(input Input, state func() domain.SubmissionState) {
	u.input = input
	if state != nil {
		u.state = state
	}
}

// SetStatus replaces the status line. Safe from any goroutine.
func (u *UI) SetStatus(message string, kind domain.StatusKind) {
	u.mu.Lock()
	u.scr.status = message
	u.scr.statusKind = kind
	u.mu.Unlock()
	u.Refresh()
}

// Navigate switches views. A print-slip destination shows the booking
// confirmation; anything else returns to the empty check-in screen.
func (u *UI) Navigate(destination string, out domain.Outcome) {
	if strings.HasPrefix(destination, domain.PrintSlipPath) {
		u.showSlip(out)
	} else {
		u.goHome()
	}
	if u.input != nil {
		u.input.Reset()
	}
	u.log.Debug("display: navigated to %s", destination)
	u.Refresh()
}

// RequestFocus puts keyboard focus back on the identifier field at the next
// render. Ignored while the confirmation view is up.
func (u *UI) RequestFocus() {
	u.mu.Lock()
	u.scr.focusPending = true
	u.mu.Unlock()
	u.Refresh()
}

// Refresh asks the event loop to re-render. It never blocks.
func (u *UI) Refresh() {
	p := u.program.Load()
	if p == nil || u.done.Load() {
		return
	}
	go p.Send(refreshMsg{})
}

func (u *UI) snapshot() screen {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.scr
}

func (u *UI) showSlip(out domain.Outcome) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.stopSlipLocked()
	u.scr.view = viewSlip
	u.scr.outcome = out
	u.scr.slipUntil = time.Now().Add(u.slipHold)

	gen := u.slipGen
	u.slipTimer = time.AfterFunc(u.slipHold, func() { u.expireSlip(gen) })
}

func (u *UI) goHome() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.stopSlipLocked()
	u.scr.view = viewHome
	u.scr.outcome = domain.Outcome{}
	u.scr.status = ""
	u.scr.statusKind = domain.StatusNeutral
	u.scr.focusPending = true
}

// expireSlip returns home unless the slip was dismissed or replaced since
// the timer was armed.
func (u *UI) expireSlip(gen uint64) {
	u.mu.Lock()
	stale := gen != u.slipGen || u.scr.view != viewSlip
	u.mu.Unlock()
	if stale {
		return
	}
	u.Navigate(domain.HomePath, domain.Outcome{})
}

func (u *UI) stopSlipLocked() {
	u.slipGen++
	if u.slipTimer != nil {
		u.slipTimer.Stop()
		u.slipTimer = nil
	}
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if p := u.program.Load(); p != nil {
		p.Quit()
	}
}

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	if u.input == nil {
		return fmt.Errorf("display: no input attached")
	}

	m := newModel(u)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	u.program.Store(p)
	_, err := p.Run()
	u.done.Store(true)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	ui      *UI
	input   textinput.Model
	spinner spinner.Model
	readyCh chan struct{}
	width   int
}

func newModel(u *UI) model {
	ti := textinput.New()
	// Plain-text prompt keeps the textinput width math correct.
	ti.Prompt = "CR> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = inputTextStyle
	ti.Placeholder = "scan or type"
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.CharLimit = domain.MaxIdentifierLength
	ti.Width = 40
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(statusNeutralStyle),
	)

	return model{
		ui:      u,
		input:   ti,
		spinner: sp,
		readyCh: u.readyCh,
	}
}

// Messages.
type (
	tickMsg    time.Time
	refreshMsg struct{}
)

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		tickCmd(),
		tea.SetWindowTitle(windowTitle),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.ui.snapshot().view == viewSlip {
			m.ui.Navigate(domain.HomePath, domain.Outcome{})
			return m, nil
		}
		return m.handleKey(msg)

	case tea.FocusMsg:
		m.ui.log.Debug("display: terminal focus in")
		if m.ui.onFocusIn != nil {
			m.ui.onFocusIn()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		const promptLen = 4
		if w := msg.Width - promptLen - 4; w > 10 && w < 60 {
			m.input.Width = w
		}
		return m, nil

	case refreshMsg:
		cmd := m.sync()
		return m, cmd

	case tickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey maps keys on the check-in screen. Alt+digit and Alt+Backspace
// are the on-screen keypad; Esc is its clear key.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	in := m.ui.input

	switch {
	case msg.Type == tea.KeyEnter:
		in.Enter()
		return m, nil
	case msg.Type == tea.KeyF2:
		in.SubmitButton()
		return m, nil
	case msg.Type == tea.KeyEsc:
		in.Press(checkin.KeyClear)
		cmd := m.sync()
		return m, cmd
	case msg.Alt && msg.Type == tea.KeyBackspace:
		in.Press(checkin.KeyBackspace)
		cmd := m.sync()
		return m, cmd
	case msg.Alt && msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9':
		in.Press(checkin.DigitKey(int(msg.Runes[0] - '0')))
		cmd := m.sync()
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		in.Change(v)
	}
	return m, cmd
}

// sync pulls watcher-owned changes into the text field and applies any
// pending focus request.
func (m *model) sync() tea.Cmd {
	if v := m.ui.input.Value(); v != m.input.Value() {
		m.input.SetValue(v)
		m.input.CursorEnd()
	}

	m.ui.mu.Lock()
	pending := m.ui.scr.focusPending
	m.ui.scr.focusPending = false
	slip := m.ui.scr.view == viewSlip
	m.ui.mu.Unlock()

	if slip {
		m.input.Blur()
		return nil
	}
	if pending && !m.input.Focused() {
		return m.input.Focus()
	}
	return nil
}

func (m model) View() string {
	scr := m.ui.snapshot()
	if scr.view == viewSlip {
		return m.renderSlip(scr)
	}

	var b strings.Builder
	b.WriteString(RenderBanner(m.width))
	b.WriteByte('\n')
	b.WriteString(headingStyle.Render("  Scan your CR card or enter your CR number"))
	b.WriteString("\n\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n\n  ")
	b.WriteString(m.renderStatus(scr))
	b.WriteString("\n\n")
	b.WriteString(renderLegend())
	if counts := m.renderCounts(); counts != "" {
		b.WriteString("\n\n  ")
		b.WriteString(counts)
	}
	return b.String()
}

func (m model) renderCounts() string {
	if m.ui.journal == nil {
		return ""
	}
	booked, failed, err := m.ui.journal.Counts(context.Background())
	if err != nil {
		return ""
	}
	return hintStyle.Render(fmt.Sprintf("checked in: %d", booked)) +
		sepStyle.Render("  │  ") +
		hintStyle.Render(fmt.Sprintf("not booked: %d", failed))
}

func (m model) renderStatus(scr screen) string {
	inFlight := m.ui.state() == domain.InFlight
	if scr.status == "" && !inFlight {
		return ""
	}

	var style lipgloss.Style
	switch scr.statusKind {
	case domain.StatusSuccess:
		style = statusSuccessStyle
	case domain.StatusError:
		style = statusErrorStyle
	default:
		style = statusNeutralStyle
	}

	line := style.Render(scr.status)
	if inFlight {
		line = m.spinner.View() + " " + line
	}
	return line
}

func renderLegend() string {
	keys := []struct{ key, label string }{
		{"Alt+0-9", "keypad"},
		{"Alt+⌫", "delete"},
		{"Esc", "clear"},
		{"Enter/F2", "submit"},
		{"Ctrl+C", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, keyStyle.Render(k.key)+" "+hintStyle.Render(k.label))
	}
	return "  " + strings.Join(parts, sepStyle.Render("  │  "))
}

func (m model) renderSlip(scr screen) string {
	var rows []string
	add := func(label, value string) {
		if value == "" {
			return
		}
		rows = append(rows, slipLabelStyle.Render(label)+slipValueStyle.Render(value))
	}

	if a := scr.outcome.Appointment; a != nil {
		add("Name", a.Name)
		add("CR number", a.CRNumber)
		add("Age / Gender", joinNonEmpty(" / ", a.Age, a.Gender))
		add("Department", a.Department)
		add("Doctor", a.Doctor)
		add("Time", a.AppointmentTime)
		add("Appointment", a.AppointmentID)
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(statusSuccessStyle.Render(scr.outcome.DisplayMessage))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().MarginLeft(2).Render(
		slipBoxStyle.Render(strings.Join(rows, "\n"))))
	b.WriteString("\n\n  ")

	left := time.Until(scr.slipUntil).Round(time.Second)
	if left < 0 {
		left = 0
	}
	b.WriteString(hintStyle.Render(fmt.Sprintf(
		"Please collect your slip. Returning in %s, or press any key.", fmtDuration(left))))
	return b.String()
}

// ── Helpers ──────────────────────────────────────────────────────

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
