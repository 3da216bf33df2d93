// Kiosk is a self-service OP check-in terminal: a patient scans or types
// their CR number, the kiosk books the appointment, announces the result
// aloud and shows the confirmation.
//
// Usage:
//
//	kiosk [--verbose] [--quiet] [--log-file=PATH] [--no-speech] [--base-url=URL]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/hammamikhairi/ottokiosk/internal/booking"
	"github.com/hammamikhairi/ottokiosk/internal/checkin"
	"github.com/hammamikhairi/ottokiosk/internal/config"
	"github.com/hammamikhairi/ottokiosk/internal/display"
	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
	"github.com/hammamikhairi/ottokiosk/internal/outcome"
	"github.com/hammamikhairi/ottokiosk/internal/speech"
	"github.com/hammamikhairi/ottokiosk/internal/storage"
)

var version = "dev"

var cli struct {
	Version  kong.VersionFlag
	Verbose  bool   `help:"Enable verbose/debug logging."`
	Quiet    bool   `help:"Disable all logging."`
	LogFile  string `help:"File to write logs to (use \"stderr\" to log to console)." default:".kiosk-logs/kiosk.log"`
	NoSpeech bool   `help:"Disable spoken announcements."`
	BaseURL  string `help:"Backend origin, overrides KIOSK_BASE_URL."`
}

func main() {
	_ = godotenv.Load()

	kong.Parse(&cli,
		kong.Name("kiosk"),
		kong.Description("OP appointment check-in kiosk"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	cfg, err := config.Load()
	if err != nil {
		config.Exitf("error: %v", err)
	}
	if cli.BaseURL != "" {
		cfg.BaseURL = cli.BaseURL
	}

	logLevel := logger.LevelNormal
	if cli.Verbose {
		logLevel = logger.LevelVerbose
	}
	if cli.Quiet {
		logLevel = logger.LevelOff
	}
	log := openLog(logLevel, cli.LogFile)
	defer log.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Wire dependencies.
	bookingClient := booking.NewClient(cfg.BaseURL, log)
	router := outcome.NewRouter(log,
		outcome.WithSpeechCaps(cfg.SpeechMaxWait, cfg.FailureSpeechMaxWait),
	)
	speaker := buildSpeaker(ctx, cfg, log, cli.NoSpeech)
	journal := storage.NewMemoryJournal(storage.DefaultJournalSize, log)

	var keeper *checkin.FocusKeeper
	ui := display.NewUI(log,
		display.WithSlipHold(cfg.SlipHold),
		display.WithJournal(journal),
		display.WithOnFocusIn(func() { keeper.Nudge() }),
	)

	guard := checkin.NewGuard(bookingClient, router, speaker, ui, ui, log,
		checkin.WithContext(ctx),
		checkin.WithBookingTimeout(cfg.BookingTimeout),
		checkin.WithJournal(journal),
		checkin.WithOnIdle(ui.Refresh),
	)
	watcher := checkin.NewWatcher(guard, ui, log,
		checkin.WithDebounce(cfg.Debounce),
		checkin.WithMinLength(cfg.MinLength),
		checkin.WithOnChange(func(string) { ui.Refresh() }),
	)
	keeper = checkin.NewFocusKeeper(ui, log, checkin.WithFocusInterval(cfg.FocusInterval))
	ui.Attach(watcher, guard.State)

	log.Info("kiosk %s starting (backend=%s, min length=%d, debounce=%s)",
		version, cfg.BaseURL, cfg.MinLength, cfg.Debounce)

	go func() {
		ui.WaitReady()
		keeper.Run(ctx)
	}()
	go func() {
		<-ctx.Done()
		ui.Quit()
	}()

	// Bubble Tea owns the terminal; blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}

	cancel()
	watcher.Stop()
	guard.Close()

	logSummary(log, journal)
}

// logSummary reports the session's check-in counts on shutdown.
func logSummary(log *logger.Logger, journal domain.CheckInLog) {
	booked, failed, err := journal.Counts(context.Background())
	if err != nil {
		log.Error("journal: %v", err)
		return
	}
	log.Info("kiosk stopped (%d booked, %d not booked)", booked, failed)
}

// openLog sends logs to a rotating file so the kiosk screen stays clean,
// falling back to stderr when the file cannot be opened.
func openLog(level logger.Level, path string) *logger.Logger {
	if path == "" || path == "stderr" {
		return logger.New(level, os.Stderr)
	}
	log, err := logger.NewFile(level, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return logger.New(level, os.Stderr)
	}
	return log
}

// buildSpeaker returns the TTS-backed speaker, or a silent one when speech
// is disabled. The fixed failure lines are prefetched so the common error
// announcements play without a round trip.
func buildSpeaker(ctx context.Context, cfg *config.Config, log *logger.Logger, disabled bool) domain.Speaker {
	if disabled {
		log.Info("speech disabled by flag")
		return speech.NewSilent(log)
	}

	tts := speech.NewTTSClient(cfg.BaseURL, log, speech.WithHTTPTimeout(cfg.TTSTimeout))
	cache := speech.NewAudioCache(tts.Endpoint(), cfg.CacheDir, cfg.DiskCache, log)
	out := speech.NewOtoOutput(cfg.SampleRate, cfg.ChannelCount, log)

	s := speech.NewSpeaker(tts, out, log,
		speech.WithCache(cache),
		speech.WithDefaultMaxWait(cfg.SpeechMaxWait),
	)
	s.Prefetch(ctx, outcome.FixedFailureLines()...)

	log.Info("speech enabled (tts=%s, cache=%s, disk write=%v)", tts.Endpoint(), cfg.CacheDir, cfg.DiskCache)
	return s
}
