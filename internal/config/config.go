// Package config loads kiosk settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name below.
const EnvPrefix = "KIOSK_"

// Config holds every tunable the kiosk reads at startup. Defaults match the
// values the kiosk was tuned with in the field.
type Config struct {
	// BaseURL is the origin serving /book_appointment and /tts.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:5000"`

	// MinLength is the shortest trimmed identifier the debounce will submit.
	MinLength int `env:"MIN_LENGTH" envDefault:"5"`
	// Debounce is the quiet period after the last keystroke before an
	// automatic submit.
	Debounce time.Duration `env:"DEBOUNCE" envDefault:"200ms"`
	// FocusInterval is how often the input is forced back into focus.
	FocusInterval time.Duration `env:"FOCUS_INTERVAL" envDefault:"3s"`

	SpeechMaxWait        time.Duration `env:"SPEECH_MAX_WAIT" envDefault:"6s"`
	FailureSpeechMaxWait time.Duration `env:"FAILURE_SPEECH_MAX_WAIT" envDefault:"8s"`

	// BookingTimeout bounds a single booking call. Zero disables it.
	BookingTimeout time.Duration `env:"BOOKING_TIMEOUT" envDefault:"15s"`
	TTSTimeout     time.Duration `env:"TTS_TIMEOUT" envDefault:"30s"`

	CacheDir  string `env:"CACHE_DIR" envDefault:".kiosk-cache"`
	DiskCache bool   `env:"DISK_CACHE" envDefault:"true"`

	// SlipHold is how long the print-slip view stays up before returning home.
	SlipHold time.Duration `env:"SLIP_HOLD" envDefault:"15s"`

	SampleRate   int `env:"AUDIO_SAMPLE_RATE" envDefault:"24000"`
	ChannelCount int `env:"AUDIO_CHANNELS" envDefault:"1"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the kiosk cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("base url is required"))
	}
	if c.MinLength <= 0 {
		errs = append(errs, fmt.Errorf("min length must be positive, got %d", c.MinLength))
	}
	positive := map[string]time.Duration{
		"debounce":                c.Debounce,
		"focus interval":          c.FocusInterval,
		"speech max wait":         c.SpeechMaxWait,
		"failure speech max wait": c.FailureSpeechMaxWait,
		"tts timeout":             c.TTSTimeout,
		"slip hold":               c.SlipHold,
	}
	for name, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.BookingTimeout < 0 {
		errs = append(errs, fmt.Errorf("booking timeout must not be negative, got %s", c.BookingTimeout))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio sample rate must be positive, got %d", c.SampleRate))
	}
	if c.ChannelCount != 1 && c.ChannelCount != 2 {
		errs = append(errs, fmt.Errorf("audio channels must be 1 or 2, got %d", c.ChannelCount))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
