// Package speech announces kiosk messages: it fetches synthesized audio from
// the backend and plays it on the local audio device.
package speech

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// Compile-time interface check.
var _ domain.Speaker = (*Speaker)(nil)

// SpeakerOption configures the Speaker.
type SpeakerOption func(*Speaker)

// WithCache enables the audio cache.
func WithCache(c *AudioCache) SpeakerOption {
	return func(s *Speaker) { s.cache = c }
}

// WithDefaultMaxWait sets the cap used when Speak is called with maxWait <= 0.
func WithDefaultMaxWait(d time.Duration) SpeakerOption {
	return func(s *Speaker) {
		if d > 0 {
			s.maxWait = d
		}
	}
}

// Speaker is best-effort speech: every call resolves, and nothing the TTS
// backend or the audio device does can make it fail or hang past its cap.
type Speaker struct {
	tts     Synthesizer
	out     Output
	cache   *AudioCache
	log     *logger.Logger
	maxWait time.Duration

	wg sync.WaitGroup
}

// NewSpeaker creates a Speaker that synthesizes with tts and plays on out.
func NewSpeaker(tts Synthesizer, out Output, log *logger.Logger, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		tts:     tts,
		out:     out,
		log:     log,
		maxWait: DefaultMaxWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Speak plays text and returns a channel that is closed exactly once, when
// the first of these happens:
//
//   - playback reaches its natural end,
//   - maxWait has elapsed since playback started,
//   - playback could not be started,
//   - synthesis failed,
//   - ctx is done.
//
// Blank text resolves immediately without contacting the TTS backend.
// The audio resource is released when the call resolves, whichever way.
func (s *Speaker) Speak(ctx context.Context, text string, maxWait time.Duration) <-chan struct{} {
	done := make(chan struct{})

	msg := strings.TrimSpace(text)
	if msg == "" {
		close(done)
		return done
	}
	if maxWait <= 0 {
		maxWait = s.maxWait
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		s.play(ctx, msg, maxWait)
	}()
	return done
}

// Wait blocks until every pending Speak call has resolved.
func (s *Speaker) Wait() { s.wg.Wait() }

func (s *Speaker) play(ctx context.Context, msg string, maxWait time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("speech: recovered from panic: %v", r)
		}
	}()

	audio, err := s.synthesize(ctx, msg)
	if err != nil {
		s.log.Warn("speech: synthesis unavailable, staying silent: %v", err)
		return
	}

	track, err := s.out.Play(audio)
	if err != nil {
		s.log.Warn("speech: playback did not start: %v", err)
		return
	}
	defer releaseTrack(track, s.log, "speech")

	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()

	started := time.Now()
	select {
	case <-track.Done():
		s.log.Debug("speech: finished after %s: %s", time.Since(started).Round(time.Millisecond), truncateForLog(msg, 40))
	case <-deadline.C:
		s.log.Info("speech: gave up waiting after %s: %s", maxWait, truncateForLog(msg, 40))
	case <-ctx.Done():
		s.log.Debug("speech: cancelled: %v", ctx.Err())
	}
}

// synthesize checks the cache first, otherwise calls the TTS backend and
// stores the result.
func (s *Speaker) synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.cache != nil {
		if audio, ok := s.cache.Get(text); ok {
			return audio, nil
		}
	}
	audio, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(text, audio)
	}
	return audio, nil
}

// Prefetch synthesizes texts in the background so their first Speak plays
// without a network round trip. Already cached texts are skipped. Does
// nothing without a cache.
func (s *Speaker) Prefetch(ctx context.Context, texts ...string) {
	if s.cache == nil {
		return
	}
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" || s.cache.Has(text) {
			continue
		}
		s.wg.Add(1)
		go func(t string) {
			defer s.wg.Done()
			audio, err := s.tts.Synthesize(ctx, t)
			if err != nil {
				s.log.Warn("prefetch: synthesis failed: %v", err)
				return
			}
			s.cache.Put(t, audio)
			s.log.Debug("prefetch: cached %d bytes for: %s", len(audio), truncateForLog(t, 40))
		}(text)
	}
}
