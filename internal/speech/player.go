package speech

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// Track is one playing sound. Done is closed when playback ends on its own
// or the track is replaced. Release frees the underlying audio resource;
// it is safe to call more than once.
type Track interface {
	Done() <-chan struct{}
	Release() error
}

// Output plays encoded audio on a single reusable device. Playing a new
// sound replaces whatever the output was playing.
type Output interface {
	Play(audio []byte) (Track, error)
}

// Compile-time interface check.
var _ Output = (*OtoOutput)(nil)

// pollInterval is how often a track checks whether oto has drained it.
const pollInterval = 10 * time.Millisecond

// OtoOutput plays audio through oto. The oto context is opened on first
// use and kept for the life of the process, since oto allows only one.
type OtoOutput struct {
	sampleRate int
	channels   int
	log        *logger.Logger

	once    sync.Once
	ctx     *oto.Context
	initErr error

	mu     sync.Mutex
	active *otoTrack // currently bound source, nil when idle
}

// NewOtoOutput creates a lazily initialized audio output.
func NewOtoOutput(sampleRate, channels int, log *logger.Logger) *OtoOutput {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = DefaultChannelCount
	}
	return &OtoOutput{sampleRate: sampleRate, channels: channels, log: log}
}

func (o *OtoOutput) context() (*oto.Context, error) {
	o.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   o.sampleRate,
			ChannelCount: o.channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			o.initErr = fmt.Errorf("opening audio device: %w", err)
			return
		}
		<-ready
		o.ctx = ctx
		o.log.Debug("audio output initialized (rate=%d, channels=%d)", o.sampleRate, o.channels)
	})
	return o.ctx, o.initErr
}

// Play decodes audio, binds it to the output and starts playback. A
// previous track still playing is stopped; its Done channel closes.
func (o *OtoOutput) Play(audio []byte) (Track, error) {
	decoded, err := decodeAudio(audio, o.sampleRate, o.channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPlaybackStart, err)
	}

	ctx, err := o.context()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPlaybackStart, err)
	}

	t := &otoTrack{
		owner:  o,
		player: ctx.NewPlayer(bytes.NewReader(decoded.data)),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
	}

	o.mu.Lock()
	prev := o.active
	o.active = t
	o.mu.Unlock()

	if prev != nil {
		o.log.Debug("audio output: replacing active track")
		prev.stop()
	}

	t.player.Play()
	if err := t.player.Err(); err != nil {
		releaseTrack(t, o.log, "audio output")
		return nil, fmt.Errorf("%w: %w", domain.ErrPlaybackStart, err)
	}

	o.log.Debug("audio output: playing %d bytes of PCM", len(decoded.data))
	go t.watch()
	return t, nil
}

// releaseTrack frees t, logging a failure rather than dropping it.
func releaseTrack(t Track, log *logger.Logger, owner string) {
	if err := t.Release(); err != nil {
		log.Warn("%s: releasing track: %v", owner, err)
	}
}

func (o *OtoOutput) unbind(t *otoTrack) {
	o.mu.Lock()
	if o.active == t {
		o.active = nil
	}
	o.mu.Unlock()
}

type otoTrack struct {
	owner  *OtoOutput
	player *oto.Player

	done     chan struct{}
	doneOnce sync.Once

	quit        chan struct{}
	releaseOnce sync.Once
	releaseErr  error
}

func (t *otoTrack) Done() <-chan struct{} { return t.done }

// watch closes done once oto reports the buffer drained. It exits early
// when the track is released.
func (t *otoTrack) watch() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.quit:
			return
		case <-ticker.C:
			if !t.player.IsPlaying() {
				t.finish()
				return
			}
		}
	}
}

func (t *otoTrack) stop() {
	t.player.Pause()
	t.finish()
}

func (t *otoTrack) finish() {
	t.doneOnce.Do(func() { close(t.done) })
}

func (t *otoTrack) Release() error {
	t.releaseOnce.Do(func() {
		close(t.quit)
		t.stop()
		t.owner.unbind(t)
		t.releaseErr = t.player.Close()
	})
	return t.releaseErr
}
