package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// Synthesizer turns text into encoded audio (WAV or MP3).
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Compile-time interface check.
var _ Synthesizer = (*TTSClient)(nil)

// TTSOption configures the TTS client.
type TTSOption func(*TTSClient)

// WithHTTPTimeout sets the HTTP client timeout for TTS requests.
func WithHTTPTimeout(d time.Duration) TTSOption {
	return func(c *TTSClient) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) TTSOption {
	return func(c *TTSClient) {
		c.httpClient = hc
	}
}

// TTSClient requests synthesized speech from the kiosk backend.
type TTSClient struct {
	endpoint   string
	httpClient *http.Client
	log        *logger.Logger
}

// NewTTSClient creates a client for the /tts resource under baseURL.
func NewTTSClient(baseURL string, log *logger.Logger, opts ...TTSOption) *TTSClient {
	c := &TTSClient{
		endpoint: strings.TrimRight(baseURL, "/") + TTSPath,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the full synthesis URL.
func (c *TTSClient) Endpoint() string { return c.endpoint }

type ttsRequest struct {
	Text string `json:"text"`
}

// Synthesize posts {"text": ...} and returns the audio payload. Any non-2xx
// status is an error wrapping domain.ErrTTS.
func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(ttsRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("tts: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	c.log.Debug("tts: synthesizing %d chars", len([]rune(text)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: request failed: %w: %w", domain.ErrTTS, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrTTS, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts: reading audio: %w: %w", domain.ErrTTS, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio payload", domain.ErrTTS)
	}

	c.log.Debug("tts: got %d bytes of audio", len(audio))
	return audio, nil
}
