package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

func TestTTSSynthesize(t *testing.T) {
	var got ttsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != TTSPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fake"))
	}))
	defer srv.Close()

	c := NewTTSClient(srv.URL+"/", logger.New(logger.LevelOff, nil))
	audio, err := c.Synthesize(context.Background(), "నమస్కారం")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "ID3fake" {
		t.Fatalf("unexpected audio %q", audio)
	}
	if got.Text != "నమస్కారం" {
		t.Fatalf("expected text to be sent as UTF-8 JSON, got %q", got.Text)
	}
	if c.Endpoint() != srv.URL+TTSPath {
		t.Fatalf("unexpected endpoint %q", c.Endpoint())
	}
}

func TestTTSNonSuccessIsSoftError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"service unavailable", http.StatusServiceUnavailable, `{"error":"gtts_not_available"}`},
		{"bad request", http.StatusBadRequest, `{"error":"text required"}`},
		{"empty ok body", http.StatusOK, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewTTSClient(srv.URL, logger.New(logger.LevelOff, nil)).Synthesize(context.Background(), "hi")
			if !errors.Is(err, domain.ErrTTS) {
				t.Fatalf("expected ErrTTS, got %v", err)
			}
		})
	}
}

func TestSpeakerWithUnreachableTTS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	log := logger.New(logger.LevelOff, nil)
	out := &fakeOutput{}
	s := NewSpeaker(NewTTSClient(addr, log), out, log)

	waitResolved(t, s.Speak(context.Background(), "hello", 0), 2*time.Second)
	if len(out.played()) != 0 {
		t.Fatal("nothing should play when the TTS backend is down")
	}
}
