package logger

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		wantDebug bool
		wantInfo  bool
	}{
		{"off", LevelOff, false, false},
		{"normal", LevelNormal, false, true},
		{"verbose", LevelVerbose, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(tt.level, &buf)

			log.Debug("debug %d", 1)
			if got := strings.Contains(buf.String(), "debug 1"); got != tt.wantDebug {
				t.Fatalf("debug output = %v, want %v (%q)", got, tt.wantDebug, buf.String())
			}

			log.Info("info %s", "line")
			if got := strings.Contains(buf.String(), "info line"); got != tt.wantInfo {
				t.Fatalf("info output = %v, want %v (%q)", got, tt.wantInfo, buf.String())
			}
		})
	}
}

func TestSetLevelAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelNormal, &buf)

	log.SetLevel(LevelOff)
	log.Error("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output when off, got %q", buf.String())
	}
	if log.GetLevel() != LevelOff {
		t.Fatalf("expected LevelOff, got %d", log.GetLevel())
	}

	log.SetLevel(LevelVerbose)
	log.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected debug output after raising level, got %q", buf.String())
	}
}

func TestNewFileCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kiosk.log")

	log, err := NewFile(LevelNormal, path)
	if err != nil {
		t.Fatalf("new file logger: %v", err)
	}
	log.Info("written")
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
