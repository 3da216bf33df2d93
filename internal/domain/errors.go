package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrEmptyIdentifier  = errors.New("identifier is empty")
	ErrBooking          = errors.New("booking failed")
	ErrTTS              = errors.New("speech synthesis failed")
	ErrPlaybackStart    = errors.New("audio playback could not start")
	ErrUnsupportedAudio = errors.New("unsupported audio format")
)
