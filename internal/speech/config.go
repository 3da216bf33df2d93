package speech

import "time"

// DefaultMaxWait caps how long a spoken message may hold up navigation when
// the caller does not pick a cap.
const DefaultMaxWait = 6000 * time.Millisecond

// Output format the oto context is opened with. The TTS service answers in
// 24 kHz mono; other rates and channel layouts are converted on decode.
const (
	DefaultSampleRate   = 24000
	DefaultChannelCount = 1
	BitDepth            = 16
)

// TTSPath is the synthesis resource on the kiosk backend.
const TTSPath = "/tts"
