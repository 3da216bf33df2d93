package speech

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
)

// resampleQuality is passed to beep.Resample. 4 is beep's recommended
// trade-off for speech.
const resampleQuality = 4

// pcm is signed 16-bit little-endian interleaved audio.
type pcm struct {
	data       []byte
	sampleRate int
	channels   int
}

// decodeAudio turns a WAV or MP3 payload into PCM at the given rate and
// channel count.
func decodeAudio(audio []byte, sampleRate, channels int) (pcm, error) {
	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch {
	case isWAV(audio):
		stream, format, err = wav.Decode(bytes.NewReader(audio))
	case isMP3(audio):
		stream, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(audio)))
	default:
		return pcm{}, domain.ErrUnsupportedAudio
	}
	if err != nil {
		return pcm{}, fmt.Errorf("%w: %w", domain.ErrUnsupportedAudio, err)
	}
	defer stream.Close()

	if format.SampleRate <= 0 {
		return pcm{}, fmt.Errorf("%w: sample rate %d", domain.ErrUnsupportedAudio, format.SampleRate)
	}

	var src beep.Streamer = stream
	if int(format.SampleRate) != sampleRate {
		src = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(sampleRate), stream)
	}

	return encode(src, beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: channels,
		Precision:   BitDepth / 8,
	})
}

// encode drains s into interleaved signed PCM. Mono output averages the
// left and right channels.
func encode(s beep.Streamer, out beep.Format) (pcm, error) {
	var (
		data  bytes.Buffer
		buf   = make([][2]float64, 512)
		frame = make([]byte, out.Width())
	)
	for {
		n, ok := s.Stream(buf)
		for _, sample := range buf[:n] {
			out.EncodeSigned(frame, sample)
			data.Write(frame)
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return pcm{}, fmt.Errorf("decoding audio: %w", err)
	}
	return pcm{data: data.Bytes(), sampleRate: int(out.SampleRate), channels: out.NumChannels}, nil
}

func isWAV(b []byte) bool {
	return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE"
}

func isMP3(b []byte) bool {
	if len(b) >= 3 && string(b[0:3]) == "ID3" {
		return true
	}
	// MPEG frame sync: 11 set bits.
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0
}
