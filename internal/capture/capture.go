// Package capture records microphone audio for the duration of a
// push-to-talk hold and hands back a transcription-ready WAV clip.
package capture

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAlreadyRecording = errors.New("recording already active")
	ErrNotRecording     = errors.New("recording not active")
	ErrNoAudio          = errors.New("no audio captured")
	ErrInvalidAudio     = errors.New("invalid audio data")
)

// Clip is a finished recording, encoded as 16-bit PCM WAV.
type Clip struct {
	WAV        []byte
	SampleRate int
	Channels   int
	Duration   time.Duration
}

// Recorder is the capture collaborator consumed by the session orchestrator.
// Start begins capturing; Stop ends the capture and returns the clip.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (Clip, error)
}
