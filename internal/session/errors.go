package session

import (
	"errors"

	"github.com/hushwire/hush-core/internal/capture"
	"github.com/hushwire/hush-core/internal/deliver"
	"github.com/hushwire/hush-core/internal/textgen"
	"github.com/hushwire/hush-core/internal/transcribe"
)

// userMessage maps a pipeline error to the short text shown in the error
// capsule. Collaborator errors carry wrapped detail for logs; the capsule
// stays terse.
func userMessage(err error) string {
	switch {
	case errors.Is(err, capture.ErrNotRecording):
		return "No recording in progress"
	case errors.Is(err, capture.ErrNoAudio), errors.Is(err, transcribe.ErrEmptyAudio):
		return "No audio captured"
	case errors.Is(err, capture.ErrInvalidAudio):
		return "Audio capture failed"
	case errors.Is(err, transcribe.ErrDecode):
		return "Could not read transcription response"
	case errors.Is(err, transcribe.ErrProvider):
		return "Transcription failed"
	case errors.Is(err, textgen.ErrEmptyInput):
		return "Nothing to process"
	case errors.Is(err, textgen.ErrInvalidResponse):
		return "Text generation returned an unusable response"
	case errors.Is(err, textgen.ErrProvider):
		return "Text generation failed"
	case errors.Is(err, deliver.ErrDelivery), errors.Is(err, deliver.ErrEmptyText):
		return "Could not deliver text"
	default:
		return "Something went wrong"
	}
}
