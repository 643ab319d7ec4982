// Package transcribe turns recorded clips into raw transcripts.
package transcribe

import (
	"context"
	"errors"

	"github.com/hushwire/hush-core/internal/capture"
)

var (
	ErrEmptyAudio = errors.New("empty audio")
	ErrProvider   = errors.New("transcription provider error")
	ErrDecode     = errors.New("decode transcription response")
)

// Transcriber is the speech-to-text collaborator. onProgress may be nil;
// implementations report coarse progress in [0, 1].
type Transcriber interface {
	Transcribe(ctx context.Context, clip capture.Clip, onProgress func(float64)) (string, error)
}

// Warmer is implemented by providers that can pre-establish their TLS
// connection while the user is still holding the activation key.
type Warmer interface {
	Warmup(ctx context.Context) error
}
