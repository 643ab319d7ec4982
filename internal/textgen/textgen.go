// Package textgen covers the two LLM passes of the pipeline: polishing a raw
// transcript into written text, and rewriting selected text according to a
// spoken instruction.
package textgen

import (
	"context"
	"errors"
)

var (
	ErrEmptyInput      = errors.New("empty input text")
	ErrProvider        = errors.New("text generation provider error")
	ErrInvalidResponse = errors.New("invalid text generation response")
)

// Polisher converts a raw speech transcript into polished written text.
// appContext names the delivery target application and may be empty.
type Polisher interface {
	Polish(ctx context.Context, transcript, appContext string, onProgress func(float64)) (string, error)
}

// Rewriter applies a spoken instruction to the user's selected text.
type Rewriter interface {
	Rewrite(ctx context.Context, instruction, selected string, onProgress func(float64)) (string, error)
}
