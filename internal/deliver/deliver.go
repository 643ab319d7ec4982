// Package deliver places finished text into the user's frontmost
// application, either by synthesizing a paste or by loading the clipboard.
package deliver

import (
	"context"
	"errors"
)

var (
	ErrEmptyText = errors.New("empty delivery text")
	ErrDelivery  = errors.New("delivery failed")
)

// Outcome names the path the text took to the user.
type Outcome string

const (
	OutcomePasted Outcome = "pasted"
	OutcomeCopied Outcome = "copied"
)

// Request carries the text and the target hints gathered at activation time.
// Editable reflects whether the focused element accepts insertion; when it
// does not, delivery falls back to the clipboard.
type Request struct {
	Text     string
	Editable bool
	AppName  string
}

type Deliverer interface {
	Deliver(ctx context.Context, req Request) (Outcome, error)
}
