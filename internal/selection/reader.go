// Package selection reads the focused application's text-selection context,
// which decides whether a finished dictation becomes a transcript or a
// voice-command edit of the selected text.
package selection

import "context"

// Context is an immutable snapshot of the frontmost application's selection
// at the moment it was read.
type Context struct {
	Text     string `json:"text"`
	Editable bool   `json:"editable"`
	Secure   bool   `json:"secure"`
	AppName  string `json:"app_name"`
}

// HasSelection reports whether the snapshot carries selected text.
func (c Context) HasSelection() bool {
	return c.Text != ""
}

// Reader produces selection snapshots. Each call reads fresh state; the
// result is never updated after it is returned.
type Reader interface {
	Snapshot(ctx context.Context) (Context, error)
}
