package transcribe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hushwire/hush-core/internal/capture"
)

// MockTranscriber returns a canned transcript, with optional latency and
// error injection.
type MockTranscriber struct {
	mu      sync.Mutex
	text    string
	err     error
	latency time.Duration
	calls   int
}

func NewMockTranscriber(text string) *MockTranscriber {
	return &MockTranscriber{text: text}
}

func (m *MockTranscriber) SetError(err error)            { m.mu.Lock(); m.err = err; m.mu.Unlock() }
func (m *MockTranscriber) SetLatency(d time.Duration)    { m.mu.Lock(); m.latency = d; m.mu.Unlock() }
func (m *MockTranscriber) Calls() int                    { m.mu.Lock(); defer m.mu.Unlock(); return m.calls }

func (m *MockTranscriber) Transcribe(ctx context.Context, clip capture.Clip, onProgress func(float64)) (string, error) {
	m.mu.Lock()
	m.calls++
	text, err, latency := m.text, m.err, m.latency
	m.mu.Unlock()

	if len(clip.WAV) == 0 {
		return "", ErrEmptyAudio
	}
	if onProgress != nil {
		onProgress(0)
	}
	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if onProgress != nil {
		onProgress(1)
	}
	if text == "" {
		return fmt.Sprintf("[mock transcript duration=%s]", clip.Duration.Round(time.Millisecond)), nil
	}
	return text, nil
}
