package capture

import (
	"context"
	"sync"
	"time"
)

// MockRecorder is an in-memory recorder for tests and demo runs. It returns a
// canned clip whose duration matches the hold time.
type MockRecorder struct {
	StopLatency time.Duration
	StopErr     error

	mu        sync.Mutex
	recording bool
	startedAt time.Time
}

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{}
}

func (m *MockRecorder) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recording {
		return ErrAlreadyRecording
	}
	m.recording = true
	m.startedAt = time.Now()
	return nil
}

func (m *MockRecorder) Stop(ctx context.Context) (Clip, error) {
	m.mu.Lock()
	if !m.recording {
		m.mu.Unlock()
		return Clip{}, ErrNotRecording
	}
	m.recording = false
	held := time.Since(m.startedAt)
	m.mu.Unlock()

	if m.StopLatency > 0 {
		select {
		case <-time.After(m.StopLatency):
		case <-ctx.Done():
			return Clip{}, ctx.Err()
		}
	}
	if m.StopErr != nil {
		return Clip{}, m.StopErr
	}

	samples := make([]float32, int(held.Seconds()*16000)+1600)
	wavBytes, err := EncodeWAV(samples, 16000)
	if err != nil {
		return Clip{}, err
	}
	return Clip{
		WAV:        wavBytes,
		SampleRate: 16000,
		Channels:   1,
		Duration:   held,
	}, nil
}
