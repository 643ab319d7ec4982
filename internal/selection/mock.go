package selection

import (
	"context"
	"sync"
	"time"
)

// MockReader returns a configurable snapshot after an optional delay.
type MockReader struct {
	mu       sync.Mutex
	snapshot Context
	err      error
	latency  time.Duration
	calls    int
}

func NewMockReader(snapshot Context) *MockReader {
	return &MockReader{snapshot: snapshot}
}

func (m *MockReader) SetSnapshot(snapshot Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
}

func (m *MockReader) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockReader) SetLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
}

func (m *MockReader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockReader) Snapshot(ctx context.Context) (Context, error) {
	m.mu.Lock()
	m.calls++
	snap, err, latency := m.snapshot, m.err, m.latency
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return Context{}, ctx.Err()
		}
	}
	if err != nil {
		return Context{}, err
	}
	return snap, nil
}
