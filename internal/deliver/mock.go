package deliver

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockDeliverer records delivery requests and reports the outcome the
// editability hint implies.
type MockDeliverer struct {
	mu sync.Mutex

	Latency time.Duration
	Err     error

	requests []Request
}

func NewMockDeliverer() *MockDeliverer {
	return &MockDeliverer{}
}

func (m *MockDeliverer) Deliver(ctx context.Context, req Request) (Outcome, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", ErrEmptyText
	}
	m.mu.Lock()
	m.requests = append(m.requests, req)
	latency, errOut := m.Latency, m.Err
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if errOut != nil {
		return "", errOut
	}
	if req.Editable {
		return OutcomePasted, nil
	}
	return OutcomeCopied, nil
}

func (m *MockDeliverer) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
