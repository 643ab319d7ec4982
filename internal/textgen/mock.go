package textgen

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockEngine fakes both text passes for tests and offline development.
type MockEngine struct {
	mu sync.Mutex

	PolishLatency  time.Duration
	RewriteLatency time.Duration
	PolishErr      error
	RewriteErr     error

	// PolishResult and RewriteResult override the default echo behavior
	// when non-empty.
	PolishResult  string
	RewriteResult string

	polishCalls  []PolishCall
	rewriteCalls []RewriteCall
}

type PolishCall struct {
	Transcript string
	AppContext string
}

type RewriteCall struct {
	Instruction string
	Selected    string
}

func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

func (m *MockEngine) Polish(ctx context.Context, transcript, appContext string, onProgress func(float64)) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyInput
	}
	m.mu.Lock()
	m.polishCalls = append(m.polishCalls, PolishCall{Transcript: transcript, AppContext: appContext})
	latency, errOut, result := m.PolishLatency, m.PolishErr, m.PolishResult
	m.mu.Unlock()

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
	if errOut != nil {
		return "", errOut
	}
	if onProgress != nil {
		onProgress(1)
	}
	if result != "" {
		return result, nil
	}
	return strings.TrimSpace(transcript), nil
}

func (m *MockEngine) Rewrite(ctx context.Context, instruction, selected string, onProgress func(float64)) (string, error) {
	if strings.TrimSpace(instruction) == "" || selected == "" {
		return "", ErrEmptyInput
	}
	m.mu.Lock()
	m.rewriteCalls = append(m.rewriteCalls, RewriteCall{Instruction: instruction, Selected: selected})
	latency, errOut, result := m.RewriteLatency, m.RewriteErr, m.RewriteResult
	m.mu.Unlock()

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
	if errOut != nil {
		return "", errOut
	}
	if onProgress != nil {
		onProgress(1)
	}
	if result != "" {
		return result, nil
	}
	return selected, nil
}

func (m *MockEngine) PolishCalls() []PolishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PolishCall(nil), m.polishCalls...)
}

func (m *MockEngine) RewriteCalls() []RewriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RewriteCall(nil), m.rewriteCalls...)
}
