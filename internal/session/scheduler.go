package session

import (
	"sync"
	"time"
)

// Scheduler runs an operation after a delay unless cancelled first. Cancel
// is advisory: an operation that already started may still run to
// completion, and its result must pass a generation check before being
// trusted.
type Scheduler interface {
	Schedule(delay time.Duration, op func()) ScheduledHandle
}

type ScheduledHandle interface {
	// Cancel prevents the operation from starting if it has not yet fired.
	Cancel()
}

type timerScheduler struct{}

// NewTimerScheduler returns the production Scheduler backed by the runtime
// timer wheel.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(delay time.Duration, op func()) ScheduledHandle {
	h := &timerHandle{}
	h.timer = time.AfterFunc(delay, op)
	return h
}

type timerHandle struct {
	mu    sync.Mutex
	timer *time.Timer
}

func (h *timerHandle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}
