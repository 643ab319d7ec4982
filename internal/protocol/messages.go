package protocol

import "time"

// ActivationSignal is emitted by an input-listener process on hold/release
// gestures of the push-to-talk binding.
type ActivationSignal struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// CapsuleUpdate mirrors one capsule state transition for UI consumers.
type CapsuleUpdate struct {
	SessionID   string    `json:"session_id"`
	Phase       string    `json:"phase"`
	Progress    float64   `json:"progress,omitempty"`
	CommandText string    `json:"command_text,omitempty"`
	Outcome     string    `json:"outcome,omitempty"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// DeliveryResult reports how a finished pipeline handed its text off.
type DeliveryResult struct {
	SessionID string    `json:"session_id"`
	Outcome   string    `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	SubjectActivationStart  = "input.activation.start"
	SubjectActivationEnd    = "input.activation.end"
	SubjectActivationCancel = "input.activation.cancel"
	SubjectDeactivated      = "input.deactivated"

	SubjectCapsuleState   = "ui.capsule.state"
	SubjectDeliveryResult = "output.delivery.result"
)
