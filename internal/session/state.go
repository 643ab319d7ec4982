// Package session holds the push-to-talk orchestrator: the state machine
// that turns activation gestures into capture, transcription, text
// generation and delivery, while keeping a single observable capsule state.
package session

import "github.com/hushwire/hush-core/internal/deliver"

// Phase enumerates the capsule phases. Exactly one phase is active at any
// instant and only the orchestrator transitions between them.
type Phase string

const (
	PhaseHidden            Phase = "hidden"
	PhaseRecording         Phase = "recording"
	PhaseTranscribing      Phase = "transcribing"
	PhasePolishing         Phase = "polishing"
	PhaseProcessingCommand Phase = "processing_command"
	PhaseDone              Phase = "done"
	PhaseError             Phase = "error"
)

// CapsuleState is the single externally visible value of the orchestrator.
// The payload fields are meaningful per phase: Progress during
// Transcribing/Polishing/ProcessingCommand, CommandText during
// ProcessingCommand, Outcome in Done, Message in Error.
type CapsuleState struct {
	Phase       Phase
	Progress    float64
	CommandText string
	Outcome     deliver.Outcome
	Message     string
}

func Hidden() CapsuleState {
	return CapsuleState{Phase: PhaseHidden}
}

func Recording() CapsuleState {
	return CapsuleState{Phase: PhaseRecording}
}

func Transcribing(progress float64) CapsuleState {
	return CapsuleState{Phase: PhaseTranscribing, Progress: progress}
}

func Polishing(progress float64) CapsuleState {
	return CapsuleState{Phase: PhasePolishing, Progress: progress}
}

func ProcessingCommand(commandText string, progress float64) CapsuleState {
	return CapsuleState{Phase: PhaseProcessingCommand, CommandText: commandText, Progress: progress}
}

func Done(outcome deliver.Outcome) CapsuleState {
	return CapsuleState{Phase: PhaseDone, Outcome: outcome}
}

func ErrorState(message string) CapsuleState {
	return CapsuleState{Phase: PhaseError, Message: message}
}

// StateSink receives every capsule transition, in order, together with the
// session it belongs to. Implementations must not block: the orchestrator
// calls them while holding its own lock.
type StateSink interface {
	CapsuleChanged(sessionID string, state CapsuleState)
}

// SessionObserver is an optional extension of StateSink. Sinks that
// implement it are told the foreground application of a session once the
// selection snapshot has resolved.
type SessionObserver interface {
	SessionResolved(sessionID, appName string)
}

// StateSinkFunc adapts a function to the StateSink interface.
type StateSinkFunc func(sessionID string, state CapsuleState)

func (f StateSinkFunc) CapsuleChanged(sessionID string, state CapsuleState) {
	f(sessionID, state)
}
