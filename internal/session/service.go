package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hushwire/hush-core/internal/bus"
	"github.com/hushwire/hush-core/internal/config"
	"github.com/hushwire/hush-core/internal/eventstore"
	"github.com/hushwire/hush-core/internal/protocol"
)

// Service is the bus-facing adapter around the orchestrator. It turns
// activation signals from the input listener into orchestrator calls,
// mirrors every capsule transition onto the bus for UI consumers, and
// records the transition timeline in the event store.
type Service struct {
	bus    *bus.Client
	store  *eventstore.Store
	log    *slog.Logger
	orch   *Orchestrator
	ctx    context.Context
	cancel context.CancelFunc
	subs   []*nats.Subscription
	queue  chan func()

	meter       metric.Meter
	starts      metric.Int64Counter
	completions metric.Int64Counter
	failures    metric.Int64Counter
}

func NewService(parent context.Context, cfg config.SessionConfig, collab Collaborators, busClient *bus.Client, store *eventstore.Store, logger *slog.Logger) (*Service, error) {
	ctx, cancel := context.WithCancel(parent)
	s := &Service{
		bus:    busClient,
		store:  store,
		log:    logger.With(slog.String("component", "session-service")),
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan func(), 256),
		meter:  otel.Meter("github.com/hushwire/hush-core/runtime"),
	}
	if err := s.initMetrics(); err != nil {
		s.log.Warn("failed to initialize metrics", slog.String("error", err.Error()))
	}
	go s.runMirror()

	s.orch = NewOrchestrator(collab, NewTimerScheduler(), s, Options{
		PrefetchDelay: time.Duration(cfg.PrefetchDelayMS) * time.Millisecond,
		DoneLinger:    time.Duration(cfg.DoneLingerMS) * time.Millisecond,
	}, logger)

	if err := s.subscribe(); err != nil {
		cancel()
		s.Close()
		return nil, err
	}
	return s, nil
}

// Orchestrator exposes the state machine for direct embedding, e.g. by the
// diagnose command.
func (s *Service) Orchestrator() *Orchestrator {
	return s.orch
}

func (s *Service) Healthy() bool {
	return len(s.subs) == 4
}

func (s *Service) Close() {
	s.cancel()
	for _, sub := range s.subs {
		_ = sub.Drain()
	}
	s.subs = nil
}

func (s *Service) initMetrics() error {
	var err error
	s.starts, err = s.meter.Int64Counter("hush_sessions_started_total",
		metric.WithDescription("Push-to-talk sessions started"))
	if err != nil {
		return err
	}
	s.completions, err = s.meter.Int64Counter("hush_sessions_completed_total",
		metric.WithDescription("Sessions that reached delivery"))
	if err != nil {
		return err
	}
	s.failures, err = s.meter.Int64Counter("hush_sessions_failed_total",
		metric.WithDescription("Sessions that ended in an error capsule"))
	return err
}

func (s *Service) subscribe() error {
	conn := s.bus.Conn()
	for subject, handler := range map[string]nats.MsgHandler{
		protocol.SubjectActivationStart:  s.handleStart,
		protocol.SubjectActivationEnd:    s.handleEnd,
		protocol.SubjectActivationCancel: s.handleCancel,
		protocol.SubjectDeactivated:      s.handleDeactivated,
	} {
		sub, err := conn.Subscribe(subject, handler)
		if err != nil {
			return err
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

func (s *Service) handleStart(msg *nats.Msg) {
	sig := s.decodeSignal(msg)
	s.log.Debug("activation start", slog.String("source", sig.Source))
	s.orch.ActivationStart(s.ctx)
	if s.starts != nil {
		s.starts.Add(s.ctx, 1)
	}
}

func (s *Service) handleEnd(msg *nats.Msg) {
	sig := s.decodeSignal(msg)
	s.log.Debug("activation end", slog.String("source", sig.Source))
	s.orch.ActivationEnd(s.ctx)
}

func (s *Service) handleCancel(msg *nats.Msg) {
	sig := s.decodeSignal(msg)
	s.log.Debug("activation cancelled", slog.String("source", sig.Source))
	s.orch.ExplicitCancel(s.ctx)
}

func (s *Service) handleDeactivated(msg *nats.Msg) {
	sig := s.decodeSignal(msg)
	s.log.Debug("input deactivated", slog.String("source", sig.Source))
	s.orch.Deactivate(s.ctx)
}

func (s *Service) decodeSignal(msg *nats.Msg) protocol.ActivationSignal {
	var sig protocol.ActivationSignal
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &sig); err != nil {
			s.log.Warn("failed to decode activation signal",
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()))
		}
	}
	return sig
}

// CapsuleChanged implements StateSink. It must stay non-blocking: the
// orchestrator invokes it under its lock, so the bus publish and store
// write are handed to the mirror goroutine instead of running inline.
func (s *Service) CapsuleChanged(sessionID string, state CapsuleState) {
	update := protocol.CapsuleUpdate{
		SessionID:   sessionID,
		Phase:       string(state.Phase),
		Progress:    state.Progress,
		CommandText: state.CommandText,
		Outcome:     string(state.Outcome),
		Message:     state.Message,
		Timestamp:   time.Now().UTC(),
	}

	switch state.Phase {
	case PhaseDone:
		if s.completions != nil {
			s.completions.Add(s.ctx, 1,
				metric.WithAttributes(attribute.String("outcome", string(state.Outcome))))
		}
	case PhaseError:
		if s.failures != nil {
			s.failures.Add(s.ctx, 1)
		}
	}

	s.enqueue(func() { s.mirror(update, state) })
}

// SessionResolved implements SessionObserver. It stamps the foreground
// application onto the session row once the selection snapshot is known.
func (s *Service) SessionResolved(sessionID, appName string) {
	s.enqueue(func() {
		if s.store == nil {
			return
		}
		if err := s.store.RecordSession(s.ctx, sessionID, appName, ""); err != nil {
			s.log.Warn("failed to record session app", slog.String("error", err.Error()))
		}
	})
}

// enqueue hands work to the mirror goroutine without blocking the caller.
// A full queue drops the update rather than stalling the state machine.
func (s *Service) enqueue(fn func()) {
	select {
	case s.queue <- fn:
	default:
		s.log.Warn("mirror queue full, dropping update")
	}
}

// runMirror drains the queue on a single goroutine so UI consumers and the
// event store observe transitions in the order the orchestrator produced
// them.
func (s *Service) runMirror() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case fn := <-s.queue:
			fn()
		}
	}
}

func (s *Service) mirror(update protocol.CapsuleUpdate, state CapsuleState) {
	data, err := json.Marshal(update)
	if err != nil {
		s.log.Warn("failed to encode capsule update", slog.String("error", err.Error()))
		return
	}
	if err := s.bus.Conn().Publish(protocol.SubjectCapsuleState, data); err != nil {
		s.log.Warn("failed to publish capsule update", slog.String("error", err.Error()))
	}

	if state.Phase == PhaseDone {
		result := protocol.DeliveryResult{
			SessionID: update.SessionID,
			Outcome:   update.Outcome,
			Timestamp: update.Timestamp,
		}
		if data, err := json.Marshal(result); err == nil {
			if err := s.bus.Conn().Publish(protocol.SubjectDeliveryResult, data); err != nil {
				s.log.Warn("failed to publish delivery result", slog.String("error", err.Error()))
			}
		}
	}

	if s.store == nil {
		return
	}
	if state.Phase == PhaseRecording {
		if err := s.store.RecordSession(s.ctx, update.SessionID, "", ""); err != nil {
			s.log.Warn("failed to record session", slog.String("error", err.Error()))
		}
	}
	if state.Phase == PhasePolishing || state.Phase == PhaseProcessingCommand {
		mode := "transcription"
		if state.Phase == PhaseProcessingCommand {
			mode = "voice_command"
		}
		if err := s.store.RecordSession(s.ctx, update.SessionID, "", mode); err != nil {
			s.log.Warn("failed to record session mode", slog.String("error", err.Error()))
		}
	}
	if err := s.store.RecordTransition(s.ctx, eventstore.Transition{
		SessionID: update.SessionID,
		Phase:     update.Phase,
		Progress:  update.Progress,
		Outcome:   update.Outcome,
		Message:   update.Message,
		CreatedAt: update.Timestamp,
	}); err != nil {
		s.log.Warn("failed to record transition", slog.String("error", err.Error()))
	}
}
