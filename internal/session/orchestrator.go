package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hushwire/hush-core/internal/capture"
	"github.com/hushwire/hush-core/internal/deliver"
	"github.com/hushwire/hush-core/internal/selection"
)

// DefaultPrefetchDelay separates a reflexive tap from a deliberate hold and
// hides the selection snapshot latency behind the hold duration.
const DefaultPrefetchDelay = 300 * time.Millisecond

// DefaultDoneLinger is how long a done capsule stays visible before
// auto-hiding.
const DefaultDoneLinger = 1500 * time.Millisecond

// Transcriber, Polisher, Rewriter and Warmer restate the collaborator
// surfaces the orchestrator consumes. The provider packages satisfy them.
type Transcriber interface {
	Transcribe(ctx context.Context, clip capture.Clip, onProgress func(float64)) (string, error)
}

type Polisher interface {
	Polish(ctx context.Context, transcript, appContext string, onProgress func(float64)) (string, error)
}

type Rewriter interface {
	Rewrite(ctx context.Context, instruction, selected string, onProgress func(float64)) (string, error)
}

type Warmer interface {
	Warmup(ctx context.Context) error
}

// Collaborators bundles the pipeline dependencies of the orchestrator. All
// fields except Warmers are required.
type Collaborators struct {
	Recorder    capture.Recorder
	Selection   selection.Reader
	Transcriber Transcriber
	Polisher    Polisher
	Rewriter    Rewriter
	Deliverer   deliver.Deliverer
	Warmers     []Warmer
}

// Options tunes orchestrator timing. Zero values take the defaults.
type Options struct {
	PrefetchDelay time.Duration
	DoneLinger    time.Duration
}

// Orchestrator is the push-to-talk state machine. It is the only writer of
// the capsule state, owns the generation counter that invalidates
// superseded sessions, and guarantees at most one pipeline is processing at
// any instant.
//
// Cancellation is result-discarding: collaborator calls are never aborted
// mid-flight, their results are checked against the current generation on
// arrival and silently dropped when stale.
type Orchestrator struct {
	collab Collaborators
	sched  Scheduler
	sink   StateSink
	log    *slog.Logger

	prefetchDelay time.Duration
	doneLinger    time.Duration

	mu         sync.Mutex
	generation uint64
	recording  bool
	processing bool
	state      CapsuleState
	sessionID  string
	prefetch   ScheduledHandle
	prefetched *selection.Context
}

func NewOrchestrator(collab Collaborators, sched Scheduler, sink StateSink, opts Options, log *slog.Logger) *Orchestrator {
	if opts.PrefetchDelay <= 0 {
		opts.PrefetchDelay = DefaultPrefetchDelay
	}
	if opts.DoneLinger <= 0 {
		opts.DoneLinger = DefaultDoneLinger
	}
	return &Orchestrator{
		collab:        collab,
		sched:         sched,
		sink:          sink,
		log:           log.With(slog.String("component", "session")),
		prefetchDelay: opts.PrefetchDelay,
		doneLinger:    opts.DoneLinger,
		state:         Hidden(),
	}
}

// Snapshot returns the currently visible capsule state.
func (o *Orchestrator) Snapshot() CapsuleState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SessionID returns the identifier of the most recent session.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// ActivationStart begins a new session. Any in-flight pipeline from an
// earlier session is superseded: its results will fail the generation check
// and vanish without touching the capsule.
func (o *Orchestrator) ActivationStart(ctx context.Context) {
	o.mu.Lock()
	o.generation++
	g := o.generation
	o.recording = true
	o.processing = false
	o.clearPrefetchLocked()
	o.sessionID = ulid.Make().String()
	sid := o.sessionID
	o.setStateLocked(Recording())
	o.mu.Unlock()

	o.log.Info("session started", slog.String("session", sid), slog.Uint64("generation", g))

	if err := o.collab.Recorder.Start(ctx); err != nil {
		o.fail(g, err)
		return
	}

	handle := o.sched.Schedule(o.prefetchDelay, func() {
		o.runPrefetch(ctx, g)
	})
	o.mu.Lock()
	if o.generation == g {
		o.prefetch = handle
	} else {
		handle.Cancel()
	}
	o.mu.Unlock()

	// Pre-establish provider connections while the user is still holding.
	for _, w := range o.collab.Warmers {
		go func(w Warmer) {
			if err := w.Warmup(ctx); err != nil {
				o.log.Debug("warmup failed", slog.String("error", err.Error()))
			}
		}(w)
	}
}

func (o *Orchestrator) runPrefetch(ctx context.Context, g uint64) {
	snap, err := o.collab.Selection.Snapshot(ctx)
	if err != nil {
		o.log.Debug("selection prefetch failed", slog.String("error", err.Error()))
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != g {
		return
	}
	o.prefetched = &snap
}

// ActivationEnd releases the hold and launches the processing pipeline. It
// is a no-op when nothing is recording or a pipeline is already processing.
// The pipeline runs in the background; progress is observable through the
// capsule state.
func (o *Orchestrator) ActivationEnd(ctx context.Context) {
	o.mu.Lock()
	if !o.recording || o.processing {
		o.mu.Unlock()
		return
	}
	o.recording = false
	o.processing = true
	g := o.generation
	sid := o.sessionID
	pre := o.prefetched
	o.clearPrefetchLocked()
	o.mu.Unlock()

	go o.runPipeline(ctx, g, sid, pre)
}

// ExplicitCancel aborts the current session: the capsule hides immediately
// and any in-flight results are orphaned by the generation bump.
func (o *Orchestrator) ExplicitCancel(ctx context.Context) {
	o.cancel(ctx, "cancelled")
}

// Deactivate performs the same cleanup as ExplicitCancel, invoked when the
// surrounding application loses eligibility to deliver text.
func (o *Orchestrator) Deactivate(ctx context.Context) {
	o.cancel(ctx, "deactivated")
}

func (o *Orchestrator) cancel(ctx context.Context, reason string) {
	o.mu.Lock()
	o.generation++
	wasRecording := o.recording
	o.recording = false
	o.processing = false
	o.clearPrefetchLocked()
	o.setStateLocked(Hidden())
	sid := o.sessionID
	o.mu.Unlock()

	if wasRecording {
		// Discard the clip; the recorder must not stay in a recording state.
		go func() {
			if _, err := o.collab.Recorder.Stop(ctx); err != nil {
				o.log.Debug("recorder stop after cancel", slog.String("error", err.Error()))
			}
		}()
	}
	o.log.Info("session "+reason, slog.String("session", sid))
}

// runPipeline drives one session from release to delivery under generation g.
func (o *Orchestrator) runPipeline(ctx context.Context, g uint64, sid string, pre *selection.Context) {
	var (
		selCtx  selection.Context
		clip    capture.Clip
		stopErr error
		wg      sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if pre != nil {
			selCtx = *pre
			return
		}
		snap, err := o.collab.Selection.Snapshot(ctx)
		if err != nil {
			// Degrade to an empty context; transcription still works
			// without a selection snapshot.
			o.log.Debug("selection fallback failed", slog.String("error", err.Error()))
			return
		}
		selCtx = snap
	}()
	go func() {
		defer wg.Done()
		clip, stopErr = o.collab.Recorder.Stop(ctx)
	}()
	wg.Wait()

	if stopErr != nil {
		o.fail(g, stopErr)
		return
	}
	if !o.commitState(g, Transcribing(0)) {
		return
	}
	if obs, ok := o.sink.(SessionObserver); ok && selCtx.AppName != "" {
		obs.SessionResolved(sid, selCtx.AppName)
	}

	transcript, err := o.collab.Transcriber.Transcribe(ctx, clip, func(p float64) {
		o.commitState(g, Transcribing(p))
	})
	if err != nil {
		o.fail(g, err)
		return
	}

	var output string
	if selCtx.HasSelection() && !selCtx.Secure {
		if !o.commitState(g, ProcessingCommand(transcript, 0)) {
			return
		}
		output, err = o.collab.Rewriter.Rewrite(ctx, transcript, selCtx.Text, func(p float64) {
			o.commitState(g, ProcessingCommand(transcript, p))
		})
	} else {
		if !o.commitState(g, Polishing(0)) {
			return
		}
		output, err = o.collab.Polisher.Polish(ctx, transcript, selCtx.AppName, func(p float64) {
			o.commitState(g, Polishing(p))
		})
	}
	if err != nil {
		o.fail(g, err)
		return
	}

	outcome, err := o.collab.Deliverer.Deliver(ctx, deliver.Request{
		Text:     output,
		Editable: selCtx.Editable,
		AppName:  selCtx.AppName,
	})
	if err != nil {
		o.fail(g, err)
		return
	}

	o.mu.Lock()
	if o.generation != g {
		o.mu.Unlock()
		return
	}
	o.processing = false
	o.setStateLocked(Done(outcome))
	o.mu.Unlock()

	o.sched.Schedule(o.doneLinger, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.generation == g && o.state.Phase == PhaseDone {
			o.setStateLocked(Hidden())
		}
	})
}

// commitState applies a capsule transition only when generation g is still
// current. Reports whether the transition was applied.
func (o *Orchestrator) commitState(g uint64, state CapsuleState) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != g {
		return false
	}
	o.setStateLocked(state)
	return true
}

// fail surfaces a pipeline error as an error capsule when generation g is
// still current; stale errors are swallowed.
func (o *Orchestrator) fail(g uint64, err error) {
	o.mu.Lock()
	if o.generation != g {
		o.mu.Unlock()
		o.log.Debug("superseded pipeline error", slog.String("error", err.Error()))
		return
	}
	o.recording = false
	o.processing = false
	o.setStateLocked(ErrorState(userMessage(err)))
	sid := o.sessionID
	o.mu.Unlock()

	o.log.Error("pipeline failed",
		slog.String("session", sid),
		slog.String("error", err.Error()))
}

func (o *Orchestrator) clearPrefetchLocked() {
	if o.prefetch != nil {
		o.prefetch.Cancel()
		o.prefetch = nil
	}
	o.prefetched = nil
}

func (o *Orchestrator) setStateLocked(state CapsuleState) {
	o.state = state
	if o.sink != nil {
		o.sink.CapsuleChanged(o.sessionID, state)
	}
}
