// Package runtime assembles the daemon: telemetry, the message bus, the
// event store, the configured collaborators and the session service, plus
// the health endpoints.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hushwire/hush-core/internal/bus"
	"github.com/hushwire/hush-core/internal/capture"
	"github.com/hushwire/hush-core/internal/config"
	"github.com/hushwire/hush-core/internal/deliver"
	"github.com/hushwire/hush-core/internal/eventstore"
	"github.com/hushwire/hush-core/internal/natsserver"
	"github.com/hushwire/hush-core/internal/selection"
	"github.com/hushwire/hush-core/internal/session"
	"github.com/hushwire/hush-core/internal/textgen"
	"github.com/hushwire/hush-core/internal/transcribe"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	httpServer *http.Server
	natsServer *natsserver.EmbeddedServer
	busClient  *bus.Client
	store      *eventstore.Store
	sessionSvc *session.Service
	telemetry  *telemetry
	ready      atomic.Bool
	wg         sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

// Start brings the daemon up and blocks until ctx is cancelled, then shuts
// everything down in reverse order.
func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tel, err := newTelemetry(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.telemetry = tel

	if r.cfg.Bus.Embedded {
		srv, err := natsserver.Start(r.cfg.Bus, r.logger)
		if err != nil {
			return fmt.Errorf("failed to start embedded bus: %w", err)
		}
		r.natsServer = srv
	}

	busCfg := r.cfg.Bus
	if r.natsServer != nil && len(busCfg.Servers) == 0 {
		busCfg.Servers = []string{r.natsServer.ClientURL()}
	}
	busClient, err := bus.Connect(busCfg, r.logger)
	if err != nil {
		r.shutdownInfra()
		return fmt.Errorf("failed to connect to bus: %w", err)
	}
	r.busClient = busClient

	store, err := eventstore.Open(ctx, r.cfg.EventStore, r.logger)
	if err != nil {
		r.shutdownInfra()
		return fmt.Errorf("failed to open event store: %w", err)
	}
	r.store = store

	collab, err := buildCollaborators(r.cfg, r.logger)
	if err != nil {
		r.shutdownInfra()
		return fmt.Errorf("failed to build collaborators: %w", err)
	}

	sessionSvc, err := session.NewService(ctx, r.cfg.Session, collab, busClient, store, r.logger)
	if err != nil {
		r.shutdownInfra()
		return fmt.Errorf("failed to start session service: %w", err)
	}
	r.sessionSvc = sessionSvc

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)
	if tel.Metrics != nil {
		mux.Handle("/metrics", tel.Metrics)
	}

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	r.ready.Store(true)
	r.logger.Info("runtime started",
		slog.String("addr", addr),
		slog.String("capture", r.cfg.Capture.Mode),
		slog.String("transcribe", r.cfg.Transcribe.Mode),
		slog.String("textgen", r.cfg.TextGen.Mode))

	<-ctx.Done()
	r.ready.Store(false)
	r.logger.Info("runtime stopping")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	r.wg.Wait()

	r.sessionSvc.Close()
	r.shutdownInfra()

	if r.telemetry != nil {
		if err := r.telemetry.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return nil
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if r.busClient != nil && !r.busClient.Healthy() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("bus disconnected"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}

func (r *Runtime) shutdownInfra() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.logger.Warn("event store close error", slog.String("error", err.Error()))
		}
		r.store = nil
	}
	if r.busClient != nil {
		r.busClient.Close()
		r.busClient = nil
	}
	if r.natsServer != nil {
		r.natsServer.Shutdown()
		r.natsServer = nil
	}
}

// buildCollaborators instantiates the pipeline collaborators named by the
// per-component mode switches.
func buildCollaborators(cfg config.Config, logger *slog.Logger) (session.Collaborators, error) {
	var collab session.Collaborators

	switch cfg.Capture.Mode {
	case "ffmpeg":
		rec, err := capture.NewFFmpegRecorder(cfg.Capture)
		if err != nil {
			return collab, fmt.Errorf("capture: %w", err)
		}
		collab.Recorder = rec
	default:
		collab.Recorder = capture.NewMockRecorder()
	}

	switch cfg.Selection.Mode {
	case "exec":
		reader, err := selection.NewExecReader(cfg.Selection.Command)
		if err != nil {
			return collab, fmt.Errorf("selection: %w", err)
		}
		collab.Selection = reader
	default:
		collab.Selection = selection.NewMockReader(selection.Context{})
	}

	switch cfg.Transcribe.Mode {
	case "groq":
		groq := transcribe.NewGroqTranscriber(cfg.Transcribe)
		collab.Transcriber = groq
		collab.Warmers = append(collab.Warmers, groq)
	default:
		collab.Transcriber = transcribe.NewMockTranscriber("")
	}

	switch cfg.TextGen.Mode {
	case "gemini":
		gemini := textgen.NewGeminiClient(cfg.TextGen)
		collab.Polisher = gemini
		collab.Rewriter = gemini
		collab.Warmers = append(collab.Warmers, gemini)
	default:
		engine := textgen.NewMockEngine()
		collab.Polisher = engine
		collab.Rewriter = engine
	}

	switch cfg.Delivery.Mode {
	case "exec":
		d, err := deliver.NewExecDeliverer(cfg.Delivery)
		if err != nil {
			return collab, fmt.Errorf("delivery: %w", err)
		}
		collab.Deliverer = d
	default:
		collab.Deliverer = deliver.NewMockDeliverer()
	}

	logger.Debug("collaborators assembled",
		slog.String("capture", cfg.Capture.Mode),
		slog.String("selection", cfg.Selection.Mode),
		slog.String("delivery", cfg.Delivery.Mode))

	return collab, nil
}
