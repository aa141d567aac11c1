package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthServer serves the scheduler daemon's probes: /health always answers
// 200 while the process lives, /health/ready answers 200 once the scheduler
// is wired up and 503 otherwise. Both responses carry the digest lifecycle
// state when one has been reported, so an operator can see whether a draft
// is waiting without shelling into the box.
type HealthServer struct {
	addr   string
	logger *slog.Logger
	ready  atomic.Bool
	state  atomic.Value // digest lifecycle state, e.g. "drafted"
	server *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
	Digest string `json:"digest,omitempty"`
}

// NewHealthServer creates a health server listening on addr once started.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	h := &HealthServer{addr: addr, logger: logger}
	h.state.Store("")
	return h
}

// Start runs the server until ctx is cancelled, then shuts down gracefully
// with a five second grace period. It returns http.ErrServerClosed on a
// clean shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.String("error", err.Error()))
			return err
		}
		return http.ErrServerClosed

	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.String("error", err.Error()))
		}
		return err
	}
}

// SetReady flips the readiness probe.
func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// SetDigestState publishes the digest lifecycle state shown in probe
// responses.
func (h *HealthServer) SetDigestState(state string) {
	h.state.Store(state)
}

func (h *HealthServer) digestState() string {
	state, _ := h.state.Load().(string)
	return state
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.writeResponse(w, http.StatusOK, healthResponse{Status: "ok", Digest: h.digestState()})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if h.ready.Load() {
		h.writeResponse(w, http.StatusOK, healthResponse{Status: "ok", Digest: h.digestState()})
		return
	}
	h.writeResponse(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready", Digest: h.digestState()})
}

func (h *HealthServer) writeResponse(w http.ResponseWriter, code int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode health response", slog.String("error", err.Error()))
	}
}
