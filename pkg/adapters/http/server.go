package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/swap"
	"github.com/aretw0/swap/internal/logging"
	"github.com/aretw0/swap/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotSource is the read side of a terminal.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

// Server exposes read-only operational endpoints for a running terminal.
// It never accepts payment actions.
type Server struct {
	Terminal SnapshotSource
	Streams  *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer serves the given registry on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the server. Call Handler to mount it.
func NewServer(terminal SnapshotSource, opts ...Option) *Server {
	s := &Server{
		Terminal: terminal,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/session", s.GetSession)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Publish pushes the latest snapshot to event subscribers as a diff.
func (s *Server) Publish(snap domain.Snapshot) {
	s.Streams.Publish(snap)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{
		"app":     "swap",
		"version": strings.TrimSpace(swap.Version),
	})
}

// GetSession handles the GET /session request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, s.Terminal.Snapshot())
}

// SubscribeEvents handles the GET /events request (SSE).
// The first message is the full snapshot; later ones are diffs.
// The optional "watch" query filters diffs by field (step, amount, pin, prompt, scan, balance).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var watch []string
	if q := r.URL.Query().Get("watch"); q != "" {
		watch = strings.Split(q, ",")
	}

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	initial, err := json.Marshal(s.Terminal.Snapshot())
	if err != nil {
		s.logger.Error("snapshot encode failed", "err", err)
		return
	}
	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", initial)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case diff, ok := <-ch:
			if !ok {
				return
			}
			if !matches(diff, watch) {
				continue
			}
			data, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("diff encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func matches(diff *domain.SnapshotDiff, watch []string) bool {
	if len(watch) == 0 {
		return true
	}
	for _, field := range watch {
		switch strings.TrimSpace(field) {
		case "step":
			if diff.Step != nil {
				return true
			}
		case "amount":
			if diff.Amount != nil {
				return true
			}
		case "pin":
			if diff.Pin != nil {
				return true
			}
		case "prompt":
			if diff.Prompt != nil {
				return true
			}
		case "scan":
			if diff.Scan != nil {
				return true
			}
		case "balance":
			if diff.Balance != nil {
				return true
			}
		}
	}
	return false
}

// StreamManager fans snapshot diffs out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	last        *domain.Snapshot
	subscribers map[chan *domain.SnapshotDiff]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan *domain.SnapshotDiff]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a subscriber. The returned func unregisters it.
func (sm *StreamManager) Subscribe() (<-chan *domain.SnapshotDiff, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan *domain.SnapshotDiff, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Publish broadcasts what changed since the previous snapshot.
func (sm *StreamManager) Publish(snap domain.Snapshot) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	diff := domain.Diff(sm.last, &snap)
	sm.last = &snap
	if diff == nil {
		return
	}

	for ch := range sm.subscribers {
		select {
		case ch <- diff:
		default:
			// Slow client
			sm.logger.Warn("SSE: client buffer full, dropping diff")
		}
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
