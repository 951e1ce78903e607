package devserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/navguard/internal/app"
	"github.com/vango-dev/navguard/internal/errors"
)

// Options configures the development server.
type Options struct {
	// App is the application whose pipeline is served.
	App *app.App

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Logger is the server's logger. Default: slog.Default().
	Logger *slog.Logger
}

// Server is the development server.
type Server struct {
	app        *app.App
	gatherer   prometheus.Gatherer
	logger     *slog.Logger
	sessions   *SessionServer
	httpServer *http.Server
	mu         sync.Mutex
	running    bool
}

// New creates a development server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		app:      opts.App,
		gatherer: opts.Gatherer,
		logger:   logger,
		sessions: NewSessionServer(opts.App, logger),
	}
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.NoCache)
		r.Get("/routes", s.handleRoutes)
		r.Get("/navigate", s.handleNavigate)
	})
	r.Get("/_navguard/ws", s.sessions.HandleWebSocket)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Sessions returns the WebSocket session server.
func (s *Server) Sessions() *SessionServer {
	return s.sessions
}

// Start serves on the configured address until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:              s.app.Config().Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("server running", "url", s.app.Config().URL())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errCh:
		return err
	}
}

// Stop closes every session and shuts the HTTP server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	s.sessions.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	records := s.app.Table().Routes()
	out := make([]RouteInfo, 0, len(records))
	for _, rec := range records {
		info := RouteInfo{Pattern: rec.Pattern, Name: rec.Name, Views: len(rec.Views)}
		for _, ref := range rec.Views {
			if ref.IsLazy() {
				info.Lazy++
			}
		}
		if rec.Parent != nil {
			info.Parent = rec.Parent.Pattern
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleNavigate runs one navigation in a throwaway session. When from is
// given it is committed first so middleware sees a realistic origin.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if to == "" {
		writeError(w, http.StatusBadRequest, errors.New("N041").WithDetail("query parameter \"to\" is required"))
		return
	}

	sess := s.app.NewSession()
	ctx := r.Context()

	if from := r.URL.Query().Get("from"); from != "" {
		if _, err := sess.Navigator.Push(ctx, from); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		sess.Tick()
	}

	out, err := sess.Navigator.Push(ctx, to)
	sess.Tick()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, newOutcome(out))
}

func statusFor(err error) int {
	switch errors.CodeOf(err) {
	case "N041":
		return http.StatusBadRequest
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": errorPayload(err)})
}

// errorPayload renders NavErrors with their code and everything else as a
// plain message.
func errorPayload(err error) any {
	if errors.CodeOf(err) != "" {
		return errors.FromError(err, "")
	}
	return map[string]string{"message": err.Error()}
}
