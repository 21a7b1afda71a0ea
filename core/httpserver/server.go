// Package httpserver serves operational endpoints next to the bot.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/royaldns/core/logger"
	"github.com/m3rciful/royaldns/core/metrics"
)

const shutdownTimeout = 5 * time.Second

// Check reports readiness of one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// Server hosts /healthz and /metrics.
type Server struct {
	srv    *http.Server
	checks map[string]Check
}

// New builds a server bound to listen. Checks are evaluated on every /healthz call.
func New(listen string, checks map[string]Check) *Server {
	s := &Server{checks: checks}
	s.srv = &http.Server{
		Addr:              listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router; exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := "ok\n"
	for name, check := range s.checks {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = fmt.Sprintf("%s: %v\n", name, err)
			logger.HTTP.Warn("health check failed",
				slog.String("event", "http.health"),
				slog.String("check", name),
				slog.String("err", err.Error()),
			)
			break
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// Start listens in the background until ctx is done, then shuts the server down.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("httpserver: listen %s: %w", s.srv.Addr, err)
	}
	logger.HTTP.Info("http listening",
		slog.String("event", "http.listen"),
		slog.String("listen", ln.Addr().String()),
	)

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.HTTP.Error("http serve failed",
				slog.String("event", "http.serve"),
				slog.String("err", err.Error()),
			)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("httpserver: shutdown: %w", err)
	}
	logger.HTTP.Debug("http stopped", slog.String("event", "http.stop"))
	return nil
}
