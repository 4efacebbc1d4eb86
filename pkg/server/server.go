// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the deal finder over HTTP.
//
// Routes:
//   - GET  /health      liveness
//   - GET  /v1/tools    tool catalog in dispatch order
//   - POST /v1/ask      run one query
//   - GET  /api/schema  JSON Schema of the configuration
//   - GET  /metrics     Prometheus metrics, when enabled
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/kadirpekel/dealfinder/pkg/config"
	"github.com/kadirpekel/dealfinder/pkg/observability"
	"github.com/kadirpekel/dealfinder/pkg/ratelimit"
	"github.com/kadirpekel/dealfinder/pkg/reasoning"
	"github.com/kadirpekel/dealfinder/pkg/tool"
)

// Agent answers questions. *runtime.Runtime satisfies it.
type Agent interface {
	Ask(ctx context.Context, question string) (*reasoning.Result, error)
	ToolSpecs() []tool.Spec
}

// HTTPServer serves the JSON API.
type HTTPServer struct {
	cfg   *config.ServerConfig
	agent Agent

	observability *observability.Manager
	limiter       *ratelimit.RateLimiter
	server        *http.Server
}

// HTTPServerOption configures the HTTP server.
type HTTPServerOption func(*HTTPServer)

// WithObservability sets the observability manager for tracing and metrics.
func WithObservability(obs *observability.Manager) HTTPServerOption {
	return func(s *HTTPServer) {
		s.observability = obs
	}
}

// WithRateLimiter limits POST /v1/ask per client. Token usage of each run
// is recorded against the same client.
func WithRateLimiter(limiter *ratelimit.RateLimiter) HTTPServerOption {
	return func(s *HTTPServer) {
		s.limiter = limiter
	}
}

func NewHTTPServer(cfg *config.ServerConfig, agent Agent, opts ...HTTPServerOption) *HTTPServer {
	if cfg.Host == "" || cfg.Port == 0 {
		cfg.SetDefaults()
	}
	s := &HTTPServer{cfg: cfg, agent: agent}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the routed handler with its middleware chain.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	// Order: tracing -> recoverer -> logging -> cors -> routes
	if s.observability != nil {
		r.Use(observability.HTTPMiddleware(s.observability.Tracer("dealfinder/http")))
	}
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORS.AllowedOrigins,
		AllowedMethods: s.cfg.CORS.AllowedMethods,
		AllowedHeaders: s.cfg.CORS.AllowedHeaders,
	}).Handler)

	r.Get("/health", s.handleHealth)
	r.Get("/api/schema", s.handleSchema)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/tools", s.handleTools)
		r.With(ratelimit.Middleware(ratelimit.MiddlewareConfig{Limiter: s.limiter})).Post("/ask", s.handleAsk)
	})

	if s.observability != nil {
		if path := s.observability.MetricsPath(); path != "" {
			r.Method(http.MethodGet, path, s.observability.MetricsHandler())
			slog.Info("Metrics endpoint enabled", "path", path)
		}
	}

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server starting", "address", s.cfg.Address())
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown(context.Background())
	})

	if s.limiter != nil {
		g.Go(func() error {
			return s.limiter.RunCleanup(gctx, time.Minute)
		})
	}

	return g.Wait()
}

// Shutdown gracefully shuts down the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Info("HTTP server shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown error: %w", err)
	}
	return nil
}

// Address returns the HTTP server address.
func (s *HTTPServer) Address() string {
	return s.cfg.Address()
}

// loggingMiddleware logs requests without wrapping the ResponseWriter.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
