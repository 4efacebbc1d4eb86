// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"

	"github.com/kadirpekel/dealfinder/pkg/ratelimit"
	"github.com/kadirpekel/dealfinder/pkg/server"
)

// ServeCmd starts the HTTP API.
type ServeCmd struct {
	Host  string `help:"Host to bind (overrides config)."`
	Port  int    `help:"Port to listen on (overrides config)."`
	Seed  bool   `help:"Load the demo dataset before serving."`
	Watch bool   `help:"Watch the config file and log reloads."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := openSession(ctx, cli, sessionOptions{observability: true, seed: c.Seed})
	if err != nil {
		return err
	}
	defer s.Close()

	if c.Host != "" {
		s.cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		s.cfg.Server.Port = c.Port
	}

	// Limits are read once at start-up, so reloads are only reported.
	if c.Watch && s.loader != nil {
		go func() {
			if err := s.loader.Watch(ctx); err != nil && ctx.Err() == nil {
				slog.Error("Config watch error", "error", err)
			}
		}()
	}

	serverOpts := []server.HTTPServerOption{server.WithObservability(s.observability)}
	if s.cfg.Server.RateLimit.IsEnabled() {
		limiter, err := ratelimit.NewRateLimiter(&s.cfg.Server.RateLimit, ratelimit.NewMemoryStore())
		if err != nil {
			return err
		}
		defer limiter.Close()
		serverOpts = append(serverOpts, server.WithRateLimiter(limiter))
	}

	srv := server.NewHTTPServer(&s.cfg.Server, s.runtime, serverOpts...)

	fmt.Printf("\ndealfinder server ready\n")
	fmt.Printf("   Ask:     POST http://%s/v1/ask\n", srv.Address())
	fmt.Printf("   Tools:   http://%s/v1/tools\n", srv.Address())
	fmt.Printf("   Health:  http://%s/health\n", srv.Address())
	fmt.Printf("   Graph:   %s (%s)\n", s.runtime.Store().Backend(), s.runtime.Store().Language())
	fmt.Printf("   Dishes:  %s\n", s.runtime.Vectors().Name())
	if s.cfg.Observability.Tracing.Enabled {
		fmt.Printf("   Tracing: %s (%s)\n", s.cfg.Observability.Tracing.Exporter, s.cfg.Observability.Tracing.Endpoint)
	}
	if s.cfg.Observability.Metrics.Enabled {
		fmt.Printf("   Metrics: http://%s%s\n", srv.Address(), s.observability.MetricsPath())
	}
	if s.cfg.Server.RateLimit.IsEnabled() {
		for _, rule := range s.cfg.Server.RateLimit.Limits {
			fmt.Printf("   Limit:   %d %s per %s\n", rule.Limit, rule.Type, rule.Window)
		}
	}
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}
