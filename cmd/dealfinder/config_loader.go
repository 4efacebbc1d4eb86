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

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kadirpekel/dealfinder/pkg/config"
	"github.com/kadirpekel/dealfinder/pkg/observability"
	"github.com/kadirpekel/dealfinder/pkg/reasoning"
	"github.com/kadirpekel/dealfinder/pkg/runtime"
)

// loadConfig loads the config file, or the built-in defaults when path is
// empty. The returned Loader is nil in the latter case.
func loadConfig(ctx context.Context, path string) (*config.Config, *config.Loader, error) {
	if path == "" {
		slog.Debug("No config file given, using defaults")
		return config.Default(), nil, nil
	}

	cfg, loader, err := config.LoadConfigFile(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.Info("Loaded configuration", "path", path)
	return cfg, loader, nil
}

// session bundles everything a command needs to talk to the agent.
type session struct {
	cfg           *config.Config
	loader        *config.Loader
	runtime       *runtime.Runtime
	observability *observability.Manager
	cleanups      []func()
}

type sessionOptions struct {
	stepHook      reasoning.StepHook
	observability bool
	seed          bool
}

// openSession loads configuration, initializes observability when asked
// and builds the runtime.
func openSession(ctx context.Context, cli *CLI, opts sessionOptions) (*session, error) {
	cfg, loader, err := loadConfig(ctx, cli.Config)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, loader: loader}
	if loader != nil {
		s.cleanups = append(s.cleanups, func() { _ = loader.Close() })
	}

	cleanup, err := applyConfigLogger(&cfg.Logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	if cleanup != nil {
		s.cleanups = append(s.cleanups, cleanup)
	}

	if opts.observability {
		obs := observability.NewManager(cfg.Observability)
		if err := obs.Initialize(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to initialize observability: %w", err)
		}
		s.observability = obs
		s.cleanups = append(s.cleanups, func() {
			if err := obs.Shutdown(context.Background()); err != nil {
				slog.Warn("Observability shutdown failed", "error", err)
			}
		})
	}

	rt, err := runtime.New(ctx, cfg, runtime.Options{
		Observability: s.observability,
		StepHook:      opts.stepHook,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create runtime: %w", err)
	}
	s.runtime = rt
	s.cleanups = append(s.cleanups, func() {
		if err := rt.Close(); err != nil {
			slog.Warn("Runtime shutdown failed", "error", err)
		}
	})

	if opts.seed {
		report, err := rt.Seed(ctx)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
		slog.Info("Demo data loaded",
			"statements", report.Statements,
			"dishes", report.Dishes,
			"duration", report.Duration)
	}

	return s, nil
}

// Close runs the cleanups in reverse order.
func (s *session) Close() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}
