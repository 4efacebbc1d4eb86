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

package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kadirpekel/dealfinder/pkg/config"
)

// RateLimiter enforces the configured limits over a Store.
type RateLimiter struct {
	config *config.RateLimitConfig
	store  Store
	mu     sync.Mutex
}

// NewRateLimiter validates cfg and builds a limiter over store.
func NewRateLimiter(cfg *config.RateLimitConfig, store Store) (*RateLimiter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("rate limit config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limit config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &RateLimiter{config: cfg, store: store}, nil
}

// Check reports whether a request costing the given amounts would be
// allowed, without recording anything.
func (rl *RateLimiter) Check(ctx context.Context, identifier string, tokenCount, requestCount int64) (*CheckResult, error) {
	if !rl.config.IsEnabled() {
		return &CheckResult{Allowed: true}, nil
	}
	if identifier == "" {
		return nil, ErrInvalidIdentifier
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.checkUnlocked(ctx, identifier, tokenCount, requestCount)
}

// Record adds usage after the fact.
func (rl *RateLimiter) Record(ctx context.Context, identifier string, tokenCount, requestCount int64) error {
	if !rl.config.IsEnabled() {
		return nil
	}
	if identifier == "" {
		return ErrInvalidIdentifier
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.recordUnlocked(ctx, identifier, tokenCount, requestCount)
}

// CheckAndRecord records the usage only when every limit allows it. The
// returned usages reflect the state after recording.
func (rl *RateLimiter) CheckAndRecord(ctx context.Context, identifier string, tokenCount, requestCount int64) (*CheckResult, error) {
	if !rl.config.IsEnabled() {
		return &CheckResult{Allowed: true}, nil
	}
	if identifier == "" {
		return nil, ErrInvalidIdentifier
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	result, err := rl.checkUnlocked(ctx, identifier, tokenCount, requestCount)
	if err != nil || !result.Allowed {
		return result, err
	}
	if err := rl.recordUnlocked(ctx, identifier, tokenCount, requestCount); err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}
	for i := range result.Usages {
		u := &result.Usages[i]
		u.Current += amountFor(u.LimitType, tokenCount, requestCount)
		u.Remaining = max(u.Limit-u.Current, 0)
		u.Percentage = float64(u.Current) / float64(u.Limit) * 100
	}
	return result, nil
}

// Reset forgets every counter for identifier.
func (rl *RateLimiter) Reset(ctx context.Context, identifier string) error {
	if identifier == "" {
		return ErrInvalidIdentifier
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.store.DeleteUsage(ctx, identifier)
}

// ResetExpired removes records whose window ended before the given time.
func (rl *RateLimiter) ResetExpired(ctx context.Context, before time.Time) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.store.DeleteExpired(ctx, before)
}

// RunCleanup calls ResetExpired every interval until ctx is cancelled.
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := rl.ResetExpired(ctx, now); err != nil {
				slog.Warn("Rate limit cleanup failed", "error", err)
			}
		}
	}
}

// Close releases the underlying store.
func (rl *RateLimiter) Close() error {
	return rl.store.Close()
}

func amountFor(limitType LimitType, tokenCount, requestCount int64) int64 {
	if limitType == LimitTypeToken {
		return tokenCount
	}
	return requestCount
}

// checkUnlocked denies when a limit is already spent or the pending amount
// would push it past the limit.
func (rl *RateLimiter) checkUnlocked(ctx context.Context, identifier string, tokenCount, requestCount int64) (*CheckResult, error) {
	result := &CheckResult{
		Allowed: true,
		Usages:  make([]Usage, 0, len(rl.config.Limits)),
	}
	var earliestRetry time.Time

	for _, limit := range rl.config.Limits {
		limitType, window := LimitType(limit.Type), TimeWindow(limit.Window)

		current, windowEnd, err := rl.store.GetUsage(ctx, identifier, limitType, window)
		if err != nil {
			return nil, fmt.Errorf("failed to get usage for %s/%s: %w", limitType, window, err)
		}

		result.Usages = append(result.Usages, Usage{
			LimitType:  limitType,
			Window:     window,
			Current:    current,
			Limit:      limit.Limit,
			WindowEnd:  windowEnd,
			Remaining:  max(limit.Limit-current, 0),
			Percentage: float64(current) / float64(limit.Limit) * 100,
		})

		pending := amountFor(limitType, tokenCount, requestCount)
		if current >= limit.Limit || current+pending > limit.Limit {
			if result.Allowed {
				result.Reason = fmt.Sprintf("%s limit exceeded for %s window (%d/%d)", limitType, window, current, limit.Limit)
			}
			result.Allowed = false
			if earliestRetry.IsZero() || windowEnd.Before(earliestRetry) {
				earliestRetry = windowEnd
			}
		}
	}

	if !result.Allowed {
		if retry := time.Until(earliestRetry); retry > 0 {
			result.RetryAfter = &retry
		}
	}
	return result, nil
}

func (rl *RateLimiter) recordUnlocked(ctx context.Context, identifier string, tokenCount, requestCount int64) error {
	for _, limit := range rl.config.Limits {
		limitType, window := LimitType(limit.Type), TimeWindow(limit.Window)

		amount := amountFor(limitType, tokenCount, requestCount)
		if amount <= 0 {
			continue
		}
		if _, _, err := rl.store.IncrementUsage(ctx, identifier, limitType, window, amount); err != nil {
			return fmt.Errorf("failed to increment usage for %s/%s: %w", limitType, window, err)
		}
	}
	return nil
}
