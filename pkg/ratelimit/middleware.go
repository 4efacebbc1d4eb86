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

package ratelimit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// ClientHeader lets a trusted front end name the client explicitly.
const ClientHeader = "X-Client-ID"

// IdentifierFunc extracts the rate limit identifier from an HTTP request.
type IdentifierFunc func(r *http.Request) string

// ClientID uses ClientHeader when present, otherwise the remote host.
func ClientID(r *http.Request) string {
	if id := r.Header.Get(ClientHeader); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// MiddlewareConfig configures the rate limiting middleware.
type MiddlewareConfig struct {
	// Limiter is the rate limiter to use. Nil disables the middleware.
	Limiter *RateLimiter

	// IdentifierFunc defaults to ClientID.
	IdentifierFunc IdentifierFunc

	// OnLimited is called when a request is rate limited.
	// If nil, a default JSON error response is sent.
	OnLimited func(w http.ResponseWriter, r *http.Request, result *CheckResult)
}

// Middleware counts each request against the count limits and rejects
// clients that are over any limit with 429.
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.IdentifierFunc == nil {
		cfg.IdentifierFunc = ClientID
	}
	if cfg.OnLimited == nil {
		cfg.OnLimited = defaultOnLimited
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := cfg.IdentifierFunc(r)
			if identifier == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Limiter.CheckAndRecord(r.Context(), identifier, 0, 1)
			if err != nil {
				// Fail open.
				slog.Error("Rate limit check failed", "error", err, "identifier", identifier)
				next.ServeHTTP(w, r)
				return
			}

			r = r.WithContext(context.WithValue(r.Context(), rateLimitUsageKey{}, result))
			if !result.Allowed {
				cfg.OnLimited(w, r, result)
				return
			}

			addRateLimitHeaders(w, result)
			next.ServeHTTP(w, r)
		})
	}
}

type rateLimitUsageKey struct{}

// UsageFromContext extracts rate limit usage from the request context.
func UsageFromContext(ctx context.Context) *CheckResult {
	if result, ok := ctx.Value(rateLimitUsageKey{}).(*CheckResult); ok {
		return result
	}
	return nil
}

type limitedResponse struct {
	Error             string  `json:"error"`
	Code              string  `json:"code"`
	RetryAfterSeconds int64   `json:"retry_after_seconds,omitempty"`
	Usage             []Usage `json:"usage,omitempty"`
}

func defaultOnLimited(w http.ResponseWriter, r *http.Request, result *CheckResult) {
	w.Header().Set("Content-Type", "application/json")

	resp := limitedResponse{
		Error: NewRateLimitError(result).Error(),
		Code:  "rate_limit_exceeded",
		Usage: result.Usages,
	}
	if result.RetryAfter != nil && *result.RetryAfter > 0 {
		secs := int64(result.RetryAfter.Round(time.Second).Seconds())
		w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
		resp.RetryAfterSeconds = secs
	}
	addRateLimitHeaders(w, result)

	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(resp)
}

func addRateLimitHeaders(w http.ResponseWriter, result *CheckResult) {
	if result == nil {
		return
	}
	if u := result.mostRestrictive(); u != nil {
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(u.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(u.Remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(u.WindowEnd.Unix(), 10))
	}
}
