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

// Package ratelimit limits how many questions, and how many model tokens,
// a single HTTP client may spend.
//
// Limits are fixed windows (minute, hour, day, week, month) over either a
// request count or a token count. Requests are counted when they arrive;
// tokens are only known once the reasoning loop finishes, so they are
// recorded afterwards and block the client's next request.
//
//	limiter, err := ratelimit.NewRateLimiter(&cfg.Server.RateLimit, ratelimit.NewMemoryStore())
//	router.With(ratelimit.Middleware(ratelimit.MiddlewareConfig{Limiter: limiter})).Post("/ask", h)
//
//	// after the run
//	_ = limiter.Record(ctx, ratelimit.ClientID(r), int64(res.PromptTokens+res.CompletionTokens), 0)
package ratelimit
