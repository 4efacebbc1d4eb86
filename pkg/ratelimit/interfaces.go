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
	"time"
)

// Store keeps usage counters per client, limit type and window.
type Store interface {
	// GetUsage returns the current amount and window end. An unknown or
	// expired record reports 0 with a fresh window.
	GetUsage(ctx context.Context, identifier string, limitType LimitType, window TimeWindow) (int64, time.Time, error)

	// IncrementUsage adds amount, starting a new window if the old one expired.
	IncrementUsage(ctx context.Context, identifier string, limitType LimitType, window TimeWindow, amount int64) (int64, time.Time, error)

	DeleteUsage(ctx context.Context, identifier string) error

	// DeleteExpired drops records whose window ended before the given time.
	DeleteExpired(ctx context.Context, before time.Time) error

	Close() error
}

var _ Store = (*MemoryStore)(nil)
