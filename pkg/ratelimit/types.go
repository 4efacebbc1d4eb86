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

import "time"

type TimeWindow string

const (
	WindowMinute TimeWindow = "minute"
	WindowHour   TimeWindow = "hour"
	WindowDay    TimeWindow = "day"
	WindowWeek   TimeWindow = "week"
	WindowMonth  TimeWindow = "month"
)

func (w TimeWindow) Duration() time.Duration {
	switch w {
	case WindowMinute:
		return time.Minute
	case WindowHour:
		return time.Hour
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	default:
		return time.Hour
	}
}

type LimitType string

const (
	LimitTypeToken LimitType = "token"
	LimitTypeCount LimitType = "count"
)

// Usage is the state of one limit for one client.
type Usage struct {
	LimitType  LimitType  `json:"limit_type"`
	Window     TimeWindow `json:"window"`
	Current    int64      `json:"current"`
	Limit      int64      `json:"limit"`
	WindowEnd  time.Time  `json:"window_end"`
	Remaining  int64      `json:"remaining"`
	Percentage float64    `json:"percentage"`
}

type CheckResult struct {
	Allowed    bool           `json:"allowed"`
	Reason     string         `json:"reason,omitempty"`
	Usages     []Usage        `json:"usages"`
	RetryAfter *time.Duration `json:"retry_after,omitempty"`
}

func (r *CheckResult) GetUsage(limitType LimitType, window TimeWindow) *Usage {
	for i := range r.Usages {
		if r.Usages[i].LimitType == limitType && r.Usages[i].Window == window {
			return &r.Usages[i]
		}
	}
	return nil
}

// mostRestrictive returns the usage closest to its limit.
func (r *CheckResult) mostRestrictive() *Usage {
	var most *Usage
	for i := range r.Usages {
		u := &r.Usages[i]
		if most == nil || u.Percentage > most.Percentage {
			most = u
		}
	}
	return most
}
