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

package config

import "fmt"

// RateLimitConfig limits how often a client may ask questions over HTTP.
type RateLimitConfig struct {
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty" jsonschema:"title=Enabled,default=false"`

	// Limits defines the rate limit rules.
	Limits []RateLimitRule `yaml:"limits,omitempty" json:"limits,omitempty" jsonschema:"title=Limits"`
}

// RateLimitRule defines a single rate limit rule.
type RateLimitRule struct {
	// Type is the limit type ("token" or "count").
	Type string `yaml:"type" json:"type" jsonschema:"enum=token,enum=count"`

	// Window is the time window ("minute", "hour", "day", "week", "month").
	Window string `yaml:"window" json:"window" jsonschema:"enum=minute,enum=hour,enum=day,enum=week,enum=month"`

	// Limit is the maximum allowed in the window.
	Limit int64 `yaml:"limit" json:"limit" jsonschema:"minimum=1"`
}

// IsEnabled returns true if rate limiting is enabled.
func (c *RateLimitConfig) IsEnabled() bool {
	return c != nil && c.Enabled != nil && *c.Enabled
}

func (c *RateLimitConfig) SetDefaults() {
	if c.Enabled == nil {
		c.Enabled = BoolPtr(false)
	}
	if c.IsEnabled() && len(c.Limits) == 0 {
		// Each question costs several model calls.
		c.Limits = []RateLimitRule{
			{Type: "token", Window: "day", Limit: 200000},
			{Type: "count", Window: "minute", Limit: 20},
		}
	}
}

func (c *RateLimitConfig) Validate() error {
	if !c.IsEnabled() {
		return nil
	}
	if len(c.Limits) == 0 {
		return fmt.Errorf("rate_limit.limits is required when rate limiting is enabled")
	}
	for i, limit := range c.Limits {
		if err := validateLimit(i, limit); err != nil {
			return err
		}
	}
	return nil
}

var validWindows = map[string]bool{
	"minute": true,
	"hour":   true,
	"day":    true,
	"week":   true,
	"month":  true,
}

func validateLimit(index int, limit RateLimitRule) error {
	if limit.Type != "token" && limit.Type != "count" {
		return fmt.Errorf("invalid rate_limit.limits[%d].type %q, must be 'token' or 'count'", index, limit.Type)
	}
	if !validWindows[limit.Window] {
		return fmt.Errorf("invalid rate_limit.limits[%d].window %q, must be 'minute', 'hour', 'day', 'week', or 'month'", index, limit.Window)
	}
	if limit.Limit <= 0 {
		return fmt.Errorf("rate_limit.limits[%d].limit must be positive", index)
	}
	return nil
}
