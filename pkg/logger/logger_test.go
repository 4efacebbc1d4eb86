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

package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelWarn,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestNew_SimpleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(slog.LevelInfo, &buf, FormatSimple)

	log.Info("tool dispatched", "tool", "semantic_dish_search")
	log.Debug("hidden")

	assert.Equal(t, "INFO tool dispatched tool=semantic_dish_search\n", buf.String())
}

func TestNew_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := New(slog.LevelDebug, &buf, FormatSimple).With("run_id", "r1").WithGroup("agent")

	log.Debug("step", "iteration", 2)

	assert.Equal(t, "DEBUG step run_id=r1 agent.iteration=2\n", buf.String())
}

func TestNew_AttrsKeepTheirGroup(t *testing.T) {
	var buf bytes.Buffer
	log := New(slog.LevelDebug, &buf, FormatSimple).
		WithGroup("agent").With("run_id", "r1").
		WithGroup("tool").With("name", "semantic_dish_search")

	log.Debug("call", "ms", 12)

	assert.Equal(t, "DEBUG call agent.run_id=r1 agent.tool.name=semantic_dish_search agent.tool.ms=12\n", buf.String())
}

func TestNew_VerboseHasTimestamp(t *testing.T) {
	var buf bytes.Buffer
	New(slog.LevelInfo, &buf, FormatVerbose).Warn("slow")

	assert.Regexp(t, `^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2} WARN slow\n$`, buf.String())
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(slog.LevelInfo, &buf, FormatJSON).Error("boom", "code", 7)

	assert.Contains(t, buf.String(), `"msg":"boom"`)
	assert.Contains(t, buf.String(), `"code":7`)
}
