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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, LLMProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 8, cfg.Agent.MaxIterations)
	assert.Equal(t, 3, cfg.Agent.MaxParseRetries)
	assert.Equal(t, 3, cfg.Agent.TopK)
	assert.Equal(t, "U1", cfg.Agent.UserID)
	assert.Equal(t, "Gold", cfg.Agent.MembershipLevel)
	assert.Equal(t, GraphBackendNeo4j, cfg.Graph.Backend)
	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.Neo4j.URI)
	assert.Equal(t, "eats_dishes", cfg.Vector.Collection)
	assert.Equal(t, VectorTypeChromem, cfg.Vector.Type)
}

func TestParse(t *testing.T) {
	t.Setenv("DF_NEO4J_PASSWORD", "s3cret")

	data := []byte(`
logger:
  level: debug
llm:
  provider: ollama
  model: llama3
  temperature: 0.2
  timeout: 45s
graph:
  backend: neo4j
  neo4j:
    password: ${DF_NEO4J_PASSWORD}
    database: ${DF_NEO4J_DB:-deals}
agent:
  max_iterations: "5"
  max_execution_time: 1m
server:
  cors:
    allowed_origins: "http://a.test,http://b.test"
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.InDelta(t, 0.2, *cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "s3cret", cfg.Graph.Neo4j.Password)
	assert.Equal(t, "deals", cfg.Graph.Neo4j.Database)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	assert.Equal(t, time.Minute, cfg.Agent.MaxExecutionTime)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORS.AllowedOrigins)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown llm provider", "llm:\n  provider: nope\n", "invalid provider"},
		{"openai without key", "llm:\n  provider: openai\n  api_key: \"\"\n", "api_key is required"},
		{"bad graph backend", "graph:\n  backend: redis\n", "invalid backend"},
		{"sql without host", "graph:\n  backend: sql\n  sql:\n    driver: postgres\n    database: deals\n", "host is required"},
		{"unknown field", "agent:\n  max_iteration: 3\n", "max_iteration"},
		{"negative budget", "agent:\n  max_execution_time: -1s\n", "max_execution_time"},
		{"bad vector type", "vector:\n  type: pinecone\n", "invalid type"},
		{"bad rate limit window", "server:\n  rate_limit:\n    enabled: true\n    limits:\n      - {type: count, window: fortnight, limit: 5}\n", "window"},
		{"zero rate limit", "server:\n  rate_limit:\n    enabled: true\n    limits:\n      - {type: token, window: day, limit: 0}\n", "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRateLimitConfig_Defaults(t *testing.T) {
	var off RateLimitConfig
	off.SetDefaults()
	assert.False(t, off.IsEnabled())
	assert.Empty(t, off.Limits)
	require.NoError(t, off.Validate())

	on := RateLimitConfig{Enabled: BoolPtr(true)}
	on.SetDefaults()
	require.NoError(t, on.Validate())
	require.Len(t, on.Limits, 2)
	assert.Equal(t, "token", on.Limits[0].Type)
	assert.Equal(t, "count", on.Limits[1].Type)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{"sqlite file", DatabaseConfig{Driver: "sqlite", Database: "deals.db"}, "deals.db"},
		{"sqlite memory", DatabaseConfig{Driver: "sqlite", Database: ":memory:"}, "file::memory:?cache=shared"},
		{"duckdb memory", DatabaseConfig{Driver: "duckdb", Database: ":memory:"}, ""},
		{"postgres", DatabaseConfig{Driver: "postgres", Host: "db", Database: "deals", Username: "u", Password: "p"},
			"host=db port=5432 dbname=deals user=u password=p sslmode=disable"},
		{"mysql", DatabaseConfig{Driver: "mysql", Host: "db", Database: "deals", Username: "u", Password: "p"},
			"u:p@tcp(db:3306)/deals?multiStatements=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.SetDefaults()
			require.NoError(t, tt.cfg.Validate())
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}

	assert.Equal(t, "sqlite3", (&DatabaseConfig{Driver: "sqlite"}).DriverName())
	assert.Equal(t, "sqlite", (&DatabaseConfig{Driver: "sqlite3"}).Dialect())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dealfinder.yaml")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DF_TEST_MODEL=phi3\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: ${DF_TEST_MODEL}\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DF_TEST_MODEL") })

	cfg, loader, err := LoadConfigFile(context.Background(), path)
	require.NoError(t, err)
	defer loader.Close()

	assert.Equal(t, "phi3", cfg.LLM.Model)
}

func TestLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dealfinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent:\n  top_k: 2\n"), 0o644))

	_, loader, err := LoadConfigFile(context.Background(), path)
	require.NoError(t, err)
	defer loader.Close()

	reloaded := make(chan *Config, 1)
	loader.onChange = func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loader.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("agent:\n  top_k: 5\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 5, cfg.Agent.TopK)
	case <-time.After(3 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestSchema(t *testing.T) {
	schema := Schema()
	require.NotNil(t, schema)

	props := schema.Properties
	for _, key := range []string{"llm", "graph", "vector", "agent"} {
		_, ok := props.Get(key)
		assert.True(t, ok, "missing %s", key)
	}
}
