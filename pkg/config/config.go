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

// Package config provides the configuration model for dealfinder.
//
// A configuration file looks like:
//
//	logger:
//	  level: info
//	llm:
//	  provider: ollama
//	  model: llama3
//	embedder:
//	  provider: ollama
//	  model: all-minilm
//	graph:
//	  backend: neo4j
//	  neo4j:
//	    uri: bolt://localhost:7687
//	    username: neo4j
//	    password: ${NEO4J_PASSWORD}
//	vector:
//	  type: chromem
//	  persist_path: ./chroma_db
//	agent:
//	  max_iterations: 8
//
// Every section exposes SetDefaults and Validate. The loader calls them in
// that order after decoding.
package config

import (
	"fmt"
	"time"

	"github.com/kadirpekel/dealfinder/pkg/observability"
)

// Config is the root configuration.
type Config struct {
	Logger        LoggerConfig         `yaml:"logger,omitempty" json:"logger,omitempty" jsonschema:"title=Logger,description=Logging settings"`
	LLM           LLMConfig            `yaml:"llm,omitempty" json:"llm,omitempty" jsonschema:"title=LLM,description=Language model driving the reasoning loop"`
	Embedder      EmbedderConfig       `yaml:"embedder,omitempty" json:"embedder,omitempty" jsonschema:"title=Embedder,description=Embedding model used for dish search"`
	Graph         GraphConfig          `yaml:"graph,omitempty" json:"graph,omitempty" jsonschema:"title=Graph Store,description=Structured deal and membership store"`
	Vector        VectorConfig         `yaml:"vector,omitempty" json:"vector,omitempty" jsonschema:"title=Vector Store,description=Semantic dish index"`
	Agent         AgentConfig          `yaml:"agent,omitempty" json:"agent,omitempty" jsonschema:"title=Agent,description=Reasoning loop limits and persona"`
	Server        ServerConfig         `yaml:"server,omitempty" json:"server,omitempty" jsonschema:"title=Server,description=HTTP API settings"`
	Observability observability.Config `yaml:"observability,omitempty" json:"observability,omitempty" jsonschema:"title=Observability,description=Tracing and metrics"`
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Logger.SetDefaults()
	c.LLM.SetDefaults()
	c.Embedder.SetDefaults()
	c.Graph.SetDefaults()
	c.Vector.SetDefaults()
	c.Agent.SetDefaults()
	c.Server.SetDefaults()
	c.Observability.SetDefaults()
}

// Validate checks every section, reporting the first failure.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"logger", c.Logger.Validate},
		{"llm", c.LLM.Validate},
		{"embedder", c.Embedder.Validate},
		{"graph", c.Graph.Validate},
		{"vector", c.Vector.Validate},
		{"agent", c.Agent.Validate},
		{"server", c.Server.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, check := range checks {
		if err := check.fn(); err != nil {
			return fmt.Errorf("%s: %w", check.name, err)
		}
	}
	return nil
}

// Default returns a configuration with every default applied. It is what
// the CLI runs with when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// LoggerConfig configures logging behavior.
//
// Priority order (highest to lowest):
//  1. CLI flags (--log-level, --log-file, --log-format)
//  2. Environment variables (LOG_LEVEL, LOG_FILE, LOG_FORMAT)
//  3. Config file (logger section)
//  4. Defaults (info level, simple format, stderr)
type LoggerConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	File   string `yaml:"file,omitempty" json:"file,omitempty" jsonschema:"title=File,description=Log file path (stderr when empty)"`
	Format string `yaml:"format,omitempty" json:"format,omitempty" jsonschema:"title=Format,enum=simple,enum=verbose,enum=json,default=simple"`
}

func (c *LoggerConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "simple"
	}
}

func (c *LoggerConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", c.Level)
	}
}

// AgentConfig bounds the reasoning loop and sets the persona it speaks for.
type AgentConfig struct {
	// MaxIterations caps model turns per query, including turns whose
	// output could not be parsed.
	MaxIterations int `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty" jsonschema:"title=Max Iterations,minimum=1,default=8"`

	// MaxParseRetries caps consecutive unparseable model outputs.
	MaxParseRetries int `yaml:"max_parse_retries,omitempty" json:"max_parse_retries,omitempty" jsonschema:"title=Max Parse Retries,minimum=1,default=3"`

	// MaxExecutionTime is the wall-clock budget for one query. Zero means
	// no limit.
	MaxExecutionTime time.Duration `yaml:"max_execution_time,omitempty" json:"max_execution_time,omitempty" jsonschema:"title=Max Execution Time,type=string,example=2m"`

	// TopK is the number of dishes returned by semantic search.
	TopK int `yaml:"top_k,omitempty" json:"top_k,omitempty" jsonschema:"title=Top K,minimum=1,default=3"`

	UserID          string `yaml:"user_id,omitempty" json:"user_id,omitempty" jsonschema:"title=User ID,default=U1"`
	MembershipLevel string `yaml:"membership_level,omitempty" json:"membership_level,omitempty" jsonschema:"title=Membership Level,default=Gold"`

	// Instruction overrides the built-in system instruction.
	Instruction string `yaml:"instruction,omitempty" json:"instruction,omitempty" jsonschema:"title=Instruction"`

	// Verbose logs every step at info level.
	Verbose bool `yaml:"verbose,omitempty" json:"verbose,omitempty" jsonschema:"title=Verbose,default=false"`
}

func (c *AgentConfig) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 8
	}
	if c.MaxParseRetries == 0 {
		c.MaxParseRetries = 3
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.UserID == "" {
		c.UserID = "U1"
	}
	if c.MembershipLevel == "" {
		c.MembershipLevel = "Gold"
	}
}

func (c *AgentConfig) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1")
	}
	if c.MaxParseRetries < 1 {
		return fmt.Errorf("max_parse_retries must be at least 1")
	}
	if c.MaxExecutionTime < 0 {
		return fmt.Errorf("max_execution_time must be non-negative")
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1")
	}
	return nil
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string     `yaml:"host,omitempty" json:"host,omitempty" jsonschema:"title=Host,default=0.0.0.0"`
	Port int        `yaml:"port,omitempty" json:"port,omitempty" jsonschema:"title=Port,minimum=1,maximum=65535,default=8080"`
	CORS CORSConfig `yaml:"cors,omitempty" json:"cors,omitempty" jsonschema:"title=CORS"`

	RateLimit RateLimitConfig `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty" jsonschema:"title=Rate Limit,description=Per-client limits on /v1/ask"`

	ReadTimeout     time.Duration `yaml:"read_timeout,omitempty" json:"read_timeout,omitempty" jsonschema:"type=string,default=30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty" json:"shutdown_timeout,omitempty" jsonschema:"type=string,default=10s"`
}

// CORSConfig mirrors the options accepted by rs/cors.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" json:"allowed_origins,omitempty"`
	AllowedMethods []string `yaml:"allowed_methods,omitempty" json:"allowed_methods,omitempty"`
	AllowedHeaders []string `yaml:"allowed_headers,omitempty" json:"allowed_headers,omitempty"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	c.RateLimit.SetDefaults()
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return c.RateLimit.Validate()
}

// Address returns host:port.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }
