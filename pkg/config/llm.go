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
	"fmt"
	"os"
	"time"
)

// LLMProvider identifies the LLM provider type.
type LLMProvider string

const (
	LLMProviderOllama LLMProvider = "ollama"
	LLMProviderOpenAI LLMProvider = "openai"
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig configures the language model.
type LLMConfig struct {
	Provider LLMProvider `yaml:"provider,omitempty" json:"provider,omitempty" jsonschema:"title=Provider,enum=ollama,enum=openai,enum=gemini,default=ollama"`

	Model string `yaml:"model,omitempty" json:"model,omitempty" jsonschema:"title=Model,description=Model identifier"`

	// APIKey for authentication. Supports ${VAR} expansion.
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"title=API Key,description=API key (use ${ENV_VAR})"`

	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty" jsonschema:"title=Base URL"`

	// Temperature for generation. The reasoning loop works best close to 0.
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty" jsonschema:"title=Temperature,minimum=0,maximum=2,default=0"`

	MaxTokens int `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty" jsonschema:"title=Max Tokens,minimum=1,default=1024"`

	Timeout    time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"title=Timeout,type=string,default=120s"`
	MaxRetries int           `yaml:"max_retries,omitempty" json:"max_retries,omitempty" jsonschema:"title=Max Retries,minimum=0,default=3"`
}

func (c *LLMConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = LLMProviderOllama
	}

	if c.Model == "" {
		switch c.Provider {
		case LLMProviderOllama:
			c.Model = "llama3"
		case LLMProviderOpenAI:
			c.Model = "gpt-4o-mini"
		case LLMProviderGemini:
			c.Model = "gemini-2.0-flash"
		}
	}

	if c.APIKey == "" {
		c.APIKey = apiKeyFromEnv(c.Provider)
	}

	if c.Temperature == nil {
		c.Temperature = Float64Ptr(0)
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}

func (c *LLMConfig) Validate() error {
	switch c.Provider {
	case LLMProviderOllama, LLMProviderOpenAI, LLMProviderGemini:
	default:
		return fmt.Errorf("invalid provider %q (valid: ollama, openai, gemini)", c.Provider)
	}

	if c.Provider != LLMProviderOllama && c.APIKey == "" {
		return fmt.Errorf("api_key is required for provider %q", c.Provider)
	}

	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	return nil
}

// EmbedderProvider identifies the embedding backend.
type EmbedderProvider string

const (
	EmbedderProviderOllama EmbedderProvider = "ollama"
	EmbedderProviderOpenAI EmbedderProvider = "openai"
	// EmbedderProviderHash is an offline feature-hashing embedder. It needs
	// no model server and is what tests and demos run against.
	EmbedderProviderHash EmbedderProvider = "hash"
)

// EmbedderConfig configures the embedding model used to index and search dishes.
type EmbedderConfig struct {
	Provider  EmbedderProvider `yaml:"provider,omitempty" json:"provider,omitempty" jsonschema:"title=Provider,enum=ollama,enum=openai,enum=hash,default=ollama"`
	Model     string           `yaml:"model,omitempty" json:"model,omitempty" jsonschema:"title=Model"`
	APIKey    string           `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"title=API Key"`
	BaseURL   string           `yaml:"base_url,omitempty" json:"base_url,omitempty" jsonschema:"title=Base URL"`
	Dimension int              `yaml:"dimension,omitempty" json:"dimension,omitempty" jsonschema:"title=Dimension,minimum=1"`
	Timeout   time.Duration    `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"type=string,default=30s"`
}

func (c *EmbedderConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = EmbedderProviderOllama
	}
	if c.Model == "" {
		switch c.Provider {
		case EmbedderProviderOllama:
			c.Model = "all-minilm"
		case EmbedderProviderOpenAI:
			c.Model = "text-embedding-3-small"
		case EmbedderProviderHash:
			c.Model = "hash"
		}
	}
	if c.Dimension == 0 {
		switch c.Provider {
		case EmbedderProviderOllama:
			c.Dimension = 384
		case EmbedderProviderOpenAI:
			c.Dimension = 1536
		case EmbedderProviderHash:
			c.Dimension = 256
		}
	}
	if c.APIKey == "" && c.Provider == EmbedderProviderOpenAI {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

func (c *EmbedderConfig) Validate() error {
	switch c.Provider {
	case EmbedderProviderOllama, EmbedderProviderHash:
	case EmbedderProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("api_key is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("invalid provider %q (valid: ollama, openai, hash)", c.Provider)
	}
	if c.Dimension < 1 {
		return fmt.Errorf("dimension must be positive")
	}
	return nil
}

func apiKeyFromEnv(provider LLMProvider) string {
	switch provider {
	case LLMProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case LLMProviderGemini:
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return ""
	}
}
