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

// Package ollama provides an Ollama LLM implementation over the
// non-streaming /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kadirpekel/dealfinder/pkg/httpclient"
	"github.com/kadirpekel/dealfinder/pkg/model"
)

const (
	defaultBaseURL   = "http://localhost:11434"
	defaultModel     = "llama3"
	defaultTimeout   = 300 * time.Second // first request loads the model
	defaultKeepAlive = "5m"
)

// Config configures the Ollama client.
type Config struct {
	// BaseURL is the Ollama server URL (default: http://localhost:11434)
	BaseURL string

	// Model is the model name (default: llama3)
	Model string

	Temperature *float64

	// NumPredict limits the number of tokens to predict
	NumPredict *int

	// NumCtx sets the context window size
	NumCtx *int

	// Seed for reproducible outputs
	Seed *int

	// KeepAlive controls how long the model stays loaded (default: "5m")
	KeepAlive string

	Timeout    time.Duration
	MaxRetries int
}

// Client is an Ollama LLM implementation.
type Client struct {
	httpClient  *httpclient.Client
	baseURL     string
	modelName   string
	temperature *float64
	numPredict  *int
	numCtx      *int
	seed        *int
	keepAlive   string
}

// New creates a new Ollama client.
func New(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	keepAlive := cfg.KeepAlive
	if keepAlive == "" {
		keepAlive = defaultKeepAlive
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	hc := httpclient.New(
		httpclient.WithHTTPClient(&http.Client{Timeout: timeout}),
		httpclient.WithMaxRetries(maxRetries),
		httpclient.WithBaseDelay(2*time.Second),
	)

	return &Client{
		httpClient:  hc,
		baseURL:     baseURL,
		modelName:   modelName,
		temperature: cfg.Temperature,
		numPredict:  cfg.NumPredict,
		numCtx:      cfg.NumCtx,
		seed:        cfg.Seed,
		keepAlive:   keepAlive,
	}, nil
}

func (c *Client) Name() string {
	return c.modelName
}

func (c *Client) Provider() model.Provider {
	return model.ProviderOllama
}

type generateRequest struct {
	Model     string         `json:"model"`
	Prompt    string         `json:"prompt"`
	System    string         `json:"system,omitempty"`
	Stream    bool           `json:"stream"`
	Raw       bool           `json:"raw,omitempty"`
	KeepAlive string         `json:"keep_alive,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error,omitempty"`
}

// Generate calls /api/generate with streaming disabled.
func (c *Client) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	body := generateRequest{
		Model:     c.modelName,
		Prompt:    req.Prompt,
		System:    req.SystemInstruction,
		Stream:    false,
		KeepAlive: c.keepAlive,
		Options:   c.options(req.Config),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", out.Error)
	}

	var stops []string
	if req.Config != nil {
		stops = req.Config.StopSequences
	}

	finish := model.FinishReasonStop
	if out.DoneReason == "length" {
		finish = model.FinishReasonLength
	}

	return &model.Response{
		Text:         model.TruncateAtStop(out.Response, stops),
		FinishReason: finish,
		Usage: &model.Usage{
			PromptTokens:     out.PromptEvalCount,
			CompletionTokens: out.EvalCount,
			TotalTokens:      out.PromptEvalCount + out.EvalCount,
		},
	}, nil
}

// options merges client defaults with per-request overrides.
func (c *Client) options(cfg *model.GenerateConfig) map[string]any {
	opts := map[string]any{}
	if c.temperature != nil {
		opts["temperature"] = *c.temperature
	}
	if c.numPredict != nil {
		opts["num_predict"] = *c.numPredict
	}
	if c.numCtx != nil {
		opts["num_ctx"] = *c.numCtx
	}
	if c.seed != nil {
		opts["seed"] = *c.seed
	}
	if cfg != nil {
		if cfg.Temperature != nil {
			opts["temperature"] = *cfg.Temperature
		}
		if cfg.MaxTokens != nil {
			opts["num_predict"] = *cfg.MaxTokens
		}
		if len(cfg.StopSequences) > 0 {
			opts["stop"] = cfg.StopSequences
		}
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

func (c *Client) Close() error {
	return nil
}

var _ model.LLM = (*Client)(nil)
