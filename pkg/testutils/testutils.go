// Package testutils provides test doubles shared across dealfinder packages.
package testutils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kadirpekel/dealfinder/pkg/config"
	"github.com/kadirpekel/dealfinder/pkg/model"
)

// TestConfig returns a defaulted configuration that needs no external
// services: hash embeddings, chromem and SQLite, both persisted under dir.
func TestConfig(dir string) *config.Config {
	cfg := &config.Config{
		LLM: config.LLMConfig{
			Provider: config.LLMProviderOllama,
			Model:    "llama3",
		},
		Embedder: config.EmbedderConfig{
			Provider:  config.EmbedderProviderHash,
			Dimension: 256,
		},
		Graph: config.GraphConfig{
			Backend: config.GraphBackendSQL,
			SQL: config.DatabaseConfig{
				Driver:   "sqlite",
				Database: dir + "/graph.db",
			},
		},
		Vector: config.VectorConfig{
			Type:        config.VectorTypeChromem,
			PersistPath: dir + "/vectors",
		},
	}
	cfg.SetDefaults()
	return cfg
}

// TestContext returns a context with timeout for testing
func TestContext() context.Context {
	return TestContextWithTimeout(5 * time.Second)
}

// TestContextWithTimeout returns a context with custom timeout for testing
func TestContextWithTimeout(timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	// The context is used until the test ends; the timer releases it.
	_ = cancel
	return ctx
}

// ScriptedLLM replays canned completions in order. Once the script is
// exhausted the last entry repeats.
type ScriptedLLM struct {
	mu       sync.Mutex
	script   []string
	prompts  []string
	requests []*model.Request

	// Err, when set, is returned instead of a completion.
	Err error

	// Delay blocks each call until it elapses or the context ends.
	Delay time.Duration
}

// NewScriptedLLM creates a fake model answering with script.
func NewScriptedLLM(script ...string) *ScriptedLLM {
	return &ScriptedLLM{script: script}
}

func (m *ScriptedLLM) Name() string { return "scripted" }

func (m *ScriptedLLM) Provider() model.Provider { return model.ProviderUnknown }

func (m *ScriptedLLM) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, req.Prompt)
	m.requests = append(m.requests, req)

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.script) == 0 {
		return nil, fmt.Errorf("scripted model has no responses")
	}

	i := len(m.prompts) - 1
	if i >= len(m.script) {
		i = len(m.script) - 1
	}

	var stops []string
	if req.Config != nil {
		stops = req.Config.StopSequences
	}
	return &model.Response{
		Text:         model.TruncateAtStop(m.script[i], stops),
		FinishReason: model.FinishReasonStop,
	}, nil
}

func (m *ScriptedLLM) Close() error { return nil }

// Calls returns how many times Generate ran.
func (m *ScriptedLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns every prompt received, oldest first.
func (m *ScriptedLLM) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// LastRequest returns the most recent request, or nil.
func (m *ScriptedLLM) LastRequest() *model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

var _ model.LLM = (*ScriptedLLM)(nil)

// StubTool is a tool returning a fixed observation and recording inputs.
type StubTool struct {
	ToolName    string
	Desc        string
	Observation string
	Err         error

	mu     sync.Mutex
	inputs []string
}

func (s *StubTool) Name() string        { return s.ToolName }
func (s *StubTool) Description() string { return s.Desc }

func (s *StubTool) Call(ctx context.Context, input string) (string, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, input)
	s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	return s.Observation, nil
}

// Inputs returns the inputs received so far.
func (s *StubTool) Inputs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.inputs...)
}
