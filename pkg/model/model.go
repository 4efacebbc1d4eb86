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

// Package model defines the language model boundary.
//
// The reasoning loop only ever sends a fully rendered prompt and reads back
// text, so every provider is reduced to text completion with optional stop
// sequences. Swapping providers never changes how output is parsed.
package model

import (
	"context"
	"strings"
)

type LLM interface {
	// Name returns the model identifier.
	Name() string

	// Provider returns the provider type.
	Provider() Provider

	// Generate completes the prompt in req. Providers stop generating at the
	// first stop sequence and do not include it in the returned text.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Close releases any resources held by the LLM.
	Close() error
}

type Provider string

const (
	ProviderOllama  Provider = "ollama"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
	ProviderUnknown Provider = "unknown"
)

type Request struct {
	// SystemInstruction is sent separately by chat-style providers and
	// prepended to Prompt by completion-style providers.
	SystemInstruction string

	// Prompt is the full rendered context.
	Prompt string

	Config *GenerateConfig
}

type GenerateConfig struct {
	// Temperature controls randomness (0-2).
	Temperature *float64

	// MaxTokens limits the response length.
	MaxTokens *int

	// StopSequences terminates generation.
	StopSequences []string
}

type FinishReason string

const (
	FinishReasonStop    FinishReason = "stop"
	FinishReasonLength  FinishReason = "length"
	FinishReasonContent FinishReason = "content_filter"
)

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Response struct {
	Text         string
	FinishReason FinishReason
	Usage        *Usage
}

// TruncateAtStop cuts text at the earliest stop sequence. Providers that do
// not honour stop sequences server-side use it to get the same result.
func TruncateAtStop(text string, stops []string) string {
	cut := len(text)
	for _, stop := range stops {
		if stop == "" {
			continue
		}
		if i := strings.Index(text, stop); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}
