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

package runtime

import (
	"fmt"

	"github.com/kadirpekel/dealfinder/pkg/config"
	"github.com/kadirpekel/dealfinder/pkg/model"
	"github.com/kadirpekel/dealfinder/pkg/model/gemini"
	"github.com/kadirpekel/dealfinder/pkg/model/ollama"
	"github.com/kadirpekel/dealfinder/pkg/model/openai"
	"github.com/kadirpekel/dealfinder/pkg/prompt"
	"github.com/kadirpekel/dealfinder/pkg/tool/graphtool"
	"github.com/kadirpekel/dealfinder/pkg/tool/searchtool"
)

// LLMFactory creates the language model from config.
type LLMFactory func(cfg *config.LLMConfig) (model.LLM, error)

// DefaultLLMFactory creates LLM instances based on provider type.
func DefaultLLMFactory(cfg *config.LLMConfig) (model.LLM, error) {
	switch cfg.Provider {
	case config.LLMProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
			MaxRetries:  cfg.MaxRetries,
		})

	case config.LLMProviderGemini:
		return gemini.New(gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})

	case config.LLMProviderOllama:
		ocfg := ollama.Config{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			MaxRetries:  cfg.MaxRetries,
		}
		if cfg.MaxTokens > 0 {
			numPredict := cfg.MaxTokens
			ocfg.NumPredict = &numPredict
		}
		return ollama.New(ocfg)

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// DefaultInstruction renders the persona for cfg unless the agent section
// overrides it.
func DefaultInstruction(cfg *config.Config, graphLanguage string) string {
	if cfg.Agent.Instruction != "" {
		return cfg.Agent.Instruction
	}
	return prompt.Instruction(prompt.Persona{
		UserID:          cfg.Agent.UserID,
		MembershipLevel: cfg.Agent.MembershipLevel,
		GraphLanguage:   graphLanguage,
		GraphTool:       graphtool.DefaultName,
		SearchTool:      searchtool.DefaultName,
	})
}
