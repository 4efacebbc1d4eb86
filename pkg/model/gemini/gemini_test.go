package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/kadirpekel/dealfinder/pkg/model"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestParseResponse(t *testing.T) {
	resp, err := parseResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "hidden reasoning", Thought: true},
				{Text: "Thought: ok\nFinal Answer: D2"},
				{Text: "\nObservation: nope"},
			}},
			FinishReason: genai.FinishReasonMaxTokens,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 4,
			TotalTokenCount:      14,
		},
	}, []string{"\nObservation:"})
	require.NoError(t, err)

	assert.Equal(t, "Thought: ok\nFinal Answer: D2", resp.Text)
	assert.Equal(t, model.FinishReasonLength, resp.FinishReason)
	assert.Equal(t, 14, resp.Usage.TotalTokens)
}

func TestParseResponse_Empty(t *testing.T) {
	_, err := parseResponse(&genai.GenerateContentResponse{}, nil)
	assert.Error(t, err)
}
