package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/dealfinder/pkg/model"
)

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "llama3", c.Name())
	assert.Equal(t, defaultBaseURL, c.baseURL)
	assert.Equal(t, model.ProviderOllama, c.Provider())
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(generateResponse{
			Model:           "llama3",
			Response:        "Thought: look it up\nAction: knowledge_graph_search\nAction Input: MATCH (n) RETURN n\nObservation: made up",
			Done:            true,
			PromptEvalCount: 120,
			EvalCount:       24,
		})
	}))
	defer server.Close()

	temp := 0.0
	c, err := New(Config{BaseURL: server.URL + "/", Temperature: &temp})
	require.NoError(t, err)

	maxTokens := 256
	resp, err := c.Generate(context.Background(), &model.Request{
		Prompt: "Question: promo?",
		Config: &model.GenerateConfig{StopSequences: []string{"\nObservation:"}, MaxTokens: &maxTokens},
	})
	require.NoError(t, err)

	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, "Question: promo?", got.Prompt)
	assert.Equal(t, []any{"\nObservation:"}, got.Options["stop"])
	assert.EqualValues(t, 256, got.Options["num_predict"])
	assert.EqualValues(t, 0, got.Options["temperature"])

	assert.Equal(t, "Thought: look it up\nAction: knowledge_graph_search\nAction Input: MATCH (n) RETURN n", resp.Text)
	assert.Equal(t, 144, resp.Usage.TotalTokens)
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model 'llama3' not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), &model.Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGenerate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := New(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), &model.Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama request failed")
}
