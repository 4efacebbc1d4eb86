package openai

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

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Thought: done\nFinal Answer: GOLD20"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 50, "completion_tokens": 8, "total_tokens": 58}
		}`))
	}))
	defer server.Close()

	c, err := New(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	resp, err := c.Generate(context.Background(), &model.Request{
		SystemInstruction: "be brief",
		Prompt:            "Question: promo?",
		Config: &model.GenerateConfig{
			StopSequences: []string{"\nObservation:", "<s1>", "<s2>", "<s3>", "<s4>"},
		},
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Len(t, got.Stop, maxStopSequences)

	assert.Equal(t, "Thought: done\nFinal Answer: GOLD20", resp.Text)
	assert.Equal(t, model.FinishReasonStop, resp.FinishReason)
	assert.Equal(t, 58, resp.Usage.TotalTokens)
}

func TestGenerate_TruncatesAtStop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Action: semantic_dish_search\nAction Input: noodles\nObservation: made up"}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	c, err := New(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := c.Generate(context.Background(), &model.Request{
		Prompt: "Question: noodles?",
		Config: &model.GenerateConfig{StopSequences: []string{"\nObservation:"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Action: semantic_dish_search\nAction Input: noodles", resp.Text)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	c, err := New(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), &model.Request{Prompt: "x"})
	assert.ErrorContains(t, err, "empty response")
}
