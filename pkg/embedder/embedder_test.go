package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/dealfinder/pkg/config"
)

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"rich", "sweet", "comfort", "food", "noodle"},
		Tokenize("I want something rich, sweet comfort food with noodles"))
	assert.Equal(t, []string{"berry", "glass"}, Tokenize("The berries in a glass"))
	assert.Empty(t, Tokenize("   "))
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHash(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "spicy coconut curry")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "spicy coconut curry")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, dot(a, a), 1e-5)
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	vec, err := NewHash(0).Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vec, defaultHashDimension)
	assert.Zero(t, dot(vec, vec))
}

func TestHashEmbedder_RanksOverlappingDescription(t *testing.T) {
	e := NewHash(256)
	ctx := context.Background()

	docs := []string{
		"A fragrant, creamy, and spicy coconut milk red curry with bamboo shoots and basil. Vegetarian option available.",
		"Wide rice noodles stir-fried with Chinese broccoli, egg, and a rich, sweet soy sauce. Classic comfort food.",
		"Traditional hand-tossed pepperoni pizza with slow-cooked tomato sauce and fresh mozzarella.",
	}
	vecs, err := e.EmbedBatch(ctx, docs)
	require.NoError(t, err)

	query, err := e.Embed(ctx, "rich, sweet comfort food noodles")
	require.NoError(t, err)

	best, bestScore := -1, float32(-2)
	for i, v := range vecs {
		if s := dot(query, v); s > bestScore {
			best, bestScore = i, s
		}
	}
	assert.Equal(t, 1, best)
}

func TestOllamaEmbedder(t *testing.T) {
	var got ollamaEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}},
		})
	}))
	defer srv.Close()

	e := NewOllama(OllamaConfig{BaseURL: srv.URL + "/", Model: "all-minilm"})
	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, got.Input)
	assert.Equal(t, "all-minilm", got.Model)
	assert.Equal(t, []float32{0.4, 0.5, 0.6}, vecs[1])
	assert.Equal(t, 3, e.Dimension())
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[]}`))
	}))
	defer srv.Close()

	_, err := NewOllama(OllamaConfig{BaseURL: srv.URL}).Embed(context.Background(), "x")
	assert.Error(t, err)
}

func TestOpenAIEmbedder_ReordersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openAIEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 8, req.Dimensions)

		_, _ = w.Write([]byte(`{"data":[
			{"index":1,"embedding":[2,2]},
			{"index":0,"embedding":[1,1]}
		]}`))
	}))
	defer srv.Close()

	e, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Dimension: 8})
	require.NoError(t, err)

	vecs, err := e.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}, {2, 2}}, vecs)
}

func TestOpenAIEmbedder_RequiresKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	e, err := New(config.EmbedderConfig{Provider: config.EmbedderProviderHash, Dimension: 32})
	require.NoError(t, err)
	assert.Equal(t, 32, e.Dimension())
	assert.Equal(t, "hash", e.Model())

	_, err = New(config.EmbedderConfig{Provider: "bogus"})
	assert.Error(t, err)
}
