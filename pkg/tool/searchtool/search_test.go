package searchtool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/dealfinder/pkg/embedder"
	"github.com/kadirpekel/dealfinder/pkg/vector"
)

var dishes = []struct {
	id, restaurant, name, desc string
	price, rating              float64
}{
	{"D1", "R1", "Red Curry Delight", "A fragrant, creamy, and spicy coconut milk red curry with bamboo shoots and basil. Vegetarian option available.", 15.00, 4.8},
	{"D2", "R1", "Pad See Ew Noodles", "Wide rice noodles stir-fried with Chinese broccoli, egg, and a rich, sweet soy sauce. Classic comfort food.", 14.50, 4.5},
	{"D3", "R2", "Pepperoni Classic", "Traditional hand-tossed pepperoni pizza with slow-cooked tomato sauce and fresh mozzarella.", 20.00, 4.1},
	{"D4", "R3", "Avocado Black Bean Burger", "A dense, savory patty made from black beans and quinoa, topped with fresh avocado and chipotle mayo.", 16.50, 4.9},
}

func newIndexedTool(t *testing.T) *SearchTool {
	t.Helper()
	ctx := context.Background()
	emb := embedder.NewHash(256)
	store, err := vector.NewChromemProvider(vector.ChromemConfig{})
	require.NoError(t, err)

	for i, d := range dishes {
		vec, err := emb.Embed(ctx, d.desc)
		require.NoError(t, err)
		require.NoError(t, store.Upsert(ctx, "eats_dishes", vector.Document{
			ID:      d.id,
			Content: d.desc,
			Vector:  vec,
			Metadata: map[string]any{
				MetaDishID: d.id, MetaRestaurantID: d.restaurant, MetaName: d.name,
				MetaPrice: d.price, MetaRating: d.rating, MetaSeq: i,
			},
		}))
	}

	return New(Config{Embedder: emb, Provider: store, Collection: "eats_dishes"})
}

func TestSearch_ComfortNoodles(t *testing.T) {
	st := newIndexedTool(t)

	matches, err := st.Search(context.Background(), "rich, sweet comfort food noodles", 3)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.LessOrEqual(t, len(matches), 3)

	top := matches[0]
	assert.Equal(t, "D2", top.DishID)
	assert.Equal(t, "R1", top.RestaurantID)
	assert.Equal(t, "Pad See Ew Noodles", top.Name)
	assert.Equal(t, 14.5, top.Price)
	assert.Equal(t, 4.5, top.Rating)

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestSearch_CreamyCurry(t *testing.T) {
	st := newIndexedTool(t)

	matches, err := st.Search(context.Background(), "creamy spicy curry", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "D1", matches[0].DishID)
}

func TestCall_RendersJSONWithoutScore(t *testing.T) {
	st := newIndexedTool(t)

	out, err := st.Call(context.Background(), `"rich, sweet comfort food noodles"`)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.NotEmpty(t, decoded)
	assert.LessOrEqual(t, len(decoded), DefaultTopK)
	assert.Equal(t, "D2", decoded[0]["dish_id"])
	assert.NotContains(t, decoded[0], "score")
	assert.NotContains(t, decoded[0], "vector")
}

func TestCall_UnknownWordsYieldEmptyList(t *testing.T) {
	st := newIndexedTool(t)

	out, err := st.Call(context.Background(), "the of and")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestCall_MissingCollection(t *testing.T) {
	store, err := vector.NewChromemProvider(vector.ChromemConfig{})
	require.NoError(t, err)
	st := New(Config{Embedder: embedder.NewHash(32), Provider: store, Collection: "eats_dishes"})

	_, err = st.Search(context.Background(), "curry", 3)
	assert.True(t, errors.Is(err, vector.ErrCollectionNotFound))

	out, err := st.Call(context.Background(), "curry")
	require.NoError(t, err)
	assert.Contains(t, out, "Vector Store Load Error")
	assert.Contains(t, out, "Ensure the collection is populated.")
}

type fixedProvider struct {
	vector.Provider
	results []vector.Result
	gotK    int
}

func (p *fixedProvider) Search(ctx context.Context, collection string, vec []float32, topK int) ([]vector.Result, error) {
	p.gotK = topK
	return p.results, nil
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	provider := &fixedProvider{results: []vector.Result{
		{ID: "D3", Score: 0.5, Metadata: map[string]any{MetaSeq: "2"}},
		{ID: "D4", Score: 0.9, Metadata: map[string]any{MetaSeq: "3"}},
		{ID: "D1", Score: 0.5, Metadata: map[string]any{MetaSeq: "0"}},
		{ID: "D2", Score: 0.5, Metadata: map[string]any{MetaSeq: int64(1)}},
	}}
	st := New(Config{Embedder: embedder.NewHash(8), Provider: provider, Collection: "c"})

	matches, err := st.Search(context.Background(), "anything", 3)
	require.NoError(t, err)

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.DishID)
	}
	assert.Equal(t, []string{"D4", "D1", "D2"}, ids)
	assert.Equal(t, 6, provider.gotK)
}

func TestSearch_DefaultTopK(t *testing.T) {
	st := newIndexedTool(t)

	matches, err := st.Search(context.Background(), "fresh sauce pizza burger curry noodles", 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), DefaultTopK)
}
