package seed

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/dealfinder/pkg/config"
	"github.com/kadirpekel/dealfinder/pkg/embedder"
	"github.com/kadirpekel/dealfinder/pkg/graph"
	"github.com/kadirpekel/dealfinder/pkg/tool/searchtool"
	"github.com/kadirpekel/dealfinder/pkg/vector"
)

const collection = "eats_dishes"

func newLoader(t *testing.T) *Loader {
	t.Helper()

	store, err := graph.OpenSQLStore(context.Background(), config.DatabaseConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "deals.db"),
	}, 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	provider, err := vector.NewChromemProvider(vector.ChromemConfig{})
	require.NoError(t, err)

	return &Loader{
		Store:      store,
		Provider:   provider,
		Embedder:   embedder.NewHash(256),
		Collection: collection,
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	assert.Len(t, d.Restaurants, 3)
	assert.Len(t, d.Dishes, 4)
	assert.Len(t, d.Promos, 2)
	assert.Equal(t, []string{"Gold", "Silver"}, d.MembershipLevels())
}

func TestLoader_LoadSQL(t *testing.T) {
	l := newLoader(t)
	ctx := context.Background()

	report, err := l.Load(ctx, Default())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Dishes)
	assert.Positive(t, report.Statements)

	records, err := l.Store.Run(ctx, `SELECT p.code AS code, p.details AS details
FROM promos p
JOIN restaurants r ON r.id = p.restaurant_id
WHERE r.name = 'Thai Basil House' AND p.required_level = 'Gold'`)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "GOLD20", records[0]["code"])
	assert.Equal(t, "20% off all Thai dishes.", records[0]["details"])

	records, err = l.Store.Run(ctx, "SELECT level FROM user_memberships WHERE user_id = 'U1'")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Gold", records[0]["level"])

	count, err := l.Provider.Count(ctx, collection)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestLoader_ReloadIsClean(t *testing.T) {
	l := newLoader(t)
	ctx := context.Background()

	_, err := l.Load(ctx, Default())
	require.NoError(t, err)
	_, err = l.Load(ctx, Default())
	require.NoError(t, err)

	records, err := l.Store.Run(ctx, "SELECT id FROM restaurants")
	require.NoError(t, err)
	assert.Len(t, records, 3)

	count, err := l.Provider.Count(ctx, collection)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestLoader_IndexedDishesAreSearchable(t *testing.T) {
	l := newLoader(t)
	ctx := context.Background()
	_, err := l.Load(ctx, Default())
	require.NoError(t, err)

	search := searchtool.New(searchtool.Config{
		Embedder:   l.Embedder,
		Provider:   l.Provider,
		Collection: collection,
	})

	matches, err := search.Search(ctx, "rich, sweet comfort food noodles", 3)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "D2", matches[0].DishID)
	assert.Equal(t, "R1", matches[0].RestaurantID)
	assert.Equal(t, 14.5, matches[0].Price)
}

func TestLoader_SkipsNilSides(t *testing.T) {
	l := newLoader(t)
	l.Provider = nil

	report, err := l.Load(context.Background(), Default())
	require.NoError(t, err)
	assert.Zero(t, report.Dishes)
}

func TestLoader_RequiresEmbedder(t *testing.T) {
	l := newLoader(t)
	l.Embedder = nil

	_, err := l.Load(context.Background(), Default())
	assert.Error(t, err)
}

func TestCypherStatements(t *testing.T) {
	stmts := CypherStatements(Default())

	assert.Equal(t, "MATCH (n) DETACH DELETE n", stmts[0].Query)

	var promos []map[string]any
	for _, s := range stmts {
		assert.NotContains(t, s.Query, "GOLD20", "values must be parameters")
		if strings.Contains(s.Query, "REQUIRES_LEVEL") {
			promos = append(promos, s.Params)
		}
	}
	require.Len(t, promos, 2)
	assert.Equal(t, "GOLD20", promos[0]["code"])
	assert.Equal(t, "Gold", promos[0]["level"])
	assert.Equal(t, "FREEDEL", promos[1]["code"])
	assert.Equal(t, "Silver", promos[1]["level"])
}

func TestSchemaHint(t *testing.T) {
	assert.Contains(t, SchemaHint(graph.LanguageCypher), "[:REQUIRES_LEVEL]")
	assert.Contains(t, SchemaHint(graph.LanguageSQL), "promos(code")
	assert.IsType(t, []graph.Statement{}, Statements(graph.LanguageSQL, Default()))
}
