package graph

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/dealfinder/pkg/config"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", Database: filepath.Join(t.TempDir(), "graph.db")}
	store, err := OpenSQLStore(context.Background(), cfg, 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	err = store.Exec(context.Background(), []Statement{
		{Query: "CREATE TABLE restaurants (id TEXT PRIMARY KEY, name TEXT, rating REAL)"},
		{Query: "INSERT INTO restaurants VALUES (?, ?, ?)", Args: []any{"R1", "Thai Basil House", 4.7}},
		{Query: "INSERT INTO restaurants VALUES (?, ?, ?)", Args: []any{"R2", "Pizza Planet", 4.2}},
	})
	require.NoError(t, err)
	return store
}

func TestSQLStore_Run(t *testing.T) {
	store := openTestStore(t)

	records, err := store.Run(context.Background(), "SELECT id, name, rating FROM restaurants ORDER BY id")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{"id": "R1", "name": "Thai Basil House", "rating": 4.7}, records[0])

	assert.Equal(t, LanguageSQL, store.Language())
	assert.Equal(t, "SQLite", store.Backend())
}

func TestSQLStore_EmptyResult(t *testing.T) {
	store := openTestStore(t)

	records, err := store.Run(context.Background(), "SELECT * FROM restaurants WHERE id = 'R9'")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSQLStore_RunDoesNotPersistWrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, _ = store.Run(ctx, "DELETE FROM restaurants")

	records, err := store.Run(ctx, "SELECT id FROM restaurants ORDER BY id")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSQLStore_MalformedQuery(t *testing.T) {
	store := openTestStore(t)

	tests := []string{
		"SELEC * FROM restaurants",
		"SELECT * FROM promotions",
	}
	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			_, err := store.Run(context.Background(), q)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedQuery))
			assert.False(t, errors.Is(err, ErrConnection))

			var qe *QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, "SQLite", qe.Backend)
		})
	}
}

func TestSQLStore_ClosedIsConnectionError(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.Run(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, Describe(err), "connection failed")
}

func TestSQLStore_ExecRollsBack(t *testing.T) {
	store := openTestStore(t)

	err := store.Exec(context.Background(), []Statement{
		{Query: "INSERT INTO restaurants VALUES (?, ?, ?)", Args: []any{"R3", "Green Garden Grill", 4.9}},
		{Query: "INSERT INTO nowhere VALUES (1)"},
	})
	require.Error(t, err)

	records, err := store.Run(context.Background(), "SELECT id FROM restaurants WHERE id = 'R3'")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "INSERT INTO t VALUES ($1, $2)", Rebind("postgres", "INSERT INTO t VALUES (?, ?)"))
	assert.Equal(t, "INSERT INTO t VALUES (?, ?)", Rebind("sqlite", "INSERT INTO t VALUES (?, ?)"))
}

func TestClassifyNeo4jError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"syntax", &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "Invalid input"}, ErrMalformedQuery},
		{"auth", &neo4j.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized", Msg: "bad credentials"}, ErrConnection},
		{"connectivity", &neo4j.ConnectivityError{Inner: errors.New("dial tcp: refused")}, ErrConnection},
		{"deadline", context.DeadlineExceeded, ErrConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyNeo4jError(tt.err), tt.want)
		})
	}
}

func TestFlattenNeo4jValue(t *testing.T) {
	node := neo4j.Node{Labels: []string{"Promotion"}, Props: map[string]any{"code": "GOLD20"}}
	rel := neo4j.Relationship{Type: "OFFERS", Props: map[string]any{}}

	assert.Equal(t, map[string]any{"code": "GOLD20"}, flattenNeo4jValue(node))
	assert.Equal(t, map[string]any{}, flattenNeo4jValue(rel))
	assert.Equal(t, []any{map[string]any{"code": "GOLD20"}, "x"}, flattenNeo4jValue([]any{node, "x"}))
	assert.Equal(t, int64(3), flattenNeo4jValue(int64(3)))
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.GraphConfig{Backend: "gremlin"})
	assert.Error(t, err)
}
