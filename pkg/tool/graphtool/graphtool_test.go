package graphtool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/dealfinder/pkg/graph"
)

type fakeStore struct {
	records []graph.Record
	err     error
	got     []string
}

func (f *fakeStore) Language() graph.Language { return graph.LanguageCypher }
func (f *fakeStore) Backend() string          { return "Neo4j" }

func (f *fakeStore) Run(ctx context.Context, query string) ([]graph.Record, error) {
	f.got = append(f.got, query)
	return f.records, f.err
}

func (f *fakeStore) Exec(ctx context.Context, stmts []graph.Statement) error { return nil }
func (f *fakeStore) Close() error                                            { return nil }

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  MATCH (n) RETURN n  ", "MATCH (n) RETURN n"},
		{"`MATCH (n) RETURN n`", "MATCH (n) RETURN n"},
		{"```cypher\nMATCH (n) RETURN n\n```", "MATCH (n) RETURN n"},
		{"```\nSELECT 1\n```", "SELECT 1"},
		{"```SQL\nSELECT 1\n```", "SELECT 1"},
		{"Action Input: MATCH (p:Promotion) RETURN p.code", "MATCH (p:Promotion) RETURN p.code"},
		{`"MATCH (n) RETURN n"`, "MATCH (n) RETURN n"},
		{`SELECT code FROM promos WHERE restaurant_id = "R1"`, `SELECT code FROM promos WHERE restaurant_id = "R1"`},
		{`"R1" = "R1"`, `"R1" = "R1"`},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestGraphTool_Records(t *testing.T) {
	store := &fakeStore{records: []graph.Record{{"code": "GOLD20"}}}
	gt := New(Config{Store: store})

	out, err := gt.Call(context.Background(), "```cypher\nMATCH (p:Promotion) RETURN p.code AS code\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"code":"GOLD20"}]`, out)
	assert.Equal(t, []string{"MATCH (p:Promotion) RETURN p.code AS code"}, store.got)
}

func TestGraphTool_Empty(t *testing.T) {
	gt := New(Config{Store: &fakeStore{}})

	res := gt.Query(context.Background(), "MATCH (n:Nothing) RETURN n")
	assert.True(t, res.Empty)
	assert.NoError(t, res.Err)

	out, err := gt.Call(context.Background(), "MATCH (n:Nothing) RETURN n")
	require.NoError(t, err)
	assert.Equal(t, "No results found for the Cypher query. Check your query syntax or node/relationship names.", out)
}

func TestGraphTool_Error(t *testing.T) {
	cause := &graph.QueryError{Backend: "Neo4j", Kind: graph.ErrMalformedQuery, Err: errors.New("Invalid input 'MATC'")}
	gt := New(Config{Store: &fakeStore{err: cause}})

	res := gt.Query(context.Background(), "MATC (n) RETURN n")
	assert.ErrorIs(t, res.Err, graph.ErrMalformedQuery)
	assert.False(t, res.Empty)

	out, err := gt.Call(context.Background(), "MATC (n) RETURN n")
	require.NoError(t, err)
	assert.Equal(t, "Neo4j Query Error: Invalid input 'MATC'. Please try simplifying the query.", out)
}

func TestGraphTool_EmptyInput(t *testing.T) {
	store := &fakeStore{}
	gt := New(Config{Store: store})

	res := gt.Query(context.Background(), "``")
	assert.ErrorIs(t, res.Err, graph.ErrMalformedQuery)
	assert.Empty(t, store.got)
}

func TestGraphTool_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Store: &fakeStore{}}).Call(ctx, "MATCH (n) RETURN n")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGraphTool_Description(t *testing.T) {
	gt := New(Config{Store: &fakeStore{}, SchemaHint: "(:User)-[:HAS_MEMBERSHIP]->(:MembershipLevel)"})

	assert.Equal(t, DefaultName, gt.Name())
	assert.Contains(t, gt.Description(), "single, valid Cypher query")
	assert.Contains(t, gt.Description(), "HAS_MEMBERSHIP")
}
