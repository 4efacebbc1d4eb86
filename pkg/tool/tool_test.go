package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/dealfinder/pkg/registry"
)

func echo(name string) *Func {
	return &Func{
		ToolName:        name,
		ToolDescription: "echoes " + name,
		Fn: func(ctx context.Context, input string) (string, error) {
			return name + ":" + input, nil
		},
	}
}

func TestRegistry_Order(t *testing.T) {
	reg, err := NewRegistry(echo("semantic_dish_search"), echo("knowledge_graph_search"))
	require.NoError(t, err)

	assert.Equal(t, []string{"semantic_dish_search", "knowledge_graph_search"}, reg.Names())
	assert.Equal(t, []Spec{
		{Name: "semantic_dish_search", Description: "echoes semantic_dish_search"},
		{Name: "knowledge_graph_search", Description: "echoes knowledge_graph_search"},
	}, reg.Specs())
}

func TestRegistry_Get(t *testing.T) {
	reg, err := NewRegistry(echo("a"))
	require.NoError(t, err)

	got, err := reg.Get("a")
	require.NoError(t, err)
	out, err := got.Call(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "a:x", out)

	_, err = reg.Get("web_search")
	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.Contains(t, err.Error(), "web_search")
}

func TestRegistry_Errors(t *testing.T) {
	_, err := NewRegistry(echo("a"), echo("a"))
	assert.ErrorIs(t, err, registry.ErrDuplicate)

	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Error(t, reg.Register(nil))
	assert.ErrorIs(t, reg.Register(echo("")), registry.ErrEmptyName)
	assert.Zero(t, reg.Count())
}
