package reasoning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Action(t *testing.T) {
	out := "Thought: I need the Gold promos.\nAction: knowledge_graph_search\nAction Input: MATCH (p:Promo) RETURN p.code"

	d, ok := Parse(out).(*Action)
	require.True(t, ok)
	assert.Equal(t, "I need the Gold promos.", d.Thought)
	assert.Equal(t, "knowledge_graph_search", d.Tool)
	assert.Equal(t, "MATCH (p:Promo) RETURN p.code", d.Input)
	assert.Equal(t, out, d.Log)
}

func TestParse_ActionInputQuotesAndMultiline(t *testing.T) {
	out := "Thought: search\nAction:   semantic_dish_search  \nAction Input: \"creamy thai curry\"\n"
	d, ok := Parse(out).(*Action)
	require.True(t, ok)
	assert.Equal(t, "semantic_dish_search", d.Tool)
	assert.Equal(t, "creamy thai curry", d.Input)

	out = "Thought: query\nAction: knowledge_graph_search\nAction Input: MATCH (r:Restaurant)\nRETURN r.name"
	d, ok = Parse(out).(*Action)
	require.True(t, ok)
	assert.Equal(t, "MATCH (r:Restaurant)\nRETURN r.name", d.Input)
}

func TestParse_ActionInputKeepsQuotedLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"trailing literal", `SELECT code FROM promos WHERE restaurant_id = "R1"`},
		{"leading and trailing literals", `"R1" = "R1"`},
		{"cypher literal", `MATCH (m:Membership {level: "Gold"}) RETURN m.level`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Parse("Thought: query\nAction: knowledge_graph_search\nAction Input: " + tt.input).(*Action)
			require.True(t, ok)
			assert.Equal(t, tt.input, d.Input)
		})
	}
}

func TestParse_FinalAnswer(t *testing.T) {
	d, ok := Parse("Thought: I now know the final answer\nFinal Answer: Use code GOLD20 at Thai Basil House.").(*FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "I now know the final answer", d.Thought)
	assert.Equal(t, "Use code GOLD20 at Thai Basil House.", d.Text)
}

func TestParse_HallucinatedObservationDiscarded(t *testing.T) {
	out := "Thought: look it up\nAction: knowledge_graph_search\nAction Input: MATCH (n) RETURN n\nObservation: [{\"n\": 1}]\nThought: done\nFinal Answer: 1"

	d, ok := Parse(out).(*Action)
	require.True(t, ok, "text after Observation: must be ignored")
	assert.Equal(t, "MATCH (n) RETURN n", d.Input)
}

func TestParse_Unparseable(t *testing.T) {
	tests := []struct {
		name   string
		output string
		reason string
	}{
		{"empty", "", ReasonEmpty},
		{"whitespace", "  \n\t", ReasonEmpty},
		{"only observation", "Observation: nothing", ReasonEmpty},
		{"no action", "Thought: I am thinking about curry.", ReasonMissingAction},
		{"no action input", "Thought: search\nAction: semantic_dish_search", ReasonMissingActionInput},
		{"empty tool", "Thought: x\nAction: \nAction Input: noodles", ReasonMissingTool},
		{"both", "Thought: x\nAction: semantic_dish_search\nAction Input: noodles\nFinal Answer: D2", ReasonBoth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := Parse(tt.output).(*Unparseable)
			require.True(t, ok)
			assert.Equal(t, tt.reason, u.Reason)
			assert.Equal(t, tt.output, u.Raw)
		})
	}
}

func TestUnparseable_Err(t *testing.T) {
	u := &Unparseable{Raw: "gibberish", Reason: ReasonMissingAction}
	err := u.Err()

	assert.True(t, errors.Is(err, ErrUnparseable))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "gibberish", pe.Raw)
	assert.Equal(t, ReasonMissingAction, err.Error())
}
