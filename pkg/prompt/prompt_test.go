package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kadirpekel/dealfinder/pkg/tool"
)

var catalog = []tool.Spec{
	{Name: "semantic_dish_search", Description: "Finds dishes by flavor."},
	{Name: "knowledge_graph_search", Description: "Runs Cypher."},
}

func TestBuild_FirstTurn(t *testing.T) {
	b := Builder{Instruction: "You are a test agent."}
	got := b.Build("What is the promo code for Thai Basil House?", nil, catalog)

	assert.True(t, strings.HasPrefix(got, "You are a test agent.\n\n"))
	assert.Contains(t, got, "semantic_dish_search: Finds dishes by flavor.\nknowledge_graph_search: Runs Cypher.\n")
	assert.Contains(t, got, "Action: the action to take, should be one of [semantic_dish_search, knowledge_graph_search]")
	assert.True(t, strings.HasSuffix(got, "Question: What is the promo code for Thai Basil House?\nThought:"))
}

func TestBuild_RendersSteps(t *testing.T) {
	steps := []Step{
		{
			Log:         " I should check promotions.\nAction: knowledge_graph_search\nAction Input: MATCH (p:Promotion) RETURN p.code",
			Action:      "knowledge_graph_search",
			ActionInput: "MATCH (p:Promotion) RETURN p.code",
			Observation: `[{"p.code":"GOLD20"}]`,
		},
		{
			Thought:     "Let me look for noodles.",
			Action:      "semantic_dish_search",
			ActionInput: "noodles",
			Observation: "[]",
		},
	}
	got := Builder{}.Build("q", steps, catalog)

	want := "Question: q\n" +
		"Thought: I should check promotions.\nAction: knowledge_graph_search\nAction Input: MATCH (p:Promotion) RETURN p.code\n" +
		"Observation: [{\"p.code\":\"GOLD20\"}]\n" +
		"Thought: Let me look for noodles.\nAction: semantic_dish_search\nAction Input: noodles\n" +
		"Observation: []\n" +
		"Thought:"
	assert.True(t, strings.HasSuffix(got, want), got)
	assert.False(t, strings.HasPrefix(got, "\n"))
}

func TestBuild_StripsRepeatedThoughtLabel(t *testing.T) {
	steps := []Step{{Log: "Thought: hmm\nAction: x\nAction Input: y", Observation: "o"}}
	got := Builder{}.Build("q", steps, catalog)
	assert.Contains(t, got, "Thought: hmm\nAction: x")
	assert.NotContains(t, got, "Thought: Thought:")
}

func TestBuild_IsPure(t *testing.T) {
	steps := []Step{{Thought: "t", Action: "a", ActionInput: "i", Observation: "o"}}
	b := Builder{Instruction: "inst"}

	first := b.Build("q", steps, catalog)
	for range 5 {
		assert.Equal(t, first, b.Build("q", steps, catalog))
	}
	assert.Equal(t, Step{Thought: "t", Action: "a", ActionInput: "i", Observation: "o"}, steps[0])
}

func TestInstruction(t *testing.T) {
	got := Instruction(Persona{
		UserID:          "U1",
		MembershipLevel: "Gold",
		GraphLanguage:   "SQL",
		GraphTool:       "knowledge_graph_search",
		SearchTool:      "semantic_dish_search",
	})
	assert.Contains(t, got, "The user is a Gold Member (User ID: U1).")
	assert.Contains(t, got, "For knowledge_graph_search, the Action Input MUST be a single, valid SQL query.")
	assert.Contains(t, got, "For semantic_dish_search, the Action Input MUST clearly extract keywords")
}

func TestStopSequence(t *testing.T) {
	assert.Equal(t, "\nObservation:", StopSequence)
}
