package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kadirpekel/dealfinder/pkg/prompt"
	"github.com/kadirpekel/dealfinder/pkg/reasoning"
)

func sampleResult() *reasoning.Result {
	return &reasoning.Result{
		RunID:      "run-1",
		Answer:     "Pad See Ew Noodles (D2)",
		State:      reasoning.StateFinalAnswer,
		Iterations: 2,
		Trace: &reasoning.Trace{Steps: []prompt.Step{{
			Thought:     "search by taste",
			Action:      "semantic_dish_search",
			ActionInput: "comfort noodles",
			Observation: `[{"dish_id":"D2"}]`,
		}}},
	}
}

func TestRenderStep(t *testing.T) {
	out := RenderStep(1, sampleResult().Trace.Steps[0])
	for _, want := range []string{"step 1", "semantic_dish_search", "comfort noodles", `"D2"`} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderStep() missing %q in %q", want, out)
		}
	}

	bad := RenderStep(2, prompt.Step{Log: "gibberish", Observation: reasoning.ReasonMissingAction})
	if !strings.Contains(bad, "Unparseable output") || !strings.Contains(bad, "gibberish") {
		t.Errorf("RenderStep() for unparseable = %q", bad)
	}
}

func TestRenderResult(t *testing.T) {
	if RenderResult(nil) != "" {
		t.Error("RenderResult(nil) should be empty")
	}
	out := RenderResult(sampleResult())
	if !strings.Contains(out, "Pad See Ew Noodles") || !strings.Contains(out, "iterations=2") {
		t.Errorf("RenderResult() = %q", out)
	}
}

func TestModel_AskFlow(t *testing.T) {
	var asked string
	ask := func(ctx context.Context, q string) (*reasoning.Result, error) {
		asked = q
		return sampleResult(), nil
	}

	var m tea.Model = New(context.Background(), ask, "Gold member U1")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	for _, r := range "noodles" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command after Enter")
	}
	if !m.(Model).busy {
		t.Error("model should be busy while asking")
	}

	// Run the ask command directly instead of through the batch.
	msg := m.(Model).askCmd("noodles")()
	m, _ = m.Update(msg)

	if asked != "noodles" {
		t.Errorf("asked = %q", asked)
	}
	got := m.(Model)
	if got.busy {
		t.Error("model should be idle after the answer")
	}
	if len(got.history) != 1 {
		t.Fatalf("history = %d, want 1", len(got.history))
	}
	if !strings.Contains(got.View(), "Deal Finder") {
		t.Error("View() missing header")
	}
}

func TestModel_ErrorAnswer(t *testing.T) {
	m := New(context.Background(), nil, "")
	updated, _ := m.Update(answerMsg{question: "q", err: errors.New("model down")})

	got := updated.(Model)
	if !strings.HasPrefix(got.status, "Error: model down") {
		t.Errorf("status = %q", got.status)
	}
	if !strings.Contains(got.renderHistory(), "model down") {
		t.Error("history should show the error")
	}
}
