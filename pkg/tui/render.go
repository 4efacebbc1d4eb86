package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kadirpekel/dealfinder/pkg/prompt"
	"github.com/kadirpekel/dealfinder/pkg/reasoning"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	thoughtStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	actionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	observationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	answerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// RenderStep formats one reasoning step for a terminal.
func RenderStep(iteration int, step prompt.Step) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("── step %d", iteration)))
	b.WriteString("\n")
	if step.Action == "" {
		// Unparseable turn: show what the model said and the correction.
		b.WriteString(errorStyle.Render("Unparseable output: "))
		b.WriteString(strings.TrimSpace(step.Log))
		b.WriteString("\n")
		b.WriteString(observationStyle.Render(prompt.LabelObservation + " " + step.Observation))
		return b.String()
	}
	if step.Thought != "" {
		b.WriteString(thoughtStyle.Render(prompt.LabelThought + " " + step.Thought))
		b.WriteString("\n")
	}
	b.WriteString(actionStyle.Render(prompt.LabelAction + " " + step.Action))
	b.WriteString("\n")
	b.WriteString(prompt.LabelActionInput + " " + step.ActionInput)
	b.WriteString("\n")
	b.WriteString(observationStyle.Render(prompt.LabelObservation + " " + step.Observation))
	return b.String()
}

// RenderResult formats the final answer and run summary.
func RenderResult(res *reasoning.Result) string {
	if res == nil {
		return ""
	}
	summary := dimStyle.Render(fmt.Sprintf("state=%s iterations=%d duration=%s run=%s",
		res.State, res.Iterations, res.Duration.Round(1e6), res.RunID))

	style := answerStyle
	if res.State != reasoning.StateFinalAnswer {
		style = errorStyle
	}
	return boxStyle.Render(style.Render(res.Answer)) + "\n" + summary
}

// RenderTrace formats every step of res.
func RenderTrace(res *reasoning.Result) string {
	if res == nil || res.Trace == nil {
		return ""
	}
	parts := make([]string, 0, len(res.Trace.Steps))
	for i, step := range res.Trace.Steps {
		parts = append(parts, RenderStep(i+1, step))
	}
	return strings.Join(parts, "\n")
}

// RenderError formats an error line.
func RenderError(err error) string {
	return errorStyle.Render("Error: " + err.Error())
}

// Title renders a bold heading.
func Title(s string) string {
	return titleStyle.Render(s)
}
