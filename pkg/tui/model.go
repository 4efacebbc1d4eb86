// Package tui is the interactive terminal chat for the deal finder.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kadirpekel/dealfinder/pkg/reasoning"
)

// AskFunc runs one question.
type AskFunc func(ctx context.Context, question string) (*reasoning.Result, error)

type answerMsg struct {
	question string
	result   *reasoning.Result
	err      error
}

type exchange struct {
	question string
	result   *reasoning.Result
	err      error
}

// Model is the Bubble Tea model for the chat.
type Model struct {
	ctx      context.Context
	ask      AskFunc
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	history   []exchange
	summary   string
	status    string
	busy      bool
	showTrace bool
	ready     bool
}

// New creates the chat model. summary is shown under the header.
func New(ctx context.Context, ask AskFunc, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about dishes and deals, then press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		ask:      ask,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		summary:  summary,
		status:   "Ready. Ctrl+T toggles reasoning steps, Ctrl+C quits.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.ask(m.ctx, question)
		return answerMsg{question: question, result: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, frame := boxStyle.GetFrameSize()
		reserved := 2 + 1 + 3 + 1 // header and summary, status, input box, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-frame)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlT:
			m.showTrace = !m.showTrace
			m.refresh()
			return m, nil
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = fmt.Sprintf("Thinking about %q", q)
			m.input.Reset()
			return m, tea.Batch(m.spinner.Tick, m.askCmd(q))
		}

	case answerMsg:
		m.busy = false
		m.history = append(m.history, exchange{question: msg.question, result: msg.result, err: msg.err})
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Answered in %d iterations", msg.result.Iterations)
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Personalized Deal Finder")
	summary := dimStyle.Render(m.summary)
	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		summary,
		boxStyle.Render(m.viewport.View()),
		boxStyle.Render(m.input.View()),
		observationStyle.Render(status),
	)
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return dimStyle.Render("No questions yet.")
	}
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(titleStyle.Render("Q: " + ex.question))
		b.WriteString("\n")
		if m.showTrace && ex.result != nil {
			if trace := RenderTrace(ex.result); trace != "" {
				b.WriteString(trace)
				b.WriteString("\n")
			}
		}
		if ex.result != nil {
			b.WriteString(RenderResult(ex.result))
		}
		if ex.err != nil && (ex.result == nil || ex.result.State != reasoning.StateIterationLimitExceeded) {
			b.WriteString("\n")
			b.WriteString(RenderError(ex.err))
		}
	}
	return b.String()
}
