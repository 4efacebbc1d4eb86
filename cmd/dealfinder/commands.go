package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kadirpekel/dealfinder/pkg/prompt"
	"github.com/kadirpekel/dealfinder/pkg/reasoning"
	"github.com/kadirpekel/dealfinder/pkg/tui"
)

// Example questions covering each tool and their combination.
var examples = map[string]string{
	"simple-kg":     "What is the promo code for Thai Basil House?",
	"simple-vector": "I am craving something that tastes like rich, sweet comfort food noodles.",
	"complex":       "Find me a high-rated, creamy Thai dish that has a current promo for my Gold membership.",
}

func exampleNames() []string {
	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveQuestion picks the positional question, falling back to a named
// example.
func resolveQuestion(question, example string) (string, error) {
	if question != "" {
		return question, nil
	}
	if example == "" {
		return "", fmt.Errorf("a question or --example is required")
	}
	q, ok := examples[example]
	if !ok {
		return "", fmt.Errorf("unknown example %q, choose one of %v", example, exampleNames())
	}
	return q, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// AskCmd answers one question.
type AskCmd struct {
	Question string `arg:"" optional:"" help:"Question to ask."`
	Example  string `short:"e" help:"Ask a built-in example instead (simple-kg, simple-vector, complex)."`
	Verbose  bool   `short:"v" help:"Print every reasoning step as it happens."`
	Trace    bool   `help:"Print the full trace after the answer."`
	Seed     bool   `help:"Load the demo dataset before asking."`
}

func (c *AskCmd) Run(cli *CLI) error {
	question, err := resolveQuestion(c.Question, c.Example)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	opts := sessionOptions{seed: c.Seed}
	if c.Verbose {
		opts.stepHook = func(iteration int, step prompt.Step) {
			fmt.Println(tui.RenderStep(iteration, step))
		}
	}

	s, err := openSession(ctx, cli, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Println(tui.Title("Question: " + question))
	res, err := s.runtime.Ask(ctx, question)
	if err != nil && !errors.Is(err, reasoning.ErrIterationBudgetExceeded) {
		fmt.Println(tui.RenderError(err))
		return err
	}

	if c.Trace && !c.Verbose {
		fmt.Println(tui.RenderTrace(res))
	}
	fmt.Println(tui.RenderResult(res))
	return nil
}

// ChatCmd starts the interactive terminal UI.
type ChatCmd struct {
	Seed bool `help:"Load the demo dataset before chatting."`
}

func (c *ChatCmd) Run(cli *CLI) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := openSession(ctx, cli, sessionOptions{seed: c.Seed})
	if err != nil {
		return err
	}
	defer s.Close()

	store := s.runtime.Store()
	summary := fmt.Sprintf("%s via %s | %s graph | %s dish index",
		s.cfg.LLM.Model, s.cfg.LLM.Provider, store.Backend(), s.runtime.Vectors().Name())

	program := tea.NewProgram(tui.New(ctx, s.runtime.Ask, summary), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}

// SeedCmd loads the demo dataset.
type SeedCmd struct{}

func (c *SeedCmd) Run(cli *CLI) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := openSession(ctx, cli, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.runtime.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	fmt.Printf("Loaded %d statements into %s and indexed %d dishes in %s\n",
		report.Statements, s.runtime.Store().Backend(), report.Dishes, report.Duration.Round(time.Millisecond))
	return nil
}

// ToolsCmd lists the registered tools in dispatch order.
type ToolsCmd struct{}

func (c *ToolsCmd) Run(cli *CLI) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := openSession(ctx, cli, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, spec := range s.runtime.ToolSpecs() {
		fmt.Fprintf(w, "%s\t%s\n", spec.Name, firstLine(spec.Description))
	}
	return w.Flush()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
