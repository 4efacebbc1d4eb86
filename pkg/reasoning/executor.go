// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reasoning implements the Thought/Action/Observation loop that
// drives the model and dispatches its tool calls.
//
// Each Run moves through these states:
//
//	AWAITING_MODEL -> PARSING_ACTION -> DISPATCHING_TOOL -> AWAITING_MODEL
//
// and ends in FINAL_ANSWER or ITERATION_LIMIT_EXCEEDED. Exactly one tool
// call is made per iteration.
package reasoning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/dealfinder/pkg/model"
	"github.com/kadirpekel/dealfinder/pkg/observability"
	"github.com/kadirpekel/dealfinder/pkg/prompt"
	"github.com/kadirpekel/dealfinder/pkg/tool"
	"github.com/kadirpekel/dealfinder/pkg/utils"
)

var (
	// ErrIterationBudgetExceeded is returned, together with a partial
	// Result, when the iteration cap, the parse retry cap or the time
	// budget is hit.
	ErrIterationBudgetExceeded = errors.New("iteration budget exceeded")

	// ErrModelUnavailable wraps failures of the language model call.
	ErrModelUnavailable = errors.New("language model unavailable")
)

// StoppedAnswer is the Answer of a run that hit its budget.
const StoppedAnswer = "Agent stopped due to iteration limit or time limit."

// State is a reasoning loop state.
type State string

const (
	StateAwaitingModel          State = "AWAITING_MODEL"
	StateParsingAction          State = "PARSING_ACTION"
	StateDispatchingTool        State = "DISPATCHING_TOOL"
	StateFinalAnswer            State = "FINAL_ANSWER"
	StateIterationLimitExceeded State = "ITERATION_LIMIT_EXCEEDED"
)

const (
	DefaultMaxIterations   = 8
	DefaultMaxParseRetries = 3
)

// Config bounds a run.
type Config struct {
	// MaxIterations caps model turns, including unparseable ones.
	MaxIterations int

	// MaxParseRetries is how many consecutive unparseable outputs are
	// tolerated. One more ends the run.
	MaxParseRetries int

	// MaxExecutionTime is the wall-clock budget. Zero means none.
	MaxExecutionTime time.Duration

	Instruction string

	Temperature *float64
	MaxTokens   int
}

func (c *Config) setDefaults() {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.MaxParseRetries < 0 {
		c.MaxParseRetries = 0
	} else if c.MaxParseRetries == 0 {
		c.MaxParseRetries = DefaultMaxParseRetries
	}
}

// StepHook observes each completed step.
type StepHook func(iteration int, step prompt.Step)

// Result is the outcome of a run. It is returned even when the run fails
// so callers can inspect the partial trace.
type Result struct {
	RunID      string        `json:"run_id"`
	Answer     string        `json:"answer"`
	State      State         `json:"state"`
	Iterations int           `json:"iterations"`
	Trace      *Trace        `json:"trace"`
	Duration   time.Duration `json:"duration"`

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Executor runs the reasoning loop. It is safe for concurrent use; every
// Run has its own trace.
type Executor struct {
	llm     model.LLM
	tools   *tool.Registry
	builder prompt.Builder
	cfg     Config

	metrics observability.Metrics
	tracer  trace.Tracer
	tokens  *utils.TokenCounter
	onStep  StepHook

	capturePayloads bool
}

type Option func(*Executor)

func WithMetrics(m observability.Metrics) Option {
	return func(e *Executor) {
		if m != nil {
			e.metrics = m
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithTokenCounter counts prompt tokens when the provider reports no usage.
func WithTokenCounter(tc *utils.TokenCounter) Option {
	return func(e *Executor) { e.tokens = tc }
}

// WithPayloadCapture records tool inputs on spans.
func WithPayloadCapture(enabled bool) Option {
	return func(e *Executor) { e.capturePayloads = enabled }
}

func WithStepHook(h StepHook) Option {
	return func(e *Executor) { e.onStep = h }
}

// NewExecutor validates its collaborators and applies defaults.
func NewExecutor(llm model.LLM, tools *tool.Registry, cfg Config, opts ...Option) (*Executor, error) {
	if llm == nil {
		return nil, fmt.Errorf("language model is required")
	}
	if tools == nil || tools.Count() == 0 {
		return nil, fmt.Errorf("at least one tool is required")
	}
	cfg.setDefaults()

	e := &Executor{
		llm:     llm,
		tools:   tools,
		builder: prompt.Builder{Instruction: cfg.Instruction},
		cfg:     cfg,
		metrics: observability.NoopMetrics{},
		tracer:  observability.NoopTracer("reasoning"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the effective configuration.
func (e *Executor) Config() Config {
	return e.cfg
}

// Tools returns the registry the executor dispatches to.
func (e *Executor) Tools() *tool.Registry {
	return e.tools
}

// Run answers question. On ErrIterationBudgetExceeded the returned Result
// holds the partial trace and StoppedAnswer. Context cancellation is
// returned as is, also with the partial Result.
func (e *Executor) Run(ctx context.Context, question string) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID: uuid.NewString(),
		Trace: NewTrace(question),
	}

	ctx, span := e.tracer.Start(ctx, observability.SpanAgentRun,
		trace.WithAttributes(attribute.String(observability.AttrRunID, res.RunID)))
	defer span.End()

	runCtx := ctx
	if e.cfg.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.cfg.MaxExecutionTime)
		defer cancel()
	}

	log := slog.With("run_id", res.RunID)
	log.Info("Agent run started", "question", question)

	err := e.loop(ctx, runCtx, res, log)

	res.Duration = time.Since(start)
	outcome := string(res.State)
	if err != nil && res.State != StateIterationLimitExceeded {
		outcome = "error"
	}
	e.metrics.RecordRun(ctx, res.Duration, res.Iterations, outcome)
	span.SetAttributes(
		attribute.Int(observability.AttrIteration, res.Iterations),
		attribute.String(observability.AttrOutcome, outcome),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	log.Info("Agent run finished", "state", res.State, "iterations", res.Iterations, "duration", res.Duration)
	return res, err
}

// loop drives the state machine. ctx is the caller's context; runCtx also
// carries the execution time budget.
func (e *Executor) loop(ctx, runCtx context.Context, res *Result, log *slog.Logger) error {
	catalog := e.tools.Specs()
	consecutiveFailures := 0
	state := StateAwaitingModel

	for res.Iterations < e.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		if runCtx.Err() != nil {
			return e.exceeded(res, "time limit reached", log)
		}

		res.Iterations++
		iteration := res.Iterations

		// AWAITING_MODEL
		state = StateAwaitingModel
		log.Debug("Calling model", "iteration", iteration, "state", state)
		text, err := e.generate(runCtx, res, catalog)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if runCtx.Err() != nil {
				return e.exceeded(res, "time limit reached", log)
			}
			res.State = state
			return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}

		// PARSING_ACTION
		state = StateParsingAction
		switch d := Parse(text).(type) {
		case *FinalAnswer:
			res.Answer = d.Text
			res.State = StateFinalAnswer
			return nil

		case *Unparseable:
			consecutiveFailures++
			e.metrics.RecordParseFailure(ctx)
			log.Warn("Unparseable model output", "iteration", iteration, "reason", d.Reason, "consecutive", consecutiveFailures)

			e.record(res, iteration, prompt.Step{Log: d.Raw, Observation: d.Reason})
			if consecutiveFailures > e.cfg.MaxParseRetries {
				return e.exceeded(res, "too many unparseable outputs", log)
			}

		case *Action:
			consecutiveFailures = 0

			// DISPATCHING_TOOL
			state = StateDispatchingTool
			observation, err := e.dispatch(runCtx, iteration, d, log)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if runCtx.Err() != nil {
					return e.exceeded(res, "time limit reached", log)
				}
				observation = fmt.Sprintf("Tool Error: %v", err)
			}

			e.record(res, iteration, prompt.Step{
				Thought:     d.Thought,
				Action:      d.Tool,
				ActionInput: d.Input,
				Observation: observation,
				Log:         d.Log,
			})
		}
	}

	return e.exceeded(res, "iteration limit reached", log)
}

func (e *Executor) exceeded(res *Result, reason string, log *slog.Logger) error {
	res.State = StateIterationLimitExceeded
	res.Answer = StoppedAnswer
	log.Warn("Agent stopped", "reason", reason, "iterations", res.Iterations)
	return fmt.Errorf("%w: %s", ErrIterationBudgetExceeded, reason)
}

func (e *Executor) record(res *Result, iteration int, step prompt.Step) {
	res.Trace.Append(step)
	if e.onStep != nil {
		e.onStep(iteration, step)
	}
}

func (e *Executor) generate(ctx context.Context, res *Result, catalog []tool.Spec) (string, error) {
	text := e.builder.Build(res.Trace.Question, res.Trace.Steps, catalog)

	cfg := &model.GenerateConfig{
		Temperature:   e.cfg.Temperature,
		StopSequences: []string{prompt.StopSequence},
	}
	if e.cfg.MaxTokens > 0 {
		cfg.MaxTokens = &e.cfg.MaxTokens
	}

	ctx, span := e.tracer.Start(ctx, observability.SpanLLMRequest,
		trace.WithAttributes(attribute.String(observability.AttrLLMModel, e.llm.Name())))
	defer span.End()

	start := time.Now()
	resp, err := e.llm.Generate(ctx, &model.Request{Prompt: text, Config: cfg})

	var in, out int
	if err == nil && resp.Usage != nil {
		in, out = resp.Usage.PromptTokens, resp.Usage.CompletionTokens
	}
	if in == 0 && e.tokens != nil {
		in = e.tokens.Count(text)
	}
	e.metrics.RecordLLMCall(ctx, e.llm.Name(), time.Since(start), in, out, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	res.PromptTokens += in
	res.CompletionTokens += out
	span.SetAttributes(
		attribute.Int(observability.AttrLLMTokensIn, in),
		attribute.Int(observability.AttrLLMTokensOut, out),
	)
	return resp.Text, nil
}

// dispatch resolves and calls the tool. Unknown tools produce a
// corrective observation, not an error.
func (e *Executor) dispatch(ctx context.Context, iteration int, action *Action, log *slog.Logger) (string, error) {
	ctx, span := e.tracer.Start(ctx, observability.SpanToolExecution,
		trace.WithAttributes(
			attribute.String(observability.AttrToolName, action.Tool),
			attribute.Int(observability.AttrIteration, iteration),
		))
	defer span.End()
	if e.capturePayloads {
		span.SetAttributes(attribute.String(observability.AttrToolInput, action.Input))
	}

	t, err := e.tools.Get(action.Tool)
	if err != nil {
		e.metrics.RecordToolCall(ctx, action.Tool, 0, "unknown")
		log.Warn("Unknown tool requested", "tool", action.Tool, "iteration", iteration)
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].",
			action.Tool, strings.Join(e.tools.Names(), ", ")), nil
	}

	log.Info("Dispatching tool", "tool", action.Tool, "iteration", iteration)
	log.Debug("Tool input", "tool", action.Tool, "input", action.Input)

	start := time.Now()
	observation, err := t.Call(ctx, action.Input)
	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	e.metrics.RecordToolCall(ctx, action.Tool, time.Since(start), outcome)
	return observation, err
}
