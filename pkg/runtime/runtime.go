// Package runtime assembles the deal finder from configuration: model,
// embedder, graph store, dish index, tools and the reasoning executor.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kadirpekel/dealfinder/pkg/config"
	"github.com/kadirpekel/dealfinder/pkg/embedder"
	"github.com/kadirpekel/dealfinder/pkg/graph"
	"github.com/kadirpekel/dealfinder/pkg/model"
	"github.com/kadirpekel/dealfinder/pkg/observability"
	"github.com/kadirpekel/dealfinder/pkg/reasoning"
	"github.com/kadirpekel/dealfinder/pkg/seed"
	"github.com/kadirpekel/dealfinder/pkg/tool"
	"github.com/kadirpekel/dealfinder/pkg/tool/graphtool"
	"github.com/kadirpekel/dealfinder/pkg/tool/searchtool"
	"github.com/kadirpekel/dealfinder/pkg/utils"
	"github.com/kadirpekel/dealfinder/pkg/vector"
)

type Runtime struct {
	config   *config.Config
	llm      model.LLM
	embedder embedder.Embedder
	store    graph.Store
	vectors  vector.Provider
	tools    *tool.Registry
	executor *reasoning.Executor
}

type Options struct {
	// LLM replaces the configured model. Tests pass a scripted model here.
	LLM model.LLM

	// LLMFactory builds the model when LLM is nil. Default: DefaultLLMFactory
	LLMFactory LLMFactory

	// Observability supplies the tracer and metrics. Nil uses no-ops.
	Observability *observability.Manager

	StepHook reasoning.StepHook
}

// New builds a Runtime. Anything opened before a failure is closed again.
func New(ctx context.Context, cfg *config.Config, opts Options) (_ *Runtime, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	rt := &Runtime{config: cfg}
	defer func() {
		if err != nil {
			if cerr := rt.Close(); cerr != nil {
				slog.Warn("Cleanup after failed start-up", "error", cerr)
			}
		}
	}()

	rt.llm = opts.LLM
	if rt.llm == nil {
		factory := opts.LLMFactory
		if factory == nil {
			factory = DefaultLLMFactory
		}
		llm, err := factory(&cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM: %w", err)
		}
		rt.llm = llm
	}

	emb, err := embedder.New(cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	rt.embedder = emb

	store, err := graph.New(ctx, cfg.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph store: %w", err)
	}
	rt.store = store

	vectors, err := vector.NewProvider(cfg.Vector)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	rt.vectors = vectors

	language := rt.store.Language()
	rt.tools, err = tool.NewRegistry(
		searchtool.New(searchtool.Config{
			Embedder:   rt.embedder,
			Provider:   rt.vectors,
			Collection: cfg.Vector.Collection,
			TopK:       cfg.Agent.TopK,
		}),
		graphtool.New(graphtool.Config{
			Store:      rt.store,
			SchemaHint: seed.SchemaHint(language),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	execOpts := []reasoning.Option{reasoning.WithStepHook(opts.StepHook)}
	if m := opts.Observability; m != nil {
		execOpts = append(execOpts,
			reasoning.WithMetrics(m.Metrics()),
			reasoning.WithTracer(m.Tracer("dealfinder/reasoning")),
			reasoning.WithPayloadCapture(cfg.Observability.Tracing.CapturePayloads),
		)
	}
	if tc, tcErr := utils.NewTokenCounter(rt.llm.Name()); tcErr == nil {
		execOpts = append(execOpts, reasoning.WithTokenCounter(tc))
	} else {
		slog.Debug("Token counter unavailable, using estimates", "error", tcErr)
	}

	rt.executor, err = reasoning.NewExecutor(rt.llm, rt.tools, reasoning.Config{
		MaxIterations:    cfg.Agent.MaxIterations,
		MaxParseRetries:  cfg.Agent.MaxParseRetries,
		MaxExecutionTime: cfg.Agent.MaxExecutionTime,
		Instruction:      DefaultInstruction(cfg, string(language)),
		Temperature:      cfg.LLM.Temperature,
		MaxTokens:        cfg.LLM.MaxTokens,
	}, execOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	slog.Info("Runtime ready",
		"llm", rt.llm.Name(),
		"graph", rt.store.Backend(),
		"vector", rt.vectors.Name(),
		"tools", rt.tools.Names())
	return rt, nil
}

// Ask runs one query through the reasoning loop.
func (r *Runtime) Ask(ctx context.Context, question string) (*reasoning.Result, error) {
	return r.executor.Run(ctx, question)
}

// Seed loads the demo dataset into both stores.
func (r *Runtime) Seed(ctx context.Context) (*seed.Report, error) {
	loader := &seed.Loader{
		Store:      r.store,
		Provider:   r.vectors,
		Embedder:   r.embedder,
		Collection: r.config.Vector.Collection,
	}
	return loader.Load(ctx, seed.Default())
}

func (r *Runtime) Config() *config.Config { return r.config }

func (r *Runtime) Executor() *reasoning.Executor { return r.executor }

func (r *Runtime) Tools() *tool.Registry { return r.tools }

func (r *Runtime) Store() graph.Store { return r.store }

func (r *Runtime) Vectors() vector.Provider { return r.vectors }

// Close releases every backend that was opened.
func (r *Runtime) Close() error {
	var errs []error
	if r.vectors != nil {
		if err := r.vectors.Close(); err != nil {
			errs = append(errs, fmt.Errorf("vector store cleanup: %w", err))
		}
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("graph store cleanup: %w", err))
		}
	}
	if r.embedder != nil {
		if err := r.embedder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("embedder cleanup: %w", err))
		}
	}
	if r.llm != nil {
		if err := r.llm.Close(); err != nil {
			errs = append(errs, fmt.Errorf("llm cleanup: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ToolSpecs lists the registered tools in dispatch order.
func (r *Runtime) ToolSpecs() []tool.Spec { return r.tools.Specs() }
