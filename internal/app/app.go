package app

import (
	"context"
	"log/slog"

	"ContractRedliner/internal/agents"
	"ContractRedliner/internal/config"
	"ContractRedliner/internal/domain"
	"ContractRedliner/internal/extraction"
	"ContractRedliner/internal/infrastructure/langfuse"
	"ContractRedliner/internal/infrastructure/openai"
	"ContractRedliner/internal/logging"
	"ContractRedliner/internal/ports"
	"ContractRedliner/internal/tracing"
	"ContractRedliner/internal/usecase"
)

// Application wires configuration to the pipeline and owns the telemetry
// backend for the process lifetime.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	backend  ports.TraceBackend
}

// New builds a runnable application instance. It fails fast when the
// inference credential is missing; absent telemetry credentials select the
// no-op backend instead of failing.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	client, err := openai.NewClient(cfg.OpenAI)
	if err != nil {
		return nil, err
	}

	backend := langfuse.New(cfg.Langfuse, baseLogger.With("component", "langfuse"))
	tracer := tracing.New(backend)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Extractor: extraction.New(client, tracer, cfg.OpenAI.Model, baseLogger.With("component", "extraction")),
		Aligner:   agents.NewAlignmentAgent(client, tracer, cfg.OpenAI.Model, baseLogger.With("component", "alignment")),
		Changes:   agents.NewChangeAgent(client, tracer, cfg.OpenAI.Model, baseLogger.With("component", "changes")),
		Tracer:    tracer,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, backend: backend}, nil
}

// Run executes one comparison and returns the validated report.
func (a *Application) Run(ctx context.Context, req usecase.RunRequest) (domain.ChangeReport, error) {
	return a.pipeline.Run(ctx, req)
}

// Close flushes any buffered telemetry. Best-effort; called on every exit
// path, including failures.
func (a *Application) Close(ctx context.Context) {
	a.backend.Flush(ctx)
}
