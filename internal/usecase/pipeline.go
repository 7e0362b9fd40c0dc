package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ContractRedliner/internal/domain"
	"ContractRedliner/internal/ports"
	"ContractRedliner/internal/tracing"
)

// PipelineDeps wires the stages into the comparison pipeline.
type PipelineDeps struct {
	Extractor ports.DocumentExtractor
	Aligner   ports.SectionAligner
	Changes   ports.ChangeExtractor
	Tracer    *tracing.Tracer
	Logger    *slog.Logger
}

// Pipeline implements the contract-comparison workflow: parse both images,
// align sections, extract changes. Stages run strictly in sequence because
// each stage's prompt depends on the previous stage's output; the two
// extraction calls are also issued one at a time even though they are
// independent, so each stage's telemetry is durably flushed before the next
// stage starts.
type Pipeline struct {
	extractor ports.DocumentExtractor
	aligner   ports.SectionAligner
	changes   ports.ChangeExtractor
	tracer    *tracing.Tracer
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		extractor: deps.Extractor,
		aligner:   deps.Aligner,
		changes:   deps.Changes,
		tracer:    deps.Tracer,
		logger:    deps.Logger,
	}
}

// RunRequest identifies one document pair to compare. SessionID and
// ContractID are optional; a random session id and a filename-derived
// contract id are generated when absent.
type RunRequest struct {
	OriginalPath  string
	AmendmentPath string
	SessionID     string
	ContractID    string
}

// Run executes the full pipeline for one document pair under an umbrella
// traced operation and returns the validated change report. No retries, no
// recovery: the first failing stage aborts the run.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (report domain.ChangeReport, err error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	contractID := req.ContractID
	if contractID == "" {
		contractID = contractIDFromPath(req.OriginalPath)
	}

	p.logger.Info("starting contract comparison",
		"session_id", sessionID,
		"contract_id", contractID)

	op := p.tracer.Start("contract_comparison",
		map[string]any{
			"original_path":  req.OriginalPath,
			"amendment_path": req.AmendmentPath,
		},
		tracing.Metadata{SessionID: sessionID, ContractID: contractID, AgentName: "pipeline"})
	defer func() { op.End(err) }()

	original, err := p.extractor.Extract(ctx, req.OriginalPath, sessionID, contractID)
	if err != nil {
		return domain.ChangeReport{}, fmt.Errorf("extract original: %w", err)
	}
	p.logger.Debug("original parsed", "sections", len(original.Sections))

	amendment, err := p.extractor.Extract(ctx, req.AmendmentPath, sessionID, contractID)
	if err != nil {
		return domain.ChangeReport{}, fmt.Errorf("extract amendment: %w", err)
	}
	p.logger.Debug("amendment parsed", "sections", len(amendment.Sections))

	mapping, err := p.aligner.Align(ctx, original, amendment, sessionID, contractID)
	if err != nil {
		return domain.ChangeReport{}, fmt.Errorf("align sections: %w", err)
	}

	report, err = p.changes.ExtractChanges(ctx, original, amendment, mapping, sessionID, contractID)
	if err != nil {
		return domain.ChangeReport{}, fmt.Errorf("extract changes: %w", err)
	}

	op.SetOutput(report)
	return report, nil
}

func contractIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
