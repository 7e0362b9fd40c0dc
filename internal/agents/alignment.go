// Package agents holds the two inference-backed pipeline stages: section
// alignment and change extraction.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ContractRedliner/internal/domain"
	"ContractRedliner/internal/ports"
	"ContractRedliner/internal/tracing"
	"ContractRedliner/pkg/jsontext"
)

const alignmentSystemPrompt = "You align the sections of an original contract with its amendment.\n" +
	"You are given the structured sections of both documents.\n" +
	"Your tasks:\n" +
	"1. Understand the structure of both documents.\n" +
	"2. Align corresponding sections between the original and the amendment.\n" +
	"3. Identify which sections appear new, deleted, or moved.\n" +
	"Return ONLY a JSON object with:\n" +
	"- aligned_sections: list of {original_id, amendment_id, relation}\n" +
	"- structural_notes: string\n"

// AlignmentAgent issues the single inference call that maps sections across
// document versions. It requires only that the reply parse as JSON; the
// mapping's content is the model's responsibility and passes through opaque.
type AlignmentAgent struct {
	client ports.InferenceClient
	tracer *tracing.Tracer
	model  string
	logger *slog.Logger
}

var _ ports.SectionAligner = (*AlignmentAgent)(nil)

// NewAlignmentAgent builds the alignment stage.
func NewAlignmentAgent(client ports.InferenceClient, tracer *tracing.Tracer, model string, logger *slog.Logger) *AlignmentAgent {
	return &AlignmentAgent{client: client, tracer: tracer, model: model, logger: logger}
}

// Align produces the structural mapping for a document pair. A reply that is
// not parseable JSON fails the call; no default mapping is synthesized, since
// a silently-empty alignment would degrade change extraction without signal.
func (a *AlignmentAgent) Align(ctx context.Context, original, amendment domain.Document, sessionID, contractID string) (mapping domain.AlignmentMapping, err error) {
	op := a.tracer.Start("agent_alignment",
		map[string]any{
			"original_sections":  original.SectionIdentifiers(),
			"amendment_sections": amendment.SectionIdentifiers(),
		},
		tracing.Metadata{SessionID: sessionID, ContractID: contractID, AgentName: "AlignmentAgent"})
	defer func() { op.End(err) }()

	resp, err := a.client.Complete(ctx, ports.InferenceRequest{
		Model:  a.model,
		System: alignmentSystemPrompt,
		UserParts: []ports.MessagePart{{
			Text: "ORIGINAL CONTRACT:\n" + original.Serialize() + "\n\nAMENDMENT:\n" + amendment.Serialize(),
		}},
	})
	if err != nil {
		return domain.AlignmentMapping{}, fmt.Errorf("alignment request: %w", err)
	}
	op.AddUsage(resp.Usage)

	raw, perr := jsontext.Extract(resp.Text)
	if perr != nil {
		a.logger.Debug("alignment response was not parseable JSON", "content", resp.Text)
		return domain.AlignmentMapping{}, fmt.Errorf("%w: alignment mapping: %v", domain.ErrParse, perr)
	}
	if uerr := json.Unmarshal(raw, &mapping); uerr != nil {
		return domain.AlignmentMapping{}, fmt.Errorf("%w: alignment mapping: %v", domain.ErrParse, uerr)
	}

	op.SetOutput(mapping)
	return mapping, nil
}
