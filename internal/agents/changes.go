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

const changesSystemPrompt = "You extract the concrete changes between an original contract and its amendment.\n" +
	"You receive:\n" +
	"1) The original and amended contract texts.\n" +
	"2) A JSON analysis aligning sections and describing structural changes.\n\n" +
	"Your task:\n" +
	"- Identify which sections actually changed (text modified, added, or removed).\n" +
	"- Identify which legal/business topics are touched by these changes (e.g., payment terms, liability, confidentiality).\n" +
	"- Write a concise but precise summary of the changes.\n\n" +
	"Return ONLY a JSON object with:\n" +
	"{\n" +
	"  \"sections_changed\": [list of section identifiers],\n" +
	"  \"topics_touched\": [list of topics],\n" +
	"  \"summary_of_the_change\": \"string summary\"\n" +
	"}\n"

// ChangeAgent issues the inference call that extracts concrete changes, then
// validates the reply against the ChangeReport schema. The inference call and
// the validation are separate traced operations, so "the model answered" and
// "the answer satisfied the contract" are independently observable.
type ChangeAgent struct {
	client ports.InferenceClient
	tracer *tracing.Tracer
	model  string
	logger *slog.Logger
}

var _ ports.ChangeExtractor = (*ChangeAgent)(nil)

// NewChangeAgent builds the change-extraction stage.
func NewChangeAgent(client ports.InferenceClient, tracer *tracing.Tracer, model string, logger *slog.Logger) *ChangeAgent {
	return &ChangeAgent{client: client, tracer: tracer, model: model, logger: logger}
}

// ExtractChanges produces the validated change report for a document pair.
// A reply that fails schema validation is terminal for the run; retries, if
// wanted, belong to the caller.
func (a *ChangeAgent) ExtractChanges(ctx context.Context, original, amendment domain.Document, mapping domain.AlignmentMapping, sessionID, contractID string) (domain.ChangeReport, error) {
	payload, err := a.requestChanges(ctx, original, amendment, mapping, sessionID, contractID)
	if err != nil {
		return domain.ChangeReport{}, err
	}
	return a.validateChanges(payload, sessionID, contractID)
}

type changePayload struct {
	SectionsChanged    []string `json:"sections_changed"`
	TopicsTouched      []string `json:"topics_touched"`
	SummaryOfTheChange string   `json:"summary_of_the_change"`
}

func (a *ChangeAgent) requestChanges(ctx context.Context, original, amendment domain.Document, mapping domain.AlignmentMapping, sessionID, contractID string) (payload changePayload, err error) {
	op := a.tracer.Start("agent_change_extraction",
		map[string]any{"alignment": mapping},
		tracing.Metadata{SessionID: sessionID, ContractID: contractID, AgentName: "ChangeExtractionAgent"})
	defer func() { op.End(err) }()

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return changePayload{}, fmt.Errorf("marshal alignment mapping: %w", err)
	}

	userContent := "ALIGNMENT ANALYSIS (JSON):\n" + string(mappingJSON) +
		"\n\nORIGINAL CONTRACT:\n" + original.Serialize() +
		"\n\nAMENDMENT:\n" + amendment.Serialize()

	resp, err := a.client.Complete(ctx, ports.InferenceRequest{
		Model:     a.model,
		System:    changesSystemPrompt,
		UserParts: []ports.MessagePart{{Text: userContent}},
	})
	if err != nil {
		return changePayload{}, fmt.Errorf("change extraction request: %w", err)
	}
	op.AddUsage(resp.Usage)

	raw, perr := jsontext.Extract(resp.Text)
	if perr != nil {
		a.logger.Debug("change extraction response was not parseable JSON", "content", resp.Text)
		return changePayload{}, fmt.Errorf("%w: change report: %v", domain.ErrParse, perr)
	}
	if uerr := json.Unmarshal(raw, &payload); uerr != nil {
		return changePayload{}, fmt.Errorf("%w: change report: %v", domain.ErrParse, uerr)
	}

	op.SetOutput(payload)
	return payload, nil
}

func (a *ChangeAgent) validateChanges(payload changePayload, sessionID, contractID string) (report domain.ChangeReport, err error) {
	op := a.tracer.Start("validation",
		map[string]any{"raw_output": payload},
		tracing.Metadata{
			SessionID:  sessionID,
			ContractID: contractID,
			AgentName:  "ChangeExtractionAgent",
			Extra:      map[string]any{"stage": "schema_validation"},
		})
	defer func() { op.End(err) }()

	report, err = domain.NewChangeReport(payload.SectionsChanged, payload.TopicsTouched, payload.SummaryOfTheChange)
	if err != nil {
		return domain.ChangeReport{}, err
	}
	op.SetOutput(report)
	return report, nil
}
