// Package extraction wraps the multimodal inference call that turns a
// scanned contract image into a structured document.
package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"ContractRedliner/internal/domain"
	"ContractRedliner/internal/ports"
	"ContractRedliner/internal/tracing"
	"ContractRedliner/pkg/jsontext"
)

const systemPrompt = "You are a legal document parser. " +
	"Extract the contract into a JSON array of sections. " +
	"Each section must have: identifier, title (if present), and text. " +
	"Identifiers should follow the document's hierarchy (e.g., '1', '1.1', '2.3')."

const userPrompt = "Extract structured sections from this contract image."

// Extractor converts contract images into domain documents.
type Extractor struct {
	client ports.InferenceClient
	tracer *tracing.Tracer
	model  string
	logger *slog.Logger
}

var _ ports.DocumentExtractor = (*Extractor)(nil)

// New builds an extractor over the given inference client.
func New(client ports.InferenceClient, tracer *tracing.Tracer, model string, logger *slog.Logger) *Extractor {
	return &Extractor{client: client, tracer: tracer, model: model, logger: logger}
}

type rawSection struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Text       string `json:"text"`
}

// Extract sends the encoded image to the model and parses the reply into an
// ordered document. Section text below the minimum length is repaired via
// title-then-placeholder fallback so the document invariant always holds.
// An unparseable reply fails the whole call; no partial document is returned.
func (e *Extractor) Extract(ctx context.Context, imagePath, sessionID, contractID string) (doc domain.Document, err error) {
	op := e.tracer.Start("image_parsing",
		map[string]any{"image_path": imagePath},
		tracing.Metadata{SessionID: sessionID, ContractID: contractID, AgentName: "image_parser"})
	defer func() { op.End(err) }()

	data, err := os.ReadFile(imagePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Document{}, fmt.Errorf("%w: image %s", domain.ErrNotFound, imagePath)
		}
		return domain.Document{}, fmt.Errorf("read image %s: %w", imagePath, err)
	}

	resp, err := e.client.Complete(ctx, ports.InferenceRequest{
		Model:  e.model,
		System: systemPrompt,
		UserParts: []ports.MessagePart{
			{Text: userPrompt},
			{ImageBase64: base64.StdEncoding.EncodeToString(data), MIMEType: mimeTypeFor(imagePath)},
		},
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("parse contract image: %w", err)
	}
	op.AddUsage(resp.Usage)
	op.SetOutput(map[string]any{"raw_response": resp.Text})

	raw, perr := jsontext.Extract(resp.Text)
	if perr != nil {
		e.logger.Debug("model response was not parseable JSON", "content", resp.Text)
		op.SetOutput(map[string]any{"parse_error": perr.Error(), "raw_response": resp.Text})
		return domain.Document{}, fmt.Errorf("%w: section list: %v", domain.ErrParse, perr)
	}

	var rawSections []rawSection
	if uerr := json.Unmarshal(raw, &rawSections); uerr != nil {
		op.SetOutput(map[string]any{"parse_error": uerr.Error(), "raw_response": resp.Text})
		return domain.Document{}, fmt.Errorf("%w: expected a JSON array of sections: %v", domain.ErrParse, uerr)
	}

	sections := make([]domain.Section, 0, len(rawSections))
	for _, s := range rawSections {
		sections = append(sections, domain.Section{
			Identifier: s.Identifier,
			Title:      s.Title,
			Text:       domain.RepairSectionText(s.Text, s.Title),
		})
	}

	doc = domain.Document{Filename: imagePath, Sections: sections}
	op.SetOutput(map[string]any{"num_sections": len(sections)})
	return doc, nil
}

func mimeTypeFor(imagePath string) string {
	if t := mime.TypeByExtension(filepath.Ext(imagePath)); t != "" {
		return t
	}
	return "image/png"
}
