package ports

import (
	"context"

	"ContractRedliner/internal/domain"
)

// MessagePart is one piece of user content in an inference request: plain
// text, or an inline base64-encoded image tagged with its MIME type.
type MessagePart struct {
	Text        string
	ImageBase64 string
	MIMEType    string
}

// InferenceRequest is one request/response call to the language model
// provider. Model may be empty to use the client's configured default.
type InferenceRequest struct {
	Model     string
	System    string
	UserParts []MessagePart
}

// InferenceResponse carries the extracted text content plus whatever
// usage/cost metadata the provider returned.
type InferenceResponse struct {
	Text  string
	Usage map[string]any
}

// InferenceClient reaches the language model provider.
type InferenceClient interface {
	Complete(ctx context.Context, req InferenceRequest) (InferenceResponse, error)
}

// SpanUpdate carries fields attached to an open span. Nil fields are left
// untouched.
type SpanUpdate struct {
	Output   any
	Metadata map[string]any
}

// TraceBackend is the telemetry sink behind the observability wrapper.
// Implementations must contain their own failures: a broken backend logs and
// keeps going, it never fails the operation it observes.
type TraceBackend interface {
	StartTrace(name string, metadata map[string]any) string
	StartSpan(traceID, name string, input any, metadata map[string]any) string
	UpdateSpan(spanID string, update SpanUpdate)
	EndSpan(spanID string)
	Flush(ctx context.Context)
}

// DocumentExtractor turns a scanned contract image into a structured document.
type DocumentExtractor interface {
	Extract(ctx context.Context, imagePath, sessionID, contractID string) (domain.Document, error)
}

// SectionAligner maps an original document's sections onto its amendment's.
type SectionAligner interface {
	Align(ctx context.Context, original, amendment domain.Document, sessionID, contractID string) (domain.AlignmentMapping, error)
}

// ChangeExtractor produces the validated change report for a document pair.
type ChangeExtractor interface {
	ExtractChanges(ctx context.Context, original, amendment domain.Document, mapping domain.AlignmentMapping, sessionID, contractID string) (domain.ChangeReport, error)
}
