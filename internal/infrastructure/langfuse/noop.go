package langfuse

import (
	"context"

	"ContractRedliner/internal/ports"
)

// Noop is the inert telemetry backend used when no credentials are
// configured. Every call has the same shape as the live client and does
// nothing, so callers carry no conditionals on telemetry availability.
type Noop struct{}

var _ ports.TraceBackend = Noop{}

func (Noop) StartTrace(string, map[string]any) string { return "" }

func (Noop) StartSpan(string, string, any, map[string]any) string { return "" }

func (Noop) UpdateSpan(string, ports.SpanUpdate) {}

func (Noop) EndSpan(string) {}

func (Noop) Flush(context.Context) {}
