// Package tracing wraps units of work in trace spans: input snapshot,
// output, latency, and a metadata bag threading the session and contract
// identifiers through every stage.
package tracing

import (
	"context"
	"time"

	"ContractRedliner/internal/ports"
)

// Metadata identifies the run and the stage an operation belongs to.
type Metadata struct {
	SessionID  string
	ContractID string
	AgentName  string
	Extra      map[string]any
}

func (m Metadata) bag() map[string]any {
	md := map[string]any{}
	if m.SessionID != "" {
		md["session_id"] = m.SessionID
	}
	if m.ContractID != "" {
		md["contract_id"] = m.ContractID
	}
	if m.AgentName != "" {
		md["agent_name"] = m.AgentName
	}
	for k, v := range m.Extra {
		md[k] = v
	}
	return md
}

// Tracer opens traced operations against a backend selected once at startup.
// The backend is the only process-wide telemetry state; it is passed in, not
// reached for globally, so tests substitute a double without env mutation.
type Tracer struct {
	backend ports.TraceBackend
}

// New builds a tracer over the given backend.
func New(backend ports.TraceBackend) *Tracer {
	return &Tracer{backend: backend}
}

// Start opens a trace with one span under it and starts the latency clock.
// The caller must End the returned operation on every path.
func (t *Tracer) Start(name string, input any, meta Metadata) *Operation {
	md := meta.bag()
	traceID := t.backend.StartTrace(name, md)
	spanID := t.backend.StartSpan(traceID, name, input, md)
	return &Operation{
		backend:  t.backend,
		spanID:   spanID,
		metadata: md,
		started:  time.Now(),
	}
}

// Operation is one scoped traced unit of work.
type Operation struct {
	backend  ports.TraceBackend
	spanID   string
	metadata map[string]any
	started  time.Time
	ended    bool
}

// SetOutput attaches an output snapshot to the span. May be called more than
// once; the latest value wins.
func (op *Operation) SetOutput(output any) {
	op.backend.UpdateSpan(op.spanID, ports.SpanUpdate{Output: output})
}

// AddUsage attaches provider usage/cost figures to the span metadata.
func (op *Operation) AddUsage(usage map[string]any) {
	if len(usage) == 0 {
		return
	}
	op.backend.UpdateSpan(op.spanID, ports.SpanUpdate{
		Metadata: map[string]any{"usage": usage},
	})
}

// End closes the operation: latency is recorded into the metadata, a failure
// is recorded as the span output, the span is closed, and buffered telemetry
// is flushed synchronously so an immediately-exiting process loses nothing.
// The error is recorded, never altered; callers still propagate it themselves.
func (op *Operation) End(err error) {
	if op.ended {
		return
	}
	op.ended = true

	md := map[string]any{}
	for k, v := range op.metadata {
		md[k] = v
	}
	md["latency_ms"] = time.Since(op.started).Milliseconds()

	update := ports.SpanUpdate{Metadata: md}
	if err != nil {
		update.Output = map[string]any{"error": err.Error()}
	}
	op.backend.UpdateSpan(op.spanID, update)
	op.backend.EndSpan(op.spanID)
	op.backend.Flush(context.Background())
}
