package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContractRedliner/internal/ports"
)

type recordedSpan struct {
	id       string
	traceID  string
	name     string
	input    any
	metadata map[string]any
	updates  []ports.SpanUpdate
	ended    bool
}

// recorderBackend is a test double capturing every backend call in order.
type recorderBackend struct {
	traces  []string
	spans   []*recordedSpan
	flushes int
}

func (r *recorderBackend) StartTrace(name string, _ map[string]any) string {
	id := "trace-" + name
	r.traces = append(r.traces, id)
	return id
}

func (r *recorderBackend) StartSpan(traceID, name string, input any, metadata map[string]any) string {
	span := &recordedSpan{
		id:       "span-" + name,
		traceID:  traceID,
		name:     name,
		input:    input,
		metadata: metadata,
	}
	r.spans = append(r.spans, span)
	return span.id
}

func (r *recorderBackend) UpdateSpan(spanID string, update ports.SpanUpdate) {
	if span := r.find(spanID); span != nil {
		span.updates = append(span.updates, update)
	}
}

func (r *recorderBackend) EndSpan(spanID string) {
	if span := r.find(spanID); span != nil {
		span.ended = true
	}
}

func (r *recorderBackend) Flush(context.Context) { r.flushes++ }

func (r *recorderBackend) find(spanID string) *recordedSpan {
	for _, span := range r.spans {
		if span.id == spanID {
			return span
		}
	}
	return nil
}

func TestStartCarriesMetadataBag(t *testing.T) {
	t.Parallel()

	backend := &recorderBackend{}
	tracer := New(backend)

	op := tracer.Start("agent_alignment",
		map[string]any{"original_sections": []string{"1"}},
		Metadata{
			SessionID:  "s-1",
			ContractID: "c-1",
			AgentName:  "AlignmentAgent",
			Extra:      map[string]any{"stage": "alignment"},
		})
	op.End(nil)

	require.Len(t, backend.spans, 1)
	span := backend.spans[0]
	assert.Equal(t, "agent_alignment", span.name)
	assert.Equal(t, "trace-agent_alignment", span.traceID)
	assert.Equal(t, map[string]any{"original_sections": []string{"1"}}, span.input)
	assert.Equal(t, "s-1", span.metadata["session_id"])
	assert.Equal(t, "c-1", span.metadata["contract_id"])
	assert.Equal(t, "AlignmentAgent", span.metadata["agent_name"])
	assert.Equal(t, "alignment", span.metadata["stage"])
}

func TestEndRecordsLatencyClosesAndFlushes(t *testing.T) {
	t.Parallel()

	backend := &recorderBackend{}
	op := New(backend).Start("image_parsing", nil, Metadata{SessionID: "s"})
	op.End(nil)

	span := backend.spans[0]
	require.True(t, span.ended)
	assert.Equal(t, 1, backend.flushes)

	require.NotEmpty(t, span.updates)
	final := span.updates[len(span.updates)-1]
	require.NotNil(t, final.Metadata)
	latency, ok := final.Metadata["latency_ms"].(int64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, latency, int64(0))
	assert.Equal(t, "s", final.Metadata["session_id"])
	assert.Nil(t, final.Output)
}

func TestEndRecordsErrorAsOutput(t *testing.T) {
	t.Parallel()

	backend := &recorderBackend{}
	op := New(backend).Start("agent_change_extraction", nil, Metadata{})
	op.End(errors.New("model returned prose"))

	span := backend.spans[0]
	require.True(t, span.ended)
	assert.Equal(t, 1, backend.flushes)

	final := span.updates[len(span.updates)-1]
	assert.Equal(t, map[string]any{"error": "model returned prose"}, final.Output)
}

func TestEndIsIdempotent(t *testing.T) {
	t.Parallel()

	backend := &recorderBackend{}
	op := New(backend).Start("validation", nil, Metadata{})
	op.End(nil)
	op.End(errors.New("late failure"))

	span := backend.spans[0]
	assert.Len(t, span.updates, 1)
	assert.Equal(t, 1, backend.flushes)
}

func TestSetOutputAndUsage(t *testing.T) {
	t.Parallel()

	backend := &recorderBackend{}
	op := New(backend).Start("image_parsing", nil, Metadata{})

	op.AddUsage(nil) // empty usage is dropped, not recorded
	op.SetOutput(map[string]any{"num_sections": 3})
	op.AddUsage(map[string]any{"input_tokens": 100})
	op.End(nil)

	span := backend.spans[0]
	require.Len(t, span.updates, 3)
	assert.Equal(t, map[string]any{"num_sections": 3}, span.updates[0].Output)
	assert.Equal(t, map[string]any{"usage": map[string]any{"input_tokens": 100}}, span.updates[1].Metadata)
}
