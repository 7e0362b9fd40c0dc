// Package langfuse implements the telemetry backend boundary against the
// Langfuse ingestion API, plus an inert variant used when credentials are
// absent. Backend failures are logged and contained here: tracing must never
// fail the business operation it observes.
package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ContractRedliner/internal/config"
	"ContractRedliner/internal/ports"
)

const ingestionPath = "/api/public/ingestion"

// New selects the backend once at startup: a live client when both keys are
// configured, the inert no-op otherwise.
func New(cfg config.LangfuseConfig, logger *slog.Logger) ports.TraceBackend {
	if !cfg.Enabled() {
		logger.Warn("langfuse keys not configured, tracing disabled")
		return Noop{}
	}
	return NewClient(cfg, logger)
}

// Client buffers trace events in memory and ships them to Langfuse in
// batches. Event recording never fails; delivery problems surface only in
// Flush, where they are logged and dropped.
type Client struct {
	baseURL    string
	publicKey  string
	secretKey  string
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	pending []event
	traces  map[string]string // span id -> trace id, required by span updates
}

var _ ports.TraceBackend = (*Client)(nil)

// NewClient builds a live backend from configuration.
func NewClient(cfg config.LangfuseConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		publicKey:  cfg.PublicKey,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		traces:     map[string]string{},
	}
}

type event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Body      map[string]any `json:"body"`
}

// StartTrace queues a trace-create event and returns the new trace id.
func (c *Client) StartTrace(name string, metadata map[string]any) string {
	traceID := uuid.NewString()
	body := map[string]any{
		"id":       traceID,
		"name":     name,
		"metadata": metadata,
	}
	if sessionID, ok := metadata["session_id"]; ok {
		body["sessionId"] = sessionID
	}
	c.enqueue("trace-create", body)
	return traceID
}

// StartSpan queues a span-create event under the given trace.
func (c *Client) StartSpan(traceID, name string, input any, metadata map[string]any) string {
	spanID := uuid.NewString()

	c.mu.Lock()
	c.traces[spanID] = traceID
	c.mu.Unlock()

	c.enqueue("span-create", map[string]any{
		"id":        spanID,
		"traceId":   traceID,
		"name":      name,
		"input":     input,
		"metadata":  metadata,
		"startTime": now(),
	})
	return spanID
}

// UpdateSpan queues a span-update event with the provided fields.
func (c *Client) UpdateSpan(spanID string, update ports.SpanUpdate) {
	body := map[string]any{"id": spanID, "traceId": c.traceFor(spanID)}
	if update.Output != nil {
		body["output"] = update.Output
	}
	if update.Metadata != nil {
		body["metadata"] = update.Metadata
	}
	c.enqueue("span-update", body)
}

// EndSpan queues a span-update event closing the span.
func (c *Client) EndSpan(spanID string) {
	c.enqueue("span-update", map[string]any{
		"id":      spanID,
		"traceId": c.traceFor(spanID),
		"endTime": now(),
	})
}

// Flush ships all buffered events in one ingestion batch. Failures are
// logged and the batch is dropped; the caller is never failed.
func (c *Client) Flush(ctx context.Context) {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	body, err := json.Marshal(map[string]any{"batch": batch})
	if err != nil {
		c.logger.Warn("marshal telemetry batch", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ingestionPath, bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("build telemetry request", "error", err)
		return
	}
	req.SetBasicAuth(c.publicKey, c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("ship telemetry batch", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("telemetry batch rejected",
			"status", resp.Status,
			"body", strings.TrimSpace(string(payload)),
			"events", len(batch))
	}
}

func (c *Client) enqueue(eventType string, body map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: now(),
		Body:      body,
	})
}

func (c *Client) traceFor(spanID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.traces[spanID]
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
