package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ContractRedliner/internal/config"
	"ContractRedliner/internal/domain"
	"ContractRedliner/internal/ports"
)

// Client implements ports.InferenceClient against the OpenAI responses API.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.InferenceClient = (*Client)(nil)

// NewClient builds a client from configuration. The API key is required and
// checked here so a misconfigured run fails before any network call.
func NewClient(cfg config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", domain.ErrMissingCredential)
	}
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type requestPayload struct {
	Model string    `json:"model"`
	Input []message `json:"input"`
}

// responseEnvelope covers the response shapes the API is known to produce: a
// convenience top-level output_text, or a nested output/content array. Text
// extraction falls back to the raw body when neither carries content.
type responseEnvelope struct {
	OutputText string         `json:"output_text"`
	Output     []outputItem   `json:"output"`
	Usage      map[string]any `json:"usage"`
}

type outputItem struct {
	Content []outputContent `json:"content"`
}

type outputContent struct {
	Text string `json:"text"`
}

func (e responseEnvelope) text(raw []byte) string {
	if e.OutputText != "" {
		return e.OutputText
	}
	for _, item := range e.Output {
		for _, part := range item.Content {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return string(raw)
}

// Complete posts one request to the responses endpoint and extracts the text
// content and usage metadata from the reply.
func (c *Client) Complete(ctx context.Context, req ports.InferenceRequest) (ports.InferenceResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	body, err := json.Marshal(requestPayload{
		Model: model,
		Input: buildMessages(req),
	})
	if err != nil {
		return ports.InferenceResponse{}, fmt.Errorf("marshal inference payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.InferenceResponse{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ports.InferenceResponse{}, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return ports.InferenceResponse{}, fmt.Errorf("inference error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.InferenceResponse{}, fmt.Errorf("read response body: %w", err)
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Not the envelope we know; hand the raw body to the caller's parser.
		return ports.InferenceResponse{Text: string(raw)}, nil
	}

	return ports.InferenceResponse{
		Text:  envelope.text(raw),
		Usage: envelope.Usage,
	}, nil
}

func buildMessages(req ports.InferenceRequest) []message {
	messages := make([]message, 0, 2)
	if req.System != "" {
		messages = append(messages, message{Role: "system", Content: req.System})
	}

	parts := make([]contentPart, 0, len(req.UserParts))
	for _, p := range req.UserParts {
		if p.ImageBase64 != "" {
			parts = append(parts, contentPart{
				Type:     "input_image",
				ImageURL: fmt.Sprintf("data:%s;base64,%s", p.MIMEType, p.ImageBase64),
			})
			continue
		}
		parts = append(parts, contentPart{Type: "input_text", Text: p.Text})
	}
	messages = append(messages, message{Role: "user", Content: parts})

	return messages
}
