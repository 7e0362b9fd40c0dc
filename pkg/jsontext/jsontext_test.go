package jsontext

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainJSON(t *testing.T) {
	t.Parallel()

	raw, err := Extract(`{"a": 1, "b": "two"}`)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, map[string]any{"a": float64(1), "b": "two"}, got)
}

func TestExtractFencedRoundTrip(t *testing.T) {
	t.Parallel()

	payload := `{"aligned_sections": [{"original_id": "1", "amendment_id": "1", "relation": "modified"}], "structural_notes": "ok"}`

	fenced := "```json\n" + payload + "\n```"
	fromFenced, err := Extract(fenced)
	require.NoError(t, err)

	fromPlain, err := Extract(payload)
	require.NoError(t, err)

	var a, b map[string]any
	require.NoError(t, json.Unmarshal(fromFenced, &a))
	require.NoError(t, json.Unmarshal(fromPlain, &b))
	assert.Equal(t, b, a)
}

func TestExtractIsIdempotent(t *testing.T) {
	t.Parallel()

	fenced := "```json\n{\"x\": true}\n```"
	once, err := Extract(fenced)
	require.NoError(t, err)

	twice, err := Extract(string(once))
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestExtractUntaggedFence(t *testing.T) {
	t.Parallel()

	raw, err := Extract("```\n[1, 2, 3]\n```")
	require.NoError(t, err)
	assert.JSONEq(t, "[1,2,3]", string(raw))
}

func TestExtractFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "whitespace only", content: "   \n\t  "},
		{name: "fenced but empty", content: "```json\n```"},
		{name: "bare fences", content: "``````"},
		{name: "malformed JSON", content: `{"a": `},
		{name: "fenced malformed JSON", content: "```json\n{\"a\": \n```"},
		{name: "prose", content: "I could not read the document."},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Extract(tc.content)
			assert.Error(t, err)
		})
	}
}
