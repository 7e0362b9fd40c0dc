// Package jsontext pulls JSON payloads out of language-model output text,
// tolerating markdown code fences around the payload.
package jsontext

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrEmpty reports content with nothing to parse.
var ErrEmpty = errors.New("empty content")

// ErrInvalid reports content that is not valid JSON after fence stripping.
var ErrInvalid = errors.New("content is not valid JSON")

// Extract returns the JSON payload embedded in content. Triple-backtick
// fences, optionally tagged "json", are stripped first. Extract is idempotent:
// running it over its own output yields the same payload.
func Extract(content string) (json.RawMessage, error) {
	c := strings.TrimSpace(content)
	if c == "" {
		return nil, ErrEmpty
	}
	if strings.HasPrefix(c, "```") {
		c = stripFences(c)
		if c == "" {
			return nil, errors.New("no content inside code fences")
		}
	}
	if !json.Valid([]byte(c)) {
		return nil, ErrInvalid
	}
	return json.RawMessage(c), nil
}

// stripFences returns the first non-empty segment between backtick fences,
// with a leading "json" language tag removed.
func stripFences(c string) string {
	for _, part := range strings.Split(c, "```") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "json") {
			if idx := strings.IndexByte(p, '\n'); idx >= 0 {
				p = strings.TrimSpace(p[idx+1:])
			} else {
				p = ""
			}
		}
		if p != "" {
			return p
		}
	}
	return ""
}
