// Package llm wraps the text-completion providers behind one small client
// interface and owns the prompt templates for content generation and
// relevance scoring.
package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// requestTimeout bounds every provider round-trip. The providers have no
// default client-side timeout and a hung call would stall the whole session.
const requestTimeout = 30 * time.Second

// Message is one turn of conversation context sent to the provider.
type Message struct {
	Role    string
	Content string
}

// Client is the text-completion oracle. Implementations must treat the
// returned text as opaque; callers that expect JSON go through DecodeJSON.
type Client interface {
	Complete(ctx context.Context, system string, messages []Message, maxTokens int) (string, error)
}

// CleanJSON strips markdown code fences and surrounding prose from a model
// response, leaving the outermost JSON object or array.
func CleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around the JSON.
	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return content
	}
	end := strings.LastIndex(content, "}")
	if content[start] == '[' {
		end = strings.LastIndex(content, "]")
	}
	if end > start {
		content = content[start : end+1]
	}
	return content
}

// DecodeJSON is the single path from free-form oracle text to a typed value.
func DecodeJSON(content string, v any) error {
	return json.Unmarshal([]byte(CleanJSON(content)), v)
}
