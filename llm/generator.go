// Package llm provides the text-generation capability used to compose
// posts: an interface, an OpenAI-compatible chat implementation and a
// static implementation for pre-written text.
package llm

import (
	"context"
	"encoding/json"
)

// ModelClass selects a model size without naming a vendor model.
type ModelClass string

const (
	ModelSmall ModelClass = "small"
	ModelLarge ModelClass = "large"
)

// Request asks for one JSON object matching Schema.
type Request struct {
	Prompt     string
	Schema     json.RawMessage // JSON Schema of the expected object
	Stop       []string
	ModelClass ModelClass
}

// Generator abstracts text-generation backends (OpenAI-compatible APIs,
// local models, fixtures).
type Generator interface {
	// GenerateObject returns the raw JSON object produced for req. The
	// caller validates it against req.Schema.
	GenerateObject(ctx context.Context, req Request) (json.RawMessage, error)
}

// Static always produces {"text": Text}.
type Static struct {
	Text string
}

// GenerateObject implements Generator.
func (s Static) GenerateObject(context.Context, Request) (json.RawMessage, error) {
	return json.Marshal(struct {
		Text string `json:"text"`
	}{s.Text})
}
