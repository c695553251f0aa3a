package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TweetSchema is the JSON Schema the generator is asked to satisfy.
var TweetSchema = json.RawMessage(`{"type":"object","properties":{"text":{"type":"string","description":"The text of the tweet"}},"required":["text"]}`)

// ErrInvalidContent means generated output did not match TweetSchema.
var ErrInvalidContent = errors.New("invalid tweet content")

// TweetContent is the object the generator produces.
type TweetContent struct {
	Text string `json:"text"`
}

// parseTweetContent checks obj against TweetSchema: a JSON object with
// a non-empty string "text".
func parseTweetContent(obj json.RawMessage) (TweetContent, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(obj, &fields); err != nil {
		return TweetContent{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	raw, ok := fields["text"]
	if !ok {
		return TweetContent{}, fmt.Errorf("%w: missing text", ErrInvalidContent)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return TweetContent{}, fmt.Errorf("%w: text is not a string", ErrInvalidContent)
	}
	if strings.TrimSpace(text) == "" {
		return TweetContent{}, fmt.Errorf("%w: empty text", ErrInvalidContent)
	}
	return TweetContent{Text: text}, nil
}
