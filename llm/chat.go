package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultSmallModel  = "gpt-4o-mini"
	defaultLargeModel  = "gpt-4o"
	defaultChatTimeout = 60 * time.Second
)

// ChatConfig configures a ChatGenerator.
type ChatConfig struct {
	APIKey string

	// BaseURL of an OpenAI-compatible API. Default: https://api.openai.com/v1
	BaseURL string

	SmallModel string
	LargeModel string

	// Timeout bounds each completion request. Default: 60s
	Timeout time.Duration

	Logger *slog.Logger
}

func (cfg *ChatConfig) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.SmallModel == "" {
		cfg.SmallModel = defaultSmallModel
	}
	if cfg.LargeModel == "" {
		cfg.LargeModel = defaultLargeModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultChatTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// ChatGenerator implements Generator with the /chat/completions API in
// JSON mode.
type ChatGenerator struct {
	cfg    ChatConfig
	client *http.Client
}

// NewChatGenerator creates a ChatGenerator.
func NewChatGenerator(cfg ChatConfig) *ChatGenerator {
	cfg.defaults()
	return &ChatGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateObject implements Generator.
func (g *ChatGenerator) GenerateObject(ctx context.Context, req Request) (json.RawMessage, error) {
	model := g.cfg.SmallModel
	if req.ModelClass == ModelLarge {
		model = g.cfg.LargeModel
	}

	system := "Respond with a single JSON object and nothing else."
	if len(req.Schema) > 0 {
		system += " The object must match this JSON Schema: " + string(req.Schema)
	}
	payload := map[string]any{
		"model": model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: req.Prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	}
	if len(req.Stop) > 0 {
		payload["stop"] = req.Stop
	}

	var resp struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := g.post(ctx, "/chat/completions", payload, &resp); err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("chat completion error %s: %s", resp.Error.Type, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: no choices in response")
	}

	content := resp.Choices[0].Message.Content
	obj, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}
	g.cfg.Logger.Debug("llm: object generated", slog.String("model", model), slog.Int("bytes", len(obj)))
	return obj, nil
}

// post sends a JSON POST request to the API and decodes the response.
func (g *ChatGenerator) post(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data[:min(200, len(data))]))
	}

	return json.Unmarshal(data, result)
}

// extractJSONObject pulls the outermost {...} out of model output, which
// may be wrapped in a markdown fence or surrounded by prose.
func extractJSONObject(content string) (json.RawMessage, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model output: %q", content[:min(200, len(content))])
	}
	obj := content[start : end+1]
	if !json.Valid([]byte(obj)) {
		return nil, fmt.Errorf("invalid JSON object in model output: %q", obj[:min(200, len(obj))])
	}
	return json.RawMessage(obj), nil
}
