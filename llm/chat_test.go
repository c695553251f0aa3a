package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatGenerator_GenerateObject(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model    string        `json:"model"`
			Messages []chatMessage `json:"messages"`
			Stop     []string      `json:"stop"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tiny", req.Model)
		assert.Equal(t, []string{"\n"}, req.Stop)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[0].Content, `"required":["text"]`)
		assert.Equal(t, "write a tweet", req.Messages[1].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"text\":\"gm\"}"}}]}`))
	}))
	defer ts.Close()

	g := NewChatGenerator(ChatConfig{APIKey: "sk-test", BaseURL: ts.URL + "/v1/", SmallModel: "tiny"})
	obj, err := g.GenerateObject(context.Background(), Request{
		Prompt:     "write a tweet",
		Schema:     json.RawMessage(`{"type":"object","required":["text"]}`),
		Stop:       []string{"\n"},
		ModelClass: ModelSmall,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"gm"}`, string(obj))
}

func TestChatGenerator_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer ts.Close()

	g := NewChatGenerator(ChatConfig{BaseURL: ts.URL})
	_, err := g.GenerateObject(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestChatGenerator_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	_, err := NewChatGenerator(ChatConfig{BaseURL: ts.URL}).GenerateObject(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"bare", `{"text":"hi"}`, `{"text":"hi"}`, false},
		{"fenced", "```json\n{\"text\":\"hi\"}\n```", `{"text":"hi"}`, false},
		{"prose", `Sure! {"text":"hi"} Enjoy.`, `{"text":"hi"}`, false},
		{"none", "no json here", "", true},
		{"broken", `{"text":`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestStatic(t *testing.T) {
	obj, err := Static{Text: `say "gm"`}.GenerateObject(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"say \"gm\""}`, string(obj))
}
