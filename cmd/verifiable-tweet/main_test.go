package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credentialEnv = []string{
	"TWITTER_CONSUMER_KEY",
	"TWITTER_CONSUMER_SECRET",
	"TWITTER_ACCESS_TOKEN",
	"TWITTER_ACCESS_TOKEN_SECRET",
	"TWITTER_SUBAGENT_URL",
}

func clearEnv(t *testing.T) {
	for _, name := range credentialEnv {
		t.Setenv(name, "")
	}
}

func writeCredentials(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
TWITTER_CONSUMER_KEY: ck
TWITTER_CONSUMER_SECRET: cs
TWITTER_ACCESS_TOKEN: at
TWITTER_ACCESS_TOKEN_SECRET: ats
`), 0o600))
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_MissingSettings(t *testing.T) {
	clearEnv(t)
	err := run(Opts{Text: "gm", Timeout: time.Second}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verifiable-twitter not configured")
	assert.Contains(t, err.Error(), "TWITTER_ACCESS_TOKEN_SECRET")
}

func TestRun_DryRun(t *testing.T) {
	clearEnv(t)
	err := run(Opts{
		Settings: writeCredentials(t),
		Endpoint: "http://127.0.0.1:1",
		DryRun:   "TRUE",
		Text:     "gm",
		Timeout:  time.Second,
	}, quietLogger())
	assert.NoError(t, err)
}

func TestRun_Posts(t *testing.T) {
	clearEnv(t)
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Params []struct {
				ConsumerKey string `json:"consumer_key"`
				Text        string `json:"text"`
			} `json:"params"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Params, 1) {
			assert.Equal(t, "ck", req.Params[0].ConsumerKey)
			got = req.Params[0].Text
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"report"}`))
	}))
	defer ts.Close()

	err := run(Opts{
		Settings: writeCredentials(t),
		Endpoint: ts.URL,
		Text:     "gm from the cli",
		Attempts: 1,
		Timeout:  5 * time.Second,
	}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "gm from the cli", got)
}

func TestRun_UpstreamError(t *testing.T) {
	clearEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"duplicate"}}`))
	}))
	defer ts.Close()

	err := run(Opts{Settings: writeCredentials(t), Endpoint: ts.URL, Text: "gm", Timeout: 5 * time.Second}, quietLogger())
	assert.EqualError(t, err, "tweet was not posted")
}
