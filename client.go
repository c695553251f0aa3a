package subagent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// tweetRequestID is the fixed id of every outbound request; one request
// is in flight per call, so ids never need to be matched.
const tweetRequestID = 1

// Poster posts a tweet and returns the subagent's result.
type Poster interface {
	PostTweet(ctx context.Context, text string) (Result, error)
}

// Client is the subagent facade: it builds JSON-RPC calls, delegates
// delivery to a Sender and unwraps the result/error envelope.
type Client struct {
	sender   Sender
	endpoint Endpoint
	path     string
	creds    Credentials
	logger   *slog.Logger
}

// NewClient creates a subagent client.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()

	ep, err := ParseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("subagent endpoint: %w", err)
	}
	return &Client{
		sender:   cfg.Sender,
		endpoint: ep,
		path:     cfg.Path,
		creds:    cfg.Credentials,
		logger:   cfg.Logger,
	}, nil
}

// Endpoint returns the endpoint calls are delivered to.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// PostTweet asks the subagent to post text verbatim and returns its
// result, usually an attestation report or tweet identifier.
func (c *Client) PostTweet(ctx context.Context, text string) (Result, error) {
	c.logger.Info("subagent: send tweet", slog.String("text", text))
	result, err := c.Call(ctx, "tweet", c.creds.tweetParams(text))
	if err != nil {
		return nil, fmt.Errorf("tweet: %w", err)
	}
	return result, nil
}

// Call invokes method with a single positional params object. A populated
// error field yields *UpstreamError; the result is returned as-is.
func (c *Client) Call(ctx context.Context, method string, params any) (Result, error) {
	payload, err := encodeRequest(Request{
		JSONRPC: jsonRPCVersion,
		ID:      tweetRequestID,
		Method:  method,
		Params:  []any{params},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	resp, err := c.sender.Send(ctx, c.endpoint, c.path, payload)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, &UpstreamError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if len(resp.Result) == 0 {
		return nil, &ParseError{Err: errors.New("response has neither result nor error")}
	}
	return resp.Result, nil
}
