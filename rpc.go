package subagent

import (
	"bytes"
	"encoding/json"
)

const jsonRPCVersion = "2.0"

// Request is a JSON-RPC 2.0 request. Params always carries a single
// positional parameter object.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Response is a JSON-RPC 2.0 response. A well-formed server populates
// exactly one of Result and Error. ID is kept raw: servers may echo it as
// a string or a float, and only one call is ever in flight.
type Response struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id"`
	Result  Result          `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Result is the raw JSON result of a call, kept as-is.
type Result json.RawMessage

// MarshalJSON returns r verbatim, or null when empty.
func (r Result) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON keeps a copy of the raw value.
func (r *Result) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// String renders a JSON string result unquoted and anything else verbatim.
// Attestation reports and tweet identifiers are usually strings.
func (r Result) String() string {
	raw := bytes.TrimSpace(r)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	return string(raw)
}

// Decode unmarshals the result into v.
func (r Result) Decode(v any) error {
	return json.Unmarshal(r, v)
}

// TweetParams is the single parameter object of the "tweet" method.
type TweetParams struct {
	ConsumerKey       string `json:"consumer_key"`
	ConsumerSecret    string `json:"consumer_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
	Text              string `json:"text"`
}

// encodeRequest serializes req without HTML escaping so text reaches the
// subagent exactly as written.
func encodeRequest(req Request) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// decodeResponse parses a full response body into a Response.
func decodeResponse(body []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Body: body, Err: err}
	}
	return &resp, nil
}
