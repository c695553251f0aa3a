package subagent

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind categorizes a failed call for targeted handling by callers.
type ErrorKind int

const (
	KindNone      ErrorKind = iota
	KindTransport           // dial, write, read, DNS, reset
	KindTimeout             // the call-wide bound elapsed
	KindParse               // response body is not a JSON-RPC envelope
	KindUpstream            // subagent answered with a populated error
	KindAborted             // caller cancelled the context
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindParse:
		return "parse"
	case KindUpstream:
		return "upstream"
	case KindAborted:
		return "aborted"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var (
	// ErrTimeout is returned when a call does not settle within requestTimeout.
	ErrTimeout = errors.New("request timed out")

	// ErrAborted is returned when the caller's context is cancelled mid-call.
	ErrAborted = errors.New("request aborted")
)

// TransportError wraps a connection-level failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a response body that could not be decoded.
type ParseError struct {
	Body []byte
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v (body %q)", e.Err, truncateBytes(e.Body, 200))
}

func (e *ParseError) Unwrap() error { return e.Err }

// UpstreamError is a JSON-RPC error object returned by the subagent.
type UpstreamError struct {
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("subagent error %d: %s", e.Code, e.Message)
}

// KindOf inspects an error returned by this package and reports its kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var upstream *UpstreamError
	var parse *ParseError
	var transport *TransportError
	switch {
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrAborted):
		return KindAborted
	case errors.As(err, &upstream):
		return KindUpstream
	case errors.As(err, &parse):
		return KindParse
	case errors.As(err, &transport):
		return KindTransport
	}
	return KindNone
}

// ctxError maps a done context to the error the call should settle with.
// The call-wide timer is installed with ErrTimeout as its cause.
func ctxError(ctx context.Context) error {
	if cause := context.Cause(ctx); errors.Is(cause, ErrTimeout) {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %w", ErrAborted, ctx.Err())
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
