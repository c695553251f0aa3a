package subagent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"nil", nil, KindNone},
		{"plain", errors.New("boom"), KindNone},
		{"transport", &TransportError{Op: "dial", Err: io.ErrUnexpectedEOF}, KindTransport},
		{"wrapped transport", fmt.Errorf("tweet: %w", &TransportError{Op: "dial", Err: io.EOF}), KindTransport},
		{"timeout", ErrTimeout, KindTimeout},
		{"wrapped timeout", fmt.Errorf("tweet: %w", ErrTimeout), KindTimeout},
		{"parse", &ParseError{Body: []byte("x"), Err: errors.New("bad")}, KindParse},
		{"upstream", &UpstreamError{Code: -32000, Message: "nope"}, KindUpstream},
		{"wrapped upstream", fmt.Errorf("tweet: %w", &UpstreamError{Message: "nope"}), KindUpstream},
		{"aborted", fmt.Errorf("%w: %w", ErrAborted, context.Canceled), KindAborted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := KindOf(tt.err)
			if result != tt.expected {
				t.Fatalf("KindOf(%v) = %s, want %s", tt.err, result, tt.expected)
			}
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "upstream", KindUpstream.String())
	assert.Equal(t, "kind(42)", ErrorKind(42).String())
}

func TestErrorMessages(t *testing.T) {
	up := &UpstreamError{Code: 401, Message: "invalid token"}
	assert.Contains(t, up.Error(), "invalid token")

	pe := &ParseError{Body: []byte("not json"), Err: errors.New("invalid character")}
	assert.Contains(t, pe.Error(), "failed to parse response")
	assert.Contains(t, pe.Error(), "not json")

	te := &TransportError{Op: "dial /tmp/x.sock", Err: io.EOF}
	assert.Equal(t, "dial /tmp/x.sock: EOF", te.Error())
	assert.ErrorIs(t, te, io.EOF)
}

func TestCtxError(t *testing.T) {
	ctx, cancel := context.WithTimeoutCause(context.Background(), time.Millisecond, ErrTimeout)
	defer cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctxError(ctx), ErrTimeout)

	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	err := ctxError(ctx2)
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestTruncateBytes(t *testing.T) {
	assert.Equal(t, "abc", truncateBytes([]byte("abc"), 5))
	assert.Equal(t, "ab...", truncateBytes([]byte("abcdef"), 2))
}
