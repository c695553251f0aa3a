package subagent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/google/uuid"
)

const (
	// requestTimeout bounds every call from invocation to settlement.
	requestTimeout = 30 * time.Second

	// maxResponseSize caps how much of a response body is buffered.
	maxResponseSize = 256 << 20

	readChunkSize = 32 << 10
)

// Sender delivers one serialized JSON-RPC payload and returns the parsed
// response. *Transport is the production implementation.
type Sender interface {
	Send(ctx context.Context, endpoint Endpoint, path string, payload []byte) (*Response, error)
}

// Transport sends JSON-RPC payloads over HTTP(S) or a Unix socket. Every
// call owns its own timer and connection; nothing is pooled or shared,
// so a Transport is safe for concurrent use.
type Transport struct {
	httpClient *http.Client
	dialer     net.Dialer
	timeout    time.Duration
	logger     *slog.Logger
}

// NewTransport creates a Transport. A nil logger means slog.Default().
func NewTransport(logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
		},
		timeout: requestTimeout,
		logger:  logger,
	}
}

// Send delivers payload to path on endpoint. It settles exactly once,
// with a *Response or an error whose KindOf is Transport, Timeout,
// Parse or Aborted.
func (t *Transport) Send(ctx context.Context, endpoint Endpoint, path string, payload []byte) (*Response, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, t.timeout, ErrTimeout)
	defer cancel()

	log := t.logger.With(slog.String("call", uuid.NewString()), slog.String("path", path))
	start := time.Now()

	var resp *Response
	var err error
	switch ep := endpoint.(type) {
	case HTTPEndpoint:
		log = log.With(slog.String("endpoint", stealth.MaskProxy(ep.String())))
		log.Debug("rpc send", slog.String("transport", "http"), slog.Int("bytes", len(payload)))
		resp, err = t.sendHTTP(ctx, ep, path, payload)
	case SocketEndpoint:
		log = log.With(slog.String("endpoint", ep.Path))
		log.Debug("rpc send", slog.String("transport", "unix"), slog.Int("bytes", len(payload)))
		resp, err = t.sendSocket(ctx, ep, path, payload)
	default:
		return nil, fmt.Errorf("unsupported endpoint type %T", endpoint)
	}

	if err != nil {
		log.Debug("rpc failed",
			slog.String("kind", KindOf(err).String()),
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("error", err))
		return nil, err
	}
	log.Debug("rpc done", slog.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// sendHTTP issues a single POST and decodes the whole body once the
// stream ends. The status code is not inspected: a JSON-RPC error body
// on a non-2xx response is still an answer.
func (t *Transport) sendHTTP(ctx context.Context, ep HTTPEndpoint, path string, payload []byte) (*Response, error) {
	u, err := ep.resolve(path)
	if err != nil {
		return nil, &TransportError{Op: "resolve path", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.ContentLength = int64(len(payload))

	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctxError(ctx)
		}
		return nil, &TransportError{Op: "post " + stealth.MaskProxy(u.String()), Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctxError(ctx)
		}
		return nil, &TransportError{Op: "read response", Err: err}
	}
	return decodeResponse(body)
}

// sendSocket writes a hand-framed HTTP/1.1 request to a Unix socket and
// frames the response by Content-Length.
func (t *Transport) sendSocket(ctx context.Context, ep SocketEndpoint, path string, payload []byte) (*Response, error) {
	conn, err := t.dialer.DialContext(ctx, "unix", ep.Path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctxError(ctx)
		}
		return nil, &TransportError{Op: "dial " + ep.Path, Err: err}
	}

	// Teardown runs once, either when the timer or caller cancels or when
	// the call returns. A blocked Read fails as soon as the conn closes.
	teardown := sync.OnceFunc(func() { _ = conn.Close() })
	stop := context.AfterFunc(ctx, teardown)
	defer func() {
		stop()
		teardown()
	}()

	if _, err := conn.Write(buildSocketRequest(path, payload)); err != nil {
		if ctx.Err() != nil {
			return nil, ctxError(ctx)
		}
		return nil, &TransportError{Op: "write " + ep.Path, Err: err}
	}

	var framer responseFramer
	chunk := make([]byte, readChunkSize)
	for !framer.Complete() {
		n, err := conn.Read(chunk)
		if n > 0 {
			framer.Feed(chunk[:n])
			if framer.Buffered() > maxResponseSize {
				return nil, &ParseError{Err: fmt.Errorf("response exceeds %d bytes", maxResponseSize)}
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctxError(ctx)
			}
			if errors.Is(err, io.EOF) {
				// Peer finished early; decode whatever body arrived.
				break
			}
			return nil, &TransportError{Op: "read " + ep.Path, Err: err}
		}
	}

	// Done sending and receiving.
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}
	return decodeResponse(framer.Body())
}
