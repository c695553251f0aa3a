package subagent

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoint is where a call is delivered: an HTTP(S) base URL or the
// filesystem path of a local Unix socket. The concrete type is decided
// once by ParseEndpoint.
type Endpoint interface {
	String() string
	endpoint()
}

// HTTPEndpoint is an http:// or https:// base URL.
type HTTPEndpoint struct {
	URL *url.URL
}

func (e HTTPEndpoint) String() string { return e.URL.String() }
func (HTTPEndpoint) endpoint()        {}

// resolve returns path resolved against the base URL.
func (e HTTPEndpoint) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	return e.URL.ResolveReference(ref), nil
}

// SocketEndpoint is the path of a Unix domain socket.
type SocketEndpoint struct {
	Path string
}

func (e SocketEndpoint) String() string { return e.Path }
func (SocketEndpoint) endpoint()        {}

// ParseEndpoint classifies raw by prefix. Anything that is not an
// http:// or https:// URL is treated as a socket path.
func ParseEndpoint(raw string) (Endpoint, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty endpoint")
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint url: %w", err)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("endpoint url %q has no host", raw)
		}
		return HTTPEndpoint{URL: u}, nil
	}
	return SocketEndpoint{Path: raw}, nil
}
