package subagent

import (
	"bytes"
	"strconv"
	"strings"
)

var headerTerminator = []byte("\r\n\r\n")

type framerState int

const (
	stateAwaitingHeaders framerState = iota
	stateReadingBody
	stateComplete
)

// responseFramer incrementally frames an HTTP/1.1 response read from a
// raw stream. Bytes are appended to a single buffer; the header search
// resumes where the previous chunk left off instead of rescanning.
//
// Only Content-Length framing is understood. A missing or invalid
// Content-Length means an empty body, and the response is complete as
// soon as the header block ends.
type responseFramer struct {
	buf   []byte
	state framerState

	scanned       int // prefix of buf known not to contain the header terminator
	bodyStart     int
	contentLength int
	headers       map[string]string
}

// Feed appends chunk and reports whether the body is complete. Data fed
// after completion is ignored.
func (f *responseFramer) Feed(chunk []byte) bool {
	if f.state == stateComplete {
		return true
	}
	f.buf = append(f.buf, chunk...)

	if f.state == stateAwaitingHeaders {
		// The terminator may straddle the previous chunk boundary.
		from := max(0, f.scanned-len(headerTerminator)+1)
		idx := bytes.Index(f.buf[from:], headerTerminator)
		if idx < 0 {
			f.scanned = len(f.buf)
			return false
		}
		end := from + idx
		f.headers = parseHeaderBlock(f.buf[:end])
		f.contentLength = parseContentLength(f.headers["content-length"])
		f.bodyStart = end + len(headerTerminator)
		f.state = stateReadingBody
	}

	if len(f.buf)-f.bodyStart >= f.contentLength {
		f.state = stateComplete
	}
	return f.state == stateComplete
}

// Complete reports whether the declared body has been fully buffered.
func (f *responseFramer) Complete() bool { return f.state == stateComplete }

// Header returns a response header by lower-cased name.
func (f *responseFramer) Header(name string) string {
	return f.headers[strings.ToLower(name)]
}

// Body returns at most content-length buffered body bytes. Before the
// header block ends there is no body.
func (f *responseFramer) Body() []byte {
	if f.state == stateAwaitingHeaders {
		return nil
	}
	body := f.buf[f.bodyStart:]
	if len(body) > f.contentLength {
		body = body[:f.contentLength]
	}
	return body
}

// Buffered returns the number of bytes received so far.
func (f *responseFramer) Buffered() int { return len(f.buf) }

// parseHeaderBlock splits header lines on ": ". Lines without exactly one
// separator, including the status line, are skipped.
func parseHeaderBlock(block []byte) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(string(block), "\r\n") {
		if strings.Count(line, ": ") != 1 {
			continue
		}
		key, value, _ := strings.Cut(line, ": ")
		if key == "" || value == "" {
			continue
		}
		headers[strings.ToLower(key)] = value
	}
	return headers
}

func parseContentLength(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
