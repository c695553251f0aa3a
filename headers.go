package subagent

import (
	"bytes"
	"strconv"
)

const contentTypeJSON = "application/json"

// rpcHeaders returns the headers sent with every JSON-RPC payload.
func rpcHeaders(payloadLen int) map[string]string {
	return map[string]string{
		"Content-Type":   contentTypeJSON,
		"Content-Length": strconv.Itoa(payloadLen),
	}
}

// socketHeaderOrder is the exact header sequence written on a socket.
// Nothing else is sent: no chunked encoding, no keep-alive negotiation.
var socketHeaderOrder = []string{
	"Host",
	"Content-Type",
	"Content-Length",
}

// buildSocketRequest hand-frames an HTTP/1.1 POST for a socket peer.
func buildSocketRequest(path string, payload []byte) []byte {
	h := rpcHeaders(len(payload))
	h["Host"] = "localhost"

	var buf bytes.Buffer
	buf.Grow(64 + len(path) + len(payload))
	buf.WriteString("POST ")
	buf.WriteString(path)
	buf.WriteString(" HTTP/1.1\r\n")
	for _, k := range socketHeaderOrder {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(h[k])
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(payload)
	return buf.Bytes()
}
