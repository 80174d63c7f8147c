// Package wire provides transport-agnostic request and response value
// types. Transport bindings translate their native request objects into a
// Request, hand it to the engine, and write the returned Response back out.
package wire

import (
	"net/http"
	"net/url"
)

// Request is the abstract request descriptor handed to the engine
// (value type, extracted from the transport's native request).
type Request struct {
	Method string
	Path   string // raw request path; a query string, if present, is ignored
	Query  url.Values

	// Headers uses canonical header names as keys.
	Headers map[string]string

	// Body is the raw request body; nil means no body was sent.
	Body []byte

	// Metadata (for logging)
	RemoteIP string
	TraceID  string
}

// Header returns a header value by name, case-insensitively.
func (r Request) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	if v, ok := r.Headers[name]; ok {
		return v
	}
	return r.Headers[http.CanonicalHeaderKey(name)]
}

// Response is the response descriptor produced by the engine (value type).
// The body is a JSON-serializable value, not pre-encoded bytes, so
// transport bindings control encoding.
type Response struct {
	Status  int
	Headers map[string]string
	Body    any
}
