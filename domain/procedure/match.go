package procedure

import (
	"errors"
	"net/url"
	"strings"
)

// Matching failures. ErrMethodNotSupported means some template matched the
// path but under a different method, which maps to 405 rather than 404.
var (
	ErrNotFound           = errors.New("no procedure matched path")
	ErrMethodNotSupported = errors.New("path matched but method not supported")
)

// Match is the result of resolving an inbound method and path against the
// table: the matched procedure plus the raw (percent-decoded) placeholder
// values captured from the path.
type Match struct {
	Proc       *Procedure
	PathParams map[string]string
}

// Match resolves method+path against the table. Matching is deterministic:
// table construction already rejected overlapping templates, so at most
// one enabled entry can match. Disabled procedures are invisible.
func (t *Table) Match(method, rawPath string) (*Match, error) {
	segments := splitRequestPath(rawPath)
	method = strings.ToUpper(method)

	pathMatched := false
	for i := range t.entries {
		e := &t.entries[i]
		if e.Proc.Disabled {
			continue
		}
		params, ok := e.Tmpl.Match(segments)
		if !ok {
			continue
		}
		if e.Proc.Method != method {
			pathMatched = true
			continue
		}
		return &Match{Proc: &e.Proc, PathParams: params}, nil
	}

	if pathMatched {
		return nil, ErrMethodNotSupported
	}
	return nil, ErrNotFound
}

// splitRequestPath normalizes an inbound path for matching: the query
// string is stripped, a single trailing slash is ignored, and each segment
// is percent-decoded. Case is preserved here; literal comparison happens
// case-insensitively in Template.Match so captured placeholder values stay
// verbatim.
func splitRequestPath(rawPath string) []string {
	if i := strings.IndexByte(rawPath, '?'); i >= 0 {
		rawPath = rawPath[:i]
	}
	rawPath = strings.TrimPrefix(rawPath, "/")
	rawPath = strings.TrimSuffix(rawPath, "/")
	if rawPath == "" {
		return nil
	}

	parts := strings.Split(rawPath, "/")
	for i, part := range parts {
		if decoded, err := url.PathUnescape(part); err == nil {
			parts[i] = decoded
		}
	}
	return parts
}
