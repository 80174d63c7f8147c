package procedure

import (
	"fmt"
	"regexp"
	"strings"
)

// Segment is one piece of a parsed path template: either a literal that
// must match case-insensitively, or a named placeholder matching any
// single non-empty segment.
type Segment struct {
	Literal string // lower-cased literal; empty when Param is set
	Param   string // placeholder name; empty for literals
}

// Template is a parsed path template such as /say-hello/{name}.
type Template struct {
	Raw      string
	Segments []Segment
}

var paramNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseTemplate parses and validates a path template. Templates must start
// with a slash; placeholders must span a whole segment and be unique
// within the template. No wildcard or catch-all segments exist.
func ParseTemplate(raw string) (Template, error) {
	if raw == "" || raw[0] != '/' {
		return Template{}, fmt.Errorf("path template %q must start with /", raw)
	}

	// A single trailing slash is equivalent to none.
	trimmed := strings.TrimSuffix(raw, "/")
	if trimmed == "" {
		return Template{Raw: raw}, nil
	}

	parts := strings.Split(trimmed[1:], "/")
	segments := make([]Segment, 0, len(parts))
	seen := make(map[string]bool)

	for _, part := range parts {
		switch {
		case part == "":
			return Template{}, fmt.Errorf("path template %q contains an empty segment", raw)

		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name := part[1 : len(part)-1]
			if !paramNameRe.MatchString(name) {
				return Template{}, fmt.Errorf("path template %q has invalid placeholder name %q", raw, name)
			}
			if seen[name] {
				return Template{}, fmt.Errorf("path template %q declares placeholder %q twice", raw, name)
			}
			seen[name] = true
			segments = append(segments, Segment{Param: name})

		case strings.ContainsAny(part, "{}"):
			return Template{}, fmt.Errorf("path template %q: placeholders must span a whole segment", raw)

		default:
			segments = append(segments, Segment{Literal: strings.ToLower(part)})
		}
	}

	return Template{Raw: raw, Segments: segments}, nil
}

// Params returns the placeholder names in declaration order.
func (t Template) Params() []string {
	var names []string
	for _, s := range t.Segments {
		if s.Param != "" {
			names = append(names, s.Param)
		}
	}
	return names
}

// Match matches already-normalized request segments against the template,
// capturing placeholder values. Literals compare case-insensitively;
// placeholders match any single non-empty segment.
func (t Template) Match(segments []string) (map[string]string, bool) {
	if len(segments) != len(t.Segments) {
		return nil, false
	}
	params := make(map[string]string)
	for i, ts := range t.Segments {
		seg := segments[i]
		if ts.Param != "" {
			if seg == "" {
				return nil, false
			}
			params[ts.Param] = seg
			continue
		}
		if strings.ToLower(seg) != ts.Literal {
			return nil, false
		}
	}
	return params, true
}

// Overlaps reports whether two templates can structurally match the same
// concrete path: equal segment counts where each position is either an
// equal pair of literals or involves at least one placeholder.
func (t Template) Overlaps(o Template) bool {
	if len(t.Segments) != len(o.Segments) {
		return false
	}
	for i := range t.Segments {
		a, b := t.Segments[i], o.Segments[i]
		if a.Param != "" || b.Param != "" {
			continue
		}
		if a.Literal != b.Literal {
			return false
		}
	}
	return true
}
