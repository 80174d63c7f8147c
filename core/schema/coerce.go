package schema

import (
	"strconv"
	"time"
)

// Coerce attempts a best-effort conversion of raw wire strings toward the
// shape's kind before validation. Path segments, query values, and
// url-encoded body fields all arrive as strings; coercion turns "42" into
// an integer when the schema expects one.
//
// Coercion is advisory and never fails: a value that does not parse is
// returned unchanged so that validation reports the real type error with a
// consistent issue shape. Non-string values pass through untouched.
func Coerce(v any, s Shape) any {
	switch s.Kind {
	case KindArray:
		return coerceArray(v, s)

	case KindNumber:
		if str, ok := v.(string); ok {
			if n, err := strconv.ParseFloat(str, 64); err == nil {
				return n
			}
		}
		return v

	case KindInteger:
		if str, ok := v.(string); ok {
			if n, err := strconv.ParseInt(str, 10, 64); err == nil {
				return n
			}
		}
		return v

	case KindBoolean:
		// Case-sensitive on purpose: "True" is not a boolean on the wire.
		if str, ok := v.(string); ok {
			switch str {
			case "true":
				return true
			case "false":
				return false
			}
		}
		return v

	case KindDate:
		if str, ok := v.(string); ok {
			for _, layout := range dateLayouts {
				if ts, err := time.Parse(layout, str); err == nil {
					return ts
				}
			}
		}
		return v
	}

	return v
}

// coerceArray coerces repeated wire values element-wise.
func coerceArray(v any, s Shape) any {
	if s.Elem == nil {
		return v
	}
	switch items := v.(type) {
	case []any:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = Coerce(item, *s.Elem)
		}
		return out
	case []string:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = Coerce(item, *s.Elem)
		}
		return out
	}
	return v
}
