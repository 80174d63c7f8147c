package schema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Type is the built-in Schema implementation. Types are immutable values;
// the fluent modifiers return copies.
type Type struct {
	shape Shape
}

// String declares a string schema.
func String() Type {
	return Type{shape: Shape{Kind: KindString}}
}

// Enum declares a string schema restricted to the given values.
func Enum(values ...string) Type {
	return Type{shape: Shape{Kind: KindString, Enum: values}}
}

// Number declares a floating-point number schema.
func Number() Type {
	return Type{shape: Shape{Kind: KindNumber}}
}

// Integer declares an integer schema.
func Integer() Type {
	return Type{shape: Shape{Kind: KindInteger}}
}

// Boolean declares a boolean schema.
func Boolean() Type {
	return Type{shape: Shape{Kind: KindBoolean}}
}

// Date declares a date-time schema. String values must be ISO-8601.
func Date() Type {
	return Type{shape: Shape{Kind: KindDate}}
}

// Array declares an array schema with the given element type.
func Array(elem Type) Type {
	es := elem.shape
	return Type{shape: Shape{Kind: KindArray, Elem: &es}}
}

// Object declares an object schema. Fields are sorted by name so that
// description and validation order are deterministic regardless of map
// iteration order.
func Object(fields map[string]Type) Type {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fs := make([]FieldShape, 0, len(names))
	for _, name := range names {
		fs = append(fs, FieldShape{Name: name, Shape: fields[name].shape})
	}
	return Type{shape: Shape{Kind: KindObject, Fields: fs}}
}

// Optional marks the type as omittable when used as an object field.
func (t Type) Optional() Type {
	t.shape.Optional = true
	return t
}

// Nullable allows an explicit null value.
func (t Type) Nullable() Type {
	t.shape.Nullable = true
	return t
}

// Desc attaches a human-readable description (surfaced in generated docs).
func (t Type) Desc(d string) Type {
	t.shape.Description = d
	return t
}

// Describe returns the type's shape metadata.
func (t Type) Describe() Shape {
	return t.shape
}

// Validate checks a value against the type. Unknown object fields are
// stripped from the returned value rather than rejected.
func (t Type) Validate(value any) (any, []Issue) {
	return validate(nil, t.shape, value)
}

// Ensure interface compliance.
var _ Schema = Type{}

// dateLayouts are accepted when parsing string-typed date values.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func validate(path []string, s Shape, v any) (any, []Issue) {
	if v == nil {
		if s.Nullable {
			return nil, nil
		}
		return nil, []Issue{{
			Path:     clonePath(path),
			Message:  "value must not be null",
			Expected: string(s.Kind),
			Received: "null",
		}}
	}

	switch s.Kind {
	case KindString:
		str, ok := v.(string)
		if !ok {
			return nil, typeIssue(path, s.Kind, v)
		}
		if len(s.Enum) > 0 && !containsString(s.Enum, str) {
			return nil, []Issue{{
				Path:     clonePath(path),
				Message:  fmt.Sprintf("must be one of: %s", strings.Join(s.Enum, ", ")),
				Expected: string(s.Kind),
				Received: kindOf(v),
			}}
		}
		return str, nil

	case KindNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
		return nil, typeIssue(path, s.Kind, v)

	case KindInteger:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n == math.Trunc(n) {
				return int64(n), nil
			}
		}
		return nil, typeIssue(path, s.Kind, v)

	case KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, typeIssue(path, s.Kind, v)
		}
		return b, nil

	case KindDate:
		switch d := v.(type) {
		case time.Time:
			return d, nil
		case string:
			for _, layout := range dateLayouts {
				if ts, err := time.Parse(layout, d); err == nil {
					return ts, nil
				}
			}
		}
		return nil, typeIssue(path, s.Kind, v)

	case KindArray:
		items, ok := v.([]any)
		if !ok {
			return nil, typeIssue(path, s.Kind, v)
		}
		var issues []Issue
		out := make([]any, 0, len(items))
		for i, item := range items {
			ev, eis := validate(append(path, strconv.Itoa(i)), *s.Elem, item)
			if len(eis) > 0 {
				issues = append(issues, eis...)
				continue
			}
			out = append(out, ev)
		}
		if len(issues) > 0 {
			return nil, issues
		}
		return out, nil

	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, typeIssue(path, s.Kind, v)
		}
		var issues []Issue
		out := make(map[string]any, len(s.Fields))
		for _, f := range s.Fields {
			fv, present := m[f.Name]
			if !present {
				if !f.Shape.Optional {
					issues = append(issues, Issue{
						Path:     clonePath(append(path, f.Name)),
						Message:  "required",
						Expected: string(f.Shape.Kind),
						Received: "undefined",
					})
				}
				continue
			}
			vv, fis := validate(append(path, f.Name), f.Shape, fv)
			if len(fis) > 0 {
				issues = append(issues, fis...)
				continue
			}
			out[f.Name] = vv
		}
		if len(issues) > 0 {
			return nil, issues
		}
		return out, nil
	}

	return nil, []Issue{{
		Path:     clonePath(path),
		Message:  fmt.Sprintf("unsupported schema kind %q", s.Kind),
		Received: kindOf(v),
	}}
}

func typeIssue(path []string, expected Kind, v any) []Issue {
	return []Issue{{
		Path:     clonePath(path),
		Message:  fmt.Sprintf("expected %s, received %s", expected, kindOf(v)),
		Expected: string(expected),
		Received: kindOf(v),
	}}
}

// kindOf names the wire kind of a decoded JSON value for error reporting.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case time.Time:
		return "date"
	}
	return fmt.Sprintf("%T", v)
}

func clonePath(path []string) []string {
	if len(path) == 0 {
		return []string{}
	}
	out := make([]string, len(path))
	copy(out, path)
	return out
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
