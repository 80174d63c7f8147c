// Package schema provides runtime-introspectable input and output schemas.
// A Schema can describe its own shape (for document generation and wire
// extraction decisions) and validate a value against it.
package schema

// Kind represents the type of a schema node.
type Kind string

const (
	// Primitive kinds (representable as a single wire segment)
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"

	// Composite kinds
	KindArray  Kind = "array"
	KindObject Kind = "object"
)

// IsPrimitive reports whether values of this kind fit in a single
// path segment or query value.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindString, KindNumber, KindInteger, KindBoolean, KindDate:
		return true
	}
	return false
}

// Issue is a single field-level validation failure.
// Issues are caller-actionable and returned verbatim on the wire.
type Issue struct {
	Path     []string `json:"path"`
	Message  string   `json:"message"`
	Expected string   `json:"expected,omitempty"`
	Received string   `json:"received,omitempty"`
}

// Shape is the introspectable metadata of a schema node.
type Shape struct {
	Kind        Kind
	Optional    bool
	Nullable    bool
	Description string

	// Enum lists allowed values for string kind fields.
	Enum []string

	// Elem is the element shape for array kind.
	Elem *Shape

	// Fields holds object kind fields, sorted by name.
	Fields []FieldShape
}

// FieldShape is one named field of an object shape.
type FieldShape struct {
	Name  string
	Shape Shape
}

// Field returns the shape of a named object field.
func (s Shape) Field(name string) (Shape, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Shape, true
		}
	}
	return Shape{}, false
}

// Schema validates values against a declared shape.
// Implementations must be safe for concurrent use.
type Schema interface {
	// Describe returns the schema's shape metadata.
	Describe() Shape

	// Validate checks a value against the schema. On success it returns
	// the (possibly normalized) value and no issues. On failure the
	// returned issues are ordered deterministically by field.
	Validate(value any) (any, []Issue)
}
