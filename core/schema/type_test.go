package schema_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/artpar/rpcgate/core/schema"
)

func TestValidate_Primitives(t *testing.T) {
	tests := []struct {
		name    string
		typ     schema.Type
		value   any
		want    any
		wantErr bool
	}{
		{"string ok", schema.String(), "hi", "hi", false},
		{"string rejects number", schema.String(), 3.0, nil, true},
		{"enum ok", schema.Enum("a", "b"), "b", "b", false},
		{"enum rejects other", schema.Enum("a", "b"), "c", nil, true},
		{"number float64", schema.Number(), 1.5, 1.5, false},
		{"number widens int", schema.Number(), 2, 2.0, false},
		{"number rejects string", schema.Number(), "1.5", nil, true},
		{"integer int64", schema.Integer(), int64(7), int64(7), false},
		{"integer accepts integral float", schema.Integer(), 7.0, int64(7), false},
		{"integer rejects fraction", schema.Integer(), 7.5, nil, true},
		{"boolean ok", schema.Boolean(), true, true, false},
		{"boolean rejects string", schema.Boolean(), "true", nil, true},
		{"nullable accepts null", schema.String().Nullable(), nil, nil, false},
		{"non-nullable rejects null", schema.String(), nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := tt.typ.Validate(tt.value)
			if tt.wantErr {
				if len(issues) == 0 {
					t.Fatalf("Validate(%v) succeeded, want issues", tt.value)
				}
				return
			}
			if len(issues) > 0 {
				t.Fatalf("Validate(%v) issues: %v", tt.value, issues)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Validate(%v) = %v (%T), want %v (%T)", tt.value, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestValidate_Date(t *testing.T) {
	typ := schema.Date()

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	if got, issues := typ.Validate(now); len(issues) > 0 || got != now {
		t.Errorf("time.Time value rejected: %v %v", got, issues)
	}

	got, issues := typ.Validate("2026-03-14T09:26:53Z")
	if len(issues) > 0 {
		t.Fatalf("RFC3339 string rejected: %v", issues)
	}
	if ts, ok := got.(time.Time); !ok || !ts.Equal(now) {
		t.Errorf("parsed = %v, want %v", got, now)
	}

	if _, issues := typ.Validate("2026-03-14"); len(issues) > 0 {
		t.Errorf("date-only string rejected: %v", issues)
	}
	if _, issues := typ.Validate("not a date"); len(issues) == 0 {
		t.Errorf("garbage date accepted")
	}
}

func TestValidate_Object(t *testing.T) {
	typ := schema.Object(map[string]schema.Type{
		"name": schema.String(),
		"age":  schema.Integer().Optional(),
	})

	t.Run("strips unknown fields", func(t *testing.T) {
		got, issues := typ.Validate(map[string]any{"name": "Lily", "extra": 1})
		if len(issues) > 0 {
			t.Fatalf("issues: %v", issues)
		}
		want := map[string]any{"name": "Lily"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		_, issues := typ.Validate(map[string]any{"age": 30})
		if len(issues) != 1 {
			t.Fatalf("issues = %v, want exactly one", issues)
		}
		is := issues[0]
		if !reflect.DeepEqual(is.Path, []string{"name"}) {
			t.Errorf("path = %v, want [name]", is.Path)
		}
		if is.Message != "required" || is.Received != "undefined" {
			t.Errorf("issue = %+v", is)
		}
	})

	t.Run("missing optional field ok", func(t *testing.T) {
		got, issues := typ.Validate(map[string]any{"name": "x"})
		if len(issues) > 0 {
			t.Fatalf("issues: %v", issues)
		}
		if _, present := got.(map[string]any)["age"]; present {
			t.Errorf("absent optional field materialized: %v", got)
		}
	})

	t.Run("non-object rejected", func(t *testing.T) {
		if _, issues := typ.Validate("nope"); len(issues) == 0 {
			t.Errorf("string accepted as object")
		}
	})

	t.Run("issues ordered by field", func(t *testing.T) {
		both := schema.Object(map[string]schema.Type{
			"b": schema.Integer(),
			"a": schema.Integer(),
		})
		_, issues := both.Validate(map[string]any{})
		if len(issues) != 2 {
			t.Fatalf("issues = %v, want two", issues)
		}
		if issues[0].Path[0] != "a" || issues[1].Path[0] != "b" {
			t.Errorf("issue order = %v, %v; want a then b", issues[0].Path, issues[1].Path)
		}
	})
}

func TestValidate_Array(t *testing.T) {
	typ := schema.Array(schema.Integer())

	got, issues := typ.Validate([]any{1.0, 2.0, 3.0})
	if len(issues) > 0 {
		t.Fatalf("issues: %v", issues)
	}
	want := []any{int64(1), int64(2), int64(3)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	_, issues = typ.Validate([]any{1.0, "x", 2.5})
	if len(issues) != 2 {
		t.Fatalf("issues = %v, want two", issues)
	}
	if !reflect.DeepEqual(issues[0].Path, []string{"1"}) {
		t.Errorf("first issue path = %v, want [1]", issues[0].Path)
	}
	if !reflect.DeepEqual(issues[1].Path, []string{"2"}) {
		t.Errorf("second issue path = %v, want [2]", issues[1].Path)
	}
}

func TestValidate_NestedPaths(t *testing.T) {
	typ := schema.Object(map[string]schema.Type{
		"items": schema.Array(schema.Object(map[string]schema.Type{
			"qty": schema.Integer(),
		})),
	})

	_, issues := typ.Validate(map[string]any{
		"items": []any{
			map[string]any{"qty": 1.0},
			map[string]any{"qty": "two"},
		},
	})
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want one", issues)
	}
	if !reflect.DeepEqual(issues[0].Path, []string{"items", "1", "qty"}) {
		t.Errorf("path = %v, want [items 1 qty]", issues[0].Path)
	}
}

func TestDescribe(t *testing.T) {
	typ := schema.Object(map[string]schema.Type{
		"b": schema.String().Desc("second"),
		"a": schema.Integer().Optional(),
	})
	shape := typ.Describe()

	if shape.Kind != schema.KindObject {
		t.Fatalf("kind = %s", shape.Kind)
	}
	if len(shape.Fields) != 2 || shape.Fields[0].Name != "a" || shape.Fields[1].Name != "b" {
		t.Errorf("fields not sorted by name: %v", shape.Fields)
	}
	if !shape.Fields[0].Shape.Optional {
		t.Errorf("optional flag lost")
	}
	if shape.Fields[1].Shape.Description != "second" {
		t.Errorf("description lost")
	}

	if f, ok := shape.Field("b"); !ok || f.Kind != schema.KindString {
		t.Errorf("Field(b) = %v %v", f, ok)
	}
	if _, ok := shape.Field("missing"); ok {
		t.Errorf("Field(missing) found")
	}
}

func TestKind_IsPrimitive(t *testing.T) {
	for _, k := range []schema.Kind{schema.KindString, schema.KindNumber, schema.KindInteger, schema.KindBoolean, schema.KindDate} {
		if !k.IsPrimitive() {
			t.Errorf("%s should be primitive", k)
		}
	}
	for _, k := range []schema.Kind{schema.KindArray, schema.KindObject} {
		if k.IsPrimitive() {
			t.Errorf("%s should not be primitive", k)
		}
	}
}
