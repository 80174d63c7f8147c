package schema_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/artpar/rpcgate/core/schema"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		typ   schema.Type
		value any
		want  any
	}{
		{"integer from string", schema.Integer(), "42", int64(42)},
		{"integer garbage unchanged", schema.Integer(), "4x2", "4x2"},
		{"number from string", schema.Number(), "1.5", 1.5},
		{"number garbage unchanged", schema.Number(), "one", "one"},
		{"boolean true", schema.Boolean(), "true", true},
		{"boolean false", schema.Boolean(), "false", false},
		{"boolean mixed case unchanged", schema.Boolean(), "True", "True"},
		{"boolean numeric unchanged", schema.Boolean(), "1", "1"},
		{"string untouched", schema.String(), "42", "42"},
		{"non-string passes through", schema.Integer(), 3.5, 3.5},
		{"bool passes through", schema.Boolean(), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schema.Coerce(tt.value, tt.typ.Describe())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Coerce(%v) = %v (%T), want %v (%T)", tt.value, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestCoerce_Date(t *testing.T) {
	shape := schema.Date().Describe()

	got := schema.Coerce("2026-01-02T15:04:05Z", shape)
	ts, ok := got.(time.Time)
	if !ok {
		t.Fatalf("Coerce(date string) = %T, want time.Time", got)
	}
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("parsed = %v, want %v", ts, want)
	}

	if got := schema.Coerce("yesterday", shape); got != "yesterday" {
		t.Errorf("unparseable date changed: %v", got)
	}
}

func TestCoerce_Array(t *testing.T) {
	shape := schema.Array(schema.Integer()).Describe()

	t.Run("string slice element-wise", func(t *testing.T) {
		got := schema.Coerce([]string{"1", "2", "x"}, shape)
		want := []any{int64(1), int64(2), "x"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("any slice element-wise", func(t *testing.T) {
		got := schema.Coerce([]any{"3", 4.0}, shape)
		want := []any{int64(3), 4.0}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("non-slice unchanged", func(t *testing.T) {
		if got := schema.Coerce("1,2", shape); got != "1,2" {
			t.Errorf("got %v", got)
		}
	})
}
