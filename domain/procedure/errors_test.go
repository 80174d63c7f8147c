package procedure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/artpar/rpcgate/domain/procedure"
)

func TestCode_Status(t *testing.T) {
	tests := []struct {
		code procedure.Code
		want int
	}{
		{procedure.CodeBadRequest, 400},
		{procedure.CodeUnauthorized, 401},
		{procedure.CodeForbidden, 403},
		{procedure.CodeNotFound, 404},
		{procedure.CodeMethodNotSupported, 405},
		{procedure.CodeTimeout, 408},
		{procedure.CodeConflict, 409},
		{procedure.CodePreconditionFailed, 412},
		{procedure.CodePayloadTooLarge, 413},
		{procedure.CodeUnsupportedMediaType, 415},
		{procedure.CodeTooManyRequests, 429},
		{procedure.CodeInternal, 500},
		{procedure.Code("SOMETHING_ELSE"), 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Status(); got != tt.want {
				t.Errorf("Status(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestAsError(t *testing.T) {
	t.Run("passes through domain errors", func(t *testing.T) {
		src := procedure.NewError(procedure.CodeConflict, "already exists")
		got := procedure.AsError(src)
		if got != src {
			t.Errorf("AsError returned a different error: %v", got)
		}
	})

	t.Run("unwraps wrapped domain errors", func(t *testing.T) {
		src := procedure.NewError(procedure.CodeNotFound, "gone")
		wrapped := fmt.Errorf("while loading: %w", src)
		got := procedure.AsError(wrapped)
		if got.Code != procedure.CodeNotFound || got.Message != "gone" {
			t.Errorf("AsError(wrapped) = %v, want original", got)
		}
	})

	t.Run("hides arbitrary error text", func(t *testing.T) {
		got := procedure.AsError(errors.New("pq: connection refused at 10.0.0.5"))
		if got.Code != procedure.CodeInternal {
			t.Errorf("code = %s, want %s", got.Code, procedure.CodeInternal)
		}
		if got.Message != "internal server error" {
			t.Errorf("message leaked internals: %q", got.Message)
		}
	})
}
