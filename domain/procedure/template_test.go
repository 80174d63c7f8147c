package procedure_test

import (
	"reflect"
	"testing"

	"github.com/artpar/rpcgate/domain/procedure"
)

func TestParseTemplate_Valid(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantParams []string
	}{
		{"root", "/", nil},
		{"single literal", "/notes", nil},
		{"trailing slash", "/notes/", nil},
		{"one placeholder", "/say-hello/{name}", []string{"name"}},
		{"mixed", "/users/{userId}/posts/{postId}", []string{"userId", "postId"}},
		{"underscore name", "/items/{item_id}", []string{"item_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := procedure.ParseTemplate(tt.raw)
			if err != nil {
				t.Fatalf("ParseTemplate(%q) failed: %v", tt.raw, err)
			}
			got := tmpl.Params()
			if !reflect.DeepEqual(got, tt.wantParams) {
				t.Errorf("Params() = %v, want %v", got, tt.wantParams)
			}
		})
	}
}

func TestParseTemplate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no leading slash", "notes"},
		{"empty segment", "/notes//x"},
		{"double trailing slash", "/notes//"},
		{"partial placeholder", "/file-{name}"},
		{"unclosed brace", "/notes/{id"},
		{"empty placeholder name", "/notes/{}"},
		{"invalid placeholder name", "/notes/{1id}"},
		{"dash in placeholder name", "/notes/{note-id}"},
		{"duplicate placeholder", "/pair/{id}/{id}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := procedure.ParseTemplate(tt.raw); err == nil {
				t.Errorf("ParseTemplate(%q) succeeded, want error", tt.raw)
			}
		})
	}
}

func TestTemplate_Match(t *testing.T) {
	tmpl, err := procedure.ParseTemplate("/Users/{id}/posts")
	if err != nil {
		t.Fatalf("ParseTemplate failed: %v", err)
	}

	tests := []struct {
		name       string
		segments   []string
		wantOK     bool
		wantParams map[string]string
	}{
		{"exact", []string{"users", "42", "posts"}, true, map[string]string{"id": "42"}},
		{"literal case-insensitive", []string{"USERS", "42", "Posts"}, true, map[string]string{"id": "42"}},
		{"placeholder value verbatim", []string{"users", "Ab%C", "posts"}, true, map[string]string{"id": "Ab%C"}},
		{"too short", []string{"users", "42"}, false, nil},
		{"too long", []string{"users", "42", "posts", "x"}, false, nil},
		{"literal mismatch", []string{"users", "42", "comments"}, false, nil},
		{"empty placeholder segment", []string{"users", "", "posts"}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, ok := tmpl.Match(tt.segments)
			if ok != tt.wantOK {
				t.Fatalf("Match(%v) ok = %v, want %v", tt.segments, ok, tt.wantOK)
			}
			if tt.wantOK && !reflect.DeepEqual(params, tt.wantParams) {
				t.Errorf("params = %v, want %v", params, tt.wantParams)
			}
		})
	}
}

func TestTemplate_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"identical literals", "/notes", "/notes", true},
		{"literal vs placeholder", "/notes/latest", "/notes/{id}", true},
		{"both placeholders", "/a/{x}", "/a/{y}", true},
		{"different literals", "/notes", "/users", false},
		{"different lengths", "/notes", "/notes/{id}", false},
		{"shared prefix distinct tail", "/notes/{id}/raw", "/notes/{id}/full", false},
		{"case-insensitive literals", "/Notes", "/notes", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta, err := procedure.ParseTemplate(tt.a)
			if err != nil {
				t.Fatalf("ParseTemplate(%q) failed: %v", tt.a, err)
			}
			tb, err := procedure.ParseTemplate(tt.b)
			if err != nil {
				t.Fatalf("ParseTemplate(%q) failed: %v", tt.b, err)
			}
			if got := ta.Overlaps(tb); got != tt.want {
				t.Errorf("Overlaps(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tb.Overlaps(ta); got != tt.want {
				t.Errorf("Overlaps(%q, %q) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}
