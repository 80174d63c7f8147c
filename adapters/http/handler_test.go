package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gatehttp "github.com/artpar/rpcgate/adapters/http"
	"github.com/artpar/rpcgate/adapters/idgen"
	"github.com/artpar/rpcgate/app"
	"github.com/artpar/rpcgate/core/schema"
	"github.com/artpar/rpcgate/domain/procedure"
	"github.com/rs/zerolog"
)

func newServer(t *testing.T, doc []byte) *httptest.Server {
	t.Helper()

	table, err := procedure.NewTable([]procedure.Procedure{
		{
			Name: "greeting.sayHello",
			Path: "/say-hello/{name}",
			Input: schema.Object(map[string]schema.Type{
				"name": schema.String(),
			}),
			Output: schema.Object(map[string]schema.Type{
				"greeting": schema.String(),
			}),
			Handler: func(ctx context.Context, input any) (any, error) {
				in := input.(map[string]any)
				return map[string]any{"greeting": "Hello " + in["name"].(string) + "!"}, nil
			},
		},
		{
			Name: "notes.create",
			Kind: procedure.KindMutation,
			Path: "/notes",
			Input: schema.Object(map[string]schema.Type{
				"title": schema.String(),
			}),
			Output: schema.Object(map[string]schema.Type{
				"id":    schema.String(),
				"title": schema.String(),
			}),
			Handler: func(ctx context.Context, input any) (any, error) {
				in := input.(map[string]any)
				return map[string]any{"id": "n1", "title": in["title"]}, nil
			},
			ResponseMeta: func(o procedure.Outcome) procedure.Meta {
				if o.OK {
					return procedure.Meta{Status: 201}
				}
				return procedure.Meta{}
			},
		},
	})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	engine := app.NewEngine(app.EngineDeps{
		Table:  table,
		Logger: zerolog.Nop(),
	}, app.EngineConfig{})

	handler := gatehttp.NewHandler(gatehttp.Deps{
		Engine: engine,
		Logger: zerolog.Nop(),
		IDs:    idgen.NewSequential("req-"),
	})
	srv := httptest.NewServer(handler.Router(gatehttp.RouterOptions{OpenAPIDoc: doc}))
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestServer_SayHello(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Get(srv.URL + "/say-hello/Lily")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if rid := resp.Header.Get("X-Request-Id"); !strings.HasPrefix(rid, "req-") {
		t.Errorf("X-Request-Id = %q", rid)
	}
	body := decode(t, resp)
	if body["greeting"] != "Hello Lily!" {
		t.Errorf("body = %v", body)
	}
}

func TestServer_CreateNote(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Post(srv.URL+"/notes", "application/json",
		strings.NewReader(`{"title": "first"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	body := decode(t, resp)
	if body["id"] != "n1" || body["title"] != "first" {
		t.Errorf("body = %v", body)
	}
}

func TestServer_ErrorShapes(t *testing.T) {
	srv := newServer(t, nil)

	t.Run("not found", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/unknown")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		if resp.StatusCode != 404 {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
		body := decode(t, resp)
		if body["code"] != "NOT_FOUND" || body["message"] == "" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("validation failure carries issues", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/notes", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		if resp.StatusCode != 400 {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
		body := decode(t, resp)
		if body["code"] != "BAD_REQUEST" {
			t.Errorf("code = %v", body["code"])
		}
		issues, ok := body["issues"].([]any)
		if !ok || len(issues) != 1 {
			t.Fatalf("issues = %v", body["issues"])
		}
		issue := issues[0].(map[string]any)
		path, _ := issue["path"].([]any)
		if len(path) != 1 || path[0] != "title" {
			t.Errorf("issue path = %v", issue["path"])
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/say-hello/x", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != 405 {
			t.Errorf("status = %d, want 405", resp.StatusCode)
		}
	})
}

func TestServer_Health(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode(t, resp)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestServer_OpenAPIDocument(t *testing.T) {
	doc := []byte(`{"openapi": "3.0.3"}`)
	srv := newServer(t, doc)

	resp, err := http.Get(srv.URL + "/openapi.json")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode(t, resp)
	if body["openapi"] != "3.0.3" {
		t.Errorf("body = %v", body)
	}
}

func TestServer_DocsDisabledWithoutDocument(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Get(srv.URL + "/openapi.json")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	// Falls through to the engine catch-all, which has no such procedure.
	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
