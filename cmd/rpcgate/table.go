package main

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/artpar/rpcgate/core/schema"
	"github.com/artpar/rpcgate/domain/procedure"
)

// buildTable assembles the reference procedure set served by the binary:
// a greeting query plus a small in-memory notes API that exercises path
// placeholders, protected mutations, custom headers, and status overrides.
func buildTable() (*procedure.Table, error) {
	notes := newNoteStore()
	b := procedure.NewBuilder()

	b.Namespace("greeting").Query("sayHello", procedure.Procedure{
		Path:    "/say-hello/{name}",
		Summary: "Greet a caller by name",
		Tags:    []string{"greeting"},
		Input: schema.Object(map[string]schema.Type{
			"name": schema.String().Desc("Name to greet"),
		}),
		Output: schema.Object(map[string]schema.Type{
			"greeting": schema.String(),
		}),
		Handler: func(ctx context.Context, input any) (any, error) {
			in := input.(map[string]any)
			return map[string]any{
				"greeting": fmt.Sprintf("Hello %s!", in["name"]),
			}, nil
		},
	})

	n := b.Namespace("notes")
	n.Query("list", procedure.Procedure{
		Path:    "/notes",
		Summary: "List notes",
		Tags:    []string{"notes"},
		Input: schema.Object(map[string]schema.Type{
			"limit": schema.Integer().Optional().Desc("Maximum number of notes to return"),
		}),
		Output: schema.Object(map[string]schema.Type{
			"notes": schema.Array(noteType()),
		}),
		Handler: func(ctx context.Context, input any) (any, error) {
			limit := 0
			if in, ok := input.(map[string]any); ok {
				if v, ok := in["limit"].(int64); ok {
					limit = int(v)
				}
			}
			return map[string]any{"notes": notes.list(limit)}, nil
		},
	})
	n.Query("get", procedure.Procedure{
		Path:    "/notes/{id}",
		Summary: "Fetch a single note",
		Tags:    []string{"notes"},
		Input: schema.Object(map[string]schema.Type{
			"id": schema.String(),
		}),
		Output: noteType(),
		ErrorCodes: []procedure.Code{
			procedure.CodeNotFound,
		},
		Handler: func(ctx context.Context, input any) (any, error) {
			in := input.(map[string]any)
			id := in["id"].(string)
			note, ok := notes.get(id)
			if !ok {
				return nil, procedure.Errorf(procedure.CodeNotFound, "note %q not found", id)
			}
			return note, nil
		},
	})
	n.Mutation("create", procedure.Procedure{
		Path:    "/notes",
		Summary: "Create a note",
		Tags:    []string{"notes"},
		Protect: true,
		Input: schema.Object(map[string]schema.Type{
			"title": schema.String().Desc("Note title"),
			"body":  schema.String().Optional(),
		}),
		Output: noteType(),
		RequestHeaders: schema.Object(map[string]schema.Type{
			"x-request-source": schema.String().Optional(),
		}),
		Handler: func(ctx context.Context, input any) (any, error) {
			in := input.(map[string]any)
			title := in["title"].(string)
			body, _ := in["body"].(string)
			return notes.create(title, body), nil
		},
		ResponseMeta: func(o procedure.Outcome) procedure.Meta {
			if o.OK {
				return procedure.Meta{Status: 201}
			}
			return procedure.Meta{}
		},
	})
	n.Add(procedure.Procedure{
		Name:    "delete",
		Kind:    procedure.KindMutation,
		Method:  "DELETE",
		Path:    "/notes/{id}",
		Summary: "Delete a note",
		Tags:    []string{"notes"},
		Protect: true,
		Input: schema.Object(map[string]schema.Type{
			"id": schema.String(),
		}),
		Output: schema.Object(map[string]schema.Type{
			"deleted": schema.Boolean(),
		}),
		ErrorCodes: []procedure.Code{
			procedure.CodeNotFound,
		},
		Handler: func(ctx context.Context, input any) (any, error) {
			in := input.(map[string]any)
			id := in["id"].(string)
			if !notes.delete(id) {
				return nil, procedure.Errorf(procedure.CodeNotFound, "note %q not found", id)
			}
			return map[string]any{"deleted": true}, nil
		},
	})

	return b.Build()
}

func noteType() schema.Type {
	return schema.Object(map[string]schema.Type{
		"id":    schema.String(),
		"title": schema.String(),
		"body":  schema.String().Optional(),
	})
}

// noteStore is a minimal in-memory backing store for the reference API.
type noteStore struct {
	mu    sync.Mutex
	next  int
	notes map[string]map[string]any
}

func newNoteStore() *noteStore {
	return &noteStore{notes: make(map[string]map[string]any)}
}

func (s *noteStore) create(title, body string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := fmt.Sprintf("n%d", s.next)
	note := map[string]any{"id": id, "title": title}
	if body != "" {
		note["body"] = body
	}
	s.notes[id] = note
	return note
}

func (s *noteStore) get(id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[id]
	return note, ok
}

func (s *noteStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notes[id]
	delete(s.notes, id)
	return ok
}

func (s *noteStore) list(limit int) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.notes))
	for id := range s.notes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.notes[id])
	}
	return out
}
