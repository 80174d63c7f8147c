package procedure

import (
	"fmt"
	"strings"

	"github.com/artpar/rpcgate/core/schema"
)

// allowedMethods are the HTTP methods a procedure may declare.
var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// Entry pairs a procedure with its parsed path template.
type Entry struct {
	Proc Procedure
	Tmpl Template
}

// Table is the flattened, immutable procedure table. It is built once at
// startup and safe for unbounded concurrent readers.
type Table struct {
	entries []Entry
}

// NewTable validates the given procedures and flattens them into a Table.
//
// Construction fails on: an invalid or duplicate path template, an unknown
// HTTP method, a placeholder without a matching primitive input field, an
// input schema that is not an object, and any pair of enabled procedures
// whose method and templates could match the same concrete path
// (structural overlap is rejected at build time rather than resolved by a
// specificity tie-break, so matching stays deterministic).
func NewTable(procs []Procedure) (*Table, error) {
	entries := make([]Entry, 0, len(procs))

	for _, p := range procs {
		if p.Name == "" {
			return nil, fmt.Errorf("procedure with path %q has no name", p.Path)
		}
		if p.Handler == nil {
			return nil, fmt.Errorf("procedure %s has no handler", p.Name)
		}

		applyDefaults(&p)

		if !allowedMethods[p.Method] {
			return nil, fmt.Errorf("procedure %s declares unsupported method %q", p.Name, p.Method)
		}

		tmpl, err := ParseTemplate(p.Path)
		if err != nil {
			return nil, fmt.Errorf("procedure %s: %w", p.Name, err)
		}

		if err := checkPlaceholders(p, tmpl); err != nil {
			return nil, err
		}

		entries = append(entries, Entry{Proc: p, Tmpl: tmpl})
	}

	// Reject ambiguous tables: any two enabled procedures sharing a method
	// whose templates overlap would make matching order-dependent.
	for i := range entries {
		if entries[i].Proc.Disabled {
			continue
		}
		for j := i + 1; j < len(entries); j++ {
			if entries[j].Proc.Disabled {
				continue
			}
			if entries[i].Proc.Method != entries[j].Proc.Method {
				continue
			}
			if entries[i].Tmpl.Overlaps(entries[j].Tmpl) {
				return nil, fmt.Errorf("procedures %s and %s overlap on %s %s",
					entries[i].Proc.Name, entries[j].Proc.Name,
					entries[i].Proc.Method, entries[i].Proc.Path)
			}
		}
	}

	return &Table{entries: entries}, nil
}

// applyDefaults fills method, kind, and content-type defaults in place.
func applyDefaults(p *Procedure) {
	if p.Kind == "" {
		p.Kind = KindQuery
	}
	if p.Method == "" {
		switch p.Kind {
		case KindMutation:
			p.Method = "POST"
		default:
			p.Method = "GET"
		}
	}
	p.Method = strings.ToUpper(p.Method)
	if len(p.ContentTypes) == 0 {
		p.ContentTypes = []string{DefaultContentType}
	}
}

// checkPlaceholders enforces the 1:1 mapping between template placeholders
// and primitive input fields.
func checkPlaceholders(p Procedure, tmpl Template) error {
	params := tmpl.Params()

	if p.Input == nil {
		if len(params) > 0 {
			return fmt.Errorf("procedure %s declares placeholder %q but no input schema", p.Name, params[0])
		}
		return nil
	}

	shape := p.Input.Describe()
	if shape.Kind != schema.KindObject {
		return fmt.Errorf("procedure %s: input schema must be an object, got %s", p.Name, shape.Kind)
	}

	for _, name := range params {
		fs, ok := shape.Field(name)
		if !ok {
			return fmt.Errorf("procedure %s: placeholder %q has no matching input field", p.Name, name)
		}
		if !fs.Kind.IsPrimitive() {
			return fmt.Errorf("procedure %s: placeholder %q must bind a primitive field, got %s", p.Name, name, fs.Kind)
		}
	}
	return nil
}

// Entries returns a copy of the table's entries, for document generation.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Procedures returns a copy of all registered procedures.
func (t *Table) Procedures() []Procedure {
	out := make([]Procedure, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.Proc)
	}
	return out
}

// Len returns the number of registered procedures.
func (t *Table) Len() int {
	return len(t.entries)
}
