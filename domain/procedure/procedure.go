// Package procedure provides the annotated procedure table and pure
// request-matching functions. A procedure couples a handler with typed
// input/output schemas and HTTP routing metadata; the table flattens all
// registered procedures into an immutable structure built once at startup.
package procedure

import (
	"context"

	"github.com/artpar/rpcgate/core/schema"
)

// Kind distinguishes read procedures from write procedures.
type Kind string

const (
	KindQuery    Kind = "query"    // side-effect free, GET by default
	KindMutation Kind = "mutation" // state-changing, POST by default
)

// Handler executes a procedure's business logic. The input value has
// already been coerced and validated against the declared input schema.
// A returned *Error surfaces its code to the client; any other error is
// downgraded to INTERNAL_SERVER_ERROR.
type Handler func(ctx context.Context, input any) (any, error)

// Procedure describes one annotated RPC endpoint (immutable value type).
type Procedure struct {
	// Name is the dotted identity within the procedure tree,
	// e.g. "greeting.sayHello".
	Name string
	Kind Kind

	// HTTP routing metadata
	Method string // defaults by kind: query=GET, mutation=POST
	Path   string // template: /literal/{placeholder}

	// Documentation metadata
	Summary     string
	Description string
	Tags        []string

	// Input is the declared input schema. A nil input means the procedure
	// takes no input; supplied query or body data is then ignored.
	// Non-nil inputs must describe an object.
	Input schema.Schema

	// Output is the declared output schema. A value produced by the
	// handler that fails this schema is an internal contract violation,
	// never the client's fault.
	Output schema.Schema

	// Flags
	Disabled   bool // invisible to matching, identical to not-found
	Protect    bool // requires an authenticated invocation context
	Deprecated bool

	// ContentTypes lists accepted request body content types.
	// Defaults to application/json.
	ContentTypes []string

	// RequestHeaders and ResponseHeaders declare custom header schemas,
	// validated independently of the input shape.
	RequestHeaders  schema.Schema
	ResponseHeaders schema.Schema

	// ErrorCodes declares extra error responses for document generation.
	ErrorCodes []Code

	Handler Handler

	// ResponseMeta, if set, may override the response status and add
	// headers on both success and error paths.
	ResponseMeta MetaFunc
}

// Outcome is the result of resolving and invoking one request.
// It is produced once per request and consumed by the response mapper.
type Outcome struct {
	OK    bool
	Value any    // success value, already schema-validated
	Err   *Error // set when OK is false

	// Proc is the matched procedure, nil when no route matched.
	Proc *Procedure
}

// Meta carries response overrides produced by a procedure's ResponseMeta.
// A zero Status keeps the default; header entries override defaults.
type Meta struct {
	Status  int
	Headers map[string]string
}

// MetaFunc inspects an outcome and returns response overrides.
type MetaFunc func(Outcome) Meta

// DefaultContentType is assumed when a procedure declares none.
const DefaultContentType = "application/json"
