// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"time"

	"github.com/artpar/rpcgate/core/extract"
	"github.com/artpar/rpcgate/domain/procedure"
	"github.com/artpar/rpcgate/domain/wire"
	"github.com/artpar/rpcgate/ports"
	"github.com/rs/zerolog"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20 // 1 MiB

// EngineConfig contains configuration for the resolver engine.
type EngineConfig struct {
	// MaxBodyBytes caps the raw request body size, enforced before any
	// parsing. Zero uses DefaultMaxBodyBytes; negative disables the cap.
	MaxBodyBytes int64
}

// EngineDeps contains dependencies for the engine.
type EngineDeps struct {
	Table   *procedure.Table
	Auth    ports.ContextBuilder // optional; required by protected procedures
	Metrics ports.Metrics        // optional
	Logger  zerolog.Logger
}

// Engine resolves abstract requests against an immutable procedure table:
// match, extract, validate, invoke, respond. The engine holds no mutable
// state and is safe for unbounded concurrent use.
type Engine struct {
	table        *procedure.Table
	auth         ports.ContextBuilder
	metrics      ports.Metrics
	logger       zerolog.Logger
	maxBodyBytes int64
}

// NewEngine creates a resolver engine over the given table.
func NewEngine(deps EngineDeps, cfg EngineConfig) *Engine {
	max := cfg.MaxBodyBytes
	if max == 0 {
		max = DefaultMaxBodyBytes
	}
	if max < 0 {
		max = 0
	}
	return &Engine{
		table:        deps.Table,
		auth:         deps.Auth,
		metrics:      deps.Metrics,
		logger:       deps.Logger.With().Str("service", "engine").Logger(),
		maxBodyBytes: max,
	}
}

// Result pairs the response descriptor with resolution metadata that
// transport bindings use for logging and persistence.
type Result struct {
	Response  wire.Response
	Procedure string         // matched procedure name, empty if none
	Code      procedure.Code // error code, empty on success
}

// Resolve processes one request end to end and returns the response
// descriptor. Errors raised anywhere in the pipeline are normalized into
// the {message, code, issues?} wire shape.
func (e *Engine) Resolve(ctx context.Context, req wire.Request) wire.Response {
	return e.Handle(ctx, req).Response
}

// Handle is Resolve plus resolution metadata.
func (e *Engine) Handle(ctx context.Context, req wire.Request) Result {
	start := time.Now()

	outcome := e.invoke(ctx, req)
	resp := e.respond(outcome)

	result := Result{Response: resp}
	if outcome.Proc != nil {
		result.Procedure = outcome.Proc.Name
	}
	if outcome.Err != nil {
		result.Code = outcome.Err.Code
	}

	if resp.Status >= 500 {
		e.logger.Error().
			Str("method", req.Method).
			Str("path", req.Path).
			Int("status", resp.Status).
			Str("trace_id", req.TraceID).
			Msg("request failed")
	}

	if e.metrics != nil {
		e.metrics.ObserveRequest(result.Procedure, req.Method, resp.Status, time.Since(start))
	}

	return result
}

// invoke runs the resolution pipeline up to and including the procedure
// call, producing one outcome. Extraction and validation failures
// short-circuit: the procedure is never called.
func (e *Engine) invoke(ctx context.Context, req wire.Request) procedure.Outcome {
	m, err := e.table.Match(req.Method, req.Path)
	if err == procedure.ErrMethodNotSupported {
		return errOutcome(nil, procedure.Errorf(procedure.CodeMethodNotSupported,
			"method %s not supported for this path", req.Method))
	}
	if err != nil {
		return errOutcome(nil, procedure.Errorf(procedure.CodeNotFound,
			"no procedure registered for path %q", requestPathOnly(req.Path)))
	}
	p := m.Proc

	// Body ceiling, before anything touches the payload.
	if e.maxBodyBytes > 0 && int64(len(req.Body)) > e.maxBodyBytes {
		return errOutcome(p, procedure.Errorf(procedure.CodePayloadTooLarge,
			"request body exceeds %d bytes", e.maxBodyBytes))
	}

	// Protected procedures get a caller-built invocation context. The
	// builder's error is mapped like a procedure error; the handler is
	// never reached.
	if p.Protect {
		if e.auth == nil {
			return errOutcome(p, procedure.NewError(procedure.CodeUnauthorized,
				"authentication required"))
		}
		authed, err := e.auth.BuildContext(ctx, req)
		if err != nil {
			return errOutcome(p, procedure.AsError(err))
		}
		ctx = authed
	}

	headers, perr := extract.Headers(p, req)
	if perr != nil {
		return errOutcome(p, perr)
	}
	if headers != nil {
		ctx = withRequestHeaders(ctx, headers)
	}

	raw, perr := extract.Input(p, m.PathParams, req)
	if perr != nil {
		return errOutcome(p, perr)
	}

	var input any
	if p.Input != nil {
		validated, issues := p.Input.Validate(raw)
		if len(issues) > 0 {
			return errOutcome(p, &procedure.Error{
				Code:    procedure.CodeBadRequest,
				Message: "input validation failed",
				Issues:  issues,
			})
		}
		input = validated
	}

	// Exactly one invocation per request; no retries.
	out, err := p.Handler(ctx, input)
	if err != nil {
		return errOutcome(p, procedure.AsError(err))
	}

	if p.Output != nil {
		validated, issues := p.Output.Validate(out)
		if len(issues) > 0 {
			// The handler broke its own contract; this is a server fault,
			// not the client's.
			e.logger.Error().
				Str("procedure", p.Name).
				Interface("issues", issues).
				Msg("output contract violated")
			return errOutcome(p, procedure.NewError(procedure.CodeInternal,
				"internal server error"))
		}
		out = validated
	}

	return procedure.Outcome{OK: true, Value: out, Proc: p}
}

func errOutcome(p *procedure.Procedure, err *procedure.Error) procedure.Outcome {
	return procedure.Outcome{Err: err, Proc: p}
}

func requestPathOnly(path string) string {
	for i := 0; i < len(path); i++ {
		if path[i] == '?' {
			return path[:i]
		}
	}
	return path
}

type ctxKey int

const requestHeadersKey ctxKey = iota

func withRequestHeaders(ctx context.Context, headers map[string]any) context.Context {
	return context.WithValue(ctx, requestHeadersKey, headers)
}

// RequestHeaders returns the validated custom request headers for the
// current invocation, or nil when the procedure declares none.
func RequestHeaders(ctx context.Context) map[string]any {
	h, _ := ctx.Value(requestHeadersKey).(map[string]any)
	return h
}
