package app

import (
	"net/http"

	"github.com/artpar/rpcgate/core/schema"
	"github.com/artpar/rpcgate/domain/procedure"
	"github.com/artpar/rpcgate/domain/wire"
)

// ErrorBody is the JSON wire shape for every error response.
type ErrorBody struct {
	Message string         `json:"message"`
	Code    procedure.Code `json:"code"`
	Issues  []schema.Issue `json:"issues,omitempty"`
}

// respond maps an invocation outcome onto a response descriptor. Success
// is 200 with the raw (already validated) value; errors use the fixed
// code-to-status table. A procedure's ResponseMeta overrides win over
// both defaults.
func (e *Engine) respond(o procedure.Outcome) wire.Response {
	headers := map[string]string{"Content-Type": "application/json"}

	status := http.StatusOK
	var body any
	if o.OK {
		body = o.Value
	} else {
		status = o.Err.Code.Status()
		body = ErrorBody{Message: o.Err.Message, Code: o.Err.Code, Issues: o.Err.Issues}
	}

	if o.Proc != nil && o.Proc.ResponseMeta != nil {
		meta := o.Proc.ResponseMeta(o)
		if meta.Status != 0 {
			status = meta.Status
		}
		for k, v := range meta.Headers {
			headers[http.CanonicalHeaderKey(k)] = v
		}
	}

	// Declared response headers are validated best-effort: the response is
	// already determined, so a mismatch is logged rather than surfaced.
	if o.Proc != nil && o.Proc.ResponseHeaders != nil {
		e.checkResponseHeaders(o.Proc, headers)
	}

	return wire.Response{Status: status, Headers: headers, Body: body}
}

func (e *Engine) checkResponseHeaders(p *procedure.Procedure, headers map[string]string) {
	shape := p.ResponseHeaders.Describe()
	raw := make(map[string]any, len(shape.Fields))
	for _, f := range shape.Fields {
		if v, ok := headers[http.CanonicalHeaderKey(f.Name)]; ok {
			raw[f.Name] = schema.Coerce(v, f.Shape)
		}
	}
	if _, issues := p.ResponseHeaders.Validate(raw); len(issues) > 0 {
		e.logger.Warn().
			Str("procedure", p.Name).
			Interface("issues", issues).
			Msg("response header validation failed")
	}
}
