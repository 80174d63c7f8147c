// Package extract assembles a procedure's input value from the three wire
// channels: path segments, query string, and request body. Which channel
// feeds which field depends on the HTTP method and the declared input
// shape; every primitive value passes through schema coercion before
// validation.
package extract

import (
	"encoding/json"
	"mime"
	"net/url"
	"strings"

	"github.com/artpar/rpcgate/core/schema"
	"github.com/artpar/rpcgate/domain/procedure"
	"github.com/artpar/rpcgate/domain/wire"
)

// Input builds the raw input value for a matched procedure. Fields bound
// to path placeholders always come from pathParams; the rest come from
// the query string (GET/DELETE) or the parsed body (POST/PUT/PATCH).
//
// A procedure with no input schema yields a nil input and ignores any
// supplied query or body data. A stray body on a GET is harmless and
// ignored as well.
func Input(p *procedure.Procedure, pathParams map[string]string, req wire.Request) (map[string]any, *procedure.Error) {
	if p.Input == nil {
		return nil, nil
	}
	shape := p.Input.Describe()

	bodySourced := methodHasBody(p.Method)

	var bodyObj map[string]any
	var bodyForm url.Values
	if bodySourced && len(req.Body) > 0 {
		var perr *procedure.Error
		bodyObj, bodyForm, perr = parseBody(p, req)
		if perr != nil {
			return nil, perr
		}
	}

	input := make(map[string]any, len(shape.Fields))
	for _, f := range shape.Fields {
		if pv, ok := pathParams[f.Name]; ok {
			input[f.Name] = schema.Coerce(pv, f.Shape)
			continue
		}

		if !bodySourced {
			if v, ok := fromValues(req.Query, f); ok {
				input[f.Name] = v
			}
			continue
		}

		if bodyForm != nil {
			if v, ok := fromValues(bodyForm, f); ok {
				input[f.Name] = v
			}
			continue
		}
		if bodyObj != nil {
			if v, ok := bodyObj[f.Name]; ok {
				input[f.Name] = schema.Coerce(v, f.Shape)
			}
		}
	}

	return input, nil
}

// Headers extracts and validates the declared custom request headers,
// independently of the input shape. Missing optional headers are simply
// absent from the result.
func Headers(p *procedure.Procedure, req wire.Request) (map[string]any, *procedure.Error) {
	if p.RequestHeaders == nil {
		return nil, nil
	}
	shape := p.RequestHeaders.Describe()

	raw := make(map[string]any, len(shape.Fields))
	for _, f := range shape.Fields {
		if v := req.Header(f.Name); v != "" {
			raw[f.Name] = schema.Coerce(v, f.Shape)
		}
	}

	validated, issues := p.RequestHeaders.Validate(raw)
	if len(issues) > 0 {
		return nil, &procedure.Error{
			Code:    procedure.CodeBadRequest,
			Message: "request header validation failed",
			Issues:  issues,
		}
	}
	m, _ := validated.(map[string]any)
	return m, nil
}

func methodHasBody(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

// parseBody decodes the request body according to its content type,
// checked against the procedure's declared accepted types. Exactly one of
// the returned object/form is non-nil on success.
func parseBody(p *procedure.Procedure, req wire.Request) (map[string]any, url.Values, *procedure.Error) {
	ct := req.Header("Content-Type")
	if ct != "" {
		if parsed, _, err := mime.ParseMediaType(ct); err == nil {
			ct = parsed
		}
	}
	if ct == "" {
		ct = procedure.DefaultContentType
	}

	if !accepted(p.ContentTypes, ct) {
		return nil, nil, procedure.Errorf(procedure.CodeUnsupportedMediaType,
			"unsupported content type %q", ct)
	}

	switch ct {
	case "application/x-www-form-urlencoded":
		form, err := url.ParseQuery(string(req.Body))
		if err != nil {
			return nil, nil, procedure.NewError(procedure.CodeBadRequest,
				"failed to parse url-encoded request body")
		}
		return nil, form, nil

	default: // JSON family
		var decoded any
		if err := json.Unmarshal(req.Body, &decoded); err != nil {
			return nil, nil, procedure.NewError(procedure.CodeBadRequest,
				"failed to parse JSON request body")
		}
		obj, ok := decoded.(map[string]any)
		if !ok {
			return nil, nil, procedure.NewError(procedure.CodeBadRequest,
				"request body must be a JSON object")
		}
		return obj, nil, nil
	}
}

func accepted(declared []string, ct string) bool {
	for _, d := range declared {
		if strings.EqualFold(d, ct) {
			return true
		}
	}
	return false
}

// fromValues reads one declared field out of a string-keyed multi-value
// set (query string or url-encoded form). Composite fields are parsed as
// JSON when possible; repeated keys feed array fields element-wise.
// Unparseable values stay strings so validation reports the real error.
func fromValues(values url.Values, f schema.FieldShape) (any, bool) {
	vs, ok := values[f.Name]
	if !ok || len(vs) == 0 {
		return nil, false
	}

	switch f.Shape.Kind {
	case schema.KindArray:
		if len(vs) == 1 && strings.HasPrefix(strings.TrimSpace(vs[0]), "[") {
			var arr []any
			if err := json.Unmarshal([]byte(vs[0]), &arr); err == nil {
				return schema.Coerce(arr, f.Shape), true
			}
		}
		return schema.Coerce(vs, f.Shape), true

	case schema.KindObject:
		var obj map[string]any
		if err := json.Unmarshal([]byte(vs[0]), &obj); err == nil {
			return obj, true
		}
		return vs[0], true

	default:
		return schema.Coerce(vs[0], f.Shape), true
	}
}
