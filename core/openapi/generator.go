package openapi

import (
	"sort"
	"strconv"
	"strings"

	"github.com/artpar/rpcgate/core/schema"
	"github.com/artpar/rpcgate/domain/procedure"
)

const securityScheme = "BearerAuth"

// Generator generates OpenAPI specs from a procedure table.
type Generator struct {
	table   *procedure.Table
	info    Info
	servers []Server
}

// NewGenerator creates a generator for the given table.
func NewGenerator(table *procedure.Table, info Info, servers ...Server) *Generator {
	return &Generator{table: table, info: info, servers: servers}
}

// Generate builds the complete OpenAPI 3.0 document. Disabled procedures
// are omitted; output is deterministic (paths and tags sorted).
func (g *Generator) Generate() *Spec {
	spec := &Spec{
		OpenAPI: "3.0.3",
		Info:    g.info,
		Servers: g.servers,
		Paths:   make(map[string]PathItem),
		Components: Components{
			Schemas: map[string]*Schema{
				"Error": errorSchema(),
			},
		},
	}

	entries := g.table.Entries()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Proc.Path != entries[j].Proc.Path {
			return entries[i].Proc.Path < entries[j].Proc.Path
		}
		return entries[i].Proc.Method < entries[j].Proc.Method
	})

	protected := false
	tagSet := make(map[string]bool)

	for _, e := range entries {
		if e.Proc.Disabled {
			continue
		}
		if e.Proc.Protect {
			protected = true
		}
		for _, t := range e.Proc.Tags {
			tagSet[t] = true
		}

		key := pathKey(e.Proc.Path)
		item := spec.Paths[key]
		setOperation(&item, e.Proc.Method, g.operation(e))
		spec.Paths[key] = item
	}

	if protected {
		spec.Components.SecuritySchemes = map[string]SecurityScheme{
			securityScheme: {
				Type:        "http",
				Scheme:      "bearer",
				Description: "API key passed as a bearer token",
			},
		}
	}

	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	for _, t := range tags {
		spec.Tags = append(spec.Tags, Tag{Name: t})
	}

	return spec
}

// operation renders one procedure as an OpenAPI operation.
func (g *Generator) operation(e procedure.Entry) *Operation {
	p := e.Proc

	op := &Operation{
		Tags:        p.Tags,
		Summary:     p.Summary,
		Description: p.Description,
		OperationID: p.Name,
		Deprecated:  p.Deprecated,
		Responses:   make(map[string]Response),
	}

	var inputShape schema.Shape
	if p.Input != nil {
		inputShape = p.Input.Describe()
	}

	pathParams := make(map[string]bool)
	for _, name := range e.Tmpl.Params() {
		pathParams[name] = true
		fs, _ := inputShape.Field(name)
		op.Parameters = append(op.Parameters, Parameter{
			Name:        name,
			In:          "path",
			Required:    true,
			Description: fs.Description,
			Schema:      fromShape(fs),
		})
	}

	bodyMethod := p.Method == "POST" || p.Method == "PUT" || p.Method == "PATCH"

	if p.Input != nil {
		if bodyMethod {
			op.RequestBody = requestBody(p, inputShape, pathParams)
		} else {
			for _, f := range inputShape.Fields {
				if pathParams[f.Name] {
					continue
				}
				op.Parameters = append(op.Parameters, Parameter{
					Name:        f.Name,
					In:          "query",
					Required:    !f.Shape.Optional,
					Description: f.Shape.Description,
					Schema:      fromShape(f.Shape),
				})
			}
		}
	}

	if p.RequestHeaders != nil {
		for _, f := range p.RequestHeaders.Describe().Fields {
			op.Parameters = append(op.Parameters, Parameter{
				Name:        f.Name,
				In:          "header",
				Required:    !f.Shape.Optional,
				Description: f.Shape.Description,
				Schema:      fromShape(f.Shape),
			})
		}
	}

	ok := Response{Description: "Successful response"}
	if p.Output != nil {
		ok.Content = map[string]MediaType{
			"application/json": {Schema: fromShape(p.Output.Describe())},
		}
	}
	op.Responses["200"] = ok

	errCodes := append([]procedure.Code{}, p.ErrorCodes...)
	if p.Input != nil {
		errCodes = append(errCodes, procedure.CodeBadRequest)
	}
	if p.Protect {
		errCodes = append(errCodes, procedure.CodeUnauthorized)
		op.Security = []SecurityRequirement{{securityScheme: {}}}
	}
	errCodes = append(errCodes, procedure.CodeInternal)

	for _, c := range errCodes {
		status := strconv.Itoa(c.Status())
		if _, exists := op.Responses[status]; exists {
			continue
		}
		op.Responses[status] = Response{
			Description: string(c),
			Content: map[string]MediaType{
				"application/json": {Schema: &Schema{Ref: "#/components/schemas/Error"}},
			},
		}
	}

	return op
}

// requestBody renders the body-sourced subset of the input schema.
func requestBody(p procedure.Procedure, inputShape schema.Shape, pathParams map[string]bool) *RequestBody {
	props := make(map[string]*Schema)
	var required []string
	for _, f := range inputShape.Fields {
		if pathParams[f.Name] {
			continue
		}
		props[f.Name] = fromShape(f.Shape)
		if !f.Shape.Optional {
			required = append(required, f.Name)
		}
	}
	if len(props) == 0 {
		return nil
	}

	body := &Schema{Type: "object", Properties: props, Required: required}
	content := make(map[string]MediaType, len(p.ContentTypes))
	for _, ct := range p.ContentTypes {
		content[ct] = MediaType{Schema: body}
	}
	return &RequestBody{Required: len(required) > 0, Content: content}
}

// fromShape converts introspected schema metadata to a JSON Schema node.
func fromShape(s schema.Shape) *Schema {
	out := &Schema{Description: s.Description, Nullable: s.Nullable}

	switch s.Kind {
	case schema.KindString:
		out.Type = "string"
		out.Enum = s.Enum
	case schema.KindNumber:
		out.Type = "number"
	case schema.KindInteger:
		out.Type = "integer"
	case schema.KindBoolean:
		out.Type = "boolean"
	case schema.KindDate:
		out.Type = "string"
		out.Format = "date-time"
	case schema.KindArray:
		out.Type = "array"
		if s.Elem != nil {
			out.Items = fromShape(*s.Elem)
		}
	case schema.KindObject:
		out.Type = "object"
		out.Properties = make(map[string]*Schema, len(s.Fields))
		for _, f := range s.Fields {
			out.Properties[f.Name] = fromShape(f.Shape)
			if !f.Shape.Optional {
				out.Required = append(out.Required, f.Name)
			}
		}
	}

	return out
}

// errorSchema is the shared error response body shape.
func errorSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"message": {Type: "string"},
			"code":    {Type: "string"},
			"issues": {
				Type: "array",
				Items: &Schema{
					Type: "object",
					Properties: map[string]*Schema{
						"path":     {Type: "array", Items: &Schema{Type: "string"}},
						"message":  {Type: "string"},
						"expected": {Type: "string"},
						"received": {Type: "string"},
					},
					Required: []string{"path", "message"},
				},
			},
		},
		Required: []string{"message", "code"},
	}
}

// pathKey normalizes a template for use as an OpenAPI path key.
func pathKey(raw string) string {
	if raw == "/" {
		return raw
	}
	return strings.TrimSuffix(raw, "/")
}

func setOperation(item *PathItem, method string, op *Operation) {
	switch method {
	case "GET":
		item.Get = op
	case "POST":
		item.Post = op
	case "PUT":
		item.Put = op
	case "PATCH":
		item.Patch = op
	case "DELETE":
		item.Delete = op
	}
}
