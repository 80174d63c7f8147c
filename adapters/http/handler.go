// Package http provides the chi transport binding for the engine.
package http

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/artpar/rpcgate/adapters/clock"
	"github.com/artpar/rpcgate/adapters/idgen"
	"github.com/artpar/rpcgate/app"
	"github.com/artpar/rpcgate/domain/procedure"
	"github.com/artpar/rpcgate/domain/wire"
	"github.com/artpar/rpcgate/ports"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler translates native HTTP requests into the engine's abstract
// request shape and writes the returned response descriptors back out.
type Handler struct {
	engine       *app.Engine
	logger       zerolog.Logger
	clock        ports.Clock
	ids          ports.IDGenerator
	requestLog   ports.RequestLogStore
	maxBodyBytes int64
}

// Deps contains dependencies for the HTTP handler.
type Deps struct {
	Engine *app.Engine
	Logger zerolog.Logger
	Clock  ports.Clock           // optional, defaults to the system clock
	IDs    ports.IDGenerator     // optional, defaults to UUIDs
	Log    ports.RequestLogStore // optional request persistence

	// MaxBodyBytes bounds how much of the request body is read. It should
	// match the engine's configured ceiling; one extra byte is read so the
	// engine can detect oversized payloads.
	MaxBodyBytes int64
}

// NewHandler creates a new transport handler.
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		engine:       deps.Engine,
		logger:       deps.Logger.With().Str("service", "http").Logger(),
		clock:        deps.Clock,
		ids:          deps.IDs,
		requestLog:   deps.Log,
		maxBodyBytes: deps.MaxBodyBytes,
	}
	if h.clock == nil {
		h.clock = clock.Real{}
	}
	if h.ids == nil {
		h.ids = idgen.UUID{}
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = app.DefaultMaxBodyBytes
	}
	return h
}

// ServeHTTP handles one procedure request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := h.clock.Now()
	traceID := h.ids.New()

	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes+1))
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to read request body")
			writeJSON(w, http.StatusBadRequest, app.ErrorBody{
				Message: "failed to read request body",
				Code:    procedure.CodeBadRequest,
			})
			return
		}
		body = b
	}

	req := wire.Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		Query:    r.URL.Query(),
		Headers:  flattenHeaders(r.Header),
		Body:     body,
		RemoteIP: remoteIP(r),
		TraceID:  traceID,
	}

	result := h.engine.Handle(r.Context(), req)
	resp := result.Response

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("X-Request-Id", traceID)
	writeJSON(w, resp.Status, resp.Body)

	latency := h.clock.Now().Sub(start)
	h.logger.Info().
		Str("method", req.Method).
		Str("path", req.Path).
		Str("procedure", result.Procedure).
		Int("status", resp.Status).
		Dur("latency", latency).
		Str("trace_id", traceID).
		Msg("request")

	if h.requestLog != nil {
		entry := ports.RequestLog{
			ID:        traceID,
			Procedure: result.Procedure,
			Method:    req.Method,
			Path:      req.Path,
			Status:    resp.Status,
			Code:      string(result.Code),
			LatencyMs: latency.Milliseconds(),
			RemoteIP:  req.RemoteIP,
			CreatedAt: start,
		}
		if err := h.requestLog.Record(r.Context(), entry); err != nil {
			h.logger.Warn().Err(err).Msg("failed to record request log")
		}
	}
}

// Router assembles the chi router: operational endpoints first, then the
// engine as the catch-all.
func (h *Handler) Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if len(opts.OpenAPIDoc) > 0 {
		mountDocs(r, opts.OpenAPIDoc)
	}
	r.Handle("/*", h)

	return r
}

// RouterOptions configures the operational endpoints mounted next to the
// procedure catch-all.
type RouterOptions struct {
	OpenAPIDoc []byte       // pre-generated document; empty disables /openapi.json and /docs
	Metrics    http.Handler // e.g. promhttp.Handler(); nil disables /metrics
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// flattenHeaders keeps the first value per header under canonical names.
func flattenHeaders(src http.Header) map[string]string {
	out := make(map[string]string, len(src))
	for k, vs := range src {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// remoteIP extracts the client IP, honoring X-Forwarded-For.
func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
