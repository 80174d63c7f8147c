// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/rpcgate/domain/wire"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers (request trace IDs).
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Request Processing Ports
// -----------------------------------------------------------------------------

// ContextBuilder constructs the per-request invocation context. It runs
// once per request, before input validation, when the matched procedure is
// protected. A returned error is normalized like a procedure error, so an
// authenticator signals failure by returning an UNAUTHORIZED domain error.
type ContextBuilder interface {
	BuildContext(ctx context.Context, req wire.Request) (context.Context, error)
}

// Metrics records per-request engine observations.
type Metrics interface {
	// ObserveRequest records one resolved request. proc is the procedure
	// name or empty when no route matched.
	ObserveRequest(proc, method string, status int, latency time.Duration)
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// RequestLog is one recorded request outcome.
type RequestLog struct {
	ID        string
	Procedure string
	Method    string
	Path      string
	Status    int
	Code      string // error code, empty on success
	LatencyMs int64
	RemoteIP  string
	CreatedAt time.Time
}

// RequestLogStore persists request outcomes for auditing.
type RequestLogStore interface {
	// Record stores one request log entry.
	Record(ctx context.Context, entry RequestLog) error

	// ListRecent returns the newest entries, most recent first.
	ListRecent(ctx context.Context, limit int) ([]RequestLog, error)
}
