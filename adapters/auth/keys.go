// Package auth provides the context-construction collaborator for
// protected procedures: bearer API keys checked against bcrypt hashes.
package auth

import (
	"context"
	"strings"

	"github.com/artpar/rpcgate/domain/procedure"
	"github.com/artpar/rpcgate/domain/wire"
	"github.com/artpar/rpcgate/ports"
	"golang.org/x/crypto/bcrypt"
)

// Principal identifies the authenticated caller.
type Principal struct {
	KeyID string
}

type principalKey struct{}

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// KeyAuthenticator validates bearer API keys of the form "<id>.<secret>"
// against configured bcrypt hashes. It implements ports.ContextBuilder:
// a failed check returns an UNAUTHORIZED domain error, which the engine
// maps before the procedure handler is ever reached.
type KeyAuthenticator struct {
	hashes map[string][]byte // key ID -> bcrypt hash of the secret
}

// NewKeyAuthenticator creates an authenticator from key ID to hash.
func NewKeyAuthenticator(keys map[string]string) *KeyAuthenticator {
	hashes := make(map[string][]byte, len(keys))
	for id, hash := range keys {
		hashes[id] = []byte(hash)
	}
	return &KeyAuthenticator{hashes: hashes}
}

// BuildContext authenticates the request and returns a context carrying
// the principal.
func (a *KeyAuthenticator) BuildContext(ctx context.Context, req wire.Request) (context.Context, error) {
	raw := req.Header("Authorization")
	if raw == "" {
		return nil, procedure.NewError(procedure.CodeUnauthorized, "missing Authorization header")
	}

	token, ok := strings.CutPrefix(raw, "Bearer ")
	if !ok {
		return nil, procedure.NewError(procedure.CodeUnauthorized, "authorization scheme must be Bearer")
	}

	id, secret, ok := strings.Cut(token, ".")
	if !ok {
		return nil, procedure.NewError(procedure.CodeUnauthorized, "malformed API key")
	}

	hash, ok := a.hashes[id]
	if !ok {
		return nil, procedure.NewError(procedure.CodeUnauthorized, "invalid API key")
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return nil, procedure.NewError(procedure.CodeUnauthorized, "invalid API key")
	}

	return WithPrincipal(ctx, Principal{KeyID: id}), nil
}

// HashKey hashes a key secret for storage in configuration.
func HashKey(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Ensure interface compliance.
var _ ports.ContextBuilder = (*KeyAuthenticator)(nil)
