package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brainnotes/pkg/domain"
)

// ErrUnauthenticated reports a bearer credential that maps to no identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// SessionLookup resolves an opaque session token to a user ID.
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (string, bool, error)
}

// Resolver turns a bearer credential into an authenticated user. JWT-shaped
// tokens are verified against the auth provider's JWKS; anything else is
// treated as an opaque session token and looked up in the shared session
// store. Either collaborator may be nil when that credential form is not
// accepted by the deployment.
type Resolver struct {
	verifier *Verifier
	sessions SessionLookup
}

// NewResolver builds a resolver from the configured credential backends.
func NewResolver(verifier *Verifier, sessions SessionLookup) *Resolver {
	return &Resolver{verifier: verifier, sessions: sessions}
}

// Resolve validates the token and returns the user it belongs to.
func (r *Resolver) Resolve(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrUnauthenticated
	}
	if looksLikeJWT(token) {
		if r.verifier == nil {
			return domain.User{}, ErrUnauthenticated
		}
		subject, err := r.verifier.VerifySubject(token)
		if err != nil {
			return domain.User{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return domain.User{ID: subject}, nil
	}
	if r.sessions == nil {
		return domain.User{}, ErrUnauthenticated
	}
	userID, ok, err := r.sessions.Lookup(ctx, token)
	if err != nil {
		return domain.User{}, fmt.Errorf("session lookup: %w", err)
	}
	if !ok || strings.TrimSpace(userID) == "" {
		return domain.User{}, ErrUnauthenticated
	}
	return domain.User{ID: userID}, nil
}

func looksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}
