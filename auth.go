package memquery

import (
	"context"

	"github.com/hugr-lab/memquery/auth"
)

// Authenticator validates bearer tokens and returns user identity.
// This is re-exported from the auth package for convenience.
type Authenticator = auth.Authenticator

// BearerAuth creates an Authenticator from a validation function.
//
// Example:
//
//	config := memquery.ServerConfig{
//	    Catalog: cat,
//	    Auth: memquery.BearerAuth(func(token string) (string, error) {
//	        return lookupUser(token)
//	    }),
//	}
func BearerAuth(validate func(token string) (identity string, err error)) Authenticator {
	return auth.BearerAuth(validate)
}

// NoAuth returns an Authenticator that allows all requests without validation.
// Useful for development and testing.
func NoAuth() Authenticator {
	return auth.NoAuth()
}

// IdentityFromContext returns the authenticated identity inside scan
// functions, or "" for unauthenticated requests.
func IdentityFromContext(ctx context.Context) string {
	return auth.IdentityFromContext(ctx)
}
