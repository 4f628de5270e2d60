package auth

import (
	"context"
	"strings"
)

const bearerPrefix = "Bearer "

// Verifier validates a token and returns the username it was issued for.
type Verifier interface {
	Verify(token string) (string, error)
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate resolves an Authorization header to a username.
func Authenticate(header string, v Verifier) (string, error) {
	token, ok := ParseBearer(header)
	if !ok {
		return "", &AuthError{Kind: AuthNoToken}
	}
	username, err := v.Verify(token)
	if err != nil {
		return "", &AuthError{Kind: AuthInvalidToken, Err: err}
	}
	return username, nil
}

type ctxKey struct{}

// WithUsername returns a copy of ctx carrying the authenticated username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKey{}, username)
}

// UsernameFromContext returns the username set by WithUsername, if any.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(ctxKey{}).(string)
	return username, ok && username != ""
}
