package auth

import "fmt"

// HashError reports a stored password hash that cannot be interpreted.
type HashError struct {
	Err error
}

func (e *HashError) Error() string { return fmt.Sprintf("corrupt password hash: %v", e.Err) }

func (e *HashError) Unwrap() error { return e.Err }

// TokenErrorKind classifies token verification failures.
type TokenErrorKind int

const (
	TokenMalformed TokenErrorKind = iota + 1
	TokenExpired
)

func (k TokenErrorKind) String() string {
	switch k {
	case TokenMalformed:
		return "malformed"
	case TokenExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// TokenError is returned by TokenIssuer.Verify.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + e.Kind.String()
	}
	return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// AuthErrorKind classifies why a request was not authenticated.
type AuthErrorKind int

const (
	AuthNoToken AuthErrorKind = iota + 1
	AuthInvalidToken
)

// AuthError is returned by Authenticate when a request carries no usable token.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case AuthNoToken:
		return "No token provided"
	case AuthInvalidToken:
		return "Invalid token"
	default:
		return "Unauthorized"
	}
}

func (e *AuthError) Unwrap() error { return e.Err }
