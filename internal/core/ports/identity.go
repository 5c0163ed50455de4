package ports

import "context"

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID string
	Email  string
}

// TokenVerifier resolves bearer tokens. Unresolvable tokens yield
// domain.ErrUnauthorized.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// IdentityProvider owns credentials on behalf of the marketplace.
type IdentityProvider interface {
	TokenVerifier
	// CreateUser registers credentials and returns the provider's user id.
	// Provider-side refusals are wrapped in domain.ErrSignupRejected.
	CreateUser(ctx context.Context, email, password, username string) (*Identity, error)
}

// PasswordAuthenticator is implemented by providers that issue their own
// tokens. Only those expose a login route.
type PasswordAuthenticator interface {
	Login(ctx context.Context, email, password string) (string, *Identity, error)
}
