// Package auth defines the authentication contracts used by the platform.
//
// The HTTP layer verifies bearer tokens through an Authenticator and
// injects the resulting Claims into the request context. Downstream code
// reads the subject (user id) back out with SubjectFromContext; the
// authorization engine treats the subject as an opaque, already-verified
// identity.
package auth

import (
	"context"
	"time"
)

// Authenticator verifies and issues identity tokens.
type Authenticator interface {
	// Sign creates a new token for the given subject.
	Sign(ctx context.Context, subject string, opts ...SignOption) (Token, error)

	// Verify validates the token and returns the claims.
	Verify(ctx context.Context, token string) (*Claims, error)

	// Revoke invalidates the given token.
	Revoke(ctx context.Context, token string) error
}

// Claims holds the verified identity attributes of a request.
type Claims struct {
	// Subject is the user id the token was issued for.
	Subject string `json:"sub"`

	// Issuer identifies the token issuer.
	Issuer string `json:"iss,omitempty"`

	// ExpiresAt is the expiry as a Unix timestamp.
	ExpiresAt int64 `json:"exp,omitempty"`

	// IssuedAt is the issue time as a Unix timestamp.
	IssuedAt int64 `json:"iat,omitempty"`

	// ID is the unique token id.
	ID string `json:"jti,omitempty"`

	// Extra carries custom claims.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// Token is an issued credential.
type Token interface {
	// GetAccessToken returns the serialized token.
	GetAccessToken() string

	// GetTokenType returns the token type, e.g. "Bearer".
	GetTokenType() string

	// GetExpiresAt returns the expiry as a Unix timestamp.
	GetExpiresAt() int64
}

// BaseToken is the default Token implementation.
type BaseToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
	ExpiresIn   int64  `json:"expires_in"`
}

// GetAccessToken returns the serialized token.
func (t *BaseToken) GetAccessToken() string { return t.AccessToken }

// GetTokenType returns the token type.
func (t *BaseToken) GetTokenType() string { return t.TokenType }

// GetExpiresAt returns the expiry as a Unix timestamp.
func (t *BaseToken) GetExpiresAt() int64 { return t.ExpiresAt }

// SignOptions controls token creation.
type SignOptions struct {
	// ExpiresAt overrides the default expiry.
	ExpiresAt *time.Time

	// TokenID overrides the generated token id.
	TokenID string

	// Extra carries custom claims.
	Extra map[string]interface{}
}

// SignOption is a functional option for Sign.
type SignOption func(*SignOptions)

// WithExpiresAt overrides the token expiry.
func WithExpiresAt(t time.Time) SignOption {
	return func(o *SignOptions) {
		o.ExpiresAt = &t
	}
}

// WithExtra sets custom claims.
func WithExtra(extra map[string]interface{}) SignOption {
	return func(o *SignOptions) {
		o.Extra = extra
	}
}
