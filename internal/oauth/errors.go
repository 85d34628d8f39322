package oauth

import (
	"errors"
	"fmt"
)

var (
	ErrTokenNotFound       = errors.New("token not found")
	ErrAuthorizationDenied = errors.New("authorization denied")
)

// InvalidTokenError reports a token that is absent, expired, or whose
// exchange failed downstream. It is always keyed to the token being
// exchanged, never to the underlying session failure.
type InvalidTokenError struct {
	TokenID string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token: %s", e.TokenID)
}

func NewInvalidTokenError(tokenID string) *InvalidTokenError {
	return &InvalidTokenError{TokenID: tokenID}
}

// InvalidScopeError reports a requested scope name with no catalog entry.
type InvalidScopeError struct {
	Scope string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid scope: %s", e.Scope)
}

func NewInvalidScopeError(scope string) *InvalidScopeError {
	return &InvalidScopeError{Scope: scope}
}
