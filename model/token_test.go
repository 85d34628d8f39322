package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariantForTokenID(t *testing.T) {
	tests := []struct {
		tokenID string
		want    TokenVariant
	}{
		{"AC-0b5e1c9e-7f4a-4f5d-9b5a-1c2d3e4f5a6b", VariantAuthorizationCode},
		{"RT-0b5e1c9e-7f4a-4f5d-9b5a-1c2d3e4f5a6b", VariantRefreshToken},
		{"AT-0b5e1c9e-7f4a-4f5d-9b5a-1c2d3e4f5a6b", VariantAccessToken},
		{"PAT-my-static-token", VariantAccessToken}, // personal tokens resolve as access tokens
		{"ACME-123", VariantAccessToken},            // prefix match requires the separator
		{"RTX", VariantAccessToken},
		{"", VariantAccessToken},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VariantForTokenID(tt.tokenID), "tokenID=%q", tt.tokenID)
	}
}

func TestJoinScopes(t *testing.T) {
	assert.Equal(t, "", JoinScopes(nil))
	assert.Equal(t, "email profile", JoinScopes([]string{"profile", "email"}))
	assert.Equal(t, "email profile", JoinScopes([]string{"email", "profile", "email", ""}))

	// canonical form is stable regardless of input order
	assert.Equal(t,
		JoinScopes([]string{"a", "c", "b"}),
		JoinScopes([]string{"c", "b", "a", "b"}),
	)
}

func TestSplitScopes(t *testing.T) {
	assert.Empty(t, SplitScopes(""))
	assert.Equal(t, []string{"email", "profile"}, SplitScopes("email profile"))

	token := Token{Scope: JoinScopes([]string{"profile", "email"})}
	assert.ElementsMatch(t, []string{"profile", "email"}, token.Scopes())
}
