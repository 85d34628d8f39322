package model

import (
	"sort"
	"strings"
	"time"
)

// TokenType describes how a token was obtained and how it may be used. It is
// independent of the token variant: an access token can be of any type.
type TokenType string

const (
	TokenTypeCAS      TokenType = "CAS"
	TokenTypeOnline   TokenType = "ONLINE"
	TokenTypeOffline  TokenType = "OFFLINE"
	TokenTypePersonal TokenType = "PERSONAL"
)

// TokenVariant is the storage class of a token. The three variants share one
// table and one lookup path; the id prefix alone decides the variant.
type TokenVariant string

const (
	VariantAuthorizationCode TokenVariant = "authorization_code"
	VariantRefreshToken      TokenVariant = "refresh_token"
	VariantAccessToken       TokenVariant = "access_token"
)

const (
	AuthorizationCodePrefix   = "AC"
	RefreshTokenPrefix        = "RT"
	AccessTokenPrefix         = "AT"
	PersonalAccessTokenPrefix = "PAT"
)

// VariantForTokenID routes a token id to its variant by prefix. Anything that
// is neither an authorization code nor a refresh token is looked up as an
// access token; personal access token definitions never go through this path.
func VariantForTokenID(tokenID string) TokenVariant {
	switch {
	case strings.HasPrefix(tokenID, AuthorizationCodePrefix+"-"):
		return VariantAuthorizationCode
	case strings.HasPrefix(tokenID, RefreshTokenPrefix+"-"):
		return VariantRefreshToken
	default:
		return VariantAccessToken
	}
}

// Token is a stored capability bound to exactly one ticket. The ticket is the
// sole source of truth for expiry; deleting it is the only revocation
// mechanism, so there is no revoked flag here.
type Token struct {
	ID          string       `gorm:"primaryKey;size:64"`
	Variant     TokenVariant `gorm:"size:32;not null;index"`
	Type        TokenType    `gorm:"size:16;not null;index"`
	ClientID    string       `gorm:"size:64;index"` // empty only for CAS and PERSONAL tokens
	PrincipalID string       `gorm:"size:64;not null;index"`
	TicketID    string       `gorm:"size:128;not null"`
	Service     string       `gorm:"size:1024"`          // target endpoint; empty for CAS/PERSONAL flows
	Scope       string       `gorm:"size:1024;not null"` // sorted, space separated scope names
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Token) Scopes() []string {
	return SplitScopes(t.Scope)
}

// JoinScopes canonicalizes a scope set into its stored form: deduplicated,
// sorted, space separated. Two equal sets always produce the same string.
func JoinScopes(scopes []string) string {
	seen := make(map[string]struct{}, len(scopes))
	uniq := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		if scope == "" {
			continue
		}
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		uniq = append(uniq, scope)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, " ")
}

func SplitScopes(scope string) []string {
	return strings.Fields(scope)
}
