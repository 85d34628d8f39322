package model

import (
	"time"

	"gorm.io/gorm"
)

// PersonalAccessToken is a static, pre-authorized grant definition. Issuing
// an access token from it reuses this id, so it must never collide with the
// authorization code or refresh token prefixes.
type PersonalAccessToken struct {
	ID          string `gorm:"primaryKey;size:64"`
	PrincipalID string `gorm:"size:64;not null;index"`
	Scope       string `gorm:"size:1024;not null"` // sorted, space separated scope names
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (t *PersonalAccessToken) Scopes() []string {
	return SplitScopes(t.Scope)
}
