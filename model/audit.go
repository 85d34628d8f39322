package model

import "time"

type AuditEvent struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	PrincipalID string    `gorm:"size:64;index"`          // subject the token speaks for
	EventType   string    `gorm:"size:64;not null;index"` // token_granted, token_revoked...
	TokenID     string    `gorm:"size:64;index"`
	TokenType   string    `gorm:"size:16"`
	ClientID    string    `gorm:"size:64;index"`  // owning client (optional)
	Service     string    `gorm:"size:512"`       // target endpoint (optional)
	Reason      string    `gorm:"size:512"`       // failure reason or context
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (AuditEvent) TableName() string {
	return "audit"
}
