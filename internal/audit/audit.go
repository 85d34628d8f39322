package audit

import (
	"context"
	"sync"

	"github.com/khanghh/casoauth/model"
)

var auditRepo AuditEventRepository
var initOnce sync.Once

func Initialize(repo AuditEventRepository) {
	initOnce.Do(func() {
		auditRepo = repo
	})
}

const (
	EventTypeLoginSuccess = "login_success"
	EventTypeLoginFailure = "login_failure"
	EventTypeTokenGranted = "token_granted"
	EventTypeTokenRevoked = "token_revoked"
)

type LoginRecord struct {
	Username string
	Success  bool
	Reason   string
}

type TokenRecord struct {
	TokenID     string
	TokenType   model.TokenType
	ClientID    string
	PrincipalID string
	Service     string
	Reason      string
}

func RecordLogin(ctx context.Context, record LoginRecord) error {
	if auditRepo == nil {
		return nil
	}
	eventType := EventTypeLoginFailure
	if record.Success {
		eventType = EventTypeLoginSuccess
	}
	return auditRepo.RecordEvent(ctx, &model.AuditEvent{
		PrincipalID: record.Username,
		EventType:   eventType,
		Reason:      record.Reason,
	})
}

func RecordTokenGranted(ctx context.Context, record TokenRecord) error {
	return recordTokenEvent(ctx, EventTypeTokenGranted, record)
}

func RecordTokenRevoked(ctx context.Context, record TokenRecord) error {
	return recordTokenEvent(ctx, EventTypeTokenRevoked, record)
}

func recordTokenEvent(ctx context.Context, eventType string, record TokenRecord) error {
	if auditRepo == nil {
		return nil
	}
	return auditRepo.RecordEvent(ctx, &model.AuditEvent{
		PrincipalID: record.PrincipalID,
		EventType:   eventType,
		TokenID:     record.TokenID,
		TokenType:   string(record.TokenType),
		ClientID:    record.ClientID,
		Service:     record.Service,
		Reason:      record.Reason,
	})
}
