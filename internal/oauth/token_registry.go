package oauth

import (
	"context"
	"errors"

	"github.com/khanghh/casoauth/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRegistry persists tokens and answers the ownership queries the
// orchestrator needs. All three variants share one table; every lookup
// filters by variant so a refresh token id can never resolve as a code.
type TokenRegistry interface {
	AddToken(ctx context.Context, token *model.Token) error
	GetToken(ctx context.Context, tokenID string, variant model.TokenVariant) (*model.Token, error)
	GetClientTokens(ctx context.Context, clientID string, variant model.TokenVariant) ([]*model.Token, error)
	GetClientPrincipalTokens(ctx context.Context, clientID, principalID string, variant model.TokenVariant, types ...model.TokenType) ([]*model.Token, error)
	GetPrincipalTokens(ctx context.Context, principalID string, variant model.TokenVariant) ([]*model.Token, error)
	HasToken(ctx context.Context, clientID, principalID string, scopes []string, variant model.TokenVariant, types ...model.TokenType) (bool, error)
	CountDistinctPrincipals(ctx context.Context, clientID string) (int64, error)
}

type tokenRegistry struct {
	db *gorm.DB
}

// AddToken upserts by id. Revocation only ever deletes tickets, so a token
// row can outlive its ticket; personal access tokens reuse the definition's
// id on every issuance and must overwrite such a stale row.
func (r *tokenRegistry) AddToken(ctx context.Context, token *model.Token) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(token).Error
}

func (r *tokenRegistry) GetToken(ctx context.Context, tokenID string, variant model.TokenVariant) (*model.Token, error) {
	var token model.Token
	err := r.db.WithContext(ctx).
		Where("id = ?", tokenID).
		Where("variant = ?", variant).
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRegistry) GetClientTokens(ctx context.Context, clientID string, variant model.TokenVariant) ([]*model.Token, error) {
	var tokens []*model.Token
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("variant = ?", variant).
		Find(&tokens).Error
	return tokens, err
}

func (r *tokenRegistry) GetClientPrincipalTokens(ctx context.Context, clientID, principalID string, variant model.TokenVariant, types ...model.TokenType) ([]*model.Token, error) {
	query := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("principal_id = ?", principalID).
		Where("variant = ?", variant)
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	var tokens []*model.Token
	err := query.Find(&tokens).Error
	return tokens, err
}

func (r *tokenRegistry) GetPrincipalTokens(ctx context.Context, principalID string, variant model.TokenVariant) ([]*model.Token, error) {
	var tokens []*model.Token
	err := r.db.WithContext(ctx).
		Where("principal_id = ?", principalID).
		Where("variant = ?", variant).
		Find(&tokens).Error
	return tokens, err
}

func (r *tokenRegistry) HasToken(ctx context.Context, clientID, principalID string, scopes []string, variant model.TokenVariant, types ...model.TokenType) (bool, error) {
	query := r.db.WithContext(ctx).Model(&model.Token{}).
		Where("client_id = ?", clientID).
		Where("principal_id = ?", principalID).
		Where("variant = ?", variant).
		Where("scope = ?", model.JoinScopes(scopes))
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *tokenRegistry) CountDistinctPrincipals(ctx context.Context, clientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Token{}).
		Where("client_id = ?", clientID).
		Distinct("principal_id").
		Count(&count).Error
	return count, err
}

func NewTokenRegistry(db *gorm.DB) TokenRegistry {
	return &tokenRegistry{db}
}
