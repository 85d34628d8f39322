package oauth

import (
	"context"
	"errors"

	"github.com/khanghh/casoauth/model"
	"gorm.io/gorm"
)

// PersonalAccessTokenStore resolves static personal access token
// definitions. Definitions are provisioned out of band; the orchestrator
// only ever reads them.
type PersonalAccessTokenStore interface {
	GetToken(ctx context.Context, tokenID string) (*model.PersonalAccessToken, error)
}

type personalAccessTokenStore struct {
	db *gorm.DB
}

func (s *personalAccessTokenStore) GetToken(ctx context.Context, tokenID string) (*model.PersonalAccessToken, error) {
	var token model.PersonalAccessToken
	err := s.db.WithContext(ctx).Where("id = ?", tokenID).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func NewPersonalAccessTokenStore(db *gorm.DB) PersonalAccessTokenStore {
	return &personalAccessTokenStore{db}
}
