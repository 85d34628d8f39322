package auth

import (
	"context"
	"errors"

	"github.com/khanghh/casoauth/model"
	"gorm.io/gorm"
)

type ServiceRepository interface {
	GetByClientID(ctx context.Context, clientID string) (*model.Service, error)
	Create(ctx context.Context, service *model.Service) error
	DeleteByClientID(ctx context.Context, clientID string) error
}

type serviceRepository struct {
	db *gorm.DB
}

func (r *serviceRepository) GetByClientID(ctx context.Context, clientID string) (*model.Service, error) {
	var service model.Service
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *serviceRepository) DeleteByClientID(ctx context.Context, clientID string) error {
	return r.db.WithContext(ctx).Where("client_id = ?", clientID).Delete(&model.Service{}).Error
}

func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db}
}
