package auth

import (
	"context"
	"errors"

	"github.com/khanghh/casoauth/model"
	"gorm.io/gorm"
)

type InstitutionRepository interface {
	GetByProviderID(ctx context.Context, providerID string) (*model.Institution, error)
}

type institutionRepository struct {
	db *gorm.DB
}

func (r *institutionRepository) GetByProviderID(ctx context.Context, providerID string) (*model.Institution, error) {
	var institution model.Institution
	err := r.db.WithContext(ctx).Where("provider_id = ?", providerID).First(&institution).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInstitutionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &institution, nil
}

func NewInstitutionRepository(db *gorm.DB) InstitutionRepository {
	return &institutionRepository{db}
}

// InstitutionService exposes the single institution lookup the rest of the
// system needs.
type InstitutionService struct {
	institutionRepo InstitutionRepository
}

func (s *InstitutionService) GetInstitution(ctx context.Context, providerID string) (*model.Institution, error) {
	return s.institutionRepo.GetByProviderID(ctx, providerID)
}

func (s *InstitutionService) FindLogoutURLByProviderID(ctx context.Context, providerID string) (string, error) {
	institution, err := s.institutionRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		return "", err
	}
	return institution.LogoutURL, nil
}

func NewInstitutionService(institutionRepo InstitutionRepository) *InstitutionService {
	return &InstitutionService{
		institutionRepo: institutionRepo,
	}
}
