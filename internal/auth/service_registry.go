package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/khanghh/casoauth/model"
	"github.com/khanghh/casoauth/params"
)

// ServiceRegistry resolves registered relying applications by client id.
type ServiceRegistry struct {
	serviceRepo ServiceRepository
}

func generateSecret(n int) (string, error) {
	// each 3 bytes → 4 Base64 chars
	rawSize := (n*3 + 3) / 4
	raw := make([]byte, rawSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)
	return secret[:n], nil
}

func (r *ServiceRegistry) GetService(ctx context.Context, clientID string) (*model.Service, error) {
	return r.serviceRepo.GetByClientID(ctx, clientID)
}

func (r *ServiceRegistry) RegisterService(ctx context.Context, service *model.Service) error {
	service.ClientID = uuid.NewString()
	service.ClientSecret, _ = generateSecret(params.ServiceClientSecretLength)
	var mysqlErr *mysql.MySQLError
	if err := r.serviceRepo.Create(ctx, service); errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrServiceAlreadyRegistered
	} else if err != nil {
		return err
	}
	return nil
}

func (r *ServiceRegistry) RemoveService(ctx context.Context, clientID string) error {
	return r.serviceRepo.DeleteByClientID(ctx, clientID)
}

func NewServiceRegistry(serviceRepo ServiceRepository) *ServiceRegistry {
	return &ServiceRegistry{
		serviceRepo: serviceRepo,
	}
}
