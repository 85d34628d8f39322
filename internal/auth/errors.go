package auth

import "errors"

var (
	ErrAccountNotFound          = errors.New("account not found")
	ErrInvalidPassword          = errors.New("invalid password")
	ErrInvalidOneTimeCode       = errors.New("invalid one time code")
	ErrServiceNotFound          = errors.New("service not found")
	ErrServiceAlreadyRegistered = errors.New("service already registered")
	ErrInstitutionNotFound      = errors.New("institution not found")
)
