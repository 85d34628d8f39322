package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/khanghh/casoauth/internal/audit"
	"github.com/khanghh/casoauth/model"
	"github.com/khanghh/casoauth/params"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator verifies a username/password pair against the user table,
// plus a time-based one time code when the account has one enrolled.
type Authenticator struct {
	userRepo UserRepository
}

func (a *Authenticator) Authenticate(ctx context.Context, username, password, oneTimeCode string) (*model.User, error) {
	if username == "" {
		return nil, ErrAccountNotFound
	}
	user, err := a.userRepo.GetActiveUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		slog.Debug("Password verification failed", "username", username)
		audit.RecordLogin(ctx, audit.LoginRecord{Username: username, Reason: "invalid password"})
		return nil, ErrInvalidPassword
	}

	if user.TOTPSecret != "" {
		valid, err := totp.ValidateCustom(oneTimeCode, user.TOTPSecret, time.Now(), totp.ValidateOpts{
			Period:    30,
			Skew:      params.TOTPIntervalWindow,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
		if err != nil || !valid {
			slog.Debug("One time code verification failed", "username", username)
			audit.RecordLogin(ctx, audit.LoginRecord{Username: username, Reason: "invalid one time code"})
			return nil, ErrInvalidOneTimeCode
		}
	}
	audit.RecordLogin(ctx, audit.LoginRecord{Username: username, Success: true})
	return user, nil
}

func NewAuthenticator(userRepo UserRepository) *Authenticator {
	return &Authenticator{
		userRepo: userRepo,
	}
}
