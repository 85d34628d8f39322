package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/khanghh/casoauth/model"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepository struct {
	users map[string]*model.User
}

func (r *stubUserRepository) GetActiveUser(ctx context.Context, username string) (*model.User, error) {
	if user, ok := r.users[strings.ToLower(username)]; ok {
		return user, nil
	}
	return nil, ErrAccountNotFound
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticatePassword(t *testing.T) {
	ctx := context.Background()
	repo := &stubUserRepository{users: map[string]*model.User{
		"alice": {Username: "alice", Password: mustHashPassword(t, "hunter2"), Active: true},
	}}
	authenticator := NewAuthenticator(repo)

	user, err := authenticator.Authenticate(ctx, "alice", "hunter2", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = authenticator.Authenticate(ctx, "alice", "wrong", "")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = authenticator.Authenticate(ctx, "bob", "hunter2", "")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = authenticator.Authenticate(ctx, "", "hunter2", "")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAuthenticateOneTimeCode(t *testing.T) {
	ctx := context.Background()
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "casoauth", AccountName: "alice"})
	require.NoError(t, err)

	repo := &stubUserRepository{users: map[string]*model.User{
		"alice": {
			Username:   "alice",
			Password:   mustHashPassword(t, "hunter2"),
			TOTPSecret: key.Secret(),
			Active:     true,
		},
	}}
	authenticator := NewAuthenticator(repo)

	code, err := totp.GenerateCodeCustom(key.Secret(), time.Now(), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	user, err := authenticator.Authenticate(ctx, "alice", "hunter2", code)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = authenticator.Authenticate(ctx, "alice", "hunter2", "000000")
	assert.ErrorIs(t, err, ErrInvalidOneTimeCode)

	// missing code counts as a failed second factor, not a password failure
	_, err = authenticator.Authenticate(ctx, "alice", "hunter2", "")
	assert.ErrorIs(t, err, ErrInvalidOneTimeCode)
}
