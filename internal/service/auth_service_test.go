package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aslabkom/announcer-api/internal/models"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
)

func newAuthFixture(accessCode string) *AuthService {
	return NewAuthService(AuthServiceConfig{
		AccessCode: accessCode,
		JWTSecret:  "test-secret",
		Expiration: time.Hour,
	}, nil, zap.NewNop())
}

func TestAuthServiceLogin(t *testing.T) {
	svc := newAuthFixture("asleb2026")

	resp, err := svc.Login(models.LoginRequest{Password: "asleb2026"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "admin", resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.Equal(t, "Admin", claims.Name)
}

func TestAuthServiceLoginWrongCode(t *testing.T) {
	svc := newAuthFixture("asleb2026")

	_, err := svc.Login(models.LoginRequest{Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidAccess.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginEmptyCode(t *testing.T) {
	svc := newAuthFixture("asleb2026")

	_, err := svc.Login(models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginBcryptCode(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("asleb2026"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := newAuthFixture(string(hash))

	_, err = svc.Login(models.LoginRequest{Password: "asleb2026"})
	require.NoError(t, err)

	_, err = svc.Login(models.LoginRequest{Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidAccess.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture("asleb2026")

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenForeignSecret(t *testing.T) {
	issuer := newAuthFixture("asleb2026")
	resp, err := issuer.Login(models.LoginRequest{Password: "asleb2026"})
	require.NoError(t, err)

	verifier := NewAuthService(AuthServiceConfig{
		AccessCode: "asleb2026",
		JWTSecret:  "different-secret",
		Expiration: time.Hour,
	}, nil, zap.NewNop())

	_, err = verifier.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}
