package service

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aslabkom/announcer-api/internal/models"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
)

// operatorIdentity is the single operator account of an installation. There
// is no user store: possession of the access code is the whole identity.
var operatorIdentity = models.UserInfo{
	ID:    "operator",
	Name:  "Admin",
	Role:  "admin",
	Email: "admin@localhost",
}

// AuthServiceConfig carries the installation access code and token settings.
// AccessCode may be a bcrypt hash; a plain value is compared in constant
// time.
type AuthServiceConfig struct {
	AccessCode string
	JWTSecret  string
	Expiration time.Duration
}

// AuthService exchanges the access code for a signed token.
type AuthService struct {
	config    AuthServiceConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(cfg AuthServiceConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = 24 * time.Hour
	}
	return &AuthService{config: cfg, validator: validate, logger: logger}
}

// Login verifies the access code and issues an HS256 token.
func (s *AuthService) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	if !s.verifyAccessCode(req.Password) {
		return nil, appErrors.Clone(appErrors.ErrInvalidAccess, "invalid access code")
	}

	now := time.Now()
	claims := models.JWTClaims{
		Name: operatorIdentity.Name,
		Role: operatorIdentity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorIdentity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.Expiration.Seconds()),
		User:        operatorIdentity,
		IssuedAt:    now,
	}, nil
}

// ValidateToken parses and verifies an issued token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// CurrentUser returns the operator identity.
func (s *AuthService) CurrentUser() models.UserInfo {
	return operatorIdentity
}

func (s *AuthService) verifyAccessCode(candidate string) bool {
	code := s.config.AccessCode
	if strings.HasPrefix(code, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(code), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(candidate)) == 1
}
