package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslabkom/announcer-api/internal/models"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
	err    error
}

func (v validatorStub) ValidateToken(string) (*models.JWTClaims, error) {
	return v.claims, v.err
}

func newJWTRouter(v tokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWTAuth(v), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.String(http.StatusOK, claims.Name)
	})
	return r
}

func TestJWTAuthAcceptsBearerToken(t *testing.T) {
	r := newJWTRouter(validatorStub{claims: &models.JWTClaims{Name: "Admin"}})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Admin", w.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		stub   validatorStub
	}{
		{"missing header", "", validatorStub{}},
		{"not bearer", "Basic abc", validatorStub{}},
		{"invalid token", "Bearer bad", validatorStub{err: appErrors.ErrUnauthorized}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newJWTRouter(tc.stub)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
