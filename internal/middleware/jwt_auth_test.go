package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string, method jwt.SigningMethod) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: "507f1f77bcf86cd799439011",
		Email:  "viewer@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func invoke(t *testing.T, authHeader string) (int, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := JWTAuthMiddleware(testSecret)(next)(c)
	if err != nil {
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		return he.Code, c
	}
	return rec.Code, c
}

func TestJWTAuthAcceptsValidBearerToken(t *testing.T) {
	code, c := invoke(t, "Bearer "+signedToken(t, testSecret, jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusOK, code)

	claims, ok := UserClaims(c)
	require.True(t, ok)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
	assert.Equal(t, "viewer@example.com", claims.Email)
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	code, _ := invoke(t, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestJWTAuthRejectsMalformedHeader(t *testing.T) {
	code, _ := invoke(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = invoke(t, "Bearer")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	code, _ := invoke(t, "Bearer "+signedToken(t, "other-secret", jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	claims := &models.JwtCustomClaims{
		UserID: "507f1f77bcf86cd799439011",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	code, _ := invoke(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, code)
}
