package services_test

import (
	"fmt"
	"testing"
	"time"

	"toyshop/internal/models"
	"toyshop/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(t *testing.T) *services.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	authService, err := services.NewAuthService(services.AuthConfig{
		AdminEmail:   "admin",
		PasswordHash: string(hash),
		JWTSecret:    testJWTSecret,
	})
	require.NoError(t, err)
	return authService
}

func TestAuthService_Login(t *testing.T) {
	authService := newAuthService(t)

	identity, err := authService.Login("admin", "password123")
	require.NoError(t, err)
	assert.Equal(t, "admin", identity.Email)

	_, err = authService.Login("admin", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = authService.Login("someone@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_PlainPasswordIsHashedAtStartup(t *testing.T) {
	authService, err := services.NewAuthService(services.AuthConfig{
		AdminEmail: "admin",
		Password:   "hunter2",
		JWTSecret:  testJWTSecret,
	})
	require.NoError(t, err)

	_, err = authService.Login("admin", "hunter2")
	assert.NoError(t, err)

	_, err = services.NewAuthService(services.AuthConfig{AdminEmail: "admin", JWTSecret: testJWTSecret})
	assert.Error(t, err)
}

func TestAuthService_IsAdmin(t *testing.T) {
	authService := newAuthService(t)
	assert.True(t, authService.IsAdmin("admin"))
	assert.False(t, authService.IsAdmin("guest"))
	assert.False(t, authService.IsAdmin(""))
}

func TestAuthService_IssueAndValidateToken(t *testing.T) {
	authService := newAuthService(t)

	token, err := authService.IssueToken(&models.Identity{Email: "admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, "admin", claims["email"])
	assert.NotEmpty(t, claims["jti"])

	identity, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", identity.Email)
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	authService := newAuthService(t)

	_, err := authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "admin",
		"exp":   jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)

	otherSecret := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "admin",
		"exp":   jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	otherSecretString, _ := otherSecret.SignedString([]byte("another_secret"))
	_, err = authService.ValidateToken(otherSecretString)
	assert.Error(t, err)

	noEmail := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	noEmailString, _ := noEmail.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(noEmailString)
	assert.Error(t, err)
}
