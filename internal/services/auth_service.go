package services

import (
	"errors"
	"fmt"
	"time"

	"toyshop/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthConfig describes the single admin account.
type AuthConfig struct {
	AdminEmail string
	// PasswordHash is a bcrypt hash. When empty, Password is hashed at startup.
	PasswordHash string
	Password     string
	JWTSecret    string
	TokenTTL     time.Duration
}

// AuthService authenticates the admin account and issues API tokens.
type AuthService struct {
	adminEmail   string
	passwordHash []byte
	jwtSecret    []byte
	tokenDurat   time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthConfig) (*AuthService, error) {
	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		if cfg.Password == "" {
			return nil, errors.New("admin password is not configured")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		adminEmail:   cfg.AdminEmail,
		passwordHash: hash,
		jwtSecret:    []byte(cfg.JWTSecret),
		tokenDurat:   ttl,
	}, nil
}

// IsAdmin reports whether email is the admin identity.
func (s *AuthService) IsAdmin(email string) bool {
	return email != "" && email == s.adminEmail
}

// Login checks the credentials against the admin account.
func (s *AuthService) Login(email, password string) (*models.Identity, error) {
	if !s.IsAdmin(email) {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &models.Identity{Email: email}, nil
}

// IssueToken signs a bearer token for identity.
func (s *AuthService) IssueToken(identity *models.Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": identity.Email,
		"jti":   uuid.NewString(),
		"exp":   now.Add(s.tokenDurat).Unix(),
		"iat":   now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a bearer token, returning its identity.
func (s *AuthService) ValidateToken(tokenString string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		zap.S().Debugf("token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, errors.New("invalid token: missing email claim")
	}
	return &models.Identity{Email: email}, nil
}
