package middleware

import (
	"errors"
	"strings"

	"toyshop/internal/models"
	"toyshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// SessionEmailKey is the session field holding the signed-in email.
const SessionEmailKey = "email"

// IdentityLocalsKey is where AdminRequired leaves the identity for handlers.
const IdentityLocalsKey = "identity"

var (
	errNoCredentials    = errors.New("authentication required")
	errMalformedBearer  = errors.New("authorization header format must be 'Bearer <token>'")
	errSessionNotLoaded = errors.New("session could not be loaded")
)

// Identity resolves the caller from a bearer token when one is sent, otherwise
// from the session cookie. It returns nil and an error when neither is present.
func Identity(c *fiber.Ctx, sessions *session.Store, auth *services.AuthService) (*models.Identity, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, errMalformedBearer
		}
		return auth.ValidateToken(parts[1])
	}

	sess, err := sessions.Get(c)
	if err != nil {
		zap.S().Warnf("failed to load session: %v", err)
		return nil, errSessionNotLoaded
	}
	email, _ := sess.Get(SessionEmailKey).(string)
	if email == "" {
		return nil, errNoCredentials
	}
	return &models.Identity{Email: email}, nil
}

// AdminRequired lets only the configured admin identity through.
func AdminRequired(sessions *session.Store, auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := Identity(c, sessions, auth)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if !auth.IsAdmin(identity.Email) {
			zap.S().Infof("admin access denied for %s on %s %s", identity.Email, c.Method(), c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "access denied",
			})
		}

		c.Locals(IdentityLocalsKey, identity)
		return c.Next()
	}
}
