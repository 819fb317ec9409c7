package handlers

import (
	"errors"
	"fmt"

	"toyshop/internal/middleware"
	"toyshop/internal/models"
	"toyshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService  *services.AuthService
	sessions     *session.Store
	loginLimiter fiber.Handler
	validate     *validator.Validate
}

// NewAuthHandler creates a new AuthHandler. loginLimiter may be nil.
func NewAuthHandler(authService *services.AuthService, sessions *session.Store, loginLimiter fiber.Handler) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		sessions:     sessions,
		loginLimiter: loginLimiter,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	if h.loginLimiter != nil {
		authRoutes.Post("/login", h.loginLimiter, h.HandleLogin)
	} else {
		authRoutes.Post("/login", h.HandleLogin)
	}
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/session", h.HandleSession)
}

// HandleLogin checks the admin credentials, starts a session and issues a token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.Credentials
	if err := c.BodyParser(&req); err != nil {
		zap.S().Debugf("error parsing login request body: %v", err)
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"errors": errorMessages,
		})
	}

	identity, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		zap.S().Infof("failed login for %s from %s", req.Email, c.IP())
		return errorJSON(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		zap.S().Errorf("error loading session: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not start session")
	}
	if err := sess.Regenerate(); err != nil {
		zap.S().Errorf("error regenerating session: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not start session")
	}
	sess.Set(middleware.SessionEmailKey, identity.Email)
	if err := sess.Save(); err != nil {
		zap.S().Errorf("error saving session: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not start session")
	}

	token, err := h.authService.IssueToken(identity)
	if err != nil {
		zap.S().Errorf("error issuing token for %s: %v", identity.Email, err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not issue token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  identity,
	})
}

// HandleLogout ends the session. It succeeds when there is none.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		zap.S().Warnf("error loading session on logout: %v", err)
		return c.JSON(fiber.Map{"message": "signed out"})
	}
	if err := sess.Destroy(); err != nil {
		zap.S().Errorf("error destroying session: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not end session")
	}
	return c.JSON(fiber.Map{"message": "signed out"})
}

// HandleSession reports the signed-in identity and whether it may use the admin panel.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c, h.sessions, h.authService)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, err.Error())
	}
	return c.JSON(fiber.Map{
		"user":  identity,
		"admin": h.authService.IsAdmin(identity.Email),
	})
}
