package handlers

import (
	"time"

	"toyshop/internal/config"

	"github.com/gofiber/fiber/v2"
)

// ShopInfo is the contact block shown on every storefront page.
type ShopInfo struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	FacebookURL   string `json:"facebookUrl"`
	MessengerLink string `json:"messengerLink"`
	ZaloLink      string `json:"zaloLink"`
}

// ShopHandler serves the shop contact details and the health check.
type ShopHandler struct {
	info ShopInfo
}

func NewShopHandler(shop config.ShopConfig) *ShopHandler {
	return &ShopHandler{info: ShopInfo{
		Name:          shop.Name,
		Phone:         shop.Phone,
		Email:         shop.Email,
		Address:       shop.Address,
		FacebookURL:   shop.FacebookURL,
		MessengerLink: shop.MessengerLink(),
		ZaloLink:      shop.ZaloLink(),
	}}
}

func (h *ShopHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/shop", h.HandleShop)
}

func (h *ShopHandler) HandleShop(c *fiber.Ctx) error {
	return c.JSON(h.info)
}

// HandleHealth is the liveness probe.
func HandleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
