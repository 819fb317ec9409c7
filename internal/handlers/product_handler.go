package handlers

import (
	"errors"
	"strings"

	"toyshop/internal/models"
	"toyshop/internal/repositories"
	"toyshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes. Writes go through admin.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, admin fiber.Handler) {
	router.Get("/products/all", h.HandleGetProducts)
	router.Get("/products", h.HandleGetProductByID)
	router.Post("/products", admin, h.HandleCreateProduct)
	router.Put("/products", admin, h.HandleUpdateProduct)
	router.Delete("/products", admin, h.HandleDeleteProduct)
}

// HandleGetProducts lists every product ordered by priority.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		zap.S().Errorf("error getting all products: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not retrieve products")
	}
	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(products)
}

// HandleGetProductByID returns the product named by the id query parameter.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := queryID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	product, err := h.service.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "product not found")
		}
		zap.S().Errorf("error getting product %d: %v", id, err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct stores a new product from the request body.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		zap.S().Debugf("error parsing product body: %v", err)
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if product.Priority == 0 {
		product.Priority = models.DefaultPriority
	}
	product.Name = strings.TrimSpace(product.Name)
	if fieldErrors := models.ValidateProduct(product); fieldErrors != nil {
		return validationFailed(c, fieldErrors)
	}

	if err := h.service.CreateProduct(&product); err != nil {
		zap.S().Errorf("error creating product %q: %v", product.Name, err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the product whose id is in the body.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		zap.S().Debugf("error parsing product body: %v", err)
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if product.ID == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "product id is required")
	}
	product.Name = strings.TrimSpace(product.Name)
	if fieldErrors := models.ValidateProduct(product); fieldErrors != nil {
		return validationFailed(c, fieldErrors)
	}

	if err := h.service.UpdateProduct(&product); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "product not found")
		}
		zap.S().Errorf("error updating product %d: %v", product.ID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes the product named by the id query parameter.
// The image is left to the caller, which removes it once the record is gone.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := queryID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteProduct(id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "product not found")
		}
		zap.S().Errorf("error deleting product %d: %v", id, err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not delete product")
	}
	return c.JSON(fiber.Map{"message": "product deleted"})
}

func queryID(c *fiber.Ctx) (uint, error) {
	raw := strings.TrimSpace(c.Query("id"))
	if raw == "" {
		return 0, errors.New("product id is required")
	}
	id, err := cast.ToUintE(raw)
	if err != nil || id == 0 {
		return 0, errors.New("product id must be a positive integer")
	}
	return id, nil
}

func validationFailed(c *fiber.Ctx, fieldErrors models.FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "validation failed",
		"errors": fieldErrors,
	})
}
