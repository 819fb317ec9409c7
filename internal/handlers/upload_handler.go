package handlers

import (
	"errors"

	"toyshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UploadHandler puts product images on the media host and removes them.
type UploadHandler struct {
	assets *services.AssetService
}

func NewUploadHandler(assets *services.AssetService) *UploadHandler {
	return &UploadHandler{assets: assets}
}

// RegisterRoutes registers the upload routes behind admin.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, admin fiber.Handler) {
	router.Post("/upload", admin, h.HandleUpload)
	router.Delete("/upload", admin, h.HandleDelete)
}

// HandleUpload stores the multipart field "file" and returns its public URL.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "no file was sent")
	}
	f, err := fh.Open()
	if err != nil {
		zap.S().Errorf("error opening uploaded file %s: %v", fh.Filename, err)
		return errorJSON(c, fiber.StatusBadRequest, "could not read uploaded file")
	}
	defer f.Close()

	url, err := h.assets.Upload(c.UserContext(), fh.Filename, fh.Header.Get(fiber.HeaderContentType), fh.Size, f)
	if err != nil {
		if errors.Is(err, services.ErrAssetsDisabled) {
			return errorJSON(c, fiber.StatusServiceUnavailable, err.Error())
		}
		zap.S().Errorf("error uploading image %s: %v", fh.Filename, err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not upload image")
	}
	return c.JSON(fiber.Map{"url": url})
}

// HandleDelete removes the image addressed by the url query parameter.
func (h *UploadHandler) HandleDelete(c *fiber.Ctx) error {
	rawURL := c.Query("url")
	if rawURL == "" {
		return errorJSON(c, fiber.StatusBadRequest, "missing 'url' parameter")
	}

	if err := h.assets.Delete(c.UserContext(), rawURL); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAssetURL):
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrAssetsDisabled):
			return errorJSON(c, fiber.StatusServiceUnavailable, err.Error())
		}
		zap.S().Errorf("error deleting image %s: %v", rawURL, err)
		return errorJSON(c, fiber.StatusInternalServerError, "could not delete image")
	}
	return c.JSON(fiber.Map{"message": "image deleted"})
}
