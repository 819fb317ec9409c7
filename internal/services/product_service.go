package services

import (
	"encoding/json"
	"time"

	"toyshop/internal/models"
	"toyshop/internal/repositories"

	"go.uber.org/zap"
)

// Product change events published after a successful write.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher delivers product change notifications to a broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductEvent is the message body of a product change notification.
type ProductEvent struct {
	Type       string          `json:"type"`
	ProductID  uint            `json:"productId"`
	Product    *models.Product `json:"product,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, events EventPublisher) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
	}
}

// GetAllProducts retrieves all products ordered by priority.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id uint) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct stores a new product. Storage assigns the ID and timestamps.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if product.Priority == 0 {
		product.Priority = models.DefaultPriority
	}
	product.ID = 0
	product.CreatedAt = time.Time{}
	product.UpdatedAt = time.Time{}
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.publish(EventProductCreated, product.ID, product)
	return nil
}

// UpdateProduct replaces an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := s.repo.Update(product); err != nil {
		return err
	}
	s.publish(EventProductUpdated, product.ID, product)
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publish(EventProductDeleted, id, nil)
	return nil
}

// publish never fails the write it follows.
func (s *ProductService) publish(eventType string, id uint, product *models.Product) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		zap.S().Warnf("failed to marshal %s event for product %d: %v", eventType, id, err)
		return
	}
	if err := s.events.Publish(eventType, body); err != nil {
		zap.S().Warnf("failed to publish %s event for product %d: %v", eventType, id, err)
	}
}
