package services_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"toyshop/internal/models"
	"toyshop/internal/repositories"
	"toyshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id uint) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockEventPublisher records published product events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProducts := []models.Product{
		{ID: 1, Name: "Product A", Price: 10.0, Quantity: 100, Priority: 1},
		{ID: 2, Name: "Product B", Price: 20.0, Quantity: 50, Priority: 4},
	}

	mockRepo.On("GetAll").Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts()

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProduct := &models.Product{ID: 1, Name: "Product A", Price: 10.0, Quantity: 100}

	mockRepo.On("GetByID", uint(1)).Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(1)
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", uint(99)).Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()
	product, err = service.GetProductByID(99)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	events := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, events)

	newProduct := &models.Product{ID: 42, Name: "New Product", Price: 50.0, Quantity: 20}

	mockRepo.On("Create", newProduct).Run(func(args mock.Arguments) {
		p := args.Get(0).(*models.Product)
		p.ID = 7
	}).Return(nil).Once()
	events.On("Publish", services.EventProductCreated, mock.MatchedBy(func(body []byte) bool {
		var ev services.ProductEvent
		return json.Unmarshal(body, &ev) == nil && ev.ProductID == 7 && ev.Type == services.EventProductCreated
	})).Return(nil).Once()

	err := service.CreateProduct(newProduct)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), newProduct.ID)
	assert.Equal(t, models.DefaultPriority, newProduct.Priority)
	mockRepo.AssertExpectations(t)
	events.AssertExpectations(t)

	mockRepo.On("Create", newProduct).Return(fmt.Errorf("database error")).Once()
	err = service.CreateProduct(newProduct)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
	events.AssertNumberOfCalls(t, "Publish", 1)
}

func TestProductService_UpdateProduct_PublishFailureIsIgnored(t *testing.T) {
	mockRepo := new(MockProductRepository)
	events := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, events)

	updatedProduct := &models.Product{ID: 1, Name: "Product A Updated", Price: 12.0, Quantity: 95, Priority: 2}

	mockRepo.On("Update", updatedProduct).Return(nil).Once()
	events.On("Publish", services.EventProductUpdated, mock.Anything).Return(errors.New("broker down")).Once()
	err := service.UpdateProduct(updatedProduct)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	missing := &models.Product{ID: 99, Name: "NonExistent", Price: 1.0, Quantity: 1, Priority: 3}
	mockRepo.On("Update", missing).Return(fmt.Errorf("product with ID 99 not updated: %w", repositories.ErrProductNotFound)).Once()
	err := service.UpdateProduct(missing)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	events := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, events)

	mockRepo.On("Delete", uint(1)).Return(nil).Once()
	events.On("Publish", services.EventProductDeleted, mock.Anything).Return(nil).Once()
	require.NoError(t, service.DeleteProduct(1))

	mockRepo.On("Delete", uint(99)).Return(fmt.Errorf("product with ID 99 not deleted: %w", repositories.ErrProductNotFound)).Once()
	err := service.DeleteProduct(99)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
	events.AssertExpectations(t)
}
