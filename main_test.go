package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"toyshop/internal/config"
	"toyshop/internal/models"
	"toyshop/internal/repositories"
	"toyshop/internal/services"
)

// MockEventPublisher stands in for the RabbitMQ and NATS publishers.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		AppPort:        ":0",
		AllowedOrigins: "*",
		JWTSecret:      "test_jwt_secret",
		LoginRateLimit: 5,
		Database:       config.Database{Driver: "memory"},
		Session:        config.Session{TTL: time.Hour},
		Admin:          config.Admin{Email: "admin@toyshop.vn", Password: "s3cret"},
		Shop: config.ShopConfig{
			Name:        "Toy Shop",
			Phone:       "0901234567",
			Email:       "shop@toyshop.vn",
			Address:     "1 Le Loi, Q1",
			FacebookURL: "https://facebook.com/toyshop.vn/",
		},
	}
}

func newTestApp(t *testing.T, events services.EventPublisher) (*fiber.App, repositories.ProductRepository) {
	t.Helper()
	repo := repositories.NewInMemoryProductRepository()
	seedProducts(t, repo)

	app, err := NewApp(Deps{
		Config:   testConfig(),
		Products: repo,
		Events:   events,
	})
	require.NoError(t, err)
	return app, repo
}

func seedProducts(t *testing.T, repo repositories.ProductRepository) {
	products := []models.Product{
		{Name: "Lego City", Price: 450000, Category: models.Categories{"Xếp hình"}, Quantity: 12, Priority: 2},
		{Name: "Rubik 3x3", Price: 90000, Category: models.Categories{"Giáo dục"}, Quantity: 30, Priority: 1},
	}
	for i := range products {
		require.NoError(t, repo.Create(&products[i]))
	}
}

func TestHealthCheck(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"healthy"`)
}

func TestPublicCatalogAndProtectedWrites(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/products/all", nil), -1)
	require.NoError(t, err)
	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	resp.Body.Close()
	require.Len(t, products, 2)
	assert.Equal(t, "Rubik 3x3", products[0].Name, "lowest priority first")

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":"Doll","price":10,"category":"Búp bê"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginThenCreatePublishesEvent(t *testing.T) {
	events := new(MockEventPublisher)
	events.On("Publish", services.EventProductCreated, mock.Anything).Return(nil).Once()
	app, repo := newTestApp(t, events)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"admin@toyshop.vn","password":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()
	require.NotEmpty(t, login.Token)

	req = httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":"Doll","price":10,"category":"Búp bê, Quà tặng"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)
	events.AssertExpectations(t)
}

func TestUploadDisabledWithoutMediaHost(t *testing.T) {
	app, _ := newTestApp(t, nil)
	token := adminToken(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/upload?url=https://cdn.example.com/toys/a.png", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuditProductEvent(t *testing.T) {
	body, err := json.Marshal(services.ProductEvent{Type: services.EventProductDeleted, ProductID: 4})
	require.NoError(t, err)

	assert.NoError(t, auditProductEvent(amqp.Delivery{RoutingKey: services.EventProductDeleted, Body: body}))
	assert.Error(t, auditProductEvent(amqp.Delivery{Body: []byte("not json")}))
}

func TestOpenProductRepository(t *testing.T) {
	repo, err := openProductRepository(config.Database{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &repositories.InMemoryProductRepository{}, repo)

	repo, err = openProductRepository(config.Database{Driver: "sqlite", DSN: "file:open_repo?mode=memory&cache=shared"})
	require.NoError(t, err)
	assert.IsType(t, &repositories.GORMProductRepository{}, repo)
}

func adminToken(t *testing.T) string {
	t.Helper()
	cfg := testConfig()
	auth, err := services.NewAuthService(services.AuthConfig{
		AdminEmail: cfg.Admin.Email,
		Password:   cfg.Admin.Password,
		JWTSecret:  cfg.JWTSecret,
	})
	require.NoError(t, err)
	token, err := auth.IssueToken(&models.Identity{Email: cfg.Admin.Email})
	require.NoError(t, err)
	return token
}
