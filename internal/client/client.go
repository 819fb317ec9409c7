// Package client is the Go counterpart of the browser code: a typed caller of
// the toyshop HTTP API used by the storefront and the admin panel.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"toyshop/internal/models"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Shop is the contact block served by /api/shop.
type Shop struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	FacebookURL   string `json:"facebookUrl"`
	MessengerLink string `json:"messengerLink"`
	ZaloLink      string `json:"zaloLink"`
}

// Client calls the toyshop API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a Client for baseURL. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

func (c *Client) headers() gout.H {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h := gout.H{"Accept": "application/json"}
	if c.token != "" {
		h["Authorization"] = "Bearer " + c.token
	}
	return h
}

// decode turns a finished exchange into out or an error.
func decode(err error, code int, body []byte, out interface{}) error {
	if err != nil {
		return fmt.Errorf("api request failed: %w", err)
	}
	if code < 200 || code > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &payload)
		return &APIError{Status: code, Message: payload.Error}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode api response: %w", err)
	}
	return nil
}

// ListProducts fetches the whole catalog.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var (
		body     []byte
		code     int
		products []models.Product
	)
	err := gout.New(c.httpClient).GET(c.url("/api/products/all")).
		WithContext(ctx).
		SetHeader(c.headers()).
		BindBody(&body).
		Code(&code).
		Do()
	if err := decode(err, code, body, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var (
		body    []byte
		code    int
		product models.Product
	)
	err := gout.New(c.httpClient).GET(c.url("/api/products")).
		WithContext(ctx).
		SetQuery(gout.H{"id": strconv.FormatUint(uint64(id), 10)}).
		SetHeader(c.headers()).
		BindBody(&body).
		Code(&code).
		Do()
	if err := decode(err, code, body, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct stores p and returns the record with its assigned id.
func (c *Client) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	var (
		body    []byte
		code    int
		created models.Product
	)
	err := gout.New(c.httpClient).POST(c.url("/api/products")).
		WithContext(ctx).
		SetHeader(c.headers()).
		SetJSON(p).
		BindBody(&body).
		Code(&code).
		Do()
	if err := decode(err, code, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct replaces the record with p.ID.
func (c *Client) UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	var (
		body    []byte
		code    int
		updated models.Product
	)
	err := gout.New(c.httpClient).PUT(c.url("/api/products")).
		WithContext(ctx).
		SetHeader(c.headers()).
		SetJSON(p).
		BindBody(&body).
		Code(&code).
		Do()
	if err := decode(err, code, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes the record. It does not touch the image.
func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	var (
		body []byte
		code int
	)
	err := gout.New(c.httpClient).DELETE(c.url("/api/products")).
		WithContext(ctx).
		SetQuery(gout.H{"id": strconv.FormatUint(uint64(id), 10)}).
		SetHeader(c.headers()).
		BindBody(&body).
		Code(&code).
		Do()
	return decode(err, code, body, nil)
}

// UploadImage sends data as the multipart field "file" and returns the public URL.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	var (
		body []byte
		code int
		resp struct {
			URL string `json:"url"`
		}
	)
	err := gout.New(c.httpClient).POST(c.url("/api/upload")).
		WithContext(ctx).
		SetHeader(c.headers()).
		SetForm(gout.H{
			"file": gout.FormType{
				FileName:    filename,
				ContentType: contentType,
				File:        gout.FormMem(data),
			},
		}).
		BindBody(&body).
		Code(&code).
		Do()
	if err := decode(err, code, body, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// DeleteImage removes a previously uploaded image by its URL.
func (c *Client) DeleteImage(ctx context.Context, imageURL string) error {
	var (
		body []byte
		code int
	)
	err := gout.New(c.httpClient).DELETE(c.url("/api/upload?url=" + url.QueryEscape(imageURL))).
		WithContext(ctx).
		SetHeader(c.headers()).
		BindBody(&body).
		Code(&code).
		Do()
	return decode(err, code, body, nil)
}

// Login signs in and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	var (
		body []byte
		code int
		resp struct {
			Token string          `json:"token"`
			User  models.Identity `json:"user"`
		}
	)
	err := gout.New(c.httpClient).POST(c.url("/api/auth/login")).
		WithContext(ctx).
		SetHeader(c.headers()).
		SetJSON(models.Credentials{Email: email, Password: password}).
		BindBody(&body).
		Code(&code).
		Do()
	if err := decode(err, code, body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp.User, nil
}

// Shop fetches the shop contact details.
func (c *Client) Shop(ctx context.Context) (*Shop, error) {
	var (
		body []byte
		code int
		shop Shop
	)
	err := gout.New(c.httpClient).GET(c.url("/api/shop")).
		WithContext(ctx).
		SetHeader(c.headers()).
		BindBody(&body).
		Code(&code).
		Do()
	if err := decode(err, code, body, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}
