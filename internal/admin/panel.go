// Package admin is the product management panel: its own copy of the catalog
// and the create, edit and delete flows against the API.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"toyshop/internal/models"

	"go.uber.org/zap"
)

var (
	// ErrSubmitInProgress is returned when Submit is called while another submit runs.
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	// ErrUploadFailed wraps image upload failures; nothing was saved.
	ErrUploadFailed = errors.New("image upload failed")
	// ErrSaveFailed wraps record save failures; the local list is unchanged.
	ErrSaveFailed = errors.New("saving product failed")
)

// API is the part of the toyshop API the panel drives.
type API interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error)
	DeleteImage(ctx context.Context, imageURL string) error
}

// State is the step a submission is in.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateUploadingImage
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateUploadingImage:
		return "uploading-image"
	case StateSaving:
		return "saving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Panel.
type Option func(*Panel)

// WithStateObserver calls fn on every state change.
func WithStateObserver(fn func(State)) Option {
	return func(p *Panel) {
		p.observer = fn
	}
}

// Panel is safe for concurrent use; submissions are serialized.
type Panel struct {
	api      API
	observer func(State)

	mu         sync.Mutex
	products   []models.Product
	state      State
	submitting bool
}

func NewPanel(api API, opts ...Option) *Panel {
	p := &Panel{api: api}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Refresh replaces the local list with the server's.
func (p *Panel) Refresh(ctx context.Context) error {
	products, err := p.api.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	p.mu.Lock()
	p.products = products
	p.mu.Unlock()
	return nil
}

// Products returns a copy of the local list.
func (p *Panel) Products() []models.Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Product, len(p.products))
	copy(out, p.products)
	return out
}

func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Panel) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	if p.observer != nil {
		p.observer(s)
	}
}

// Submit validates the form, replaces the image when a new one was chosen and
// saves the product. Validation failures come back as models.FieldErrors and
// send no request. On success the local list gets the saved record.
func (p *Panel) Submit(ctx context.Context, form Form) (*models.Product, error) {
	p.mu.Lock()
	if p.submitting {
		p.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	p.submitting = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.submitting = false
		p.mu.Unlock()
		p.setState(StateIdle)
	}()

	p.setState(StateValidating)
	if fieldErrors := form.Validate(); fieldErrors != nil {
		return nil, fieldErrors
	}
	product := form.Product()

	if form.NewImage != nil {
		p.setState(StateUploadingImage)
		if form.Image != "" {
			p.deleteImageQuietly(ctx, form.Image)
		}
		url, err := p.api.UploadImage(ctx, form.NewImage.Name, form.NewImage.ContentType, form.NewImage.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
		}
		product.Image = url
	}

	p.setState(StateSaving)
	var (
		saved *models.Product
		err   error
	)
	if product.ID == 0 {
		saved, err = p.api.CreateProduct(ctx, product)
	} else {
		saved, err = p.api.UpdateProduct(ctx, product)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	p.mu.Lock()
	p.products = upsert(p.products, *saved)
	p.mu.Unlock()
	return saved, nil
}

// Delete removes the product, then its image on a best-effort basis, then the
// local entry. A failed record delete leaves everything as it was.
func (p *Panel) Delete(ctx context.Context, id uint) error {
	var image string
	p.mu.Lock()
	for _, product := range p.products {
		if product.ID == id {
			image = product.Image
			break
		}
	}
	p.mu.Unlock()

	if err := p.api.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if image != "" {
		p.deleteImageQuietly(ctx, image)
	}

	p.mu.Lock()
	p.products = remove(p.products, id)
	p.mu.Unlock()
	return nil
}

func (p *Panel) deleteImageQuietly(ctx context.Context, url string) {
	if err := p.api.DeleteImage(ctx, url); err != nil {
		zap.S().Warnf("failed to delete image %s: %v", url, err)
	}
}

func upsert(products []models.Product, saved models.Product) []models.Product {
	out := make([]models.Product, 0, len(products)+1)
	replaced := false
	for _, product := range products {
		if product.ID == saved.ID {
			out = append(out, saved)
			replaced = true
			continue
		}
		out = append(out, product)
	}
	if !replaced {
		out = append(out, saved)
	}
	return out
}

func remove(products []models.Product, id uint) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, product := range products {
		if product.ID != id {
			out = append(out, product)
		}
	}
	return out
}
