// Package storefront is the shopper-facing state: one fetch of the catalog per
// session and the view settings the shopper has chosen.
package storefront

import (
	"context"
	"strings"
	"sync"

	"toyshop/internal/catalog"
	"toyshop/internal/models"

	"go.uber.org/zap"
)

const (
	// SuggestionLimit is how many search hits the drop-down lists.
	SuggestionLimit = 8
	// HomeHighlights is the number of products in the home hero strip.
	HomeHighlights = 4
)

// ProductSource supplies the full catalog.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// HomeSections are the curated lists on the landing page.
type HomeSections struct {
	Highlights []models.Product
	Featured   []models.Product
	Discounted []models.Product
	LowStock   []models.Product
}

// Storefront is safe for concurrent use.
type Storefront struct {
	source ProductSource

	mu       sync.RWMutex
	loaded   bool
	err      error
	products []models.Product
	params   catalog.Params
}

func New(source ProductSource) *Storefront {
	return &Storefront{
		source: source,
		params: catalog.Params{Page: 1, PageSize: catalog.DefaultPageSize},
	}
}

// Load fetches the catalog on the first call only. A failed load is kept as
// the banner error and is not retried.
func (s *Storefront) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.err
	}
	s.loaded = true

	products, err := s.source.ListProducts(ctx)
	if err != nil {
		zap.S().Errorf("failed to load catalog: %v", err)
		s.err = err
		return err
	}
	s.products = products
	return nil
}

// Err is the load failure to show in place of the catalog, or nil.
func (s *Storefront) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Products returns a copy of the loaded catalog.
func (s *Storefront) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Product finds a loaded product for the detail page.
func (s *Storefront) Product(id uint) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Storefront) Params() catalog.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.params
	p.Categories = append([]string(nil), s.params.Categories...)
	return p
}

// Search sets the search term and returns to the first page.
func (s *Storefront) Search(term string) {
	s.update(func(p *catalog.Params) {
		p.Search = term
		p.Page = 1
	})
}

// ToggleCategory selects or deselects a category filter.
func (s *Storefront) ToggleCategory(tag string) {
	s.update(func(p *catalog.Params) {
		p.Categories = models.Categories(p.Categories).Toggle(tag)
		p.Page = 1
	})
}

func (s *Storefront) ClearCategories() {
	s.update(func(p *catalog.Params) {
		p.Categories = nil
		p.Page = 1
	})
}

func (s *Storefront) SetSort(key catalog.SortKey) {
	s.update(func(p *catalog.Params) {
		p.Sort = key
	})
}

func (s *Storefront) SetSegment(segment catalog.Segment) {
	s.update(func(p *catalog.Params) {
		p.Segment = segment
		p.Page = 1
	})
}

// SetPage moves to page n. Out of range pages are clamped by View.
func (s *Storefront) SetPage(n int) {
	s.update(func(p *catalog.Params) {
		p.Page = n
	})
}

// SetPageSize changes the grid size; a change goes back to page 1.
func (s *Storefront) SetPageSize(n int) {
	if n <= 0 {
		n = catalog.DefaultPageSize
	}
	s.update(func(p *catalog.Params) {
		if p.PageSize != n {
			p.PageSize = n
			p.Page = 1
		}
	})
}

// SetViewportWidth picks the page size for a screen width.
func (s *Storefront) SetViewportWidth(width int) {
	s.SetPageSize(catalog.PageSizeForWidth(width))
}

func (s *Storefront) update(fn func(p *catalog.Params)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.params)
}

// View computes the grid page for the current settings.
func (s *Storefront) View() catalog.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.ComputeView(s.products, s.params)
}

// Categories lists every filterable tag of the whole catalog.
func (s *Storefront) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.UniqueCategories(s.products)
}

// SearchSuggestions returns up to limit products matching the search term alone
// and how many more matched. A blank term suggests nothing.
func (s *Storefront) SearchSuggestions(limit int) ([]models.Product, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if strings.TrimSpace(s.params.Search) == "" {
		return nil, 0
	}
	if limit <= 0 {
		limit = SuggestionLimit
	}
	view := catalog.ComputeView(s.products, catalog.Params{
		Search:   s.params.Search,
		PageSize: len(s.products) + 1,
	})
	if len(view.Items) <= limit {
		return view.Items, 0
	}
	return view.Items[:limit], len(view.Items) - limit
}

// Home builds the landing page sections.
func (s *Storefront) Home() HomeSections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return HomeSections{
		Highlights: catalog.Highlights(s.products, HomeHighlights),
		Featured:   catalog.Featured(s.products),
		Discounted: catalog.Discounted(s.products),
		LowStock:   catalog.LowStock(s.products),
	}
}
