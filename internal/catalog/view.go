// Package catalog derives what the storefront shows from the full product list:
// segments, category and text filters, sorting and pagination. It does no I/O.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"toyshop/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize is the desktop grid size.
const DefaultPageSize = 8

// SortKey selects the grid ordering.
type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortNameAsc   SortKey = "name-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameDesc  SortKey = "name-desc"
)

// ParseSortKey accepts the query-string form of a SortKey; "none" and "" both mean SortNone.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortNone, SortPriceAsc, SortNameAsc, SortPriceDesc, SortNameDesc:
		return k, nil
	case "none":
		return SortNone, nil
	default:
		return SortNone, fmt.Errorf("unknown sort key %q", s)
	}
}

// Segment is a named predicate used to build the curated home sections.
type Segment string

const (
	SegmentAll        Segment = ""
	SegmentFeatured   Segment = "featured"
	SegmentDiscounted Segment = "discounted"
	// SegmentLowStock is featured products that are running out.
	SegmentLowStock Segment = "low-stock"
)

// Match reports whether p belongs to the segment.
func (s Segment) Match(p models.Product) bool {
	switch s {
	case SegmentFeatured:
		return p.IsFeatured()
	case SegmentDiscounted:
		return p.HasDiscount()
	case SegmentLowStock:
		return p.IsFeatured() && p.IsLowStock()
	default:
		return true
	}
}

// Params are the user-chosen view settings. The zero value shows page 1 of
// everything in storage order.
type Params struct {
	Categories []string
	Search     string
	Sort       SortKey
	Page       int
	PageSize   int
	Segment    Segment
}

// View is one rendered page of the catalog.
type View struct {
	Items      []models.Product
	TotalCount int
	TotalPages int
	// Page is the requested page after clamping.
	Page int
}

// ComputeView applies segment, category filter, search, sort and pagination in
// that order. products is not modified.
func ComputeView(products []models.Product, params Params) View {
	items := make([]models.Product, 0, len(products))
	selected := make(map[string]struct{}, len(params.Categories))
	for _, c := range params.Categories {
		selected[c] = struct{}{}
	}
	term := strings.ToLower(params.Search)
	searching := strings.TrimSpace(term) != ""

	for _, p := range products {
		if !params.Segment.Match(p) {
			continue
		}
		if len(selected) > 0 && !hasAnyCategory(p, selected) {
			continue
		}
		if searching && !matchesSearch(p, term) {
			continue
		}
		items = append(items, p)
	}

	SortProducts(items, params.Sort)

	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	return View{
		Items:      items[start:end],
		TotalCount: total,
		TotalPages: totalPages,
		Page:       page,
	}
}

func hasAnyCategory(p models.Product, selected map[string]struct{}) bool {
	for _, tag := range p.Category {
		if _, ok := selected[tag]; ok {
			return true
		}
	}
	return false
}

// matchesSearch expects term already lowercased.
func matchesSearch(p models.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Category.String()), term)
}

// SortProducts orders products in place. Equal keys keep their relative order.
func SortProducts(products []models.Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() < products[j].EffectivePrice()
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() > products[j].EffectivePrice()
		})
	case SortNameAsc, SortNameDesc:
		// collators keep internal buffers and cannot be shared between goroutines.
		col := newCollator()
		desc := key == SortNameDesc
		sort.SliceStable(products, func(i, j int) bool {
			c := col.CompareString(products[i].Name, products[j].Name)
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
}

func newCollator() *collate.Collator {
	return collate.New(language.Vietnamese)
}

// EffectivePrice is the list price less the active discount.
func EffectivePrice(p models.Product) float64 {
	return p.EffectivePrice()
}
