package catalog

import (
	"math"
	"sort"

	"toyshop/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Breakpoints of the responsive product grid, in CSS pixels.
const (
	mobileMaxWidth = 640
	tabletMaxWidth = 1024
)

// PageSizeForWidth is the grid page size for a viewport width.
func PageSizeForWidth(width int) int {
	switch {
	case width < mobileMaxWidth:
		return 4
	case width < tabletMaxWidth:
		return 6
	default:
		return DefaultPageSize
	}
}

// Highlights returns up to n products with the highest priority first.
func Highlights(products []models.Product, n int) []models.Product {
	out := byPriorityDesc(products)
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Featured returns the featured products, highest priority first.
func Featured(products []models.Product) []models.Product {
	featured := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.IsFeatured() {
			featured = append(featured, p)
		}
	}
	return byPriorityDesc(featured)
}

// Discounted returns the products with an active discount, in input order.
func Discounted(products []models.Product) []models.Product {
	return filter(products, SegmentDiscounted)
}

// LowStock returns featured products with fewer than models.LowStockThreshold left,
// highest priority first.
func LowStock(products []models.Product) []models.Product {
	return filter(Featured(products), SegmentLowStock)
}

func filter(products []models.Product, s Segment) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if s.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func byPriorityDesc(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// FormatPrice renders an amount in đồng the way Vietnamese shoppers read it,
// e.g. 150000 -> "150.000 đ". Amounts are rounded to whole đồng.
func FormatPrice(amount float64) string {
	p := message.NewPrinter(language.Vietnamese)
	return p.Sprintf("%d", int64(math.Round(amount))) + " đ"
}
