package models

import (
	"math"
	"time"
)

const (
	// DefaultPriority is applied when a product is created without a priority.
	DefaultPriority = 3
	// FeaturedPriority is the lowest priority shown in featured sections.
	FeaturedPriority = 3
	// LowStockThreshold marks products with fewer units as running out.
	LowStockThreshold = 10
)

// Product represents a toy in the shop catalog.
type Product struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"type:varchar(255);not null" validate:"required"`
	Description string     `json:"description" gorm:"type:text"`
	Price       float64    `json:"price" gorm:"not null" validate:"gt=0"`
	Image       string     `json:"image,omitempty" gorm:"type:varchar(1024)"`
	Category    Categories `json:"category" gorm:"type:text" validate:"required,min=1"`
	Quantity    int        `json:"quantity" validate:"gte=0"`
	Priority    int        `json:"priority" gorm:"default:3;index" validate:"min=1,max=5"`
	Discount    *int       `json:"discount" validate:"omitempty,min=0,max=100"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// HasDiscount reports whether a positive discount is set.
func (p Product) HasDiscount() bool {
	return p.Discount != nil && *p.Discount > 0
}

// EffectivePrice is the list price reduced by the active discount.
func (p Product) EffectivePrice() float64 {
	if !p.HasDiscount() {
		return p.Price
	}
	return p.Price * (1 - float64(*p.Discount)/100)
}

// RoundedEffectivePrice rounds the effective price to whole currency units for display.
func (p Product) RoundedEffectivePrice() float64 {
	return math.Round(p.EffectivePrice())
}

// IsFeatured reports whether the product belongs to featured sections.
func (p Product) IsFeatured() bool {
	return p.Priority >= FeaturedPriority
}

// IsLowStock reports whether the stock count is under LowStockThreshold.
func (p Product) IsLowStock() bool {
	return p.Quantity < LowStockThreshold
}
