package admin

import (
	"strings"

	"toyshop/internal/models"
)

// ImageFile is a picture chosen in the form and not uploaded yet.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Form is the create/edit product form. ID zero creates a product.
type Form struct {
	ID          uint
	Name        string
	Description string
	Price       float64
	// Image is the URL already stored on the product.
	Image string
	// NewImage replaces Image on submit when set.
	NewImage   *ImageFile
	Categories models.Categories
	Quantity   int
	Priority   int
	Discount   *int
}

// NewForm is an empty create form.
func NewForm() Form {
	return Form{Priority: models.DefaultPriority}
}

// EditForm fills the form from an existing product.
func EditForm(p models.Product) Form {
	var discount *int
	if p.Discount != nil {
		d := *p.Discount
		discount = &d
	}
	return Form{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Categories:  append(models.Categories(nil), p.Category...),
		Quantity:    p.Quantity,
		Priority:    p.Priority,
		Discount:    discount,
	}
}

// ToggleCategory selects or deselects a category tag.
func (f *Form) ToggleCategory(tag string) {
	f.Categories = f.Categories.Toggle(tag)
}

// Product is the record the form will save.
func (f Form) Product() models.Product {
	return models.Product{
		ID:          f.ID,
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
		Price:       f.Price,
		Image:       f.Image,
		Category:    models.ParseCategories(f.Categories.String()),
		Quantity:    f.Quantity,
		Priority:    f.Priority,
		Discount:    f.Discount,
	}
}

// Validate returns the field errors to show, or nil.
func (f Form) Validate() models.FieldErrors {
	return models.ValidateProduct(f.Product())
}
