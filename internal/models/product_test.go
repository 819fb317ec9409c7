package models_test

import (
	"encoding/json"
	"testing"

	"toyshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestParseCategories(t *testing.T) {
	tags := models.ParseCategories("Xếp hình, Giáo dục ")
	assert.Equal(t, models.Categories{"Xếp hình", "Giáo dục"}, tags)
	assert.Equal(t, "Xếp hình, Giáo dục", tags.String())
	assert.Equal(t, tags, models.ParseCategories(tags.String()))

	assert.Empty(t, models.ParseCategories(""))
	assert.Equal(t, models.Categories{"A", "B"}, models.ParseCategories(", A, , B, A"))
}

func TestCategories_Toggle(t *testing.T) {
	var tags models.Categories
	tags = tags.Toggle("Robot")
	tags = tags.Toggle("Búp bê")
	assert.Equal(t, "Robot, Búp bê", tags.String())

	tags = tags.Toggle("Robot")
	assert.Equal(t, models.Categories{"Búp bê"}, tags)
	assert.True(t, tags.Contains("Búp bê"))
	assert.False(t, tags.Contains("Robot"))
}

func TestCategories_JSON(t *testing.T) {
	p := models.Product{Name: "Lego", Price: 10, Priority: 3, Category: models.Categories{"Xếp hình", "Giáo dục"}}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category":"Xếp hình, Giáo dục"`)

	var fromString models.Product
	require.NoError(t, json.Unmarshal([]byte(`{"category":"Robot, Xe"}`), &fromString))
	assert.Equal(t, models.Categories{"Robot", "Xe"}, fromString.Category)

	var fromArray models.Product
	require.NoError(t, json.Unmarshal([]byte(`{"category":["Robot"," Xe "]}`), &fromArray))
	assert.Equal(t, models.Categories{"Robot", "Xe"}, fromArray.Category)

	var bad models.Product
	assert.Error(t, json.Unmarshal([]byte(`{"category":42}`), &bad))
}

func TestCategories_Scan(t *testing.T) {
	var c models.Categories
	require.NoError(t, c.Scan([]byte("A, B")))
	assert.Equal(t, models.Categories{"A", "B"}, c)
	require.NoError(t, c.Scan("C"))
	assert.Equal(t, models.Categories{"C"}, c)
	assert.Error(t, c.Scan(12))

	v, err := models.Categories{"A", "B"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "A, B", v)
}

func TestProduct_EffectivePrice(t *testing.T) {
	assert.Equal(t, 80.0, models.Product{Price: 100, Discount: intPtr(20)}.EffectivePrice())
	assert.Equal(t, 100.0, models.Product{Price: 100, Discount: intPtr(0)}.EffectivePrice())
	assert.Equal(t, 100.0, models.Product{Price: 100}.EffectivePrice())
	assert.Equal(t, 150000.0, models.Product{Price: 200000, Discount: intPtr(25)}.EffectivePrice())

	assert.False(t, models.Product{Price: 100, Discount: intPtr(0)}.HasDiscount())
	assert.True(t, models.Product{Price: 100, Discount: intPtr(25)}.HasDiscount())
}

func TestValidateProduct(t *testing.T) {
	valid := models.Product{
		Name:     "Lego City",
		Price:    250000,
		Category: models.Categories{"Xếp hình"},
		Quantity: 0,
		Priority: 3,
	}
	assert.Nil(t, models.ValidateProduct(valid))

	withDiscount := valid
	withDiscount.Discount = intPtr(100)
	assert.Nil(t, models.ValidateProduct(withDiscount))

	invalid := models.Product{
		Name:     "   ",
		Price:    0,
		Quantity: -1,
		Priority: 6,
		Discount: intPtr(101),
	}
	errs := models.ValidateProduct(invalid)
	require.NotNil(t, errs)
	for _, field := range []string{"name", "category", "price", "quantity", "priority", "discount"} {
		assert.Contains(t, errs, field)
	}
	assert.Equal(t, "price must be greater than 0", errs["price"])
	assert.Contains(t, errs.Error(), "validation failed")
}
