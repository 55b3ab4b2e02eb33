package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateVariantPricing(t *testing.T) {
	t.Run("accepts strictly lower base prices", func(t *testing.T) {
		err := ValidateVariantPricing(20000, []Variant{
			{Size: "S", BasePrice: 15000},
			{Size: "M", BasePrice: 19999.99},
		})
		assert.NoError(t, err)
	})

	t.Run("rejects equality", func(t *testing.T) {
		err := ValidateVariantPricing(20000, []Variant{
			{Size: "S", BasePrice: 15000},
			{Size: "M", BasePrice: 20000},
		})
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, 2, verr.Position)
		assert.Equal(t, "M", verr.Size)
		assert.Contains(t, err.Error(), "variant 2 (size M)")
		assert.Contains(t, err.Error(), "20000")
	})

	t.Run("rejects base price above regular", func(t *testing.T) {
		err := ValidateVariantPricing(100, []Variant{{Size: "XL", BasePrice: 150}})
		assert.Error(t, err)
	})

	t.Run("skips variants without a base price", func(t *testing.T) {
		err := ValidateVariantPricing(100, []Variant{{Size: "S"}, {Size: "M", BasePrice: 0}})
		assert.NoError(t, err)
	})
}

func TestTotalStock(t *testing.T) {
	assert.Equal(t, 0, TotalStock(nil))
	assert.Equal(t, 0, TotalStock([]Variant{}))
	assert.Equal(t, 17, TotalStock([]Variant{
		{Size: "S", Stock: 5},
		{Size: "M", Stock: 0},
		{Size: "L", Stock: 12},
	}))
}

func TestAverageFinalPrice(t *testing.T) {
	p := Product{RegularPrice: 1000, ProductOffer: 10}

	t.Run("no variants falls back to regular price", func(t *testing.T) {
		assert.Equal(t, 1000.0, AverageFinalPrice(p, nil))
	})

	t.Run("mean over resolved finals", func(t *testing.T) {
		got := AverageFinalPrice(p, []Variant{
			{Size: "S", BasePrice: 800}, // 720 at 10%
			{Size: "M", BasePrice: 900}, // 810 at 10%
		})
		assert.InDelta(t, 765, got, 0.001)
	})
}

func TestVariantFinalPrice(t *testing.T) {
	p := Product{RegularPrice: 1000, ProductOffer: 20}
	variants := []Variant{
		{Size: "S", BasePrice: 500},
		{Size: "S", BasePrice: 600}, // duplicate size: first match wins
		{Size: "M", BasePrice: 700},
	}

	assert.InDelta(t, 400, VariantFinalPrice(p, variants, "S"), 0.001)
	assert.InDelta(t, 560, VariantFinalPrice(p, variants, "M"), 0.001)

	// unknown size is "no discount available", not an error
	assert.Equal(t, 1000.0, VariantFinalPrice(p, variants, "XXL"))
}
