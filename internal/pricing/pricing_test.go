package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v float64) *float64 { return &v }

func TestOfferValue(t *testing.T) {
	assert.Equal(t, 0.0, OfferValue(nil))
	assert.Equal(t, 25.0, OfferValue(pct(25)))
	assert.Equal(t, 0.0, OfferValue(pct(math.NaN())))
	assert.Equal(t, 0.0, OfferValue(pct(-5)))
	assert.Equal(t, 100.0, OfferValue(pct(250)))
}

func TestResolveVariantOfferWins(t *testing.T) {
	// regular 20000, base 15000, only the variant discounted
	q := Resolve(
		Product{RegularPrice: 20000, ProductOffer: 0, CategoryOffer: pct(0), BrandOffer: pct(0)},
		Variant{Size: "M", BasePrice: 15000, VariantOffer: 10},
	)

	assert.Equal(t, 10.0, q.AppliedOffer)
	assert.Equal(t, OfferVariant, q.OfferType)
	assert.InDelta(t, 13500, q.FinalPrice, 0.001)
	assert.Equal(t, 15000.0, q.BasePrice)
}

func TestResolveCategoryOverridesSmallerVariantOffer(t *testing.T) {
	q := Resolve(
		Product{RegularPrice: 20000, CategoryOffer: pct(25)},
		Variant{Size: "M", BasePrice: 15000, VariantOffer: 10},
	)

	assert.Equal(t, 25.0, q.AppliedOffer)
	assert.Equal(t, OfferCategory, q.OfferType)
	assert.InDelta(t, 11250, q.FinalPrice, 0.001)
}

func TestResolveFallsBackToRegularPrice(t *testing.T) {
	q := Resolve(
		Product{RegularPrice: 10000, ProductOffer: 30},
		Variant{Size: "L"}, // no base price on legacy variants
	)

	assert.Equal(t, OfferProduct, q.OfferType)
	assert.Equal(t, 10000.0, q.BasePrice)
	assert.InDelta(t, 7000, q.FinalPrice, 0.001)
}

func TestResolveMaxSelection(t *testing.T) {
	// applied offer must equal max() of the four sources, whatever the mix
	values := []float64{0, 1, 10, 33.5, 50, 99, 100}
	for _, c := range values {
		for _, b := range values {
			for _, p := range values {
				for _, v := range values {
					q := Resolve(
						Product{RegularPrice: 500, ProductOffer: p, CategoryOffer: pct(c), BrandOffer: pct(b)},
						Variant{BasePrice: 400, VariantOffer: v},
					)
					want := math.Max(math.Max(c, b), math.Max(p, v))
					require.Equal(t, want, q.AppliedOffer, "c=%v b=%v p=%v v=%v", c, b, p, v)
				}
			}
		}
	}
}

func TestResolveTieBreakOrder(t *testing.T) {
	tests := []struct {
		name       string
		cat, brand float64
		prod, vart float64
		want       OfferType
	}{
		{"category beats brand tie", 20, 20, 10, 5, OfferCategory},
		{"brand beats product tie", 5, 15, 15, 10, OfferBrand},
		{"product beats variant tie", 0, 0, 30, 30, OfferProduct},
		{"variant alone", 0, 0, 0, 12, OfferVariant},
		{"four-way tie goes to category", 40, 40, 40, 40, OfferCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Resolve(
				Product{RegularPrice: 1000, ProductOffer: tt.prod, CategoryOffer: pct(tt.cat), BrandOffer: pct(tt.brand)},
				Variant{BasePrice: 800, VariantOffer: tt.vart},
			)
			assert.Equal(t, tt.want, q.OfferType)
		})
	}
}

func TestResolveNoneOnlyWhenZero(t *testing.T) {
	q := Resolve(Product{RegularPrice: 1000}, Variant{BasePrice: 900})
	assert.Equal(t, OfferNone, q.OfferType)
	assert.Equal(t, 0.0, q.AppliedOffer)
	assert.Equal(t, 900.0, q.FinalPrice)

	q = Resolve(Product{RegularPrice: 1000, ProductOffer: 0.5}, Variant{BasePrice: 900})
	assert.NotEqual(t, OfferNone, q.OfferType)
}

func TestResolveMonotonicDiscount(t *testing.T) {
	// finalPrice never exceeds the base it was derived from, equal only at 0%
	for _, offer := range []float64{0, 0.01, 1, 25, 50, 99.99, 100} {
		q := Resolve(
			Product{RegularPrice: 2000, ProductOffer: offer},
			Variant{BasePrice: 1500},
		)
		require.LessOrEqual(t, q.FinalPrice, q.BasePrice)
		if offer == 0 {
			require.Equal(t, q.BasePrice, q.FinalPrice)
		} else {
			require.Less(t, q.FinalPrice, q.BasePrice)
		}
	}
}

func TestResolveUnpopulatedRefsDegradeToZero(t *testing.T) {
	// category/brand held as bare ids: their offers read as 0, never an error
	q := Resolve(
		Product{RegularPrice: 5000, ProductOffer: 15},
		Variant{BasePrice: 4000, VariantOffer: 5},
	)
	assert.Equal(t, 15.0, q.AppliedOffer)
	assert.Equal(t, OfferProduct, q.OfferType)
}
