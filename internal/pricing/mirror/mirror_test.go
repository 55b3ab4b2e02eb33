package mirror

import (
	"math"
	"testing"

	"pasal/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v float64) *float64 { return &v }

func TestServerClientParity(t *testing.T) {
	// identical inputs through both implementations must agree within a cent
	values := []float64{0, 5, 12.5, 20, 25, 33.33, 50, 100}
	bases := []float64{0, 999.99, 15000}

	for _, c := range values {
		for _, b := range values {
			for _, p := range values {
				for _, v := range values {
					for _, base := range bases {
						prod := pricing.Product{
							RegularPrice:  20000,
							ProductOffer:  p,
							CategoryOffer: pct(c),
							BrandOffer:    pct(b),
						}
						vart := pricing.Variant{Size: "M", BasePrice: base, VariantOffer: v}

						server := pricing.Resolve(prod, vart)
						client := Resolve(Dataset(prod, vart))

						require.InDelta(t, server.FinalPrice, client.FinalPrice, 0.01,
							"c=%v b=%v p=%v v=%v base=%v", c, b, p, v, base)
						require.Equal(t, server.AppliedOffer, client.AppliedOffer)
						require.Equal(t, server.OfferType, client.OfferType)
					}
				}
			}
		}
	}
}

func TestResolveDefaultsMissingAndGarbageToZero(t *testing.T) {
	q := Resolve(map[string]string{
		KeyProductOffer: "not-a-number",
		KeyBrandOffer:   "",
		KeyRegularPrice: "10000",
		// categoryOffer and variantOffer absent entirely
	})

	assert.Equal(t, 0.0, q.AppliedOffer)
	assert.Equal(t, pricing.OfferNone, q.OfferType)
	assert.Equal(t, 10000.0, q.FinalPrice)
}

func TestResolveFallbackBase(t *testing.T) {
	q := Resolve(map[string]string{
		KeyProductOffer: "30",
		KeyRegularPrice: "10000",
		KeyBasePrice:    "0",
	})

	assert.InDelta(t, 7000, q.FinalPrice, 0.001)
	assert.Equal(t, 10000.0, q.BasePrice)
}

func TestResolveTieBreakMatchesServerOrder(t *testing.T) {
	q := Resolve(map[string]string{
		KeyCategoryOffer: "20",
		KeyBrandOffer:    "20",
		KeyProductOffer:  "10",
		KeyVariantOffer:  "5",
		KeyBasePrice:     "100",
		KeyRegularPrice:  "200",
	})
	assert.Equal(t, pricing.OfferCategory, q.OfferType)
	assert.Equal(t, 20.0, q.AppliedOffer)
}

func TestDatasetSerializesDefaults(t *testing.T) {
	d := Dataset(
		pricing.Product{RegularPrice: 20000, ProductOffer: 10},
		pricing.Variant{Size: "M", Stock: 3, BasePrice: 15000},
	)

	assert.Equal(t, "0", d[KeyCategoryOffer])
	assert.Equal(t, "0", d[KeyBrandOffer])
	assert.Equal(t, "10", d[KeyProductOffer])
	assert.Equal(t, "0", d[KeyVariantOffer])
	assert.Equal(t, "15000", d[KeyBasePrice])
	assert.Equal(t, "20000", d[KeyRegularPrice])
	assert.Equal(t, "M", d[KeySize])
	assert.Equal(t, "3", d[KeyStock])
}

func TestPageSelectionTracking(t *testing.T) {
	prod := pricing.Product{RegularPrice: 20000, CategoryOffer: pct(25)}
	page := NewPage([]map[string]string{
		Dataset(prod, pricing.Variant{Size: "S", BasePrice: 12000, VariantOffer: 10}),
		Dataset(prod, pricing.Variant{Size: "M", BasePrice: 15000, VariantOffer: 30}),
	})

	first := page.Quote()
	assert.Equal(t, 0, page.Selected())
	assert.InDelta(t, 9000, first.FinalPrice, 0.01) // 25% category wins over 10%

	second := page.Select(1)
	assert.Equal(t, 1, page.Selected())
	assert.Equal(t, pricing.OfferVariant, second.OfferType) // 30% variant beats category
	assert.InDelta(t, 10500, second.FinalPrice, 0.01)

	// out-of-range clicks keep the selection
	same := page.Select(5)
	assert.Equal(t, 1, page.Selected())
	assert.True(t, math.Abs(same.FinalPrice-second.FinalPrice) < 0.001)
}

func TestEmptyPage(t *testing.T) {
	page := NewPage(nil)
	q := page.Select(0)
	assert.Equal(t, pricing.OfferNone, q.OfferType)
	assert.Zero(t, q.FinalPrice)
}
