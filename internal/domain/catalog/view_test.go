package catalog

import (
	"testing"

	"pasal/internal/pricing"
	"pasal/internal/pricing/mirror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProduct() *Product {
	return &Product{
		ID:           1,
		Name:         "Trail Runner",
		Slug:         "trail-runner",
		RegularPrice: 5000,
		ProductOffer: 10,
		Category:     &Category{ID: 3, Name: "Shoes", CategoryOffer: 5},
		Brand:        &Brand{ID: 7, Name: "Himal", BrandOffer: 20},
		Variants: []Variant{
			{ID: 11, Size: "40", Stock: 4, BasePrice: 4500, VariantOffer: 0},
			{ID: 12, Size: "41", Stock: 0, BasePrice: 0, VariantOffer: 25},
		},
	}
}

func TestProductView(t *testing.T) {
	p := sampleProduct()
	imgs := []*ProductImage{{ID: 1, ProductID: 1, URL: "https://cdn/x.jpg", IsPrimary: true}}

	view := p.View(imgs)
	require.Len(t, view.Variants, 2)
	assert.Equal(t, imgs, view.Images)

	// brand offer 20 beats category 5 and product 10
	first := view.Variants[0]
	assert.Equal(t, int64(11), first.VariantID)
	assert.Equal(t, pricing.OfferBrand, first.Quote.OfferType)
	assert.InDelta(t, 3600.0, first.Quote.FinalPrice, 0.001) // 4500 * 0.8

	// variant offer 25 beats brand 20; no base price, regular price applies
	second := view.Variants[1]
	assert.Equal(t, pricing.OfferVariant, second.Quote.OfferType)
	assert.InDelta(t, 3750.0, second.Quote.FinalPrice, 0.001) // 5000 * 0.75

	avg := (3600.0 + 3750.0) / 2
	assert.InDelta(t, avg, view.AverageFinalPrice, 0.001)
}

func TestProductViewDataset(t *testing.T) {
	p := sampleProduct()

	view := p.View(nil)
	ds := view.Variants[0].Dataset

	assert.Equal(t, "5", ds[mirror.KeyCategoryOffer])
	assert.Equal(t, "20", ds[mirror.KeyBrandOffer])
	assert.Equal(t, "10", ds[mirror.KeyProductOffer])
	assert.Equal(t, "0", ds[mirror.KeyVariantOffer])
	assert.Equal(t, "4500", ds[mirror.KeyBasePrice])
	assert.Equal(t, "5000", ds[mirror.KeyRegularPrice])
	assert.Equal(t, "40", ds[mirror.KeySize])
	assert.Equal(t, "4", ds[mirror.KeyStock])
}

func TestProductViewWithoutRefs(t *testing.T) {
	p := sampleProduct()
	p.Category = nil
	p.Brand = nil

	view := p.View(nil)

	// only the product offer remains in play
	first := view.Variants[0]
	assert.Equal(t, pricing.OfferProduct, first.Quote.OfferType)
	assert.InDelta(t, 4050.0, first.Quote.FinalPrice, 0.001) // 4500 * 0.9
	assert.Equal(t, "0", first.Dataset[mirror.KeyCategoryOffer])
	assert.Equal(t, "0", first.Dataset[mirror.KeyBrandOffer])
}

func TestAuditPayloadsPreferCachedPrice(t *testing.T) {
	p := sampleProduct()
	stale := 9999.0
	p.Variants[0].FinalPrice = &stale

	payloads := p.AuditPayloads()
	require.Len(t, payloads, 2)

	// cached value carries through for the auditor to compare
	assert.InDelta(t, stale, payloads[0].FinalPrice, 0.001)
	assert.Equal(t, "40", payloads[0].Size)
	assert.InDelta(t, 20.0, payloads[0].BrandOffer, 0.001)

	// no cache present falls back to a fresh resolve
	assert.InDelta(t, 3750.0, payloads[1].FinalPrice, 0.001)
}

func TestPricingInputsNilRefs(t *testing.T) {
	p := &Product{RegularPrice: 100, ProductOffer: 5}
	in := p.PricingInputs()

	assert.Nil(t, in.CategoryOffer)
	assert.Nil(t, in.BrandOffer)
	assert.Equal(t, 100.0, in.RegularPrice)
}
