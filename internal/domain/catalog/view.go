package catalog

import (
	"pasal/internal/pricing"
	"pasal/internal/pricing/mirror"
)

// View assembles the storefront detail payload: every variant resolved
// through the pricing core, with the dataset attributes the page embeds for
// the client-side mirror. Pure assembly over an already-loaded product.
func (p *Product) View(images []*ProductImage) *ProductView {
	in := p.PricingInputs()

	priced := make([]PricedVariant, 0, len(p.Variants))
	for _, v := range p.Variants {
		vin := v.PricingInputs()
		priced = append(priced, PricedVariant{
			VariantID: v.ID,
			Size:      v.Size,
			Stock:     v.Stock,
			Quote:     pricing.Resolve(in, vin),
			Dataset:   mirror.Dataset(in, vin),
		})
	}

	return &ProductView{
		Product:           p,
		Variants:          priced,
		AverageFinalPrice: pricing.AverageFinalPrice(in, variantInputs(p.Variants)),
		Images:            images,
	}
}

// AuditPayloads flattens the view into the auditor's input shape, pairing
// each variant's cached final price (when present) with the offers now in
// effect. Handlers feed these to the consistency auditor after rendering.
func (p *Product) AuditPayloads() []pricing.PricedVariant {
	in := p.PricingInputs()

	out := make([]pricing.PricedVariant, 0, len(p.Variants))
	for _, v := range p.Variants {
		final := pricing.Resolve(in, v.PricingInputs()).FinalPrice
		if v.FinalPrice != nil {
			final = *v.FinalPrice
		}
		out = append(out, pricing.PricedVariant{
			ProductID:     p.ID,
			Size:          v.Size,
			BasePrice:     v.BasePrice,
			RegularPrice:  p.RegularPrice,
			FinalPrice:    final,
			CategoryOffer: pricing.OfferValue(in.CategoryOffer),
			BrandOffer:    pricing.OfferValue(in.BrandOffer),
			ProductOffer:  pricing.ClampPercent(p.ProductOffer),
			VariantOffer:  pricing.ClampPercent(v.VariantOffer),
		})
	}
	return out
}
