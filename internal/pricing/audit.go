package pricing

import (
	"math"

	"go.uber.org/zap"
)

// DefaultEpsilon is the tolerated float drift between a stored/rendered final
// price and a fresh recomputation, in currency units.
const DefaultEpsilon = 0.01

// PricedVariant is the flattened payload the storefront renders for one
// variant: the cached/derived final price alongside every offer input that
// produced it. The auditor re-derives the price from the inputs and compares.
type PricedVariant struct {
	ProductID     int64
	Size          string
	BasePrice     float64
	RegularPrice  float64
	FinalPrice    float64
	CategoryOffer float64
	BrandOffer    float64
	ProductOffer  float64
	VariantOffer  float64
}

// Auditor flags drift between a rendered final price and the resolver's
// answer for the same inputs. Observe-only and fail-open: it logs at Warn and
// never alters, blocks or fails the response it inspects. Meant to run in
// non-production environments; a disabled auditor is a no-op.
type Auditor struct {
	log     *zap.SugaredLogger
	enabled bool
	epsilon float64
}

func NewAuditor(log *zap.SugaredLogger, enabled bool) *Auditor {
	return &Auditor{log: log, enabled: enabled, epsilon: DefaultEpsilon}
}

// Check recomputes the expected final price and returns false when the
// rendered value drifts beyond epsilon. Pure computation plus one log call.
func (a *Auditor) Check(pv PricedVariant) bool {
	if !a.enabled {
		return true
	}

	catOffer, brandOffer := pv.CategoryOffer, pv.BrandOffer
	want := Resolve(
		Product{
			RegularPrice:  pv.RegularPrice,
			ProductOffer:  pv.ProductOffer,
			CategoryOffer: &catOffer,
			BrandOffer:    &brandOffer,
		},
		Variant{Size: pv.Size, BasePrice: pv.BasePrice, VariantOffer: pv.VariantOffer},
	)

	if math.Abs(want.FinalPrice-pv.FinalPrice) <= a.epsilon {
		return true
	}

	a.log.Warnw("final price drift detected",
		"product_id", pv.ProductID,
		"size", pv.Size,
		"rendered", pv.FinalPrice,
		"expected", want.FinalPrice,
		"applied_offer", want.AppliedOffer,
		"offer_type", want.OfferType,
	)
	return false
}
