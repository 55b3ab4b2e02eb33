// Package mirror re-implements the price resolver over the per-variant
// dataset attributes serialized into storefront markup. It is the contract
// the browser-side script follows: it cannot reach the catalog, only the
// numeric strings embedded in the page, and it must land on exactly the same
// numbers the server rendered. Keep its arithmetic and tie-break in lock-step
// with pricing.Resolve; adding an offer source means touching both sides of
// the wire at once.
package mirror

import (
	"math"
	"strconv"

	"pasal/internal/pricing"
)

// Dataset attribute keys, as they appear in data-* attributes.
const (
	KeyCategoryOffer = "categoryOffer"
	KeyBrandOffer    = "brandOffer"
	KeyProductOffer  = "productOffer"
	KeyVariantOffer  = "variantOffer"
	KeyBasePrice     = "basePrice"
	KeyRegularPrice  = "regularPrice"
	KeySize          = "size"
	KeyStock         = "stock"
)

// Dataset serializes one variant's pricing inputs into the wire contract
// consumed by Resolve. All values render as plain numeric strings; absent
// offers render as "0" so the client never has to special-case them.
func Dataset(p pricing.Product, v pricing.Variant) map[string]string {
	return map[string]string{
		KeyCategoryOffer: formatNum(pricing.OfferValue(p.CategoryOffer)),
		KeyBrandOffer:    formatNum(pricing.OfferValue(p.BrandOffer)),
		KeyProductOffer:  formatNum(pricing.ClampPercent(p.ProductOffer)),
		KeyVariantOffer:  formatNum(pricing.ClampPercent(v.VariantOffer)),
		KeyBasePrice:     formatNum(v.BasePrice),
		KeyRegularPrice:  formatNum(p.RegularPrice),
		KeySize:          v.Size,
		KeyStock:         strconv.Itoa(v.Stock),
	}
}

// Resolve recomputes the quote the way the in-page script does: parse each
// attribute, default to 0 on anything absent or unparsable, take the max of
// the four offers with the category > brand > product > variant tie-break,
// and apply it to the base price (regular price when the base is missing).
//
// Deliberately does not call pricing.Resolve: this is the disconnected
// re-implementation whose parity with the server is asserted in tests.
func Resolve(data map[string]string) pricing.Quote {
	offers := [4]struct {
		typ pricing.OfferType
		pct float64
	}{
		{pricing.OfferCategory, clamp(num(data, KeyCategoryOffer))},
		{pricing.OfferBrand, clamp(num(data, KeyBrandOffer))},
		{pricing.OfferProduct, clamp(num(data, KeyProductOffer))},
		{pricing.OfferVariant, clamp(num(data, KeyVariantOffer))},
	}

	applied := 0.0
	typ := pricing.OfferNone
	for _, o := range offers {
		if o.pct > applied {
			applied = o.pct
			typ = o.typ
		}
	}

	base := num(data, KeyBasePrice)
	if base <= 0 {
		base = num(data, KeyRegularPrice)
	}

	return pricing.Quote{
		AppliedOffer: applied,
		OfferType:    typ,
		FinalPrice:   base * (1 - applied/100),
		BasePrice:    base,
	}
}

// Page tracks the variant selection state of a rendered product page and
// recomputes the quote whenever the selection changes.
type Page struct {
	variants []map[string]string
	selected int
}

func NewPage(variants []map[string]string) *Page {
	return &Page{variants: variants}
}

// Select switches the active variant and returns its quote. Out-of-range
// indexes keep the current selection, mirroring a DOM script ignoring clicks
// on disabled swatches.
func (pg *Page) Select(i int) pricing.Quote {
	if i >= 0 && i < len(pg.variants) {
		pg.selected = i
	}
	return pg.Quote()
}

func (pg *Page) Selected() int { return pg.selected }

// Quote resolves the currently selected variant. An empty page quotes zero.
func (pg *Page) Quote() pricing.Quote {
	if len(pg.variants) == 0 {
		return pricing.Quote{OfferType: pricing.OfferNone}
	}
	return Resolve(pg.variants[pg.selected])
}

func num(data map[string]string, key string) float64 {
	raw, ok := data[key]
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
