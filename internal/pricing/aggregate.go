package pricing

import (
	"fmt"
	"math"
)

// ValidationError rejects a variant priced at or above the product's regular
// price. Prices are rounded to whole currency units for the message; the
// admin form shows it verbatim.
type ValidationError struct {
	Position     int // 1-based, matches the admin form's row numbering
	Size         string
	BasePrice    float64
	RegularPrice float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf(
		"variant %d (size %s): base price %.0f must be strictly less than regular price %.0f",
		e.Position, e.Size, e.BasePrice, e.RegularPrice,
	)
}

// ValidateVariantPricing checks every variant that has a base price set
// against the strict basePrice < regularPrice invariant. The first offender
// fails the whole save; callers must not persist anything on error.
func ValidateVariantPricing(regularPrice float64, variants []Variant) error {
	for i, v := range variants {
		if v.BasePrice <= 0 {
			continue // no base price set; the fallback path prices it off regularPrice
		}
		if v.BasePrice >= regularPrice {
			return &ValidationError{
				Position:     i + 1,
				Size:         v.Size,
				BasePrice:    math.Round(v.BasePrice),
				RegularPrice: math.Round(regularPrice),
			}
		}
	}
	return nil
}

// TotalStock is the denormalized stock sum stored on the product row.
// Recomputed unconditionally on every save.
func TotalStock(variants []Variant) int {
	total := 0
	for _, v := range variants {
		total += v.Stock
	}
	return total
}

// AverageFinalPrice is the arithmetic mean of the resolved final prices over
// all variants, or the regular price itself for a product without variants.
func AverageFinalPrice(p Product, variants []Variant) float64 {
	if len(variants) == 0 {
		return p.RegularPrice
	}
	sum := 0.0
	for _, v := range variants {
		sum += Resolve(p, v).FinalPrice
	}
	return sum / float64(len(variants))
}

// VariantFinalPrice resolves the final price for the first variant matching
// size. An unknown size is not an error; it prices as "no discount
// available" at the regular price.
func VariantFinalPrice(p Product, variants []Variant, size string) float64 {
	for _, v := range variants {
		if v.Size == size {
			return Resolve(p, v).FinalPrice
		}
	}
	return p.RegularPrice
}
