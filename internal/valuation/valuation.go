// Package valuation estimates a fair listing price from an item's declared
// purchase price, condition, and category. The estimate is advisory; owners
// still set the manual price that trades settle on.
package valuation

import (
	"math"
	"strings"
)

// Condition factors applied to the declared purchase price.
var conditionFactors = map[string]float64{
	"New":         0.9,
	"Like New":    0.8,
	"Gently Used": 0.6,
	"Functional":  0.4,
}

// defaultFactor covers unknown or missing conditions.
const defaultFactor = 0.4

// electronicsDiscount reflects the faster depreciation of electronics.
const electronicsDiscount = 0.9

// Estimate returns the suggested value for an item, rounded to the nearest
// whole credit.
func Estimate(purchasePrice int64, condition, category string) int64 {
	factor, ok := conditionFactors[condition]
	if !ok {
		factor = defaultFactor
	}

	value := float64(purchasePrice) * factor
	if strings.EqualFold(category, "Electronics") {
		value *= electronicsDiscount
	}

	return int64(math.Floor(value + 0.5))
}
