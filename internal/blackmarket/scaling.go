package blackmarket

import (
	"math"

	"github.com/user/shadow-market/internal/types"
)

// Per-category multiplier ceilings. Downside categories (cash_loss,
// fine) are capped lower than reward categories to keep the worst case
// bounded while wealth keeps growing.
const (
	capDealCost      = 8
	capDealReward    = 10
	capCashGrant     = 10
	capCashLoss      = 4
	capFine          = 5
	capContactCost   = 8
	capContactReward = 10
)

// scalingCap returns the multiplier ceiling for a value category.
func scalingCap(category types.ValueCategory) float64 {
	switch category {
	case types.ScaleDealCost:
		return capDealCost
	case types.ScaleDealReward:
		return capDealReward
	case types.ScaleCashGrant:
		return capCashGrant
	case types.ScaleCashLoss:
		return capCashLoss
	case types.ScaleFine:
		return capFine
	case types.ScaleContactCost:
		return capContactCost
	case types.ScaleContactReward:
		return capContactReward
	}
	// Unknown categories scale like the floor so a bad call can never
	// inflate a value.
	return 1
}

// Multiplier returns the wealth multiplier for a value category. Wealth
// at or below 100 maps to exactly 1; above that the multiplier follows
// log10(wealth)-1, clamped between 1 and the category cap. Monotone
// non-decreasing in wealth.
func Multiplier(wealth float64, category types.ValueCategory) float64 {
	if wealth <= 100 {
		return 1
	}

	m := math.Log10(wealth) - 1
	if m < 1 {
		return 1
	}

	ceiling := scalingCap(category)
	if m > ceiling {
		return ceiling
	}
	return m
}

// Scale applies the wealth multiplier to a base value and rounds to a
// whole amount. Never returns less than base. Flat effects (heat drops,
// risk shields, multiplicative ratios) must not be passed through here.
func Scale(base, wealth float64, category types.ValueCategory) float64 {
	return math.Round(base * Multiplier(wealth, category))
}
