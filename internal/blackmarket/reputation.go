package blackmarket

import "github.com/user/shadow-market/internal/types"

// tierSpec is one rung of the reputation ladder.
type tierSpec struct {
	Tier          int
	Name          string
	DealsRequired int
	RiskReduction float64
	PriceDiscount float64
	Unlocks       types.DealCategory
}

// reputationTiers is the closed tier table, ordered by DealsRequired.
// Each tier unlocks one deal category on top of everything below it.
var reputationTiers = []tierSpec{
	{Tier: 0, Name: "Nobody", DealsRequired: 0, RiskReduction: 0, PriceDiscount: 0, Unlocks: types.CategoryStreet},
	{Tier: 1, Name: "Runner", DealsRequired: 3, RiskReduction: 2, PriceDiscount: 0.02, Unlocks: types.CategorySmuggling},
	{Tier: 2, Name: "Hustler", DealsRequired: 8, RiskReduction: 4, PriceDiscount: 0.05, Unlocks: types.CategoryFraud},
	{Tier: 3, Name: "Operator", DealsRequired: 15, RiskReduction: 6, PriceDiscount: 0.08, Unlocks: types.CategoryCyber},
	{Tier: 4, Name: "Kingpin", DealsRequired: 25, RiskReduction: 9, PriceDiscount: 0.12, Unlocks: types.CategoryLaundering},
	{Tier: 5, Name: "Phantom", DealsRequired: 40, RiskReduction: 12, PriceDiscount: 0.15, Unlocks: types.CategoryHeist},
}

// TierFor derives the reputation tier from the lifetime completed-deal
// count. Scans thresholds from highest to lowest and returns the first
// satisfied; always 0 for a fresh session.
func TierFor(completedDeals int) int {
	for i := len(reputationTiers) - 1; i >= 0; i-- {
		if completedDeals >= reputationTiers[i].DealsRequired {
			return reputationTiers[i].Tier
		}
	}
	return 0
}

// ProgressToNext reports progress from the current tier threshold to
// the next one in [0, 1]. At the top tier it is always 1.
func ProgressToNext(completedDeals int) float64 {
	tier := TierFor(completedDeals)
	if tier >= len(reputationTiers)-1 {
		return 1
	}

	current := reputationTiers[tier].DealsRequired
	next := reputationTiers[tier+1].DealsRequired
	progress := float64(completedDeals-current) / float64(next-current)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return progress
}

// tierSpecFor returns the ladder row for a tier, clamping out-of-range input.
func tierSpecFor(tier int) tierSpec {
	if tier < 0 {
		tier = 0
	}
	if tier >= len(reputationTiers) {
		tier = len(reputationTiers) - 1
	}
	return reputationTiers[tier]
}

// UnlockedCategories returns every deal category available at a tier,
// in unlock order.
func UnlockedCategories(tier int) []types.DealCategory {
	if tier < 0 {
		tier = 0
	}
	if tier >= len(reputationTiers) {
		tier = len(reputationTiers) - 1
	}

	categories := make([]types.DealCategory, 0, tier+1)
	for i := 0; i <= tier; i++ {
		categories = append(categories, reputationTiers[i].Unlocks)
	}
	return categories
}
