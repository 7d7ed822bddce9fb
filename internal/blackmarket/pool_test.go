package blackmarket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/shadow-market/config"
	"github.com/user/shadow-market/internal/types"
)

func findByDeal(instances []*types.DealInstance, id types.DealID) *types.DealInstance {
	for _, instance := range instances {
		if instance.DealID == id {
			return instance
		}
	}
	return nil
}

func TestTickFillsPool(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})

	// Test case 1: the first tick offers every tier-0 definition
	result := manager.Tick(types.TickInput{Tick: 1, Wealth: 500})
	assert.Len(t, result.OfferedDeals, 3)
	assert.Len(t, manager.Deals(), 3)

	// Test case 2: one live instance per definition, all available
	seen := make(map[types.DealID]bool)
	for _, instance := range manager.Deals() {
		assert.False(t, seen[instance.DealID])
		seen[instance.DealID] = true
		assert.Equal(t, types.StatusAvailable, instance.Status)
		assert.NotEmpty(t, instance.ID)
	}

	// Test case 3: a full pool offers nothing new
	result = manager.Tick(types.TickInput{Tick: 2, Wealth: 500})
	assert.Empty(t, result.OfferedDeals)

	// Test case 4: cost and risk are priced at materialization
	fence := findByDeal(manager.Deals(), "fence_stolen_goods")
	assert.NotNil(t, fence)
	assert.Equal(t, 102.0, fence.Cost)
	assert.Equal(t, 12.0, fence.Risk)
}

func TestPoolFillsToMinimum(t *testing.T) {
	// Setup: tier 2 unlocks seven definitions, more than the pool needs
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	manager.state.Stats.CompletedDeals = 8

	// Test case 1: rotation fills the pool to the configured minimum
	result := manager.Tick(types.TickInput{Tick: 1, Wealth: 500})
	assert.Len(t, result.OfferedDeals, cfg.Game.MinDealsAvailable)
	assert.Len(t, manager.Deals(), cfg.Game.MinDealsAvailable)
	assert.LessOrEqual(t, len(manager.Deals()), cfg.Game.MaxDealsAvailable)

	// Test case 2: the pool does not grow past the minimum on its own
	result = manager.Tick(types.TickInput{Tick: 2, Wealth: 500})
	assert.Empty(t, result.OfferedDeals)
	assert.Len(t, manager.Deals(), cfg.Game.MinDealsAvailable)
}

func TestPoolExpiryStartsCooldown(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	manager.Tick(types.TickInput{Tick: 1, Wealth: 500})
	assert.Len(t, manager.Deals(), 3)

	// Test case 1: offers lapse once their window passes
	result := manager.Tick(types.TickInput{Tick: 700, Wealth: 500})
	assert.Len(t, result.ExpiredDeals, 3)
	assert.Equal(t, 3, manager.Stats().ExpiredDeals)

	// Test case 2: expired definitions cool down instead of refilling
	assert.Empty(t, result.OfferedDeals)
	assert.Empty(t, manager.Deals())

	// Test case 3: expiry is logged
	var expiries int
	for _, entry := range manager.Log(0) {
		if entry.MessageKey == "deal.expired" {
			expiries++
		}
	}
	assert.Equal(t, 3, expiries)

	// Test case 4: once cooldowns lapse the definitions come back
	result = manager.Tick(types.TickInput{Tick: 1100, Wealth: 500})
	assert.Len(t, result.OfferedDeals, 3)
	assert.Len(t, manager.Deals(), 3)
}

func TestHeatAndTierPricing(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	deal, err := manager.catalog.Deal("fence_stolen_goods")
	assert.NoError(t, err)

	// Test case 1: blazing heat marks up cost and risk
	manager.state.Heat = 61
	instance := manager.materializeDeal(deal, 1, 500)
	assert.Equal(t, 128.0, instance.Cost)
	assert.Equal(t, 22.0, instance.Risk)

	// Test case 2: reputation discounts cost and shaves risk
	manager.state.Heat = 0
	manager.state.Stats.CompletedDeals = 8
	instance = manager.materializeDeal(deal, 1, 500)
	assert.Equal(t, 97.0, instance.Cost)
	assert.Equal(t, 8.0, instance.Risk)

	// Test case 3: risk never leaves the 1..95 band
	manager.state.Stats.CompletedDeals = 40
	instance = manager.materializeDeal(deal, 1, 500)
	assert.GreaterOrEqual(t, instance.Risk, 1.0)
}

func TestAcceptDealSuccess(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	manager.Tick(types.TickInput{Tick: 1, Wealth: 500})
	instance := findByDeal(manager.Deals(), "fence_stolen_goods")
	assert.NotNil(t, instance)

	// Test case 1: a high roll completes the deal
	result, err := manager.AcceptDeal(instance.ID, 2, 500)
	assert.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, result.Status)
	assert.Equal(t, 255.0-instance.Cost, result.CashDelta)
	assert.Equal(t, 5, result.XPGained)
	assert.Equal(t, 1, result.RespectGained)

	// Test case 2: lifetime counters advance
	stats := manager.Stats()
	assert.Equal(t, 1, stats.CompletedDeals)
	assert.Equal(t, 0, stats.FailedDeals)
	assert.Equal(t, 255.0, stats.TotalEarned)
	assert.Equal(t, 5, stats.XPEarned)
	assert.Equal(t, 1, stats.Respect)

	// Test case 3: the instance left the pool and cannot be re-accepted
	assert.Len(t, manager.Deals(), 2)
	_, err = manager.AcceptDeal(instance.ID, 3, 500)
	assert.ErrorIs(t, err, ErrUnknownDeal)

	// Test case 4: the definition is cooling down, so the next rotation
	// does not re-offer it
	result2 := manager.Tick(types.TickInput{Tick: 3, Wealth: 500})
	assert.Empty(t, result2.OfferedDeals)
	assert.Nil(t, findByDeal(manager.Deals(), "fence_stolen_goods"))
}

func TestAcceptDealFailure(t *testing.T) {
	// Setup: the risk roll fails, then both street consequences hit
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{draws: []float64{0, 0, 0}})
	manager.Tick(types.TickInput{Tick: 1, Wealth: 500})
	instance := findByDeal(manager.Deals(), "fence_stolen_goods")
	assert.NotNil(t, instance)

	// Test case 1: the deal fails and the money consequences land
	result, err := manager.AcceptDeal(instance.ID, 2, 500)
	assert.NoError(t, err)
	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Equal(t, -170.0, result.CashDelta)

	// Test case 2: base heat plus the heat-spike consequence
	assert.Equal(t, 12.0, result.HeatAdded)
	assert.Equal(t, 12.0, manager.HeatStatus().Heat)

	// Test case 3: counters track the failure, not a completion
	stats := manager.Stats()
	assert.Equal(t, 1, stats.FailedDeals)
	assert.Equal(t, 0, stats.CompletedDeals)
	assert.Equal(t, 68.0, stats.TotalLost)

	// Test case 4: failed deals also leave the pool and cool down
	assert.Len(t, manager.Deals(), 2)
}

func TestAcceptDealCashLossClampsToWealth(t *testing.T) {
	// Setup: fail the roll, then hit the cash loss with nothing left
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{draws: []float64{0, 0, 0.99}})
	manager.Tick(types.TickInput{Tick: 1, Wealth: 500})
	instance := findByDeal(manager.Deals(), "fence_stolen_goods")
	assert.NotNil(t, instance)

	// Wealth barely covers the cost, so the loss can only take the rest
	wealth := instance.Cost + 10
	result, err := manager.AcceptDeal(instance.ID, 2, wealth)
	assert.NoError(t, err)
	assert.Equal(t, types.StatusFailed, result.Status)

	// Test case 1: the loss is capped at what remains after the cost
	assert.Equal(t, -instance.Cost-10, result.CashDelta)
	assert.Equal(t, 10.0, manager.Stats().TotalLost)
}

func TestAcceptDealValidation(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	manager.Tick(types.TickInput{Tick: 1, Wealth: 500})
	instance := findByDeal(manager.Deals(), "fence_stolen_goods")
	assert.NotNil(t, instance)

	// Test case 1: unknown instance id
	_, err := manager.AcceptDeal("missing", 2, 500)
	assert.ErrorIs(t, err, ErrUnknownDeal)

	// Test case 2: insufficient funds
	_, err = manager.AcceptDeal(instance.ID, 2, 10)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Test case 3: the offer window has passed
	_, err = manager.AcceptDeal(instance.ID, instance.ExpiresAtTick+1, 500)
	assert.ErrorIs(t, err, ErrDealNotAvailable)

	// Test case 4: a locked tier rejects even with the funds
	locked := NewMarketManager(cfg)
	locked.SetRoller(&stubRoller{})
	vault, err := locked.catalog.Deal("vault_job")
	assert.NoError(t, err)
	vaultInstance := locked.materializeDeal(vault, 1, 500)
	locked.state.Pool = append(locked.state.Pool, vaultInstance)
	_, err = locked.AcceptDeal(vaultInstance.ID, 2, 1e9)
	assert.ErrorIs(t, err, ErrTierTooLow)

	// Test case 5: rejections leave no trace
	assert.Equal(t, 0, manager.Stats().FailedDeals)
	assert.Equal(t, 0, manager.Stats().CompletedDeals)
	assert.Len(t, manager.Deals(), 3)
	assert.Equal(t, 0.0, manager.HeatStatus().Heat)
}

func TestRiskShieldLowersEffectiveRisk(t *testing.T) {
	// Setup: a draw of 10 fails against risk 12 but passes once the
	// shield brings the effective risk down to 4
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{draws: []float64{0.10}})
	manager.Tick(types.TickInput{Tick: 1, Wealth: 500})
	instance := findByDeal(manager.Deals(), "fence_stolen_goods")
	assert.NotNil(t, instance)

	manager.addEffect(types.EffectSpec{
		Type:          types.EffectRiskShield,
		Value:         8,
		DurationTicks: 100,
	}, types.SourceContact, "mule")

	// Test case 1: the shielded roll succeeds
	result, err := manager.AcceptDeal(instance.ID, 2, 500)
	assert.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, result.Status)

	// Test case 2: the priced risk on the instance is unchanged
	assert.Equal(t, 12.0, instance.Risk)
}

func TestHeatRaisesInvestigationChance(t *testing.T) {
	// Setup: risk roll fails, cash loss and heat spike miss, and the
	// investigation roll of 0.16 only lands because blazing heat lifts
	// the 0.15 base chance to 0.18
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{draws: []float64{0, 0.9, 0.9, 0.16}})
	manager.state.Heat = 61
	manager.state.Stats.CompletedDeals = 3

	deal, err := manager.catalog.Deal("gray_market_imports")
	assert.NoError(t, err)
	instance := manager.materializeDeal(deal, 1, 500)
	manager.state.Pool = append(manager.state.Pool, instance)

	// Test case 1: the failure opens an investigation
	result, err := manager.AcceptDeal(instance.ID, 2, 1e6)
	assert.NoError(t, err)
	assert.Equal(t, types.StatusFailed, result.Status)
	assert.True(t, result.InvestigationOpened)
	assert.Len(t, manager.Investigations(), 1)
	assert.Equal(t, 1, manager.Investigations()[0].Severity)
}
