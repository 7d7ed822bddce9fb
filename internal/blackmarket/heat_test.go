package blackmarket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/shadow-market/config"
	"github.com/user/shadow-market/internal/types"
)

func TestLevelFor(t *testing.T) {
	// Test case 1: band boundaries, one below and at each threshold
	assert.Equal(t, 0, LevelFor(0))
	assert.Equal(t, 0, LevelFor(19.9))
	assert.Equal(t, 1, LevelFor(20))
	assert.Equal(t, 1, LevelFor(39.9))
	assert.Equal(t, 2, LevelFor(40))
	assert.Equal(t, 3, LevelFor(60))
	assert.Equal(t, 4, LevelFor(80))
	assert.Equal(t, 5, LevelFor(95))
	assert.Equal(t, 5, LevelFor(100))

	// Test case 2: negative heat stays at the bottom band
	assert.Equal(t, 0, LevelFor(-3))
}

func TestPenaltyValue(t *testing.T) {
	// Test case 1: blazing band carries cost, risk and investigation penalties
	assert.Equal(t, 0.25, PenaltyValue(61, types.PenaltyDealCost))
	assert.Equal(t, 10.0, PenaltyValue(61, types.PenaltyDealRisk))
	assert.Equal(t, 0.03, PenaltyValue(61, types.PenaltyInvestigationChance))

	// Test case 2: income is only hit at the top two bands
	assert.Equal(t, 0.0, PenaltyValue(61, types.PenaltyIncome))
	assert.Equal(t, 0.10, PenaltyValue(80, types.PenaltyIncome))
	assert.Equal(t, 0.25, PenaltyValue(96, types.PenaltyIncome))

	// Test case 3: the cold band has no penalties at all
	assert.Equal(t, 0.0, PenaltyValue(5, types.PenaltyDealCost))
	assert.Equal(t, 0.0, PenaltyValue(5, types.PenaltyDealRisk))
}

func TestRaiseAndCoolHeat(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)

	// Test case 1: raise reports the amount actually added
	added := manager.raiseHeat(30, 1)
	assert.Equal(t, 30.0, added)
	assert.Equal(t, 30.0, manager.state.Heat)

	// Test case 2: heat saturates at the configured maximum
	added = manager.raiseHeat(90, 2)
	assert.Equal(t, 70.0, added)
	assert.Equal(t, 100.0, manager.state.Heat)

	// Test case 3: crossing a band upward leaves a log entry
	var levelUps int
	for _, entry := range manager.state.Log {
		if entry.MessageKey == "heat.level_up" {
			levelUps++
		}
	}
	assert.Equal(t, 2, levelUps)

	// Test case 4: cooling floors at zero
	manager.coolHeat(500)
	assert.Equal(t, 0.0, manager.state.Heat)

	// Test case 5: non-positive amounts are ignored
	assert.Equal(t, 0.0, manager.raiseHeat(0, 3))
	assert.Equal(t, 0.0, manager.raiseHeat(-10, 3))
	manager.coolHeat(-5)
	assert.Equal(t, 0.0, manager.state.Heat)
}

func TestHeatStatus(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.state.Heat = 61

	// Test case 1: status reports the band and its penalties
	status := manager.HeatStatus()
	assert.Equal(t, 61.0, status.Heat)
	assert.Equal(t, 100.0, status.MaxHeat)
	assert.Equal(t, 3, status.Level)
	assert.Equal(t, "blazing", status.Name)
	assert.Equal(t, 0.25, status.Penalties[types.PenaltyDealCost])

	// Test case 2: the returned penalty map is a copy
	status.Penalties[types.PenaltyDealCost] = 0.99
	assert.Equal(t, 0.25, manager.HeatStatus().Penalties[types.PenaltyDealCost])
}
