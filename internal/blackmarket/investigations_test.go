package blackmarket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/shadow-market/config"
)

func TestSeverityTables(t *testing.T) {
	// Test case 1: duration grows ten ticks per severity step
	assert.Equal(t, int64(10), severityDuration(1))
	assert.Equal(t, int64(20), severityDuration(2))
	assert.Equal(t, int64(50), severityDuration(5))

	// Test case 2: fines triple per step
	assert.InDelta(t, 100.0, severityBaseFine(1), 1e-9)
	assert.InDelta(t, 300.0, severityBaseFine(2), 1e-9)
	assert.InDelta(t, 900.0, severityBaseFine(3), 1e-9)
	assert.InDelta(t, 2700.0, severityBaseFine(4), 1e-9)
	assert.InDelta(t, 8100.0, severityBaseFine(5), 1e-9)

	// Test case 3: catch chance climbs with severity
	assert.InDelta(t, 0.18, severityCatchChance(1), 1e-9)
	assert.InDelta(t, 0.34, severityCatchChance(3), 1e-9)
	assert.InDelta(t, 0.50, severityCatchChance(5), 1e-9)
}

func TestSpawnInvestigation(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)

	// Test case 1: spawns fill up to the active cap
	assert.NotNil(t, manager.spawnInvestigation(1, 500, 1))
	assert.NotNil(t, manager.spawnInvestigation(2, 500, 1))
	assert.NotNil(t, manager.spawnInvestigation(3, 500, 1))
	assert.Len(t, manager.Investigations(), 3)

	// Test case 2: at the cap, further spawns are dropped silently
	assert.Nil(t, manager.spawnInvestigation(4, 500, 1))
	assert.Len(t, manager.Investigations(), 3)
	assert.Equal(t, 3, manager.Stats().InvestigationsOpened)

	// Test case 3: severity clamps into 1..5
	manager.state.Investigations = nil
	spawned := manager.spawnInvestigation(99, 500, 1)
	assert.Equal(t, 5, spawned.Severity)
	spawned = manager.spawnInvestigation(-1, 500, 1)
	assert.Equal(t, 1, spawned.Severity)

	// Test case 4: fine and catch chance derive from severity and wealth
	manager.state.Investigations = nil
	spawned = manager.spawnInvestigation(2, 500, 7)
	assert.Equal(t, int64(20), spawned.TicksRemaining)
	assert.Equal(t, int64(20), spawned.TotalDuration)
	assert.Equal(t, 510.0, spawned.Fine)
	assert.InDelta(t, 0.26, spawned.CatchChance, 1e-9)
	assert.Equal(t, int64(7), spawned.StartedAtTick)
}

func TestTickInvestigationsCaught(t *testing.T) {
	// Setup: a severity-2 case that will resolve against a low draw
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{draws: []float64{0.0}})
	investigation := manager.spawnInvestigation(2, 500, 1)
	assert.NotNil(t, investigation)
	investigation.TicksRemaining = 2
	manager.state.Stats.Respect = 3

	// Test case 1: counting down does not resolve early
	fines, closed := manager.tickInvestigations(10, 500)
	assert.Equal(t, 0.0, fines)
	assert.Empty(t, closed)
	assert.Len(t, manager.Investigations(), 1)

	// Test case 2: at zero the case resolves as caught
	fines, closed = manager.tickInvestigations(11, 600)
	assert.Equal(t, -510.0, fines)
	assert.Len(t, closed, 1)
	assert.True(t, closed[0].Caught)
	assert.True(t, closed[0].Resolved)
	assert.Empty(t, manager.Investigations())

	// Test case 3: fine, heat and respect penalties all landed
	assert.Equal(t, 10.0, manager.HeatStatus().Heat)
	stats := manager.Stats()
	assert.Equal(t, 1, stats.TimesCaught)
	assert.Equal(t, 510.0, stats.TotalLost)
	assert.Equal(t, 0, stats.Respect)
}

func TestTickInvestigationsCleared(t *testing.T) {
	// Setup: the same case cleared by a high draw
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	investigation := manager.spawnInvestigation(2, 500, 1)
	assert.NotNil(t, investigation)
	investigation.TicksRemaining = 1

	// Test case 1: cleared costs nothing
	fines, closed := manager.tickInvestigations(2, 500)
	assert.Equal(t, 0.0, fines)
	assert.Len(t, closed, 1)
	assert.False(t, closed[0].Caught)
	assert.True(t, closed[0].Resolved)
	assert.Equal(t, 0, manager.Stats().TimesCaught)
	assert.Equal(t, 0.0, manager.HeatStatus().Heat)
}

func TestTickInvestigationsFineClampsToWealth(t *testing.T) {
	// Setup: a rich spawn, a poor resolution
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{draws: []float64{0.0}})
	investigation := manager.spawnInvestigation(3, 1e6, 1)
	assert.NotNil(t, investigation)
	assert.Equal(t, 4500.0, investigation.Fine)
	investigation.TicksRemaining = 1

	// Test case 1: the fine can only take what the wallet holds
	fines, closed := manager.tickInvestigations(2, 100)
	assert.Equal(t, -100.0, fines)
	assert.Len(t, closed, 1)
	assert.Equal(t, 100.0, manager.Stats().TotalLost)
}

func TestDismissInvestigations(t *testing.T) {
	// Setup: three cases in spawn order
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	first := manager.spawnInvestigation(1, 500, 1)
	second := manager.spawnInvestigation(2, 500, 2)
	third := manager.spawnInvestigation(3, 500, 3)
	assert.NotNil(t, first)
	assert.NotNil(t, second)
	assert.NotNil(t, third)

	// Test case 1: dismissal removes the oldest cases first
	removed := manager.dismissInvestigations(2, 5)
	assert.Equal(t, 2, removed)
	assert.Len(t, manager.state.Investigations, 1)
	assert.Equal(t, third.ID, manager.state.Investigations[0].ID)

	// Test case 2: a count past the active set removes what exists
	assert.Equal(t, 1, manager.dismissInvestigations(5, 6))
	assert.Empty(t, manager.state.Investigations)

	// Test case 3: nothing to dismiss is a zero, not an error
	assert.Equal(t, 0, manager.dismissInvestigations(1, 7))
}
