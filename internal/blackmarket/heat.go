package blackmarket

import (
	"fmt"

	"github.com/user/shadow-market/internal/types"
	"go.uber.org/zap"
)

// heatLevel is one band of the heat meter with its passive penalties.
type heatLevel struct {
	Level     int
	Name      string
	MinHeat   float64
	Penalties map[types.PenaltyType]float64
}

// heatLevels is the closed level table, ordered by MinHeat. Penalties
// are read-only annotations: pool pricing consumes deal_cost and
// deal_risk, failed-deal investigation rolls consume
// investigation_chance, and the outer income pipeline consumes income.
var heatLevels = []heatLevel{
	{Level: 0, Name: "cold", MinHeat: 0, Penalties: nil},
	{Level: 1, Name: "warm", MinHeat: 20, Penalties: map[types.PenaltyType]float64{
		types.PenaltyDealCost:            0.10,
		types.PenaltyDealRisk:            5,
		types.PenaltyInvestigationChance: 0.01,
	}},
	{Level: 2, Name: "hot", MinHeat: 40, Penalties: map[types.PenaltyType]float64{
		types.PenaltyDealCost:            0.15,
		types.PenaltyDealRisk:            7,
		types.PenaltyInvestigationChance: 0.02,
	}},
	{Level: 3, Name: "blazing", MinHeat: 60, Penalties: map[types.PenaltyType]float64{
		types.PenaltyDealCost:            0.25,
		types.PenaltyDealRisk:            10,
		types.PenaltyInvestigationChance: 0.03,
	}},
	{Level: 4, Name: "scorching", MinHeat: 80, Penalties: map[types.PenaltyType]float64{
		types.PenaltyDealCost:            0.40,
		types.PenaltyDealRisk:            15,
		types.PenaltyInvestigationChance: 0.05,
		types.PenaltyIncome:              0.10,
	}},
	{Level: 5, Name: "burned", MinHeat: 95, Penalties: map[types.PenaltyType]float64{
		types.PenaltyDealCost:            0.60,
		types.PenaltyDealRisk:            20,
		types.PenaltyInvestigationChance: 0.08,
		types.PenaltyIncome:              0.25,
	}},
}

// LevelFor returns the heat level for a heat value: the highest band
// whose threshold is at or below it. Same scan pattern as TierFor.
func LevelFor(heat float64) int {
	for i := len(heatLevels) - 1; i >= 0; i-- {
		if heat >= heatLevels[i].MinHeat {
			return heatLevels[i].Level
		}
	}
	return 0
}

// PenaltyValue returns the magnitude of one penalty type at a heat
// value, 0 when the current level does not carry it.
func PenaltyValue(heat float64, penalty types.PenaltyType) float64 {
	level := heatLevels[LevelFor(heat)]
	if level.Penalties == nil {
		return 0
	}
	return level.Penalties[penalty]
}

// HeatStatus reports the current heat meter and its penalties.
func (mm *MarketManager) HeatStatus() *types.HeatStatus {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	return mm.heatStatusLocked()
}

// heatStatusLocked builds the heat read model. Callers hold the lock.
func (mm *MarketManager) heatStatusLocked() *types.HeatStatus {
	level := heatLevels[LevelFor(mm.state.Heat)]

	penalties := make(map[types.PenaltyType]float64, len(level.Penalties))
	for penalty, value := range level.Penalties {
		penalties[penalty] = value
	}

	return &types.HeatStatus{
		Heat:      mm.state.Heat,
		MaxHeat:   mm.config.Game.MaxHeat,
		Level:     level.Level,
		Name:      level.Name,
		Penalties: penalties,
	}
}

// raiseHeat increments heat, saturating at the configured maximum, and
// logs level transitions upward. Callers hold the write lock.
func (mm *MarketManager) raiseHeat(amount float64, tick int64) float64 {
	if amount <= 0 {
		return 0
	}

	before := mm.state.Heat
	after := before + amount
	if after > mm.config.Game.MaxHeat {
		after = mm.config.Game.MaxHeat
	}
	mm.state.Heat = after

	if levelBefore, levelAfter := LevelFor(before), LevelFor(after); levelAfter > levelBefore {
		mm.appendLog(tick, types.SeverityWarning, "heat.level_up", map[string]string{
			"level": fmt.Sprintf("%d", levelAfter),
			"name":  heatLevels[levelAfter].Name,
			"heat":  fmt.Sprintf("%.1f", after),
		}, types.SourceHeat)
		mm.Logger.Info("heat level raised",
			zap.Int("level", levelAfter),
			zap.String("name", heatLevels[levelAfter].Name),
			zap.Float64("heat", after))
	}

	return after - before
}

// coolHeat decrements heat, flooring at zero. Callers hold the write lock.
func (mm *MarketManager) coolHeat(amount float64) {
	if amount <= 0 {
		return
	}

	mm.state.Heat -= amount
	if mm.state.Heat < 0 {
		mm.state.Heat = 0
	}
}
