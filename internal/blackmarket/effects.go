package blackmarket

import (
	"github.com/google/uuid"
	"github.com/user/shadow-market/internal/types"
	"go.uber.org/zap"
)

// Effect overflow policies. The default is drop-new: once the ledger is
// full, new spawns are silently discarded. evict-oldest is offered as a
// config alternative.
const (
	OverflowDropNew     = "drop-new"
	OverflowEvictOldest = "evict-oldest"
)

// addEffect inserts a duration effect into the ledger, enforcing the
// capacity cap according to the configured overflow policy. Returns the
// stored effect, or nil when the spawn was dropped. Callers hold the
// write lock.
func (mm *MarketManager) addEffect(spec types.EffectSpec, source types.LogSource, sourceID string) *types.ActiveEffect {
	if spec.DurationTicks <= 0 {
		return nil
	}

	if len(mm.state.Effects) >= mm.config.Game.MaxActiveEffects {
		if mm.config.Game.EffectOverflowPolicy == OverflowEvictOldest {
			// Oldest first: the ledger is append-only, so index 0 is
			// the oldest surviving effect.
			mm.Logger.Debug("effect ledger full, evicting oldest",
				zap.String("evicted_id", mm.state.Effects[0].ID))
			mm.state.Effects = mm.state.Effects[1:]
		} else {
			mm.Logger.Debug("effect ledger full, dropping new effect",
				zap.String("type", string(spec.Type)),
				zap.String("target", spec.Target))
			return nil
		}
	}

	effect := &types.ActiveEffect{
		ID:             uuid.New().String(),
		SourceID:       sourceID,
		Source:         source,
		Type:           spec.Type,
		Value:          spec.Value,
		TicksRemaining: spec.DurationTicks,
		TotalDuration:  spec.DurationTicks,
		Target:         spec.Target,
	}
	mm.state.Effects = append(mm.state.Effects, effect)
	return effect
}

// tickEffects counts every active effect down one tick and evicts the
// expired ones. Returns the ids of removed effects. Callers hold the
// write lock.
func (mm *MarketManager) tickEffects() []string {
	if len(mm.state.Effects) == 0 {
		return nil
	}

	var expired []string
	remaining := mm.state.Effects[:0]
	for _, effect := range mm.state.Effects {
		effect.TicksRemaining--
		if effect.TicksRemaining <= 0 {
			expired = append(expired, effect.ID)
			continue
		}
		remaining = append(remaining, effect)
	}
	mm.state.Effects = remaining

	return expired
}

// riskShieldTotal sums the active risk_shield values. Callers hold the
// lock.
func (mm *MarketManager) riskShieldTotal() float64 {
	var total float64
	for _, effect := range mm.state.Effects {
		if effect.Type == types.EffectRiskShield {
			total += effect.Value
		}
	}
	return total
}

// Effects returns a copy of the active effects ledger.
func (mm *MarketManager) Effects() []*types.ActiveEffect {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	effects := make([]*types.ActiveEffect, len(mm.state.Effects))
	for i, effect := range mm.state.Effects {
		copied := *effect
		effects[i] = &copied
	}
	return effects
}

// EffectMultiplier returns the product of all income_mult effect values
// for a target, 1.0 when none apply. This is what the outer game's
// multiplier pipeline consumes each tick.
func (mm *MarketManager) EffectMultiplier(target string) float64 {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	multiplier := 1.0
	for _, effect := range mm.state.Effects {
		if effect.Type == types.EffectIncomeMult && effect.Target == target {
			multiplier *= effect.Value
		}
	}
	return multiplier
}
