package blackmarket

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/user/shadow-market/internal/types"
	"go.uber.org/zap"
)

// materializeDeal turns a catalog definition into a runtime offer. Cost
// and risk are fixed at materialization: wealth scaling and the current
// heat penalties are priced in, then the tier discount and risk
// reduction are applied. Callers hold the write lock.
func (mm *MarketManager) materializeDeal(def *types.DealDefinition, tick int64, wealth float64) *types.DealInstance {
	tier := tierSpecFor(TierFor(mm.state.Stats.CompletedDeals))

	cost := Scale(def.BaseCost, wealth, types.ScaleDealCost)
	cost *= 1 + PenaltyValue(mm.state.Heat, types.PenaltyDealCost)
	cost *= 1 - tier.PriceDiscount
	cost = math.Round(cost)

	risk := def.BaseRisk + PenaltyValue(mm.state.Heat, types.PenaltyDealRisk) - tier.RiskReduction
	if risk < 1 {
		risk = 1
	}
	if risk > 95 {
		risk = 95
	}

	return &types.DealInstance{
		ID:              uuid.New().String(),
		DealID:          def.ID,
		Name:            def.Name,
		Category:        def.Category,
		Cost:            cost,
		Risk:            risk,
		AvailableAtTick: tick,
		ExpiresAtTick:   tick + def.OfferTicks,
		Status:          types.StatusAvailable,
	}
}

// rotatePool expires outdated offers and refills the pool up to its
// minimum size by weighted sampling from the eligible definitions.
// Expired definitions start their reappearance cooldown; a definition
// never has two live instances at once. Callers hold the write lock.
func (mm *MarketManager) rotatePool(tick int64, wealth float64) (expired, offered []string) {
	// Expiry pass first so an offer cannot expire and still be sampled
	// or accepted within the same tick.
	active := mm.state.Pool[:0]
	for _, instance := range mm.state.Pool {
		if instance.ExpiresAtTick >= tick {
			active = append(active, instance)
			continue
		}

		instance.Status = types.StatusExpired
		mm.state.DealCooldowns[instance.DealID] = tick + mm.cooldownFor(instance.DealID)
		mm.state.Stats.ExpiredDeals++
		expired = append(expired, instance.ID)

		mm.appendLog(tick, types.SeverityInfo, "deal.expired", map[string]string{
			"deal": string(instance.DealID),
			"name": instance.Name,
		}, types.SourceDeal)
		mm.Logger.Debug("deal offer expired",
			zap.String("instance_id", instance.ID),
			zap.String("deal_id", string(instance.DealID)))
	}
	mm.state.Pool = active

	// Refill pass.
	tier := TierFor(mm.state.Stats.CompletedDeals)
	for len(mm.state.Pool) < mm.config.Game.MinDealsAvailable && len(mm.state.Pool) < mm.config.Game.MaxDealsAvailable {
		candidates := mm.eligibleDefinitions(tier, tick)
		if len(candidates) == 0 {
			break
		}

		weights := make([]float64, len(candidates))
		for i, def := range candidates {
			weights[i] = def.Weight
		}
		picked := mm.roller.WeightedPick(weights)
		if picked < 0 {
			break
		}

		instance := mm.materializeDeal(candidates[picked], tick, wealth)
		mm.state.Pool = append(mm.state.Pool, instance)
		offered = append(offered, instance.ID)

		mm.Logger.Debug("deal offered",
			zap.String("instance_id", instance.ID),
			zap.String("deal_id", string(instance.DealID)),
			zap.Float64("cost", instance.Cost),
			zap.Float64("risk", instance.Risk))
	}

	return expired, offered
}

// eligibleDefinitions returns catalog definitions that can be offered
// right now: tier unlocked, reappearance cooldown elapsed, and no live
// instance already in the pool. Catalog order keeps sampling
// deterministic under a seeded roller. Callers hold the lock.
func (mm *MarketManager) eligibleDefinitions(tier int, tick int64) []*types.DealDefinition {
	offered := make(map[types.DealID]bool, len(mm.state.Pool))
	for _, instance := range mm.state.Pool {
		offered[instance.DealID] = true
	}

	var eligible []*types.DealDefinition
	for _, def := range mm.catalog.Deals() {
		if def.MinTier > tier {
			continue
		}
		if offered[def.ID] {
			continue
		}
		if until, onCooldown := mm.state.DealCooldowns[def.ID]; onCooldown && until > tick {
			continue
		}
		eligible = append(eligible, def)
	}
	return eligible
}

// cooldownFor returns the reappearance cooldown for a definition,
// falling back to zero for ids no longer in the catalog (possible after
// rehydrating an older snapshot).
func (mm *MarketManager) cooldownFor(id types.DealID) int64 {
	def, err := mm.catalog.Deal(id)
	if err != nil {
		return 0
	}
	return def.CooldownTicks
}

// findInstance locates a pool instance by id. Callers hold the lock.
func (mm *MarketManager) findInstance(instanceID string) *types.DealInstance {
	for _, instance := range mm.state.Pool {
		if instance.ID == instanceID {
			return instance
		}
	}
	return nil
}

// removeInstance drops an instance from the pool. Callers hold the
// write lock.
func (mm *MarketManager) removeInstance(instanceID string) {
	for i, instance := range mm.state.Pool {
		if instance.ID == instanceID {
			mm.state.Pool = append(mm.state.Pool[:i], mm.state.Pool[i+1:]...)
			return
		}
	}
}

// AcceptDeal buys and immediately resolves an offered deal. Validation
// order: instance exists, still available, tier unlocked, funds
// sufficient; a rejection is returned as a typed error with no state
// mutated. On success or failure the instance leaves the pool, the
// definition starts its cooldown, and exactly one activity entry is
// logged.
func (mm *MarketManager) AcceptDeal(instanceID string, tick int64, wealth float64) (*types.AcceptResult, error) {
	mm.stateLock.Lock()
	defer mm.stateLock.Unlock()

	// Get instance
	instance := mm.findInstance(instanceID)
	if instance == nil {
		return nil, fmt.Errorf("%w: instance %s", ErrUnknownDeal, instanceID)
	}

	// Check status: monotone lifecycle, nothing re-enters available
	if instance.Status != types.StatusAvailable {
		return nil, fmt.Errorf("%w: status is %s", ErrDealNotAvailable, instance.Status)
	}
	if instance.ExpiresAtTick < tick {
		return nil, fmt.Errorf("%w: offer expired", ErrDealNotAvailable)
	}

	// Check definition and tier gate
	def, err := mm.catalog.Deal(instance.DealID)
	if err != nil {
		return nil, err
	}
	tier := TierFor(mm.state.Stats.CompletedDeals)
	if def.MinTier > tier {
		return nil, fmt.Errorf("%w: requires tier %d, have %d", ErrTierTooLow, def.MinTier, tier)
	}

	// Check funds
	if wealth < instance.Cost {
		return nil, fmt.Errorf("%w: need %.0f, have %.0f", ErrInsufficientFunds, instance.Cost, wealth)
	}

	// All validations passed: deduct cost and resolve immediately.
	instance.Status = types.StatusAccepted

	result := &types.AcceptResult{
		InstanceID: instance.ID,
		DealID:     def.ID,
		Name:       def.Name,
		CashDelta:  -instance.Cost,
	}

	effectiveRisk := instance.Risk - mm.riskShieldTotal()
	if effectiveRisk < 1 {
		effectiveRisk = 1
	}
	if effectiveRisk > 95 {
		effectiveRisk = 95
	}

	if mm.roller.Float64()*100 < effectiveRisk {
		mm.resolveDealFailure(instance, def, result, tick, wealth)
	} else {
		mm.resolveDealSuccess(instance, def, result, tick, wealth)
	}

	mm.removeInstance(instance.ID)
	mm.state.DealCooldowns[def.ID] = tick + def.CooldownTicks

	return result, nil
}

// resolveDealSuccess applies a completed deal: success effects, rewards
// and the log entry. Callers hold the write lock.
func (mm *MarketManager) resolveDealSuccess(instance *types.DealInstance, def *types.DealDefinition, result *types.AcceptResult, tick int64, wealth float64) {
	instance.Status = types.StatusCompleted
	result.Status = types.StatusCompleted

	for _, spec := range def.SuccessEffects {
		switch spec.Type {
		case types.EffectCashGrant:
			payout := Scale(spec.Value, wealth, types.ScaleDealReward)
			result.CashDelta += payout
			mm.state.Stats.TotalEarned += payout
		case types.EffectHeatDrop:
			mm.coolHeat(spec.Value)
		case types.EffectCaseDismissed:
			result.CasesDismissed += mm.dismissInvestigations(int(spec.Value), tick)
		case types.EffectIncomeMult, types.EffectRiskShield:
			if effect := mm.addEffect(spec, types.SourceDeal, string(def.ID)); effect != nil {
				result.Effects = append(result.Effects, effect)
			}
		}
	}

	result.XPGained = def.XPReward
	result.RespectGained = def.RespectReward
	mm.state.Stats.XPEarned += def.XPReward
	mm.state.Stats.Respect += def.RespectReward
	mm.state.Stats.CompletedDeals++

	mm.appendLog(tick, types.SeverityInfo, "deal.completed", map[string]string{
		"deal":   string(def.ID),
		"name":   def.Name,
		"payout": fmt.Sprintf("%.0f", result.CashDelta+instance.Cost),
	}, types.SourceDeal)
	mm.Logger.Info("deal completed",
		zap.String("instance_id", instance.ID),
		zap.String("deal_id", string(def.ID)),
		zap.Float64("cash_delta", result.CashDelta),
		zap.Int("completed_deals", mm.state.Stats.CompletedDeals))
}

// resolveDealFailure applies a failed deal: base heat, then every fail
// consequence rolled independently against its own probability. The
// heat investigation-chance penalty raises investigation consequence
// rolls. Callers hold the write lock.
func (mm *MarketManager) resolveDealFailure(instance *types.DealInstance, def *types.DealDefinition, result *types.AcceptResult, tick int64, wealth float64) {
	instance.Status = types.StatusFailed
	result.Status = types.StatusFailed

	mm.state.Stats.FailedDeals++
	result.HeatAdded += mm.raiseHeat(mm.config.Game.HeatPerFailedDeal, tick)

	for _, consequence := range def.FailConsequences {
		probability := consequence.Probability
		if consequence.Type == types.ConsequenceInvestigation {
			probability += PenaltyValue(mm.state.Heat, types.PenaltyInvestigationChance)
		}
		if mm.roller.Float64() >= probability {
			continue
		}

		switch consequence.Type {
		case types.ConsequenceCashLoss:
			loss := Scale(consequence.Value, wealth, types.ScaleCashLoss)
			// The wallet never goes below zero: cap the loss at what is
			// left after the cost and earlier consequences.
			if available := wealth + result.CashDelta; loss > available {
				loss = available
			}
			if loss > 0 {
				result.CashDelta -= loss
				mm.state.Stats.TotalLost += loss
			}
		case types.ConsequenceHeatSpike:
			result.HeatAdded += mm.raiseHeat(consequence.Value, tick)
		case types.ConsequenceInvestigation:
			if mm.spawnInvestigation(consequence.Severity, wealth, tick) != nil {
				result.InvestigationOpened = true
			}
		case types.ConsequenceIncomePenalty:
			spec := types.EffectSpec{
				Type:          types.EffectIncomeMult,
				Value:         consequence.Value,
				DurationTicks: consequence.DurationTicks,
				Target:        types.TargetAllIncome,
			}
			if effect := mm.addEffect(spec, types.SourceDeal, string(def.ID)); effect != nil {
				result.Effects = append(result.Effects, effect)
			}
		}
	}

	mm.appendLog(tick, types.SeverityWarning, "deal.failed", map[string]string{
		"deal": string(def.ID),
		"name": def.Name,
		"lost": fmt.Sprintf("%.0f", -result.CashDelta),
	}, types.SourceDeal)
	mm.Logger.Info("deal failed",
		zap.String("instance_id", instance.ID),
		zap.String("deal_id", string(def.ID)),
		zap.Float64("cash_delta", result.CashDelta),
		zap.Float64("heat_added", result.HeatAdded),
		zap.Bool("investigation_opened", result.InvestigationOpened))
}

// Deals returns a copy of the currently offered pool.
func (mm *MarketManager) Deals() []*types.DealInstance {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	pool := make([]*types.DealInstance, len(mm.state.Pool))
	for i, instance := range mm.state.Pool {
		copied := *instance
		pool[i] = &copied
	}
	return pool
}
