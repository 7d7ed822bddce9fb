package blackmarket

import (
	"fmt"

	"github.com/user/shadow-market/internal/types"
	"go.uber.org/zap"
)

// Trust model constants. Betrayal grows linearly with heat above its
// threshold and with missing loyalty below the trust threshold; scams
// depend on loyalty alone. Both bands are capped independently.
const (
	baseBetrayalChance      = 0.04
	betrayalHeatThreshold   = 40.0
	betrayalPerHeatPoint    = 0.002
	loyaltyTrustThreshold   = 40
	betrayalPerLoyaltyPoint = 0.0025
	maxBetrayalChance       = 0.35

	baseScamChance      = 0.06
	scamPerLoyaltyPoint = 0.005
	maxScamChance       = 0.40
)

// betrayalChance returns the probability that a contact turns on the
// player for one invocation.
func betrayalChance(heat float64, loyalty int) float64 {
	chance := baseBetrayalChance
	if heat > betrayalHeatThreshold {
		chance += (heat - betrayalHeatThreshold) * betrayalPerHeatPoint
	}
	if loyalty < loyaltyTrustThreshold {
		chance += float64(loyaltyTrustThreshold-loyalty) * betrayalPerLoyaltyPoint
	}
	if chance > maxBetrayalChance {
		chance = maxBetrayalChance
	}
	return chance
}

// scamChance returns the probability that a contact takes the money and
// delivers nothing.
func scamChance(loyalty int) float64 {
	chance := baseScamChance
	if loyalty < loyaltyTrustThreshold {
		chance += float64(loyaltyTrustThreshold-loyalty) * scamPerLoyaltyPoint
	}
	if chance > maxScamChance {
		chance = maxScamChance
	}
	return chance
}

// betrayalSeverity maps a contact to the severity of the investigation
// their betrayal opens: better-connected contacts burn harder.
func betrayalSeverity(contact *types.ContactDefinition) int {
	severity := contact.MinTier + 1
	if severity < 1 {
		severity = 1
	}
	if severity > 5 {
		severity = 5
	}
	return severity
}

// findAbility returns a contact's ability by id.
func findAbility(contact *types.ContactDefinition, abilityID types.AbilityID) (*types.AbilityDefinition, error) {
	for i := range contact.Abilities {
		if contact.Abilities[i].ID == abilityID {
			return &contact.Abilities[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAbility, abilityID)
}

// ensureContactState returns the runtime state for a contact, creating
// it at first use and rolling the daily counters at day boundaries.
// Callers hold the write lock and must have validated the invocation
// already.
func (mm *MarketManager) ensureContactState(contact *types.ContactDefinition, tick int64) *types.ContactState {
	day := tick / mm.config.Game.TicksPerDay

	state, exists := mm.state.Contacts[contact.ID]
	if !exists {
		loyalty := mm.config.Game.StartingLoyalty
		if loyalty > contact.MaxLoyalty {
			loyalty = contact.MaxLoyalty
		}
		state = &types.ContactState{
			ContactID:        contact.ID,
			Loyalty:          loyalty,
			AbilityCooldowns: make(map[types.AbilityID]int64),
			DailyUses:        make(map[types.AbilityID]int),
			DayIndex:         day,
		}
		mm.state.Contacts[contact.ID] = state
		return state
	}

	if state.DayIndex != day {
		state.DayIndex = day
		state.DailyUses = make(map[types.AbilityID]int)
	}
	return state
}

// InvokeContactAbility pays a contact to use one of their abilities.
// Preconditions are checked in order: contact known, contact unlocked,
// ability known, loyalty sufficient, not on cooldown, daily budget
// left, funds sufficient. Any rejection is a typed error with no state
// mutated. On pass, a single uniform draw is partitioned into betrayal,
// scam and success bands.
func (mm *MarketManager) InvokeContactAbility(contactID, abilityID string, tick int64, wealth float64) (*types.InvokeResult, error) {
	mm.stateLock.Lock()
	defer mm.stateLock.Unlock()

	// Get contact
	contact, err := mm.catalog.Contact(types.ContactID(contactID))
	if err != nil {
		return nil, err
	}

	// Check unlock tier
	tier := TierFor(mm.state.Stats.CompletedDeals)
	if contact.MinTier > tier {
		return nil, fmt.Errorf("%w: %s requires tier %d, have %d", ErrContactLocked, contact.ID, contact.MinTier, tier)
	}

	// Get ability
	ability, err := findAbility(contact, types.AbilityID(abilityID))
	if err != nil {
		return nil, err
	}

	// Validate against the existing state without creating it: a
	// rejected invocation must leave nothing behind.
	loyalty := mm.config.Game.StartingLoyalty
	if loyalty > contact.MaxLoyalty {
		loyalty = contact.MaxLoyalty
	}
	usesToday := 0
	day := tick / mm.config.Game.TicksPerDay
	existing, exists := mm.state.Contacts[contact.ID]
	if exists {
		loyalty = existing.Loyalty
	}

	if loyalty < ability.MinLoyalty {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrLoyaltyTooLow, ability.MinLoyalty, loyalty)
	}
	if exists {
		if until, onCooldown := existing.AbilityCooldowns[ability.ID]; onCooldown && until > tick {
			return nil, fmt.Errorf("%w: usable at tick %d", ErrAbilityOnCooldown, until)
		}
		if existing.DayIndex == day {
			usesToday = existing.DailyUses[ability.ID]
		}
	}
	if usesToday >= ability.DailyLimit {
		return nil, fmt.Errorf("%w: %d of %d used", ErrDailyLimitReached, usesToday, ability.DailyLimit)
	}

	cost := Scale(ability.Cost, wealth, types.ScaleContactCost)
	if wealth < cost {
		return nil, fmt.Errorf("%w: need %.0f, have %.0f", ErrInsufficientFunds, cost, wealth)
	}

	// All validations passed: pay and roll.
	state := mm.ensureContactState(contact, tick)
	state.Interactions++

	result := &types.InvokeResult{
		ContactID: contact.ID,
		AbilityID: ability.ID,
		CashDelta: -cost,
	}

	betrayal := betrayalChance(mm.state.Heat, state.Loyalty)
	scam := scamChance(state.Loyalty)

	draw := mm.roller.Float64()
	switch {
	case draw < betrayal:
		mm.resolveBetrayal(contact, ability, state, result, tick, wealth)
	case draw < betrayal+scam:
		mm.resolveScam(contact, ability, state, result, tick)
	default:
		mm.resolveContactSuccess(contact, ability, state, result, tick, wealth)
	}

	result.Loyalty = state.Loyalty
	return result, nil
}

// resolveBetrayal applies a betrayal outcome: money gone, heat spike,
// an investigation opened. Callers hold the write lock.
func (mm *MarketManager) resolveBetrayal(contact *types.ContactDefinition, ability *types.AbilityDefinition, state *types.ContactState, result *types.InvokeResult, tick int64, wealth float64) {
	result.Outcome = types.OutcomeBetrayal
	mm.state.Stats.Betrayals++
	mm.state.Stats.TotalLost += -result.CashDelta

	result.HeatAdded = mm.raiseHeat(mm.config.Game.HeatPerBetrayal, tick)
	if mm.spawnInvestigation(betrayalSeverity(contact), wealth, tick) != nil {
		result.InvestigationOpened = true
	}

	mm.appendLog(tick, types.SeverityCritical, "contact.betrayal", map[string]string{
		"contact": string(contact.ID),
		"name":    contact.Name,
		"ability": string(ability.ID),
	}, types.SourceContact)
	mm.Logger.Info("contact betrayal",
		zap.String("contact_id", string(contact.ID)),
		zap.String("ability_id", string(ability.ID)),
		zap.Float64("heat_added", result.HeatAdded),
		zap.Int("loyalty", state.Loyalty))
}

// resolveScam applies a scam outcome: the cost is lost, nothing else
// changes. Callers hold the write lock.
func (mm *MarketManager) resolveScam(contact *types.ContactDefinition, ability *types.AbilityDefinition, state *types.ContactState, result *types.InvokeResult, tick int64) {
	result.Outcome = types.OutcomeScam
	mm.state.Stats.Scams++
	mm.state.Stats.TotalLost += -result.CashDelta

	mm.appendLog(tick, types.SeverityWarning, "contact.scam", map[string]string{
		"contact": string(contact.ID),
		"name":    contact.Name,
		"ability": string(ability.ID),
	}, types.SourceContact)
	mm.Logger.Info("contact scam",
		zap.String("contact_id", string(contact.ID)),
		zap.String("ability_id", string(ability.ID)),
		zap.Int("loyalty", state.Loyalty))
}

// resolveContactSuccess applies a successful invocation: the ability
// effect, a loyalty gain capped at the contact's maximum, the cooldown
// and the daily counter. Callers hold the write lock.
func (mm *MarketManager) resolveContactSuccess(contact *types.ContactDefinition, ability *types.AbilityDefinition, state *types.ContactState, result *types.InvokeResult, tick int64, wealth float64) {
	result.Outcome = types.OutcomeSuccess

	switch ability.Effect.Type {
	case types.EffectCashGrant:
		reward := Scale(ability.Effect.Value, wealth, types.ScaleContactReward)
		result.CashDelta += reward
		mm.state.Stats.TotalEarned += reward
	case types.EffectHeatDrop:
		mm.coolHeat(ability.Effect.Value)
	case types.EffectCaseDismissed:
		result.CasesDismissed = mm.dismissInvestigations(int(ability.Effect.Value), tick)
	case types.EffectIncomeMult, types.EffectRiskShield:
		result.Effect = mm.addEffect(ability.Effect, types.SourceContact, string(contact.ID))
	}

	state.Loyalty += mm.config.Game.LoyaltyGainPerSuccess
	if state.Loyalty > contact.MaxLoyalty {
		state.Loyalty = contact.MaxLoyalty
	}
	state.AbilityCooldowns[ability.ID] = tick + ability.CooldownTicks
	state.DailyUses[ability.ID]++

	mm.appendLog(tick, types.SeverityInfo, "contact.success", map[string]string{
		"contact": string(contact.ID),
		"name":    contact.Name,
		"ability": string(ability.ID),
	}, types.SourceContact)
	mm.Logger.Info("contact ability succeeded",
		zap.String("contact_id", string(contact.ID)),
		zap.String("ability_id", string(ability.ID)),
		zap.Int("loyalty", state.Loyalty),
		zap.Int("uses_today", state.DailyUses[ability.ID]))
}

// Contacts returns the read model for every contact in catalog order:
// the definition joined with the player's standing. Cooldown and daily
// figures are reported against the last processed tick.
func (mm *MarketManager) Contacts() []*types.ContactView {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	tier := TierFor(mm.state.Stats.CompletedDeals)
	day := mm.state.Tick / mm.config.Game.TicksPerDay

	views := make([]*types.ContactView, 0, len(mm.catalog.Contacts()))
	for _, contact := range mm.catalog.Contacts() {
		view := &types.ContactView{
			ID:          contact.ID,
			Name:        contact.Name,
			Description: contact.Description,
			MinTier:     contact.MinTier,
			MaxLoyalty:  contact.MaxLoyalty,
			Unlocked:    contact.MinTier <= tier,
		}

		view.Loyalty = mm.config.Game.StartingLoyalty
		if view.Loyalty > contact.MaxLoyalty {
			view.Loyalty = contact.MaxLoyalty
		}
		state, exists := mm.state.Contacts[contact.ID]
		if exists {
			view.Loyalty = state.Loyalty
			view.Interactions = state.Interactions
		}

		for _, ability := range contact.Abilities {
			abilityView := types.AbilityView{
				ID:            ability.ID,
				Name:          ability.Name,
				Description:   ability.Description,
				Cost:          ability.Cost,
				MinLoyalty:    ability.MinLoyalty,
				CooldownTicks: ability.CooldownTicks,
				DailyLimit:    ability.DailyLimit,
				Effect:        ability.Effect,
			}
			if exists {
				abilityView.UsableAtTick = state.AbilityCooldowns[ability.ID]
				if state.DayIndex == day {
					abilityView.UsesToday = state.DailyUses[ability.ID]
				}
			}
			view.Abilities = append(view.Abilities, abilityView)
		}

		views = append(views, view)
	}
	return views
}
