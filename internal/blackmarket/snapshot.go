package blackmarket

import (
	"fmt"

	"github.com/user/shadow-market/internal/types"
	"go.uber.org/zap"
)

// SnapshotVersion is the schema version written into every snapshot.
// Version 1 predates contact daily limits and the effects ledger; the
// storage layer migrates it forward before restore sees it.
const SnapshotVersion = 2

// Snapshot returns a deep copy of the whole market state, safe to hand
// to the persistence layer while the simulation keeps running.
func (mm *MarketManager) Snapshot() *types.MarketState {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	return copyMarketState(mm.state)
}

// RestoreSnapshot replaces the current state with a sanitized deep copy
// of the snapshot. Out-of-range scalars are clamped and malformed
// collection entries are dropped, so a hand-edited or stale save file
// degrades instead of corrupting the session.
func (mm *MarketManager) RestoreSnapshot(snapshot *types.MarketState) error {
	if snapshot == nil {
		return ErrNilSnapshot
	}
	if snapshot.Version > SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, snapshot.Version)
	}

	mm.stateLock.Lock()
	defer mm.stateLock.Unlock()

	restored := copyMarketState(snapshot)
	restored.Version = SnapshotVersion
	mm.sanitizeState(restored)
	mm.state = restored

	mm.Logger.Info("snapshot restored",
		zap.Int64("tick", restored.Tick),
		zap.Float64("heat", restored.Heat),
		zap.Int("pool", len(restored.Pool)),
		zap.Int("contacts", len(restored.Contacts)),
		zap.Int("investigations", len(restored.Investigations)),
		zap.Int("effects", len(restored.Effects)))
	return nil
}

// sanitizeState repairs a restored state in place. Callers hold the
// write lock.
func (mm *MarketManager) sanitizeState(state *types.MarketState) {
	if state.Tick < 0 {
		state.Tick = 0
	}
	if state.Heat < 0 {
		state.Heat = 0
	}
	if state.Heat > mm.config.Game.MaxHeat {
		state.Heat = mm.config.Game.MaxHeat
	}
	sanitizeStats(&state.Stats)

	mm.sanitizePool(state)
	mm.sanitizeCooldowns(state)
	mm.sanitizeContacts(state)
	mm.sanitizeInvestigations(state)
	mm.sanitizeEffects(state)

	if limit := mm.config.Game.MaxLogEntries; limit > 0 && len(state.Log) > limit {
		state.Log = state.Log[len(state.Log)-limit:]
	}
}

// sanitizeStats floors every lifetime counter at zero.
func sanitizeStats(stats *types.LifetimeStats) {
	intFields := []*int{
		&stats.CompletedDeals, &stats.FailedDeals, &stats.ExpiredDeals,
		&stats.XPEarned, &stats.Respect, &stats.Betrayals, &stats.Scams,
		&stats.InvestigationsOpened, &stats.TimesCaught,
	}
	for _, field := range intFields {
		if *field < 0 {
			*field = 0
		}
	}
	if stats.TotalEarned < 0 {
		stats.TotalEarned = 0
	}
	if stats.TotalLost < 0 {
		stats.TotalLost = 0
	}
}

// sanitizePool keeps only offers that are still coherent: available
// status, a sane offer window, a definition still in the catalog, and
// at most one live instance per definition.
func (mm *MarketManager) sanitizePool(state *types.MarketState) {
	seen := make(map[types.DealID]bool, len(state.Pool))
	kept := state.Pool[:0]
	for _, instance := range state.Pool {
		switch {
		case instance == nil:
			continue
		case instance.ID == "":
			mm.Logger.Warn("dropping pool instance without id",
				zap.String("deal_id", string(instance.DealID)))
			continue
		case instance.Status != types.StatusAvailable:
			mm.Logger.Warn("dropping non-available pool instance",
				zap.String("instance_id", instance.ID),
				zap.String("status", string(instance.Status)))
			continue
		case instance.AvailableAtTick < 0 || instance.ExpiresAtTick <= instance.AvailableAtTick:
			mm.Logger.Warn("dropping pool instance with invalid offer window",
				zap.String("instance_id", instance.ID),
				zap.Int64("available_at", instance.AvailableAtTick),
				zap.Int64("expires_at", instance.ExpiresAtTick))
			continue
		case seen[instance.DealID]:
			mm.Logger.Warn("dropping duplicate pool instance",
				zap.String("instance_id", instance.ID),
				zap.String("deal_id", string(instance.DealID)))
			continue
		}
		if _, err := mm.catalog.Deal(instance.DealID); err != nil {
			mm.Logger.Warn("dropping pool instance for unknown deal",
				zap.String("instance_id", instance.ID),
				zap.String("deal_id", string(instance.DealID)))
			continue
		}

		seen[instance.DealID] = true
		kept = append(kept, instance)
	}
	state.Pool = kept
}

// sanitizeCooldowns drops cooldown entries for definitions no longer in
// the catalog.
func (mm *MarketManager) sanitizeCooldowns(state *types.MarketState) {
	if state.DealCooldowns == nil {
		state.DealCooldowns = make(map[types.DealID]int64)
		return
	}
	for id := range state.DealCooldowns {
		if _, err := mm.catalog.Deal(id); err != nil {
			mm.Logger.Warn("dropping cooldown for unknown deal",
				zap.String("deal_id", string(id)))
			delete(state.DealCooldowns, id)
		}
	}
}

// sanitizeContacts drops state for unknown contacts, clamps loyalty to
// the contact's range and removes cooldown or daily entries for unknown
// abilities.
func (mm *MarketManager) sanitizeContacts(state *types.MarketState) {
	if state.Contacts == nil {
		state.Contacts = make(map[types.ContactID]*types.ContactState)
		return
	}

	for id, contact := range state.Contacts {
		def, err := mm.catalog.Contact(id)
		if err != nil || contact == nil {
			mm.Logger.Warn("dropping state for unknown contact",
				zap.String("contact_id", string(id)))
			delete(state.Contacts, id)
			continue
		}

		contact.ContactID = id
		if contact.Loyalty < 0 {
			contact.Loyalty = 0
		}
		if contact.Loyalty > def.MaxLoyalty {
			contact.Loyalty = def.MaxLoyalty
		}
		if contact.Interactions < 0 {
			contact.Interactions = 0
		}
		if contact.DayIndex < 0 {
			contact.DayIndex = 0
		}

		known := make(map[types.AbilityID]bool, len(def.Abilities))
		for _, ability := range def.Abilities {
			known[ability.ID] = true
		}
		if contact.AbilityCooldowns == nil {
			contact.AbilityCooldowns = make(map[types.AbilityID]int64)
		}
		for abilityID := range contact.AbilityCooldowns {
			if !known[abilityID] {
				delete(contact.AbilityCooldowns, abilityID)
			}
		}
		if contact.DailyUses == nil {
			contact.DailyUses = make(map[types.AbilityID]int)
		}
		for abilityID := range contact.DailyUses {
			if !known[abilityID] {
				delete(contact.DailyUses, abilityID)
			}
		}
	}
}

// sanitizeInvestigations drops resolved or timed-out entries, clamps
// severity and derived fields, and truncates to the active cap.
func (mm *MarketManager) sanitizeInvestigations(state *types.MarketState) {
	kept := state.Investigations[:0]
	for _, investigation := range state.Investigations {
		if investigation == nil || investigation.Resolved || investigation.TicksRemaining <= 0 {
			mm.Logger.Warn("dropping stale investigation from snapshot")
			continue
		}

		if investigation.Severity < 1 {
			investigation.Severity = 1
		}
		if investigation.Severity > 5 {
			investigation.Severity = 5
		}
		if investigation.Fine < 0 {
			investigation.Fine = 0
		}
		if investigation.CatchChance < 0 || investigation.CatchChance > 1 {
			investigation.CatchChance = severityCatchChance(investigation.Severity)
		}
		if investigation.TotalDuration < investigation.TicksRemaining {
			investigation.TotalDuration = severityDuration(investigation.Severity)
		}

		kept = append(kept, investigation)
	}
	if limit := mm.config.Game.MaxActiveInvestigations; limit > 0 && len(kept) > limit {
		mm.Logger.Warn("truncating investigations to active cap",
			zap.Int("restored", len(kept)),
			zap.Int("cap", limit))
		kept = kept[:limit]
	}
	state.Investigations = kept
}

// sanitizeEffects drops expired or malformed entries and truncates to
// the ledger cap.
func (mm *MarketManager) sanitizeEffects(state *types.MarketState) {
	kept := state.Effects[:0]
	for _, effect := range state.Effects {
		if effect == nil || effect.TicksRemaining <= 0 || !effect.Type.Valid() || effect.Value <= 0 {
			mm.Logger.Warn("dropping malformed effect from snapshot")
			continue
		}
		kept = append(kept, effect)
	}
	if limit := mm.config.Game.MaxActiveEffects; limit > 0 && len(kept) > limit {
		mm.Logger.Warn("truncating effects to ledger cap",
			zap.Int("restored", len(kept)),
			zap.Int("cap", limit))
		kept = kept[:limit]
	}
	state.Effects = kept
}

// copyMarketState clones a state with no shared references.
func copyMarketState(state *types.MarketState) *types.MarketState {
	out := &types.MarketState{
		Version: state.Version,
		Tick:    state.Tick,
		Heat:    state.Heat,
		Stats:   state.Stats,
	}

	out.Pool = make([]*types.DealInstance, 0, len(state.Pool))
	for _, instance := range state.Pool {
		if instance == nil {
			continue
		}
		copied := *instance
		out.Pool = append(out.Pool, &copied)
	}

	out.DealCooldowns = make(map[types.DealID]int64, len(state.DealCooldowns))
	for id, until := range state.DealCooldowns {
		out.DealCooldowns[id] = until
	}

	out.Contacts = make(map[types.ContactID]*types.ContactState, len(state.Contacts))
	for id, contact := range state.Contacts {
		if contact == nil {
			continue
		}
		copied := *contact
		copied.AbilityCooldowns = make(map[types.AbilityID]int64, len(contact.AbilityCooldowns))
		for abilityID, until := range contact.AbilityCooldowns {
			copied.AbilityCooldowns[abilityID] = until
		}
		copied.DailyUses = make(map[types.AbilityID]int, len(contact.DailyUses))
		for abilityID, uses := range contact.DailyUses {
			copied.DailyUses[abilityID] = uses
		}
		out.Contacts[id] = &copied
	}

	out.Investigations = make([]*types.Investigation, 0, len(state.Investigations))
	for _, investigation := range state.Investigations {
		if investigation == nil {
			continue
		}
		copied := *investigation
		out.Investigations = append(out.Investigations, &copied)
	}

	out.Effects = make([]*types.ActiveEffect, 0, len(state.Effects))
	for _, effect := range state.Effects {
		if effect == nil {
			continue
		}
		copied := *effect
		out.Effects = append(out.Effects, &copied)
	}

	out.Log = make([]types.ActivityLogEntry, len(state.Log))
	for i, entry := range state.Log {
		if entry.Params != nil {
			params := make(map[string]string, len(entry.Params))
			for key, value := range entry.Params {
				params[key] = value
			}
			entry.Params = params
		}
		out.Log[i] = entry
	}

	return out
}
