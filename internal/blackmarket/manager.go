package blackmarket

import (
	"sync"

	"github.com/user/shadow-market/config"
	"github.com/user/shadow-market/internal/interfaces"
	"github.com/user/shadow-market/internal/types"
	"go.uber.org/zap"
)

// MarketManager owns the market state and implements every operation on
// it. All mutation happens under stateLock; randomness goes through the
// injected Roller so seeded runs are reproducible.
type MarketManager struct {
	state     *types.MarketState
	stateLock sync.RWMutex
	config    config.Config
	catalog   *Catalog
	roller    Roller
	Logger    *zap.Logger
}

var _ interfaces.Market = (*MarketManager)(nil)

// NewMarketManager creates a market manager with a fresh state. A
// non-zero seed in the config makes every run reproducible.
func NewMarketManager(cfg config.Config) *MarketManager {
	roller := NewDiceRoller()
	if cfg.Game.Seed != 0 {
		roller = NewSeededDiceRoller(cfg.Game.Seed)
	}

	return &MarketManager{
		state:   newMarketState(),
		config:  cfg,
		catalog: NewCatalog(),
		roller:  roller,
		Logger:  zap.NewNop(),
	}
}

// newMarketState builds an empty state at the current schema version.
func newMarketState() *types.MarketState {
	return &types.MarketState{
		Version:       SnapshotVersion,
		DealCooldowns: make(map[types.DealID]int64),
		Contacts:      make(map[types.ContactID]*types.ContactState),
	}
}

// SetLogger sets the logger for the market manager.
func (mm *MarketManager) SetLogger(logger *zap.Logger) {
	mm.Logger = logger
}

// SetRoller replaces the random source. Tests use this to script
// outcomes.
func (mm *MarketManager) SetRoller(roller Roller) {
	mm.roller = roller
}

// Tick advances the simulation one step: passive heat decay, effect and
// investigation countdowns, then pool rotation. A tick at or below the
// last processed one is a no-op, so a jittery driver cannot double-apply
// decay or countdowns.
func (mm *MarketManager) Tick(input types.TickInput) *types.TickResult {
	mm.stateLock.Lock()
	defer mm.stateLock.Unlock()

	if input.Tick <= mm.state.Tick {
		return &types.TickResult{Tick: mm.state.Tick}
	}
	mm.state.Tick = input.Tick

	result := &types.TickResult{Tick: input.Tick}

	// Passive cooling
	mm.coolHeat(mm.config.Game.HeatDecayPerTick)

	// Age the ledgers
	result.ExpiredEffects = mm.tickEffects()

	fines, closed := mm.tickInvestigations(input.Tick, input.Wealth)
	result.CashDelta += fines
	result.ClosedInvestigations = closed

	// Rotate the offer pool
	result.ExpiredDeals, result.OfferedDeals = mm.rotatePool(input.Tick, input.Wealth)

	return result
}

// CurrentTick returns the last processed tick.
func (mm *MarketManager) CurrentTick() int64 {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	return mm.state.Tick
}

// Reputation reports the current reputation tier, always derived from
// the lifetime completed-deal count.
func (mm *MarketManager) Reputation() *types.ReputationStatus {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	completed := mm.state.Stats.CompletedDeals
	tier := tierSpecFor(TierFor(completed))

	return &types.ReputationStatus{
		Tier:               tier.Tier,
		Name:               tier.Name,
		CompletedDeals:     completed,
		Progress:           ProgressToNext(completed),
		RiskReduction:      tier.RiskReduction,
		PriceDiscount:      tier.PriceDiscount,
		UnlockedCategories: UnlockedCategories(tier.Tier),
	}
}

// Stats returns a copy of the lifetime counters.
func (mm *MarketManager) Stats() types.LifetimeStats {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	return mm.state.Stats
}
