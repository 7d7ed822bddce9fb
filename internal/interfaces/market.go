package interfaces

import "github.com/user/shadow-market/internal/types"

// Market defines the interface for market operations
type Market interface {
	Tick(input types.TickInput) *types.TickResult
	AcceptDeal(instanceID string, tick int64, wealth float64) (*types.AcceptResult, error)
	InvokeContactAbility(contactID, abilityID string, tick int64, wealth float64) (*types.InvokeResult, error)
	Deals() []*types.DealInstance
	Contacts() []*types.ContactView
	Investigations() []*types.Investigation
	Effects() []*types.ActiveEffect
	EffectMultiplier(target string) float64
	HeatStatus() *types.HeatStatus
	Reputation() *types.ReputationStatus
	Stats() types.LifetimeStats
	Log(limit int) []types.ActivityLogEntry
	CurrentTick() int64
	Snapshot() *types.MarketState
	RestoreSnapshot(snapshot *types.MarketState) error
}

// SnapshotStore defines the interface for snapshot persistence
type SnapshotStore interface {
	Save(state *types.MarketState) error
	Load() (*types.MarketState, error)
}
