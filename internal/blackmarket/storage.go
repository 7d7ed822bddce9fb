package blackmarket

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/shadow-market/internal/interfaces"
	"github.com/user/shadow-market/internal/types"
)

// MarketStorage persists market snapshots as indented JSON on disk.
type MarketStorage struct {
	savePath  string
	stateLock sync.RWMutex
}

var _ interfaces.SnapshotStore = (*MarketStorage)(nil)

// NewMarketStorage creates a snapshot store rooted at savePath.
func NewMarketStorage(savePath string) *MarketStorage {
	// Create data directory if it doesn't exist
	dir := filepath.Dir(savePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		// If we can't create the directory, fall back to the default path
		savePath = "./data/market_state.json"
	}

	return &MarketStorage{
		savePath: savePath,
	}
}

// Save writes a snapshot to disk.
func (ms *MarketStorage) Save(state *types.MarketState) error {
	if state == nil {
		return ErrNilSnapshot
	}

	ms.stateLock.Lock()
	defer ms.stateLock.Unlock()

	// Create directory if it doesn't exist
	dir := filepath.Dir(ms.savePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Marshal state to JSON
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal market state: %w", err)
	}

	// Write to file
	if err := os.WriteFile(ms.savePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write market state: %w", err)
	}

	return nil
}

// Load reads the latest snapshot from disk, migrating older schema
// versions forward. A missing file returns (nil, nil): the caller
// starts a fresh session.
func (ms *MarketStorage) Load() (*types.MarketState, error) {
	ms.stateLock.Lock()
	defer ms.stateLock.Unlock()

	// Check if file exists
	if _, err := os.Stat(ms.savePath); os.IsNotExist(err) {
		return nil, nil
	}

	// Read file
	data, err := os.ReadFile(ms.savePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read market state file: %w", err)
	}

	// Probe the schema version before committing to a shape
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse market state: %w", err)
	}

	switch {
	case probe.Version > SnapshotVersion:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, probe.Version)
	case probe.Version <= 1:
		var old marketStateV1
		if err := json.Unmarshal(data, &old); err != nil {
			return nil, fmt.Errorf("failed to parse v1 market state: %w", err)
		}
		return migrateV1(&old), nil
	}

	var state types.MarketState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse market state: %w", err)
	}

	// Ensure all maps are initialized
	if state.DealCooldowns == nil {
		state.DealCooldowns = make(map[types.DealID]int64)
	}
	if state.Contacts == nil {
		state.Contacts = make(map[types.ContactID]*types.ContactState)
	}

	return &state, nil
}

// marketStateV1 is the first snapshot schema: integer heat, no effects
// ledger and no per-ability daily counters.
type marketStateV1 struct {
	Version        int                                 `json:"version"`
	Tick           int64                               `json:"tick"`
	Heat           int                                 `json:"heat"`
	Stats          types.LifetimeStats                 `json:"stats"`
	Pool           []*types.DealInstance               `json:"pool"`
	DealCooldowns  map[types.DealID]int64              `json:"deal_cooldowns"`
	Contacts       map[types.ContactID]*contactStateV1 `json:"contacts"`
	Investigations []*types.Investigation              `json:"investigations"`
	Log            []types.ActivityLogEntry            `json:"log"`
}

// contactStateV1 is the first contact schema, before daily use limits.
type contactStateV1 struct {
	ContactID        types.ContactID           `json:"contact_id"`
	Loyalty          int                       `json:"loyalty"`
	Interactions     int                       `json:"interactions"`
	AbilityCooldowns map[types.AbilityID]int64 `json:"ability_cooldowns"`
}

// migrateV1 lifts a v1 snapshot to the current schema. Fields that did
// not exist yet (effects, daily counters) start empty; everything else
// carries over unchanged.
func migrateV1(old *marketStateV1) *types.MarketState {
	state := &types.MarketState{
		Version:        SnapshotVersion,
		Tick:           old.Tick,
		Heat:           float64(old.Heat),
		Stats:          old.Stats,
		Pool:           old.Pool,
		DealCooldowns:  old.DealCooldowns,
		Contacts:       make(map[types.ContactID]*types.ContactState, len(old.Contacts)),
		Investigations: old.Investigations,
		Log:            old.Log,
	}

	if state.DealCooldowns == nil {
		state.DealCooldowns = make(map[types.DealID]int64)
	}
	for id, contact := range old.Contacts {
		if contact == nil {
			continue
		}
		cooldowns := contact.AbilityCooldowns
		if cooldowns == nil {
			cooldowns = make(map[types.AbilityID]int64)
		}
		state.Contacts[id] = &types.ContactState{
			ContactID:        id,
			Loyalty:          contact.Loyalty,
			Interactions:     contact.Interactions,
			AbilityCooldowns: cooldowns,
			DailyUses:        make(map[types.AbilityID]int),
		}
	}

	return state
}
