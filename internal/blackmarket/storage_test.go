package blackmarket

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/shadow-market/config"
	"github.com/user/shadow-market/internal/types"
)

func TestStorageSaveLoadRoundTrip(t *testing.T) {
	// Setup
	storage := NewMarketStorage(filepath.Join(t.TempDir(), "market_state.json"))
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	manager.Tick(types.TickInput{Tick: 5, Wealth: 500})
	manager.state.Heat = 33.5

	// Test case 1: the snapshot survives the disk round trip
	assert.NoError(t, storage.Save(manager.Snapshot()))
	loaded, err := storage.Load()
	assert.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Equal(t, SnapshotVersion, loaded.Version)
	assert.Equal(t, int64(5), loaded.Tick)
	assert.Equal(t, 33.5, loaded.Heat)
	assert.Len(t, loaded.Pool, 3)

	// Test case 2: the loaded snapshot restores cleanly
	restored := NewMarketManager(cfg)
	assert.NoError(t, restored.RestoreSnapshot(loaded))
	assert.Equal(t, int64(5), restored.CurrentTick())
	assert.Len(t, restored.Deals(), 3)
}

func TestStorageMissingFile(t *testing.T) {
	// Setup
	storage := NewMarketStorage(filepath.Join(t.TempDir(), "missing.json"))

	// Test case 1: no file means a fresh session, not an error
	state, err := storage.Load()
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestStorageRejectsNilSnapshot(t *testing.T) {
	// Setup
	storage := NewMarketStorage(filepath.Join(t.TempDir(), "market_state.json"))

	// Test case 1: saving nothing is a caller bug, reported as such
	assert.ErrorIs(t, storage.Save(nil), ErrNilSnapshot)
}

func TestStorageMigratesV1(t *testing.T) {
	// Setup: a v1 document written by an older build, with integer heat
	// and no daily counters
	path := filepath.Join(t.TempDir(), "market_state.json")
	v1 := `{
		"version": 1,
		"tick": 120,
		"heat": 37,
		"stats": {"completed_deals": 4, "total_earned": 900},
		"deal_cooldowns": {"fence_stolen_goods": 400},
		"contacts": {
			"fixer": {
				"contact_id": "fixer",
				"loyalty": 22,
				"interactions": 6,
				"ability_cooldowns": {"lay_low": 400}
			}
		}
	}`
	assert.NoError(t, os.WriteFile(path, []byte(v1), 0644))
	storage := NewMarketStorage(path)

	// Test case 1: the document is lifted to the current schema
	state, err := storage.Load()
	assert.NoError(t, err)
	assert.NotNil(t, state)
	assert.Equal(t, SnapshotVersion, state.Version)
	assert.Equal(t, int64(120), state.Tick)
	assert.Equal(t, 37.0, state.Heat)
	assert.Equal(t, 4, state.Stats.CompletedDeals)
	assert.Equal(t, 900.0, state.Stats.TotalEarned)
	assert.Equal(t, int64(400), state.DealCooldowns["fence_stolen_goods"])

	// Test case 2: carried contact state keeps its standing
	fixer := state.Contacts["fixer"]
	assert.NotNil(t, fixer)
	assert.Equal(t, 22, fixer.Loyalty)
	assert.Equal(t, 6, fixer.Interactions)
	assert.Equal(t, int64(400), fixer.AbilityCooldowns["lay_low"])

	// Test case 3: fields that postdate v1 start empty, not nil
	assert.NotNil(t, fixer.DailyUses)
	assert.Empty(t, fixer.DailyUses)
	assert.Empty(t, state.Effects)

	// Test case 4: the migrated state restores into a manager
	manager := NewMarketManager(config.DefaultConfig())
	assert.NoError(t, manager.RestoreSnapshot(state))
	assert.Equal(t, int64(120), manager.CurrentTick())
	assert.Equal(t, 22, manager.state.Contacts["fixer"].Loyalty)
}

func TestStorageRejectsNewerVersion(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "market_state.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"version": 3}`), 0644))
	storage := NewMarketStorage(path)

	// Test case 1: a snapshot from a newer build is refused intact
	_, err := storage.Load()
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestStorageRejectsCorruptFile(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "market_state.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	storage := NewMarketStorage(path)

	// Test case 1: unparseable files surface an error instead of a
	// silent fresh session
	_, err := storage.Load()
	assert.Error(t, err)
}
