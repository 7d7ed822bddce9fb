package blackmarket

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/user/shadow-market/config"
	"github.com/user/shadow-market/internal/types"
)

func TestRunnerStep(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	runner := NewRunner(manager, nil, cfg)

	// Test case 1: a step credits income and advances the market
	runner.step()
	assert.Equal(t, int64(1), runner.CurrentTick())
	assert.Equal(t, int64(1), manager.CurrentTick())
	assert.Equal(t, 505.0, runner.Wealth())
	assert.Len(t, manager.Deals(), 3)

	// Test case 2: income multipliers compound into the wallet
	manager.addEffect(types.EffectSpec{
		Type:          types.EffectIncomeMult,
		Value:         2,
		DurationTicks: 10,
		Target:        types.TargetAllIncome,
	}, types.SourceContact, "mule")
	runner.step()
	assert.Equal(t, 515.0, runner.Wealth())

	// Test case 3: scorching heat docks income by ten percent
	manager.state.Heat = 85
	runner.step()
	assert.Equal(t, 524.0, runner.Wealth())
}

func TestRunnerWalletFloorsAtZero(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	runner := NewRunner(manager, nil, cfg)

	// Test case 1: a delta past the balance empties the wallet
	runner.walletLock.Lock()
	runner.wealth = 10
	runner.applyCashDelta(-50)
	assert.Equal(t, 0.0, runner.wealth)
	runner.walletLock.Unlock()
}

func TestRunnerActionsApplyToWallet(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	runner := NewRunner(manager, nil, cfg)
	runner.step()
	wealthBefore := runner.Wealth()

	instance := findByDeal(manager.Deals(), "fence_stolen_goods")
	assert.NotNil(t, instance)

	// Test case 1: a completed deal lands net in the wallet
	result, err := runner.AcceptDeal(instance.ID)
	assert.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, result.Status)
	assert.Equal(t, wealthBefore+result.CashDelta, runner.Wealth())

	// Test case 2: a rejected action leaves the wallet alone
	_, err = runner.AcceptDeal("missing")
	assert.ErrorIs(t, err, ErrUnknownDeal)
	assert.Equal(t, wealthBefore+result.CashDelta, runner.Wealth())

	// Test case 3: contact invocations pay out of the same wallet
	walletBefore := runner.Wealth()
	invoke, err := runner.InvokeAbility("fixer", "lay_low")
	assert.NoError(t, err)
	assert.Equal(t, types.OutcomeSuccess, invoke.Outcome)
	assert.Equal(t, walletBefore+invoke.CashDelta, runner.Wealth())
}

func TestRunnerSaveAndResume(t *testing.T) {
	// Setup
	cfg := config.DefaultConfig()
	storage := NewMarketStorage(filepath.Join(t.TempDir(), "market_state.json"))
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	runner := NewRunner(manager, storage, cfg)
	runner.step()
	runner.step()

	// Test case 1: SaveNow writes the current snapshot
	assert.NoError(t, runner.SaveNow())
	loaded, err := storage.Load()
	assert.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Equal(t, int64(2), loaded.Tick)

	// Test case 2: a new runner over a restored manager resumes the
	// clock instead of replaying it
	restoredManager := NewMarketManager(cfg)
	restoredManager.SetRoller(&stubRoller{})
	assert.NoError(t, restoredManager.RestoreSnapshot(loaded))
	resumed := NewRunner(restoredManager, storage, cfg)
	assert.Equal(t, int64(2), resumed.CurrentTick())

	resumed.step()
	assert.Equal(t, int64(3), restoredManager.CurrentTick())

	// Test case 3: a runner without a store saves as a no-op
	bare := NewRunner(NewMarketManager(cfg), nil, cfg)
	assert.NoError(t, bare.SaveNow())
}

func TestRunnerStartStop(t *testing.T) {
	// Setup: a fast clock so the loop ticks within the test window
	cfg := config.DefaultConfig()
	cfg.Game.TickIntervalMS = 5
	manager := NewMarketManager(cfg)
	manager.SetRoller(&stubRoller{})
	runner := NewRunner(manager, nil, cfg)

	// Test case 1: the loop advances the clock until stopped
	runner.Start()
	time.Sleep(100 * time.Millisecond)
	runner.Stop()
	assert.Greater(t, runner.CurrentTick(), int64(0))

	// Test case 2: after Stop the clock no longer advances. A step
	// already selected by the ticker may still finish, so let it settle
	// before sampling.
	time.Sleep(20 * time.Millisecond)
	ticked := runner.CurrentTick()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, ticked, runner.CurrentTick())
}
