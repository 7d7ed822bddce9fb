package blackmarket

import (
	"sync"
	"time"

	"github.com/user/shadow-market/config"
	"github.com/user/shadow-market/internal/interfaces"
	"github.com/user/shadow-market/internal/types"
	"go.uber.org/zap"
)

// Runner drives the market clock. It owns the authoritative tick
// counter and the demo wallet: every interval it credits passive income
// through the effect multiplier pipeline, advances the manager one tick,
// applies the resulting cash delta and periodically snapshots to the
// store. Player actions proxy through the Runner so the wallet and the
// market never disagree about tick or funds.
type Runner struct {
	manager *MarketManager
	store   interfaces.SnapshotStore
	config  config.Config
	Logger  *zap.Logger

	walletLock sync.RWMutex
	tick       int64
	wealth     float64

	ticker         *time.Ticker
	stopChan       chan struct{}
	saveEveryTicks int64
}

// NewRunner creates a runner over a manager and a snapshot store. The
// tick counter resumes from the manager's last processed tick so a
// restored session continues instead of replaying.
func NewRunner(manager *MarketManager, store interfaces.SnapshotStore, cfg config.Config) *Runner {
	interval := time.Duration(cfg.Game.TickIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	var saveEveryTicks int64
	if cfg.Storage.SaveIntervalSec > 0 && cfg.Game.TickIntervalMS > 0 {
		saveEveryTicks = int64(cfg.Storage.SaveIntervalSec) * 1000 / cfg.Game.TickIntervalMS
	}

	return &Runner{
		manager:        manager,
		store:          store,
		config:         cfg,
		Logger:         zap.NewNop(),
		tick:           manager.CurrentTick(),
		wealth:         cfg.Game.StartingWealth,
		ticker:         time.NewTicker(interval),
		stopChan:       make(chan struct{}),
		saveEveryTicks: saveEveryTicks,
	}
}

// SetLogger sets the logger for the runner.
func (r *Runner) SetLogger(logger *zap.Logger) {
	r.Logger = logger
}

// Start begins the tick loop.
func (r *Runner) Start() {
	go func() {
		for {
			select {
			case <-r.ticker.C:
				r.step()
			case <-r.stopChan:
				r.ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the tick loop and writes a final snapshot.
func (r *Runner) Stop() {
	close(r.stopChan)
	if err := r.SaveNow(); err != nil {
		r.Logger.Error("final snapshot save failed", zap.Error(err))
	}
}

// step advances one tick: income first, then the market update, then
// the resulting fines.
func (r *Runner) step() {
	r.walletLock.Lock()

	r.tick++
	tick := r.tick

	// Passive income through the multiplier pipeline
	income := r.config.Game.BaseIncomePerTick
	income *= r.manager.EffectMultiplier(types.TargetAllIncome)
	income *= 1 - PenaltyValue(r.manager.HeatStatus().Heat, types.PenaltyIncome)
	r.wealth += income

	result := r.manager.Tick(types.TickInput{Tick: tick, Wealth: r.wealth})
	r.applyCashDelta(result.CashDelta)

	r.walletLock.Unlock()

	if len(result.ClosedInvestigations) > 0 {
		r.Logger.Debug("investigations closed this tick",
			zap.Int64("tick", tick),
			zap.Int("count", len(result.ClosedInvestigations)),
			zap.Float64("cash_delta", result.CashDelta))
	}

	if r.saveEveryTicks > 0 && tick%r.saveEveryTicks == 0 {
		if err := r.SaveNow(); err != nil {
			r.Logger.Error("periodic snapshot save failed", zap.Error(err))
		}
	}
}

// applyCashDelta moves the wallet, flooring at zero. Callers hold the
// wallet lock.
func (r *Runner) applyCashDelta(delta float64) {
	r.wealth += delta
	if r.wealth < 0 {
		r.wealth = 0
	}
}

// AcceptDeal accepts an offered deal at the current tick and wallet,
// then applies the result to the wallet.
func (r *Runner) AcceptDeal(instanceID string) (*types.AcceptResult, error) {
	r.walletLock.Lock()
	defer r.walletLock.Unlock()

	result, err := r.manager.AcceptDeal(instanceID, r.tick, r.wealth)
	if err != nil {
		return nil, err
	}
	r.applyCashDelta(result.CashDelta)
	return result, nil
}

// InvokeAbility invokes a contact ability at the current tick and
// wallet, then applies the result to the wallet.
func (r *Runner) InvokeAbility(contactID, abilityID string) (*types.InvokeResult, error) {
	r.walletLock.Lock()
	defer r.walletLock.Unlock()

	result, err := r.manager.InvokeContactAbility(contactID, abilityID, r.tick, r.wealth)
	if err != nil {
		return nil, err
	}
	r.applyCashDelta(result.CashDelta)
	return result, nil
}

// SaveNow snapshots the market to the store immediately.
func (r *Runner) SaveNow() error {
	if r.store == nil {
		return nil
	}
	return r.store.Save(r.manager.Snapshot())
}

// CurrentTick returns the runner's tick counter.
func (r *Runner) CurrentTick() int64 {
	r.walletLock.RLock()
	defer r.walletLock.RUnlock()

	return r.tick
}

// Wealth returns the current wallet balance.
func (r *Runner) Wealth() float64 {
	r.walletLock.RLock()
	defer r.walletLock.RUnlock()

	return r.wealth
}
