package blackmarket

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/user/shadow-market/internal/types"
	"go.uber.org/zap"
)

// severityDuration returns how many ticks an investigation of a given
// severity stays open.
func severityDuration(severity int) int64 {
	return int64(severity) * 10
}

// severityBaseFine returns the unscaled fine for a severity: 100
// tripling per step (100, 300, 900, 2700, 8100).
func severityBaseFine(severity int) float64 {
	return 100 * math.Pow(3, float64(severity-1))
}

// severityCatchChance returns the probability of being caught when an
// investigation of a given severity resolves.
func severityCatchChance(severity int) float64 {
	return 0.10 + 0.08*float64(severity)
}

// spawnInvestigation opens a new investigation. Spawns beyond the
// active cap are dropped silently; that saturation is the documented
// policy, not an error. The fine is scaled against wealth at spawn
// time. Callers hold the write lock.
func (mm *MarketManager) spawnInvestigation(severity int, wealth float64, tick int64) *types.Investigation {
	if severity < 1 {
		severity = 1
	}
	if severity > 5 {
		severity = 5
	}

	if len(mm.state.Investigations) >= mm.config.Game.MaxActiveInvestigations {
		mm.Logger.Debug("investigation cap reached, dropping spawn",
			zap.Int("severity", severity),
			zap.Int("active", len(mm.state.Investigations)))
		return nil
	}

	investigation := &types.Investigation{
		ID:             uuid.New().String(),
		Severity:       severity,
		TicksRemaining: severityDuration(severity),
		TotalDuration:  severityDuration(severity),
		Fine:           Scale(severityBaseFine(severity), wealth, types.ScaleFine),
		CatchChance:    severityCatchChance(severity),
		StartedAtTick:  tick,
	}
	mm.state.Investigations = append(mm.state.Investigations, investigation)
	mm.state.Stats.InvestigationsOpened++

	mm.appendLog(tick, types.SeverityWarning, "investigation.opened", map[string]string{
		"severity": fmt.Sprintf("%d", severity),
		"duration": fmt.Sprintf("%d", investigation.TotalDuration),
	}, types.SourceInvestigation)
	mm.Logger.Info("investigation opened",
		zap.String("investigation_id", investigation.ID),
		zap.Int("severity", severity),
		zap.Float64("fine", investigation.Fine),
		zap.Float64("catch_chance", investigation.CatchChance))

	return investigation
}

// tickInvestigations ages every active investigation one tick and
// resolves the ones whose timer reached zero: a single draw against the
// catch chance decides between a fine plus heat/respect penalty and a
// clean closure. Resolved investigations leave the active set
// immediately. Returns the total cash delta (fines, clamped so the host
// wallet cannot go negative) and the resolved investigations. Callers
// hold the write lock.
func (mm *MarketManager) tickInvestigations(tick int64, wealth float64) (float64, []*types.Investigation) {
	if len(mm.state.Investigations) == 0 {
		return 0, nil
	}

	var cashDelta float64
	var closed []*types.Investigation
	remainingWealth := wealth

	active := mm.state.Investigations[:0]
	for _, investigation := range mm.state.Investigations {
		investigation.TicksRemaining--
		if investigation.TicksRemaining > 0 {
			active = append(active, investigation)
			continue
		}

		// Resolve exactly once.
		investigation.TicksRemaining = 0
		investigation.Resolved = true
		investigation.Caught = mm.roller.Float64() < investigation.CatchChance

		if investigation.Caught {
			fine := investigation.Fine
			if fine > remainingWealth {
				fine = remainingWealth
			}
			remainingWealth -= fine
			cashDelta -= fine
			mm.state.Stats.TotalLost += fine
			mm.state.Stats.TimesCaught++

			mm.raiseHeat(mm.config.Game.HeatWhenCaught, tick)
			mm.state.Stats.Respect -= 2 * investigation.Severity
			if mm.state.Stats.Respect < 0 {
				mm.state.Stats.Respect = 0
			}

			mm.appendLog(tick, types.SeverityCritical, "investigation.caught", map[string]string{
				"severity": fmt.Sprintf("%d", investigation.Severity),
				"fine":     fmt.Sprintf("%.0f", fine),
			}, types.SourceInvestigation)
			mm.Logger.Info("investigation resolved: caught",
				zap.String("investigation_id", investigation.ID),
				zap.Int("severity", investigation.Severity),
				zap.Float64("fine", fine))
		} else {
			mm.appendLog(tick, types.SeverityInfo, "investigation.cleared", map[string]string{
				"severity": fmt.Sprintf("%d", investigation.Severity),
			}, types.SourceInvestigation)
			mm.Logger.Info("investigation resolved: cleared",
				zap.String("investigation_id", investigation.ID),
				zap.Int("severity", investigation.Severity))
		}

		closed = append(closed, investigation)
	}
	mm.state.Investigations = active

	return cashDelta, closed
}

// dismissInvestigations removes up to count active investigations,
// oldest-started first, without resolving them. Used by the
// case_dismissed contact effect. Callers hold the write lock.
func (mm *MarketManager) dismissInvestigations(count int, tick int64) int {
	if count <= 0 || len(mm.state.Investigations) == 0 {
		return 0
	}
	if count > len(mm.state.Investigations) {
		count = len(mm.state.Investigations)
	}

	// Active investigations are appended in spawn order, so the oldest
	// sit at the front.
	for _, investigation := range mm.state.Investigations[:count] {
		mm.appendLog(tick, types.SeverityInfo, "investigation.dismissed", map[string]string{
			"severity": fmt.Sprintf("%d", investigation.Severity),
		}, types.SourceInvestigation)
		mm.Logger.Info("investigation dismissed",
			zap.String("investigation_id", investigation.ID),
			zap.Int("severity", investigation.Severity))
	}
	mm.state.Investigations = append(mm.state.Investigations[:0], mm.state.Investigations[count:]...)

	return count
}

// Investigations returns a copy of the active investigations.
func (mm *MarketManager) Investigations() []*types.Investigation {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	investigations := make([]*types.Investigation, len(mm.state.Investigations))
	for i, investigation := range mm.state.Investigations {
		copied := *investigation
		investigations[i] = &copied
	}
	return investigations
}
