package blackmarket

import "github.com/user/shadow-market/internal/types"

// appendLog records a notable event, evicting the oldest entry once the
// configured capacity is reached. Insertion order is preserved for
// display. Callers hold the write lock.
func (mm *MarketManager) appendLog(tick int64, severity types.LogSeverity, messageKey string, params map[string]string, source types.LogSource) {
	entry := types.ActivityLogEntry{
		Tick:       tick,
		Severity:   severity,
		MessageKey: messageKey,
		Params:     params,
		Source:     source,
	}

	mm.state.Log = append(mm.state.Log, entry)
	if limit := mm.config.Game.MaxLogEntries; limit > 0 && len(mm.state.Log) > limit {
		mm.state.Log = mm.state.Log[len(mm.state.Log)-limit:]
	}
}

// Log returns the newest entries up to limit, oldest first. A limit of
// zero or less returns everything retained.
func (mm *MarketManager) Log(limit int) []types.ActivityLogEntry {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()

	entries := mm.state.Log
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	out := make([]types.ActivityLogEntry, len(entries))
	copy(out, entries)
	return out
}
