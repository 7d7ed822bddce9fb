package types

// DealID identifies a deal definition in the catalog.
type DealID string

// ContactID identifies a contact definition in the catalog.
type ContactID string

// AbilityID identifies an ability offered by a contact.
type AbilityID string

// DealCategory identifies the branch of the market a deal belongs to.
type DealCategory string

// Deal categories, unlocked in reputation tier order.
const (
	CategoryStreet     DealCategory = "street"
	CategorySmuggling  DealCategory = "smuggling"
	CategoryFraud      DealCategory = "fraud"
	CategoryCyber      DealCategory = "cyber"
	CategoryLaundering DealCategory = "laundering"
	CategoryHeist      DealCategory = "heist"
)

// Valid reports whether the category is part of the known set.
func (c DealCategory) Valid() bool {
	switch c {
	case CategoryStreet, CategorySmuggling, CategoryFraud, CategoryCyber, CategoryLaundering, CategoryHeist:
		return true
	}
	return false
}

// DealStatus is the lifecycle state of an offered deal instance.
type DealStatus string

// Deal instance statuses. Transitions are monotone: an instance never
// returns to available; the definition re-enters the pool as a new
// instance after its cooldown.
const (
	StatusAvailable DealStatus = "available"
	StatusAccepted  DealStatus = "accepted"
	StatusCompleted DealStatus = "completed"
	StatusFailed    DealStatus = "failed"
	StatusExpired   DealStatus = "expired"
)

// Valid reports whether the status is part of the known set.
func (s DealStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusAccepted, StatusCompleted, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// EffectType identifies what an effect does when applied.
type EffectType string

// Effect types. Instant types (cash_grant, heat_drop, case_dismissed
// with zero duration) apply immediately; the rest live in the active
// effects ledger until their countdown expires.
const (
	EffectCashGrant     EffectType = "cash_grant"
	EffectHeatDrop      EffectType = "heat_drop"
	EffectIncomeMult    EffectType = "income_mult"
	EffectRiskShield    EffectType = "risk_shield"
	EffectCaseDismissed EffectType = "case_dismissed"
)

// Valid reports whether the effect type is part of the known set.
func (e EffectType) Valid() bool {
	switch e {
	case EffectCashGrant, EffectHeatDrop, EffectIncomeMult, EffectRiskShield, EffectCaseDismissed:
		return true
	}
	return false
}

// ConsequenceType identifies what a failed deal can inflict.
type ConsequenceType string

// Fail consequence types, each rolled independently against its own
// probability when a deal fails.
const (
	ConsequenceCashLoss      ConsequenceType = "cash_loss"
	ConsequenceHeatSpike     ConsequenceType = "heat_spike"
	ConsequenceInvestigation ConsequenceType = "investigation"
	ConsequenceIncomePenalty ConsequenceType = "income_penalty"
)

// Valid reports whether the consequence type is part of the known set.
func (c ConsequenceType) Valid() bool {
	switch c {
	case ConsequenceCashLoss, ConsequenceHeatSpike, ConsequenceInvestigation, ConsequenceIncomePenalty:
		return true
	}
	return false
}

// ValueCategory selects which scaling cap applies to a monetary value.
type ValueCategory string

// Scaling categories. Downside categories (cash_loss, fine) carry
// deliberately lower caps than reward categories.
const (
	ScaleDealCost      ValueCategory = "deal_cost"
	ScaleDealReward    ValueCategory = "deal_reward"
	ScaleCashGrant     ValueCategory = "cash_grant"
	ScaleCashLoss      ValueCategory = "cash_loss"
	ScaleFine          ValueCategory = "fine"
	ScaleContactCost   ValueCategory = "contact_cost"
	ScaleContactReward ValueCategory = "contact_reward"
)

// PenaltyType identifies a passive penalty attached to a heat level.
type PenaltyType string

// Heat penalty types. The heat tracker only reports these; pool
// pricing consumes deal_cost/deal_risk, failed-deal investigation
// rolls consume investigation_chance, and the outer income pipeline
// consumes income.
const (
	PenaltyIncome              PenaltyType = "income"
	PenaltyDealCost            PenaltyType = "deal_cost"
	PenaltyDealRisk            PenaltyType = "deal_risk"
	PenaltyInvestigationChance PenaltyType = "investigation_chance"
)

// OutcomeKind is the result band of a contact ability invocation.
type OutcomeKind string

// Contact invocation outcomes.
const (
	OutcomeSuccess  OutcomeKind = "success"
	OutcomeScam     OutcomeKind = "scam"
	OutcomeBetrayal OutcomeKind = "betrayal"
)

// LogSeverity classifies an activity log entry for display.
type LogSeverity string

// Log severities.
const (
	SeverityInfo     LogSeverity = "info"
	SeverityWarning  LogSeverity = "warning"
	SeverityCritical LogSeverity = "critical"
)

// LogSource identifies which subsystem emitted a log entry.
type LogSource string

// Log sources.
const (
	SourceDeal          LogSource = "deal"
	SourceContact       LogSource = "contact"
	SourceInvestigation LogSource = "investigation"
	SourceHeat          LogSource = "heat"
	SourceSystem        LogSource = "system"
)

// Effect targets understood by the outer game's multiplier pipeline.
const (
	TargetAllIncome     = "allIncome"
	TargetGamblingLuck  = "gamblingLuck"
	TargetCryptoReturn  = "cryptoReturn"
	TargetStockReturn   = "stockReturn"
	TargetCostReduction = "costReduction"
	TargetXPGain        = "xpGain"
)

// EffectSpec describes an effect as authored in the catalog. A zero
// duration means the effect applies instantly and never enters the
// ledger.
type EffectSpec struct {
	Type          EffectType `json:"type"`
	Value         float64    `json:"value"`
	DurationTicks int64      `json:"duration_ticks"`
	Target        string     `json:"target,omitempty"`
}

// ConsequenceSpec describes one possible consequence of a failed deal.
type ConsequenceSpec struct {
	Type          ConsequenceType `json:"type"`
	Probability   float64         `json:"probability"`
	Value         float64         `json:"value"`
	DurationTicks int64           `json:"duration_ticks,omitempty"`
	Severity      int             `json:"severity,omitempty"`
}

// DealDefinition is an immutable catalog entry for a deal.
type DealDefinition struct {
	ID               DealID            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Category         DealCategory      `json:"category"`
	MinTier          int               `json:"min_tier"`
	BaseCost         float64           `json:"base_cost"`
	BaseRisk         float64           `json:"base_risk"`
	OfferTicks       int64             `json:"offer_ticks"`
	CooldownTicks    int64             `json:"cooldown_ticks"`
	Weight           float64           `json:"weight"`
	XPReward         int               `json:"xp_reward"`
	RespectReward    int               `json:"respect_reward"`
	SuccessEffects   []EffectSpec      `json:"success_effects"`
	FailConsequences []ConsequenceSpec `json:"fail_consequences"`
}

// DealInstance is a runtime offer materialized from a definition. Cost
// and risk are already adjusted for wealth, heat and tier at creation.
type DealInstance struct {
	ID              string       `json:"id"`
	DealID          DealID       `json:"deal_id"`
	Name            string       `json:"name"`
	Category        DealCategory `json:"category"`
	Cost            float64      `json:"cost"`
	Risk            float64      `json:"risk"`
	AvailableAtTick int64        `json:"available_at_tick"`
	ExpiresAtTick   int64        `json:"expires_at_tick"`
	Status          DealStatus   `json:"status"`
}

// AbilityDefinition is an immutable catalog entry for a contact ability.
type AbilityDefinition struct {
	ID            AbilityID  `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Cost          float64    `json:"cost"`
	MinLoyalty    int        `json:"min_loyalty"`
	CooldownTicks int64      `json:"cooldown_ticks"`
	DailyLimit    int        `json:"daily_limit"`
	Effect        EffectSpec `json:"effect"`
}

// ContactDefinition is an immutable catalog entry for a contact.
type ContactDefinition struct {
	ID          ContactID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	MinTier     int                 `json:"min_tier"`
	MaxLoyalty  int                 `json:"max_loyalty"`
	Abilities   []AbilityDefinition `json:"abilities"`
}

// ContactState is the per-contact runtime state. Created at first
// unlock and kept for the whole session; only the daily counters reset
// at day boundaries.
type ContactState struct {
	ContactID        ContactID           `json:"contact_id"`
	Loyalty          int                 `json:"loyalty"`
	Interactions     int                 `json:"interactions"`
	AbilityCooldowns map[AbilityID]int64 `json:"ability_cooldowns"`
	DailyUses        map[AbilityID]int   `json:"daily_uses"`
	DayIndex         int64               `json:"day_index"`
}

// Investigation is a delayed-resolution law-enforcement event.
type Investigation struct {
	ID             string  `json:"id"`
	Severity       int     `json:"severity"`
	TicksRemaining int64   `json:"ticks_remaining"`
	TotalDuration  int64   `json:"total_duration"`
	Fine           float64 `json:"fine"`
	CatchChance    float64 `json:"catch_chance"`
	StartedAtTick  int64   `json:"started_at_tick"`
	Resolved       bool    `json:"resolved"`
	Caught         bool    `json:"caught"`
}

// ActiveEffect is a temporary modifier consumed by the outer game's
// multiplier pipeline (and by deal risk pricing for risk_shield).
type ActiveEffect struct {
	ID             string     `json:"id"`
	SourceID       string     `json:"source_id"`
	Source         LogSource  `json:"source"`
	Type           EffectType `json:"type"`
	Value          float64    `json:"value"`
	TicksRemaining int64      `json:"ticks_remaining"`
	TotalDuration  int64      `json:"total_duration"`
	Target         string     `json:"target,omitempty"`
}

// ActivityLogEntry is an immutable record of a notable event. Message
// keys are resolved to display strings outside this core.
type ActivityLogEntry struct {
	Tick       int64             `json:"tick"`
	Severity   LogSeverity       `json:"severity"`
	MessageKey string            `json:"message_key"`
	Params     map[string]string `json:"params,omitempty"`
	Source     LogSource         `json:"source"`
}

// LifetimeStats are cumulative counters for the whole session. The
// reputation tier is always derived from CompletedDeals, never stored.
type LifetimeStats struct {
	CompletedDeals       int     `json:"completed_deals"`
	FailedDeals          int     `json:"failed_deals"`
	ExpiredDeals         int     `json:"expired_deals"`
	XPEarned             int     `json:"xp_earned"`
	Respect              int     `json:"respect"`
	TotalEarned          float64 `json:"total_earned"`
	TotalLost            float64 `json:"total_lost"`
	Betrayals            int     `json:"betrayals"`
	Scams                int     `json:"scams"`
	InvestigationsOpened int     `json:"investigations_opened"`
	TimesCaught          int     `json:"times_caught"`
}

// MarketState is the entire simulation state: the explicitly owned
// object every operation works on, and the versioned sub-document the
// outer save system persists.
type MarketState struct {
	Version        int                         `json:"version"`
	Tick           int64                       `json:"tick"`
	Heat           float64                     `json:"heat"`
	Stats          LifetimeStats               `json:"stats"`
	Pool           []*DealInstance             `json:"pool"`
	DealCooldowns  map[DealID]int64            `json:"deal_cooldowns"`
	Contacts       map[ContactID]*ContactState `json:"contacts"`
	Investigations []*Investigation            `json:"investigations"`
	Effects        []*ActiveEffect             `json:"effects"`
	Log            []ActivityLogEntry          `json:"log"`
}

// TickInput is what the game-loop driver supplies once per tick.
type TickInput struct {
	Tick   int64   `json:"tick"`
	Wealth float64 `json:"wealth"`
}

// TickResult reports what the per-tick update did. CashDelta carries
// fines from resolved investigations and is applied to the host wallet.
type TickResult struct {
	Tick                 int64            `json:"tick"`
	CashDelta            float64          `json:"cash_delta"`
	ExpiredDeals         []string         `json:"expired_deals,omitempty"`
	OfferedDeals         []string         `json:"offered_deals,omitempty"`
	ClosedInvestigations []*Investigation `json:"closed_investigations,omitempty"`
	ExpiredEffects       []string         `json:"expired_effects,omitempty"`
}

// AcceptResult reports the resolution of an accepted deal.
type AcceptResult struct {
	InstanceID          string          `json:"instance_id"`
	DealID              DealID          `json:"deal_id"`
	Name                string          `json:"name"`
	Status              DealStatus      `json:"status"`
	CashDelta           float64         `json:"cash_delta"`
	XPGained            int             `json:"xp_gained"`
	RespectGained       int             `json:"respect_gained"`
	HeatAdded           float64         `json:"heat_added"`
	Effects             []*ActiveEffect `json:"effects,omitempty"`
	InvestigationOpened bool            `json:"investigation_opened"`
	CasesDismissed      int             `json:"cases_dismissed,omitempty"`
}

// InvokeResult reports the resolution of a contact ability invocation.
type InvokeResult struct {
	ContactID           ContactID     `json:"contact_id"`
	AbilityID           AbilityID     `json:"ability_id"`
	Outcome             OutcomeKind   `json:"outcome"`
	CashDelta           float64       `json:"cash_delta"`
	Loyalty             int           `json:"loyalty"`
	HeatAdded           float64       `json:"heat_added"`
	Effect              *ActiveEffect `json:"effect,omitempty"`
	InvestigationOpened bool          `json:"investigation_opened"`
	CasesDismissed      int           `json:"cases_dismissed"`
}

// HeatStatus is the read model for the current heat meter.
type HeatStatus struct {
	Heat      float64                 `json:"heat"`
	MaxHeat   float64                 `json:"max_heat"`
	Level     int                     `json:"level"`
	Name      string                  `json:"name"`
	Penalties map[PenaltyType]float64 `json:"penalties"`
}

// ReputationStatus is the read model for the current reputation tier.
type ReputationStatus struct {
	Tier               int            `json:"tier"`
	Name               string         `json:"name"`
	CompletedDeals     int            `json:"completed_deals"`
	Progress           float64        `json:"progress"`
	RiskReduction      float64        `json:"risk_reduction"`
	PriceDiscount      float64        `json:"price_discount"`
	UnlockedCategories []DealCategory `json:"unlocked_categories"`
}

// AbilityView is the read model for one ability of a contact.
type AbilityView struct {
	ID            AbilityID  `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Cost          float64    `json:"cost"`
	MinLoyalty    int        `json:"min_loyalty"`
	CooldownTicks int64      `json:"cooldown_ticks"`
	DailyLimit    int        `json:"daily_limit"`
	Effect        EffectSpec `json:"effect"`
	UsableAtTick  int64      `json:"usable_at_tick"`
	UsesToday     int        `json:"uses_today"`
}

// ContactView is the read model for a contact: definition plus the
// player's runtime standing with them.
type ContactView struct {
	ID           ContactID     `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	MinTier      int           `json:"min_tier"`
	MaxLoyalty   int           `json:"max_loyalty"`
	Unlocked     bool          `json:"unlocked"`
	Loyalty      int           `json:"loyalty"`
	Interactions int           `json:"interactions"`
	Abilities    []AbilityView `json:"abilities"`
}
