package blackmarket

import (
	"fmt"

	"github.com/user/shadow-market/internal/types"
)

// Catalog is the static table of deal and contact definitions. Authored
// once at startup, never mutated; lookups for unknown ids return typed
// errors instead of silent defaults.
type Catalog struct {
	deals        []*types.DealDefinition
	dealsByID    map[types.DealID]*types.DealDefinition
	contacts     []*types.ContactDefinition
	contactsByID map[types.ContactID]*types.ContactDefinition
}

// NewCatalog builds the default catalog with lookup indexes.
func NewCatalog() *Catalog {
	deals := defaultDeals()
	contacts := defaultContacts()

	c := &Catalog{
		deals:        deals,
		dealsByID:    make(map[types.DealID]*types.DealDefinition, len(deals)),
		contacts:     contacts,
		contactsByID: make(map[types.ContactID]*types.ContactDefinition, len(contacts)),
	}
	for _, deal := range deals {
		c.dealsByID[deal.ID] = deal
	}
	for _, contact := range contacts {
		c.contactsByID[contact.ID] = contact
	}
	return c
}

// Deal returns a deal definition by id.
func (c *Catalog) Deal(id types.DealID) (*types.DealDefinition, error) {
	deal, exists := c.dealsByID[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDeal, id)
	}
	return deal, nil
}

// Contact returns a contact definition by id.
func (c *Catalog) Contact(id types.ContactID) (*types.ContactDefinition, error) {
	contact, exists := c.contactsByID[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContact, id)
	}
	return contact, nil
}

// Deals returns all deal definitions in authored order.
func (c *Catalog) Deals() []*types.DealDefinition {
	return c.deals
}

// Contacts returns all contact definitions in authored order.
func (c *Catalog) Contacts() []*types.ContactDefinition {
	return c.contacts
}

// validate checks the authored tables for internal consistency: unique
// ids, known enum values, positive weights and sane tier gates. Kept as
// a method so the integrity test exercises exactly what ships.
func (c *Catalog) validate() error {
	seenDeals := make(map[types.DealID]bool, len(c.deals))
	for _, deal := range c.deals {
		if deal.ID == "" {
			return fmt.Errorf("deal with empty id")
		}
		if seenDeals[deal.ID] {
			return fmt.Errorf("duplicate deal id: %s", deal.ID)
		}
		seenDeals[deal.ID] = true

		if !deal.Category.Valid() {
			return fmt.Errorf("deal %s: unknown category %q", deal.ID, deal.Category)
		}
		if deal.MinTier < 0 || deal.MinTier >= len(reputationTiers) {
			return fmt.Errorf("deal %s: min tier %d out of range", deal.ID, deal.MinTier)
		}
		if deal.BaseCost <= 0 || deal.Weight <= 0 {
			return fmt.Errorf("deal %s: base cost and weight must be positive", deal.ID)
		}
		if deal.BaseRisk < 1 || deal.BaseRisk > 95 {
			return fmt.Errorf("deal %s: base risk %v out of range", deal.ID, deal.BaseRisk)
		}
		if deal.OfferTicks <= 0 || deal.CooldownTicks <= 0 {
			return fmt.Errorf("deal %s: offer and cooldown ticks must be positive", deal.ID)
		}
		for _, effect := range deal.SuccessEffects {
			if !effect.Type.Valid() {
				return fmt.Errorf("deal %s: unknown effect type %q", deal.ID, effect.Type)
			}
		}
		for _, consequence := range deal.FailConsequences {
			if !consequence.Type.Valid() {
				return fmt.Errorf("deal %s: unknown consequence type %q", deal.ID, consequence.Type)
			}
			if consequence.Probability <= 0 || consequence.Probability > 1 {
				return fmt.Errorf("deal %s: consequence probability %v out of range", deal.ID, consequence.Probability)
			}
			if consequence.Type == types.ConsequenceInvestigation && (consequence.Severity < 1 || consequence.Severity > 5) {
				return fmt.Errorf("deal %s: investigation severity %d out of range", deal.ID, consequence.Severity)
			}
		}
	}

	seenContacts := make(map[types.ContactID]bool, len(c.contacts))
	seenAbilities := make(map[types.AbilityID]bool)
	for _, contact := range c.contacts {
		if contact.ID == "" {
			return fmt.Errorf("contact with empty id")
		}
		if seenContacts[contact.ID] {
			return fmt.Errorf("duplicate contact id: %s", contact.ID)
		}
		seenContacts[contact.ID] = true

		if contact.MinTier < 0 || contact.MinTier >= len(reputationTiers) {
			return fmt.Errorf("contact %s: min tier %d out of range", contact.ID, contact.MinTier)
		}
		if contact.MaxLoyalty < 1 || contact.MaxLoyalty > 100 {
			return fmt.Errorf("contact %s: max loyalty %d out of range", contact.ID, contact.MaxLoyalty)
		}
		if len(contact.Abilities) == 0 {
			return fmt.Errorf("contact %s: no abilities", contact.ID)
		}
		for _, ability := range contact.Abilities {
			if ability.ID == "" {
				return fmt.Errorf("contact %s: ability with empty id", contact.ID)
			}
			if seenAbilities[ability.ID] {
				return fmt.Errorf("duplicate ability id: %s", ability.ID)
			}
			seenAbilities[ability.ID] = true

			if ability.Cost <= 0 {
				return fmt.Errorf("ability %s: cost must be positive", ability.ID)
			}
			if ability.MinLoyalty < 0 || ability.MinLoyalty > 100 {
				return fmt.Errorf("ability %s: min loyalty %d out of range", ability.ID, ability.MinLoyalty)
			}
			if ability.CooldownTicks <= 0 || ability.DailyLimit <= 0 {
				return fmt.Errorf("ability %s: cooldown and daily limit must be positive", ability.ID)
			}
			if !ability.Effect.Type.Valid() {
				return fmt.Errorf("ability %s: unknown effect type %q", ability.ID, ability.Effect.Type)
			}
		}
	}

	return nil
}

// defaultDeals is the authored deal table. Weights fall and cooldowns
// grow with tier so the pool skews common at the bottom and rare at the
// top; higher tiers carry investigation consequences of rising severity.
func defaultDeals() []*types.DealDefinition {
	return []*types.DealDefinition{
		{
			ID:            "fence_stolen_goods",
			Name:          "Fence Stolen Goods",
			Description:   "Move a crate of hot merchandise through a pawn shop backroom.",
			Category:      types.CategoryStreet,
			MinTier:       0,
			BaseCost:      60,
			BaseRisk:      12,
			OfferTicks:    600,
			CooldownTicks: 240,
			Weight:        10,
			XPReward:      5,
			RespectReward: 1,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 150},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.5, Value: 40},
				{Type: types.ConsequenceHeatSpike, Probability: 0.75, Value: 4},
			},
		},
		{
			ID:            "counterfeit_sneakers",
			Name:          "Counterfeit Sneakers",
			Description:   "A container of fakes good enough to fool the resale apps.",
			Category:      types.CategoryStreet,
			MinTier:       0,
			BaseCost:      90,
			BaseRisk:      15,
			OfferTicks:    600,
			CooldownTicks: 300,
			Weight:        8,
			XPReward:      6,
			RespectReward: 1,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 220},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.6, Value: 60},
				{Type: types.ConsequenceHeatSpike, Probability: 0.5, Value: 5},
			},
		},
		{
			ID:            "back_alley_poker",
			Name:          "Back-Alley Poker",
			Description:   "Buy into the crooked table behind the laundromat.",
			Category:      types.CategoryStreet,
			MinTier:       0,
			BaseCost:      120,
			BaseRisk:      20,
			OfferTicks:    480,
			CooldownTicks: 360,
			Weight:        6,
			XPReward:      8,
			RespectReward: 2,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 100},
				{Type: types.EffectIncomeMult, Value: 1.25, DurationTicks: 300, Target: types.TargetGamblingLuck},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.7, Value: 100},
				{Type: types.ConsequenceHeatSpike, Probability: 0.4, Value: 3},
			},
		},
		{
			ID:            "gray_market_imports",
			Name:          "Gray-Market Imports",
			Description:   "Electronics that skipped customs on their way in.",
			Category:      types.CategorySmuggling,
			MinTier:       1,
			BaseCost:      350,
			BaseRisk:      18,
			OfferTicks:    720,
			CooldownTicks: 480,
			Weight:        7,
			XPReward:      12,
			RespectReward: 2,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 800},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.5, Value: 200},
				{Type: types.ConsequenceHeatSpike, Probability: 0.6, Value: 6},
				{Type: types.ConsequenceInvestigation, Probability: 0.15, Severity: 1},
			},
		},
		{
			ID:            "bonded_warehouse_run",
			Name:          "Bonded Warehouse Run",
			Description:   "A night shift forklift driver looks the other way.",
			Category:      types.CategorySmuggling,
			MinTier:       1,
			BaseCost:      500,
			BaseRisk:      22,
			OfferTicks:    720,
			CooldownTicks: 600,
			Weight:        6,
			XPReward:      15,
			RespectReward: 3,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 1200},
				{Type: types.EffectIncomeMult, Value: 1.10, DurationTicks: 600, Target: types.TargetAllIncome},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.6, Value: 300},
				{Type: types.ConsequenceHeatSpike, Probability: 0.6, Value: 8},
				{Type: types.ConsequenceInvestigation, Probability: 0.2, Severity: 2},
			},
		},
		{
			ID:            "shell_invoice_ring",
			Name:          "Shell Company Invoices",
			Description:   "Paper profits cycling through three jurisdictions.",
			Category:      types.CategoryFraud,
			MinTier:       2,
			BaseCost:      900,
			BaseRisk:      24,
			OfferTicks:    840,
			CooldownTicks: 720,
			Weight:        5,
			XPReward:      20,
			RespectReward: 4,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 2400},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.5, Value: 500},
				{Type: types.ConsequenceHeatSpike, Probability: 0.5, Value: 8},
				{Type: types.ConsequenceInvestigation, Probability: 0.25, Severity: 2},
			},
		},
		{
			ID:            "insider_tip",
			Name:          "Insider Tip",
			Description:   "A friend on the trading desk owes you one.",
			Category:      types.CategoryFraud,
			MinTier:       2,
			BaseCost:      1200,
			BaseRisk:      26,
			OfferTicks:    600,
			CooldownTicks: 900,
			Weight:        4,
			XPReward:      24,
			RespectReward: 4,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 900},
				{Type: types.EffectIncomeMult, Value: 1.5, DurationTicks: 600, Target: types.TargetStockReturn},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.6, Value: 700},
				{Type: types.ConsequenceInvestigation, Probability: 0.25, Severity: 3},
				{Type: types.ConsequenceIncomePenalty, Probability: 0.3, Value: 0.9, DurationTicks: 300},
			},
		},
		{
			ID:            "botnet_rental",
			Name:          "Botnet Rental",
			Description:   "Forty thousand compromised smart fridges, yours for a week.",
			Category:      types.CategoryCyber,
			MinTier:       3,
			BaseCost:      2000,
			BaseRisk:      28,
			OfferTicks:    840,
			CooldownTicks: 900,
			Weight:        4,
			XPReward:      30,
			RespectReward: 5,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 5200},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.6, Value: 1100},
				{Type: types.ConsequenceHeatSpike, Probability: 0.5, Value: 10},
				{Type: types.ConsequenceInvestigation, Probability: 0.3, Severity: 3},
			},
		},
		{
			ID:            "exchange_exploit",
			Name:          "Exchange Exploit",
			Description:   "A withdrawal bug on a mid-cap crypto exchange, pre-disclosure.",
			Category:      types.CategoryCyber,
			MinTier:       3,
			BaseCost:      3200,
			BaseRisk:      34,
			OfferTicks:    600,
			CooldownTicks: 1200,
			Weight:        3,
			XPReward:      40,
			RespectReward: 6,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 2500},
				{Type: types.EffectIncomeMult, Value: 1.6, DurationTicks: 600, Target: types.TargetCryptoReturn},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.7, Value: 1800},
				{Type: types.ConsequenceHeatSpike, Probability: 0.6, Value: 12},
				{Type: types.ConsequenceInvestigation, Probability: 0.3, Severity: 4},
			},
		},
		{
			ID:            "casino_wash",
			Name:          "Casino Wash",
			Description:   "Chips in dirty, chips out clean, the pit boss gets a cut.",
			Category:      types.CategoryLaundering,
			MinTier:       4,
			BaseCost:      5000,
			BaseRisk:      30,
			OfferTicks:    960,
			CooldownTicks: 1200,
			Weight:        3,
			XPReward:      50,
			RespectReward: 8,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 12000},
				{Type: types.EffectHeatDrop, Value: 8},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.6, Value: 2600},
				{Type: types.ConsequenceInvestigation, Probability: 0.35, Severity: 4},
			},
		},
		{
			ID:            "offshore_carousel",
			Name:          "Offshore Carousel",
			Description:   "Six accounts, four islands, one very patient accountant.",
			Category:      types.CategoryLaundering,
			MinTier:       4,
			BaseCost:      8000,
			BaseRisk:      32,
			OfferTicks:    960,
			CooldownTicks: 1500,
			Weight:        3,
			XPReward:      60,
			RespectReward: 9,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 19000},
				{Type: types.EffectIncomeMult, Value: 1.2, DurationTicks: 900, Target: types.TargetCostReduction},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.6, Value: 4200},
				{Type: types.ConsequenceHeatSpike, Probability: 0.5, Value: 12},
				{Type: types.ConsequenceInvestigation, Probability: 0.35, Severity: 4},
			},
		},
		{
			ID:            "vault_job",
			Name:          "Vault Job",
			Description:   "Ninety seconds of drilling, a lifetime of bragging rights.",
			Category:      types.CategoryHeist,
			MinTier:       5,
			BaseCost:      20000,
			BaseRisk:      45,
			OfferTicks:    1200,
			CooldownTicks: 2400,
			Weight:        2,
			XPReward:      120,
			RespectReward: 20,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 70000},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.8, Value: 12000},
				{Type: types.ConsequenceHeatSpike, Probability: 0.8, Value: 18},
				{Type: types.ConsequenceInvestigation, Probability: 0.5, Severity: 5},
			},
		},
		{
			ID:            "the_long_con",
			Name:          "The Long Con",
			Description:   "Three months of setup for one perfect afternoon.",
			Category:      types.CategoryHeist,
			MinTier:       5,
			BaseCost:      15000,
			BaseRisk:      38,
			OfferTicks:    1440,
			CooldownTicks: 2000,
			Weight:        2,
			XPReward:      100,
			RespectReward: 16,
			SuccessEffects: []types.EffectSpec{
				{Type: types.EffectCashGrant, Value: 40000},
				{Type: types.EffectIncomeMult, Value: 1.25, DurationTicks: 1200, Target: types.TargetAllIncome},
			},
			FailConsequences: []types.ConsequenceSpec{
				{Type: types.ConsequenceCashLoss, Probability: 0.6, Value: 8000},
				{Type: types.ConsequenceInvestigation, Probability: 0.4, Severity: 4},
				{Type: types.ConsequenceIncomePenalty, Probability: 0.4, Value: 0.85, DurationTicks: 600},
			},
		},
	}
}

// defaultContacts is the authored contact roster. Ability costs are
// base values scaled by wealth at invoke time; effect values are flat.
func defaultContacts() []*types.ContactDefinition {
	return []*types.ContactDefinition{
		{
			ID:          "fixer",
			Name:        "The Fixer",
			Description: "Knows a guy who knows a guy. Specializes in making noise go away.",
			MinTier:     0,
			MaxLoyalty:  80,
			Abilities: []types.AbilityDefinition{
				{
					ID:            "lay_low",
					Name:          "Lay Low",
					Description:   "Spend a few quiet days off the radar.",
					Cost:          200,
					MinLoyalty:    0,
					CooldownTicks: 600,
					DailyLimit:    2,
					Effect:        types.EffectSpec{Type: types.EffectHeatDrop, Value: 10},
				},
				{
					ID:            "clean_slate",
					Name:          "Clean Slate",
					Description:   "Paperwork disappears from three different precincts.",
					Cost:          1000,
					MinLoyalty:    40,
					CooldownTicks: 1800,
					DailyLimit:    1,
					Effect:        types.EffectSpec{Type: types.EffectHeatDrop, Value: 25},
				},
			},
		},
		{
			ID:          "mule",
			Name:        "Marla the Mule",
			Description: "Runs routes nobody else will touch, on time, most of the time.",
			MinTier:     1,
			MaxLoyalty:  90,
			Abilities: []types.AbilityDefinition{
				{
					ID:            "fast_route",
					Name:          "Fast Route",
					Description:   "Goods move twice as fast while her crew is on shift.",
					Cost:          500,
					MinLoyalty:    10,
					CooldownTicks: 1200,
					DailyLimit:    2,
					Effect:        types.EffectSpec{Type: types.EffectIncomeMult, Value: 1.15, DurationTicks: 600, Target: types.TargetAllIncome},
				},
				{
					ID:            "quiet_convoy",
					Name:          "Quiet Convoy",
					Description:   "Escorted shipments draw a lot less attention.",
					Cost:          900,
					MinLoyalty:    30,
					CooldownTicks: 1500,
					DailyLimit:    1,
					Effect:        types.EffectSpec{Type: types.EffectRiskShield, Value: 8, DurationTicks: 600},
				},
			},
		},
		{
			ID:          "hacker",
			Name:        "Null",
			Description: "You have never seen their face. Payment in advance, always.",
			MinTier:     2,
			MaxLoyalty:  100,
			Abilities: []types.AbilityDefinition{
				{
					ID:            "pump_signal",
					Name:          "Pump Signal",
					Description:   "A coordinated shill wave on three exchanges.",
					Cost:          1500,
					MinLoyalty:    20,
					CooldownTicks: 1500,
					DailyLimit:    1,
					Effect:        types.EffectSpec{Type: types.EffectIncomeMult, Value: 1.5, DurationTicks: 400, Target: types.TargetCryptoReturn},
				},
				{
					ID:            "scrub_records",
					Name:          "Scrub Records",
					Description:   "Camera footage has a way of corrupting itself.",
					Cost:          800,
					MinLoyalty:    10,
					CooldownTicks: 1200,
					DailyLimit:    2,
					Effect:        types.EffectSpec{Type: types.EffectHeatDrop, Value: 15},
				},
			},
		},
		{
			ID:          "insider",
			Name:        "Officer Reyes",
			Description: "Twenty years on the force and a gambling problem to show for it.",
			MinTier:     3,
			MaxLoyalty:  70,
			Abilities: []types.AbilityDefinition{
				{
					ID:            "case_closed",
					Name:          "Case Closed",
					Description:   "An open file gets reassigned to the cold case basement.",
					Cost:          2500,
					MinLoyalty:    30,
					CooldownTicks: 2400,
					DailyLimit:    1,
					Effect:        types.EffectSpec{Type: types.EffectCaseDismissed, Value: 1},
				},
				{
					ID:            "patrol_routes",
					Name:          "Patrol Routes",
					Description:   "Next week's patrol schedule, accidentally forwarded.",
					Cost:          1200,
					MinLoyalty:    20,
					CooldownTicks: 1800,
					DailyLimit:    1,
					Effect:        types.EffectSpec{Type: types.EffectRiskShield, Value: 10, DurationTicks: 900},
				},
			},
		},
		{
			ID:          "banker",
			Name:        "Vault Ghost",
			Description: "Private banking for clients who do not exist on paper.",
			MinTier:     4,
			MaxLoyalty:  100,
			Abilities: []types.AbilityDefinition{
				{
					ID:            "ghost_accounts",
					Name:          "Ghost Accounts",
					Description:   "Operating costs route through a friendlier tax regime.",
					Cost:          4000,
					MinLoyalty:    50,
					CooldownTicks: 2000,
					DailyLimit:    1,
					Effect:        types.EffectSpec{Type: types.EffectIncomeMult, Value: 1.25, DurationTicks: 900, Target: types.TargetCostReduction},
				},
				{
					ID:            "windfall",
					Name:          "Windfall",
					Description:   "A dormant account nobody will miss, liquidated quietly.",
					Cost:          2000,
					MinLoyalty:    60,
					CooldownTicks: 2800,
					DailyLimit:    1,
					Effect:        types.EffectSpec{Type: types.EffectCashGrant, Value: 6000},
				},
			},
		},
	}
}
