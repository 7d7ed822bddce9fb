package blackmarket

import "errors"

// Validation rejections returned by player actions. They are reported
// synchronously, leave no partial state behind, and are matched with
// errors.Is by callers. Probabilistic bad outcomes (failed deals,
// scams, betrayals) are not errors.
var (
	ErrUnknownDeal       = errors.New("deal not found")
	ErrDealNotAvailable  = errors.New("deal not available")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTierTooLow        = errors.New("reputation tier too low")
	ErrUnknownContact    = errors.New("contact not found")
	ErrContactLocked     = errors.New("contact not unlocked")
	ErrUnknownAbility    = errors.New("ability not found")
	ErrLoyaltyTooLow     = errors.New("contact loyalty too low")
	ErrAbilityOnCooldown = errors.New("ability on cooldown")
	ErrDailyLimitReached = errors.New("daily use limit reached")

	// Snapshot errors returned by restore and storage.
	ErrNilSnapshot        = errors.New("nil snapshot")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)
