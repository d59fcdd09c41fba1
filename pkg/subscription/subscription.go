package subscription

import "time"

// Account is a user's billing snapshot. Each user has exactly one account,
// keyed by the identity provider's user ID.
type Account struct {
	UserID            string
	Email             string
	CustomerID        string // provider's customer ID, set on first checkout
	SubscriptionID    string // empty on the free tier
	Tier              Tier
	Status            Status
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
	UpdatedAt         time.Time
}

// EffectiveTier returns the stored tier, or free when none is stored.
func (a *Account) EffectiveTier() Tier {
	if a == nil {
		return TierFree
	}
	t, _ := ParseTier(string(a.Tier))
	return t
}

// IsActive returns true if the account has a paid subscription in good standing.
func (a *Account) IsActive() bool {
	return a.SubscriptionID != "" && (a.Status == StatusActive || a.Status == StatusTrialing)
}

// IsPastDue returns true if the last payment failed.
func (a *Account) IsPastDue() bool {
	return a.Status == StatusPastDue
}

// DaysRemainingAt returns the number of days left in the current billing
// period at a given time. Returns 0 when no period is known or it has ended.
func (a *Account) DaysRemainingAt(now time.Time) int {
	if a.CurrentPeriodEnd.IsZero() {
		return 0
	}

	remaining := a.CurrentPeriodEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}

	// Round partial days to be user-friendly
	days := remaining.Hours() / 24
	return int(days + 0.5)
}
