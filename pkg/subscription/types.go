package subscription

import "strings"

// Tier is a subscription level.
type Tier string

const (
	TierFree     Tier = "free"
	TierStandard Tier = "standard"
	TierPro      Tier = "pro"
)

// tierOrder lists tiers from cheapest to most expensive.
var tierOrder = []Tier{TierFree, TierStandard, TierPro}

// ParseTier normalizes s and reports whether it names a known tier.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TierFree, TierStandard, TierPro:
		return t, true
	}
	return TierFree, false
}

// IsValidTier reports whether s names a known tier, ignoring case.
func IsValidTier(s string) bool {
	_, ok := ParseTier(s)
	return ok
}

// IsPaid reports whether the tier can be purchased through checkout.
func (t Tier) IsPaid() bool {
	return t == TierStandard || t == TierPro
}

// Resource represents a countable per-user resource type.
type Resource string

const (
	ResourceAvatars Resource = "avatars"
	ResourceVoices  Resource = "voices"
)

const (
	// Unlimited indicates no limit for a resource (-1 chosen for storage compatibility)
	Unlimited int64 = -1
)

// Feature represents a tier-specific capability that can be enabled/disabled.
type Feature string

const (
	FeatureCustomScripts  Feature = "custom_scripts"
	FeatureAnalytics      Feature = "analytics"
	FeatureAPIAccess      Feature = "api_access"
	FeatureCustomBranding Feature = "custom_branding"
	FeatureWhiteLabel     Feature = "white_label"
)

// Status represents the current state of a subscription as reported by the
// billing provider.
type Status string

const (
	StatusActive     Status = "active"
	StatusTrialing   Status = "trialing"
	StatusPastDue    Status = "past_due"
	StatusCanceled   Status = "canceled"
	StatusIncomplete Status = "incomplete"
	StatusUnpaid     Status = "unpaid"
)

// EventType is a normalized billing event.
type EventType string

const (
	EventCheckoutCompleted   EventType = "checkout_completed"
	EventSubscriptionUpdated EventType = "subscription_updated"
	EventSubscriptionDeleted EventType = "subscription_deleted"
	EventPaymentFailed       EventType = "payment_failed"
	EventUnhandled           EventType = "unhandled"
)

// EventOutcome is what happened to a verified webhook delivery.
type EventOutcome string

const (
	OutcomeApplied   EventOutcome = "applied"
	OutcomeIgnored   EventOutcome = "ignored"
	OutcomeDuplicate EventOutcome = "duplicate"
	OutcomeFailed    EventOutcome = "failed"
)
