package subscription

import (
	"fmt"
	"slices"
	"strconv"
)

// Plan describes a tier and its resource/feature constraints.
type Plan struct {
	Tier       Tier
	Name       string
	Limits     map[Resource]int64 // -1 represents unlimited
	Features   []Feature
	AlertTypes []string
	Support    string
}

// Limit returns the plan's limit for res, or 0 when the resource is unknown.
func (p Plan) Limit(res Resource) int64 {
	return p.Limits[res]
}

// Has reports whether the plan includes feature.
func (p Plan) Has(feature Feature) bool {
	return slices.Contains(p.Features, feature)
}

var plans = map[Tier]Plan{
	TierFree: {
		Tier: TierFree,
		Name: "Free",
		Limits: map[Resource]int64{
			ResourceAvatars: 1,
			ResourceVoices:  1,
		},
		AlertTypes: []string{"basic"},
		Support:    "community",
	},
	TierStandard: {
		Tier: TierStandard,
		Name: "Standard",
		Limits: map[Resource]int64{
			ResourceAvatars: 5,
			ResourceVoices:  10,
		},
		Features:   []Feature{FeatureCustomScripts, FeatureAnalytics},
		AlertTypes: []string{"basic", "advanced", "custom"},
		Support:    "priority",
	},
	TierPro: {
		Tier: TierPro,
		Name: "Pro",
		Limits: map[Resource]int64{
			ResourceAvatars: Unlimited,
			ResourceVoices:  Unlimited,
		},
		Features: []Feature{
			FeatureCustomScripts,
			FeatureAnalytics,
			FeatureAPIAccess,
			FeatureCustomBranding,
			FeatureWhiteLabel,
		},
		AlertTypes: []string{"basic", "advanced", "custom", "premium"},
		Support:    "24/7",
	},
}

// PlanFor returns the plan of tier. Unknown tiers resolve to the free plan.
func PlanFor(tier Tier) Plan {
	t, _ := ParseTier(string(tier))
	return plans[t]
}

// Plans returns every plan ordered from cheapest to most expensive.
func Plans() []Plan {
	out := make([]Plan, 0, len(tierOrder))
	for _, t := range tierOrder {
		out = append(out, plans[t])
	}
	return out
}

// LimitCheck is the outcome of CheckLimit. Limit and Remaining are Unlimited
// for resources without a cap.
type LimitCheck struct {
	Allowed   bool
	Limit     int64
	Remaining int64
}

// CheckLimit reports whether a user on tier holding current instances of res
// may create one more.
func CheckLimit(tier Tier, res Resource, current int64) LimitCheck {
	limit := PlanFor(tier).Limit(res)
	if limit == Unlimited {
		return LimitCheck{Allowed: true, Limit: Unlimited, Remaining: Unlimited}
	}
	return LimitCheck{
		Allowed:   current < limit,
		Limit:     limit,
		Remaining: max(0, limit-current),
	}
}

// HasFeature reports whether tier includes feature.
func HasFeature(tier Tier, feature Feature) bool {
	return PlanFor(tier).Has(feature)
}

// UpgradeSuggestion describes the next tier up for a resource.
type UpgradeSuggestion struct {
	NeedsUpgrade bool
	CurrentTier  Tier
	NextTier     Tier
	NextTierName string
	CurrentLimit int64
	NextLimit    int64
	Message      string
}

// SuggestUpgrade returns what the next tier offers for res.
func SuggestUpgrade(tier Tier, res Resource) UpgradeSuggestion {
	current := PlanFor(tier)
	idx := slices.Index(tierOrder, current.Tier)
	if idx == len(tierOrder)-1 {
		return UpgradeSuggestion{
			CurrentTier:  current.Tier,
			CurrentLimit: current.Limit(res),
			Message:      "You are already on the highest tier!",
		}
	}

	next := plans[tierOrder[idx+1]]
	nextLimit := next.Limit(res)
	amount := "unlimited"
	if nextLimit != Unlimited {
		amount = strconv.FormatInt(nextLimit, 10)
	}

	return UpgradeSuggestion{
		NeedsUpgrade: true,
		CurrentTier:  current.Tier,
		NextTier:     next.Tier,
		NextTierName: next.Name,
		CurrentLimit: current.Limit(res),
		NextLimit:    nextLimit,
		Message:      fmt.Sprintf("Upgrade to %s to get %s %s!", next.Name, amount, res),
	}
}

// PlanComparison contains the differences between two plans.
// Used to report what a user gains or loses on a tier change.
type PlanComparison struct {
	NewFeatures     []Feature
	LostFeatures    []Feature
	IncreasedLimits map[Resource]ResourceChange
	DecreasedLimits map[Resource]ResourceChange
}

// ResourceChange represents a change in resource limit.
type ResourceChange struct {
	From int64
	To   int64
}

// IsDowngrade returns true if any feature is lost or any limit decreased.
func (c *PlanComparison) IsDowngrade() bool {
	return len(c.LostFeatures) > 0 || len(c.DecreasedLimits) > 0
}

// ComparePlans returns the differences between current and target plans.
func ComparePlans(current, target Plan) *PlanComparison {
	comparison := &PlanComparison{
		NewFeatures:     make([]Feature, 0),
		LostFeatures:    make([]Feature, 0),
		IncreasedLimits: make(map[Resource]ResourceChange),
		DecreasedLimits: make(map[Resource]ResourceChange),
	}

	for _, feature := range target.Features {
		if !slices.Contains(current.Features, feature) {
			comparison.NewFeatures = append(comparison.NewFeatures, feature)
		}
	}
	for _, feature := range current.Features {
		if !slices.Contains(target.Features, feature) {
			comparison.LostFeatures = append(comparison.LostFeatures, feature)
		}
	}

	for resource, targetLimit := range target.Limits {
		currentLimit := current.Limits[resource]
		if targetLimit == currentLimit {
			continue
		}
		change := ResourceChange{From: currentLimit, To: targetLimit}

		// Unlimited-to-limited counts as a decrease.
		switch {
		case currentLimit == Unlimited:
			comparison.DecreasedLimits[resource] = change
		case targetLimit == Unlimited, targetLimit > currentLimit:
			comparison.IncreasedLimits[resource] = change
		default:
			comparison.DecreasedLimits[resource] = change
		}
	}

	return comparison
}
