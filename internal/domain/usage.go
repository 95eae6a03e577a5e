package domain

import "fmt"

// Feature names a gated capability.
type Feature string

const (
	FeatureBrainDump    Feature = "brain_dump"
	FeatureReset        Feature = "reset"
	FeatureScripts      Feature = "scripts"
	FeatureScoreHistory Feature = "score_history"
	FeatureFavorites    Feature = "favorites"
)

// Unlimited is reported to clients as the remaining allowance of premium users.
const Unlimited = -1

const (
	DefaultFreeBrainDumps = 2
	DefaultFreeResets     = 1
)

// UsageLimits holds the lifetime free-tier ceilings. Features not listed are premium-only.
type UsageLimits struct {
	BrainDumps int
	Resets     int
}

func DefaultUsageLimits() UsageLimits {
	return UsageLimits{
		BrainDumps: DefaultFreeBrainDumps,
		Resets:     DefaultFreeResets,
	}
}

// FreeLimit returns the lifetime allowance of a free user for a feature.
func (l UsageLimits) FreeLimit(feature Feature) int {
	switch feature {
	case FeatureBrainDump:
		return l.BrainDumps
	case FeatureReset:
		return l.Resets
	default:
		return 0
	}
}

func consumed(identity Identity, feature Feature) int {
	switch feature {
	case FeatureBrainDump:
		return identity.BrainDumpCount
	case FeatureReset:
		return identity.ResetCount
	default:
		return 0
	}
}

// Allowed reports isPremium || counter < freeLimit.
func (l UsageLimits) Allowed(identity Identity, feature Feature) bool {
	if identity.IsPremium {
		return true
	}
	return consumed(identity, feature) < l.FreeLimit(feature)
}

// Remaining returns Unlimited for premium users, otherwise the unused free allowance.
func (l UsageLimits) Remaining(identity Identity, feature Feature) int {
	if identity.IsPremium {
		return Unlimited
	}
	left := l.FreeLimit(feature) - consumed(identity, feature)
	if left < 0 {
		return 0
	}
	return left
}

// Check returns nil when the feature may be used, otherwise ErrPremiumRequired.
func (l UsageLimits) Check(identity Identity, feature Feature) error {
	if l.Allowed(identity, feature) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrPremiumRequired, denialMessage(feature))
}

func denialMessage(feature Feature) string {
	switch feature {
	case FeatureBrainDump:
		return "free brain dump limit reached"
	case FeatureReset:
		return "free reset limit reached"
	case FeatureScripts:
		return "scripts require premium"
	case FeatureScoreHistory:
		return "quiz history requires premium"
	case FeatureFavorites:
		return "favorites require premium"
	default:
		return string(feature) + " requires premium"
	}
}
