package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageLimitsFreeTier(t *testing.T) {
	limits := DefaultUsageLimits()

	tests := []struct {
		name      string
		identity  Identity
		feature   Feature
		allowed   bool
		remaining int
	}{
		{"fresh brain dump", Identity{}, FeatureBrainDump, true, 2},
		{"one brain dump used", Identity{BrainDumpCount: 1}, FeatureBrainDump, true, 1},
		{"brain dumps exhausted", Identity{BrainDumpCount: 2}, FeatureBrainDump, false, 0},
		{"counter past ceiling", Identity{BrainDumpCount: 5}, FeatureBrainDump, false, 0},
		{"fresh reset", Identity{}, FeatureReset, true, 1},
		{"reset exhausted", Identity{ResetCount: 1}, FeatureReset, false, 0},
		{"scripts are premium only", Identity{}, FeatureScripts, false, 0},
		{"score history is premium only", Identity{}, FeatureScoreHistory, false, 0},
		{"favorites are premium only", Identity{}, FeatureFavorites, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, limits.Allowed(tt.identity, tt.feature))
			assert.Equal(t, tt.remaining, limits.Remaining(tt.identity, tt.feature))
		})
	}
}

func TestUsageLimitsPremiumBypassesCeilings(t *testing.T) {
	limits := DefaultUsageLimits()
	premium := Identity{IsPremium: true, BrainDumpCount: 500, ResetCount: 90}

	for _, f := range []Feature{FeatureBrainDump, FeatureReset, FeatureScripts, FeatureScoreHistory, FeatureFavorites} {
		assert.True(t, limits.Allowed(premium, f), f)
		assert.Equal(t, Unlimited, limits.Remaining(premium, f), f)
		assert.NoError(t, limits.Check(premium, f), f)
	}
}

func TestUsageLimitsCheckWrapsPremiumRequired(t *testing.T) {
	err := DefaultUsageLimits().Check(Identity{BrainDumpCount: 2}, FeatureBrainDump)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPremiumRequired))
	assert.Contains(t, err.Error(), "free brain dump limit reached")
}
