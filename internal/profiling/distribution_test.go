package profiling

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edustat/internal/errors"
)

func TestAnalyzeDistribution_CleansAndProfiles(t *testing.T) {
	da := NewDistributionAnalyzer()

	raw := []float64{12, 14, math.NaN(), 15, 16, 18, math.Inf(1), 13, 17, 15}
	profile, err := da.AnalyzeDistribution(raw)
	require.NoError(t, err)

	assert.Equal(t, 2, profile.Dropped)
	assert.Equal(t, 8, profile.Summary.Count)
	assert.InDelta(t, 15.0, profile.Summary.Mean, 1e-12)
	assert.InDelta(t, 15.0, profile.Fit.Mu, 1e-12)
	assert.LessOrEqual(t, profile.Q25, profile.Q75)
	assert.Equal(t, 0, profile.OutlierCount)

	require.True(t, profile.HasShape())
	assert.InDelta(t, 0.0, profile.Skewness, 1e-9)
	assert.Equal(t, 8, profile.Normality.N)
}

func TestAnalyzeDistribution_Outliers(t *testing.T) {
	da := NewDistributionAnalyzer()

	profile, err := da.AnalyzeDistribution([]float64{10, 11, 12, 11, 10, 12, 11, 95})
	require.NoError(t, err)
	assert.Equal(t, 1, profile.OutlierCount)
	assert.Greater(t, profile.Skewness, 1.0)
}

func TestAnalyzeDistribution_SmallOrConstant(t *testing.T) {
	da := NewDistributionAnalyzer()

	profile, err := da.AnalyzeDistribution([]float64{4, 9})
	require.NoError(t, err)
	assert.False(t, profile.HasShape())

	profile, err = da.AnalyzeDistribution([]float64{7, 7, 7, 7})
	require.NoError(t, err)
	assert.False(t, profile.HasShape())
	assert.Equal(t, 0.0, profile.Summary.StdDev)
}

func TestAnalyzeDistribution_AllMissing(t *testing.T) {
	da := NewDistributionAnalyzer()

	profile, err := da.AnalyzeDistribution([]float64{math.NaN(), math.NaN()})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
	assert.Equal(t, 2, profile.Dropped)
}
