package profiling

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	domain "edustat/domain/stats"
	"edustat/internal/analysis/comparison"
	"edustat/internal/errors"
)

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeDistribution cleans raw scores and profiles what remains. Shape
// markers (skewness, kurtosis, Shapiro-Wilk) need at least three distinct
// observations and are left empty otherwise.
func (da *DistributionAnalyzer) AnalyzeDistribution(raw []float64) (ScoreProfile, error) {
	data, dropped := domain.Clean(raw)
	profile := ScoreProfile{Dropped: dropped}

	summary, err := comparison.Summarize(data)
	if err != nil {
		return profile, err
	}
	profile.Summary = summary

	fit, err := comparison.FitNormal(data)
	if err != nil {
		return profile, err
	}
	profile.Fit = fit

	// Quartiles for IQR-based outlier detection
	q25, err := stats.Percentile(stats.Float64Data(data), 25)
	if err != nil {
		return profile, errors.Wrap(err, "failed to compute 25th percentile")
	}
	q75, err := stats.Percentile(stats.Float64Data(data), 75)
	if err != nil {
		return profile, errors.Wrap(err, "failed to compute 75th percentile")
	}
	profile.Q25 = q25
	profile.Q75 = q75
	profile.OutlierCount = detectOutliers(data, q25, q75)

	if len(data) < 3 || summary.Min == summary.Max {
		return profile, nil
	}

	profile.Skewness = stat.Skew(data, nil)
	profile.ExKurtosis = stat.ExKurtosis(data, nil)

	normality, err := comparison.TestNormality(data)
	if err != nil {
		return profile, err
	}
	profile.Normality = &normality

	return profile, nil
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}

// ProfileScores profiles one column of raw scores with a fresh analyzer
func ProfileScores(raw []float64) (ScoreProfile, error) {
	return NewDistributionAnalyzer().AnalyzeDistribution(raw)
}
