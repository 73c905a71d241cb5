package stats

import (
	"math"
)

// ============================================================================
// SAMPLES
// ============================================================================

// Sample is an ordered sequence of finite scores. Build one with Clean;
// the comparison functions reject samples that still hold NaN or Inf.
type Sample []float64

// Clean drops missing (NaN) and non-finite values and returns the
// remaining scores in their original order along with the dropped count.
func Clean(values []float64) (Sample, int) {
	out := make(Sample, 0, len(values))
	dropped := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			dropped++
			continue
		}
		out = append(out, v)
	}
	return out, dropped
}

// FirstNonFinite returns the index of the first NaN/Inf value, or -1
func (s Sample) FirstNonFinite() int {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// ============================================================================
// DESCRIPTIVE RESULTS
// ============================================================================

// GroupSummary holds descriptive statistics for one group's scores.
// StdDev uses the n-1 divisor.
type GroupSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Variance returns the sample variance (StdDev squared)
func (g GroupSummary) Variance() float64 {
	return g.StdDev * g.StdDev
}

// NormalFit is the maximum likelihood normal fit of a sample
type NormalFit struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"` // population (ddof=0) standard deviation
	N     int     `json:"n"`
}

// Density evaluates the fitted normal density at x
func (f NormalFit) Density(x float64) float64 {
	if f.Sigma <= 0 {
		return 0
	}
	z := (x - f.Mu) / f.Sigma
	return math.Exp(-0.5*z*z) / (f.Sigma * math.Sqrt(2*math.Pi))
}

// ============================================================================
// INFERENTIAL RESULTS
// ============================================================================

// Method names the variance assumption behind a two-sample t-test
type Method string

const (
	MethodPooledVariance     Method = "pooled-variance"
	MethodWelchSatterthwaite Method = "welch-satterthwaite"
)

// MethodFor maps the equal-variance flag to the method it selects
func MethodFor(equalVariance bool) Method {
	if equalVariance {
		return MethodPooledVariance
	}
	return MethodWelchSatterthwaite
}

// ConfidenceInterval is a two-sided interval for the mean difference
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"` // e.g. 0.95
}

// Contains reports whether x lies inside the closed interval
func (ci ConfidenceInterval) Contains(x float64) bool {
	return x >= ci.Lower && x <= ci.Upper
}

// ComparisonResult is the outcome of comparing experimental against control.
// Differences are always experimental minus control.
type ComparisonResult struct {
	Method             Method             `json:"method"`
	MeanDifference     float64            `json:"mean_difference"`
	StandardError      float64            `json:"standard_error"`
	TStatistic         float64            `json:"t_statistic"`
	DegreesOfFreedom   float64            `json:"degrees_of_freedom"`
	PValue             float64            `json:"p_value"`
	CohensD            float64            `json:"cohens_d"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	Control            GroupSummary       `json:"control"`
	Experimental       GroupSummary       `json:"experimental"`
}

// Significant reports whether the two-tailed p-value is below alpha
func (r ComparisonResult) Significant(alpha float64) bool {
	return r.PValue < alpha
}

// RankTestResult is the outcome of a Mann-Whitney U test. Statistic is U
// for the control sample: the number of (control, experimental) pairs
// where the control score is larger, ties counting one half.
type RankTestResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	N1        int     `json:"n1"`
	N2        int     `json:"n2"`
	Exact     bool    `json:"exact"`
}

// NormalityResult is the outcome of a Shapiro-Wilk test
type NormalityResult struct {
	Statistic float64 `json:"statistic"` // W
	PValue    float64 `json:"p_value"`
	N         int     `json:"n"`
}

// LooksNormal reports whether normality is not rejected at alpha
func (r NormalityResult) LooksNormal(alpha float64) bool {
	return r.PValue >= alpha
}

// PairedResult is the outcome of a paired (pre/post) t-test.
// MeanDifference is post minus pre.
type PairedResult struct {
	MeanDifference   float64 `json:"mean_difference"`
	StdDevDifference float64 `json:"std_dev_difference"`
	TStatistic       float64 `json:"t_statistic"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
	N                int     `json:"n"`
}

// EffectMagnitude is the conventional reading of a Cohen's d value
type EffectMagnitude string

const (
	EffectSmall  EffectMagnitude = "small"
	EffectMedium EffectMagnitude = "medium"
	EffectLarge  EffectMagnitude = "large"
)

// TestRecommendation names which comparison is more trustworthy for the data
type TestRecommendation string

const (
	RecommendParametric TestRecommendation = "parametric"
	RecommendRankBased  TestRecommendation = "rank-based"
)
