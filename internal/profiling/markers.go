package profiling

import (
	domain "edustat/domain/stats"
)

// ScoreProfile describes the shape of one group's score distribution
type ScoreProfile struct {
	Summary      domain.GroupSummary     `json:"summary"`
	Q25          float64                 `json:"q25"`
	Q75          float64                 `json:"q75"`
	OutlierCount int                     `json:"outlier_count"` // outside 1.5 IQR fences
	Skewness     float64                 `json:"skewness"`
	ExKurtosis   float64                 `json:"ex_kurtosis"`
	Normality    *domain.NormalityResult `json:"normality,omitempty"`
	Fit          domain.NormalFit        `json:"fit"`
	Dropped      int                     `json:"dropped"` // missing or non-finite values removed before profiling
}

// HasShape reports whether skewness, kurtosis and normality were computed
func (p ScoreProfile) HasShape() bool {
	return p.Normality != nil
}
