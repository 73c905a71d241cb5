package app

import (
	"time"

	"edustat/domain/dataset"
	"edustat/domain/stats"
	"edustat/internal/profiling"
)

// ColumnProfile is the distribution profile of one score column in one group
type ColumnProfile struct {
	Column  dataset.Column          `json:"column"`
	Profile *profiling.ScoreProfile `json:"profile,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// GroupDescriptives holds the descriptive statistics of one group
type GroupDescriptives struct {
	Group   dataset.Group   `json:"group"`
	N       int             `json:"n"`
	Columns []ColumnProfile `json:"columns"`
}

// MeanComparison is a two-sample t-test of one column with its effect sizes
type MeanComparison struct {
	Column      dataset.Column          `json:"column"`
	Result      *stats.ComparisonResult `json:"result,omitempty"`
	HedgesG     float64                 `json:"hedges_g"`
	Magnitude   stats.EffectMagnitude   `json:"magnitude,omitempty"`
	Significant bool                    `json:"significant"`
	Error       string                  `json:"error,omitempty"`
}

// RankComparison is the Mann-Whitney cross-check of one column
type RankComparison struct {
	Column      dataset.Column        `json:"column"`
	Result      *stats.RankTestResult `json:"result,omitempty"`
	Significant bool                  `json:"significant"`
	Error       string                `json:"error,omitempty"`
}

// NormalityCheck is the Shapiro-Wilk result for one group and column
type NormalityCheck struct {
	Group  dataset.Group          `json:"group"`
	Column dataset.Column         `json:"column"`
	Result *stats.NormalityResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// PairedComparison is the pre/post paired t-test of one group
type PairedComparison struct {
	Group       dataset.Group       `json:"group"`
	Result      *stats.PairedResult `json:"result,omitempty"`
	Significant bool                `json:"significant"`
	Error       string              `json:"error,omitempty"`
}

// StudyReport is the complete outcome of analysing a pre/post study.
// A comparison that cannot be computed carries its error instead of a result.
type StudyReport struct {
	RunID         string       `json:"run_id"`
	GeneratedAt   time.Time    `json:"generated_at"`
	Alpha         float64      `json:"alpha"`
	EqualVariance bool         `json:"equal_variance"`
	Method        stats.Method `json:"method"`

	Descriptives []GroupDescriptives `json:"descriptives"`
	// Baseline compares pre-test scores; a significant difference means
	// the groups were not equivalent before teaching
	Baseline       MeanComparison           `json:"baseline"`
	Comparisons    []MeanComparison         `json:"comparisons"`
	RankTests      []RankComparison         `json:"rank_tests"`
	Normality      []NormalityCheck         `json:"normality"`
	Recommendation stats.TestRecommendation `json:"recommendation"`
	Paired         []PairedComparison       `json:"paired"`
}

// Errors lists every comparison error recorded on the report
func (r *StudyReport) Errors() []string {
	var errs []string
	add := func(label, msg string) {
		if msg != "" {
			errs = append(errs, label+": "+msg)
		}
	}
	for _, d := range r.Descriptives {
		for _, c := range d.Columns {
			add(string(d.Group)+" "+string(c.Column)+" profile", c.Error)
		}
	}
	add("baseline t-test", r.Baseline.Error)
	for _, c := range r.Comparisons {
		add(string(c.Column)+" t-test", c.Error)
	}
	for _, c := range r.RankTests {
		add(string(c.Column)+" Mann-Whitney", c.Error)
	}
	for _, c := range r.Normality {
		add(string(c.Group)+" "+string(c.Column)+" Shapiro-Wilk", c.Error)
	}
	for _, c := range r.Paired {
		add(string(c.Group)+" paired t-test", c.Error)
	}
	return errs
}
