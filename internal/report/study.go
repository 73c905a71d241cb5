package report

import (
	"fmt"
	"math"
	"time"

	"edustat/app"
	"edustat/domain/dataset"
	"edustat/domain/stats"
	"edustat/internal/analysis/comparison"
)

// Study lays out a full study report
func Study(r *app.StudyReport) *Document {
	d := newDocument("Study Analysis Report")
	d.para(
		"Run ID: "+r.RunID,
		"Generated: "+r.GeneratedAt.UTC().Format(time.RFC3339),
		fmt.Sprintf("Method: %s t-test, alpha = %s", r.Method, num(r.Alpha, 2)),
		"Differences are experimental minus control",
	)

	writeDescriptives(d, r)
	writeComparisons(d, r)
	writeRankTests(d, r)
	writeNormality(d, r)
	writePaired(d, r)
	writeGuide(d, r)

	if errs := r.Errors(); len(errs) > 0 {
		d.section("Comparisons Not Computed")
		d.para(errs...)
	}
	return d
}

func writeDescriptives(d *Document, r *app.StudyReport) {
	d.section("Descriptive Statistics")
	for _, g := range r.Descriptives {
		d.subsection(fmt.Sprintf("%s group (n=%d)", g.Group.Title(), g.N))
		var rows [][]string
		for _, c := range g.Columns {
			if c.Profile == nil {
				rows = append(rows, []string{c.Column.Label(), "-", "-", "-", "-", "-", "-", "-", "-"})
				continue
			}
			s := c.Profile.Summary
			skew, kurt, sw := "-", "-", "-"
			if c.Profile.HasShape() {
				skew = num(c.Profile.Skewness, 3)
				kurt = num(c.Profile.ExKurtosis, 3)
				sw = pValue(c.Profile.Normality.PValue)
			}
			rows = append(rows, []string{
				c.Column.Label(),
				fmt.Sprintf("%.2f ± %.2f", s.Mean, s.StdDev),
				num(s.Median, 2),
				num(s.Min, 2),
				num(s.Max, 2),
				fmt.Sprintf("%d", c.Profile.OutlierCount),
				skew,
				kurt,
				sw,
			})
		}
		d.table([]string{"Score", "Mean ± SD", "Median", "Min", "Max", "Outliers", "Skew", "Ex. kurtosis", "Shapiro p"}, rows)
	}
}

func writeComparisons(d *Document, r *app.StudyReport) {
	d.section("Independent t-tests")
	headers := []string{"Score", "Diff", "95% CI", "t", "df", "p", "Cohen's d", "Hedges' g", "Effect", "Significant"}
	var rows [][]string
	for _, c := range append([]app.MeanComparison{r.Baseline}, r.Comparisons...) {
		if c.Result == nil {
			rows = append(rows, []string{c.Column.Label(), "not computed"})
			continue
		}
		res := c.Result
		rows = append(rows, []string{
			c.Column.Label(),
			num(res.MeanDifference, 3),
			interval(res.ConfidenceInterval),
			num(res.TStatistic, 3),
			num(res.DegreesOfFreedom, 2),
			pValue(res.PValue),
			num(res.CohensD, 3),
			num(c.HedgesG, 3),
			string(c.Magnitude),
			yesNo(c.Significant),
		})
	}
	d.table(headers, rows)

	if r.Baseline.Result != nil {
		if r.Baseline.Significant {
			d.para("Pre-test scores differ between groups: the groups were not equivalent at baseline")
		} else {
			d.para("Pre-test scores do not differ significantly: the groups were comparable at baseline")
		}
	}
}

func writeRankTests(d *Document, r *app.StudyReport) {
	d.section("Mann-Whitney U (rank-based cross-check)")
	var rows [][]string
	for _, c := range r.RankTests {
		if c.Result == nil {
			rows = append(rows, []string{c.Column.Label(), "not computed"})
			continue
		}
		rows = append(rows, []string{
			c.Column.Label(),
			num(c.Result.Statistic, 1),
			fmt.Sprintf("%d / %d", c.Result.N1, c.Result.N2),
			pValue(c.Result.PValue),
			yesNo(c.Result.Exact),
			yesNo(c.Significant),
		})
	}
	d.table([]string{"Score", "U", "n control / experimental", "p", "Exact", "Significant"}, rows)
}

func writeNormality(d *Document, r *app.StudyReport) {
	d.section("Normality (Shapiro-Wilk)")
	var rows [][]string
	for _, c := range r.Normality {
		if c.Result == nil {
			rows = append(rows, []string{c.Group.Title(), c.Column.Label(), "not computed"})
			continue
		}
		rows = append(rows, []string{
			c.Group.Title(),
			c.Column.Label(),
			fmt.Sprintf("%d", c.Result.N),
			num(c.Result.Statistic, 4),
			pValue(c.Result.PValue),
			yesNo(c.Result.LooksNormal(r.Alpha)),
		})
	}
	d.table([]string{"Group", "Score", "n", "W", "p", "Normal"}, rows)

	switch r.Recommendation {
	case stats.RecommendRankBased:
		d.para("Normality is rejected for at least one group: prefer the Mann-Whitney results")
	default:
		d.para("Normality is not rejected: the t-test results apply")
	}
}

func writePaired(d *Document, r *app.StudyReport) {
	d.section("Paired t-tests (post-test minus pre-test)")
	var rows [][]string
	for _, c := range r.Paired {
		if c.Result == nil {
			rows = append(rows, []string{c.Group.Title(), "not computed"})
			continue
		}
		rows = append(rows, []string{
			c.Group.Title(),
			fmt.Sprintf("%d", c.Result.N),
			fmt.Sprintf("%.2f ± %.2f", c.Result.MeanDifference, c.Result.StdDevDifference),
			num(c.Result.TStatistic, 3),
			num(c.Result.DegreesOfFreedom, 0),
			pValue(c.Result.PValue),
			yesNo(c.Significant),
		})
	}
	d.table([]string{"Group", "n", "Gain ± SD", "t", "df", "p", "Significant"}, rows)
}

func writeGuide(d *Document, r *app.StudyReport) {
	d.section("Interpretation Guide")
	lines := []string{
		"Cohen's d 0.2 = small effect",
		"Cohen's d 0.5 = medium effect",
		"Cohen's d 0.8 = large effect",
	}
	for _, c := range r.Comparisons {
		if c.Column == dataset.ColumnImprovement && c.Result != nil {
			lines = append(lines, fmt.Sprintf("Improvement effect size: %.3f (%s effect)",
				c.Result.CohensD, comparison.InterpretCohensD(c.Result.CohensD)))
		}
	}
	d.para(lines...)
}

func num(v float64, prec int) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func pValue(p float64) string {
	if p < 0.0001 {
		return "< 0.0001"
	}
	return fmt.Sprintf("%.4f", p)
}

func interval(ci stats.ConfidenceInterval) string {
	return fmt.Sprintf("[%.3f, %.3f]", ci.Lower, ci.Upper)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
