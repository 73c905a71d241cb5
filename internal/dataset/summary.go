package dataset

import (
	"math"

	"edustat/domain/dataset"
	domain "edustat/domain/stats"
	"edustat/internal/analysis/comparison"
)

// Dataset labels used in the summary statistics table
const (
	LabelPreTest          = "Pre-test"
	LabelPostControl      = "Post-test Control"
	LabelPostExperimental = "Post-test Experimental"
)

// SummaryRow is one line of summary_statistics.csv. N counts rows in
// the file; Mean and StdDev cover the non-missing scores and are NaN when
// there are none.
type SummaryRow struct {
	Dataset string  `json:"dataset"`
	N       int     `json:"n_students"`
	Mean    float64 `json:"mean_score"`
	StdDev  float64 `json:"std_dev"`
}

// SummaryStatistics summarises each raw file's total_score column
func SummaryStatistics(sheets *Sheets) []SummaryRow {
	rows := make([]SummaryRow, 0, 3)
	for _, s := range []struct {
		label string
		sheet *ScoreSheet
	}{
		{LabelPreTest, sheets.PreTest},
		{LabelPostControl, sheets.PostControl},
		{LabelPostExperimental, sheets.PostExperimental},
	} {
		row := SummaryRow{Dataset: s.label, N: len(s.sheet.Rows), Mean: math.NaN(), StdDev: math.NaN()}
		if summary, err := comparison.Summarize(s.sheet.Scores()); err == nil {
			row.Mean = summary.Mean
			row.StdDev = summary.StdDev
		}
		rows = append(rows, row)
	}
	return rows
}

// GroupScores extracts one column for one group and drops missing values
func GroupScores(records []dataset.StudentRecord, group dataset.Group, column dataset.Column) domain.Sample {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Group == group {
			values = append(values, r.Value(column))
		}
	}
	sample, _ := domain.Clean(values)
	return sample
}

// PairedScores returns the pre and post scores of one group's complete
// records, aligned by student.
func PairedScores(records []dataset.StudentRecord, group dataset.Group) (pre, post domain.Sample) {
	for _, r := range records {
		if r.Group == group && r.Complete() {
			pre = append(pre, r.PreTest)
			post = append(post, r.PostTest)
		}
	}
	return pre, post
}

// CountByGroup counts records per group
func CountByGroup(records []dataset.StudentRecord) map[dataset.Group]int {
	counts := make(map[dataset.Group]int, len(dataset.Groups))
	for _, r := range records {
		counts[r.Group]++
	}
	return counts
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
