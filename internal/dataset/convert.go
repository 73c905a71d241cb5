package dataset

import (
	"strconv"

	"edustat/domain/dataset"
	"edustat/internal/errors"
)

// Column layouts of the processed files
var (
	combinedHeaders = []string{
		HeaderStudentID, string(dataset.ColumnPreTest), HeaderGroup,
		string(dataset.ColumnPostTest), string(dataset.ColumnImprovement), HeaderImprovementPct,
	}
	analysisHeaders = []string{
		HeaderStudentID, HeaderGroup,
		string(dataset.ColumnPreTest), string(dataset.ColumnPostTest), string(dataset.ColumnImprovement),
	}
	summaryHeaders = []string{"dataset", "n_students", "mean_score", "std_dev"}
)

// CombinedTable lays records out as combined_scores.csv
func CombinedTable(records []dataset.StudentRecord) *dataset.Table {
	table := &dataset.Table{Headers: append([]string(nil), combinedHeaders...)}
	for _, r := range records {
		table.Rows = append(table.Rows, dataset.Row{
			HeaderStudentID:                   r.StudentID,
			string(dataset.ColumnPreTest):     FormatScore(r.PreTest),
			HeaderGroup:                       string(r.Group),
			string(dataset.ColumnPostTest):    FormatScore(r.PostTest),
			string(dataset.ColumnImprovement): FormatScore(r.Improvement),
			HeaderImprovementPct:              FormatScore(r.ImprovementPercentage),
		})
	}
	return table
}

// AnalysisTable lays records out as analysis_ready.csv
func AnalysisTable(records []dataset.StudentRecord) *dataset.Table {
	table := &dataset.Table{Headers: append([]string(nil), analysisHeaders...)}
	for _, r := range records {
		table.Rows = append(table.Rows, dataset.Row{
			HeaderStudentID:                   r.StudentID,
			HeaderGroup:                       string(r.Group),
			string(dataset.ColumnPreTest):     FormatScore(r.PreTest),
			string(dataset.ColumnPostTest):    FormatScore(r.PostTest),
			string(dataset.ColumnImprovement): FormatScore(r.Improvement),
		})
	}
	return table
}

// SummaryTable lays summary rows out as summary_statistics.csv
func SummaryTable(rows []SummaryRow) *dataset.Table {
	table := &dataset.Table{Headers: append([]string(nil), summaryHeaders...)}
	for _, r := range rows {
		table.Rows = append(table.Rows, dataset.Row{
			"dataset":    r.Dataset,
			"n_students": strconv.Itoa(r.N),
			"mean_score": FormatScore(r.Mean),
			"std_dev":    FormatScore(r.StdDev),
		})
	}
	return table
}

// RecordsFromTable reads records back from an analysis_ready or
// combined_scores table. Improvement is recomputed from the scores.
func RecordsFromTable(table *dataset.Table) ([]dataset.StudentRecord, error) {
	NormalizeHeaders(table)
	for _, col := range []string{HeaderStudentID, HeaderGroup, string(dataset.ColumnPreTest), string(dataset.ColumnPostTest)} {
		if !table.HasColumn(col) {
			return nil, errors.Newf(errors.CodeDataFormat, "processed table is missing column %q", col)
		}
	}

	records := make([]dataset.StudentRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		line := i + 2
		group, ok := dataset.ParseGroup(row[HeaderGroup])
		if !ok {
			return nil, errors.Newf(errors.CodeDataFormat, "line %d: unknown group %q", line, row[HeaderGroup])
		}
		pre, err := ParseScore(row[string(dataset.ColumnPreTest)])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		post, err := ParseScore(row[string(dataset.ColumnPostTest)])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		records = append(records, dataset.NewStudentRecord(row[HeaderStudentID], group, pre, post))
	}
	return records, nil
}
