package report

import (
	"fmt"

	"edustat/app"
	"edustat/domain/dataset"
	ds "edustat/internal/dataset"
)

// Validation lays out the raw data validation report
func Validation(v ds.ValidationReport) *Document {
	d := newDocument("Data Validation Report")

	d.section("Raw Files")
	var rows [][]string
	for _, f := range v.Files {
		rows = append(rows, []string{
			f.Name,
			fmt.Sprintf("%d", f.Students),
			fmt.Sprintf("%s to %s", num(f.MinScore, 1), num(f.MaxScore, 1)),
			fmt.Sprintf("%d", f.Missing),
		})
	}
	d.table([]string{"File", "Students", "Score range", "Missing values"}, rows)

	d.section("Group Distribution")
	var lines []string
	for _, g := range dataset.Groups {
		lines = append(lines, fmt.Sprintf("%s group: %d students", g.Title(), v.GroupCounts[g]))
	}
	if v.UnknownGroups > 0 {
		lines = append(lines, fmt.Sprintf("Unknown group label: %d students", v.UnknownGroups))
	}
	d.para(lines...)
	return d
}

// Prepared lays out the outcome of writing the processed files
func Prepared(r *app.PrepareResult) *Document {
	d := Validation(r.Validation)
	d.title = "Processed Data Report"
	d.section("Summary Statistics")
	d.table(summaryHeaders(), summaryRows(r.Summary))
	if len(r.Warnings) > 0 {
		d.section("Warnings")
		d.para(r.Warnings...)
	}
	d.section("Files Written")
	d.para(ds.CombinedScoresFile, ds.AnalysisReadyFile, ds.SummaryStatisticsFile, ds.SummaryWorkbookFile)
	return d
}

func summaryHeaders() []string {
	return []string{"Dataset", "Students", "Mean", "Std dev"}
}

func summaryRows(rows []ds.SummaryRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.Dataset, fmt.Sprintf("%d", r.N), num(r.Mean, 2), num(r.StdDev, 2)})
	}
	return out
}

// Cleaned lays out the before/after counts of a cleaning pass
func Cleaned(c ds.CleanReport) *Document {
	d := newDocument("Data Cleaning Report")
	var rows [][]string
	for _, g := range dataset.Groups {
		rows = append(rows, []string{g.Title(), fmt.Sprintf("%d", c.Before[g]), fmt.Sprintf("%d", c.After[g])})
	}
	d.table([]string{"Group", "Before", "After"}, rows)
	d.para(
		fmt.Sprintf("Missing post-test scores: %d", c.MissingPost),
		fmt.Sprintf("Records removed: %d", c.Dropped()),
		"Saved: "+ds.CleanedFile,
	)
	return d
}

// Reproduction lays out the step summary of a reproduction run followed
// by the study report when the analysis step succeeded
func Reproduction(r *app.ReproduceResult) *Document {
	d := newDocument("Reproduction Summary")
	var rows [][]string
	for _, s := range r.Steps {
		status := "ok"
		switch {
		case s.Skipped:
			status = "skipped"
		case !s.Success:
			status = "failed: " + s.Error
		}
		rows = append(rows, []string{s.Name, status})
	}
	d.table([]string{"Step", "Status"}, rows)
	d.para(fmt.Sprintf("%d/%d steps completed successfully", r.Succeeded(), len(r.Steps)))
	if len(r.Figures) > 0 {
		d.section("Figures")
		d.para(r.Figures...)
	}

	if r.Report != nil {
		study := Study(r.Report)
		d.blocks = append(d.blocks, heading{level: 2, title: study.title})
		d.blocks = append(d.blocks, study.blocks...)
	}
	return d
}
