package dataset

import (
	"math"

	"edustat/domain/dataset"
)

// FileReport describes one raw file
type FileReport struct {
	Name     string  `json:"name"`
	Students int     `json:"students"`
	MinScore float64 `json:"min_score"`
	MaxScore float64 `json:"max_score"`
	Missing  int     `json:"missing_values"`
}

// ValidationReport summarises the raw files before they are merged
type ValidationReport struct {
	Files       []FileReport          `json:"files"`
	GroupCounts map[dataset.Group]int `json:"group_counts"`
	// UnknownGroups counts pre-test rows whose group label is neither
	// control nor experimental
	UnknownGroups int `json:"unknown_groups"`
}

// OK reports whether every file has students and every group label is known
func (r ValidationReport) OK() bool {
	if r.UnknownGroups > 0 {
		return false
	}
	for _, f := range r.Files {
		if f.Students == 0 {
			return false
		}
	}
	return true
}

// Validate reports student counts, group distribution, score ranges and
// missing values for the raw sheets. Score ranges are NaN for a file
// without any score.
func Validate(sheets *Sheets) ValidationReport {
	report := ValidationReport{GroupCounts: make(map[dataset.Group]int, len(dataset.Groups))}
	for _, g := range dataset.Groups {
		report.GroupCounts[g] = 0
	}

	for _, sheet := range []*ScoreSheet{sheets.PreTest, sheets.PostControl, sheets.PostExperimental} {
		report.Files = append(report.Files, fileReport(sheet))
	}

	for _, row := range sheets.PreTest.Rows {
		if g, ok := dataset.ParseGroup(row.Group); ok {
			report.GroupCounts[g]++
		} else {
			report.UnknownGroups++
		}
	}
	return report
}

func fileReport(sheet *ScoreSheet) FileReport {
	fr := FileReport{
		Name:     sheet.Name,
		Students: len(sheet.Rows),
		MinScore: math.NaN(),
		MaxScore: math.NaN(),
		Missing:  sheet.MissingCells,
	}
	for _, s := range sheet.Scores() {
		if math.IsNaN(fr.MinScore) || s < fr.MinScore {
			fr.MinScore = s
		}
		if math.IsNaN(fr.MaxScore) || s > fr.MaxScore {
			fr.MaxScore = s
		}
	}
	return fr
}
