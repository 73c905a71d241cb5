package dataset

import (
	"math"
	"strconv"
	"strings"

	"edustat/domain/dataset"
	"edustat/internal/errors"
)

// Raw file headers
const (
	HeaderStudentID      = "student_id"
	HeaderTotalScore     = "total_score"
	HeaderGroup          = "group"
	headerStudentIDTypo  = "istudent_id"
	HeaderImprovementPct = "improvement_percentage"
)

// missingTokens are cell values read as a missing score
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// ScoreRow is one parsed row of a raw score file
type ScoreRow struct {
	StudentID string
	Score     float64 // NaN when missing
	Group     string  // raw label, empty for post-test files
}

// ScoreSheet is a parsed raw score file
type ScoreSheet struct {
	Name string
	Rows []ScoreRow
	// MissingCells counts empty or NA cells over every column
	MissingCells int
}

// Scores returns the non-missing scores in file order
func (s *ScoreSheet) Scores() []float64 {
	out := make([]float64, 0, len(s.Rows))
	for _, r := range s.Rows {
		if !math.IsNaN(r.Score) {
			out = append(out, r.Score)
		}
	}
	return out
}

// NormalizeHeaders fixes the known istudent_id typo in exported sheets
func NormalizeHeaders(table *dataset.Table) {
	if !table.HasColumn(HeaderStudentID) && table.HasColumn(headerStudentIDTypo) {
		table.RenameColumn(headerStudentIDTypo, HeaderStudentID)
	}
}

// ParseScoreSheet parses a raw file with student_id and total_score
// columns, plus group when withGroup is set. Student ids must be unique.
func ParseScoreSheet(name string, table *dataset.Table, withGroup bool) (*ScoreSheet, error) {
	NormalizeHeaders(table)

	required := []string{HeaderStudentID, HeaderTotalScore}
	if withGroup {
		required = append(required, HeaderGroup)
	}
	for _, col := range required {
		if !table.HasColumn(col) {
			return nil, errors.Newf(errors.CodeDataFormat, "%s: missing column %q", name, col)
		}
	}

	sheet := &ScoreSheet{Name: name, Rows: make([]ScoreRow, 0, len(table.Rows))}
	seen := make(map[string]int, len(table.Rows))

	for i, row := range table.Rows {
		line := i + 2 // header is line 1
		for _, h := range table.Headers {
			if isMissing(row[h]) {
				sheet.MissingCells++
			}
		}

		id := strings.TrimSpace(row[HeaderStudentID])
		if id == "" {
			return nil, errors.Newf(errors.CodeDataFormat, "%s line %d: empty student id", name, line)
		}
		if prev, dup := seen[id]; dup {
			return nil, errors.Newf(errors.CodeDataFormat,
				"%s line %d: duplicate student id %q (first seen on line %d)", name, line, id, prev)
		}
		seen[id] = line

		score, err := ParseScore(row[HeaderTotalScore])
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", name, line)
		}

		parsed := ScoreRow{StudentID: id, Score: score}
		if withGroup {
			parsed.Group = strings.TrimSpace(row[HeaderGroup])
		}
		sheet.Rows = append(sheet.Rows, parsed)
	}
	return sheet, nil
}

// ParseScore reads a score cell. Missing markers yield NaN; anything else
// that is not a finite number is a DATA_FORMAT error.
func ParseScore(cell string) (float64, error) {
	if isMissing(cell) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.Newf(errors.CodeDataFormat, "score %q is not a number", cell)
	}
	return v, nil
}

// FormatScore writes a score the way ParseScore reads it back. NaN is
// written as an empty cell.
func FormatScore(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isMissing(cell string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(cell))]
}
