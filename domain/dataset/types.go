package dataset

import (
	"math"
	"strings"
)

// ============================================================================
// RAW TABLES
// ============================================================================

// Row is one data row keyed by trimmed header name
type Row map[string]string

// Table is a header row plus data rows as read from a CSV or xlsx file
type Table struct {
	Headers []string
	Rows    []Row
}

// HasColumn reports whether the table has a header with the given name
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// RenameColumn renames a header and the matching key in every row
func (t *Table) RenameColumn(from, to string) {
	for i, h := range t.Headers {
		if h == from {
			t.Headers[i] = to
		}
	}
	for _, row := range t.Rows {
		if v, ok := row[from]; ok {
			row[to] = v
			delete(row, from)
		}
	}
}

// NamedTable pairs a table with the sheet or file name it is written under
type NamedTable struct {
	Name  string
	Table *Table
}

// ============================================================================
// STUDY RECORDS
// ============================================================================

// Group identifies the cohort a student was taught in
type Group string

const (
	GroupControl      Group = "control"
	GroupExperimental Group = "experimental"
)

// Groups lists the cohorts in report order
var Groups = []Group{GroupControl, GroupExperimental}

// ParseGroup normalises a group label
func ParseGroup(label string) (Group, bool) {
	switch Group(strings.ToLower(strings.TrimSpace(label))) {
	case GroupControl:
		return GroupControl, true
	case GroupExperimental:
		return GroupExperimental, true
	}
	return "", false
}

// Title returns the capitalised label used in figures and reports
func (g Group) Title() string {
	if g == "" {
		return ""
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}

// Column names a per-student score column
type Column string

const (
	ColumnPreTest     Column = "pre_test_score"
	ColumnPostTest    Column = "post_test_score"
	ColumnImprovement Column = "score_improvement"
)

// Columns lists the score columns in report order
var Columns = []Column{ColumnPreTest, ColumnPostTest, ColumnImprovement}

// ParseColumn accepts a column name or its short alias (pre, post, improvement)
func ParseColumn(name string) (Column, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pre", string(ColumnPreTest):
		return ColumnPreTest, true
	case "post", string(ColumnPostTest):
		return ColumnPostTest, true
	case "improvement", string(ColumnImprovement):
		return ColumnImprovement, true
	}
	return "", false
}

// Label returns a human-readable column name
func (c Column) Label() string {
	switch c {
	case ColumnPreTest:
		return "Pre-test"
	case ColumnPostTest:
		return "Post-test"
	case ColumnImprovement:
		return "Improvement"
	}
	return string(c)
}

// StudentRecord is one student's merged pre/post scores. Missing scores
// are NaN; Improvement is NaN whenever either score is missing.
type StudentRecord struct {
	StudentID             string
	Group                 Group
	PreTest               float64
	PostTest              float64
	Improvement           float64
	ImprovementPercentage float64
}

// NewStudentRecord builds a record and derives the improvement fields.
// A zero pre-test score is replaced by 0.1 when computing the percentage.
func NewStudentRecord(id string, group Group, pre, post float64) StudentRecord {
	r := StudentRecord{StudentID: id, Group: group, PreTest: pre, PostTest: post}
	r.Recompute()
	return r
}

// Recompute derives Improvement and ImprovementPercentage from the scores
func (r *StudentRecord) Recompute() {
	r.Improvement = r.PostTest - r.PreTest
	base := r.PreTest
	if base == 0 {
		base = 0.1
	}
	r.ImprovementPercentage = r.Improvement / base * 100
}

// Value returns the score held in the given column
func (r StudentRecord) Value(c Column) float64 {
	switch c {
	case ColumnPreTest:
		return r.PreTest
	case ColumnPostTest:
		return r.PostTest
	case ColumnImprovement:
		return r.Improvement
	}
	return math.NaN()
}

// Complete reports whether both scores are present and finite
func (r StudentRecord) Complete() bool {
	return isFinite(r.PreTest) && isFinite(r.PostTest)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
