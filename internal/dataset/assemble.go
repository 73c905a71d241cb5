package dataset

import (
	"fmt"
	"log"
	"math"

	"edustat/domain/dataset"
	"edustat/internal/errors"
)

// Sheets holds the three parsed raw files of a study
type Sheets struct {
	PreTest          *ScoreSheet
	PostControl      *ScoreSheet
	PostExperimental *ScoreSheet
}

// ParseSheets parses the raw tables. Only the pre-test file carries the
// group column.
func ParseSheets(pre, postControl, postExperimental *dataset.Table) (*Sheets, error) {
	preSheet, err := ParseScoreSheet(RawPreTest, pre, true)
	if err != nil {
		return nil, err
	}
	controlSheet, err := ParseScoreSheet(RawPostControl, postControl, false)
	if err != nil {
		return nil, err
	}
	experimentalSheet, err := ParseScoreSheet(RawPostExperimental, postExperimental, false)
	if err != nil {
		return nil, err
	}
	return &Sheets{
		PreTest:          preSheet,
		PostControl:      controlSheet,
		PostExperimental: experimentalSheet,
	}, nil
}

// AssembleResult is the outcome of merging the raw sheets
type AssembleResult struct {
	Records  []dataset.StudentRecord
	Warnings []string
}

// Assemble left-joins post-test scores onto the pre-test roster by
// student id. Every pre-test student yields one record in roster order;
// students without a post-test score keep a NaN post score. Post-test
// ids missing from the roster are dropped with a warning. A score filed
// under the other group's sheet is kept and reported as a warning; the
// roster's group label wins.
func Assemble(sheets *Sheets) (*AssembleResult, error) {
	type postScore struct {
		score float64
		group dataset.Group
	}

	post := make(map[string]postScore, len(sheets.PostControl.Rows)+len(sheets.PostExperimental.Rows))
	for _, src := range []struct {
		sheet *ScoreSheet
		group dataset.Group
	}{
		{sheets.PostControl, dataset.GroupControl},
		{sheets.PostExperimental, dataset.GroupExperimental},
	} {
		for _, row := range src.sheet.Rows {
			if prev, dup := post[row.StudentID]; dup {
				return nil, errors.Newf(errors.CodeDataFormat,
					"student %q has post-test scores for both %s and %s", row.StudentID, prev.group, src.group)
			}
			post[row.StudentID] = postScore{score: row.Score, group: src.group}
		}
	}

	result := &AssembleResult{Records: make([]dataset.StudentRecord, 0, len(sheets.PreTest.Rows))}
	warn := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		log.Printf("[Dataset] Warning: %s", msg)
		result.Warnings = append(result.Warnings, msg)
	}

	matched := make(map[string]bool, len(post))
	for _, row := range sheets.PreTest.Rows {
		group, ok := dataset.ParseGroup(row.Group)
		if !ok {
			return nil, errors.Newf(errors.CodeDataFormat,
				"student %q has unknown group %q", row.StudentID, row.Group)
		}

		postTest := math.NaN()
		if p, found := post[row.StudentID]; found {
			matched[row.StudentID] = true
			postTest = p.score
			if p.group != group {
				warn("student %q is in the %s group but has a %s post-test score", row.StudentID, group, p.group)
			}
		}
		result.Records = append(result.Records, dataset.NewStudentRecord(row.StudentID, group, row.Score, postTest))
	}

	if unmatched := len(post) - len(matched); unmatched > 0 {
		warn("%d post-test scores have no pre-test record", unmatched)
	}

	log.Printf("[Dataset] Assembled %d records (%d with post-test scores)", len(result.Records), len(matched))
	return result, nil
}
