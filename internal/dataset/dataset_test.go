package dataset

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edustat/adapters/excel"
	"edustat/domain/dataset"
	"edustat/internal/errors"
)

func table(headers []string, rows ...[]string) *dataset.Table {
	t := &dataset.Table{Headers: headers}
	for _, r := range rows {
		row := make(dataset.Row, len(headers))
		for i, h := range headers {
			row[h] = r[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func preTable() *dataset.Table {
	return table([]string{"student_id", "total_score", "group"},
		[]string{"S1", "60", "control"},
		[]string{"S2", "70", "control"},
		[]string{"S3", "0", "experimental"},
		[]string{"S4", "65", "Experimental"},
		[]string{"S5", "55", "control"},
	)
}

func postControlTable() *dataset.Table {
	return table([]string{"student_id", "total_score"},
		[]string{"S1", "72"},
		[]string{"S2", "NA"},
		[]string{"S9", "80"},
	)
}

func postExperimentalTable() *dataset.Table {
	return table([]string{"istudent_id", "total_score"},
		[]string{"S3", "50"},
		[]string{"S4", "85"},
	)
}

func sheets(t *testing.T) *Sheets {
	t.Helper()
	s, err := ParseSheets(preTable(), postControlTable(), postExperimentalTable())
	require.NoError(t, err)
	return s
}

func TestParseScoreSheet_FixesStudentIDTypo(t *testing.T) {
	s, err := ParseScoreSheet(RawPostExperimental, postExperimentalTable(), false)
	require.NoError(t, err)
	require.Len(t, s.Rows, 2)
	assert.Equal(t, "S3", s.Rows[0].StudentID)
	assert.Equal(t, 85.0, s.Rows[1].Score)
}

func TestParseScoreSheet_MissingValues(t *testing.T) {
	s, err := ParseScoreSheet(RawPostControl, postControlTable(), false)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.Rows[1].Score))
	assert.Equal(t, 1, s.MissingCells)
	assert.Equal(t, []float64{72, 80}, s.Scores())
}

func TestParseScoreSheet_Errors(t *testing.T) {
	tests := []struct {
		name  string
		table *dataset.Table
		group bool
	}{
		{"missing column", table([]string{"student_id"}, []string{"S1"}), false},
		{"missing group column", postControlTable(), true},
		{"non-numeric score", table([]string{"student_id", "total_score"}, []string{"S1", "abc"}), false},
		{"duplicate id", table([]string{"student_id", "total_score"}, []string{"S1", "1"}, []string{"S1", "2"}), false},
		{"empty id", table([]string{"student_id", "total_score"}, []string{" ", "1"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScoreSheet("test", tt.table, tt.group)
			require.Error(t, err)
			assert.Equal(t, errors.CodeDataFormat, errors.GetCode(err))
		})
	}
}

func TestParseScore(t *testing.T) {
	v, err := ParseScore(" 42.5 ")
	require.NoError(t, err)
	assert.Equal(t, 42.5, v)

	for _, missing := range []string{"", "NA", "nan", "NULL", "n/a"} {
		v, err := ParseScore(missing)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(v), missing)
	}

	_, err = ParseScore("Inf")
	assert.ErrorIs(t, err, errors.ErrDataFormat)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "", FormatScore(math.NaN()))
	assert.Equal(t, "12", FormatScore(12))
	assert.Equal(t, "0.1", FormatScore(0.1))
}

func TestAssemble_LeftJoin(t *testing.T) {
	result, err := Assemble(sheets(t))
	require.NoError(t, err)
	require.Len(t, result.Records, 5)

	byID := map[string]dataset.StudentRecord{}
	for _, r := range result.Records {
		byID[r.StudentID] = r
	}

	s1 := byID["S1"]
	assert.Equal(t, dataset.GroupControl, s1.Group)
	assert.Equal(t, 12.0, s1.Improvement)
	assert.InDelta(t, 20.0, s1.ImprovementPercentage, 1e-9)

	assert.True(t, math.IsNaN(byID["S2"].PostTest), "NA post-test stays missing")
	assert.True(t, math.IsNaN(byID["S2"].Improvement))
	assert.True(t, math.IsNaN(byID["S5"].PostTest), "no post-test row")

	// A zero pre-test score is replaced by 0.1 in the percentage
	s3 := byID["S3"]
	assert.Equal(t, dataset.GroupExperimental, s3.Group)
	assert.InDelta(t, 50/0.1*100, s3.ImprovementPercentage, 1e-6)

	assert.Equal(t, dataset.GroupExperimental, byID["S4"].Group)

	// S9 has no pre-test record
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "1 post-test scores")
}

func TestAssemble_PreservesRosterOrder(t *testing.T) {
	result, err := Assemble(sheets(t))
	require.NoError(t, err)

	ids := make([]string, 0, len(result.Records))
	for _, r := range result.Records {
		ids = append(ids, r.StudentID)
	}
	assert.Equal(t, []string{"S1", "S2", "S3", "S4", "S5"}, ids)
}

func TestAssemble_Errors(t *testing.T) {
	t.Run("unknown group", func(t *testing.T) {
		pre := table([]string{"student_id", "total_score", "group"}, []string{"S1", "60", "placebo"})
		s, err := ParseSheets(pre, postControlTable(), postExperimentalTable())
		require.NoError(t, err)
		_, err = Assemble(s)
		assert.ErrorIs(t, err, errors.ErrDataFormat)
	})

	t.Run("student in both post files", func(t *testing.T) {
		postExp := table([]string{"student_id", "total_score"}, []string{"S1", "90"})
		s, err := ParseSheets(preTable(), postControlTable(), postExp)
		require.NoError(t, err)
		_, err = Assemble(s)
		assert.ErrorIs(t, err, errors.ErrDataFormat)
	})
}

func TestAssemble_GroupMismatchWarns(t *testing.T) {
	postExp := table([]string{"student_id", "total_score"}, []string{"S5", "90"})
	s, err := ParseSheets(preTable(), postControlTable(), postExp)
	require.NoError(t, err)

	result, err := Assemble(s)
	require.NoError(t, err)
	assert.Len(t, result.Warnings, 2)
	for _, r := range result.Records {
		if r.StudentID == "S5" {
			assert.Equal(t, dataset.GroupControl, r.Group)
			assert.Equal(t, 90.0, r.PostTest)
		}
	}
}

func TestValidate(t *testing.T) {
	report := Validate(sheets(t))

	require.Len(t, report.Files, 3)
	assert.Equal(t, FileReport{Name: RawPostExperimental, Students: 2, MinScore: 50, MaxScore: 85}, report.Files[2])
	assert.Equal(t, 5, report.Files[0].Students)
	assert.Equal(t, 0.0, report.Files[0].MinScore)
	assert.Equal(t, 70.0, report.Files[0].MaxScore)
	assert.Equal(t, 1, report.Files[1].Missing)
	assert.Equal(t, 3, report.GroupCounts[dataset.GroupControl])
	assert.Equal(t, 2, report.GroupCounts[dataset.GroupExperimental])
	assert.True(t, report.OK())
}

func TestValidate_UnknownGroup(t *testing.T) {
	pre := table([]string{"student_id", "total_score", "group"}, []string{"S1", "60", "placebo"})
	s, err := ParseSheets(pre, postControlTable(), postExperimentalTable())
	require.NoError(t, err)

	report := Validate(s)
	assert.Equal(t, 1, report.UnknownGroups)
	assert.False(t, report.OK())
}

func TestClean(t *testing.T) {
	result, err := Assemble(sheets(t))
	require.NoError(t, err)

	cleaned, report := Clean(result.Records)
	require.Len(t, cleaned, 3)
	for _, r := range cleaned {
		assert.True(t, r.Complete())
		assert.Equal(t, r.PostTest-r.PreTest, r.Improvement)
	}
	assert.Equal(t, 3, report.Before[dataset.GroupControl])
	assert.Equal(t, 1, report.After[dataset.GroupControl])
	assert.Equal(t, 2, report.After[dataset.GroupExperimental])
	assert.Equal(t, 2, report.MissingPost)
	assert.Equal(t, 2, report.Dropped())

	// The input is untouched
	assert.Len(t, result.Records, 5)
}

func TestSummaryStatistics(t *testing.T) {
	rows := SummaryStatistics(sheets(t))
	require.Len(t, rows, 3)

	assert.Equal(t, LabelPreTest, rows[0].Dataset)
	assert.Equal(t, 5, rows[0].N)
	assert.InDelta(t, 50.0, rows[0].Mean, 1e-9)

	// N counts rows, the moments skip the missing score
	assert.Equal(t, 3, rows[1].N)
	assert.InDelta(t, 76.0, rows[1].Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(32), rows[1].StdDev, 1e-9)
}

func TestGroupScoresAndPairs(t *testing.T) {
	result, err := Assemble(sheets(t))
	require.NoError(t, err)

	assert.Equal(t, []float64{60, 70, 55}, []float64(GroupScores(result.Records, dataset.GroupControl, dataset.ColumnPreTest)))
	assert.Equal(t, []float64{72}, []float64(GroupScores(result.Records, dataset.GroupControl, dataset.ColumnPostTest)))
	assert.Equal(t, []float64{50, 20}, []float64(GroupScores(result.Records, dataset.GroupExperimental, dataset.ColumnImprovement)))

	pre, post := PairedScores(result.Records, dataset.GroupExperimental)
	assert.Equal(t, []float64{0, 65}, []float64(pre))
	assert.Equal(t, []float64{50, 85}, []float64(post))

	counts := CountByGroup(result.Records)
	assert.Equal(t, 3, counts[dataset.GroupControl])
}

func TestRecordsFromTable_RoundTrip(t *testing.T) {
	result, err := Assemble(sheets(t))
	require.NoError(t, err)

	back, err := RecordsFromTable(AnalysisTable(result.Records))
	require.NoError(t, err)
	require.Len(t, back, len(result.Records))
	for i := range back {
		assertSameRecord(t, result.Records[i], back[i])
	}
}

func TestRecordsFromTable_Errors(t *testing.T) {
	_, err := RecordsFromTable(table([]string{"student_id", "group"}, []string{"S1", "control"}))
	assert.ErrorIs(t, err, errors.ErrDataFormat)

	bad := AnalysisTable([]dataset.StudentRecord{dataset.NewStudentRecord("S1", dataset.GroupControl, 1, 2)})
	bad.Rows[0][HeaderGroup] = "other"
	_, err = RecordsFromTable(bad)
	assert.ErrorIs(t, err, errors.ErrDataFormat)
}

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStore_PrepareRoundTrip(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw")
	writeCSV(t, filepath.Join(raw, "pre_test_scores.csv"),
		"student_id,total_score,group\nS1,60,control\nS2,70,control\nS3,65,experimental\nS4,62,experimental\n")
	writeCSV(t, filepath.Join(raw, "post_test_control.csv"), "student_id,total_score\nS1,72\nS2,\n")
	writeCSV(t, filepath.Join(raw, "post_test_experimental.csv"), "istudent_id,total_score\nS3,88\nS4,79\n")

	ctx := context.Background()
	store := NewStore(dir, excel.NewDataReader(), excel.NewDataWriter())

	s, err := store.LoadSheets(ctx)
	require.NoError(t, err)
	result, err := Assemble(s)
	require.NoError(t, err)
	require.NoError(t, store.WriteProcessed(ctx, result.Records, SummaryStatistics(s)))

	for _, name := range []string{CombinedScoresFile, AnalysisReadyFile, SummaryStatisticsFile, SummaryWorkbookFile} {
		assert.FileExists(t, ProcessedPath(dir, name))
	}

	back, err := store.LoadRecords(ctx, AnalysisReadyFile)
	require.NoError(t, err)
	require.Len(t, back, 4)
	for i := range back {
		assertSameRecord(t, result.Records[i], back[i])
	}

	cleaned, _ := Clean(back)
	require.NoError(t, store.WriteCleaned(ctx, cleaned))
	again, err := store.LoadRecords(ctx, CleanedFile)
	require.NoError(t, err)
	assert.Len(t, again, 3)
}

func TestStore_MissingRawFile(t *testing.T) {
	store := NewStore(t.TempDir(), excel.NewDataReader(), excel.NewDataWriter())
	_, err := store.LoadSheets(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestLocateRawFiles_PrefersCSV(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw")
	for _, name := range []string{"pre_test_scores.csv", "pre_test_scores.xlsx", "post_test_control.xlsx", "post_test_experimental.csv"} {
		writeCSV(t, filepath.Join(raw, name), "x\n")
	}

	files, err := LocateRawFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(raw, "pre_test_scores.csv"), files.PreTest)
	assert.Equal(t, filepath.Join(raw, "post_test_control.xlsx"), files.PostControl)
}

func assertSameRecord(t *testing.T, want, got dataset.StudentRecord) {
	t.Helper()
	assert.Equal(t, want.StudentID, got.StudentID)
	assert.Equal(t, want.Group, got.Group)
	sameFloat(t, want.PreTest, got.PreTest)
	sameFloat(t, want.PostTest, got.PostTest)
	sameFloat(t, want.Improvement, got.Improvement)
}

func sameFloat(t *testing.T, want, got float64) {
	t.Helper()
	if math.IsNaN(want) {
		assert.True(t, math.IsNaN(got))
		return
	}
	assert.Equal(t, want, got)
}
