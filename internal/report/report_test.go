package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edustat/app"
	"edustat/domain/dataset"
	ds "edustat/internal/dataset"
	"edustat/internal/errors"
	"edustat/internal/testkit"
)

func studyReport(t *testing.T, records []dataset.StudentRecord) *app.StudyReport {
	t.Helper()
	analyzer := app.NewStudyAnalyzer(nil, nil, "", app.AnalysisOptions{Alpha: 0.05})
	r, err := analyzer.Analyze(context.Background(), records)
	require.NoError(t, err)
	return r
}

func cohort() []dataset.StudentRecord {
	config := testkit.DefaultCohortConfig()
	config.MissingPostRate = 0
	return testkit.NewCohortGenerator(config).Generate().Records
}

func TestStudy_Text(t *testing.T) {
	r := studyReport(t, cohort())
	out := string(Study(r).Text())

	assert.Contains(t, out, "Run ID: "+r.RunID)
	assert.Contains(t, out, "welch-satterthwaite")
	for _, section := range []string{"DESCRIPTIVE STATISTICS", "INDEPENDENT T-TESTS", "MANN-WHITNEY U", "NORMALITY (SHAPIRO-WILK)", "PAIRED T-TESTS", "INTERPRETATION GUIDE"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "Cohen's d 0.8 = large effect")
	assert.Contains(t, out, "Improvement effect size:")
	assert.NotContains(t, out, "COMPARISONS NOT COMPUTED")

	for _, line := range strings.Split(out, "\n") {
		assert.False(t, strings.HasSuffix(line, " "), "trailing space in %q", line)
	}
}

func TestStudy_Markdown(t *testing.T) {
	out := string(Study(studyReport(t, cohort())).Markdown())

	assert.True(t, strings.HasPrefix(out, "# Study Analysis Report\n"))
	assert.Contains(t, out, "## Independent t-tests")
	assert.Contains(t, out, "| Score | Diff | 95% CI |")
	assert.Contains(t, out, "| Pre-test |")
}

func TestStudy_HTML(t *testing.T) {
	out := string(Study(studyReport(t, cohort())).HTML())

	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Study Analysis Report")
}

func TestStudy_ListsComparisonErrors(t *testing.T) {
	records := []dataset.StudentRecord{
		dataset.NewStudentRecord("S1", dataset.GroupControl, 50, 60),
		dataset.NewStudentRecord("S2", dataset.GroupControl, 52, 65),
	}
	out := string(Study(studyReport(t, records)).Text())

	assert.Contains(t, out, "COMPARISONS NOT COMPUTED")
	assert.Contains(t, out, "not computed")
	assert.Contains(t, out, "experimental sample is empty")
}

func TestDocument_Write(t *testing.T) {
	d := newDocument("Title")
	d.table([]string{"a", "bb"}, [][]string{{"long value", "x"}})

	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf, "text"))
	assert.Equal(t, "Title\n"+strings.Repeat("=", 70)+"\n  a           bb\n  --------------\n  long value  x\n", buf.String())

	buf.Reset()
	require.NoError(t, d.Write(&buf, "markdown"))
	assert.Equal(t, "# Title\n\n| a | bb |\n| --- | --- |\n| long value | x |\n", buf.String())

	err := d.Write(&buf, "pdf")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestValidationAndCleaned(t *testing.T) {
	v := ds.ValidationReport{
		Files: []ds.FileReport{{Name: ds.RawPreTest, Students: 41, MinScore: 20, MaxScore: 88, Missing: 1}},
		GroupCounts: map[dataset.Group]int{
			dataset.GroupControl:      21,
			dataset.GroupExperimental: 20,
		},
		UnknownGroups: 2,
	}
	out := string(Validation(v).Text())
	assert.Contains(t, out, "20.0 to 88.0")
	assert.Contains(t, out, "Control group: 21 students")
	assert.Contains(t, out, "Unknown group label: 2 students")

	records, report := ds.Clean(cohort())
	require.NotEmpty(t, records)
	out = string(Cleaned(report).Text())
	assert.Contains(t, out, "Records removed: 0")
}

func TestReproduction(t *testing.T) {
	r := &app.ReproduceResult{
		Steps: []app.StepResult{
			{Name: "prepare", Success: true},
			{Name: "clean", Error: "boom"},
			{Name: "analyze", Skipped: true},
		},
		Report: studyReport(t, cohort()),
	}
	out := string(Reproduction(r).Text())
	assert.Contains(t, out, "failed: boom")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "1/3 steps completed successfully")
	assert.Contains(t, out, "STUDY ANALYSIS REPORT")
}
