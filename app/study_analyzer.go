package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"edustat/domain/dataset"
	"edustat/domain/stats"
	"edustat/internal/analysis/comparison"
	ds "edustat/internal/dataset"
	"edustat/internal/errors"
	"edustat/internal/profiling"
	"edustat/ports"
)

// AnalysisOptions are the statistical options of a study run
type AnalysisOptions struct {
	Alpha         float64
	EqualVariance bool
}

// StudyAnalyzer runs the prepare, clean, analyze and figure steps of a
// pre/post study over one data directory
type StudyAnalyzer struct {
	store      *ds.Store
	figures    ports.FigureRenderer
	figuresDir string
	options    AnalysisOptions
	now        func() time.Time
}

// NewStudyAnalyzer creates a study analyzer. figures may be nil when no
// figures are wanted.
func NewStudyAnalyzer(store *ds.Store, figures ports.FigureRenderer, figuresDir string, options AnalysisOptions) *StudyAnalyzer {
	return &StudyAnalyzer{
		store:      store,
		figures:    figures,
		figuresDir: figuresDir,
		options:    options,
		now:        time.Now,
	}
}

// PrepareResult is the outcome of turning raw files into processed files
type PrepareResult struct {
	Validation ds.ValidationReport     `json:"validation"`
	Summary    []ds.SummaryRow         `json:"summary"`
	Records    []dataset.StudentRecord `json:"-"`
	Warnings   []string                `json:"warnings,omitempty"`
}

// Validate reads and checks the raw files without writing anything
func (s *StudyAnalyzer) Validate(ctx context.Context) (ds.ValidationReport, error) {
	sheets, err := s.store.LoadSheets(ctx)
	if err != nil {
		return ds.ValidationReport{}, err
	}
	return ds.Validate(sheets), nil
}

// Prepare validates the raw files, merges them and writes the processed files
func (s *StudyAnalyzer) Prepare(ctx context.Context) (*PrepareResult, error) {
	log.Printf("[StudyAnalyzer] Preparing processed files in %s", s.store.DataDir())

	sheets, err := s.store.LoadSheets(ctx)
	if err != nil {
		return nil, err
	}

	validation := ds.Validate(sheets)
	if !validation.OK() {
		return nil, errors.Newf(errors.CodeDataFormat,
			"raw files failed validation (%d unknown group labels)", validation.UnknownGroups)
	}

	assembled, err := ds.Assemble(sheets)
	if err != nil {
		return nil, err
	}
	summary := ds.SummaryStatistics(sheets)

	if err := s.store.WriteProcessed(ctx, assembled.Records, summary); err != nil {
		return nil, err
	}

	return &PrepareResult{
		Validation: validation,
		Summary:    summary,
		Records:    assembled.Records,
		Warnings:   assembled.Warnings,
	}, nil
}

// Clean drops incomplete records from analysis_ready.csv and writes
// analysis_ready_cleaned.csv
func (s *StudyAnalyzer) Clean(ctx context.Context) ([]dataset.StudentRecord, ds.CleanReport, error) {
	records, err := s.store.LoadRecords(ctx, ds.AnalysisReadyFile)
	if err != nil {
		return nil, ds.CleanReport{}, err
	}

	cleaned, report := ds.Clean(records)
	if err := s.store.WriteCleaned(ctx, cleaned); err != nil {
		return nil, report, err
	}
	return cleaned, report, nil
}

// LoadRecords returns the cleaned records, cleaning analysis_ready.csv in
// memory when no cleaned file has been written yet
func (s *StudyAnalyzer) LoadRecords(ctx context.Context) ([]dataset.StudentRecord, error) {
	records, err := s.store.LoadRecords(ctx, ds.CleanedFile)
	if err == nil {
		return records, nil
	}
	if errors.GetCode(err) != errors.CodeNotFound {
		return nil, err
	}

	log.Printf("[StudyAnalyzer] %s not found, cleaning %s in memory", ds.CleanedFile, ds.AnalysisReadyFile)
	records, err = s.store.LoadRecords(ctx, ds.AnalysisReadyFile)
	if err != nil {
		return nil, err
	}
	cleaned, _ := ds.Clean(records)
	return cleaned, nil
}

// Analyze computes the full study report. It only fails when there is
// nothing to analyse; individual comparisons record their own errors.
func (s *StudyAnalyzer) Analyze(ctx context.Context, records []dataset.StudentRecord) (*StudyReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.InvalidInput("no student records to analyse")
	}

	alpha := s.options.Alpha
	report := &StudyReport{
		RunID:         uuid.New().String(),
		GeneratedAt:   s.now(),
		Alpha:         alpha,
		EqualVariance: s.options.EqualVariance,
		Method:        stats.MethodFor(s.options.EqualVariance),
	}

	counts := ds.CountByGroup(records)
	for _, g := range dataset.Groups {
		desc := GroupDescriptives{Group: g, N: counts[g]}
		for _, col := range dataset.Columns {
			desc.Columns = append(desc.Columns, profileColumn(records, g, col))
		}
		report.Descriptives = append(report.Descriptives, desc)
	}

	report.Baseline = s.compareMeans(records, dataset.ColumnPreTest)
	for _, col := range []dataset.Column{dataset.ColumnPostTest, dataset.ColumnImprovement} {
		report.Comparisons = append(report.Comparisons, s.compareMeans(records, col))
		report.RankTests = append(report.RankTests, s.compareRanks(records, col))
	}

	var normal []stats.NormalityResult
	for _, col := range []dataset.Column{dataset.ColumnPostTest, dataset.ColumnImprovement} {
		for _, g := range dataset.Groups {
			check := NormalityCheck{Group: g, Column: col}
			result, err := comparison.TestNormality(ds.GroupScores(records, g, col))
			if err != nil {
				check.Error = err.Error()
			} else {
				check.Result = &result
				normal = append(normal, result)
			}
			report.Normality = append(report.Normality, check)
		}
	}
	report.Recommendation = comparison.RecommendTest(alpha, normal...)

	for _, g := range dataset.Groups {
		paired := PairedComparison{Group: g}
		pre, post := ds.PairedScores(records, g)
		result, err := comparison.PairedTTest(pre, post)
		if err != nil {
			paired.Error = err.Error()
		} else {
			paired.Result = &result
			paired.Significant = result.PValue < alpha
		}
		report.Paired = append(report.Paired, paired)
	}

	if errs := report.Errors(); len(errs) > 0 {
		log.Printf("[StudyAnalyzer] Analysis finished with %d comparison errors", len(errs))
	}
	return report, nil
}

func profileColumn(records []dataset.StudentRecord, g dataset.Group, col dataset.Column) ColumnProfile {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Group == g {
			values = append(values, r.Value(col))
		}
	}

	cp := ColumnProfile{Column: col}
	profile, err := profiling.ProfileScores(values)
	if err != nil {
		cp.Error = err.Error()
		return cp
	}
	cp.Profile = &profile
	return cp
}

func (s *StudyAnalyzer) compareMeans(records []dataset.StudentRecord, col dataset.Column) MeanComparison {
	mc := MeanComparison{Column: col}
	control := ds.GroupScores(records, dataset.GroupControl, col)
	experimental := ds.GroupScores(records, dataset.GroupExperimental, col)

	result, err := comparison.CompareMeans(control, experimental, s.options.EqualVariance)
	if err != nil {
		mc.Error = err.Error()
		return mc
	}
	mc.Result = &result
	mc.HedgesG = comparison.HedgesG(result.CohensD, len(control), len(experimental))
	mc.Magnitude = comparison.InterpretCohensD(result.CohensD)
	mc.Significant = result.Significant(s.options.Alpha)
	return mc
}

func (s *StudyAnalyzer) compareRanks(records []dataset.StudentRecord, col dataset.Column) RankComparison {
	rc := RankComparison{Column: col}
	result, err := comparison.CompareRanksMannWhitney(
		ds.GroupScores(records, dataset.GroupControl, col),
		ds.GroupScores(records, dataset.GroupExperimental, col),
	)
	if err != nil {
		rc.Error = err.Error()
		return rc
	}
	rc.Result = &result
	rc.Significant = result.PValue < s.options.Alpha
	return rc
}

// RenderFigures draws the figure set for records
func (s *StudyAnalyzer) RenderFigures(ctx context.Context, records []dataset.StudentRecord) ([]string, error) {
	if s.figures == nil {
		return nil, errors.ConfigInvalid("no figure renderer configured")
	}
	return s.figures.RenderAll(ctx, records, s.figuresDir)
}

// RenderFigure draws a single figure, named by its file name
func (s *StudyAnalyzer) RenderFigure(ctx context.Context, records []dataset.StudentRecord, name string) (string, error) {
	if s.figures == nil {
		return "", errors.ConfigInvalid("no figure renderer configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.figures.Render(records, name, s.figuresDir)
}

// StepResult is the outcome of one reproduction step
type StepResult struct {
	Name     string        `json:"name"`
	Success  bool          `json:"success"`
	Skipped  bool          `json:"skipped"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ReproduceResult collects every step of a full reproduction run
type ReproduceResult struct {
	Steps   []StepResult `json:"steps"`
	Report  *StudyReport `json:"report,omitempty"`
	Figures []string     `json:"figures,omitempty"`
}

// Succeeded counts the successful steps
func (r *ReproduceResult) Succeeded() int {
	n := 0
	for _, s := range r.Steps {
		if s.Success {
			n++
		}
	}
	return n
}

// Reproduce runs prepare, clean, analyze and figures in order. A failed
// step is recorded and later steps still run when their inputs exist.
func (s *StudyAnalyzer) Reproduce(ctx context.Context) *ReproduceResult {
	result := &ReproduceResult{}
	var records []dataset.StudentRecord

	run := func(name string, ready bool, step func() error) {
		if err := ctx.Err(); err != nil {
			result.Steps = append(result.Steps, StepResult{Name: name, Error: err.Error()})
			return
		}
		if !ready {
			log.Printf("[StudyAnalyzer] Skipping %s: inputs missing", name)
			result.Steps = append(result.Steps, StepResult{Name: name, Skipped: true})
			return
		}

		start := time.Now()
		err := step()
		sr := StepResult{Name: name, Success: err == nil, Duration: time.Since(start)}
		if err != nil {
			sr.Error = err.Error()
			log.Printf("[StudyAnalyzer] Step %s failed: %v", name, err)
		}
		result.Steps = append(result.Steps, sr)
	}

	run("prepare", true, func() error {
		_, err := s.Prepare(ctx)
		return err
	})

	run("clean", s.fileExists(ds.AnalysisReadyFile), func() error {
		cleaned, _, err := s.Clean(ctx)
		records = cleaned
		return err
	})

	if records == nil {
		if loaded, err := s.LoadRecords(ctx); err == nil {
			records = loaded
		}
	}

	run("analyze", len(records) > 0, func() error {
		report, err := s.Analyze(ctx, records)
		result.Report = report
		return err
	})

	run("figures", len(records) > 0 && s.figures != nil, func() error {
		paths, err := s.RenderFigures(ctx, records)
		result.Figures = paths
		return err
	})

	log.Printf("[StudyAnalyzer] Reproduction finished: %d/%d steps succeeded", result.Succeeded(), len(result.Steps))
	return result
}

func (s *StudyAnalyzer) fileExists(name string) bool {
	_, err := os.Stat(ds.ProcessedPath(s.store.DataDir(), name))
	return err == nil
}

// String renders a one-line step summary
func (r StepResult) String() string {
	switch {
	case r.Skipped:
		return fmt.Sprintf("%s: skipped", r.Name)
	case r.Success:
		return fmt.Sprintf("%s: ok (%s)", r.Name, r.Duration.Round(time.Millisecond))
	default:
		return fmt.Sprintf("%s: failed: %s", r.Name, r.Error)
	}
}
