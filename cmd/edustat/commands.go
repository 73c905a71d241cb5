package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"edustat/app"
	"edustat/internal/config"
	"edustat/internal/errors"
	"edustat/internal/plotting"
	"edustat/internal/report"
	"edustat/internal/testkit"
)

func newValidateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the raw score files before processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, cfg, err := setup(flags)
			if err != nil {
				return err
			}

			fmt.Printf("🔍 Validating raw files in %s...\n", cfg.Paths.DataDir)
			validation, err := analyzer.Validate(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.Validation(validation).Write(os.Stdout, config.FormatText); err != nil {
				return err
			}
			if !validation.OK() {
				return errors.Newf(errors.CodeDataFormat, "%d students have an unknown group label", validation.UnknownGroups)
			}
			fmt.Println("✅ Raw files look good")
			return nil
		},
	}
}

func newPrepareCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Merge the raw files into the processed analysis files",
		Long: `Validate and merge the raw pre-test and post-test files, then write
processed/combined_scores.csv, processed/analysis_ready.csv,
processed/summary_statistics.csv and processed/analysis_summary.xlsx.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, cfg, err := setup(flags)
			if err != nil {
				return err
			}

			fmt.Printf("📦 Preparing processed data in %s...\n", cfg.Paths.DataDir)
			result, err := analyzer.Prepare(cmd.Context())
			if err != nil {
				return err
			}
			for _, w := range result.Warnings {
				flags.logger.Warn("%s", w)
			}
			if err := report.Prepared(result).Write(os.Stdout, config.FormatText); err != nil {
				return err
			}
			fmt.Printf("✅ Prepared %d student records\n", len(result.Records))
			return nil
		},
	}
}

func newCleanCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Drop records without both scores and save the cleaned file",
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, _, err := setup(flags)
			if err != nil {
				return err
			}

			fmt.Println("🧹 Cleaning analysis-ready data...")
			cleaned, cleanReport, err := analyzer.Clean(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.Cleaned(cleanReport).Write(os.Stdout, config.FormatText); err != nil {
				return err
			}
			fmt.Printf("✅ %d complete records saved\n", len(cleaned))
			return nil
		},
	}
}

func newAnalyzeCmd(flags *globalFlags) *cobra.Command {
	var equalVariance bool
	var alpha float64
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare the control and experimental groups",
		Long: `Run descriptive statistics, independent t-tests, Mann-Whitney U tests,
Shapiro-Wilk normality checks and paired t-tests on the cleaned records.

Example: edustat analyze --equal-variance --alpha 0.01 --format markdown --output report.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("equal-variance") {
				cfg.Analysis.EqualVariance = equalVariance
			}
			if cmd.Flags().Changed("alpha") {
				cfg.Analysis.Alpha = alpha
			}
			if cmd.Flags().Changed("format") {
				cfg.Report.Format = format
			}

			analyzer, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			records, err := analyzer.LoadRecords(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "📊 Analyzing %d students (alpha=%.3g)...\n", len(records), cfg.Analysis.Alpha)
			studyReport, err := analyzer.Analyze(ctx, records)
			if err != nil {
				return err
			}
			return writeReport(output, cfg.Report.Format, report.Study(studyReport))
		},
	}

	cmd.Flags().BoolVar(&equalVariance, "equal-variance", false, "Use the pooled-variance t-test instead of Welch's")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level")
	cmd.Flags().StringVar(&format, "format", config.FormatText, "Report format: text|markdown|html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}

func newPlotCmd(flags *globalFlags) *cobra.Command {
	var figure string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the publication figures",
		Long: `Render every figure into the figures directory, or a single one with
--figure (` + strings.Join(plotting.Figures, ", ") + `).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, cfg, err := setup(flags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			records, err := analyzer.LoadRecords(ctx)
			if err != nil {
				return err
			}

			start := time.Now()
			if figure != "" {
				fmt.Printf("🎨 Rendering %s into %s...\n", figure, cfg.Paths.FiguresDir)
				path, err := analyzer.RenderFigure(ctx, records, figure)
				if err != nil {
					return err
				}
				fmt.Printf("✅ Saved %s in %v\n", path, time.Since(start).Round(time.Millisecond))
				return nil
			}

			fmt.Printf("🎨 Rendering figures into %s...\n", cfg.Paths.FiguresDir)
			paths, err := analyzer.RenderFigures(ctx, records)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Printf("   Saved: %s\n", p)
			}
			fmt.Printf("✅ %d figures rendered in %v\n", len(paths), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&figure, "figure", "", "Render only this figure file")
	return cmd
}

func newReproduceCmd(flags *globalFlags) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "reproduce",
		Short: "Run prepare, clean, analyze and plot in sequence",
		Long: `Reproduce the full study from the raw files. Each step is reported
separately; a failing step does not stop the steps that do not depend on it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				cfg.Report.Format = format
			}
			analyzer, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stderr, "🔁 Reproducing study analysis...")
			result := analyzer.Reproduce(cmd.Context())
			for _, step := range result.Steps {
				fmt.Fprintln(os.Stderr, "   "+step.String())
				if !step.Success && !step.Skipped {
					flags.logger.Warn("Step %s failed: %s", step.Name, step.Error)
				}
			}
			if err := writeReport(output, cfg.Report.Format, report.Reproduction(result)); err != nil {
				return err
			}

			if result.Succeeded() < len(result.Steps) {
				return errors.Newf(errors.CodeInternalError,
					"%d/%d steps completed successfully", result.Succeeded(), len(result.Steps))
			}
			fmt.Fprintln(os.Stderr, "🎉 Reproduction complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", config.FormatText, "Report format: text|markdown|html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}

func newGenerateCmd(flags *globalFlags) *cobra.Command {
	var seed int64
	var control, experimental int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic cohort as raw files for trying the pipeline",
		Long: `Generate deterministic synthetic pre-test and post-test files under
<data-dir>/raw. Existing raw files are overwritten.

Example: edustat generate --data-dir /tmp/demo --seed 7 && edustat reproduce --data-dir /tmp/demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if control < 1 || experimental < 1 {
				return errors.InvalidInput("both groups need at least one student")
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			genConfig := testkit.DefaultCohortConfig()
			genConfig.Seed = seed
			genConfig.ControlCount = control
			genConfig.ExperimentalCount = experimental

			cohort := testkit.NewCohortGenerator(genConfig).Generate()
			if err := cohort.WriteRaw(cmd.Context(), cfg.Paths.DataDir); err != nil {
				return err
			}
			fmt.Printf("✅ Wrote %d synthetic students to %s\n",
				len(cohort.Records), filepath.Join(cfg.Paths.DataDir, "raw"))
			return nil
		},
	}

	defaults := testkit.DefaultCohortConfig()
	cmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Random seed for deterministic generation")
	cmd.Flags().IntVar(&control, "control", defaults.ControlCount, "Number of control students")
	cmd.Flags().IntVar(&experimental, "experimental", defaults.ExperimentalCount, "Number of experimental students")
	return cmd
}

// setup loads configuration and builds the analyzer for commands without
// analysis flags of their own
func setup(flags *globalFlags) (*app.StudyAnalyzer, *config.Config, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return nil, nil, err
	}
	return analyzer, cfg, nil
}

// writeReport renders doc to path, or to stdout when path is empty
func writeReport(path, format string, doc *report.Document) error {
	var w io.Writer = os.Stdout
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory for %s", path)
		}
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", path)
		}
		defer f.Close()
		w = f
	}
	if err := doc.Write(w, format); err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "💾 Report saved to %s\n", path)
	}
	return nil
}
