package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"edustat/adapters/excel"
	"edustat/app"
	"edustat/internal"
	"edustat/internal/config"
	ds "edustat/internal/dataset"
	"edustat/internal/plotting"
)

// globalFlags holds the persistent flags shared by every subcommand
type globalFlags struct {
	dataDir    string
	figuresDir string
	plotStyle  string
	verbose    bool

	logger *internal.Logger
	envErr error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{envErr: godotenv.Load()}

	rootCmd := &cobra.Command{
		Use:   "edustat",
		Short: "Pre/post test analysis for a control vs experimental teaching study",
		Long: `Assemble raw pre-test and post-test score files, compare the control and
experimental groups, and render the report and publication figures.

Raw files are read from the data directory:
  raw/pre_test_scores, raw/post_test_control, raw/post_test_experimental (.csv or .xlsx)

Configuration is read from the environment (a .env file is loaded if present):
  EDUSTAT_DATA_DIR, EDUSTAT_FIGURES_DIR, EDUSTAT_PLOT_STYLE,
  EDUSTAT_ALPHA, EDUSTAT_EQUAL_VARIANCE, EDUSTAT_REPORT_FORMAT,
  EDUSTAT_LOG_LEVEL (ERROR|WARN|INFO|DEBUG)`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			flags.logger = internal.NewDefaultLogger()
			if flags.verbose {
				flags.logger.SetLevel(internal.LogLevelDebug)
			}
			log.SetOutput(flags.logger.ComponentWriter())
			if flags.envErr != nil {
				flags.logger.Debug("No .env file found, using system environment variables")
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Directory holding the raw and processed data (default from EDUSTAT_DATA_DIR or ./data)")
	rootCmd.PersistentFlags().StringVar(&flags.figuresDir, "figures-dir", "", "Directory figures are written to (default from EDUSTAT_FIGURES_DIR or ./figures)")
	rootCmd.PersistentFlags().StringVar(&flags.plotStyle, "plot-style", "", "YAML file overriding the figure style")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show component and debug logs")

	rootCmd.AddCommand(
		newValidateCmd(flags),
		newPrepareCmd(flags),
		newCleanCmd(flags),
		newAnalyzeCmd(flags),
		newPlotCmd(flags),
		newReproduceCmd(flags),
		newGenerateCmd(flags),
	)
	return rootCmd
}

// loadConfig reads the environment and applies flag overrides. The
// result is validated by newAnalyzer.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.dataDir != "" {
		cfg.Paths.DataDir = flags.dataDir
	}
	if flags.figuresDir != "" {
		cfg.Paths.FiguresDir = flags.figuresDir
	}
	if flags.plotStyle != "" {
		cfg.Paths.PlotStyle = flags.plotStyle
	}
	return cfg, nil
}

// newAnalyzer wires the excel adapters, the dataset store and the figure
// renderer into a StudyAnalyzer
func newAnalyzer(cfg *config.Config) (*app.StudyAnalyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	style, err := plotting.LoadStyle(cfg.Paths.PlotStyle)
	if err != nil {
		return nil, err
	}
	renderer, err := plotting.NewRenderer(style)
	if err != nil {
		return nil, err
	}

	store := ds.NewStore(cfg.Paths.DataDir, excel.NewDataReader(), excel.NewDataWriter())
	options := app.AnalysisOptions{
		Alpha:         cfg.Analysis.Alpha,
		EqualVariance: cfg.Analysis.EqualVariance,
	}
	return app.NewStudyAnalyzer(store, renderer, cfg.Paths.FiguresDir, options), nil
}
