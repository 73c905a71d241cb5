// Package dataset turns the raw score sheets of a pre/post study into
// merged per-student records and the processed files the analysis reads.
package dataset

import (
	"os"
	"path/filepath"

	"edustat/internal/errors"
)

// Raw file base names under <data>/raw
const (
	RawPreTest          = "pre_test_scores"
	RawPostControl      = "post_test_control"
	RawPostExperimental = "post_test_experimental"
)

// Processed file names under <data>/processed
const (
	CombinedScoresFile    = "combined_scores.csv"
	AnalysisReadyFile     = "analysis_ready.csv"
	CleanedFile           = "analysis_ready_cleaned.csv"
	SummaryStatisticsFile = "summary_statistics.csv"
	SummaryWorkbookFile   = "analysis_summary.xlsx"
)

// rawExtensions are tried in order when locating a raw file
var rawExtensions = []string{".csv", ".xlsx"}

// RawFiles holds the resolved paths of the three raw input files
type RawFiles struct {
	PreTest          string
	PostControl      string
	PostExperimental string
}

// LocateRawFiles finds the raw inputs under dataDir/raw. CSV wins over
// xlsx when both exist.
func LocateRawFiles(dataDir string) (RawFiles, error) {
	rawDir := filepath.Join(dataDir, "raw")
	var files RawFiles
	targets := []struct {
		base string
		dst  *string
	}{
		{RawPreTest, &files.PreTest},
		{RawPostControl, &files.PostControl},
		{RawPostExperimental, &files.PostExperimental},
	}

	for _, t := range targets {
		path, err := locate(rawDir, t.base)
		if err != nil {
			return RawFiles{}, err
		}
		*t.dst = path
	}
	return files, nil
}

func locate(dir, base string) (string, error) {
	for _, ext := range rawExtensions {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.NotFound("raw file " + filepath.Join(dir, base) + ".{csv,xlsx}")
}

// ProcessedDir returns dataDir/processed
func ProcessedDir(dataDir string) string {
	return filepath.Join(dataDir, "processed")
}

// ProcessedPath returns the path of a processed file
func ProcessedPath(dataDir, name string) string {
	return filepath.Join(ProcessedDir(dataDir), name)
}
