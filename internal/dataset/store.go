package dataset

import (
	"context"

	"edustat/domain/dataset"
	"edustat/internal/errors"
	"edustat/ports"
)

// Store reads raw sheets and reads/writes processed files under a data directory
type Store struct {
	dataDir string
	reader  ports.TableReader
	writer  ports.TableWriter
}

// NewStore creates a store rooted at dataDir
func NewStore(dataDir string, reader ports.TableReader, writer ports.TableWriter) *Store {
	return &Store{dataDir: dataDir, reader: reader, writer: writer}
}

// DataDir returns the root data directory
func (s *Store) DataDir() string {
	return s.dataDir
}

// LoadSheets locates, reads and parses the three raw files
func (s *Store) LoadSheets(ctx context.Context) (*Sheets, error) {
	files, err := LocateRawFiles(s.dataDir)
	if err != nil {
		return nil, err
	}

	tables := make([]*dataset.Table, 0, 3)
	for _, path := range []string{files.PreTest, files.PostControl, files.PostExperimental} {
		table, err := s.reader.ReadTable(ctx, path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		tables = append(tables, table)
	}
	return ParseSheets(tables[0], tables[1], tables[2])
}

// WriteProcessed writes combined_scores.csv, analysis_ready.csv,
// summary_statistics.csv and the analysis_summary.xlsx workbook
func (s *Store) WriteProcessed(ctx context.Context, records []dataset.StudentRecord, summary []SummaryRow) error {
	combined := CombinedTable(records)
	analysis := AnalysisTable(records)
	stats := SummaryTable(summary)

	for _, out := range []struct {
		name  string
		table *dataset.Table
	}{
		{CombinedScoresFile, combined},
		{AnalysisReadyFile, analysis},
		{SummaryStatisticsFile, stats},
	} {
		if err := s.writer.WriteCSV(ctx, ProcessedPath(s.dataDir, out.name), out.table); err != nil {
			return err
		}
	}

	return s.writer.WriteWorkbook(ctx, ProcessedPath(s.dataDir, SummaryWorkbookFile), []dataset.NamedTable{
		{Name: "summary_statistics", Table: stats},
		{Name: "combined_scores", Table: combined},
		{Name: "analysis_ready", Table: analysis},
	})
}

// WriteCleaned writes analysis_ready_cleaned.csv
func (s *Store) WriteCleaned(ctx context.Context, records []dataset.StudentRecord) error {
	return s.writer.WriteCSV(ctx, ProcessedPath(s.dataDir, CleanedFile), AnalysisTable(records))
}

// LoadRecords reads records from a processed file such as analysis_ready.csv
func (s *Store) LoadRecords(ctx context.Context, name string) ([]dataset.StudentRecord, error) {
	path := ProcessedPath(s.dataDir, name)
	table, err := s.reader.ReadTable(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	records, err := RecordsFromTable(table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return records, nil
}
