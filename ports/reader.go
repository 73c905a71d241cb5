package ports

import (
	"context"

	"edustat/domain/dataset"
)

// TableReader loads a tabular file into memory
type TableReader interface {
	ReadTable(ctx context.Context, path string) (*dataset.Table, error)
}

// TableWriter persists tables as CSV files or multi-sheet workbooks
type TableWriter interface {
	WriteCSV(ctx context.Context, path string, table *dataset.Table) error
	WriteWorkbook(ctx context.Context, path string, sheets []dataset.NamedTable) error
}
