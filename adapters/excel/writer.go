package excel

import (
	"context"
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"edustat/domain/dataset"
	"edustat/internal/errors"
)

// defaultSheet is the sheet excelize creates in every new workbook
const defaultSheet = "Sheet1"

// DataWriter writes tables as CSV files or xlsx workbooks
type DataWriter struct{}

// NewDataWriter creates a new data writer
func NewDataWriter() *DataWriter {
	return &DataWriter{}
}

// WriteCSV writes a table to path, creating parent directories as needed.
// Cells missing from a row are written empty.
func (w *DataWriter) WriteCSV(ctx context.Context, path string, table *dataset.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create CSV file %s", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Headers); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, row := range table.Rows {
		if err := writer.Write(rowValues(table.Headers, row)); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrapf(err, "failed to flush CSV file %s", path)
	}

	log.Printf("[DataWriter] Wrote %s (%d rows)", path, len(table.Rows))
	return nil
}

// WriteWorkbook writes each named table to its own sheet. Numeric cells
// are stored as numbers so spreadsheet formulas work on them.
func (w *DataWriter) WriteWorkbook(ctx context.Context, path string, sheets []dataset.NamedTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(sheets) == 0 {
		return errors.InvalidInput("workbook needs at least one sheet")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return errors.Wrapf(err, "failed to name sheet %s", sheet.Name)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return errors.Wrapf(err, "failed to create sheet %s", sheet.Name)
		}
		if err := writeSheet(f, sheet.Name, sheet.Table); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	log.Printf("[DataWriter] Wrote %s (%d sheets)", path, len(sheets))
	return nil
}

func writeSheet(f *excelize.File, name string, table *dataset.Table) error {
	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return errors.Wrapf(err, "failed to write header of sheet %s", name)
	}

	for r, row := range table.Rows {
		cells := make([]interface{}, len(table.Headers))
		for i, v := range rowValues(table.Headers, row) {
			if num, err := strconv.ParseFloat(v, 64); err == nil {
				cells[i] = num
			} else {
				cells[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return errors.Wrap(err, "failed to resolve cell name")
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return errors.Wrapf(err, "failed to write row %d of sheet %s", r+2, name)
		}
	}
	return nil
}

func rowValues(headers []string, row dataset.Row) []string {
	values := make([]string, len(headers))
	for i, h := range headers {
		values[i] = row[h]
	}
	return values
}
