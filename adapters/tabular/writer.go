package tabular

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"goetl/domain/core"
	"goetl/domain/dataset"
	"goetl/internal"
)

// DataWriter serializes a Dataset as CSV, or as a workbook for .xlsx paths
type DataWriter struct {
	logger *internal.Logger
}

// NewDataWriter creates a writer; a nil logger falls back to the default logger
func NewDataWriter(logger *internal.Logger) *DataWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataWriter{logger: logger}
}

// Write replaces the file at path with a header row and one row per record.
// No index column is written.
func (w *DataWriter) Write(ctx context.Context, ds *dataset.Dataset, path string) error {
	if err := ctx.Err(); err != nil {
		return core.NewSaveError(path, err)
	}

	var err error
	switch fileType(path) {
	case "xlsx":
		err = w.writeExcel(ds, path)
	default:
		err = w.writeCSV(ds, path)
	}
	if err != nil {
		return core.NewSaveError(path, err)
	}
	w.logger.Debug("[DataWriter] wrote %s to %s", ds.Shape(), path)
	return nil
}

func (w *DataWriter) writeCSV(ds *dataset.Dataset, path string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(out)
	writer := csv.NewWriter(bw)

	if err := writer.Write(ds.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, ds.Cols())
	for i := 0; i < ds.Rows(); i++ {
		for j, col := range ds.Columns {
			record[j] = cellText(col, i)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

func (w *DataWriter) writeExcel(ds *dataset.Dataset, path string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, ds.Cols())
	for j, name := range ds.Names() {
		header[j] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]interface{}, ds.Cols())
	for i := 0; i < ds.Rows(); i++ {
		for j, col := range ds.Columns {
			row[j] = cellValue(col, i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.SaveAs(path)
}
