package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"goetl/domain/core"
	"goetl/domain/dataset"
	"goetl/internal"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DataReader loads CSV and Excel files into a Dataset
type DataReader struct {
	logger *internal.Logger
}

// NewDataReader creates a reader; a nil logger falls back to the default logger
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{logger: logger}
}

// fileType picks the parser from the extension; anything that is not a
// workbook is read as CSV
func fileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	}
	return "csv"
}

// Read loads the whole file at path and infers a type per column
func (r *DataReader) Read(ctx context.Context, path string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewLoadError(path, err)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, core.NewNotFoundError(path)
	}
	if err != nil {
		return nil, core.NewLoadError(path, err)
	}
	if info.IsDir() {
		return nil, core.NewLoadError(path, fmt.Errorf("is a directory"))
	}

	kind := fileType(path)
	r.logger.Debug("[DataReader] Starting to read %s file: %s", kind, path)

	var rows [][]string
	switch kind {
	case "xlsx":
		rows, err = r.readExcelRows(path)
	default:
		rows, err = r.readCSVRows(path)
	}
	if err != nil {
		return nil, core.NewLoadError(path, err)
	}

	ds, err := r.processRows(rows)
	if err != nil {
		return nil, core.NewLoadError(path, err)
	}
	r.logger.Debug("[DataReader] %s file processed (%d columns, %d rows)", strings.ToUpper(kind), ds.Cols(), ds.Rows())
	return ds, nil
}

// readCSVRows reads the complete CSV file into raw string rows
func (r *DataReader) readCSVRows(path string) ([][]string, error) {
	readStart := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	r.logger.Trace("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// readExcelRows reads the first sheet of a workbook
func (r *DataReader) readExcelRows(path string) ([][]string, error) {
	readStart := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	r.logger.Trace("[DataReader] sheet %q read in %.2fms (%d rows)", sheets[0], float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows converts raw string rows into typed columns
func (r *DataReader) processRows(rows [][]string) (*dataset.Dataset, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}

	headers := uniqueHeaders(rows[0])
	cells := make([][]string, len(headers))
	for j := range cells {
		cells[j] = make([]string, 0, len(rows)-1)
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) > len(headers) {
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", len(headers), i+1, len(row))
		}
		for j := range headers {
			if j < len(row) {
				cells[j] = append(cells[j], row[j])
			} else {
				cells[j] = append(cells[j], "")
			}
		}
	}

	columns := make([]*dataset.Column, len(headers))
	for j, header := range headers {
		columns[j] = InferColumn(header, cells[j])
	}
	return dataset.New(columns...)
}

// uniqueHeaders trims header names, names blank ones "Unnamed: <i>" and
// suffixes repeats with ".1", ".2", ...
func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	counts := make(map[string]int, len(raw))

	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for seen[candidate] {
			counts[name]++
			candidate = fmt.Sprintf("%s.%d", name, counts[name])
		}
		seen[candidate] = true
		headers[i] = candidate
	}
	return headers
}
