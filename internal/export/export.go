// Package export writes cleaned poll tables to CSV and XLSX files and
// summarises their numeric columns.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brogergvhs/pollsmooth/internal/table"

	"github.com/xuri/excelize/v2"
)

const (
	DateHeader = "Date"
	dateLayout = "2006-01-02"
)

// Options controls the header layout of exported files.
type Options struct {
	// TwoLevel writes the top and sub labels on separate header rows.
	// Otherwise a single row of flattened names is written.
	TwoLevel bool
	// BOM prefixes CSV output with a UTF-8 byte order mark for Excel.
	BOM bool
}

// Headers returns the header rows for t, led by the date column.
func Headers(t *table.Table, opts Options) [][]string {
	if !opts.TwoLevel {
		return [][]string{append([]string{DateHeader}, t.FlatNames()...)}
	}

	top := []string{DateHeader}
	sub := []string{""}
	for _, k := range t.Columns {
		top = append(top, k.Top)
		sub = append(sub, k.Sub)
	}
	return [][]string{top, sub}
}

// Records returns the body rows as text, one per table row. Missing
// cells are empty.
func Records(t *table.Table) [][]string {
	out := make([][]string, 0, t.NumRows())
	for r, row := range t.Rows {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, indexDate(t, r))
		for _, v := range row {
			rec = append(rec, v.String())
		}
		out = append(out, rec)
	}
	return out
}

func indexDate(t *table.Table, r int) string {
	if r >= len(t.Index) || t.Index[r].IsZero() {
		return ""
	}
	return t.Index[r].Format(dateLayout)
}

// WriteCSV writes t to path, creating its directory if needed.
func WriteCSV(t *table.Table, path string, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if opts.BOM {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	w := csv.NewWriter(file)
	for _, h := range Headers(t, opts) {
		if err := w.Write(h); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, rec := range Records(t) {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

// WriteXLSX writes t to the first sheet of a new workbook. Numeric cells
// are stored as numbers.
func WriteXLSX(t *table.Table, path string, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	row := 1
	for _, h := range Headers(t, opts) {
		cells := make([]any, len(h))
		for i, s := range h {
			cells[i] = s
		}
		if err := setRow(f, sheet, row, cells); err != nil {
			return err
		}
		row++
	}

	for r, vals := range t.Rows {
		cells := make([]any, 0, len(vals)+1)
		cells = append(cells, indexDate(t, r))
		for _, v := range vals {
			switch v.Kind {
			case table.Number:
				cells = append(cells, v.Num)
			case table.Text:
				cells = append(cells, v.Str)
			default:
				cells = append(cells, nil)
			}
		}
		if err := setRow(f, sheet, row, cells); err != nil {
			return err
		}
		row++
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
