// Package workbook reads input records from one worksheet of an xlsx file
// and writes the annotated results back out.
package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"chmatch/internal/records"
)

// ErrSheetNotFound is returned when the requested worksheet is missing.
var ErrSheetNotFound = errors.New("worksheet not found")

// Sheet is a loaded worksheet. Records carry their 1-based spreadsheet row.
type Sheet struct {
	Name    string
	Headers []string
	Records []records.Record
}

// Load reads sheet from the workbook at path. The first row is the header
// row; rows with no values are skipped. Cells are read raw so dates arrive
// as Excel serial numbers.
func Load(path, sheet string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheet, strings.Join(f.GetSheetList(), ", "))
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	out := &Sheet{Name: sheet}
	if len(rows) == 0 {
		return out, nil
	}
	out.Headers = rows[0]
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		out.Records = append(out.Records, records.New(i+2, out.Headers, cells))
	}
	return out, nil
}

func blank(cells []string) bool {
	return !slices.ContainsFunc(cells, func(c string) bool {
		return strings.TrimSpace(c) != ""
	})
}

// OutputRow is one data row to write. Values are keyed by header.
type OutputRow struct {
	Values map[string]any
	Review bool
}

// Output describes a worksheet to write.
type Output struct {
	Sheet      string
	Headers    []string
	Rows       []OutputRow
	ReviewFill string
}

// Save writes out to a new workbook at path, filling every cell of review
// rows with out.ReviewFill.
func Save(path string, out Output) error {
	if out.Sheet == "" {
		out.Sheet = "Sheet1"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), out.Sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(out.Headers))
	for i, h := range out.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(out.Sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	reviewStyle := 0
	if out.ReviewFill != "" {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#" + strings.TrimPrefix(out.ReviewFill, "#")}},
		})
		if err != nil {
			return fmt.Errorf("create review style: %w", err)
		}
		reviewStyle = style
	}

	lastCol := max(len(out.Headers), 1)
	for i, row := range out.Rows {
		rowNum := i + 2
		cells := make([]any, len(out.Headers))
		for j, h := range out.Headers {
			cells[j] = row.Values[h]
		}
		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(out.Sheet, start, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
		if row.Review && reviewStyle != 0 {
			end, _ := excelize.CoordinatesToCellName(lastCol, rowNum)
			if err := f.SetCellStyle(out.Sheet, start, end, reviewStyle); err != nil {
				return fmt.Errorf("style row %d: %w", rowNum, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
