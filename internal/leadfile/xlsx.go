package leadfile

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospect-cli/internal/model"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Leads"

// ReadXLSX reads leads from the first worksheet of the workbook at path.
// The first row must be a header.
func ReadXLSX(path string) ([]model.Lead, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "leadfile: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("leadfile: workbook has no sheets")
	}

	// Re-encode the sheet as CSV so both formats share one header mapping.
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	width := 0
	for i, row := range f.Sheets[0].Rows {
		cells := rowToStrings(row)
		if i == 0 {
			width = len(cells)
		}
		// Trailing blank cells are not always stored.
		for len(cells) < width {
			cells = append(cells, "")
		}
		if len(cells) > width {
			cells = cells[:width]
		}
		if err := w.Write(cells); err != nil {
			return nil, eris.Wrap(err, "leadfile: buffer xlsx row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "leadfile: buffer xlsx")
	}
	return ReadCSV(&buf)
}

// WriteXLSX writes records to a single-sheet workbook at path.
func WriteXLSX(path string, records []Record) error {
	b, err := encode(records)
	if err != nil {
		return err
	}
	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		return eris.Wrap(err, "leadfile: reread encoded rows")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "leadfile: add sheet")
	}
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}
	return eris.Wrap(f.Save(path), "leadfile: save xlsx")
}

// ReadFile reads leads from a CSV or XLSX file, chosen by extension.
func ReadFile(path string) ([]model.Lead, error) {
	if isXLSX(path) {
		return ReadXLSX(path)
	}
	return ReadCSVFile(path)
}

// WriteFile writes records to a CSV or XLSX file, chosen by extension.
func WriteFile(path string, records []Record) error {
	if isXLSX(path) {
		return WriteXLSX(path, records)
	}
	return WriteCSVFile(path, records)
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
