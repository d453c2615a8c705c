/*
Package export writes grid tables as xlsx workbooks and CSV.

PURPOSE:
  The engine's results are named tables (grid.Sheet). This package turns a
  list of them into a workbook with one worksheet per table, a bold header
  row and sized columns, and reads such workbooks back for consolidation.
  CSV output covers the day-indexed record table (dynamic columns) and the
  fixed-shape stats, daily trend and summary rows.

VALUE TYPES:
  Numbers stay numbers in the workbook: int, float64 and decimal.Decimal
  values are written as numeric cells, everything else as text.

SEE ALSO:
  - grid/record.go: Table, Sheet, FormatValue
  - export/csv.go: CSV writers
  - consolidate/: reads month workbooks with ReadWorkbook
*/
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/grid"
	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned when a workbook would have no worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

const (
	maxSheetName = 31
	minColWidth  = 10
	maxColWidth  = 50
	defaultSheet = "Sheet1"
)

var sheetNameReplacer = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")",
)

// =============================================================================
// WRITE
// =============================================================================

// Workbook renders sheets into an in-memory xlsx file.
func Workbook(sheets []grid.Sheet) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := WriteWorkbook(buf, sheets); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteWorkbook writes sheets as an xlsx file, one worksheet each, in order.
func WriteWorkbook(w io.Writer, sheets []grid.Sheet) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	names := make(map[string]bool)
	keepDefault := false
	for i, sheet := range sheets {
		name := uniqueName(SheetName(sheet.Name), names)
		if name == defaultSheet {
			keepDefault = true
		}
		idx, err := f.NewSheet(name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, name, sheet.Table, headerStyle); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", name, err)
		}
	}
	if !keepDefault {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to delete default sheet: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, table *grid.Table, headerStyle int) error {
	if table == nil {
		table = grid.NewTable()
	}

	widths := make([]int, len(table.Columns))
	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
		widths[i] = utf8.RuneCountInString(c)
	}
	if len(header) == 0 {
		return nil
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return err
	}

	for r, rec := range table.Records {
		row := make([]any, len(table.Columns))
		for i, c := range table.Columns {
			v, _ := rec.Get(c)
			row[i] = cellValue(v)
			widths[i] = max(widths[i], utf8.RuneCountInString(rec.Text(c)))
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(min(max(w+2, minColWidth), maxColWidth))
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return err
		}
	}
	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellValue maps a record value to something excelize writes natively.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, int, int64, float64, bool:
		return x
	case decimal.Decimal:
		return x.InexactFloat64()
	default:
		return grid.FormatValue(x)
	}
}

// SheetName makes name usable as a worksheet name.
func SheetName(name string) string {
	name = strings.TrimSpace(sheetNameReplacer.Replace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Sheet"
	}
	if utf8.RuneCountInString(name) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	return name
}

// uniqueName appends " (2)", " (3)", ... until name is unused. Worksheet
// names compare case-insensitively.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// =============================================================================
// READ
// =============================================================================

// ReadWorkbook reads every worksheet as a table. The first row of each sheet
// is the header; blank header cells get a "Column_N" name. Values are text.
func ReadWorkbook(r io.Reader) ([]grid.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []grid.Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		sheets = append(sheets, grid.Sheet{Name: name, Table: rowsTable(rows)})
	}
	return sheets, nil
}

func rowsTable(rows [][]string) *grid.Table {
	if len(rows) == 0 {
		return grid.NewTable()
	}
	cols := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		c = strings.TrimSpace(c)
		if c == "" {
			c = fmt.Sprintf("Column_%d", i+1)
		}
		cols[i] = c
	}
	table := grid.NewTable(cols...)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := grid.NewRecord()
		for i, c := range cols {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			rec.Set(c, v)
		}
		table.Append(rec)
	}
	return table
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
