/*
Package extract turns extracted PDF table grids into employee records and
aligns them into a fixed-width, day-indexed batch.

PURPOSE:
  Roster PDFs are exported by department systems into tables that are
  loosely structured: header rows repeat on every page, names wrap over
  several lines, page breaks leave ragged rows. The parser locates the
  data rows, pulls out the identity columns and the per-day codes, and
  skips everything else without reporting it as an error.

LAYOUTS:
  simple:     [name, personnel_number, scheduling_row, day_1 .. day_N]
  trip_chart: [name, personnel_number, scheduling_row, shift block, day_1 .. day_N]

  The trip-chart shift block is one column unless the header context marks
  more contiguous SHIFT/TIMING columns. Any "HH:MM-HH:MM" found in the block
  becomes ShiftTimings; the rest of the text is the shift label.

DATA START:
  The first row whose first cell is not a header token (EMPLOYEE, NONE or
  blank) starts the data. Up to two rows above it are header context, used
  for date labels and shift-block detection.

SKIPS (never errors):
  - tables with fewer than 3 rows
  - tables without a data row
  - rows with fewer than 4 cells
  - rows whose normalized name is blank or a header token

SEE ALSO:
  - normalizer.go: aligns records into a batch
  - attendance/: classification and statistics over a batch
*/
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/warp/attendance-engine/grid"
)

// =============================================================================
// LAYOUT
// =============================================================================

// Layout selects the column semantics of a roster table.
type Layout string

const (
	LayoutSimple    Layout = "simple"
	LayoutTripChart Layout = "trip_chart"
)

// ErrUnknownLayout is returned for an unrecognized layout name.
var ErrUnknownLayout = errors.New("unknown table layout")

// ParseLayout validates a layout name. Names are exact ("simple",
// "trip_chart"); blank means simple.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutSimple:
		return LayoutSimple, nil
	case LayoutTripChart:
		return LayoutTripChart, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLayout, s)
	}
}

const (
	minTableRows  = 3
	minRowCells   = 4
	identityCols  = 3
	headerContext = 2
	weekdayHeader = 0
	dateNumHeader = 1
)

var headerTokens = map[string]bool{
	"EMPLOYEE": true,
	"":         true,
	"NONE":     true,
}

var timingPattern = regexp.MustCompile(`\d{1,2}:\d{2}\s*-\s*\d{1,2}:\d{2}`)

// =============================================================================
// RECORDS
// =============================================================================

// EmployeeRecord is one accepted table row.
type EmployeeRecord struct {
	Employee        string   `json:"employee"`
	PersonnelNumber string   `json:"personnel_number"`
	SchedulingRow   string   `json:"scheduling_row"`
	RawCodes        []string `json:"raw_codes"`
	Shift           string   `json:"shift,omitempty"`
	ShiftTimings    string   `json:"shift_timings,omitempty"`
}

// ParseResult is the outcome of parsing a set of tables.
type ParseResult struct {
	Layout        Layout           `json:"layout"`
	Records       []EmployeeRecord `json:"records"`
	DayLabels     []string         `json:"day_labels,omitempty"`
	TablesSeen    int              `json:"tables_seen"`
	TablesSkipped int              `json:"tables_skipped"`
	RowsAccepted  int              `json:"rows_accepted"`
	RowsSkipped   int              `json:"rows_skipped"`
}

// =============================================================================
// PARSER
// =============================================================================

// Parser extracts employee records from raw tables.
type Parser struct {
	Layout Layout

	// ShiftColumns fixes the width of the trip-chart shift block.
	// Zero detects it from the header context (minimum one column).
	ShiftColumns int
}

// NewParser creates a parser for the given layout.
func NewParser(layout Layout) *Parser {
	return &Parser{Layout: layout}
}

// Parse extracts records from every table, in order.
func (p *Parser) Parse(tables []grid.RawTable) ParseResult {
	res := ParseResult{Layout: p.layout(), Records: []EmployeeRecord{}}
	for _, table := range tables {
		res.TablesSeen++
		records, labels, skipped, ok := p.parseTable(table)
		res.RowsSkipped += skipped
		if !ok {
			res.TablesSkipped++
			continue
		}
		res.Records = append(res.Records, records...)
		res.RowsAccepted += len(records)
		if len(res.DayLabels) == 0 && hasLabel(labels) {
			res.DayLabels = labels
		}
	}
	return res
}

// ParseTable extracts records from a single table.
func (p *Parser) ParseTable(table grid.RawTable) []EmployeeRecord {
	records, _, _, _ := p.parseTable(table)
	return records
}

func (p *Parser) layout() Layout {
	if p.Layout == "" {
		return LayoutSimple
	}
	return p.Layout
}

// parseTable returns the accepted records, the day labels, the number of
// skipped rows and whether the table contributed anything at all.
func (p *Parser) parseTable(table grid.RawTable) ([]EmployeeRecord, []string, int, bool) {
	if len(table) < minTableRows {
		return nil, nil, 0, false
	}

	start := dataStart(table)
	if start < 0 {
		return nil, nil, 0, false
	}
	header := table[max(0, start-headerContext):start]

	dayStart := identityCols
	shiftWidth := 0
	if p.layout() == LayoutTripChart {
		shiftWidth = p.shiftBlockWidth(header)
		dayStart += shiftWidth
	}

	var records []EmployeeRecord
	skipped := 0
	for _, row := range table[start:] {
		rec, ok := parseRow(row, dayStart, shiftWidth)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, nil, skipped, false
	}
	return records, dayLabels(header, dayStart), skipped, true
}

// dataStart returns the index of the first non-header row, or -1.
func dataStart(table grid.RawTable) int {
	for i, row := range table {
		if len(row) == 0 {
			continue
		}
		if !isHeaderToken(row[0].String()) {
			return i
		}
	}
	return -1
}

func isHeaderToken(s string) bool {
	return headerTokens[strings.ToUpper(strings.TrimSpace(s))]
}

func parseRow(row grid.Row, dayStart, shiftWidth int) (EmployeeRecord, bool) {
	if len(row) < minRowCells {
		return EmployeeRecord{}, false
	}

	name := NormalizeName(row[0].String())
	if isHeaderToken(name) {
		return EmployeeRecord{}, false
	}

	rec := EmployeeRecord{
		Employee:        name,
		PersonnelNumber: row[1].Trimmed(),
		SchedulingRow:   row[2].Trimmed(),
		RawCodes:        []string{},
	}
	if shiftWidth > 0 {
		rec.Shift, rec.ShiftTimings = splitShiftBlock(row, identityCols, shiftWidth)
	}
	for i := dayStart; i < len(row); i++ {
		rec.RawCodes = append(rec.RawCodes, NormalizeCode(row[i].String()))
	}
	return rec, true
}

// NormalizeName turns embedded line breaks into spaces and collapses runs
// of whitespace.
func NormalizeName(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCode removes embedded line breaks and trims.
func NormalizeCode(s string) string {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	return strings.TrimSpace(s)
}

// =============================================================================
// TRIP-CHART SHIFT BLOCK
// =============================================================================

func (p *Parser) shiftBlockWidth(header []grid.Row) int {
	if p.ShiftColumns > 0 {
		return p.ShiftColumns
	}
	width := 0
	for col := identityCols; isShiftHeader(header, col); col++ {
		width++
	}
	return max(1, width)
}

// isShiftHeader reports whether any header row labels col as a shift or
// timing column. Date headers carry digits and never qualify.
func isShiftHeader(header []grid.Row, col int) bool {
	for _, row := range header {
		text := strings.ToUpper(row.At(col).Trimmed())
		if text == "" || strings.IndexFunc(text, unicode.IsDigit) >= 0 {
			continue
		}
		if strings.Contains(text, "SHIFT") || strings.Contains(text, "TIMING") {
			return true
		}
	}
	return false
}

// splitShiftBlock returns the shift label and the first timing found.
func splitShiftBlock(row grid.Row, from, width int) (string, string) {
	var timing string
	var labels []string
	for col := from; col < from+width; col++ {
		text := row.At(col).String()
		if text == "" {
			continue
		}
		if timing == "" {
			if m := timingPattern.FindString(text); m != "" {
				timing = strings.TrimSpace(m)
				text = strings.ReplaceAll(text, timing, "")
			}
		}
		if label := strings.Join(strings.Fields(text), " "); label != "" {
			labels = append(labels, label)
		}
	}
	return strings.Join(labels, " "), timing
}

// =============================================================================
// DATE HEADERS
// =============================================================================

// dayLabels reads a weekday row and a date-number row from the header
// context. The result is aligned with the day columns; a column without a
// usable weekday/date pair gets "".
func dayLabels(header []grid.Row, dayStart int) []string {
	if len(header) < headerContext {
		return nil
	}
	days, nums := header[weekdayHeader], header[dateNumHeader]

	var labels []string
	for col := dayStart; col < len(days); col++ {
		day := days.At(col).Trimmed()
		num := nums.At(col).Trimmed()
		if day != "" && num != "" && isDigits(num) {
			labels = append(labels, day+"-"+num)
		} else {
			labels = append(labels, "")
		}
	}
	return labels
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func hasLabel(labels []string) bool {
	for _, l := range labels {
		if l != "" {
			return true
		}
	}
	return false
}
