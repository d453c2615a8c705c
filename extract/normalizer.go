/*
normalizer.go - Align employee records into a day-indexed batch

PURPOSE:
  Records pulled from different pages have different code counts. The
  normalizer pads every record to the longest one so Day_N means the same
  calendar slot for every employee.

PAID TIME:
  Some exports append a per-employee total-hours column after the days.
  The last code of each of the first PaidTimeSampleSize records is
  inspected (records without codes are not sampled). When at least
  PaidTimeMinMatches look like a clock value, the trailing column is split
  off as PaidTime and the day count drops by one. Historical report shapes
  depend on this threshold, so it is fixed.

OUTPUT COLUMNS (Batch.Table):
  Employee, Personnel_Number, Scheduling_Row,
  [Shift, Shift_Timings]   trip chart only
  [Paid_Time]              trip chart always, simple when detected
  Day_1 .. Day_N
*/
package extract

import (
	"strconv"

	"github.com/warp/attendance-engine/grid"
)

const (
	PaidTimeSampleSize = 5
	PaidTimeMinMatches = 3
)

// NormalizedRecord is an employee record with exactly MaxDays day slots.
type NormalizedRecord struct {
	EmployeeRecord
	Days     []string `json:"days"`
	PaidTime string   `json:"paid_time,omitempty"`
}

// Batch is a set of normalized records of one layout.
type Batch struct {
	Layout           Layout             `json:"layout"`
	Records          []NormalizedRecord `json:"records"`
	MaxDays          int                `json:"max_days"`
	PaidTimeDetected bool               `json:"paid_time_detected"`
	DayLabels        []string           `json:"day_labels,omitempty"`
}

// Normalize aligns a parse result into a batch.
func Normalize(res ParseResult) Batch {
	b := NormalizeRecords(res.Layout, res.Records)
	b.DayLabels = res.DayLabels
	return b
}

// NormalizeRecords aligns records into a batch.
func NormalizeRecords(layout Layout, records []EmployeeRecord) Batch {
	b := Batch{Layout: layout, Records: []NormalizedRecord{}}
	if len(records) == 0 {
		return b
	}

	for _, r := range records {
		b.MaxDays = max(b.MaxDays, len(r.RawCodes))
	}
	if DetectPaidTime(records) {
		b.PaidTimeDetected = true
		b.MaxDays--
	}

	for _, r := range records {
		codes := r.RawCodes
		nr := NormalizedRecord{EmployeeRecord: r}
		if b.PaidTimeDetected && len(codes) > b.MaxDays {
			nr.PaidTime = codes[len(codes)-1]
			codes = codes[:b.MaxDays]
		}
		nr.Days = pad(codes, b.MaxDays)
		b.Records = append(b.Records, nr)
	}
	return b
}

// DetectPaidTime applies the trailing paid-time heuristic.
func DetectPaidTime(records []EmployeeRecord) bool {
	matches := 0
	for _, r := range records[:min(len(records), PaidTimeSampleSize)] {
		if len(r.RawCodes) == 0 {
			continue
		}
		if LooksLikeClock(r.RawCodes[len(r.RawCodes)-1]) {
			matches++
		}
	}
	return matches >= PaidTimeMinMatches
}

// LooksLikeClock reports whether s holds a colon directly preceded by a digit.
func LooksLikeClock(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] == ':' && s[i-1] >= '0' && s[i-1] <= '9' {
			return true
		}
	}
	return false
}

// Renormalize pads every record to the batch width again. It is a no-op on
// any batch produced by Normalize.
func (b Batch) Renormalize() Batch {
	out := b
	out.Records = make([]NormalizedRecord, len(b.Records))
	for i, r := range b.Records {
		r.Days = pad(r.Days, b.MaxDays)
		out.Records[i] = r
	}
	return out
}

// DayColumn returns the column name for the zero-based day index.
func DayColumn(i int) string {
	return "Day_" + strconv.Itoa(i+1)
}

// DayColumns returns Day_1 .. Day_MaxDays.
func (b Batch) DayColumns() []string {
	cols := make([]string, b.MaxDays)
	for i := range cols {
		cols[i] = DayColumn(i)
	}
	return cols
}

// Label returns the date label for a day index, falling back to the column name.
func (b Batch) Label(i int) string {
	if i < len(b.DayLabels) && b.DayLabels[i] != "" {
		return b.DayLabels[i]
	}
	return DayColumn(i)
}

// Table renders the day-indexed record table.
func (b Batch) Table() *grid.Table {
	cols := []string{"Employee", "Personnel_Number", "Scheduling_Row"}
	if b.Layout == LayoutTripChart {
		cols = append(cols, "Shift", "Shift_Timings")
	}
	withPaid := b.Layout == LayoutTripChart || b.PaidTimeDetected
	if withPaid {
		cols = append(cols, "Paid_Time")
	}
	table := grid.NewTable(append(cols, b.DayColumns()...)...)

	for _, r := range b.Records {
		rec := grid.NewRecord().
			Set("Employee", r.Employee).
			Set("Personnel_Number", r.PersonnelNumber).
			Set("Scheduling_Row", r.SchedulingRow)
		if b.Layout == LayoutTripChart {
			rec.Set("Shift", r.Shift).Set("Shift_Timings", r.ShiftTimings)
		}
		if withPaid {
			rec.Set("Paid_Time", r.PaidTime)
		}
		for i, code := range r.Days {
			rec.Set(DayColumn(i), code)
		}
		table.Append(rec)
	}
	return table
}

func pad(codes []string, width int) []string {
	out := make([]string, width)
	copy(out, codes)
	return out
}
