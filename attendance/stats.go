/*
stats.go - Per-employee attendance statistics

PURPOSE:
  Compute folds one normalized record into an EmployeeStats value. Every
  non-empty day slot is classified and counted in exactly one bucket:
  weekly off, leave, absent or present. Unknown codes are kept out of the
  buckets and out of TotalDays (they are tallied in UnknownDays for
  diagnostics), so the four buckets always sum to TotalDays.

ATTENDANCE RATE:
  expected = total - weekly_off - leave
  rate     = present / expected * 100, two decimal places
  rate     = 0 when expected <= 0

  Absences stay in the denominator. Leave and weekly off are neutral.

SEE ALSO:
  - code.go: classification
  - ranking.go, trend.go, summary.go: batch operations
*/
package attendance

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/extract"
)

// RatePlaces is the number of decimal places kept on attendance rates.
const RatePlaces = 2

var hundred = decimal.NewFromInt(100)

// EmployeeStats summarizes one employee over one batch.
type EmployeeStats struct {
	Employee        string          `json:"employee"`
	PersonnelNumber string          `json:"personnel_number"`
	TotalDays       int             `json:"total_days"`
	PresentDays     int             `json:"present_days"`
	AbsentDays      int             `json:"absent_days"`
	LeaveDays       int             `json:"leave_days"`
	WeeklyOffDays   int             `json:"weekly_off_days"`
	UnknownDays     int             `json:"unknown_days"`
	AttendanceRate  decimal.Decimal `json:"attendance_rate"`
	ShiftCounts     map[string]int  `json:"shift_counts"`
	Stations        []string        `json:"stations"`
}

// ExpectedWorkingDays is the attendance-rate denominator.
func (s EmployeeStats) ExpectedWorkingDays() int {
	return s.TotalDays - s.WeeklyOffDays - s.LeaveDays
}

// MostCommonShift returns the letter worked most often, or "" if none.
// Ties go to the earlier letter in Shifts.
func (s EmployeeStats) MostCommonShift() string {
	best, bestCount := "", 0
	for _, sh := range Shifts {
		if c := s.ShiftCounts[sh.Letter]; c > bestCount {
			best, bestCount = sh.Letter, c
		}
	}
	return best
}

// Compute builds the statistics for one record.
func Compute(r extract.NormalizedRecord) EmployeeStats {
	s := EmployeeStats{
		Employee:        r.Employee,
		PersonnelNumber: r.PersonnelNumber,
		ShiftCounts:     make(map[string]int),
		Stations:        []string{},
	}
	stations := make(map[string]bool)

	for _, raw := range r.Days {
		code := Classify(raw)
		switch code.Kind {
		case KindEmpty:
			continue
		case KindUnknown:
			s.UnknownDays++
			continue
		case KindWeeklyOff:
			s.WeeklyOffDays++
		case KindLeave:
			s.LeaveDays++
		case KindAbsent:
			s.AbsentDays++
		case KindShift:
			s.PresentDays++
			s.ShiftCounts[code.Shift]++
			if code.Station != "" {
				stations[code.Station] = true
			}
		}
		s.TotalDays++
	}

	for st := range stations {
		s.Stations = append(s.Stations, st)
	}
	sort.Strings(s.Stations)
	s.AttendanceRate = Rate(s.PresentDays, s.ExpectedWorkingDays())
	return s
}

// ComputeAll builds statistics for every record of a batch, in order.
func ComputeAll(b extract.Batch) []EmployeeStats {
	out := make([]EmployeeStats, len(b.Records))
	for i, r := range b.Records {
		out[i] = Compute(r)
	}
	return out
}

// Rate returns present/expected*100 rounded to RatePlaces, or zero when
// expected is not positive.
func Rate(present, expected int) decimal.Decimal {
	if expected <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(present)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(expected)), RatePlaces)
}
