package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/grid"
)

// =============================================================================
// DYNAMIC TABLES
// =============================================================================

// WriteTableCSV writes a table with a header row. Column sets differ per
// batch, so this goes through encoding/csv rather than struct tags.
func WriteTableCSV(w io.Writer, table *grid.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(table.Rows()); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// =============================================================================
// FIXED-SHAPE ROWS
// =============================================================================

// StatsRow is one employee statistics line.
type StatsRow struct {
	Employee        string `csv:"Employee"`
	PersonnelNumber string `csv:"Personnel_Number"`
	TotalDays       int    `csv:"Total_Days"`
	PresentDays     int    `csv:"Present_Days"`
	AbsentDays      int    `csv:"Absent_Days"`
	LeaveDays       int    `csv:"Leave_Days"`
	WeeklyOffDays   int    `csv:"Weekly_Off"`
	UnknownDays     int    `csv:"Unknown_Days"`
	AttendanceRate  string `csv:"Attendance_Rate"`
	MostCommonShift string `csv:"Most_Common_Shift"`
}

// DailyRow is one daily trend line.
type DailyRow struct {
	Day             string `csv:"Day"`
	TotalEmployees  int    `csv:"Total_Employees"`
	Present         int    `csv:"Present"`
	Absent          int    `csv:"Absent"`
	OnLeave         int    `csv:"On_Leave"`
	WeeklyOff       int    `csv:"Weekly_Off"`
	ExpectedWorking int    `csv:"Expected_Working"`
	AttendanceRate  string `csv:"Attendance_Rate"`
}

// SummaryRow is one month summary line, in the column order of
// attendance.SummaryTable.
type SummaryRow struct {
	Month              string `csv:"Month"`
	TotalEmployees     int    `csv:"Total_Employees"`
	AverageRate        string `csv:"Average_Attendance_Rate"`
	MedianRate         string `csv:"Median_Attendance_Rate"`
	MinRate            string `csv:"Min_Attendance_Rate"`
	MaxRate            string `csv:"Max_Attendance_Rate"`
	TotalPresentDays   int    `csv:"Total_Present_Days"`
	TotalAbsentDays    int    `csv:"Total_Absent_Days"`
	TotalLeaveDays     int    `csv:"Total_Leave_Days"`
	TotalWeeklyOffs    int    `csv:"Total_Weekly_Offs"`
	PerfectAttendance  int    `csv:"Employees_Perfect_Attendance"`
	Below80Percent     int    `csv:"Employees_Below_80_Percent"`
	Below90Percent     int    `csv:"Employees_Below_90_Percent"`
	AtOrAbove95Percent int    `csv:"Employees_Above_95_Percent"`
}

// StatsRows converts stats to CSV rows.
func StatsRows(stats []attendance.EmployeeStats) []*StatsRow {
	rows := make([]*StatsRow, len(stats))
	for i, s := range stats {
		rows[i] = &StatsRow{
			Employee:        s.Employee,
			PersonnelNumber: s.PersonnelNumber,
			TotalDays:       s.TotalDays,
			PresentDays:     s.PresentDays,
			AbsentDays:      s.AbsentDays,
			LeaveDays:       s.LeaveDays,
			WeeklyOffDays:   s.WeeklyOffDays,
			UnknownDays:     s.UnknownDays,
			AttendanceRate:  s.AttendanceRate.String(),
			MostCommonShift: attendance.ShiftName(s.MostCommonShift()),
		}
	}
	return rows
}

// DailyRows converts daily trends to CSV rows, labelling days by date when known.
func DailyRows(trends []attendance.DailyTrend) []*DailyRow {
	rows := make([]*DailyRow, len(trends))
	for i, d := range trends {
		rows[i] = &DailyRow{
			Day:             d.Label,
			TotalEmployees:  d.TotalEmployees,
			Present:         d.Present,
			Absent:          d.Absent,
			OnLeave:         d.OnLeave,
			WeeklyOff:       d.WeeklyOff,
			ExpectedWorking: d.ExpectedWorking,
			AttendanceRate:  d.AttendanceRate.String(),
		}
	}
	return rows
}

// SummaryRows converts month summaries to CSV rows.
func SummaryRows(summaries []attendance.MonthSummary) []*SummaryRow {
	rows := make([]*SummaryRow, len(summaries))
	for i, s := range summaries {
		rows[i] = &SummaryRow{
			Month:              s.Month,
			TotalEmployees:     s.TotalEmployees,
			AverageRate:        s.AverageRate.String(),
			MedianRate:         s.MedianRate.String(),
			MinRate:            s.MinRate.String(),
			MaxRate:            s.MaxRate.String(),
			TotalPresentDays:   s.TotalPresentDays,
			TotalAbsentDays:    s.TotalAbsentDays,
			TotalLeaveDays:     s.TotalLeaveDays,
			TotalWeeklyOffs:    s.TotalWeeklyOffs,
			PerfectAttendance:  s.PerfectAttendance,
			Below80Percent:     s.Below80Percent,
			Below90Percent:     s.Below90Percent,
			AtOrAbove95Percent: s.AtOrAbove95Percent,
		}
	}
	return rows
}

// WriteStatsCSV writes employee statistics.
func WriteStatsCSV(w io.Writer, stats []attendance.EmployeeStats) error {
	return marshal(w, StatsRows(stats))
}

// WriteDailyCSV writes the daily trend.
func WriteDailyCSV(w io.Writer, trends []attendance.DailyTrend) error {
	return marshal(w, DailyRows(trends))
}

// WriteSummaryCSV writes one line per month summary.
func WriteSummaryCSV(w io.Writer, summaries ...attendance.MonthSummary) error {
	return marshal(w, SummaryRows(summaries))
}

// ReadStatsCSV parses rows written by WriteStatsCSV.
func ReadStatsCSV(r io.Reader) ([]*StatsRow, error) {
	var rows []*StatsRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse stats CSV: %w", err)
	}
	return rows, nil
}

func marshal[T any](w io.Writer, rows []*T) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
