/*
analyzer.go - Attendance analysis of a normalized batch

PURPOSE:
  Ties the per-employee and per-day operations together and renders them
  as ordered tables ready for a spreadsheet or row-oriented writer.

OUTPUT TABLES:
  Employee Stats    one row per employee, directory columns after
                    Personnel_Number, per-letter shift day counts
  Daily Trend       one row per day slot with data
  Top Performers    Employee, Personnel_Number, Attendance_Rate, Present_Days, Absent_Days
  Bottom Performers as above plus Leave_Days
  Absentees         Employee, Personnel_Number, Absent_Days, Present_Days, Attendance_Rate
  Shift Analysis    Shift_Code, Shift_Name, Count, Percentage
  Summary           one row, month-level figures
  Day-wise Trends   one row, best/worst days (omitted for an empty trend)

  A batch with no records yields the same tables with no rows.

SEE ALSO:
  - extract/normalizer.go: the batch
  - directory/: enrichment source
*/
package attendance

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/directory"
	"github.com/warp/attendance-engine/extract"
	"github.com/warp/attendance-engine/grid"
)

// DefaultTopN is the ranking size used when none is configured.
const DefaultTopN = 10

// Analyzer runs the attendance analysis over a batch.
type Analyzer struct {
	Month     string
	Directory directory.Directory // nil disables enrichment
	TopN      int
}

// NewAnalyzer creates an analyzer for one reporting month.
func NewAnalyzer(month string, dir directory.Directory) *Analyzer {
	return &Analyzer{Month: month, Directory: dir, TopN: DefaultTopN}
}

// Report holds every result of one analysis run.
type Report struct {
	Month     string          `json:"month"`
	Stats     []EmployeeStats `json:"stats"`
	Daily     []DailyTrend    `json:"daily"`
	Summary   MonthSummary    `json:"summary"`
	Top       []EmployeeStats `json:"top_performers"`
	Bottom    []EmployeeStats `json:"bottom_performers"`
	Absentees []EmployeeStats `json:"frequent_absentees"`
	Shifts    []ShiftShare    `json:"shift_analysis"`
	DayWise   *DayWise        `json:"day_wise_trends,omitempty"`
}

// Analyze computes the full report.
func (a *Analyzer) Analyze(b extract.Batch) Report {
	n := a.TopN
	if n <= 0 {
		n = DefaultTopN
	}
	stats := ComputeAll(b)
	daily := DailyTrends(b)

	rep := Report{
		Month:     a.Month,
		Stats:     stats,
		Daily:     daily,
		Summary:   Summarize(a.Month, stats),
		Top:       TopPerformers(stats, n),
		Bottom:    BottomPerformers(stats, n),
		Absentees: FrequentAbsentees(stats, n),
		Shifts:    ShiftDistribution(b),
	}
	if dw, ok := DayWiseTrends(daily); ok {
		rep.DayWise = &dw
	}
	return rep
}

// Sheets renders the report as named tables, in workbook order.
func (a *Analyzer) Sheets(rep Report) []grid.Sheet {
	sheets := []grid.Sheet{
		{Name: "Summary", Table: SummaryTable(rep.Summary)},
		{Name: "Employee Stats", Table: a.StatsTable(rep.Stats)},
		{Name: "Daily Trend", Table: DailyTrendTable(rep.Daily)},
		{Name: "Top Performers", Table: TopPerformersTable(rep.Top)},
		{Name: "Bottom Performers", Table: BottomPerformersTable(rep.Bottom)},
		{Name: "Absentees", Table: AbsenteesTable(rep.Absentees)},
		{Name: "Shift Analysis", Table: ShiftTable(rep.Shifts)},
	}
	if rep.DayWise != nil {
		sheets = append(sheets, grid.Sheet{Name: "Day-wise Trends", Table: DayWiseTable(*rep.DayWise)})
	}
	return sheets
}

// =============================================================================
// TABLES
// =============================================================================

func rate(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// StatsTable renders per-employee stats, enriched from the directory.
func (a *Analyzer) StatsTable(stats []EmployeeStats) *grid.Table {
	cols := []string{"Employee", "Personnel_Number"}
	if a.Directory != nil {
		cols = append(cols, "Designation", "Station", "AM")
	}
	cols = append(cols, "Total_Days", "Present_Days", "Absent_Days", "Leave_Days", "Weekly_Off",
		"Unknown_Days", "Attendance_Rate", "Stations", "Most_Common_Shift")
	for _, sh := range Shifts {
		cols = append(cols, sh.Letter+"_Shift_Days")
	}

	table := grid.NewTable(cols...)
	for _, s := range stats {
		rec := grid.NewRecord().
			Set("Employee", s.Employee).
			Set("Personnel_Number", s.PersonnelNumber)
		if a.Directory != nil {
			d := a.Directory.Lookup(s.PersonnelNumber)
			rec.Set("Designation", d.Designation).
				Set("Station", d.Location).
				Set("AM", d.Manager)
		}
		stations := directory.NotAvailable
		if len(s.Stations) > 0 {
			stations = strings.Join(s.Stations, ", ")
		}
		rec.Set("Total_Days", s.TotalDays).
			Set("Present_Days", s.PresentDays).
			Set("Absent_Days", s.AbsentDays).
			Set("Leave_Days", s.LeaveDays).
			Set("Weekly_Off", s.WeeklyOffDays).
			Set("Unknown_Days", s.UnknownDays).
			Set("Attendance_Rate", rate(s.AttendanceRate)).
			Set("Stations", stations).
			Set("Most_Common_Shift", ShiftName(s.MostCommonShift()))
		for _, sh := range Shifts {
			rec.Set(sh.Letter+"_Shift_Days", s.ShiftCounts[sh.Letter])
		}
		table.Append(rec)
	}
	return table
}

// DailyTrendTable renders the daily trend.
func DailyTrendTable(trends []DailyTrend) *grid.Table {
	table := grid.NewTable("Day", "Day_Column", "Label", "Total_Employees", "Present", "Absent",
		"On_Leave", "Weekly_Off", "Expected_Working", "Attendance_Rate")
	for _, t := range trends {
		table.Append(grid.NewRecord().
			Set("Day", t.Day).
			Set("Day_Column", t.DayColumn).
			Set("Label", t.Label).
			Set("Total_Employees", t.TotalEmployees).
			Set("Present", t.Present).
			Set("Absent", t.Absent).
			Set("On_Leave", t.OnLeave).
			Set("Weekly_Off", t.WeeklyOff).
			Set("Expected_Working", t.ExpectedWorking).
			Set("Attendance_Rate", rate(t.AttendanceRate)))
	}
	return table
}

// TopPerformersTable renders a top ranking.
func TopPerformersTable(stats []EmployeeStats) *grid.Table {
	table := grid.NewTable("Employee", "Personnel_Number", "Attendance_Rate", "Present_Days", "Absent_Days")
	for _, s := range stats {
		table.Append(grid.NewRecord().
			Set("Employee", s.Employee).
			Set("Personnel_Number", s.PersonnelNumber).
			Set("Attendance_Rate", rate(s.AttendanceRate)).
			Set("Present_Days", s.PresentDays).
			Set("Absent_Days", s.AbsentDays))
	}
	return table
}

// BottomPerformersTable renders a bottom ranking.
func BottomPerformersTable(stats []EmployeeStats) *grid.Table {
	table := grid.NewTable("Employee", "Personnel_Number", "Attendance_Rate", "Present_Days", "Absent_Days", "Leave_Days")
	for _, s := range stats {
		table.Append(grid.NewRecord().
			Set("Employee", s.Employee).
			Set("Personnel_Number", s.PersonnelNumber).
			Set("Attendance_Rate", rate(s.AttendanceRate)).
			Set("Present_Days", s.PresentDays).
			Set("Absent_Days", s.AbsentDays).
			Set("Leave_Days", s.LeaveDays))
	}
	return table
}

// AbsenteesTable renders the frequent absentees.
func AbsenteesTable(stats []EmployeeStats) *grid.Table {
	table := grid.NewTable("Employee", "Personnel_Number", "Absent_Days", "Present_Days", "Attendance_Rate")
	for _, s := range stats {
		table.Append(grid.NewRecord().
			Set("Employee", s.Employee).
			Set("Personnel_Number", s.PersonnelNumber).
			Set("Absent_Days", s.AbsentDays).
			Set("Present_Days", s.PresentDays).
			Set("Attendance_Rate", rate(s.AttendanceRate)))
	}
	return table
}

// ShiftTable renders the shift distribution.
func ShiftTable(shares []ShiftShare) *grid.Table {
	table := grid.NewTable("Shift_Code", "Shift_Name", "Count", "Percentage")
	for _, s := range shares {
		table.Append(grid.NewRecord().
			Set("Shift_Code", s.Code).
			Set("Shift_Name", s.Name).
			Set("Count", s.Count).
			Set("Percentage", rate(s.Percentage)))
	}
	return table
}

// SummaryTable renders one row per month summary.
func SummaryTable(summaries ...MonthSummary) *grid.Table {
	table := grid.NewTable("Month", "Total_Employees", "Average_Attendance_Rate", "Median_Attendance_Rate",
		"Min_Attendance_Rate", "Max_Attendance_Rate", "Total_Present_Days", "Total_Absent_Days",
		"Total_Leave_Days", "Total_Weekly_Offs", "Employees_Perfect_Attendance",
		"Employees_Below_80_Percent", "Employees_Below_90_Percent", "Employees_Above_95_Percent")
	for _, s := range summaries {
		table.Append(grid.NewRecord().
			Set("Month", s.Month).
			Set("Total_Employees", s.TotalEmployees).
			Set("Average_Attendance_Rate", rate(s.AverageRate)).
			Set("Median_Attendance_Rate", rate(s.MedianRate)).
			Set("Min_Attendance_Rate", rate(s.MinRate)).
			Set("Max_Attendance_Rate", rate(s.MaxRate)).
			Set("Total_Present_Days", s.TotalPresentDays).
			Set("Total_Absent_Days", s.TotalAbsentDays).
			Set("Total_Leave_Days", s.TotalLeaveDays).
			Set("Total_Weekly_Offs", s.TotalWeeklyOffs).
			Set("Employees_Perfect_Attendance", s.PerfectAttendance).
			Set("Employees_Below_80_Percent", s.Below80Percent).
			Set("Employees_Below_90_Percent", s.Below90Percent).
			Set("Employees_Above_95_Percent", s.AtOrAbove95Percent))
	}
	return table
}

// DayWiseTable renders the day-wise condensation.
func DayWiseTable(dw DayWise) *grid.Table {
	table := grid.NewTable()
	table.Append(grid.NewRecord().
		Set("Average_Daily_Attendance_Rate", rate(dw.AverageDailyRate)).
		Set("Best_Attendance_Day", dw.BestDay).
		Set("Worst_Attendance_Day", dw.WorstDay).
		Set("Most_Absences_Day", dw.MostAbsencesDay).
		Set("Highest_Attendance_Rate", rate(dw.HighestRate)).
		Set("Lowest_Attendance_Rate", rate(dw.LowestRate)))
	return table
}
