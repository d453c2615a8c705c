package attendance

import (
	"cmp"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/extract"
)

// Rate thresholds for the month summary, in percent.
const (
	perfectRate = 100
	threshold80 = 80
	threshold90 = 90
	threshold95 = 95
)

// MonthSummary is the month-level view of a batch.
type MonthSummary struct {
	Month              string          `json:"month"`
	TotalEmployees     int             `json:"total_employees"`
	AverageRate        decimal.Decimal `json:"average_attendance_rate"`
	MedianRate         decimal.Decimal `json:"median_attendance_rate"`
	MinRate            decimal.Decimal `json:"min_attendance_rate"`
	MaxRate            decimal.Decimal `json:"max_attendance_rate"`
	TotalPresentDays   int             `json:"total_present_days"`
	TotalAbsentDays    int             `json:"total_absent_days"`
	TotalLeaveDays     int             `json:"total_leave_days"`
	TotalWeeklyOffs    int             `json:"total_weekly_offs"`
	PerfectAttendance  int             `json:"employees_perfect_attendance"`
	Below80Percent     int             `json:"employees_below_80_percent"`
	Below90Percent     int             `json:"employees_below_90_percent"`
	AtOrAbove95Percent int             `json:"employees_above_95_percent"`
}

// Summarize builds the month summary from per-employee stats. An empty
// input yields a zero summary.
func Summarize(month string, stats []EmployeeStats) MonthSummary {
	sum := MonthSummary{Month: month, TotalEmployees: len(stats)}
	if len(stats) == 0 {
		return sum
	}

	rates := make([]decimal.Decimal, len(stats))
	for i, s := range stats {
		rates[i] = s.AttendanceRate
		sum.TotalPresentDays += s.PresentDays
		sum.TotalAbsentDays += s.AbsentDays
		sum.TotalLeaveDays += s.LeaveDays
		sum.TotalWeeklyOffs += s.WeeklyOffDays

		if compareRate(s, perfectRate) == 0 {
			sum.PerfectAttendance++
		}
		if compareRate(s, threshold80) < 0 {
			sum.Below80Percent++
		}
		if compareRate(s, threshold90) < 0 {
			sum.Below90Percent++
		}
		if compareRate(s, threshold95) >= 0 {
			sum.AtOrAbove95Percent++
		}
	}

	sum.AverageRate = mean(rates)
	sum.MedianRate = median(rates)
	sum.MinRate = decimal.Min(rates[0], rates[1:]...)
	sum.MaxRate = decimal.Max(rates[0], rates[1:]...)
	return sum
}

// MonthBatch pairs a batch with the period it covers.
type MonthBatch struct {
	Month string
	Batch extract.Batch
}

// CompareMonths summarizes each month in order.
func CompareMonths(months []MonthBatch) []MonthSummary {
	out := make([]MonthSummary, len(months))
	for i, m := range months {
		out[i] = Summarize(m.Month, ComputeAll(m.Batch))
	}
	return out
}

// compareRate compares the unrounded attendance rate of s with pct. A
// non-positive denominator is a zero rate, as in Rate.
func compareRate(s EmployeeStats, pct int64) int {
	expected := int64(s.ExpectedWorkingDays())
	if expected <= 0 {
		return cmp.Compare(0, pct)
	}
	return cmp.Compare(int64(s.PresentDays)*100, pct*expected)
}

func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...).
		DivRound(decimal.NewFromInt(int64(len(values))), RatePlaces)
}

func median(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid].Round(RatePlaces)
	}
	return sorted[mid-1].Add(sorted[mid]).DivRound(decimal.NewFromInt(2), RatePlaces)
}
