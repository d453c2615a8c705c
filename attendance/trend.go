/*
trend.go - Per-day attendance trend across a batch

PURPOSE:
  For every day slot that carries at least one non-empty value anywhere in
  the batch, count presents, absences, leaves and weekly offs over the
  whole population and derive a population-level attendance rate:

    expected = employees - weekly_off - leave
    rate     = present / expected * 100

  Slots where every employee is blank are columns past the end of the
  reporting period and are left out rather than reported as zero days.

  DayWise condenses the trend into best/worst days.
*/
package attendance

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/extract"
)

// DailyTrend is the population view of one day slot.
type DailyTrend struct {
	Day             int             `json:"day"` // 1-based
	DayColumn       string          `json:"day_column"`
	Label           string          `json:"label"`
	TotalEmployees  int             `json:"total_employees"`
	Present         int             `json:"present"`
	Absent          int             `json:"absent"`
	OnLeave         int             `json:"on_leave"`
	WeeklyOff       int             `json:"weekly_off"`
	ExpectedWorking int             `json:"expected_working"`
	AttendanceRate  decimal.Decimal `json:"attendance_rate"`
}

// DailyTrends computes the trend for every day slot with data.
func DailyTrends(b extract.Batch) []DailyTrend {
	out := []DailyTrend{}
	employees := len(b.Records)

	for day := 0; day < b.MaxDays; day++ {
		t := DailyTrend{
			Day:            day + 1,
			DayColumn:      extract.DayColumn(day),
			Label:          b.Label(day),
			TotalEmployees: employees,
		}
		hasData := false
		for _, r := range b.Records {
			if day >= len(r.Days) {
				continue
			}
			raw := r.Days[day]
			if strings.TrimSpace(raw) == "" {
				continue
			}
			hasData = true
			switch Classify(raw).Kind {
			case KindShift:
				t.Present++
			case KindAbsent:
				t.Absent++
			case KindLeave:
				t.OnLeave++
			case KindWeeklyOff:
				t.WeeklyOff++
			}
		}
		if !hasData {
			continue
		}
		t.ExpectedWorking = employees - t.WeeklyOff - t.OnLeave
		t.AttendanceRate = Rate(t.Present, t.ExpectedWorking)
		out = append(out, t)
	}
	return out
}

// DayWise summarizes a daily trend.
type DayWise struct {
	AverageDailyRate decimal.Decimal `json:"average_daily_attendance_rate"`
	BestDay          int             `json:"best_attendance_day"`
	WorstDay         int             `json:"worst_attendance_day"`
	MostAbsencesDay  int             `json:"most_absences_day"`
	HighestRate      decimal.Decimal `json:"highest_attendance_rate"`
	LowestRate       decimal.Decimal `json:"lowest_attendance_rate"`
}

// DayWiseTrends condenses a daily trend. It reports false for an empty trend.
// Ties pick the earliest day.
func DayWiseTrends(trends []DailyTrend) (DayWise, bool) {
	if len(trends) == 0 {
		return DayWise{}, false
	}

	best, worst, absences := trends[0], trends[0], trends[0]
	rates := make([]decimal.Decimal, len(trends))
	for i, t := range trends {
		rates[i] = t.AttendanceRate
		if t.AttendanceRate.GreaterThan(best.AttendanceRate) {
			best = t
		}
		if t.AttendanceRate.LessThan(worst.AttendanceRate) {
			worst = t
		}
		if t.Absent > absences.Absent {
			absences = t
		}
	}

	return DayWise{
		AverageDailyRate: mean(rates),
		BestDay:          best.Day,
		WorstDay:         worst.Day,
		MostAbsencesDay:  absences.Day,
		HighestRate:      best.AttendanceRate,
		LowestRate:       worst.AttendanceRate,
	}, true
}
