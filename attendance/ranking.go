package attendance

import "sort"

// TopPerformers returns up to n employees with the highest attendance rate.
// Equal rates keep input order.
func TopPerformers(stats []EmployeeStats, n int) []EmployeeStats {
	return rank(stats, n, func(a, b EmployeeStats) bool {
		return a.AttendanceRate.GreaterThan(b.AttendanceRate)
	})
}

// BottomPerformers returns up to n employees with the lowest attendance rate.
// Equal rates keep input order.
func BottomPerformers(stats []EmployeeStats, n int) []EmployeeStats {
	return rank(stats, n, func(a, b EmployeeStats) bool {
		return a.AttendanceRate.LessThan(b.AttendanceRate)
	})
}

// FrequentAbsentees returns up to n employees with at least one absence,
// most absences first.
func FrequentAbsentees(stats []EmployeeStats, n int) []EmployeeStats {
	var absent []EmployeeStats
	for _, s := range stats {
		if s.AbsentDays > 0 {
			absent = append(absent, s)
		}
	}
	return rank(absent, n, func(a, b EmployeeStats) bool {
		return a.AbsentDays > b.AbsentDays
	})
}

func rank(stats []EmployeeStats, n int, less func(a, b EmployeeStats) bool) []EmployeeStats {
	out := make([]EmployeeStats, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
