package rosterreport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/extract"
)

func roster(labels []string, days ...[]string) extract.Batch {
	recs := make([]extract.EmployeeRecord, len(days))
	for i, d := range days {
		recs[i] = extract.EmployeeRecord{
			Employee:        "CREW " + string(rune('A'+i)),
			PersonnelNumber: string(rune('1' + i)),
			RawCodes:        d,
		}
	}
	b := extract.NormalizeRecords(extract.LayoutSimple, recs)
	b.DayLabels = labels
	return b
}

func TestShiftCode(t *testing.T) {
	cases := map[string]string{
		"RR-01":             "RR",
		"SR-14 05:00-13:00": "SR",
		"WDM-13":            "WDM",
		"HSB A-1":           "HSB A",
		"HSB\nB-2":          "HSB B",
		"HSB M12":           "HSB M12",
		"SM05":              "SM",
		"rr-01":             "",
		"05:00":             "",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ShiftCode(in), in)
	}
}

func TestLeaveDetection(t *testing.T) {
	a := New(DefaultConfig())

	assert.Equal(t, "CL", a.LeaveType("cl"))
	assert.Equal(t, "WO", a.LeaveType(" WO "))
	// composite code: first configured code contained wins
	assert.Equal(t, "CL", a.LeaveType("LMCL"))
	assert.Equal(t, "LM", a.LeaveType("LM-2"))
	assert.True(t, a.IsLeave("XWLX"))
	assert.False(t, a.IsLeave("RR-01"))
	assert.False(t, a.IsLeave(""))
}

func TestCategory(t *testing.T) {
	a := New(DefaultConfig())

	assert.Equal(t, FamilyRRTS, a.Category("SR-14"))
	assert.Equal(t, FamilyRRTS, a.Category("HSB A-1"))
	assert.Equal(t, FamilyMRTS, a.Category("WDM-13"))
	assert.Equal(t, FamilyMRTS, a.Category("HSB M-3"))
	assert.Equal(t, OtherShift, a.Category("TRN-4"))
	assert.Equal(t, OtherShift, a.Category("standby"))
}

func TestSummarize(t *testing.T) {
	// GIVEN: two crew over three days with date labels
	b := roster([]string{"Sun-18", "", "Tue-20"},
		[]string{"RR-01", "CL", ""},
		[]string{"SM-05", "LMCL", "WDR-3"},
	)
	a := New(DefaultConfig())

	sum := a.Summarize(b)

	assert.Equal(t, 2, sum.TotalEmployees)
	assert.Equal(t, "Sun-18 to Tue-20", sum.Period)
	assert.Equal(t, 3, sum.TotalShifts)
	assert.Equal(t, 2, sum.TotalLeaves)
	assert.Equal(t, 1, sum.TotalBlank)
	assert.Equal(t, 6, sum.TotalRecords)

	table := SummaryTable(sum)
	assert.Equal(t, []string{"Metric", "Value"}, table.Columns)
	assert.Equal(t, []string{"Period", "Sun-18 to Tue-20"}, table.Rows()[1])
}

func TestSummarize_PeriodWithoutLabels(t *testing.T) {
	b := roster(nil, []string{"RR-01", "SR-2", "SM-3", "WO"})
	assert.Equal(t, "4 days", New(DefaultConfig()).Summarize(b).Period)
}

func TestDailyTrend(t *testing.T) {
	b := roster(nil,
		[]string{"RR-01", "CL", ""},
		[]string{"SM-05", "SL", ""},
		[]string{"WO", "CL", "SR-1"},
	)
	a := New(DefaultConfig())

	days := a.DailyTrend(b)
	require.Len(t, days, 3)
	assert.Equal(t, "Day_1", days[0].Day)
	assert.Equal(t, 2, days[0].TotalShifts)
	assert.Equal(t, map[string]int{"WO": 1}, days[0].Leaves)
	assert.Equal(t, map[string]int{"CL": 2, "SL": 1}, days[1].Leaves)
	assert.Equal(t, 2, days[2].Blank)

	table := DailyTrendTable(days)
	assert.Equal(t, []string{"Day", "Total Shifts", "WO", "Blank", "CL", "SL"}, table.Columns)
	assert.Equal(t, []string{"Day_2", "0", "", "0", "2", "1"}, table.Rows()[1])
}

func TestDistribute(t *testing.T) {
	b := roster(nil,
		[]string{"RR-01", "HSB M-2", "TRN-1", "CL"},
		[]string{"SR-3", "", "LMCL", "EL"},
	)

	d := New(DefaultConfig()).Distribute(b)

	assert.Equal(t, []Count{
		{Name: FamilyRRTS, Count: 2},
		{Name: FamilyMRTS, Count: 1},
		{Name: OtherShift, Count: 1},
	}, d.Shifts)
	assert.Equal(t, []Count{{Name: "CL", Count: 2}, {Name: "EL", Count: 1}}, d.Leaves)
}

func TestEmployeeTable(t *testing.T) {
	b := roster(nil,
		[]string{"RR-01", "HSB M-2", "TRN-1", "CL", ""},
		[]string{"SR-3", "WO", "WO", "", ""},
	)

	table := New(DefaultConfig()).EmployeeTable(b)

	assert.Equal(t, []string{
		"Employee", "Personnel_Number", FamilyRRTS, FamilyMRTS, OtherShift, "CL", "WO", "Total",
	}, table.Columns)
	assert.Equal(t, [][]string{
		{"CREW A", "1", "1", "1", "1", "1", "0", "4"},
		{"CREW B", "2", "1", "0", "0", "0", "2", "3"},
	}, table.Rows())
}

func TestNew_CustomFamilies(t *testing.T) {
	a := New(Config{
		Families:   []Family{{Name: "Depot", Prefixes: []string{"DP"}}},
		LeaveCodes: []string{" ml "},
	})

	assert.Equal(t, "Depot", a.Category("DP-1"))
	assert.Equal(t, OtherShift, a.Category("RR-1"))
	assert.Equal(t, "ML", a.LeaveType("ml"))
	assert.False(t, a.IsLeave("CL"))
	assert.Equal(t, []string{"Depot", OtherShift}, a.Categories())
}

func TestSheets_EmptyBatch(t *testing.T) {
	sheets := New(DefaultConfig()).Sheets(extract.NormalizeRecords(extract.LayoutSimple, nil))

	require.Len(t, sheets, 5)
	assert.Equal(t, 0, sheets[1].Table.Len())
	assert.Equal(t, 0, sheets[4].Table.Len())
	assert.Equal(t, 3, sheets[2].Table.Len())
}
