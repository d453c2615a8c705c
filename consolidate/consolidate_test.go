package consolidate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/extract"
	"github.com/warp/attendance-engine/grid"
)

// table builds a minimal simple-layout page: two header rows and one row per employee.
func table(rows ...[]string) grid.RawTable {
	t := grid.RawTable{
		grid.TextRow("EMPLOYEE", "", "", "Mon", "Tue"),
		grid.TextRow("", "", "", "1", "2"),
	}
	for _, r := range rows {
		t = append(t, grid.TextRow(r...))
	}
	return t
}

func TestConsolidate_GroupsAndSortsByYearAndMonth(t *testing.T) {
	// GIVEN: three months over two years, out of order
	sources := []Source{
		{Year: 2025, Month: 11, Tables: []grid.RawTable{table([]string{"A KUMAR", "101", "R1", "M", "WO"})}},
		{Year: 2024, Month: 12, Tables: []grid.RawTable{table([]string{"B RAO", "102", "R1", "E", "AB"})}},
		{Year: 2025, Month: 4, Tables: []grid.RawTable{table(
			[]string{"A KUMAR", "101", "R1", "N", "N"},
			[]string{"C DAS", "103", "R2", "SL", "M"},
		)}},
	}

	// WHEN: consolidated with one worker at a time
	res, err := New(nil, 1).Consolidate(context.Background(), sources)
	require.NoError(t, err)

	// THEN: one year table each, months ascending
	require.Len(t, res.Years, 2)
	assert.Equal(t, 2024, res.Years[0].Year)
	assert.Equal(t, []string{"Dec"}, res.Years[0].Months)

	y := res.Years[1]
	assert.Equal(t, []string{"Apr", "Nov"}, y.Months)
	assert.Equal(t, 3, y.Records)
	assert.Equal(t, []string{
		"Year", "Month", "Month_Num", "Employee", "Personnel_Number", "Scheduling_Row", "Day_1", "Day_2",
	}, y.Table.Columns)
	assert.Equal(t, [][]string{
		{"2025", "Apr", "4", "A KUMAR", "101", "R1", "N", "N"},
		{"2025", "Apr", "4", "C DAS", "103", "R2", "SL", "M"},
		{"2025", "Nov", "11", "A KUMAR", "101", "R1", "M", "WO"},
	}, y.Table.Rows())

	sheets := res.Sheets()
	assert.Equal(t, "2024", sheets[0].Name)
	assert.Equal(t, "2025", sheets[1].Name)
}

func TestConsolidate_WiderMonthExtendsColumns(t *testing.T) {
	sources := []Source{
		{Year: 2025, Month: 1, Tables: []grid.RawTable{table([]string{"A", "1", "R", "M", "M"})}},
		{Year: 2025, Month: 2, Tables: []grid.RawTable{table([]string{"A", "1", "R", "M", "M", "E"})}},
	}

	res, err := New(nil, 0).Consolidate(context.Background(), sources)
	require.NoError(t, err)

	tbl := res.Years[0].Table
	assert.Contains(t, tbl.Columns, "Day_3")
	assert.Equal(t, "", tbl.Rows()[0][len(tbl.Columns)-1])
	assert.Equal(t, "E", tbl.Rows()[1][len(tbl.Columns)-1])
}

func TestConsolidate_EmptySourceStillListsMonth(t *testing.T) {
	res, err := New(nil, 2).Consolidate(context.Background(), []Source{{Year: 2025, Month: 3}})
	require.NoError(t, err)

	require.Len(t, res.Years, 1)
	assert.Equal(t, []string{"Mar"}, res.Years[0].Months)
	assert.Equal(t, 0, res.Years[0].Table.Len())
}

func TestConsolidate_Errors(t *testing.T) {
	ctx := context.Background()
	c := New(nil, 2)

	_, err := c.Consolidate(ctx, nil)
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = c.Consolidate(ctx, []Source{{Year: 2025, Month: 13}})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = c.Consolidate(ctx, []Source{{Year: 2025, Month: 1, Layout: "grid"}})
	assert.ErrorIs(t, err, extract.ErrUnknownLayout)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.Consolidate(cancelled, []Source{{Year: 2025, Month: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_MergeKeepsOtherYears(t *testing.T) {
	res, err := New(nil, 1).Consolidate(context.Background(), []Source{
		{Year: 2025, Month: 5, Tables: []grid.RawTable{table([]string{"A", "1", "R", "M", "M"})}},
	})
	require.NoError(t, err)

	existing := []grid.Sheet{
		{Name: "2025", Table: grid.NewTable("stale")},
		{Name: "2023", Table: grid.NewTable("Year")},
	}

	merged := res.Merge(existing)
	require.Len(t, merged, 2)
	assert.Equal(t, "2023", merged[0].Name)
	assert.Equal(t, "2025", merged[1].Name)
	assert.Equal(t, "Year", merged[1].Table.Columns[0])
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Jan", MonthName(1))
	assert.Equal(t, "Sep", MonthName(9))
}
