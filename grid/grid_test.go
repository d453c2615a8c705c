package grid

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_UnmarshalCoercesNonStrings(t *testing.T) {
	// GIVEN: a row with null, string, number and bool cells
	var row Row
	err := json.Unmarshal([]byte(`[null, " M ", 12.0, 7, true]`), &row)
	require.NoError(t, err)

	// THEN: every cell is text or absent
	require.Len(t, row, 5)
	assert.False(t, row[0].Valid)
	assert.Equal(t, " M ", row[1].Value)
	assert.Equal(t, "M", row[1].Trimmed())
	assert.Equal(t, "12.0", row[2].Value)
	assert.Equal(t, "7", row[3].Value)
	assert.Equal(t, "True", row[4].Value)
}

func TestCell_MarshalNull(t *testing.T) {
	data, err := json.Marshal(Row{Null(), Text("WO")})
	require.NoError(t, err)
	assert.JSONEq(t, `[null, "WO"]`, string(data))
}

func TestRow_AtOutOfRange(t *testing.T) {
	row := TextRow("a", "b")

	assert.Equal(t, "b", row.At(1).String())
	assert.False(t, row.At(5).Valid)
	assert.False(t, row.At(-1).Valid)
	assert.True(t, row.At(9).IsBlank())
}

func TestRecord_PreservesInsertionOrder(t *testing.T) {
	// GIVEN: columns set out of alphabetical order, one overwritten
	rec := NewRecord().
		Set("Employee", "ASHA").
		Set("Day_2", "M").
		Set("Day_1", "E").
		Set("Day_2", "WO")

	// WHEN: marshalled
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	// THEN: key order follows first insertion
	assert.Equal(t, `{"Employee":"ASHA","Day_2":"WO","Day_1":"E"}`, string(data))
	assert.Equal(t, []string{"Employee", "Day_2", "Day_1"}, rec.Columns())
}

func TestTable_UnionColumnsAndRows(t *testing.T) {
	table := NewTable("Employee")
	table.Append(NewRecord().Set("Employee", "A").Set("Rate", decimal.RequireFromString("66.67")))
	table.Append(NewRecord().Set("Employee", "B").Set("Days", 3))

	assert.Equal(t, []string{"Employee", "Rate", "Days"}, table.Columns)
	assert.Equal(t, [][]string{
		{"A", "66.67", ""},
		{"B", "", "3"},
	}, table.Rows())
}

func TestTable_EmptyMarshalsArrays(t *testing.T) {
	data, err := json.Marshal(NewTable())
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":[],"records":[]}`, string(data))
}
