/*
Package grid provides the tabular value types shared by every stage of the
attendance pipeline.

PURPOSE:
  Input side: a RawTable is what an external table-extraction primitive
  produces for one PDF page. Rows may have unequal length and any cell may
  be absent.

  Output side: Record and Table carry the dynamic, insertion-ordered column
  sets produced by normalization and analysis. The number of Day_N columns
  varies per batch, so output rows are name -> value mappings rather than
  fixed structs.

KEY CONCEPTS IN THIS FILE (cell.go):
  - Cell: an optional string (Valid=false means the extractor gave nothing)
  - Row, RawTable: ragged rows of cells

JSON:
  Cells decode from null, strings, numbers and booleans. Non-string content
  is coerced to its text form so nothing downstream ever has to deal with a
  non-string cell.

SEE ALSO:
  - record.go: ordered output rows
  - extract/parser.go: consumer of RawTable
*/
package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// CELL
// =============================================================================

// Cell is a single extracted table cell.
type Cell struct {
	Value string
	Valid bool
}

// Text returns a present cell holding s.
func Text(s string) Cell {
	return Cell{Value: s, Valid: true}
}

// Null returns an absent cell.
func Null() Cell {
	return Cell{}
}

// String returns the cell value, or "" for an absent cell.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return c.Value
}

// Trimmed returns the whitespace-trimmed value.
func (c Cell) Trimmed() string {
	return strings.TrimSpace(c.String())
}

// IsBlank reports whether the cell is absent or whitespace only.
func (c Cell) IsBlank() bool {
	return c.Trimmed() == ""
}

// MarshalJSON encodes absent cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts null, strings, numbers and booleans.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Null()
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		if b {
			*c = Text("True")
		} else {
			*c = Text("False")
		}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("cell: unsupported value %s", string(data))
		}
		*c = Text(n.String())
	}
	return nil
}

// =============================================================================
// ROWS AND TABLES
// =============================================================================

// Row is one extracted table row. Rows are ragged.
type Row []Cell

// At returns the cell at i, or an absent cell when the row is too short.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Null()
	}
	return r[i]
}

// RawTable is one page worth of extracted rows.
type RawTable []Row

// TextRow builds a row from plain strings. Handy in tests and fixtures.
func TextRow(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = Text(v)
	}
	return row
}
