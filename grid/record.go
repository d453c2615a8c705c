/*
record.go - Insertion-ordered output rows

PURPOSE:
  Record is a column -> value mapping that remembers the order columns were
  first set in. Table is a list of records plus the union of their columns,
  in first-seen order. Both marshal to JSON with keys in that order so
  clients see Employee, Personnel_Number, ... Day_1, Day_2 as written.

VALUE TYPES:
  Values are stored as-is (string, int, decimal.Decimal, ...). Writers that
  need text call FormatValue.

SEE ALSO:
  - export/: workbook and CSV writers for Table
  - extract/normalizer.go: builds the day-indexed record table
*/
package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORD
// =============================================================================

// Record is an ordered column -> value mapping.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set assigns a value. New columns are appended, existing ones keep their slot.
func (r *Record) Set(column string, value any) *Record {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[column]; !ok {
		r.keys = append(r.keys, column)
	}
	r.values[column] = value
	return r
}

// Get returns the value for column.
func (r *Record) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Text returns the formatted value for column, or "" when unset.
func (r *Record) Text(column string) string {
	v, ok := r.values[column]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Columns returns the columns in insertion order.
func (r *Record) Columns() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns.
func (r *Record) Len() int { return len(r.keys) }

// MarshalJSON writes an object whose keys follow insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("record column %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered list of records sharing a column set.
type Table struct {
	Columns []string  `json:"columns"`
	Records []*Record `json:"records"`
}

// NewTable creates a table with the given leading columns.
func NewTable(columns ...string) *Table {
	t := &Table{Columns: []string{}, Records: []*Record{}}
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

// Append adds a record, extending the column set with any unseen columns.
func (t *Table) Append(rec *Record) {
	for _, c := range rec.keys {
		t.addColumn(c)
	}
	t.Records = append(t.Records, rec)
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Records) }

// Rows renders every record as text in column order. Missing cells are "".
func (t *Table) Rows() [][]string {
	rows := make([][]string, len(t.Records))
	for i, rec := range t.Records {
		row := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = rec.Text(c)
		}
		rows[i] = row
	}
	return rows
}

func (t *Table) addColumn(c string) {
	for _, existing := range t.Columns {
		if existing == c {
			return
		}
	}
	t.Columns = append(t.Columns, c)
}

// Sheet is a named table, one worksheet in an exported workbook.
type Sheet struct {
	Name  string `json:"name"`
	Table *Table `json:"table"`
}

// FormatValue renders a record value as text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
