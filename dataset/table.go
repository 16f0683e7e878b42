// Package dataset provides the in-memory tabular data the query engine runs on.
//
// A Table keeps its column order and stores rows as maps, so loaders can
// fill it without knowing the schema up front. The engine never mutates a
// Table: filtering and sorting work on index lists (see View), and every
// result is a newly allocated Table.
//
// Example usage:
//
//	t := dataset.NewTable([]string{"state_abb", "scheduled_quantity"}, []dataset.Row{
//	    {"state_abb": "TX", "scheduled_quantity": 120.0},
//	    {"state_abb": "LA", "scheduled_quantity": 80.0},
//	})
//	v := dataset.All(t)
//	fmt.Println(v.Len()) // 2
package dataset

import (
	"encoding/json"
	"fmt"
	"math"
)

// Row is a single record keyed by column name.
type Row = map[string]interface{}

// Table is an ordered set of columns plus the rows holding their values.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates a table. A nil rows slice is replaced with an empty one
// so formatters always see a non-nil slice.
func NewTable(columns []string, rows []Row) *Table {
	if rows == nil {
		rows = []Row{}
	}
	return &Table{Columns: columns, Rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Value returns the value stored at row i for column col, or nil when the
// row does not carry the column.
func (t *Table) Value(i int, col string) interface{} {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i][col]
}

// HasColumn reports whether col is one of the table's columns.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// undefinedValue marks a cell whose value is mathematically undefined,
// such as the correlation of a zero-variance column.
type undefinedValue struct{}

// Undefined is the cell value for results that have no defined number.
// It is distinct from nil, which means "missing in the input".
var Undefined = undefinedValue{}

func (undefinedValue) String() string { return "undefined" }

// MarshalJSON encodes Undefined as JSON null.
func (undefinedValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v interface{}) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// MarshalJSON encodes the table as {"columns": [...], "rows": [[...], ...]}
// so column order survives the round trip.
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := make([][]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			cells[j] = JSONCell(row[col])
		}
		rows[i] = cells
	}
	out, err := json.Marshal(struct {
		Columns []string        `json:"columns"`
		Rows    [][]interface{} `json:"rows"`
	}{Columns: t.Columns, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("failed to encode table: %w", err)
	}
	return out, nil
}

// JSONCell returns v in a form encoding/json accepts. NaN and infinities
// have no JSON number and become null.
func JSONCell(v interface{}) interface{} {
	switch f := v.(type) {
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil
		}
	}
	return v
}
