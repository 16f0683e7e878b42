package engine

import (
	"fmt"
	"sort"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/query"
)

// rowIndexColumn holds the original 0-based row index in row-returning
// results.
const rowIndexColumn = "row"

// rowsTable copies the rows of v into a new table led by the original row
// index. extra, when set, adds computed columns after the data columns.
func rowsTable(v dataset.View, extra *extraColumns) *dataset.Table {
	src := v.Table()
	indexCol := rowIndexColumn
	for src.HasColumn(indexCol) {
		indexCol = "_" + indexCol
	}

	columns := make([]string, 0, len(src.Columns)+2)
	columns = append(columns, indexCol)
	columns = append(columns, src.Columns...)
	if extra != nil {
		columns = append(columns, extra.names...)
	}

	rows := make([]dataset.Row, v.Len())
	for i := range rows {
		row := make(dataset.Row, len(columns))
		for k, val := range v.Row(i) {
			row[k] = val
		}
		row[indexCol] = v.Index(i)
		if extra != nil {
			for j, name := range extra.names {
				row[name] = extra.values[j][i]
			}
		}
		rows[i] = row
	}
	return dataset.NewTable(columns, rows)
}

// extraColumns are computed per-row values appended by rowsTable, indexed
// by view position.
type extraColumns struct {
	names  []string
	values [][]interface{}
}

// sortView orders v by col. Ties keep their view order and missing values
// go last in both directions.
func sortView(v dataset.View, col string, dir query.Direction) dataset.View {
	indices := v.Indices()
	t := v.Table()
	sort.SliceStable(indices, func(i, j int) bool {
		a, b := t.Value(indices[i], col), t.Value(indices[j], col)
		am, bm := dataset.IsMissing(a), dataset.IsMissing(b)
		if am || bm {
			return !am && bm
		}
		c := dataset.Compare(a, b)
		if dir == query.Descending {
			return c > 0
		}
		return c < 0
	})
	return dataset.NewView(t, indices)
}

func topN(op *query.TopN, v dataset.View) output {
	sorted := sortView(v, op.SortColumn, op.Direction).Head(op.N)
	direction := "descending"
	if op.Direction == query.Ascending {
		direction = "ascending"
	}
	return output{
		table: rowsTable(sorted, nil),
		method: fmt.Sprintf("rows sorted by %s %s, ties kept in original row order, missing values last; first %d of %d rows",
			op.SortColumn, direction, sorted.Len(), v.Len()),
	}
}
