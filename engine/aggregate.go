package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/query"
)

// group is the set of view positions sharing one key value.
type group struct {
	key       interface{}
	positions []int
}

// groupBy hashes the rows of v by the value of col. Groups come back in
// natural key order with the missing key first; keys that compare equal
// keep first-seen order.
func groupBy(v dataset.View, col string) []*group {
	index := make(map[string]*group)
	var groups []*group
	for i := 0; i < v.Len(); i++ {
		val := v.Value(i, col)
		k := dataset.GroupKey(val)
		g, ok := index[k]
		if !ok {
			g = &group{key: val}
			index[k] = g
			groups = append(groups, g)
		}
		g.positions = append(g.positions, i)
	}
	sortGroups(groups)
	return groups
}

func sortGroups(groups []*group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return dataset.Compare(groups[i].key, groups[j].key) < 0
	})
}

// wholeView is the single group used when there is no group-by column.
func wholeView(v dataset.View) []*group {
	positions := make([]int, v.Len())
	for i := range positions {
		positions[i] = i
	}
	return []*group{{positions: positions}}
}

// collect gathers the values of col at positions. For count every
// non-missing cell counts; otherwise only numeric cells do. excluded is the
// number of cells left out.
func collect(v dataset.View, col string, positions []int, fn query.AggFunc) (xs []float64, n, excluded int) {
	xs = make([]float64, 0, len(positions))
	for _, p := range positions {
		val := v.Value(p, col)
		if dataset.IsMissing(val) {
			excluded++
			continue
		}
		if fn == query.FuncCount {
			n++
			continue
		}
		f, ok := dataset.ToFloat64(val)
		if !ok || math.IsInf(f, 0) {
			excluded++
			continue
		}
		xs = append(xs, f)
	}
	if fn != query.FuncCount {
		n = len(xs)
	}
	return xs, n, excluded
}

func aggLabel(fn query.AggFunc, target string) string {
	return fmt.Sprintf("%s(%s)", fn, target)
}

func aggregate(op *query.Aggregate, v dataset.View) output {
	label := aggLabel(op.Func, op.Target)
	columns := []string{label, "n"}
	groups := wholeView(v)
	if op.GroupBy != "" {
		columns = append([]string{op.GroupBy}, columns...)
		groups = groupBy(v, op.GroupBy)
	}

	rows := make([]dataset.Row, 0, len(groups))
	excluded := 0
	for _, g := range groups {
		xs, n, skipped := collect(v, op.Target, g.positions, op.Func)
		excluded += skipped
		row := dataset.Row{"n": n}
		if op.Func == query.FuncCount {
			row[label] = n
		} else {
			row[label] = apply(op.Func, xs)
		}
		if op.GroupBy != "" {
			row[op.GroupBy] = g.key
		}
		rows = append(rows, row)
	}

	skippedKind := "missing or non-numeric"
	if op.Func == query.FuncCount {
		skippedKind = "missing"
	}
	var method strings.Builder
	if op.GroupBy != "" {
		fmt.Fprintf(&method, "%s grouped by %s; %s per group; %d groups sorted ascending by %s, missing key first",
			label, op.GroupBy, formula(op.Func), len(groups), op.GroupBy)
	} else {
		fmt.Fprintf(&method, "%s over %d rows; %s", label, v.Len(), formula(op.Func))
	}
	fmt.Fprintf(&method, "; %d %s %s values excluded", excluded, skippedKind, op.Target)

	return output{table: dataset.NewTable(columns, rows), method: method.String()}
}

func rowCount(op *query.RowCount, v dataset.View) output {
	if op.GroupBy == "" {
		return output{
			table:  dataset.NewTable([]string{"rows"}, []dataset.Row{{"rows": v.Len()}}),
			method: fmt.Sprintf("row count: %d rows", v.Len()),
		}
	}

	groups := groupBy(v, op.GroupBy)
	rows := make([]dataset.Row, len(groups))
	for i, g := range groups {
		rows[i] = dataset.Row{op.GroupBy: g.key, "rows": len(g.positions)}
	}
	return output{
		table: dataset.NewTable([]string{op.GroupBy, "rows"}, rows),
		method: fmt.Sprintf("row count grouped by %s; %d groups sorted ascending by %s, missing key first; %d rows in total",
			op.GroupBy, len(groups), op.GroupBy, v.Len()),
	}
}

// yearOf derives a calendar year from a datetime cell (in UTC) or from a
// whole-number year cell.
func yearOf(val interface{}) (int, bool) {
	if t, ok := dataset.ToTime(val); ok {
		return t.UTC().Year(), true
	}
	if f, ok := dataset.ToFloat64(val); ok && !math.IsNaN(f) && f == math.Trunc(f) && f >= 1 && f <= 9999 {
		return int(f), true
	}
	return 0, false
}

func trend(op *query.Trend, v dataset.View) output {
	label := aggLabel(op.Func, op.Target)

	byYear := make(map[int][]int)
	var years []int
	noYear := 0
	for i := 0; i < v.Len(); i++ {
		y, ok := yearOf(v.Value(i, op.TimeColumn))
		if !ok {
			noYear++
			continue
		}
		if _, seen := byYear[y]; !seen {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], i)
	}
	sort.Ints(years)

	rows := make([]dataset.Row, 0, len(years))
	excluded := 0
	for _, y := range years {
		xs, n, skipped := collect(v, op.Target, byYear[y], op.Func)
		excluded += skipped
		row := dataset.Row{"year": y, "n": n}
		if op.Func == query.FuncCount {
			row[label] = n
		} else {
			row[label] = apply(op.Func, xs)
		}
		rows = append(rows, row)
	}

	method := fmt.Sprintf("%s per calendar year of %s (UTC), years ascending; %s per year; %d rows without a year skipped; %d missing or non-numeric %s values excluded",
		label, op.TimeColumn, formula(op.Func), noYear, excluded, op.Target)
	return output{
		table:  dataset.NewTable([]string{"year", label, "n"}, rows),
		method: method,
	}
}
