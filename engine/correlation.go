package engine

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/query"
)

// pearson returns the Pearson correlation of columns a and b over the rows
// where both are numeric. It returns dataset.Undefined for fewer than two
// such rows or when either side has zero variance.
func pearson(v dataset.View, a, b string) interface{} {
	var xs, ys []float64
	for i := 0; i < v.Len(); i++ {
		x, okX := finite(v.Value(i, a))
		y, okY := finite(v.Value(i, b))
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return dataset.Undefined
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return dataset.Undefined
	}
	if a == b {
		return 1.0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return dataset.Undefined
	}
	return math.Max(-1, math.Min(1, r))
}

func finite(val interface{}) (float64, bool) {
	if dataset.IsMissing(val) {
		return 0, false
	}
	f, ok := dataset.ToFloat64(val)
	if !ok || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// correlation builds the symmetric matrix over op.Columns. Each pair is
// computed once and mirrored.
func correlation(op *query.Correlation, v dataset.View) output {
	cols := op.Columns
	matrix := make([][]interface{}, len(cols))
	for i := range matrix {
		matrix[i] = make([]interface{}, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pearson(v, cols[i], cols[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}

	rows := make([]dataset.Row, len(cols))
	for i, name := range cols {
		row := dataset.Row{"column": name}
		for j, other := range cols {
			row[other] = matrix[i][j]
		}
		rows[i] = row
	}

	return output{
		table: dataset.NewTable(append([]string{"column"}, cols...), rows),
		method: fmt.Sprintf("Pearson correlation r = cov(x, y) / (sd(x) * sd(y)) for each pair of %s over rows where both values are present; undefined when a column has zero variance or fewer than 2 rows pair up",
			strings.Join(cols, ", ")),
	}
}
