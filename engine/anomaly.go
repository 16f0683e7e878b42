package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-kit/log/level"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/query"
)

const (
	zScoreColumn       = "z_score"
	anomalyScoreColumn = "anomaly_score"
)

func univariate(op *query.Univariate, v dataset.View) output {
	xs, positions, missing := v.Floats(op.Column)
	mean, sd := meanStd(xs)
	threshold := num(op.Threshold)

	basis := fmt.Sprintf("z-score z = (x - mean) / s with sample stddev s (n - 1) over %d non-missing values of %s (%d missing skipped)",
		len(xs), op.Column, missing)
	if sd == 0 {
		return output{
			table: rowsTable(dataset.NewView(v.Table(), nil), &extraColumns{names: []string{zScoreColumn}, values: [][]interface{}{nil}}),
			method: fmt.Sprintf("%s; mean = %s, stddev = 0, so no row can exceed |z| > %s: 0 outliers",
				basis, num(mean), threshold),
		}
	}

	var flagged []int
	var zs []interface{}
	for i, x := range xs {
		z := (x - mean) / sd
		if math.Abs(z) > op.Threshold {
			flagged = append(flagged, v.Index(positions[i]))
			zs = append(zs, z)
		}
	}

	return output{
		table: rowsTable(dataset.NewView(v.Table(), flagged), &extraColumns{names: []string{zScoreColumn}, values: [][]interface{}{zs}}),
		method: fmt.Sprintf("%s; mean = %s, s = %s; flagged |z| > %s: %d outliers in original row order",
			basis, num(mean), num(sd), threshold, len(flagged)),
	}
}

// standardize returns the rows of v where every column is numeric, as a
// matrix of z-values (x - mean) / s per column. A zero-variance column
// standardizes to 0. It also returns the view positions of those rows.
func standardize(v dataset.View, cols []string) ([][]float64, []int) {
	var positions []int
	var raw [][]float64
	for i := 0; i < v.Len(); i++ {
		row := make([]float64, len(cols))
		complete := true
		for j, col := range cols {
			f, ok := finite(v.Value(i, col))
			if !ok {
				complete = false
				break
			}
			row[j] = f
		}
		if complete {
			positions = append(positions, i)
			raw = append(raw, row)
		}
	}

	for j := range cols {
		column := make([]float64, len(raw))
		for i, row := range raw {
			column[i] = row[j]
		}
		mean, sd := meanStd(column)
		for _, row := range raw {
			if sd == 0 {
				row[j] = 0
			} else {
				row[j] = (row[j] - mean) / sd
			}
		}
	}
	return raw, positions
}

func (e *Engine) multivariate(op *query.Multivariate, v dataset.View) (output, error) {
	data, positions := standardize(v, op.Columns)
	n := len(data)
	k := int(math.Ceil(op.Contamination * float64(n)))
	columns := strings.Join(op.Columns, ", ")
	standardized := fmt.Sprintf("features %s standardized as (x - mean) / s with sample stddev over %d rows where all are present (%d incomplete rows skipped)",
		columns, n, v.Len()-n)

	var scores []float64
	var method string
	degraded := false
	switch {
	case n < 2:
		k = 0
		method = fmt.Sprintf("anomaly scoring needs at least 2 complete rows; %s; 0 anomalies", standardized)
	case e.isolationForest:
		var psi int
		var err error
		scores, psi, err = isolationForest(data, forestParams{trees: op.Trees, sampleSize: op.SampleSize, seed: op.Seed})
		if err != nil {
			return output{}, fmt.Errorf("isolation forest failed: %w", err)
		}
		level.Debug(e.logger).Log("msg", "isolation forest scored", "trees", op.Trees, "sample_size", psi, "rows", n)
		method = fmt.Sprintf("isolation forest with %d trees, sample size psi = %d, seed = %d; %s; score = 2^(-E[h(x)] / c(psi)) with c(n) = 2(ln(n - 1) + 0.5772) - 2(n - 1)/n; flagged the top ceil(%s * %d) = %d rows by score, ties by row index",
			op.Trees, psi, op.Seed, standardized, num(op.Contamination), n, k)
	default:
		degraded = true
		scores = make([]float64, n)
		for i, row := range data {
			for _, z := range row {
				scores[i] = math.Max(scores[i], math.Abs(z))
			}
		}
		level.Warn(e.logger).Log("msg", "isolation forest unavailable, using max |z| fallback", "rows", n)
		method = fmt.Sprintf("isolation forest unavailable; fell back to score = max |z| across %s; %s; flagged the top ceil(%s * %d) = %d rows by score, ties by row index",
			columns, standardized, num(op.Contamination), n, k)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if k > n {
		k = n
	}

	flagged := make([]int, k)
	flaggedScores := make([]interface{}, k)
	for i, o := range order[:k] {
		flagged[i] = v.Index(positions[o])
		flaggedScores[i] = scores[o]
	}

	return output{
		table:    rowsTable(dataset.NewView(v.Table(), flagged), &extraColumns{names: []string{anomalyScoreColumn}, values: [][]interface{}{flaggedScores}}),
		method:   method,
		degraded: degraded,
	}, nil
}
