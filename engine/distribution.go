package engine

import (
	"fmt"
	"sort"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/query"
)

type valueCount struct {
	value interface{}
	count int
}

// countValues tallies the values of col in first-seen order. Missing cells
// are tallied as one value.
func countValues(v dataset.View, col string) []*valueCount {
	index := make(map[string]*valueCount)
	var counts []*valueCount
	for i := 0; i < v.Len(); i++ {
		val := v.Value(i, col)
		k := dataset.GroupKey(val)
		vc, ok := index[k]
		if !ok {
			vc = &valueCount{value: val}
			index[k] = vc
			counts = append(counts, vc)
		}
		vc.count++
	}
	return counts
}

func distribution(op *query.Distribution, v dataset.View) output {
	counts := countValues(v, op.Column)
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})
	distinct := len(counts)
	if len(counts) > op.TopK {
		counts = counts[:op.TopK]
	}

	rows := make([]dataset.Row, len(counts))
	for i, vc := range counts {
		share := 0.0
		if v.Len() > 0 {
			share = float64(vc.count) / float64(v.Len()) * 100
		}
		rows[i] = dataset.Row{op.Column: vc.value, "count": vc.count, "percent": roundTo(share, 2)}
	}

	return output{
		table: dataset.NewTable([]string{op.Column, "count", "percent"}, rows),
		method: fmt.Sprintf("value counts of %s over %d rows, missing counted as one value; sorted by count descending, ties in first-seen order; showing %d of %d distinct values; percent = count / %d * 100",
			op.Column, v.Len(), len(counts), distinct, v.Len()),
	}
}

func uniqueCount(op *query.UniqueCount, v dataset.View) output {
	distinct := 0
	missing := 0
	for _, vc := range countValues(v, op.Column) {
		if dataset.IsMissing(vc.value) {
			missing = vc.count
			continue
		}
		distinct++
	}
	return output{
		table: dataset.NewTable([]string{"column", "unique"}, []dataset.Row{{"column": op.Column, "unique": distinct}}),
		method: fmt.Sprintf("number of distinct non-missing values of %s over %d rows; %d missing values not counted",
			op.Column, v.Len(), missing),
	}
}
