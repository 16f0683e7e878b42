package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/query"
	"github.com/vegasq/askdata/schema"
)

func meta(op *query.Meta, v dataset.View, s *schema.Schema) (output, error) {
	if s == nil && (op.Kind == query.MetaColumns || op.Kind == query.MetaDescribe) {
		inferred, err := schema.Infer(v.Table(), schema.DefaultInferOptions())
		if err != nil {
			return output{}, fmt.Errorf("failed to infer schema: %w", err)
		}
		s = inferred
	}

	switch op.Kind {
	case query.MetaShape:
		width := v.Table().Width()
		return output{
			table:  dataset.NewTable([]string{"rows", "columns"}, []dataset.Row{{"rows": v.Len(), "columns": width}}),
			method: fmt.Sprintf("row and column counts: %d rows x %d columns", v.Len(), width),
		}, nil
	case query.MetaColumns:
		return columnList(s), nil
	case query.MetaDtypes:
		return dtypes(v), nil
	case query.MetaDescribe:
		return describe(v, s.OfType(schema.Numeric)), nil
	case query.MetaHead:
		head := v.Head(op.N)
		return output{
			table:  rowsTable(head, nil),
			method: fmt.Sprintf("first %d of %d rows in original order", head.Len(), v.Len()),
		}, nil
	case query.MetaTail:
		tail := v.Tail(op.N)
		return output{
			table:  rowsTable(tail, nil),
			method: fmt.Sprintf("last %d of %d rows in original order", tail.Len(), v.Len()),
		}, nil
	case query.MetaMissing:
		return missingCounts(v), nil
	case query.MetaDuplicates:
		return duplicates(v), nil
	default:
		return output{}, fmt.Errorf("%w: meta %s", ErrUnsupportedOperation, op.Kind)
	}
}

func columnList(s *schema.Schema) output {
	rows := make([]dataset.Row, 0, s.Len())
	for _, c := range s.Columns() {
		rows = append(rows, dataset.Row{
			"column":   c.Name,
			"type":     c.Type.String(),
			"nullable": c.Nullable,
			"unique":   c.Cardinality,
		})
	}
	return output{
		table:  dataset.NewTable([]string{"column", "type", "nullable", "unique"}, rows),
		method: fmt.Sprintf("%d columns in table order with inferred semantic type, whether any value is missing, and distinct non-missing value count", s.Len()),
	}
}

// dtypes reports the storage kind observed in each column. A column mixing
// kinds is reported as object.
func dtypes(v dataset.View) output {
	t := v.Table()
	rows := make([]dataset.Row, 0, t.Width())
	for _, col := range t.Columns {
		kind := dataset.KindMissing
		for i := 0; i < v.Len(); i++ {
			k := dataset.KindOf(v.Value(i, col))
			switch {
			case k == dataset.KindMissing:
			case kind == dataset.KindMissing:
				kind = k
			case kind != k:
				kind = dataset.KindOther
			}
		}
		rows = append(rows, dataset.Row{"column": col, "dtype": kind.String()})
	}
	return output{
		table:  dataset.NewTable([]string{"column", "dtype"}, rows),
		method: "storage kind of the non-missing values in each column; mixed kinds are reported as object",
	}
}

var describeStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

func describe(v dataset.View, numeric []string) output {
	columns := append([]string{"statistic"}, numeric...)
	rows := make([]dataset.Row, len(describeStats))
	for i, stat := range describeStats {
		rows[i] = dataset.Row{"statistic": stat}
	}

	for _, col := range numeric {
		xs, _, _ := v.Floats(col)
		values := describeColumn(xs)
		for i, stat := range describeStats {
			rows[i][col] = values[stat]
		}
	}

	method := "count, mean, sample std (n - 1), min, quartiles and max of each numeric column over non-missing values; quartiles interpolate linearly at h = (n - 1)p"
	if len(numeric) == 0 {
		method = "no numeric columns to describe"
	}
	return output{table: dataset.NewTable(columns, rows), method: method}
}

func describeColumn(xs []float64) map[string]interface{} {
	out := map[string]interface{}{"count": len(xs)}
	if len(xs) == 0 {
		for _, stat := range describeStats[1:] {
			out[stat] = dataset.Undefined
		}
		return out
	}
	asc := sorted(xs)
	out["mean"] = apply(query.FuncMean, xs)
	out["std"] = apply(query.FuncStd, xs)
	out["min"] = asc[0]
	out["25%"] = quantile(asc, 0.25)
	out["50%"] = quantile(asc, 0.5)
	out["75%"] = quantile(asc, 0.75)
	out["max"] = asc[len(asc)-1]
	return out
}

func missingCounts(v dataset.View) output {
	t := v.Table()
	rows := make([]dataset.Row, 0, t.Width())
	for _, col := range t.Columns {
		missing := 0
		for i := 0; i < v.Len(); i++ {
			if dataset.IsMissing(v.Value(i, col)) {
				missing++
			}
		}
		pct := 0.0
		if v.Len() > 0 {
			pct = roundTo(float64(missing)/float64(v.Len())*100, 2)
		}
		rows = append(rows, dataset.Row{"column": col, "missing": missing, "percent": pct})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i]["missing"].(int) > rows[j]["missing"].(int)
	})
	return output{
		table: dataset.NewTable([]string{"column", "missing", "percent"}, rows),
		method: fmt.Sprintf("missing cells per column over %d rows, sorted by count descending with ties in column order; percent = missing / %d * 100",
			v.Len(), v.Len()),
	}
}

// duplicates counts rows equal to an earlier row in every column. Rows are
// bucketed by an xxhash digest and compared cell by cell within a bucket.
func duplicates(v dataset.View) output {
	t := v.Table()
	buckets := make(map[uint64][]int)
	dup := 0
	for i := 0; i < v.Len(); i++ {
		d := rowDigest(v.Row(i), t.Columns)
		isDup := false
		for _, j := range buckets[d] {
			if sameRow(v.Row(i), v.Row(j), t.Columns) {
				isDup = true
				break
			}
		}
		if isDup {
			dup++
			continue
		}
		buckets[d] = append(buckets[d], i)
	}
	return output{
		table: dataset.NewTable([]string{"duplicate_rows", "rows"}, []dataset.Row{{"duplicate_rows": dup, "rows": v.Len()}}),
		method: fmt.Sprintf("rows identical to an earlier row across all %d columns (%s); first occurrences are not counted",
			t.Width(), strings.Join(t.Columns, ", ")),
	}
}

func rowDigest(row dataset.Row, columns []string) uint64 {
	h := xxhash.New()
	for _, col := range columns {
		_, _ = h.WriteString(dataset.GroupKey(row[col]))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func sameRow(a, b dataset.Row, columns []string) bool {
	for _, col := range columns {
		if !dataset.Equal(a[col], b[col]) {
			return false
		}
	}
	return true
}
