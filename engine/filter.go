package engine

import (
	"math"
	"strings"
	"time"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/query"
)

// applyFilters keeps the rows of v that satisfy every predicate, in their
// original order. Repeated predicates on one column all have to hold.
func applyFilters(v dataset.View, filters []query.Predicate) dataset.View {
	if len(filters) == 0 {
		return v
	}
	return v.Where(func(row dataset.Row) bool {
		for _, p := range filters {
			if !matches(row[p.Column], p) {
				return false
			}
		}
		return true
	})
}

// matches evaluates one predicate against a cell. Missing cells never
// match, not even !=.
func matches(cell interface{}, p query.Predicate) bool {
	if dataset.IsMissing(cell) {
		return false
	}

	switch want := p.Value.Value.(type) {
	case float64:
		got, ok := dataset.ToFloat64(cell)
		if !ok {
			return false
		}
		return compareNumbers(got, p.Op, want)
	case time.Time:
		got, ok := dataset.ToTime(cell)
		if !ok {
			return false
		}
		return compareOrdered(got.Compare(want), p.Op)
	case bool:
		got, ok := cell.(bool)
		if !ok {
			return false
		}
		switch p.Op {
		case query.OpEq:
			return got == want
		case query.OpNe:
			return got != want
		}
		return false
	case string:
		return compareStrings(dataset.FormatValue(cell), p.Op, want)
	default:
		return false
	}
}

// compareNumbers compares with a relative epsilon so that values parsed
// from text such as 0.1 + 0.2 still equal 0.3.
func compareNumbers(left float64, op query.Op, right float64) bool {
	const epsilon = 1e-9
	diff := math.Abs(left - right)
	equal := diff < epsilon*math.Max(1.0, math.Max(math.Abs(left), math.Abs(right)))

	switch op {
	case query.OpEq:
		return equal
	case query.OpNe:
		return !equal
	case query.OpLt:
		return left < right && !equal
	case query.OpLe:
		return left < right || equal
	case query.OpGt:
		return left > right && !equal
	case query.OpGe:
		return left > right || equal
	}
	return false
}

// compareStrings is case-insensitive for every operator.
func compareStrings(left string, op query.Op, right string) bool {
	l, r := strings.ToLower(left), strings.ToLower(right)
	if op == query.OpContains {
		return strings.Contains(l, r)
	}
	return compareOrdered(strings.Compare(l, r), op)
}

func compareOrdered(c int, op query.Op) bool {
	switch op {
	case query.OpEq:
		return c == 0
	case query.OpNe:
		return c != 0
	case query.OpLt:
		return c < 0
	case query.OpLe:
		return c <= 0
	case query.OpGt:
		return c > 0
	case query.OpGe:
		return c >= 0
	}
	return false
}
